package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/aescanero/alquimia/pkg/domain"
	"github.com/aescanero/alquimia/pkg/ports"
)

// Fabric implements ports.FabricClient against an in-memory task
// table. It is meant for tests and local development: tasks never run
// anywhere, but their lifecycle can be driven explicitly through
// Complete, Fail and Invalidate.
type Fabric struct {
	mu    sync.RWMutex
	tasks map[domain.TaskID]*taskEntry

	// failNext, when set, makes every call fail with a connectivity
	// error until cleared. Used to test retry paths.
	failNext bool
}

type taskEntry struct {
	scope  domain.Scope
	spec   ports.TaskSpec
	state  domain.TaskState
	queued bool
	result *domain.ResultRecord
}

// NewFabric creates an empty in-memory fabric.
func NewFabric() *Fabric {
	return &Fabric{tasks: make(map[domain.TaskID]*taskEntry)}
}

// SetUnreachable makes every subsequent call fail with a connectivity
// error until called again with false.
func (f *Fabric) SetUnreachable(unreachable bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failNext = unreachable
}

func (f *Fabric) reachable(op string) error {
	if f.failNext {
		return domain.NewConnectivityError(op, fmt.Errorf("fabric marked unreachable"))
	}
	return nil
}

// CreateTasks registers count tasks for the spec. Tasks start
// unqueued; QueueTask moves them into the queued state.
func (f *Fabric) CreateTasks(ctx context.Context, scope domain.Scope, spec ports.TaskSpec, count int) ([]domain.TaskID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.reachable("create_tasks"); err != nil {
		return nil, err
	}

	ids := make([]domain.TaskID, 0, count)
	for i := 0; i < count; i++ {
		id := domain.TaskID(uuid.New().String())
		f.tasks[id] = &taskEntry{scope: scope, spec: spec, state: domain.TaskQueued}
		ids = append(ids, id)
	}
	return ids, nil
}

// QueueTask marks a registered task as actively queued.
func (f *Fabric) QueueTask(ctx context.Context, id domain.TaskID) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.reachable("queue_task"); err != nil {
		return err
	}
	entry, ok := f.tasks[id]
	if !ok {
		return domain.ErrTaskNotFound
	}
	entry.queued = true
	return nil
}

// GetStatus returns the state of each known task; unknown IDs are
// absent from the result, mirroring a fabric that has not ingested a
// fresh submission yet.
func (f *Fabric) GetStatus(ctx context.Context, ids []domain.TaskID) (map[domain.TaskID]domain.TaskState, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if err := f.reachable("get_status"); err != nil {
		return nil, err
	}

	states := make(map[domain.TaskID]domain.TaskState, len(ids))
	for _, id := range ids {
		if entry, ok := f.tasks[id]; ok {
			states[id] = entry.state
		}
	}
	return states, nil
}

// GetResult returns the result record of a completed task.
func (f *Fabric) GetResult(ctx context.Context, id domain.TaskID) (*domain.ResultRecord, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if err := f.reachable("get_result"); err != nil {
		return nil, err
	}
	entry, ok := f.tasks[id]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	if entry.state != domain.TaskComplete || entry.result == nil {
		return nil, domain.ErrResultNotReady
	}
	record := *entry.result
	return &record, nil
}

// RestartTask re-queues an errored task. Any other state is a no-op:
// restart is at-least-once safe by construction.
func (f *Fabric) RestartTask(ctx context.Context, id domain.TaskID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.reachable("restart_task"); err != nil {
		return false, err
	}
	entry, ok := f.tasks[id]
	if !ok {
		return false, domain.ErrTaskNotFound
	}
	if entry.state != domain.TaskErrored {
		return false, nil
	}
	entry.state = domain.TaskQueued
	return true, nil
}

// Run transitions a queued task to running.
func (f *Fabric) Run(id domain.TaskID) {
	f.setState(id, domain.TaskRunning)
}

// Complete transitions a task to complete with the given estimate.
func (f *Fabric) Complete(id domain.TaskID, estimate float64, unit string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if entry, ok := f.tasks[id]; ok {
		entry.state = domain.TaskComplete
		entry.result = &domain.ResultRecord{Estimate: estimate, Unit: unit}
	}
}

// Fail transitions a task to the error state.
func (f *Fabric) Fail(id domain.TaskID) {
	f.setState(id, domain.TaskErrored)
}

// Invalidate transitions a task to the terminal invalid state.
func (f *Fabric) Invalidate(id domain.TaskID) {
	f.setState(id, domain.TaskInvalid)
}

// Forget drops a task from the table entirely, simulating a fabric
// that has not populated a fresh submission yet.
func (f *Fabric) Forget(id domain.TaskID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.tasks, id)
}

// State returns the current state of a task, for assertions.
func (f *Fabric) State(id domain.TaskID) (domain.TaskState, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	entry, ok := f.tasks[id]
	if !ok {
		return "", false
	}
	return entry.state, true
}

func (f *Fabric) setState(id domain.TaskID, state domain.TaskState) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if entry, ok := f.tasks[id]; ok {
		entry.state = state
	}
}
