package campaign

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aescanero/alquimia/pkg/domain"
	"github.com/aescanero/alquimia/pkg/ports"
)

// Submitter expands an experiment graph x repeat count into fabric
// tasks and returns the durable reference handle for the submission.
type Submitter struct {
	fabric  ports.FabricClient
	store   ports.HandleStore
	metrics ports.MetricsCollector
	logger  *zap.Logger
}

// NewSubmitter creates a new submitter.
func NewSubmitter(fabric ports.FabricClient, store ports.HandleStore, metrics ports.MetricsCollector, logger *zap.Logger) *Submitter {
	return &Submitter{
		fabric:  fabric,
		store:   store,
		metrics: metrics,
		logger:  logger,
	}
}

// Submit creates repeats independent tasks for every experiment in the
// graph, filed under scope, and asks the fabric to actively queue each
// one. The returned handle is persisted before Submit returns, so a
// crash after submission never loses the ability to monitor or gather.
//
// Per-task create/queue failures are recorded on the handle's task
// refs rather than aborting the submission: heterogeneous fabrics may
// reject individual tasks. Only a wholesale inability to reach the
// fabric, or an invalid input, fails the call.
//
// Re-submitting an identical (graph, scope, repeats) is deduplicated
// at experiment identity: an experiment already fully represented by
// an existing handle for the scope gets no new tasks.
func (s *Submitter) Submit(ctx context.Context, graph *domain.ExperimentGraph, scope domain.Scope, repeats int) (*domain.ReferenceHandle, error) {
	if graph == nil || graph.Len() == 0 {
		s.metrics.IncSubmissions("failed")
		return nil, domain.NewValidationError("graph", "must contain at least one experiment")
	}
	if repeats < 1 {
		s.metrics.IncSubmissions("failed")
		return nil, domain.NewValidationError("repeats", fmt.Sprintf("must be at least 1, got %d", repeats))
	}
	if _, err := ValidateScope(scope.Org, scope.Campaign, scope.Project); err != nil {
		s.metrics.IncSubmissions("failed")
		return nil, err
	}

	submitted, err := s.alreadySubmitted(ctx, scope, repeats)
	if err != nil {
		s.metrics.IncSubmissions("failed")
		return nil, err
	}

	handle := &domain.ReferenceHandle{
		ID:        uuid.New().String(),
		Scope:     scope,
		Repeats:   repeats,
		CreatedAt: time.Now().UTC(),
	}

	created, rejected := 0, 0
	for _, exp := range graph.Experiments() {
		key := exp.Key()
		if submitted[key] {
			s.logger.Info("experiment already fully submitted, skipping",
				zap.String("experiment", string(key)),
				zap.String("scope", scope.String()))
			continue
		}

		refs, err := s.submitExperiment(ctx, scope, exp, repeats)
		if err != nil {
			// Fabric unreachable: nothing durable was produced for this
			// experiment, so surface the failure instead of persisting a
			// handle the operator would misread as a full submission.
			s.metrics.IncSubmissions("failed")
			return nil, err
		}
		for _, ref := range refs {
			if ref.Usable() {
				created++
			} else {
				rejected++
			}
		}
		handle.Tasks = append(handle.Tasks, refs...)
	}

	if err := s.store.Save(ctx, handle); err != nil {
		s.metrics.IncSubmissions("failed")
		return nil, fmt.Errorf("failed to persist handle: %w", err)
	}

	s.metrics.IncSubmissions("ok")
	s.metrics.AddTasksCreated(created)
	s.metrics.AddTasksRejected(rejected)
	s.logger.Info("submission complete",
		zap.String("handle_id", handle.ID),
		zap.String("scope", scope.String()),
		zap.Int("experiments", graph.Len()),
		zap.Int("repeats", repeats),
		zap.Int("tasks_queued", created),
		zap.Int("tasks_rejected", rejected))

	return handle, nil
}

// submitExperiment creates and queues the repeats of one experiment.
// Per-task failures become QueueError entries on the returned refs.
func (s *Submitter) submitExperiment(ctx context.Context, scope domain.Scope, exp *domain.Experiment, repeats int) ([]domain.TaskRef, error) {
	key := exp.Key()
	spec := ports.TaskSpec{
		Experiment: key,
		Protocol:   exp.Protocol,
		Settings:   exp.Settings,
	}

	ids, err := s.fabric.CreateTasks(ctx, scope, spec, repeats)
	if err != nil {
		if domain.IsConnectivity(err) {
			return nil, err
		}
		// The fabric rejected this experiment's tasks outright. Record
		// the rejection per repeat so the handle reflects every intended
		// task, and move on to the next experiment.
		s.logger.Warn("fabric rejected task creation",
			zap.String("experiment", string(key)),
			zap.Error(err))
		refs := make([]domain.TaskRef, 0, repeats)
		for i := 0; i < repeats; i++ {
			refs = append(refs, domain.TaskRef{
				Experiment: key,
				Repeat:     i,
				QueueError: fmt.Sprintf("create failed: %v", err),
			})
		}
		return refs, nil
	}

	refs := make([]domain.TaskRef, 0, len(ids))
	for i, id := range ids {
		ref := domain.TaskRef{ID: id, Experiment: key, Repeat: i}
		if err := s.fabric.QueueTask(ctx, id); err != nil {
			if domain.IsConnectivity(err) {
				return nil, err
			}
			s.logger.Warn("fabric refused to queue task",
				zap.String("task_id", string(id)),
				zap.String("experiment", string(key)),
				zap.Error(err))
			ref.QueueError = fmt.Sprintf("queue failed: %v", err)
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

// alreadySubmitted returns the experiment keys already fully
// represented (repeats successfully queued tasks) by an existing
// handle under the scope.
func (s *Submitter) alreadySubmitted(ctx context.Context, scope domain.Scope, repeats int) (map[domain.ExperimentKey]bool, error) {
	handles, err := s.store.ListScope(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("failed to list handles for scope %s: %w", scope, err)
	}

	submitted := make(map[domain.ExperimentKey]bool)
	for _, h := range handles {
		for _, key := range h.ExperimentKeys() {
			if h.QueuedCountFor(key) >= repeats {
				submitted[key] = true
			}
		}
	}
	return submitted, nil
}
