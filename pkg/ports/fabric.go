package ports

import (
	"context"

	"github.com/aescanero/alquimia/pkg/domain"
)

// TaskSpec describes the work one fabric task executes: one repeat of
// one experiment's protocol.
type TaskSpec struct {
	Experiment domain.ExperimentKey
	Protocol   string
	Settings   domain.ProtocolSettings
}

// FabricClient is the remote compute fabric as the core needs it. The
// fabric is the single source of truth for task state; every method is
// a blocking request/response call, cancellable through ctx. Transport
// failures must surface as *domain.ConnectivityError so callers can
// distinguish "retry the call" from "the task is broken".
type FabricClient interface {
	// CreateTasks registers count tasks for the given spec under a
	// scope and returns their fabric-assigned IDs. Registration alone
	// does not run anything; each task must still be queued.
	CreateTasks(ctx context.Context, scope domain.Scope, spec TaskSpec, count int) ([]domain.TaskID, error)

	// QueueTask asks the fabric to actively queue a registered task.
	QueueTask(ctx context.Context, id domain.TaskID) error

	// GetStatus returns the current state of each requested task. IDs
	// the fabric has no record for yet are simply absent from the
	// returned map; callers classify those as queued.
	GetStatus(ctx context.Context, ids []domain.TaskID) (map[domain.TaskID]domain.TaskState, error)

	// GetResult fetches the result record of a completed task. Returns
	// domain.ErrResultNotReady when the task has not completed.
	GetResult(ctx context.Context, id domain.TaskID) (*domain.ResultRecord, error)

	// RestartTask re-queues an errored task. Restarting a task that is
	// not currently errored is a no-op, not an error: restart must be
	// safe under at-least-once retry and under races with fabric-driven
	// transitions. Returns whether the task was actually re-queued.
	RestartTask(ctx context.Context, id domain.TaskID) (bool, error)
}
