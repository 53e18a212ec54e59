package campaign

import (
	"context"

	"go.uber.org/zap"

	"github.com/aescanero/alquimia/pkg/domain"
	"github.com/aescanero/alquimia/pkg/ports"
)

// Restarter re-queues the errored tasks under a handle. Restarting is
// always an explicit operator action: the system never auto-restarts.
type Restarter struct {
	fabric  ports.FabricClient
	monitor *Monitor
	metrics ports.MetricsCollector
	logger  *zap.Logger
}

// NewRestarter creates a new restart engine.
func NewRestarter(fabric ports.FabricClient, monitor *Monitor, metrics ports.MetricsCollector, logger *zap.Logger) *Restarter {
	return &Restarter{
		fabric:  fabric,
		monitor: monitor,
		metrics: metrics,
		logger:  logger,
	}
}

// Restart snapshots the current status, selects exactly the tasks in
// error state, and re-queues each one. Every other state is left
// untouched; invalid is terminal and never restarted. Returns the
// number of tasks actually re-queued.
//
// The snapshot is inherently racy against fabric-driven transitions: a
// task that left the error state between the snapshot and the restart
// call is skipped by the fabric, not failed. Calling Restart twice in
// a row is therefore safe and re-queues whatever is errored each time.
func (r *Restarter) Restart(ctx context.Context, handle *domain.ReferenceHandle) (int, error) {
	states, err := r.monitor.snapshot(ctx, handle.TaskIDs())
	if err != nil {
		return 0, err
	}

	requeued := 0
	for _, ref := range handle.Tasks {
		if !ref.Usable() || states[ref.ID] != domain.TaskErrored {
			continue
		}

		ok, err := r.fabric.RestartTask(ctx, ref.ID)
		if err != nil {
			if domain.IsConnectivity(err) {
				return requeued, err
			}
			r.logger.Warn("fabric refused task restart",
				zap.String("task_id", string(ref.ID)),
				zap.String("experiment", string(ref.Experiment)),
				zap.Error(err))
			continue
		}
		if ok {
			requeued++
		}
	}

	r.metrics.AddTasksRequeued(requeued)
	r.logger.Info("restart complete",
		zap.String("handle_id", handle.ID),
		zap.Int("tasks_requeued", requeued))

	return requeued, nil
}
