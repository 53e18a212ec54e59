package campaign

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/aescanero/alquimia/pkg/domain"
	"github.com/aescanero/alquimia/pkg/ports"
)

// defaultStatusBatchSize bounds how many task IDs go into one fabric
// status query. Large campaigns are polled in chunks for throughput;
// ordering between tasks carries no meaning.
const defaultStatusBatchSize = 100

// Monitor performs point-in-time, read-only status queries against the
// fabric. It keeps no state between calls: each invocation is
// authoritative for that instant, and independent operators can poll
// the same handle concurrently without coordination.
type Monitor struct {
	fabric    ports.FabricClient
	metrics   ports.MetricsCollector
	logger    *zap.Logger
	batchSize int
}

// NewMonitor creates a new status monitor.
func NewMonitor(fabric ports.FabricClient, metrics ports.MetricsCollector, logger *zap.Logger) *Monitor {
	return &Monitor{
		fabric:    fabric,
		metrics:   metrics,
		logger:    logger,
		batchSize: defaultStatusBatchSize,
	}
}

// Status classifies every task under the handle into the five
// lifecycle states, keyed by experiment identity. Tasks the fabric has
// not reported on yet are classified as queued: a freshly submitted
// campaign legitimately produces an empty fabric response.
//
// A failure to reach the fabric surfaces as *domain.ConnectivityError;
// the caller may retry the whole call.
func (m *Monitor) Status(ctx context.Context, handle *domain.ReferenceHandle) (domain.StatusReport, error) {
	start := time.Now()

	states, err := m.snapshot(ctx, handle.TaskIDs())
	if err != nil {
		return nil, err
	}

	report := make(domain.StatusReport, len(handle.ExperimentKeys()))
	for _, key := range handle.ExperimentKeys() {
		// Entry present even when every repeat failed to queue.
		report[key] = domain.StateCounts{}
	}
	for _, ref := range handle.Tasks {
		if !ref.Usable() {
			continue
		}
		counts := report[ref.Experiment]
		counts.Add(states[ref.ID])
		report[ref.Experiment] = counts
	}

	m.metrics.ObservePollDuration(time.Since(start))
	m.logger.Debug("status poll complete",
		zap.String("handle_id", handle.ID),
		zap.Int("tasks", len(handle.TaskIDs())),
		zap.Duration("duration", time.Since(start)))

	return report, nil
}

// snapshot fetches the state of every task in batches. Absent entries
// default to queued.
func (m *Monitor) snapshot(ctx context.Context, ids []domain.TaskID) (map[domain.TaskID]domain.TaskState, error) {
	states := make(map[domain.TaskID]domain.TaskState, len(ids))
	for _, id := range ids {
		states[id] = domain.TaskQueued
	}

	for offset := 0; offset < len(ids); offset += m.batchSize {
		end := offset + m.batchSize
		if end > len(ids) {
			end = len(ids)
		}

		batch, err := m.fabric.GetStatus(ctx, ids[offset:end])
		if err != nil {
			return nil, err
		}
		for id, state := range batch {
			if !state.Valid() {
				// Unknown states from a newer fabric version are treated
				// as queued rather than dropped, so counts always add up.
				m.logger.Warn("fabric reported unknown task state",
					zap.String("task_id", string(id)),
					zap.String("state", string(state)))
				continue
			}
			states[id] = state
		}
	}
	return states, nil
}
