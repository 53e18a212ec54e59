package campaign

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/aescanero/alquimia/pkg/domain"
	"github.com/aescanero/alquimia/pkg/ports"
)

// Gatherer fetches completed-task payloads and computes per-experiment
// summary statistics over however many repeats actually completed.
type Gatherer struct {
	fabric  ports.FabricClient
	monitor *Monitor
	logger  *zap.Logger

	// names optionally maps experiment keys to display names for the
	// report; missing keys fall back to the raw key.
	names map[domain.ExperimentKey]string
}

// NewGatherer creates a new result aggregator.
func NewGatherer(fabric ports.FabricClient, monitor *Monitor, logger *zap.Logger) *Gatherer {
	return &Gatherer{
		fabric:  fabric,
		monitor: monitor,
		logger:  logger,
	}
}

// WithNames attaches display names from a graph to the reports this
// gatherer produces. Handles do not carry experiment names, only keys.
func (g *Gatherer) WithNames(graph *domain.ExperimentGraph) *Gatherer {
	g.names = make(map[domain.ExperimentKey]string, graph.Len())
	for _, exp := range graph.Experiments() {
		g.names[exp.Key()] = exp.Name
	}
	return g
}

// Gather produces an aggregate report over every experiment the handle
// references. Only tasks currently classified complete contribute
// samples; everything else is counted as excluded, never silently
// dropped. The mean requires at least one sample and the sample
// standard deviation (n-1 divisor) at least two; below those counts
// the statistic is reported as undefined. Experiments with zero
// completed repeats keep their report entry with N=0 so the caller can
// tell "not yet ready" from "ready with no data".
func (g *Gatherer) Gather(ctx context.Context, handle *domain.ReferenceHandle) (domain.AggregateReport, error) {
	states, err := g.monitor.snapshot(ctx, handle.TaskIDs())
	if err != nil {
		return nil, err
	}

	samples := make(map[domain.ExperimentKey][]float64)
	units := make(map[domain.ExperimentKey]string)
	excluded := make(map[domain.ExperimentKey]int)

	for _, ref := range handle.Tasks {
		if !ref.Usable() {
			excluded[ref.Experiment]++
			continue
		}
		if states[ref.ID] != domain.TaskComplete {
			excluded[ref.Experiment]++
			continue
		}

		record, err := g.fabric.GetResult(ctx, ref.ID)
		if err != nil {
			if domain.IsConnectivity(err) {
				return nil, err
			}
			if errors.Is(err, domain.ErrResultNotReady) {
				// The task completed after the snapshot was taken but the
				// result has not materialized; exclude it this round.
				excluded[ref.Experiment]++
				continue
			}
			g.logger.Warn("failed to fetch task result",
				zap.String("task_id", string(ref.ID)),
				zap.String("experiment", string(ref.Experiment)),
				zap.Error(err))
			excluded[ref.Experiment]++
			continue
		}

		samples[ref.Experiment] = append(samples[ref.Experiment], record.Estimate)
		if units[ref.Experiment] == "" {
			units[ref.Experiment] = record.Unit
		}
	}

	report := make(domain.AggregateReport, len(handle.ExperimentKeys()))
	for _, key := range handle.ExperimentKeys() {
		agg := domain.ExperimentAggregate{
			Name:     g.names[key],
			N:        len(samples[key]),
			Unit:     units[key],
			Excluded: excluded[key],
		}
		if agg.N >= 1 {
			m := mean(samples[key])
			agg.Mean = &m
		}
		if agg.N >= 2 {
			sd := sampleStdDev(samples[key])
			agg.StdDev = &sd
		}
		report[key] = agg
	}

	g.logger.Info("gather complete",
		zap.String("handle_id", handle.ID),
		zap.Int("experiments", len(report)))

	return report, nil
}
