package campaign

import (
	"context"
	"fmt"
	"testing"

	"go.uber.org/zap"

	fabricmem "github.com/aescanero/alquimia/pkg/adapters/fabric/memory"
	"github.com/aescanero/alquimia/pkg/adapters/metrics/noop"
	storemem "github.com/aescanero/alquimia/pkg/adapters/store/memory"
	"github.com/aescanero/alquimia/pkg/domain"
)

// testEnv bundles the in-memory backends behind the lifecycle core.
type testEnv struct {
	fabric    *fabricmem.Fabric
	store     *storemem.HandleStore
	submitter *Submitter
	monitor   *Monitor
	restarter *Restarter
	gatherer  *Gatherer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := zap.NewNop()
	metrics := noop.NewCollector()
	fabric := fabricmem.NewFabric()
	store := storemem.NewHandleStore()
	monitor := NewMonitor(fabric, metrics, logger)

	return &testEnv{
		fabric:    fabric,
		store:     store,
		submitter: NewSubmitter(fabric, store, metrics, logger),
		monitor:   monitor,
		restarter: NewRestarter(fabric, monitor, metrics, logger),
		gatherer:  NewGatherer(fabric, monitor, logger),
	}
}

func noopCollector() *noop.Collector { return noop.NewCollector() }

func nopLogger() *zap.Logger { return zap.NewNop() }

// testGraph builds a graph of n distinct experiments.
func testGraph(t *testing.T, n int) *domain.ExperimentGraph {
	t.Helper()

	experiments := make([]*domain.Experiment, 0, n)
	for i := 0; i < n; i++ {
		experiments = append(experiments, &domain.Experiment{
			Name: fmt.Sprintf("solute_%d_in_water", i),
			StateA: domain.ChemicalState{
				Components: map[string]string{
					"solute":  fmt.Sprintf("CCO%d", i),
					"solvent": "O",
				},
			},
			StateB: domain.ChemicalState{
				Components: map[string]string{"solvent": "O"},
			},
			Protocol: "absolute_solvation",
			Settings: domain.ProtocolSettings{"replicas": 26},
		})
	}
	return domain.NewExperimentGraph(experiments)
}

func testScope(t *testing.T) domain.Scope {
	t.Helper()

	scope, err := ValidateScope("openff", "sage21", "solvation")
	if err != nil {
		t.Fatalf("failed to build test scope: %v", err)
	}
	return scope
}

// mustSubmit submits the graph and fails the test on error.
func (e *testEnv) mustSubmit(t *testing.T, graph *domain.ExperimentGraph, repeats int) *domain.ReferenceHandle {
	t.Helper()

	handle, err := e.submitter.Submit(context.Background(), graph, testScope(t), repeats)
	if err != nil {
		t.Fatalf("failed to submit: %v", err)
	}
	return handle
}
