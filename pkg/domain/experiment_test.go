package domain

import (
	"encoding/json"
	"testing"
)

func newExperiment(t *testing.T, name, solute string) *Experiment {
	t.Helper()
	return &Experiment{
		Name:     name,
		StateA:   ChemicalState{Components: map[string]string{"solute": solute, "solvent": "O"}},
		StateB:   ChemicalState{Components: map[string]string{"solvent": "O"}},
		Protocol: "absolute_solvation",
		Settings: ProtocolSettings{
			"replicas":    26,
			"temperature": 298.15,
			"lambda_elec": []float64{0.0, 0.2, 0.4},
		},
	}
}

func TestExperimentKeyIsContentDerived(t *testing.T) {
	a := newExperiment(t, "ethanol_in_water", "CCO")
	same := newExperiment(t, "renamed", "CCO")
	other := newExperiment(t, "methanol_in_water", "CO")

	// The name is a display label; identity covers states, protocol
	// and settings only.
	if a.Key() != same.Key() {
		t.Errorf("identical content produced different keys: %s vs %s", a.Key(), same.Key())
	}
	if a.Key() == other.Key() {
		t.Errorf("different states produced the same key: %s", a.Key())
	}
}

func TestExperimentKeyCoversSettings(t *testing.T) {
	a := newExperiment(t, "ethanol_in_water", "CCO")
	b := newExperiment(t, "ethanol_in_water", "CCO")
	b.Settings["replicas"] = 13

	if a.Key() == b.Key() {
		t.Error("changed settings should change the experiment key")
	}
}

func TestExperimentKeyStableAcrossJSONRoundTrip(t *testing.T) {
	original := newExperiment(t, "ethanol_in_water", "CCO")

	data, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("failed to marshal experiment: %v", err)
	}
	var reloaded Experiment
	if err := json.Unmarshal(data, &reloaded); err != nil {
		t.Fatalf("failed to unmarshal experiment: %v", err)
	}

	// A reloaded settings bundle carries []any and float64 values
	// where the fresh one had typed slices and ints. The key must not
	// depend on those representation details.
	if original.Key() != reloaded.Key() {
		t.Errorf("key changed across JSON round trip: %s vs %s", original.Key(), reloaded.Key())
	}
}

func TestNewExperimentGraphDeduplicates(t *testing.T) {
	graph := NewExperimentGraph([]*Experiment{
		newExperiment(t, "ethanol_in_water", "CCO"),
		newExperiment(t, "ethanol_again", "CCO"),
		newExperiment(t, "methanol_in_water", "CO"),
	})
	if graph.Len() != 2 {
		t.Errorf("graph length = %d, want 2 after dedup", graph.Len())
	}
}

func TestExperimentGraphDeterministicOrder(t *testing.T) {
	graph := NewExperimentGraph([]*Experiment{
		newExperiment(t, "a", "CCO"),
		newExperiment(t, "b", "CO"),
		newExperiment(t, "c", "CCCO"),
	})

	first := graph.Experiments()
	second := graph.Experiments()
	for i := range first {
		if first[i].Key() != second[i].Key() {
			t.Fatalf("experiment order not stable at index %d", i)
		}
	}
}

func TestExperimentGraphJSONRoundTrip(t *testing.T) {
	original := NewExperimentGraph([]*Experiment{
		newExperiment(t, "ethanol_in_water", "CCO"),
		newExperiment(t, "methanol_in_water", "CO"),
	})

	data, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("failed to marshal graph: %v", err)
	}
	var reloaded ExperimentGraph
	if err := json.Unmarshal(data, &reloaded); err != nil {
		t.Fatalf("failed to unmarshal graph: %v", err)
	}

	if reloaded.Len() != original.Len() {
		t.Fatalf("graph length changed: got %d, want %d", reloaded.Len(), original.Len())
	}
	for _, exp := range original.Experiments() {
		got := reloaded.Get(exp.Key())
		if got == nil {
			t.Fatalf("experiment %s lost in round trip", exp.Key())
		}
		if got.Name != exp.Name {
			t.Errorf("name changed for %s: got %q, want %q", exp.Key(), got.Name, exp.Name)
		}
	}
}
