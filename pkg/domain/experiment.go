package domain

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/mitchellh/hashstructure/v2"
)

// ExperimentKey is the content-derived identity of an Experiment.
// Identical inputs always hash to the same key, which is what lets
// re-submission be detected at experiment granularity.
type ExperimentKey string

// ChemicalState describes one end state of a transformation. The
// descriptors are carried opaquely; parameterization of the molecules
// they name happens outside this system.
type ChemicalState struct {
	// Components maps a role ("solute", "solvent") to a descriptor
	// string such as a SMILES.
	Components map[string]string `json:"components"`
}

// Experiment is a single directed transition between a decorated state
// and a reference state, parameterized by a named protocol and its
// settings. Experiments are immutable once constructed.
type Experiment struct {
	Name     string           `json:"name"`
	StateA   ChemicalState    `json:"state_a"`
	StateB   ChemicalState    `json:"state_b"`
	Protocol string           `json:"protocol"`
	Settings ProtocolSettings `json:"settings"`

	key ExperimentKey
}

// ProtocolSettings is the settings bundle attached to an experiment's
// protocol. The core never interprets it beyond hashing it into the
// experiment identity and forwarding it to the fabric.
type ProtocolSettings map[string]any

// Key returns the content-derived identity of the experiment. The key
// covers both end states, the protocol name and the settings bundle.
func (e *Experiment) Key() ExperimentKey {
	if e.key == "" {
		e.key = computeKey(e)
	}
	return e.key
}

func computeKey(e *Experiment) ExperimentKey {
	hash, err := hashstructure.Hash(struct {
		StateA   ChemicalState
		StateB   ChemicalState
		Protocol string
		Settings ProtocolSettings
	}{e.StateA, e.StateB, e.Protocol, canonicalSettings(e.Settings)}, hashstructure.FormatV2, nil)
	if err != nil {
		// Hash only fails on unhashable values (channels, funcs), which
		// the JSON-shaped settings bundle cannot contain.
		panic(fmt.Sprintf("experiment not hashable: %v", err))
	}
	return ExperimentKey(fmt.Sprintf("experiment-%016x", hash))
}

// canonicalSettings round-trips the settings bundle through JSON so
// that a freshly built bundle and one reloaded from disk hash to the
// same experiment key regardless of the concrete slice and number
// types they carry.
func canonicalSettings(s ProtocolSettings) ProtocolSettings {
	if len(s) == 0 {
		return nil
	}
	data, err := json.Marshal(s)
	if err != nil {
		panic(fmt.Sprintf("settings not serializable: %v", err))
	}
	var canonical ProtocolSettings
	if err := json.Unmarshal(data, &canonical); err != nil {
		panic(fmt.Sprintf("settings not round-trippable: %v", err))
	}
	return canonical
}

// ExperimentGraph is the full set of experiments for a campaign,
// deduplicated by experiment identity. Immutable once constructed.
type ExperimentGraph struct {
	experiments map[ExperimentKey]*Experiment
}

// NewExperimentGraph builds a graph from the given experiments.
// Duplicate experiments (same content-derived key) collapse into one.
func NewExperimentGraph(experiments []*Experiment) *ExperimentGraph {
	g := &ExperimentGraph{experiments: make(map[ExperimentKey]*Experiment, len(experiments))}
	for _, e := range experiments {
		g.experiments[e.Key()] = e
	}
	return g
}

// Len returns the number of distinct experiments in the graph.
func (g *ExperimentGraph) Len() int {
	return len(g.experiments)
}

// Get returns the experiment with the given key, or nil.
func (g *ExperimentGraph) Get(key ExperimentKey) *Experiment {
	return g.experiments[key]
}

// Experiments returns the experiments ordered by key so that
// submission order is deterministic.
func (g *ExperimentGraph) Experiments() []*Experiment {
	keys := make([]string, 0, len(g.experiments))
	for k := range g.experiments {
		keys = append(keys, string(k))
	}
	sort.Strings(keys)

	out := make([]*Experiment, 0, len(keys))
	for _, k := range keys {
		out = append(out, g.experiments[ExperimentKey(k)])
	}
	return out
}

// graphFile is the on-disk shape of a serialized graph.
type graphFile struct {
	Experiments []*Experiment `json:"experiments"`
}

// MarshalJSON serializes the graph as an ordered experiment list.
func (g *ExperimentGraph) MarshalJSON() ([]byte, error) {
	return json.Marshal(graphFile{Experiments: g.Experiments()})
}

// UnmarshalJSON restores a graph serialized by MarshalJSON.
func (g *ExperimentGraph) UnmarshalJSON(data []byte) error {
	var f graphFile
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	g.experiments = make(map[ExperimentKey]*Experiment, len(f.Experiments))
	for _, e := range f.Experiments {
		g.experiments[e.Key()] = e
	}
	return nil
}
