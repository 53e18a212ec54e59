package domain

import "encoding/json"

// ResultRecord is the payload attached to a completed task. The core
// extracts the scalar estimate and carries everything else opaquely:
// protocols attach arbitrary diagnostics whose shape this system must
// not be coupled to.
type ResultRecord struct {
	// Estimate is the scalar free-energy estimate, in Unit.
	Estimate float64 `json:"estimate"`
	Unit     string  `json:"unit"`

	// Uncertainty is the protocol's own per-task error estimator, when
	// the protocol provides one. The aggregation never interprets it;
	// it is surfaced for callers who want it.
	Uncertainty *float64 `json:"uncertainty,omitempty"`

	// Diagnostics is the opaque auxiliary payload. Never parsed here.
	Diagnostics json.RawMessage `json:"diagnostics,omitempty"`
}
