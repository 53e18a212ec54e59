package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// ReferenceHandle is the durable pointer returned by submission. It
// carries enough information to re-locate every task belonging to a
// submission without re-deriving it, survives process restart via a
// handle store, and round-trips through JSON without loss.
//
// The handle is the only long-lived artifact a caller must retain
// between pipeline stages; task and result state live on the fabric.
type ReferenceHandle struct {
	ID        string    `json:"id"`
	Scope     Scope     `json:"scope"`
	Repeats   int       `json:"repeats"`
	CreatedAt time.Time `json:"created_at"`
	Tasks     []TaskRef `json:"tasks"`
}

// TaskIDs returns the IDs of every usable task under the handle.
func (h *ReferenceHandle) TaskIDs() []TaskID {
	ids := make([]TaskID, 0, len(h.Tasks))
	for _, ref := range h.Tasks {
		if ref.Usable() {
			ids = append(ids, ref.ID)
		}
	}
	return ids
}

// ExperimentKeys returns the distinct experiment identities referenced
// by the handle, in first-seen order. Experiments whose every repeat
// failed to queue are still included: their report entries must exist
// with zero samples rather than disappear.
func (h *ReferenceHandle) ExperimentKeys() []ExperimentKey {
	seen := make(map[ExperimentKey]bool, len(h.Tasks))
	keys := make([]ExperimentKey, 0, len(h.Tasks))
	for _, ref := range h.Tasks {
		if !seen[ref.Experiment] {
			seen[ref.Experiment] = true
			keys = append(keys, ref.Experiment)
		}
	}
	return keys
}

// TasksFor returns the refs belonging to one experiment.
func (h *ReferenceHandle) TasksFor(key ExperimentKey) []TaskRef {
	var refs []TaskRef
	for _, ref := range h.Tasks {
		if ref.Experiment == key {
			refs = append(refs, ref)
		}
	}
	return refs
}

// QueuedCountFor returns how many repeats of an experiment were
// successfully queued under this handle.
func (h *ReferenceHandle) QueuedCountFor(key ExperimentKey) int {
	n := 0
	for _, ref := range h.Tasks {
		if ref.Experiment == key && ref.Usable() {
			n++
		}
	}
	return n
}

// Experiment returns the owning experiment key for a task ID, with a
// found flag for IDs the handle does not reference.
func (h *ReferenceHandle) Experiment(id TaskID) (ExperimentKey, bool) {
	for _, ref := range h.Tasks {
		if ref.ID == id {
			return ref.Experiment, true
		}
	}
	return "", false
}

// Encode serializes the handle for durable storage.
func (h *ReferenceHandle) Encode() ([]byte, error) {
	data, err := json.MarshalIndent(h, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal handle: %w", err)
	}
	return data, nil
}

// DecodeHandle restores a handle serialized by Encode.
func DecodeHandle(data []byte) (*ReferenceHandle, error) {
	var h ReferenceHandle
	if err := json.Unmarshal(data, &h); err != nil {
		return nil, fmt.Errorf("failed to unmarshal handle: %w", err)
	}
	if h.ID == "" {
		return nil, fmt.Errorf("handle is missing an ID")
	}
	return &h, nil
}
