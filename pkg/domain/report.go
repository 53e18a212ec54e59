package domain

import (
	"fmt"
	"io"
	"sort"
)

// StateCounts tallies the tasks of one experiment by lifecycle state.
type StateCounts struct {
	Queued   int `json:"queued"`
	Running  int `json:"running"`
	Complete int `json:"complete"`
	Errored  int `json:"error"`
	Invalid  int `json:"invalid"`
}

// Add increments the counter for the given state.
func (c *StateCounts) Add(s TaskState) {
	switch s {
	case TaskQueued:
		c.Queued++
	case TaskRunning:
		c.Running++
	case TaskComplete:
		c.Complete++
	case TaskErrored:
		c.Errored++
	case TaskInvalid:
		c.Invalid++
	}
}

// Total returns the number of tasks counted.
func (c StateCounts) Total() int {
	return c.Queued + c.Running + c.Complete + c.Errored + c.Invalid
}

// StatusReport is a point-in-time classification of every task under a
// handle, keyed by experiment identity.
type StatusReport map[ExperimentKey]StateCounts

// Totals sums the per-experiment counts across the whole report.
func (r StatusReport) Totals() StateCounts {
	var total StateCounts
	for _, c := range r {
		total.Queued += c.Queued
		total.Running += c.Running
		total.Complete += c.Complete
		total.Errored += c.Errored
		total.Invalid += c.Invalid
	}
	return total
}

// ExperimentAggregate summarizes the completed repeats of one
// experiment. Mean and StdDev are nil when undefined: Mean requires at
// least one sample, StdDev at least two. A nil StdDev with N==1 warns
// the caller that a single repeat does not characterize sampling error;
// it is never reported as zero.
type ExperimentAggregate struct {
	Name     string   `json:"name,omitempty"`
	N        int      `json:"n"`
	Mean     *float64 `json:"mean,omitempty"`
	StdDev   *float64 `json:"stddev,omitempty"`
	Unit     string   `json:"unit,omitempty"`
	Excluded int      `json:"excluded"`
}

// AggregateReport maps every experiment under a handle to its summary
// statistics. Experiments with zero completed repeats are present with
// N=0, never omitted: callers must be able to tell "not yet ready"
// from "ready with no data".
type AggregateReport map[ExperimentKey]ExperimentAggregate

// Keys returns the experiment keys in sorted order for deterministic
// output.
func (r AggregateReport) Keys() []ExperimentKey {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, string(k))
	}
	sort.Strings(keys)

	out := make([]ExperimentKey, 0, len(keys))
	for _, k := range keys {
		out = append(out, ExperimentKey(k))
	}
	return out
}

// WriteTSV writes the report as a tab-separated table, one experiment
// per row. Undefined statistics are written as "None".
func (r AggregateReport) WriteTSV(w io.Writer) error {
	if _, err := fmt.Fprintln(w, "experiment\tn\tmean\tstddev\texcluded"); err != nil {
		return err
	}
	for _, key := range r.Keys() {
		agg := r[key]
		label := agg.Name
		if label == "" {
			label = string(key)
		}
		mean := "None"
		if agg.Mean != nil {
			mean = fmt.Sprintf("%g", *agg.Mean)
		}
		stddev := "None"
		if agg.StdDev != nil {
			stddev = fmt.Sprintf("%g", *agg.StdDev)
		}
		if _, err := fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%d\n", label, agg.N, mean, stddev, agg.Excluded); err != nil {
			return err
		}
	}
	return nil
}
