package ports

import "time"

// MetricsCollector records operational metrics for the lifecycle
// operations. The prometheus adapter implements it for production; the
// noop adapter satisfies it in tests.
type MetricsCollector interface {
	// IncSubmissions counts submit calls by outcome ("ok", "failed").
	IncSubmissions(outcome string)

	// AddTasksCreated counts tasks successfully created and queued.
	AddTasksCreated(n int)

	// AddTasksRejected counts per-task create/queue failures.
	AddTasksRejected(n int)

	// AddTasksRequeued counts tasks re-queued by a restart call.
	AddTasksRequeued(n int)

	// IncFabricCalls counts fabric calls by operation and outcome.
	IncFabricCalls(op, outcome string)

	// ObserveFabricLatency records the duration of one fabric call.
	ObserveFabricLatency(op string, d time.Duration)

	// ObservePollDuration records the duration of one full status poll.
	ObservePollDuration(d time.Duration)
}
