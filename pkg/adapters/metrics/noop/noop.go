package noop

import "time"

// Collector is a metrics collector that records nothing. It satisfies
// ports.MetricsCollector for tests and for CLI invocations where no
// scrape endpoint exists.
type Collector struct{}

// NewCollector creates a noop collector.
func NewCollector() *Collector {
	return &Collector{}
}

func (*Collector) IncSubmissions(string) {}
func (*Collector) AddTasksCreated(int) {}
func (*Collector) AddTasksRejected(int) {}
func (*Collector) AddTasksRequeued(int) {}
func (*Collector) IncFabricCalls(string, string) {}
func (*Collector) ObserveFabricLatency(string, time.Duration) {}
func (*Collector) ObservePollDuration(time.Duration) {}
