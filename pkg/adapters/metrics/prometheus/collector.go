package prometheus

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector implements ports.MetricsCollector using Prometheus.
type Collector struct {
	submissions   *prometheus.CounterVec
	tasksCreated  prometheus.Counter
	tasksRejected prometheus.Counter
	tasksRequeued prometheus.Counter
	fabricCalls   *prometheus.CounterVec
	fabricLatency *prometheus.HistogramVec
	pollDuration  prometheus.Histogram
}

// NewCollector creates a new Prometheus metrics collector.
func NewCollector() *Collector {
	return &Collector{
		submissions: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "alquimia_submissions_total",
				Help: "Total number of graph submissions",
			},
			[]string{"outcome"},
		),
		tasksCreated: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "alquimia_tasks_created_total",
				Help: "Total number of tasks created and queued on the fabric",
			},
		),
		tasksRejected: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "alquimia_tasks_rejected_total",
				Help: "Total number of per-task create/queue rejections",
			},
		),
		tasksRequeued: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "alquimia_tasks_requeued_total",
				Help: "Total number of errored tasks re-queued by restart",
			},
		),
		fabricCalls: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "alquimia_fabric_calls_total",
				Help: "Total number of fabric API calls",
			},
			[]string{"op", "outcome"},
		),
		fabricLatency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "alquimia_fabric_latency_seconds",
				Help:    "Fabric API call latency in seconds",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
			},
			[]string{"op"},
		),
		pollDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "alquimia_status_poll_duration_seconds",
				Help:    "Full status poll duration in seconds",
				Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
			},
		),
	}
}

// IncSubmissions increments the count of submit calls by outcome.
func (c *Collector) IncSubmissions(outcome string) {
	c.submissions.WithLabelValues(outcome).Inc()
}

// AddTasksCreated adds to the count of successfully queued tasks.
func (c *Collector) AddTasksCreated(n int) {
	c.tasksCreated.Add(float64(n))
}

// AddTasksRejected adds to the count of per-task rejections.
func (c *Collector) AddTasksRejected(n int) {
	c.tasksRejected.Add(float64(n))
}

// AddTasksRequeued adds to the count of re-queued tasks.
func (c *Collector) AddTasksRequeued(n int) {
	c.tasksRequeued.Add(float64(n))
}

// IncFabricCalls increments the count of fabric calls.
func (c *Collector) IncFabricCalls(op, outcome string) {
	c.fabricCalls.WithLabelValues(op, outcome).Inc()
}

// ObserveFabricLatency records the duration of one fabric call.
func (c *Collector) ObserveFabricLatency(op string, d time.Duration) {
	c.fabricLatency.WithLabelValues(op).Observe(d.Seconds())
}

// ObservePollDuration records the duration of one full status poll.
func (c *Collector) ObservePollDuration(d time.Duration) {
	c.pollDuration.Observe(d.Seconds())
}
