package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// RequestsTotal counts submitted requests by outcome.
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sparrow_requests_total",
			Help: "Total number of scheduling requests by outcome",
		},
		[]string{"outcome"},
	)

	TasksScheduledTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "sparrow_tasks_scheduled_total",
			Help: "Total number of tasks assigned to a worker",
		},
	)

	ReservationsDispatchedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sparrow_reservations_dispatched_total",
			Help: "Total number of probe reservations sent, by placement policy",
		},
		[]string{"policy"},
	)

	PlacementLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sparrow_placement_latency_seconds",
			Help:    "Time from request arrival to reservation dispatch, by placement policy",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"policy"},
	)

	TaskAssignmentLatency = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sparrow_task_assignment_latency_seconds",
			Help:    "Time from request arrival to a task being handed to a worker",
			Buckets: prometheus.DefBuckets,
		},
	)

	RegistrySize = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "sparrow_registry_live_requests",
			Help: "Number of requests with an in-flight placer in the registry",
		},
	)

	RPCCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sparrow_rpc_calls_total",
			Help: "Total number of outbound rpcpool calls by method and outcome",
		},
		[]string{"method", "outcome"},
	)

	RPCCallLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sparrow_rpc_call_latency_seconds",
			Help:    "Outbound rpcpool call latency by method",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	NoTaskPollsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "sparrow_no_task_polls_total",
			Help: "Total number of GetTask calls answered with no task available",
		},
	)
)

func init() {
	prometheus.MustRegister(
		RequestsTotal,
		TasksScheduledTotal,
		ReservationsDispatchedTotal,
		PlacementLatency,
		TaskAssignmentLatency,
		RegistrySize,
		RPCCallsTotal,
		RPCCallLatency,
		NoTaskPollsTotal,
	)
}

// Handler returns the Prometheus scrape handler for /metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Timer times an operation and reports its duration to a histogram.
type Timer struct {
	start time.Time
}

// NewTimer starts a timer.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// ObserveDuration records the elapsed time to histogram.
func (t *Timer) ObserveDuration(histogram prometheus.Histogram) {
	histogram.Observe(time.Since(t.start).Seconds())
}

// ObserveDurationVec records the elapsed time to a labeled histogram.
func (t *Timer) ObserveDurationVec(histogram prometheus.ObserverVec, labels ...string) {
	histogram.WithLabelValues(labels...).Observe(time.Since(t.start).Seconds())
}

// Duration returns the elapsed time since the timer started.
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}
