package webapp

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Dispatch outcomes, used as the "outcome" label of webapp_dispatch_total.
const (
	OutcomeSuccess  = "success"
	OutcomeFailure  = "failure"
	OutcomeUnrouted = "unrouted"
)

var dispatchLabels = []string{"action", "outcome"} //nolint:gochecknoglobals

// dispatchMetrics counts dispatches for one application. Each application has its own registry,
// so that instances created for different tests never share counts.
type dispatchMetrics struct {
	registry   *prometheus.Registry
	dispatches *prometheus.CounterVec
	latencies  *prometheus.SummaryVec
}

func newDispatchMetrics() *dispatchMetrics {
	m := &dispatchMetrics{
		registry: prometheus.NewRegistry(),
		dispatches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "webapp_dispatch_total",
				Help: "How many requests were dispatched, partitioned by action and outcome.",
			},
			dispatchLabels,
		),
		latencies: prometheus.NewSummaryVec(
			prometheus.SummaryOpts{
				Name: "webapp_dispatch_duration_seconds",
				Help: "How long actions took to produce a final result, partitioned by action.",
			},
			[]string{"action"},
		),
	}
	m.registry.MustRegister(m.dispatches, m.latencies)
	return m
}

func (m *dispatchMetrics) count(action, outcome string) {
	m.dispatches.WithLabelValues(action, outcome).Inc()
}

func (m *dispatchMetrics) timer(action string) *prometheus.Timer {
	return prometheus.NewTimer(m.latencies.WithLabelValues(action))
}
