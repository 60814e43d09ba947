// Package metrics exposes Prometheus collectors for the assistant services.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "assistant"

// Metrics groups the collectors shared by the orchestrator and tool factory.
type Metrics struct {
	dispatches        *prometheus.CounterVec
	fallbacks         *prometheus.CounterVec
	downstreamLatency *prometheus.HistogramVec
	servicesGenerated *prometheus.CounterVec
	servicesRemoved   prometheus.Counter
	portProbes        prometheus.Counter
}

var (
	defaultOnce sync.Once
	shared      *Metrics
)

// Default returns the metrics registered with the global Prometheus registry.
func Default() *Metrics {
	defaultOnce.Do(func() {
		shared = MustNew(prometheus.DefaultRegisterer)
	})
	return shared
}

// MustNew constructs a Metrics instance on the given registerer. Tests pass a
// fresh prometheus.NewRegistry() to avoid duplicate registration panics.
func MustNew(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		dispatches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "dispatch",
			Name:      "messages_total",
			Help:      "Messages dispatched, by classified category.",
		}, []string{"category"}),
		fallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "dispatch",
			Name:      "fallbacks_total",
			Help:      "Downstream failures absorbed by the dispatcher, by collaborator.",
		}, []string{"collaborator"}),
		downstreamLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "dispatch",
			Name:      "downstream_duration_seconds",
			Help:      "Latency of downstream calls made by the dispatcher.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"collaborator", "status"}),
		servicesGenerated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "factory",
			Name:      "services_generated_total",
			Help:      "Generated services, by resulting status.",
		}, []string{"status"}),
		servicesRemoved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "registry",
			Name:      "services_removed_total",
			Help:      "Generated services removed from the registry.",
		}),
		portProbes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "registry",
			Name:      "port_probes_total",
			Help:      "Extra probes needed because the hashed port was taken.",
		}),
	}
	reg.MustRegister(m.dispatches, m.fallbacks, m.downstreamLatency, m.servicesGenerated, m.servicesRemoved, m.portProbes)
	return m
}

// ObserveDispatch counts a dispatched message.
func (m *Metrics) ObserveDispatch(category string) {
	if m == nil {
		return
	}
	m.dispatches.WithLabelValues(category).Inc()
}

// ObserveFallback counts an absorbed downstream failure.
func (m *Metrics) ObserveFallback(collaborator string) {
	if m == nil {
		return
	}
	m.fallbacks.WithLabelValues(collaborator).Inc()
}

// ObserveDownstream records the latency of a downstream call.
func (m *Metrics) ObserveDownstream(collaborator string, ok bool, seconds float64) {
	if m == nil {
		return
	}
	status := "ok"
	if !ok {
		status = "error"
	}
	m.downstreamLatency.WithLabelValues(collaborator, status).Observe(seconds)
}

// ObserveGenerated counts a generated service by status.
func (m *Metrics) ObserveGenerated(status string) {
	if m == nil {
		return
	}
	m.servicesGenerated.WithLabelValues(status).Inc()
}

// ObserveRemoved counts a removed service.
func (m *Metrics) ObserveRemoved() {
	if m == nil {
		return
	}
	m.servicesRemoved.Inc()
}

// ObservePortProbes counts extra port probes.
func (m *Metrics) ObservePortProbes(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.portProbes.Add(float64(n))
}
