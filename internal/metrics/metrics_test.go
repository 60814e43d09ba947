package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCounters(t *testing.T) {
	m := MustNew(prometheus.NewRegistry())

	m.ObserveDispatch("calendar")
	m.ObserveDispatch("calendar")
	m.ObserveFallback("llm")
	m.ObserveGenerated("created")
	m.ObserveRemoved()
	m.ObservePortProbes(3)
	m.ObservePortProbes(0)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.dispatches.WithLabelValues("calendar")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.fallbacks.WithLabelValues("llm")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.servicesGenerated.WithLabelValues("created")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.servicesRemoved))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.portProbes))
}

func TestNilMetricsAreNoops(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveDispatch("x")
		m.ObserveFallback("x")
		m.ObserveDownstream("x", true, 0.1)
		m.ObserveGenerated("x")
		m.ObserveRemoved()
		m.ObservePortProbes(1)
	})
}

func TestDefaultIsShared(t *testing.T) {
	assert.Same(t, Default(), Default())
}
