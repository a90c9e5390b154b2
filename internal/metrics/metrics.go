// Package metrics exposes prometheus collectors for sign-up and sign-in attempts.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"uniportal/internal/authflow"
)

// FlowMetrics counts flow outcomes and the states flows pass through.
type FlowMetrics struct {
	registry *prometheus.Registry
	outcomes *prometheus.CounterVec
	states   *prometheus.CounterVec
}

// NewFlowMetrics registers the flow collectors on a fresh registry, alongside
// the standard Go and process collectors.
func NewFlowMetrics() *FlowMetrics {
	m := &FlowMetrics{
		registry: prometheus.NewRegistry(),
		outcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "uniportal",
			Name:      "auth_flow_total",
			Help:      "Finished sign-up and sign-in attempts by outcome.",
		}, []string{"mode", "outcome"}),
		states: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "uniportal",
			Name:      "auth_flow_state_total",
			Help:      "States entered by sign-up and sign-in attempts.",
		}, []string{"mode", "state"}),
	}
	m.registry.MustRegister(
		m.outcomes,
		m.states,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Observe records a state transition. It satisfies authflow.Observer.
func (m *FlowMetrics) Observe(mode authflow.Mode, state authflow.State) {
	m.states.WithLabelValues(string(mode), string(state)).Inc()
	switch state {
	case authflow.StateDone:
		m.outcomes.WithLabelValues(string(mode), "success").Inc()
	case authflow.StateFailed:
		m.outcomes.WithLabelValues(string(mode), "failure").Inc()
	}
}

// Handler serves the registry in the prometheus text format.
func (m *FlowMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
