// Package metrics exports Prometheus metrics for the chat turn
// pipeline and the blob store.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors for one server instance.
type Metrics struct {
	registry *prometheus.Registry

	agentRuns      *prometheus.CounterVec
	plannerRetries prometheus.Counter
	storeOps       *prometheus.CounterVec
	turnDuration   *prometheus.HistogramVec
}

// New creates the collectors and registers them on a fresh registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		agentRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "genesiss",
				Name:      "agent_runs_total",
				Help:      "Total number of agent dispatches",
			},
			[]string{"agent", "status"},
		),
		plannerRetries: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "genesiss",
				Name:      "planner_retries_total",
				Help:      "Total number of edit planner retries",
			},
		),
		storeOps: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "genesiss",
				Name:      "store_ops_total",
				Help:      "Total number of blob store operations",
			},
			[]string{"op", "status"},
		),
		turnDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "genesiss",
				Name:      "turn_duration_seconds",
				Help:      "Wall-clock duration of a full chat turn",
				Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
			},
			[]string{"agent"},
		),
	}

	registry.MustRegister(m.agentRuns, m.plannerRetries, m.storeOps, m.turnDuration)
	return m
}

// RecordAgentRun records one agent dispatch.
func (m *Metrics) RecordAgentRun(agent string, success bool) {
	m.agentRuns.WithLabelValues(agent, statusLabel(success)).Inc()
}

// RecordPlannerRetry records one planner retry.
func (m *Metrics) RecordPlannerRetry() {
	m.plannerRetries.Inc()
}

// RecordStoreOp records one store operation.
func (m *Metrics) RecordStoreOp(op string, success bool) {
	m.storeOps.WithLabelValues(op, statusLabel(success)).Inc()
}

// RecordTurnDuration records the duration of a completed turn.
func (m *Metrics) RecordTurnDuration(agent string, d time.Duration) {
	m.turnDuration.WithLabelValues(agent).Observe(d.Seconds())
}

// Handler returns the HTTP handler for the metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying Prometheus registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func statusLabel(success bool) string {
	if success {
		return "success"
	}
	return "error"
}
