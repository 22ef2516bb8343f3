// Package metrics bridges engine lifecycle hooks to Prometheus collectors.
package metrics

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/callweave/callweave/pkg/domain"
)

// Metrics holds the collectors exported by the serve command.
type Metrics struct {
	NodeVisits      *prometheus.CounterVec
	NodeFailures    *prometheus.CounterVec
	AdapterDuration *prometheus.HistogramVec
	ExecutionsDone  *prometheus.CounterVec
}

// New creates and registers the collectors.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		NodeVisits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "callweave_node_visits_total",
				Help: "Total node entries, by node kind.",
			},
			[]string{"kind"},
		),
		NodeFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "callweave_node_failures_total",
				Help: "Total failed node attempts, by node kind.",
			},
			[]string{"kind"},
		),
		AdapterDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "callweave_adapter_duration_seconds",
				Help: "Duration of telephony adapter operations.",
			},
			[]string{"op"},
		),
		ExecutionsDone: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "callweave_executions_total",
				Help: "Completed executions, by terminal status.",
			},
			[]string{"status"},
		),
	}
	reg.MustRegister(m.NodeVisits, m.NodeFailures, m.AdapterDuration, m.ExecutionsDone)
	return m
}

// Hooks returns lifecycle hooks that feed the collectors. Compose them with
// any logging hooks before handing them to the engine.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnNodeEnter: func(_ context.Context, e *domain.NodeEvent) {
			m.NodeVisits.WithLabelValues(string(e.NodeKind)).Inc()
		},
		OnNodeFail: func(_ context.Context, e *domain.NodeEvent) {
			m.NodeFailures.WithLabelValues(string(e.NodeKind)).Inc()
		},
		OnAdapterReturn: func(_ context.Context, e *domain.AdapterEvent) {
			m.AdapterDuration.WithLabelValues(e.Op).Observe(e.Duration.Seconds())
		},
		OnExecutionDone: func(_ context.Context, exec *domain.Execution) {
			m.ExecutionsDone.WithLabelValues(string(exec.Status)).Inc()
		},
	}
}
