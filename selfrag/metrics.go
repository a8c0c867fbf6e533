package selfrag

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/redrussianarmy/self-rag/graph"
)

// Metrics exports Prometheus series for workflow runs. A nil *Metrics is a
// valid no-op.
type Metrics struct {
	runs              *prometheus.CounterVec
	nodeEvents        *prometheus.CounterVec
	routes            *prometheus.CounterVec
	callDuration      *prometheus.HistogramVec
	webSearchFailures prometheus.Counter
}

// NewMetrics creates the workflow metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "selfrag_runs_total",
				Help: "Total number of workflow runs by outcome",
			},
			[]string{"outcome"},
		),
		nodeEvents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "selfrag_node_events_total",
				Help: "Node lifecycle events by node and event",
			},
			[]string{"node", "event"},
		),
		routes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "selfrag_routes_total",
				Help: "Transitions taken by source node and label",
			},
			[]string{"from", "label", "to"},
		),
		callDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "selfrag_external_call_duration_seconds",
				Help:    "Duration of collaborator calls by collaborator and status",
				Buckets: []float64{0.1, 0.5, 1.0, 2.0, 5.0, 10.0, 30.0, 60.0},
			},
			[]string{"collaborator", "status"},
		),
		webSearchFailures: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "selfrag_web_search_failures_total",
				Help: "Web searches that failed and were skipped",
			},
		),
	}

	reg.MustRegister(m.runs, m.nodeEvents, m.routes, m.callDuration, m.webSearchFailures)
	return m
}

// OnNodeEvent implements graph.NodeListener.
func (m *Metrics) OnNodeEvent(_ context.Context, event graph.NodeEvent, nodeName string, _ GraphState, _ error) {
	if m == nil {
		return
	}
	m.nodeEvents.WithLabelValues(nodeName, string(event)).Inc()
}

// OnRoute implements graph.RouteListener.
func (m *Metrics) OnRoute(_ context.Context, route graph.Route, _ GraphState) {
	if m == nil {
		return
	}
	m.routes.WithLabelValues(route.From, route.Label, route.To).Inc()
}

func (m *Metrics) observeCall(collaborator string, d time.Duration, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.callDuration.WithLabelValues(collaborator, status).Observe(d.Seconds())
}

func (m *Metrics) webSearchFailed() {
	if m == nil {
		return
	}
	m.webSearchFailures.Inc()
}

func (m *Metrics) runFinished(outcome Outcome) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues(string(outcome)).Inc()
}

func (m *Metrics) runFailed() {
	if m == nil {
		return
	}
	m.runs.WithLabelValues("error").Inc()
}
