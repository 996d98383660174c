package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	dto "github.com/prometheus/client_model/go"
)

// Registry holds the advisor's Prometheus metrics on a private registry so
// tests can assert on gathered families without global state.
type Registry struct {
	registry *prometheus.Registry

	ScoringDuration       prometheus.Histogram
	GoalsScored           prometheus.Counter
	Decisions             *prometheus.CounterVec
	Consensus             *prometheus.CounterVec
	GuardrailOverrides    prometheus.Counter
	BlockedReallocations  prometheus.Counter
	AcceptedReallocations prometheus.Counter
}

// New creates and registers all advisor metrics.
func New() *Registry {
	r := &Registry{
		registry: prometheus.NewRegistry(),
		ScoringDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "advisor_scoring_duration_seconds",
			Help:    "Duration of goal feasibility scoring",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		}),
		GoalsScored: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "advisor_goals_scored_total",
			Help: "Total goals scored across all requests",
		}),
		Decisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "advisor_decisions_total",
			Help: "Final action decisions by outcome",
		}, []string{"decision"}),
		Consensus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "advisor_consensus_total",
			Help: "Agent consensus classifications by level",
		}, []string{"consensus"}),
		GuardrailOverrides: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "advisor_guardrail_overrides_total",
			Help: "Guardrail blocks corrected by the deterministic override",
		}),
		BlockedReallocations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "advisor_blocked_reallocations_total",
			Help: "Prioritization calls whose reallocations were discarded by the acceptance gate",
		}),
		AcceptedReallocations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "advisor_accepted_reallocations_total",
			Help: "Prioritization calls whose reallocations were accepted",
		}),
	}
	r.registry.MustRegister(
		r.ScoringDuration,
		r.GoalsScored,
		r.Decisions,
		r.Consensus,
		r.GuardrailOverrides,
		r.BlockedReallocations,
		r.AcceptedReallocations,
	)
	return r
}

// Handler serves the registry in Prometheus exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Snapshot gathers the current metric families, for introspection and tests.
func (r *Registry) Snapshot() ([]*dto.MetricFamily, error) {
	return r.registry.Gather()
}
