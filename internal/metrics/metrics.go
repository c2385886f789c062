// Package metrics exposes the service's prometheus instruments. A nil
// *Metrics is valid and records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Registry *prometheus.Registry

	// Recorded decisions by status
	Decisions *prometheus.CounterVec

	DecisionLatency prometheus.Histogram

	// Code issue and verify attempts by operation and result
	Challenges *prometheus.CounterVec

	// Rule cache lookups: hit, miss, error
	RuleCache *prometheus.CounterVec

	PublishFailures prometheus.Counter
}

// New registers every instrument on a fresh registry along with the Go
// runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		Decisions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "cardguard_decisions_total",
			Help: "Total authorization decisions by status",
		}, []string{"status"}),

		DecisionLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "cardguard_decision_duration_seconds",
			Help:    "Duration of a full authorization including the event write",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),

		Challenges: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "cardguard_challenges_total",
			Help: "Challenge operations by operation and result",
		}, []string{"operation", "result"}), // operation: "request", "verify"

		RuleCache: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "cardguard_rule_cache_total",
			Help: "Rule cache lookups by result",
		}, []string{"result"}),

		PublishFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "cardguard_event_publish_failures_total",
			Help: "Transaction events that could not be published to the stream",
		}),
	}
}

func (m *Metrics) IncrementDecision(status string) {
	if m != nil {
		m.Decisions.WithLabelValues(status).Inc()
	}
}

func (m *Metrics) ObserveDecisionLatency(d time.Duration) {
	if m != nil {
		m.DecisionLatency.Observe(d.Seconds())
	}
}

func (m *Metrics) IncrementChallenge(operation, result string) {
	if m != nil {
		m.Challenges.WithLabelValues(operation, result).Inc()
	}
}

func (m *Metrics) IncrementRuleCache(result string) {
	if m != nil {
		m.RuleCache.WithLabelValues(result).Inc()
	}
}

func (m *Metrics) IncrementPublishFailure() {
	if m != nil {
		m.PublishFailures.Inc()
	}
}
