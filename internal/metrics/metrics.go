// Package metrics exposes Prometheus collectors for pipeline runs.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/insightdelivered/bet-history-analyzer/internal/models"
)

const namespace = "betstats"

// Outcome labels for RunsTotal.
const (
	OutcomeSuccess    = "success"
	OutcomeUnreadable = "unreadable"
)

// Metrics holds the collectors, registered on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	RunsTotal       *prometheus.CounterVec
	RecordsTotal    *prometheus.CounterVec
	DiscardedTotal  *prometheus.CounterVec
	DroppedTokens   prometheus.Counter
	OrphanLegs      prometheus.Counter
	RecoveredFields *prometheus.CounterVec
	RunDuration     prometheus.Histogram
}

// New registers all collectors on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		RunsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Pipeline runs by outcome.",
		}, []string{"outcome"}),
		RecordsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_total",
			Help:      "Records classified, by kind.",
		}, []string{"kind"}),
		DiscardedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_discarded_total",
			Help:      "Short records dropped by the reconstructor, by kind.",
		}, []string{"kind"}),
		DroppedTokens: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tokens_dropped_total",
			Help:      "Tokens seen between records and ignored.",
		}),
		OrphanLegs: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orphan_legs_total",
			Help:      "Leg records with no open parlay header.",
		}),
		RecoveredFields: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recovered_fields_total",
			Help:      "Fields replaced by a neutral default during aggregation, by field.",
		}, []string{"field"}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of a pipeline run.",
			Buckets:   []float64{.001, .005, .01, .05, .1, .5, 1, 5},
		}),
	}

	m.registry.MustRegister(
		m.RunsTotal,
		m.RecordsTotal,
		m.DiscardedTotal,
		m.DroppedTokens,
		m.OrphanLegs,
		m.RecoveredFields,
		m.RunDuration,
		collectors.NewGoCollector(),
	)
	return m
}

// Registry returns the private registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Observe records a successful run. A nil receiver is a no-op.
func (m *Metrics) Observe(res *models.Result, elapsed time.Duration) {
	if m == nil || res == nil {
		return
	}
	m.RunsTotal.WithLabelValues(OutcomeSuccess).Inc()
	m.RunDuration.Observe(elapsed.Seconds())

	m.RecordsTotal.WithLabelValues("single").Add(float64(len(res.Singles)))
	m.RecordsTotal.WithLabelValues("parlay").Add(float64(len(res.Parlays)))
	m.RecordsTotal.WithLabelValues("leg").Add(float64(len(res.Legs)))

	d := res.Diagnostics
	m.DiscardedTotal.WithLabelValues(string(models.KindBet)).Add(float64(d.Reconstruction.DiscardedBets))
	m.DiscardedTotal.WithLabelValues(string(models.KindLeg)).Add(float64(d.Reconstruction.DiscardedLegs))
	m.DroppedTokens.Add(float64(d.Reconstruction.DroppedTokens))
	m.OrphanLegs.Add(float64(d.OrphanLegs))

	m.RecoveredFields.WithLabelValues("amount").Add(float64(d.Aggregation.RecoveredAmounts))
	m.RecoveredFields.WithLabelValues("count").Add(float64(d.Aggregation.RecoveredCounts))
	m.RecoveredFields.WithLabelValues("date").Add(float64(d.Aggregation.UnparseableDates))
}

// ObserveFailure records a run that could not read its input.
func (m *Metrics) ObserveFailure(elapsed time.Duration) {
	if m == nil {
		return
	}
	m.RunsTotal.WithLabelValues(OutcomeUnreadable).Inc()
	m.RunDuration.Observe(elapsed.Seconds())
}
