// Package metrics holds the Prometheus instrumentation for the
// partition engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels for refresh attempts.
const (
	OutcomeAccepted    = "accepted"
	OutcomeTooSoon     = "too_soon"
	OutcomeSourceError = "source_error"
	OutcomeStoreError  = "store_error"
)

// Metrics is the engine metrics registry.
type Metrics struct {
	RefreshDuration prometheus.Histogram
	RefreshOutcomes *prometheus.CounterVec
	BucketSizes     *prometheus.GaugeVec
	SourceRequests  *prometheus.CounterVec
}

// New creates and registers all engine metrics on the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RefreshDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "lookingglass_refresh_duration_seconds",
			Help:    "Duration of one full partition computation",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		RefreshOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lookingglass_refresh_outcomes_total",
			Help: "Partition refresh attempts by outcome",
		}, []string{"outcome"}),
		BucketSizes: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "lookingglass_bucket_size",
			Help: "Entries in each snapshot bucket after the last accepted refresh",
		}, []string{"bucket"}),
		SourceRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lookingglass_source_requests_total",
			Help: "Quote source page fetches by result",
		}, []string{"result"}),
	}

	if reg != nil {
		reg.MustRegister(m.RefreshDuration, m.RefreshOutcomes, m.BucketSizes, m.SourceRequests)
	}
	return m
}

// ObserveBuckets records the sizes of the four buckets.
func (m *Metrics) ObserveBuckets(topCap, topPerf, best, worst int) {
	m.BucketSizes.WithLabelValues("top15MarketCap").Set(float64(topCap))
	m.BucketSizes.WithLabelValues("top12Performance").Set(float64(topPerf))
	m.BucketSizes.WithLabelValues("bestBelowThreshold").Set(float64(best))
	m.BucketSizes.WithLabelValues("worstBelowThreshold").Set(float64(worst))
}
