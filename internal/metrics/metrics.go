package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics observes the facts endpoint. None of it feeds back into responses.
type Metrics struct {
	// Requests by outcome: ok, contract_violation, not_found, error.
	Requests *prometheus.CounterVec

	Duration prometheus.Histogram

	// Warnings emitted, by code and level.
	Warnings *prometheus.CounterVec

	HealthScore prometheus.Histogram

	// SourceFailures counts reads degraded to "no evidence", by source.
	SourceFailures *prometheus.CounterVec
}

// New registers the collectors on reg. A nil reg gets a private registry so
// callers that do not export metrics still get working collectors.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	return &Metrics{
		Requests: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "orderfacts_requests_total",
			Help: "Order facts requests by outcome.",
		}, []string{"outcome"}),

		Duration: promauto.With(reg).NewHistogram(prometheus.HistogramOpts{
			Name:    "orderfacts_request_duration_seconds",
			Help:    "Time to assemble an order facts response.",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		}),

		Warnings: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "orderfacts_warnings_total",
			Help: "Fact warnings emitted by code and level.",
		}, []string{"code", "level"}),

		HealthScore: promauto.With(reg).NewHistogram(prometheus.HistogramOpts{
			Name:    "orderfacts_health_score",
			Help:    "Distribution of order fact health scores.",
			Buckets: []float64{0, 10, 40, 70, 90, 97, 100},
		}),

		SourceFailures: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "orderfacts_source_failures_total",
			Help: "Source reads treated as absent evidence.",
		}, []string{"source"}),
	}
}
