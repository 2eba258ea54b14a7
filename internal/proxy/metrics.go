package proxy

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics are the prometheus collectors of the generation proxy.
type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics registers the proxy collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		requests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "storybuilder_generate_requests_total",
				Help: "Total number of story generation requests by outcome.",
			},
			[]string{"backend", "outcome"},
		),
		duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "storybuilder_generate_duration_seconds",
				Help:    "Histogram of upstream story generation durations.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"backend"},
		),
	}
}
