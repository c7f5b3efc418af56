package metrics

import "github.com/prometheus/client_golang/prometheus"

// Enrichment Prometheus metrics.
var (
	EnrichmentRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "reelrank",
			Name:      "enrichment_requests_total",
			Help:      "Total number of metadata enrichment requests",
		},
		[]string{"provider", "status"},
	)

	EnrichmentRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "reelrank",
			Name:      "enrichment_request_duration_seconds",
			Help:      "Metadata enrichment request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"provider"},
	)

	EnrichmentCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "reelrank",
			Name:      "enrichment_cache_total",
			Help:      "Metadata cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)
)

var enrichMetricsRegistered bool

// RegisterEnrichmentMetrics registers Prometheus enrichment metrics. Must be called once from main.
func RegisterEnrichmentMetrics() {
	if enrichMetricsRegistered {
		return
	}
	prometheus.MustRegister(EnrichmentRequestsTotal)
	prometheus.MustRegister(EnrichmentRequestDuration)
	prometheus.MustRegister(EnrichmentCacheTotal)
	enrichMetricsRegistered = true
}
