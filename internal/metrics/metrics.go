// internal/metrics/metrics.go

package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	FeedRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "geosnap_feed_requests_total",
		Help: "Feed requests by feed type",
	}, []string{"feed"})

	FeedDurationSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "geosnap_feed_duration_seconds",
		Help:    "Feed build duration in seconds",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"feed"})

	FeedItems = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "geosnap_feed_items",
		Help:    "Number of items returned per feed",
		Buckets: []float64{0, 1, 2, 5, 10, 20, 50, 100},
	}, []string{"feed"})

	AdaptiveRadiusMeters = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "geosnap_adaptive_radius_meters",
		Help:    "Adaptive search radius chosen for historical feeds",
		Buckets: []float64{50, 100, 300},
	})

	StoreDegradedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "geosnap_store_degraded_total",
		Help: "Store lookups that failed and were degraded to empty results",
	}, []string{"lookup"})

	DirectoryRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "geosnap_directory_requests_total",
		Help: "POI directory lookups by outcome",
	}, []string{"outcome"})

	DirectoryDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "geosnap_directory_duration_seconds",
		Help:    "POI directory lookup duration in seconds",
		Buckets: prometheus.DefBuckets,
	})

	DirectoryCacheTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "geosnap_directory_cache_total",
		Help: "POI directory cache lookups by result",
	}, []string{"result"})

	CircuitBreakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "geosnap_circuit_breaker_state",
		Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
	}, []string{"name"})

	PoisIngestedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "geosnap_pois_ingested_total",
		Help: "External POI records processed by the classifier by result",
	}, []string{"result"})

	SigningFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "geosnap_signing_failures_total",
		Help: "Cover image signing failures",
	})
)

// Handler returns the Prometheus scrape handler
func Handler() http.Handler {
	return promhttp.Handler()
}
