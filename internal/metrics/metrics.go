package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Upstream API metrics
	APIRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "polyview_api_requests_total",
			Help: "Total number of upstream API requests",
		},
		[]string{"api", "endpoint", "status"}, // gamma, /markets, success/not_found/error
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "polyview_api_request_duration_seconds",
			Help:    "Duration of upstream API requests",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"api", "endpoint"},
	)

	// Response cache metrics
	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "polyview_cache_lookups_total",
			Help: "Total number of response cache lookups",
		},
		[]string{"operation", "result"}, // list_markets, hit/miss/error
	)

	// Page metrics
	PageRenders = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "polyview_page_renders_total",
			Help: "Total number of rendered pages and API responses",
		},
		[]string{"route", "status"}, // /markets/:ref, 200/404/502
	)

	PageRenderDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "polyview_page_render_duration_seconds",
			Help:    "Duration of page renders including upstream fetches",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)

	// System health
	HealthChecks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "polyview_health_checks_total",
			Help: "Total number of health check requests",
		},
		[]string{"status"}, // healthy/unhealthy
	)
)

// RecordAPIRequest records upstream request metrics
func RecordAPIRequest(api, endpoint, status string, duration time.Duration) {
	APIRequests.WithLabelValues(api, endpoint, status).Inc()
	APIRequestDuration.WithLabelValues(api, endpoint).Observe(duration.Seconds())
}

// RecordCacheLookup records a cache hit, miss or backend error
func RecordCacheLookup(operation, result string) {
	CacheLookups.WithLabelValues(operation, result).Inc()
}

// RecordPageRender records page render metrics
func RecordPageRender(route, status string, duration time.Duration) {
	PageRenders.WithLabelValues(route, status).Inc()
	PageRenderDuration.WithLabelValues(route).Observe(duration.Seconds())
}

// RecordHealthCheck records health check status
func RecordHealthCheck(healthy bool) {
	status := "healthy"
	if !healthy {
		status = "unhealthy"
	}
	HealthChecks.WithLabelValues(status).Inc()
}
