// Package metrics provides centralized Prometheus metrics for the application.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics track HTTP request patterns and performance
var (
	// HTTPRequestsTotal counts total HTTP requests by method, path, and status
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration measures HTTP request duration in seconds
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestSize measures HTTP request body size in bytes
	HTTPRequestSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_size_bytes",
			Help:    "HTTP request size in bytes",
			Buckets: prometheus.ExponentialBuckets(100, 10, 8),
		},
		[]string{"method", "path"},
	)

	// HTTPResponseSize measures HTTP response body size in bytes
	HTTPResponseSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_response_size_bytes",
			Help:    "HTTP response size in bytes",
			Buckets: prometheus.ExponentialBuckets(100, 10, 8),
		},
		[]string{"method", "path"},
	)

	// ActiveConnections tracks the number of active HTTP connections
	ActiveConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_active_connections",
			Help: "Number of active HTTP connections",
		},
	)
)

// Business metrics track application-specific operations
var (
	// CampaignsTotal tracks total number of campaigns in the database
	CampaignsTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "campaigns_total",
			Help: "Total number of campaigns in the database",
		},
	)

	// PostsTotal tracks total number of posts in the database
	PostsTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "posts_total",
			Help: "Total number of posts in the database",
		},
	)

	// PostsDraftedTotal counts drafted posts by channel and result
	PostsDraftedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "posts_drafted_total",
			Help: "Total number of post drafting attempts",
		},
		[]string{"channel", "result"}, // result: created, duplicate, error
	)

	// SeedCurationDuration measures time to curate one inspiration feed
	SeedCurationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "seed_curation_duration_seconds",
			Help:    "Time taken to curate an inspiration feed",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
		},
		[]string{"source"},
	)

	// SeedCurationErrors counts errors while curating inspiration feeds
	SeedCurationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "seed_curation_errors_total",
			Help: "Total number of seed curation errors",
		},
		[]string{"source", "error_type"},
	)

	// LinkPreviewAttemptsTotal counts link metadata lookups by result
	LinkPreviewAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "link_preview_attempts_total",
			Help: "Total number of link preview lookups",
		},
		[]string{"result"}, // result: success, failure, skipped
	)

	// LinkPreviewDuration measures time to fetch link metadata
	LinkPreviewDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "link_preview_duration_seconds",
			Help:    "Time taken to fetch link metadata",
			Buckets: []float64{0.1, 0.2, 0.4, 0.8, 1.6, 3.2, 6.4, 12.8},
		},
	)
)

// Database metrics track database performance
var (
	// DBQueryDuration measures database query duration
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 10),
		},
		[]string{"operation"},
	)

	// DBConnectionsActive tracks active database connections
	DBConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_connections_active",
			Help: "Number of active database connections",
		},
	)

	// DBConnectionsIdle tracks idle database connections
	DBConnectionsIdle = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_connections_idle",
			Help: "Number of idle database connections",
		},
	)
)

// RecordHTTPRequest records an HTTP request with its metadata
func RecordHTTPRequest(method, path, status string, duration time.Duration, requestSize, responseSize int) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())

	if requestSize > 0 {
		HTTPRequestSize.WithLabelValues(method, path).Observe(float64(requestSize))
	}
	if responseSize > 0 {
		HTTPResponseSize.WithLabelValues(method, path).Observe(float64(responseSize))
	}
}

// RecordOperationDuration records the duration of a named operation
func RecordOperationDuration(operation string, duration time.Duration) {
	DBQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
}
