package worker

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"campaign-relay/internal/pkg/config"
)

// WorkerMetrics provides Prometheus metrics for the publish worker.
// It embeds the standard ConfigMetrics for configuration monitoring and adds
// worker-specific metrics for publish scan tracking.
//
// Embedded metrics (from ConfigMetrics):
//   - worker_config_load_timestamp: Unix timestamp of last configuration load
//   - worker_config_validation_errors_total: Total validation errors by field
//   - worker_config_fallbacks_total: Total fallback operations by field
//   - worker_config_fallback_active: 1 if any fallback active, 0 otherwise
//
// Worker-specific metrics:
//   - worker_publish_scan_runs_total: Total publish scans by status (success/failure)
//   - worker_publish_scan_duration_seconds: Duration histogram of scan execution
//   - worker_publish_scan_posts_claimed_total: Total posts claimed across all scans
//   - worker_publish_scan_last_success_timestamp: Unix timestamp of last successful scan
type WorkerMetrics struct {
	*config.ConfigMetrics

	// ScanRunsTotal counts publish scans by outcome.
	// Type: Counter
	// Labels: status (success, failure)
	ScanRunsTotal *prometheus.CounterVec

	// ScanDurationSeconds measures how long one publish scan takes.
	// Type: Histogram
	// Buckets: 100ms to 5m, covering an empty scan up to a full batch
	ScanDurationSeconds prometheus.Histogram

	// ScanPostsClaimedTotal counts posts claimed for publishing across
	// all scans. Claimed is not published; publish outcomes are tracked
	// by the publish service's own metrics.
	// Type: Counter
	ScanPostsClaimedTotal prometheus.Counter

	// ScanLastSuccessTimestamp records the Unix timestamp of the last
	// successful scan. Alert when this falls behind the scan schedule.
	// Type: Gauge
	ScanLastSuccessTimestamp prometheus.Gauge
}

// NewWorkerMetrics creates a new WorkerMetrics instance with all metrics
// initialized and registered via promauto.
func NewWorkerMetrics() *WorkerMetrics {
	return &WorkerMetrics{
		ConfigMetrics: config.NewConfigMetrics("worker"),

		ScanRunsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "worker_publish_scan_runs_total",
			Help: "Total number of publish scans by status (success/failure)",
		}, []string{"status"}),

		ScanDurationSeconds: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "worker_publish_scan_duration_seconds",
			Help:    "Duration of publish scan execution in seconds",
			Buckets: []float64{0.1, 0.5, 1, 5, 15, 60, 300},
		}),

		ScanPostsClaimedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "worker_publish_scan_posts_claimed_total",
			Help: "Total number of posts claimed for publishing across all scans",
		}),

		ScanLastSuccessTimestamp: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "worker_publish_scan_last_success_timestamp",
			Help: "Unix timestamp of the last successful publish scan",
		}),
	}
}

// MustRegister is a no-op kept for API symmetry.
// Metrics are automatically registered via promauto in NewWorkerMetrics.
func (m *WorkerMetrics) MustRegister() {
	// No-op: metrics are auto-registered via promauto
}

// RecordScanRun increments the scan run counter for the given status.
// Status should be either "success" or "failure".
func (m *WorkerMetrics) RecordScanRun(status string) {
	m.ScanRunsTotal.WithLabelValues(status).Inc()
}

// RecordScanDuration observes the duration of a publish scan in seconds.
func (m *WorkerMetrics) RecordScanDuration(seconds float64) {
	m.ScanDurationSeconds.Observe(seconds)
}

// RecordPostsClaimed adds the number of posts claimed in one scan.
func (m *WorkerMetrics) RecordPostsClaimed(count int) {
	m.ScanPostsClaimedTotal.Add(float64(count))
}

// RecordLastSuccess records the current time as the last successful scan.
func (m *WorkerMetrics) RecordLastSuccess() {
	m.ScanLastSuccessTimestamp.SetToCurrentTime()
}
