package worker

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewWorkerMetrics(t *testing.T) {
	// Use the shared instance to avoid duplicate Prometheus registration
	metrics := sharedTestMetrics

	if metrics == nil {
		t.Fatal("NewWorkerMetrics returned nil")
	}

	if metrics.ConfigMetrics == nil {
		t.Error("ConfigMetrics is nil")
	}
	if metrics.ScanRunsTotal == nil {
		t.Error("ScanRunsTotal is nil")
	}
	if metrics.ScanDurationSeconds == nil {
		t.Error("ScanDurationSeconds is nil")
	}
	if metrics.ScanPostsClaimedTotal == nil {
		t.Error("ScanPostsClaimedTotal is nil")
	}
	if metrics.ScanLastSuccessTimestamp == nil {
		t.Error("ScanLastSuccessTimestamp is nil")
	}

	// Should not panic; registration already happened via promauto
	metrics.MustRegister()
}

func TestWorkerMetrics_RecordScanRun(t *testing.T) {
	// Custom registry keeps this test isolated from the default one
	reg := prometheus.NewRegistry()

	counter := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "test_worker_publish_scan_runs_total",
		Help: "Test counter",
	}, []string{"status"})
	reg.MustRegister(counter)

	metrics := &WorkerMetrics{
		ScanRunsTotal: counter,
	}

	metrics.RecordScanRun("success")
	metrics.RecordScanRun("success")
	metrics.RecordScanRun("failure")

	successCount := testutil.ToFloat64(metrics.ScanRunsTotal.WithLabelValues("success"))
	if successCount != 2 {
		t.Errorf("Expected success count 2, got %f", successCount)
	}

	failureCount := testutil.ToFloat64(metrics.ScanRunsTotal.WithLabelValues("failure"))
	if failureCount != 1 {
		t.Errorf("Expected failure count 1, got %f", failureCount)
	}
}

func TestWorkerMetrics_RecordScanDuration(t *testing.T) {
	reg := prometheus.NewRegistry()

	histogram := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "test_worker_publish_scan_duration_seconds",
		Help:    "Test histogram",
		Buckets: []float64{0.1, 0.5, 1, 5, 15, 60, 300},
	})
	reg.MustRegister(histogram)

	metrics := &WorkerMetrics{
		ScanDurationSeconds: histogram,
	}

	metrics.RecordScanDuration(0.25)
	metrics.RecordScanDuration(3)

	count := testutil.CollectAndCount(histogram)
	if count != 1 {
		t.Errorf("Expected 1 histogram metric, got %d", count)
	}
}

func TestWorkerMetrics_RecordPostsClaimed(t *testing.T) {
	reg := prometheus.NewRegistry()

	counter := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "test_worker_publish_scan_posts_claimed_total",
		Help: "Test counter",
	})
	reg.MustRegister(counter)

	metrics := &WorkerMetrics{
		ScanPostsClaimedTotal: counter,
	}

	metrics.RecordPostsClaimed(3)
	metrics.RecordPostsClaimed(2)

	total := testutil.ToFloat64(metrics.ScanPostsClaimedTotal)
	if total != 5 {
		t.Errorf("Expected claimed total 5, got %f", total)
	}
}

func TestWorkerMetrics_RecordLastSuccess(t *testing.T) {
	reg := prometheus.NewRegistry()

	gauge := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "test_worker_publish_scan_last_success_timestamp",
		Help: "Test gauge",
	})
	reg.MustRegister(gauge)

	metrics := &WorkerMetrics{
		ScanLastSuccessTimestamp: gauge,
	}

	metrics.RecordLastSuccess()

	value := testutil.ToFloat64(metrics.ScanLastSuccessTimestamp)
	if value <= 0 {
		t.Errorf("Expected positive timestamp, got %f", value)
	}
}
