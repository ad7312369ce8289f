// Package slo exposes gauges tracking the service-level objectives of the
// API surface and the publish pipeline. A periodic job recomputes each ratio
// and pushes it here; alerting compares the gauges against the targets.
package slo

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// SLO targets.
const (
	// AvailabilitySLO is the target uptime percentage (43 minutes of downtime per month).
	AvailabilitySLO = 99.9

	// LatencyP95SLO / LatencyP99SLO are latency targets in seconds.
	LatencyP95SLO = 0.200
	LatencyP99SLO = 0.500

	// ErrorRateSLO is the maximum acceptable 5xx ratio.
	ErrorRateSLO = 0.001

	// PublishSuccessSLO is the target ratio of delivered posts among all
	// posts that reached a terminal state.
	PublishSuccessSLO = 0.99
)

var (
	// SLOAvailability is (total_requests - 5xx) / total_requests.
	SLOAvailability = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "slo_availability_ratio",
		Help: "Current availability ratio (0-1), target: 0.999",
	})

	// SLOLatencyP95 and SLOLatencyP99 come from the request duration histogram:
	// histogram_quantile(0.95, rate(http_request_duration_seconds_bucket[5m]))
	SLOLatencyP95 = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "slo_latency_p95_seconds",
		Help: "Current p95 latency in seconds, target: 0.200",
	})
	SLOLatencyP99 = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "slo_latency_p99_seconds",
		Help: "Current p99 latency in seconds, target: 0.500",
	})

	// SLOErrorRate is 5xx / total_requests.
	SLOErrorRate = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "slo_error_rate_ratio",
		Help: "Current error rate ratio (0-1), target: 0.001",
	})

	// SLOPublishSuccess is published / (published + failed) over all posts
	// in storage.
	SLOPublishSuccess = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "slo_publish_success_ratio",
		Help: "Ratio of delivered posts among terminal posts (0-1), target: 0.99",
	})
)

// UpdateAvailability sets the availability gauge.
func UpdateAvailability(ratio float64) {
	SLOAvailability.Set(ratio)
}

// UpdateLatencyP95 sets the p95 latency gauge in seconds.
func UpdateLatencyP95(seconds float64) {
	SLOLatencyP95.Set(seconds)
}

// UpdateLatencyP99 sets the p99 latency gauge in seconds.
func UpdateLatencyP99(seconds float64) {
	SLOLatencyP99.Set(seconds)
}

// UpdateErrorRate sets the error rate gauge.
func UpdateErrorRate(ratio float64) {
	SLOErrorRate.Set(ratio)
}

// UpdatePublishSuccess updates the publish success gauge from post status
// counts. Posts still in flight (scheduled, publishing) are not counted;
// when no post has reached a terminal state yet the gauge is set to 1 so a
// fresh deployment does not page anyone.
func UpdatePublishSuccess(published, failed int64) {
	terminal := published + failed
	if terminal == 0 {
		SLOPublishSuccess.Set(1)
		return
	}
	SLOPublishSuccess.Set(float64(published) / float64(terminal))
}
