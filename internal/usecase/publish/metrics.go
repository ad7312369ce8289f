package publish

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the publishing pipeline
var (
	// publishClaimedTotal tracks posts claimed for delivery per channel
	publishClaimedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "post_publish_claimed_total",
			Help: "Total number of posts claimed for publishing",
		},
		[]string{"channel"},
	)

	// publishResultTotal tracks delivery results per channel
	publishResultTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "post_publish_result_total",
			Help: "Total number of publish attempts by result",
		},
		[]string{"channel", "status"}, // status: success|failure
	)

	// publishDuration tracks delivery duration per channel
	publishDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "post_publish_duration_seconds",
			Help:    "Post delivery duration in seconds",
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 30}, // 100ms to 30s
		},
		[]string{"channel"},
	)

	// publishDeferredTotal tracks posts deferred without a delivery attempt
	publishDeferredTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "post_publish_deferred_total",
			Help: "Total number of posts deferred before delivery",
		},
		[]string{"channel", "reason"}, // reason: pool_full|circuit_open|rate_limited|no_publisher
	)

	// activePublishes tracks currently active publish goroutines
	activePublishes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "post_publish_active_goroutines",
			Help: "Number of active publish goroutines",
		},
	)
)

// RecordClaimed records a post claimed for delivery.
func RecordClaimed(channel string) {
	publishClaimedTotal.WithLabelValues(channel).Inc()
}

// RecordSuccess records a successful delivery and its duration.
func RecordSuccess(channel string, duration time.Duration) {
	publishResultTotal.WithLabelValues(channel, "success").Inc()
	publishDuration.WithLabelValues(channel).Observe(duration.Seconds())
}

// RecordFailure records a failed delivery and its duration.
func RecordFailure(channel string, duration time.Duration) {
	publishResultTotal.WithLabelValues(channel, "failure").Inc()
	publishDuration.WithLabelValues(channel).Observe(duration.Seconds())
}

// RecordDeferred records a post deferred before any delivery attempt.
// Reasons: pool_full, circuit_open, rate_limited, no_publisher.
func RecordDeferred(channel, reason string) {
	publishDeferredTotal.WithLabelValues(channel, reason).Inc()
}

// IncrementActiveGoroutines increments the active publish goroutine gauge.
func IncrementActiveGoroutines() {
	activePublishes.Inc()
}

// DecrementActiveGoroutines decrements the active publish goroutine gauge.
func DecrementActiveGoroutines() {
	activePublishes.Dec()
}
