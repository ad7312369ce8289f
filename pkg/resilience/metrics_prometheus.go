package resilience

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusMetrics implements the Metrics interface using Prometheus.
//
// It covers both halves of the package:
// - Outbound dispatch counters and latency histograms per host
// - Throttle and queue activity (depth, rejections, drains) per host
// - Circuit breaker calls, rejections, and state per service
//
// All metrics use a custom registry for better testability and isolation.
type PrometheusMetrics struct {
	registry *prometheus.Registry

	// dispatchTotal counts dispatched requests by host and terminal status.
	// Labels:
	//   - host: Target host (authority part of the request URL)
	//   - status: "ok", "throttled", or "transport_error"
	dispatchTotal *prometheus.CounterVec

	// dispatchDuration tracks wall time of the underlying HTTP call.
	// Labels:
	//   - host: Target host
	//
	// Buckets cover typical third-party API latency:
	// - 25ms to 500ms (healthy calls)
	// - 1s to 10s (slow responses, likely near client timeouts)
	dispatchDuration *prometheus.HistogramVec

	// throttleTotal counts 429 responses that put a host into cooldown.
	// Labels:
	//   - host: Target host
	throttleTotal *prometheus.CounterVec

	// queueDepth tracks the current number of requests waiting for a
	// host cooldown to end.
	// Labels:
	//   - host: Target host
	queueDepth *prometheus.GaugeVec

	// queueRejectionsTotal counts enqueue attempts refused because the
	// per-host queue was full.
	// Labels:
	//   - host: Target host
	queueRejectionsTotal *prometheus.CounterVec

	// queueDrainedTotal counts queued requests released by drain runs.
	// Labels:
	//   - host: Target host
	queueDrainedTotal *prometheus.CounterVec

	// breakerCallsTotal counts protected calls by service and outcome.
	// Labels:
	//   - service: Breaker name (e.g. "platform:x", "anthropic")
	//   - outcome: "success" or "failure"
	breakerCallsTotal *prometheus.CounterVec

	// breakerCallDuration tracks latency of protected calls.
	// Labels:
	//   - service: Breaker name
	breakerCallDuration *prometheus.HistogramVec

	// breakerRejectionsTotal counts calls rejected while the circuit was
	// open or a half-open trial was already in flight.
	// Labels:
	//   - service: Breaker name
	breakerRejectionsTotal *prometheus.CounterVec

	// breakerState tracks the circuit state per service.
	// Labels:
	//   - service: Breaker name
	//
	// Values:
	//   - 0: Closed (normal operation)
	//   - 1: Open (rejecting calls)
	//   - 2: Half-Open (testing recovery)
	breakerState *prometheus.GaugeVec
}

// NewPrometheusMetrics creates a new PrometheusMetrics instance with a custom registry.
//
// Using a custom registry (instead of the global prometheus.DefaultRegisterer) provides:
// - Better testability (isolated metrics per test)
// - No metric conflicts when running multiple instances
// - Explicit metric lifecycle management
//
// The registry can be passed to promhttp.HandlerFor() to expose metrics.
func NewPrometheusMetrics() *PrometheusMetrics {
	registry := prometheus.NewRegistry()

	dispatchTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "outbound_dispatch_total",
			Help: "Total outbound dispatches by host and status",
		},
		[]string{"host", "status"},
	)

	dispatchDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "outbound_dispatch_duration_seconds",
			Help:    "Duration of outbound HTTP calls",
			Buckets: []float64{0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
		},
		[]string{"host"},
	)

	throttleTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "outbound_throttled_total",
			Help: "Total 429 responses that started a host cooldown",
		},
		[]string{"host"},
	)

	queueDepth := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "outbound_queue_depth",
			Help: "Current number of requests queued behind a host cooldown",
		},
		[]string{"host"},
	)

	queueRejectionsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "outbound_queue_rejections_total",
			Help: "Total enqueue attempts refused because the host queue was full",
		},
		[]string{"host"},
	)

	queueDrainedTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "outbound_queue_drained_total",
			Help: "Total queued requests released by drain runs",
		},
		[]string{"host"},
	)

	breakerCallsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_calls_total",
			Help: "Total protected calls by service and outcome",
		},
		[]string{"service", "outcome"},
	)

	breakerCallDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "circuit_breaker_call_duration_seconds",
			Help:    "Duration of calls executed through a circuit breaker",
			Buckets: []float64{0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
		},
		[]string{"service"},
	)

	breakerRejectionsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_rejections_total",
			Help: "Total calls rejected by an open circuit",
		},
		[]string{"service"},
	)

	breakerState := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=open, 2=half-open)",
		},
		[]string{"service"},
	)

	// Register all metrics with the custom registry
	registry.MustRegister(
		dispatchTotal,
		dispatchDuration,
		throttleTotal,
		queueDepth,
		queueRejectionsTotal,
		queueDrainedTotal,
		breakerCallsTotal,
		breakerCallDuration,
		breakerRejectionsTotal,
		breakerState,
	)

	return &PrometheusMetrics{
		registry:               registry,
		dispatchTotal:          dispatchTotal,
		dispatchDuration:       dispatchDuration,
		throttleTotal:          throttleTotal,
		queueDepth:             queueDepth,
		queueRejectionsTotal:   queueRejectionsTotal,
		queueDrainedTotal:      queueDrainedTotal,
		breakerCallsTotal:      breakerCallsTotal,
		breakerCallDuration:    breakerCallDuration,
		breakerRejectionsTotal: breakerRejectionsTotal,
		breakerState:           breakerState,
	}
}

// Registry returns the Prometheus registry containing all resilience metrics.
//
// This can be used with promhttp.HandlerFor() to expose metrics:
//
//	metrics := NewPrometheusMetrics()
//	http.Handle("/metrics", promhttp.HandlerFor(metrics.Registry(), promhttp.HandlerOpts{}))
func (m *PrometheusMetrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordDispatch records a completed outbound call and its duration.
func (m *PrometheusMetrics) RecordDispatch(host, status string, duration time.Duration) {
	m.dispatchTotal.WithLabelValues(host, status).Inc()
	m.dispatchDuration.WithLabelValues(host).Observe(duration.Seconds())
}

// RecordThrottle records a 429 response that put host into cooldown.
func (m *PrometheusMetrics) RecordThrottle(host string) {
	m.throttleTotal.WithLabelValues(host).Inc()
}

// RecordQueueDepth records the current queue depth for host.
func (m *PrometheusMetrics) RecordQueueDepth(host string, depth int) {
	m.queueDepth.WithLabelValues(host).Set(float64(depth))
}

// RecordQueueRejected records an enqueue refused by the queue cap.
func (m *PrometheusMetrics) RecordQueueRejected(host string) {
	m.queueRejectionsTotal.WithLabelValues(host).Inc()
}

// RecordQueueDrained records queued requests released by a drain run.
func (m *PrometheusMetrics) RecordQueueDrained(host string, entries int) {
	m.queueDrainedTotal.WithLabelValues(host).Add(float64(entries))
}

// RecordBreakerCall records a protected call, its outcome, and latency.
func (m *PrometheusMetrics) RecordBreakerCall(service, outcome string, latency time.Duration) {
	m.breakerCallsTotal.WithLabelValues(service, outcome).Inc()
	m.breakerCallDuration.WithLabelValues(service).Observe(latency.Seconds())
}

// RecordBreakerRejection records a call rejected without invoking the
// protected function.
func (m *PrometheusMetrics) RecordBreakerRejection(service string) {
	m.breakerRejectionsTotal.WithLabelValues(service).Inc()
}

// RecordBreakerState records the circuit state for service.
//
// The state is mapped to a numeric gauge for Prometheus alerting:
//   - 0 = closed
//   - 1 = open
//   - 2 = half-open
func (m *PrometheusMetrics) RecordBreakerState(service string, state State) {
	var stateValue float64
	switch state {
	case StateClosed:
		stateValue = 0
	case StateOpen:
		stateValue = 1
	case StateHalfOpen:
		stateValue = 2
	default:
		// Unknown state, default to closed
		stateValue = 0
	}
	m.breakerState.WithLabelValues(service).Set(stateValue)
}
