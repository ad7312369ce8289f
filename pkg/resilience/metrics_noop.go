package resilience

import "time"

// NoOpMetrics implements the Metrics interface with no-op implementations.
//
// This implementation is useful for:
// - Testing environments where metrics are not needed
// - Disabling metrics collection (e.g., development mode)
// - Benchmarking dispatch and breaker paths without metrics overhead
//
// All methods are no-ops and have minimal performance impact.
type NoOpMetrics struct{}

// NewNoOpMetrics creates a new NoOpMetrics instance.
func NewNoOpMetrics() *NoOpMetrics {
	return &NoOpMetrics{}
}

// RecordDispatch is a no-op implementation.
func (m *NoOpMetrics) RecordDispatch(host, status string, duration time.Duration) {
	// No-op
}

// RecordThrottle is a no-op implementation.
func (m *NoOpMetrics) RecordThrottle(host string) {
	// No-op
}

// RecordQueueDepth is a no-op implementation.
func (m *NoOpMetrics) RecordQueueDepth(host string, depth int) {
	// No-op
}

// RecordQueueRejected is a no-op implementation.
func (m *NoOpMetrics) RecordQueueRejected(host string) {
	// No-op
}

// RecordQueueDrained is a no-op implementation.
func (m *NoOpMetrics) RecordQueueDrained(host string, entries int) {
	// No-op
}

// RecordBreakerCall is a no-op implementation.
func (m *NoOpMetrics) RecordBreakerCall(service, outcome string, latency time.Duration) {
	// No-op
}

// RecordBreakerRejection is a no-op implementation.
func (m *NoOpMetrics) RecordBreakerRejection(service string) {
	// No-op
}

// RecordBreakerState is a no-op implementation.
func (m *NoOpMetrics) RecordBreakerState(service string, state State) {
	// No-op
}
