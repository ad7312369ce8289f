// Package resilience provides framework-agnostic protection for outbound calls.
//
// This package implements two composable guards for third-party platform APIs:
// a per-host rate limiter with bounded FIFO queuing and exponential backoff
// (Limiter), and a per-service circuit breaker state machine with a registry
// (CircuitBreaker, Registry). It is designed to be reusable across different
// callers (platform clients, OAuth exchanges, metadata lookups, background
// jobs) and carries no knowledge of what the protected operations do.
package resilience

import (
	"context"
	"net/http"
	"time"
)

// Doer performs a single outbound HTTP request.
//
// *http.Client satisfies this interface. Implementations must honor the
// request context and return transport-level failures as errors.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Clock provides an abstraction for time operations to enable testing.
//
// This interface allows for dependency injection of time functions,
// making it easy to test time-dependent behavior with fake clocks.
type Clock interface {
	// Now returns the current time.
	//
	// Production implementations should return time.Now().
	// Test implementations can return fixed or controlled times.
	Now() time.Time
}

// SystemClock is a Clock implementation that uses the system time.
type SystemClock struct{}

// Now returns the current system time.
func (c *SystemClock) Now() time.Time {
	return time.Now()
}

// Scheduler abstracts deferred execution so that cooldown expiry, queue
// draining, and pacing delays can be tested deterministically without
// real wall-clock waits.
type Scheduler interface {
	// Schedule runs fn once after d has elapsed.
	//
	// The returned function cancels the pending task; cancelling after the
	// task has started is a no-op. fn runs on an unspecified goroutine.
	Schedule(d time.Duration, fn func()) (cancel func())

	// Sleep blocks for d or until ctx is done, whichever comes first.
	//
	// Returns nil after a full sleep, or ctx.Err() when interrupted.
	// Non-positive durations return immediately.
	Sleep(ctx context.Context, d time.Duration) error
}

// Metrics defines the interface for recording resilience-layer metrics.
//
// Implementations can use Prometheus, StatsD, or custom metrics systems.
// All methods must be safe for concurrent use.
type Metrics interface {
	// RecordDispatch records a completed outbound dispatch.
	//
	// Parameters:
	//   - host: Target host (URL authority)
	//   - status: Dispatch result ("ok", "throttled", "transport_error")
	//   - duration: Time spent on the outbound call
	RecordDispatch(host, status string, duration time.Duration)

	// RecordThrottle records that a host entered (or extended) a cooldown.
	//
	// Parameters:
	//   - host: Target host
	RecordThrottle(host string)

	// RecordQueueDepth records the current queue depth for a host.
	//
	// Parameters:
	//   - host: Target host
	//   - depth: Number of entries waiting for the cooldown to expire
	RecordQueueDepth(host string, depth int)

	// RecordQueueRejected records an enqueue attempt rejected at capacity.
	//
	// Parameters:
	//   - host: Target host
	RecordQueueRejected(host string)

	// RecordQueueDrained records entries released by a queue drain.
	//
	// Parameters:
	//   - host: Target host
	//   - entries: Number of entries executed or discarded by the drain
	RecordQueueDrained(host string, entries int)

	// RecordBreakerCall records an operation executed through a breaker.
	//
	// Parameters:
	//   - service: Breaker name
	//   - outcome: Operation outcome ("success" or "failure")
	//   - latency: Time the wrapped operation took
	RecordBreakerCall(service, outcome string, latency time.Duration)

	// RecordBreakerRejection records a call rejected while the breaker
	// was open (the wrapped operation never ran).
	//
	// Parameters:
	//   - service: Breaker name
	RecordBreakerRejection(service string)

	// RecordBreakerState records the current state of a circuit breaker.
	//
	// Parameters:
	//   - service: Breaker name
	//   - state: Current state (closed, open, half-open)
	RecordBreakerState(service string, state State)
}
