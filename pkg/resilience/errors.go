package resilience

import (
	"errors"
	"fmt"
	"time"
)

// RateLimitError reports that the upstream host signaled throttling.
//
// The dispatch that observed the throttle surfaces this error to its caller;
// it is never swallowed. Calls made while the host's cooldown is active are
// queued transparently instead of receiving this error.
type RateLimitError struct {
	Host       string
	StatusCode int
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("host %s rate limited (status %d, retry after %v)", e.Host, e.StatusCode, e.RetryAfter)
}

// RetryAfterSeconds returns the cooldown rounded up to whole seconds,
// suitable for Retry-After response headers.
func (e *RateLimitError) RetryAfterSeconds() int {
	secs := int(e.RetryAfter / time.Second)
	if e.RetryAfter%time.Second > 0 {
		secs++
	}
	return secs
}

// QueueFullError reports that a host's pending queue is at capacity.
//
// It is synthesized synchronously at enqueue time; the rejected call never
// reaches the network and the queue is left unchanged.
type QueueFullError struct {
	Host  string
	Limit int
}

func (e *QueueFullError) Error() string {
	return fmt.Sprintf("request queue for host %s is full (limit %d)", e.Host, e.Limit)
}

// CircuitOpenError reports that a breaker rejected a call without invoking
// the wrapped operation.
//
// RetryIn is the time remaining until the breaker becomes eligible for a
// trial call; it is zero when a trial is already in flight.
type CircuitOpenError struct {
	Service string
	RetryIn time.Duration
}

func (e *CircuitOpenError) Error() string {
	if e.RetryIn > 0 {
		return fmt.Sprintf("circuit breaker for %s is open (retry in %v)", e.Service, e.RetryIn)
	}
	return fmt.Sprintf("circuit breaker for %s is open", e.Service)
}

// ErrUnknownService is returned by registry operations that name a service
// with no registered breaker.
var ErrUnknownService = errors.New("resilience: unknown service")

// IsRateLimit reports whether err is (or wraps) a RateLimitError.
func IsRateLimit(err error) bool {
	var target *RateLimitError
	return errors.As(err, &target)
}

// IsQueueFull reports whether err is (or wraps) a QueueFullError.
func IsQueueFull(err error) bool {
	var target *QueueFullError
	return errors.As(err, &target)
}

// IsCircuitOpen reports whether err is (or wraps) a CircuitOpenError.
func IsCircuitOpen(err error) bool {
	var target *CircuitOpenError
	return errors.As(err, &target)
}
