package platform

import (
	"context"
	"errors"

	"campaign-relay/internal/utils/text"
	"campaign-relay/pkg/resilience"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const requestIDKey contextKey = "request_id"

// Common delivery error types shared by all publishers.
//
// Throttling (HTTP 429) is not represented here: the rate limiter consumes
// those responses and surfaces them as *resilience.RateLimitError, carrying
// the host and the applied cooldown.

// ClientError represents a 4xx client error from a delivery endpoint.
type ClientError struct {
	StatusCode int
	Message    string
}

func (e *ClientError) Error() string {
	return e.Message
}

// ServerError represents a 5xx server error from a delivery endpoint.
type ServerError struct {
	StatusCode int
	Message    string
}

func (e *ServerError) Error() string {
	return e.Message
}

// isThrottleError checks if the error came out of the rate limiter or a
// circuit breaker rather than the endpoint itself. Those errors carry their
// own recovery timing, so retrying in place would only duplicate the wait.
func isThrottleError(err error) bool {
	return resilience.IsRateLimit(err) || resilience.IsQueueFull(err) || resilience.IsCircuitOpen(err)
}

// isRetryableError checks if the error is worth retrying (5xx server errors, network errors).
// Client errors (4xx), throttle errors, and context errors are not retryable.
func isRetryableError(err error) bool {
	// Server errors are retryable
	var serverErr *ServerError
	if errors.As(err, &serverErr) {
		return true
	}

	// Client errors are NOT retryable
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return false
	}

	// Throttle and breaker errors own their recovery timing
	if isThrottleError(err) {
		return false
	}

	// A canceled caller gains nothing from another attempt
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	// Network errors and other transport failures are retryable
	return true
}

// truncateText truncates text to maxRunes characters.
// If truncated, appends suffix to indicate continuation. Counting is
// rune-based: channel APIs measure limits in characters, not bytes.
func truncateText(s string, maxRunes int, suffix string) string {
	if text.CountRunes(s) <= maxRunes {
		return s
	}

	// Reserve space for suffix
	truncateAt := maxRunes - text.CountRunes(suffix)
	if truncateAt < 0 {
		truncateAt = 0
	}

	return text.TruncateRunes(s, truncateAt) + suffix
}
