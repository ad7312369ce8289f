package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"campaign-relay/pkg/resilience"
)

const (
	// defaultMaxAttempts is the number of delivery attempts per call,
	// counting the first one.
	defaultMaxAttempts = 2

	// defaultRetryBaseDelay is the wait before the first retry; later
	// retries scale it by the attempt number.
	defaultRetryBaseDelay = 5 * time.Second

	// maxResponseBytes caps how much of a response body is read.
	maxResponseBytes = 10 * 1024 * 1024 // 10MB
)

// ClientConfig contains configuration for the shared platform HTTP client.
type ClientConfig struct {
	// Limiter routes every outbound call and tracks per-host throttle
	// state. Nil selects the process-wide default limiter.
	Limiter *resilience.RateLimiter

	// Breakers holds the per-service circuit breakers. Nil selects the
	// process-wide default registry.
	Breakers *resilience.Registry

	// MaxAttempts is the delivery attempt budget per call (default 2).
	MaxAttempts int

	// RetryBaseDelay is the wait before the first retry (default 5s).
	RetryBaseDelay time.Duration
}

// Client is the shared HTTP client for all platform publishers.
//
// Every call goes through the rate limiter's Dispatch and is wrapped in the
// named service's circuit breaker. Responses are classified into the typed
// delivery errors; HTTP 429 surfaces as *resilience.RateLimitError from the
// limiter itself.
type Client struct {
	limiter     *resilience.RateLimiter
	breakers    *resilience.Registry
	maxAttempts int
	retryDelay  time.Duration
}

// NewClient creates a shared platform client with the specified configuration.
// Zero-valued fields are filled with defaults, so NewClient(ClientConfig{})
// yields a working client on the process-wide limiter and registry.
func NewClient(config ClientConfig) *Client {
	if config.Limiter == nil {
		config.Limiter = resilience.DefaultLimiter()
	}
	if config.Breakers == nil {
		config.Breakers = resilience.DefaultRegistry()
	}
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = defaultMaxAttempts
	}
	if config.RetryBaseDelay <= 0 {
		config.RetryBaseDelay = defaultRetryBaseDelay
	}

	return &Client{
		limiter:     config.Limiter,
		breakers:    config.Breakers,
		maxAttempts: config.MaxAttempts,
		retryDelay:  config.RetryBaseDelay,
	}
}

// Limiter returns the rate limiter the client dispatches through.
func (c *Client) Limiter() *resilience.RateLimiter {
	return c.limiter
}

// Breakers returns the circuit breaker registry the client runs under.
func (c *Client) Breakers() *resilience.Registry {
	return c.breakers
}

// send dispatches req through the rate limiter inside the service's circuit
// breaker and reads the full response body.
//
// Returns:
//   - body bytes: Request succeeded (2xx status)
//   - error: Request failed (non-2xx status, throttle, open breaker, or
//     network error)
//
// Error types:
//   - 429: *resilience.RateLimitError from the limiter (host cooldown set)
//   - 4xx (non-429): ClientError (non-retryable)
//   - 5xx: ServerError (retryable)
//   - Open breaker: *resilience.CircuitOpenError (call never dispatched)
//   - Network error: Connection/timeout error (retryable)
//
// Endpoint failures count toward the breaker tally. Throttle errors and
// caller cancellation are returned wrapped in resilience.Skip, so the
// breaker books no outcome for them: neither says the service itself is
// unhealthy, and a half-open trial slot is released rather than consumed.
func (c *Client) send(ctx context.Context, service string, req *http.Request) ([]byte, error) {
	breaker := c.breakers.Get(service)

	var body []byte
	err := breaker.Execute(func() error {
		resp, err := c.limiter.Dispatch(ctx, req)
		if err != nil {
			if isThrottleError(err) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return resilience.Skip(err)
			}
			return fmt.Errorf("execute http request: %w", err)
		}
		defer func() { _ = resp.Body.Close() }()

		// Read response body for results and error messages
		raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
		if err != nil {
			return fmt.Errorf("read response body: %w", err)
		}

		// Success
		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			body = raw
			return nil
		}

		// Client error (4xx, non-retryable)
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			return &ClientError{
				StatusCode: resp.StatusCode,
				Message:    fmt.Sprintf("%s client error: %s", service, string(raw)),
			}
		}

		// Server error (5xx, retryable)
		if resp.StatusCode >= 500 {
			return &ServerError{
				StatusCode: resp.StatusCode,
				Message:    fmt.Sprintf("%s server error: %s", service, string(raw)),
			}
		}

		return fmt.Errorf("unexpected status code %d: %s", resp.StatusCode, string(raw))
	})

	if err != nil {
		return nil, err
	}
	return body, nil
}

// sendWithRetry runs send with retry logic, rebuilding the request for each
// attempt via newReq so body readers are fresh.
//
// Retry strategy:
//   - Max attempts: MaxAttempts (default 2)
//   - Delay: RetryBaseDelay scaled by attempt number (5s, 10s by default)
//   - Server errors (5xx) and network errors: retried
//   - Client errors (4xx): no retry, fail immediately
//   - Throttle and breaker errors: no retry, surfaced to the caller so the
//     post can be rescheduled once the cooldown or breaker timeout passes
//
// All attempts are logged with request_id for tracing.
func (c *Client) sendWithRetry(ctx context.Context, service string, newReq func() (*http.Request, error)) ([]byte, error) {
	requestID, _ := ctx.Value(requestIDKey).(string)

	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		req, err := newReq()
		if err != nil {
			return nil, fmt.Errorf("create http request: %w", err)
		}

		body, err := c.send(ctx, service, req)

		// Success
		if err == nil {
			slog.Info("platform delivery successful",
				slog.String("request_id", requestID),
				slog.String("service", service),
				slog.Int("attempt", attempt))
			return body, nil
		}

		lastErr = err

		// Throttle and breaker errors carry their own recovery timing
		if isThrottleError(err) {
			slog.Warn("platform delivery throttled",
				slog.String("request_id", requestID),
				slog.String("service", service),
				slog.Any("error", err),
				slog.Int("attempt", attempt))
			return nil, err
		}

		// Handle non-retryable errors (4xx client errors, cancellation)
		if !isRetryableError(err) {
			slog.Error("platform delivery failed with non-retryable error",
				slog.String("request_id", requestID),
				slog.String("service", service),
				slog.Any("error", err),
				slog.Int("attempt", attempt))
			return nil, err
		}

		// Retry on retryable errors (5xx server errors, network errors)
		if attempt < c.maxAttempts {
			delay := c.retryDelay * time.Duration(attempt)
			slog.Warn("platform delivery failed, retrying",
				slog.String("request_id", requestID),
				slog.String("service", service),
				slog.Any("error", err),
				slog.Int("attempt", attempt),
				slog.Duration("delay", delay))

			select {
			case <-time.After(delay):
				continue
			case <-ctx.Done():
				return nil, fmt.Errorf("context canceled during retry backoff: %w", ctx.Err())
			}
		}
	}

	// All retries exhausted
	slog.Error("platform delivery failed after all retries",
		slog.String("request_id", requestID),
		slog.String("service", service),
		slog.Any("error", lastErr),
		slog.Int("max_attempts", c.maxAttempts))

	return nil, fmt.Errorf("%s delivery failed after %d attempts: %w", service, c.maxAttempts, lastErr)
}

// PostJSON marshals payload and POSTs it to endpoint as application/json
// through the service's breaker and the host's rate limit state.
func (c *Client) PostJSON(ctx context.Context, service, endpoint string, payload any) error {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	_, err = c.sendWithRetry(ctx, service, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(jsonData))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	})
	return err
}

// PostForm sends values to endpoint as a form-encoded POST and returns the
// response body. Used for OAuth token endpoints.
func (c *Client) PostForm(ctx context.Context, service, endpoint string, form url.Values) ([]byte, error) {
	encoded := form.Encode()
	return c.sendWithRetry(ctx, service, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(encoded))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		return req, nil
	})
}

// Get fetches rawURL and returns the response body, capped at maxResponseBytes.
func (c *Client) Get(ctx context.Context, service, rawURL string, header http.Header) ([]byte, error) {
	return c.sendWithRetry(ctx, service, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, err
		}
		for key, values := range header {
			for _, value := range values {
				req.Header.Add(key, value)
			}
		}
		return req, nil
	})
}
