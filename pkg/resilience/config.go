package resilience

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// Config contains the configuration for an outbound rate limiter.
//
// The throttle-handling fields are immutable after construction and are
// echoed back by Limiter.Config for status reporting.
type Config struct {
	// MaxQueueSize bounds the number of calls that may wait per host while
	// its cooldown is active. Enqueue attempts beyond this limit fail
	// synchronously with QueueFullError.
	// Default: 100
	MaxQueueSize int

	// DefaultRetryAfter is the cooldown applied when a throttling response
	// carries a malformed or past-dated retry hint.
	// Default: 60 seconds
	DefaultRetryAfter time.Duration

	// BaseDelay is the first-step exponential backoff delay used when a
	// throttling response carries no retry hint at all.
	// Default: 1 second
	BaseDelay time.Duration

	// MaxDelay caps the exponential backoff delay.
	// Default: 60 seconds
	MaxDelay time.Duration

	// BackoffMultiplier is the exponential backoff growth factor.
	// Default: 2.0
	BackoffMultiplier float64

	// PerHostDelay maps a host to a fixed pacing interval: consecutive
	// calls to that host are spaced at least this far apart. Hosts absent
	// from the map are not paced.
	PerHostDelay map[string]time.Duration

	// DrainInterval is the pause between consecutive queued entries when a
	// cooldown expires and the queue drains, so the released backlog does
	// not burst.
	// Default: 100 milliseconds
	DrainInterval time.Duration

	// Client performs the outbound calls.
	// Default: http.DefaultClient
	Client Doer

	// Clock provides time abstraction for testing.
	// Default: SystemClock
	Clock Clock

	// Scheduler provides deferred execution for drains and pacing waits.
	// Default: TimerScheduler
	Scheduler Scheduler

	// Metrics for recording dispatch, throttle, and queue activity.
	// Default: NoOpMetrics
	Metrics Metrics

	// Logger for throttle and drain events.
	// Default: slog.Default()
	Logger *slog.Logger
}

// Validate checks if the Config is valid.
//
// Returns an error if any configuration values are invalid.
func (c *Config) Validate() error {
	if c.MaxQueueSize < 0 {
		return fmt.Errorf("MaxQueueSize must be non-negative, got %d", c.MaxQueueSize)
	}
	if c.DefaultRetryAfter < 0 {
		return fmt.Errorf("DefaultRetryAfter must be non-negative, got %s", c.DefaultRetryAfter)
	}
	if c.BaseDelay < 0 {
		return fmt.Errorf("BaseDelay must be non-negative, got %s", c.BaseDelay)
	}
	if c.MaxDelay < 0 {
		return fmt.Errorf("MaxDelay must be non-negative, got %s", c.MaxDelay)
	}
	if c.MaxDelay > 0 && c.BaseDelay > c.MaxDelay {
		return fmt.Errorf("BaseDelay %s exceeds MaxDelay %s", c.BaseDelay, c.MaxDelay)
	}
	if c.BackoffMultiplier < 0 {
		return fmt.Errorf("BackoffMultiplier must be non-negative, got %g", c.BackoffMultiplier)
	}
	if c.BackoffMultiplier > 0 && c.BackoffMultiplier < 1 {
		return fmt.Errorf("BackoffMultiplier must be at least 1, got %g", c.BackoffMultiplier)
	}
	if c.DrainInterval < 0 {
		return fmt.Errorf("DrainInterval must be non-negative, got %s", c.DrainInterval)
	}
	for host, delay := range c.PerHostDelay {
		if host == "" {
			return fmt.Errorf("PerHostDelay contains an empty host key")
		}
		if delay < 0 {
			return fmt.Errorf("PerHostDelay[%q] must be non-negative, got %s", host, delay)
		}
	}
	return nil
}

// ApplyDefaults sets safe default values for any missing or zero
// configuration values.
func (c *Config) ApplyDefaults() {
	if c.MaxQueueSize == 0 {
		c.MaxQueueSize = 100
	}
	if c.DefaultRetryAfter == 0 {
		c.DefaultRetryAfter = 60 * time.Second
	}
	if c.BaseDelay == 0 {
		c.BaseDelay = 1 * time.Second
	}
	if c.MaxDelay == 0 {
		c.MaxDelay = 60 * time.Second
	}
	if c.BackoffMultiplier == 0 {
		c.BackoffMultiplier = 2.0
	}
	if c.DrainInterval == 0 {
		c.DrainInterval = 100 * time.Millisecond
	}
	if c.Client == nil {
		c.Client = http.DefaultClient
	}
	if c.Clock == nil {
		c.Clock = &SystemClock{}
	}
	if c.Scheduler == nil {
		c.Scheduler = NewTimerScheduler()
	}
	if c.Metrics == nil {
		c.Metrics = NewNoOpMetrics()
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// DefaultConfig returns a Config with safe default values.
//
// This is useful for testing and as a starting point for configuration.
func DefaultConfig() Config {
	config := Config{}
	config.ApplyDefaults()
	return config
}
