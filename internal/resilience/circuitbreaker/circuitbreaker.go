// Package circuitbreaker guards external calls (LLM providers, feeds,
// landing pages, the database) with github.com/sony/gobreaker so one
// failing dependency does not cascade through the service.
package circuitbreaker

import (
	"log/slog"
	"time"

	"github.com/sony/gobreaker"
)

// Config describes one breaker.
type Config struct {
	// Name identifies the breaker in logs and metrics.
	Name string
	// MaxRequests caps trial requests while half-open.
	MaxRequests uint32
	// Interval is the closed-state period after which counts reset.
	Interval time.Duration
	// Timeout is how long the breaker stays open before probing.
	Timeout time.Duration
	// FailureThreshold is the failure ratio that trips the breaker.
	FailureThreshold float64
	// MinRequests is the sample size required before the ratio counts.
	MinRequests uint32
}

// DefaultConfig trips at 60% failures over at least 5 requests and probes
// again after a minute.
func DefaultConfig(name string) Config {
	return Config{
		Name:             name,
		MaxRequests:      3,
		Interval:         30 * time.Second,
		Timeout:          60 * time.Second,
		FailureThreshold: 0.6,
		MinRequests:      5,
	}
}

// ClaudeAPIConfig guards Claude copy-generation calls.
func ClaudeAPIConfig() Config {
	return DefaultConfig("claude-api")
}

// OpenAIAPIConfig guards OpenAI copy and embedding calls.
func OpenAIAPIConfig() Config {
	return DefaultConfig("openai-api")
}

// FeedFetchConfig guards inspiration feed pulls. Feeds flap often, so the
// breaker needs a bigger sample and a higher threshold before tripping.
func FeedFetchConfig() Config {
	cfg := DefaultConfig("feed-fetch")
	cfg.MaxRequests = 5
	cfg.Interval = time.Minute
	cfg.Timeout = 2 * time.Minute
	cfg.FailureThreshold = 0.7
	cfg.MinRequests = 10
	return cfg
}

// PageScrapeConfig guards landing page extraction. A broken selector or a
// restructured page keeps failing until someone looks at it, so an opened
// circuit waits an hour before probing.
func PageScrapeConfig() Config {
	cfg := DefaultConfig("page-scrape")
	cfg.Interval = time.Minute
	cfg.Timeout = time.Hour
	cfg.FailureThreshold = 0.8
	return cfg
}

// CircuitBreaker wraps gobreaker with config-driven trip conditions and
// state-change logging.
type CircuitBreaker struct {
	breaker *gobreaker.CircuitBreaker
	name    string
}

// New builds a breaker from cfg.
func New(cfg Config) *CircuitBreaker {
	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			return ratio >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("circuit breaker state changed",
				slog.String("circuit", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()))
		},
	}
	return &CircuitBreaker{breaker: gobreaker.NewCircuitBreaker(settings), name: cfg.Name}
}

// Execute runs fn through the breaker; when the circuit is open it
// returns gobreaker.ErrOpenState without calling fn.
func (cb *CircuitBreaker) Execute(fn func() (interface{}, error)) (interface{}, error) {
	return cb.breaker.Execute(fn)
}

// State returns the breaker's current state.
func (cb *CircuitBreaker) State() gobreaker.State {
	return cb.breaker.State()
}

// Name returns the breaker's name.
func (cb *CircuitBreaker) Name() string {
	return cb.name
}

// IsOpen reports whether the breaker is currently open.
func (cb *CircuitBreaker) IsOpen() bool {
	return cb.breaker.State() == gobreaker.StateOpen
}
