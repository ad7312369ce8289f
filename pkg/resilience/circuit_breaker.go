package resilience

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// State represents the current state of a circuit breaker.
type State int

const (
	// StateClosed indicates normal operation: calls pass through to the
	// wrapped operation and consecutive failures are counted.
	StateClosed State = iota

	// StateOpen indicates the breaker is tripped: calls are rejected with
	// CircuitOpenError and the wrapped operation is never invoked.
	StateOpen

	// StateHalfOpen indicates the breaker is probing recovery: a single
	// trial call at a time is allowed through.
	StateHalfOpen
)

// String returns a string representation of the state.
func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// ParseState converts a string produced by State.String back to a State.
func ParseState(s string) (State, error) {
	switch s {
	case "closed":
		return StateClosed, nil
	case "open":
		return StateOpen, nil
	case "half-open":
		return StateHalfOpen, nil
	default:
		return StateClosed, fmt.Errorf("unknown circuit state %q", s)
	}
}

// MarshalJSON encodes the state as its string form.
func (s State) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON decodes a string-form state.
func (s *State) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseState(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// BreakerConfig holds configuration for a circuit breaker.
type BreakerConfig struct {
	// FailureThreshold is the number of consecutive failures required to
	// open the circuit.
	// Default: 5
	FailureThreshold int

	// SuccessThreshold is the number of consecutive half-open successes
	// required to close the circuit again.
	// Default: 2
	SuccessThreshold int

	// Timeout is how long an open circuit waits before the next call is
	// allowed through as a recovery trial.
	// Default: 30 seconds
	Timeout time.Duration

	// HistorySize bounds the retained outcome history; the oldest entry
	// is evicted silently once the buffer is full.
	// Default: 100
	HistorySize int

	// Clock provides time abstraction for testing.
	// Default: SystemClock
	Clock Clock

	// Metrics for recording calls, rejections, and state changes.
	// Default: NoOpMetrics
	Metrics Metrics

	// Logger for state-change events.
	// Default: slog.Default()
	Logger *slog.Logger
}

// ApplyDefaults sets safe default values for any missing or zero
// configuration values.
func (c *BreakerConfig) ApplyDefaults() {
	if c.FailureThreshold <= 0 {
		c.FailureThreshold = 5
	}
	if c.SuccessThreshold <= 0 {
		c.SuccessThreshold = 2
	}
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	if c.HistorySize <= 0 {
		c.HistorySize = 100
	}
	if c.Clock == nil {
		c.Clock = &SystemClock{}
	}
	if c.Metrics == nil {
		c.Metrics = NewNoOpMetrics()
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// DefaultBreakerConfig returns a BreakerConfig with safe default values.
func DefaultBreakerConfig() BreakerConfig {
	config := BreakerConfig{}
	config.ApplyDefaults()
	return config
}

// BreakerStatus is a point-in-time snapshot of a breaker's state machine.
type BreakerStatus struct {
	Service              string
	State                State
	ConsecutiveFailures  int
	ConsecutiveSuccesses int

	// OpenedAt is the instant of the most recent transition to open.
	// Nil unless the breaker is currently open.
	OpenedAt *time.Time

	// TimeUntilTrial is how long remains before an open breaker admits a
	// recovery trial. Zero unless the breaker is currently open.
	TimeUntilTrial time.Duration

	// LastStateChange is when the breaker entered its current state.
	LastStateChange time.Time
}

// BreakerStatistics aggregates a breaker's call accounting.
type BreakerStatistics struct {
	Service    string
	State      State
	TotalCalls int64
	Successes  int64
	Failures   int64

	// Rejections counts calls refused while open; the wrapped operation
	// never ran for these and they are absent from TotalCalls.
	Rejections int64

	// SuccessRate is Successes over TotalCalls, 0 when no calls ran.
	SuccessRate float64

	// StateDuration is how long the breaker has been in its current state.
	StateDuration time.Duration
}

// CircuitBreaker guards one named downstream service with the classic
// closed / open / half-open state machine.
//
// Transitions:
//   - closed -> open after FailureThreshold consecutive failures
//   - open -> half-open on the first call after Timeout has elapsed; that
//     call runs as the recovery trial
//   - half-open -> closed after SuccessThreshold consecutive trial
//     successes, or half-open -> open on any trial failure
//
// Half-open admits one trial at a time: while a trial is in flight, other
// calls are rejected the same way as in the open state.
type CircuitBreaker struct {
	service string
	config  BreakerConfig

	mu                   sync.RWMutex
	state                State
	consecutiveFailures  int
	consecutiveSuccesses int
	openedAt             time.Time
	stateChangedAt       time.Time
	trialInFlight        bool

	totalCalls int64
	successes  int64
	failures   int64
	rejections int64

	history *outcomeHistory
}

// NewCircuitBreaker creates a breaker for the named service.
//
// Zero-valued config fields are filled from DefaultBreakerConfig.
func NewCircuitBreaker(service string, config BreakerConfig) *CircuitBreaker {
	config.ApplyDefaults()

	b := &CircuitBreaker{
		service:        service,
		config:         config,
		state:          StateClosed,
		stateChangedAt: config.Clock.Now(),
		history:        newOutcomeHistory(config.HistorySize),
	}
	config.Metrics.RecordBreakerState(service, StateClosed)
	return b
}

// Service returns the name this breaker guards.
func (b *CircuitBreaker) Service() string {
	return b.service
}

// Execute runs fn under the breaker's state machine.
//
// When the breaker admits the call, fn's error is returned unchanged and
// the outcome (with latency) is appended to the bounded history. When the
// breaker is open, fn is never invoked and a CircuitOpenError is returned;
// such rejections appear only in rejection statistics, not in history.
//
// fn may return an error wrapped by Skip to report an outcome that says
// nothing about the service's health; Execute then returns the original
// error without booking a success or a failure.
//
// fn may block; the breaker holds no locks while it runs.
func (b *CircuitBreaker) Execute(fn func() error) error {
	if err := b.allow(); err != nil {
		return err
	}

	start := b.config.Clock.Now()
	err := fn()
	var skipped *skippedOutcome
	if errors.As(err, &skipped) {
		b.releaseTrial()
		return skipped.err
	}
	b.record(start, err)
	return err
}

// Skip wraps err so that Execute returns it to the caller without counting
// the call as a success or a failure: counters, history, and aggregate
// statistics stay untouched, and a half-open trial slot is released for the
// next call instead of being consumed.
//
// Use it for outcomes outside the breaker's concern, such as an upstream
// throttle or the caller cancelling its own context. Skip(nil) returns nil.
func Skip(err error) error {
	if err == nil {
		return nil
	}
	return &skippedOutcome{err: err}
}

// skippedOutcome marks an error as exempt from outcome accounting.
type skippedOutcome struct {
	err error
}

func (e *skippedOutcome) Error() string { return e.err.Error() }
func (e *skippedOutcome) Unwrap() error { return e.err }

// releaseTrial frees the half-open trial slot after a skipped outcome so
// the breaker does not wait out a trial that never measured anything.
func (b *CircuitBreaker) releaseTrial() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == StateHalfOpen {
		b.trialInFlight = false
	}
}

// Run executes fn under b and returns its value.
//
// It is the generic companion to Execute for operations that produce a
// result; rejected calls return the zero value and a CircuitOpenError.
func Run[T any](b *CircuitBreaker, fn func() (T, error)) (T, error) {
	var out T
	err := b.Execute(func() error {
		var innerErr error
		out, innerErr = fn()
		return innerErr
	})
	return out, err
}

// allow decides whether a call may proceed, applying the open -> half-open
// transition when the open timeout has elapsed.
func (b *CircuitBreaker) allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.config.Clock.Now()
	switch b.state {
	case StateClosed:
		return nil

	case StateOpen:
		elapsed := now.Sub(b.openedAt)
		if elapsed >= b.config.Timeout {
			b.transitionLocked(StateHalfOpen, now)
			b.trialInFlight = true
			return nil
		}
		b.rejections++
		b.config.Metrics.RecordBreakerRejection(b.service)
		return &CircuitOpenError{Service: b.service, RetryIn: b.config.Timeout - elapsed}

	case StateHalfOpen:
		if b.trialInFlight {
			b.rejections++
			b.config.Metrics.RecordBreakerRejection(b.service)
			return &CircuitOpenError{Service: b.service}
		}
		b.trialInFlight = true
		return nil

	default:
		return nil
	}
}

// record books the outcome of an admitted call and drives transitions.
func (b *CircuitBreaker) record(start time.Time, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.config.Clock.Now()
	latency := now.Sub(start)

	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeFailure
	}
	b.history.append(HistoryEntry{Timestamp: now, Outcome: outcome, Latency: latency})
	b.totalCalls++
	if err != nil {
		b.failures++
	} else {
		b.successes++
	}
	b.config.Metrics.RecordBreakerCall(b.service, string(outcome), latency)

	switch b.state {
	case StateClosed:
		if err != nil {
			b.consecutiveFailures++
			b.consecutiveSuccesses = 0
			if b.consecutiveFailures >= b.config.FailureThreshold {
				b.transitionLocked(StateOpen, now)
			}
		} else {
			b.consecutiveSuccesses++
			b.consecutiveFailures = 0
		}

	case StateHalfOpen:
		b.trialInFlight = false
		if err != nil {
			b.consecutiveFailures = 0
			b.consecutiveSuccesses = 0
			b.transitionLocked(StateOpen, now)
		} else {
			b.consecutiveSuccesses++
			b.consecutiveFailures = 0
			if b.consecutiveSuccesses >= b.config.SuccessThreshold {
				b.consecutiveSuccesses = 0
				b.transitionLocked(StateClosed, now)
			}
		}

	case StateOpen:
		// A call admitted earlier finished after the breaker was forced
		// open; the outcome is booked without driving a transition.
	}
}

// transitionLocked moves the state machine and records the change.
// Callers must hold b.mu.
func (b *CircuitBreaker) transitionLocked(to State, now time.Time) {
	from := b.state
	b.state = to
	b.stateChangedAt = now

	switch to {
	case StateOpen:
		b.openedAt = now
	case StateClosed:
		b.openedAt = time.Time{}
		b.trialInFlight = false
	case StateHalfOpen:
	}

	b.config.Metrics.RecordBreakerState(b.service, to)
	b.config.Logger.Warn("circuit breaker state changed",
		slog.String("service", b.service),
		slog.String("previous_state", from.String()),
		slog.String("new_state", to.String()),
		slog.Int("consecutive_failures", b.consecutiveFailures),
		slog.Duration("timeout", b.config.Timeout),
	)
}

// Status returns a snapshot of the state machine.
func (b *CircuitBreaker) Status() BreakerStatus {
	b.mu.RLock()
	defer b.mu.RUnlock()

	now := b.config.Clock.Now()
	s := BreakerStatus{
		Service:              b.service,
		State:                b.state,
		ConsecutiveFailures:  b.consecutiveFailures,
		ConsecutiveSuccesses: b.consecutiveSuccesses,
		LastStateChange:      b.stateChangedAt,
	}
	if b.state == StateOpen {
		openedAt := b.openedAt
		s.OpenedAt = &openedAt
		if remaining := b.config.Timeout - now.Sub(b.openedAt); remaining > 0 {
			s.TimeUntilTrial = remaining
		}
	}
	return s
}

// Statistics returns the breaker's aggregate call accounting.
func (b *CircuitBreaker) Statistics() BreakerStatistics {
	b.mu.RLock()
	defer b.mu.RUnlock()

	stats := BreakerStatistics{
		Service:       b.service,
		State:         b.state,
		TotalCalls:    b.totalCalls,
		Successes:     b.successes,
		Failures:      b.failures,
		Rejections:    b.rejections,
		StateDuration: b.config.Clock.Now().Sub(b.stateChangedAt),
	}
	if stats.TotalCalls > 0 {
		stats.SuccessRate = float64(stats.Successes) / float64(stats.TotalCalls)
	}
	return stats
}

// History returns up to limit entries, newest first. A non-positive limit
// returns everything retained.
func (b *CircuitBreaker) History(limit int) []HistoryEntry {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.history.newestFirst(limit)
}

// ForceState administratively moves the breaker to state, bypassing the
// normal transition rules. Counters are reset to the forced state's
// starting point: both consecutive counters zero, openedAt set to now only
// when forcing open, no trial marked in flight.
func (b *CircuitBreaker) ForceState(state State) {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.config.Clock.Now()
	b.consecutiveFailures = 0
	b.consecutiveSuccesses = 0
	b.trialInFlight = false
	b.transitionLocked(state, now)
	if state != StateOpen {
		b.openedAt = time.Time{}
	}
}

// Reset returns the breaker to closed with zeroed counters and aggregate
// statistics. History entries persist for audit; use ClearHistory to drop
// them.
func (b *CircuitBreaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.config.Clock.Now()
	b.consecutiveFailures = 0
	b.consecutiveSuccesses = 0
	b.trialInFlight = false
	b.totalCalls = 0
	b.successes = 0
	b.failures = 0
	b.rejections = 0
	if b.state != StateClosed {
		b.transitionLocked(StateClosed, now)
	} else {
		b.openedAt = time.Time{}
		b.stateChangedAt = now
	}
}

// ClearHistory drops all retained history entries.
func (b *CircuitBreaker) ClearHistory() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.history.clear()
}
