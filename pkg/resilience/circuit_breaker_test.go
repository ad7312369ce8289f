package resilience

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestState_String(t *testing.T) {
	tests := []struct {
		name  string
		state State
		want  string
	}{
		{"closed state", StateClosed, "closed"},
		{"open state", StateOpen, "open"},
		{"half-open state", StateHalfOpen, "half-open"},
		{"unknown state", State(999), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.state.String(); got != tt.want {
				t.Errorf("String() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseState(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    State
		wantErr bool
	}{
		{"closed", "closed", StateClosed, false},
		{"open", "open", StateOpen, false},
		{"half-open", "half-open", StateHalfOpen, false},
		{"unknown string", "ajar", StateClosed, true},
		{"empty string", "", StateClosed, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseState(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseState(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseState(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestState_JSONRoundTrip(t *testing.T) {
	data, err := json.Marshal(StateHalfOpen)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if string(data) != `"half-open"` {
		t.Errorf("Marshal() = %s, want %q", data, "half-open")
	}

	var got State
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if got != StateHalfOpen {
		t.Errorf("Unmarshal() = %v, want %v", got, StateHalfOpen)
	}

	if err := json.Unmarshal([]byte(`"ajar"`), &got); err == nil {
		t.Error("Unmarshal() should reject an unknown state string")
	}
}

func TestNewCircuitBreaker(t *testing.T) {
	tests := []struct {
		name                 string
		config               BreakerConfig
		wantFailureThreshold int
		wantSuccessThreshold int
		wantTimeout          time.Duration
	}{
		{
			name: "with valid config",
			config: BreakerConfig{
				FailureThreshold: 3,
				SuccessThreshold: 1,
				Timeout:          10 * time.Second,
			},
			wantFailureThreshold: 3,
			wantSuccessThreshold: 1,
			wantTimeout:          10 * time.Second,
		},
		{
			name:                 "zero config uses defaults",
			config:               BreakerConfig{},
			wantFailureThreshold: 5,
			wantSuccessThreshold: 2,
			wantTimeout:          30 * time.Second,
		},
		{
			name: "negative thresholds use defaults",
			config: BreakerConfig{
				FailureThreshold: -1,
				SuccessThreshold: -1,
				Timeout:          -time.Second,
			},
			wantFailureThreshold: 5,
			wantSuccessThreshold: 2,
			wantTimeout:          30 * time.Second,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cb := NewCircuitBreaker("svc", tt.config)
			if cb == nil {
				t.Fatal("NewCircuitBreaker() returned nil")
			}
			if cb.Service() != "svc" {
				t.Errorf("Service() = %q, want %q", cb.Service(), "svc")
			}
			if cb.config.FailureThreshold != tt.wantFailureThreshold {
				t.Errorf("FailureThreshold = %v, want %v", cb.config.FailureThreshold, tt.wantFailureThreshold)
			}
			if cb.config.SuccessThreshold != tt.wantSuccessThreshold {
				t.Errorf("SuccessThreshold = %v, want %v", cb.config.SuccessThreshold, tt.wantSuccessThreshold)
			}
			if cb.config.Timeout != tt.wantTimeout {
				t.Errorf("Timeout = %v, want %v", cb.config.Timeout, tt.wantTimeout)
			}
			if cb.config.Clock == nil {
				t.Error("Clock should not be nil")
			}
			if cb.config.Metrics == nil {
				t.Error("Metrics should not be nil")
			}
			if cb.Status().State != StateClosed {
				t.Errorf("initial state = %v, want %v", cb.Status().State, StateClosed)
			}
		})
	}
}

func newTestBreaker(clock *MockClock) *CircuitBreaker {
	return NewCircuitBreaker("payments", BreakerConfig{
		FailureThreshold: 3,
		SuccessThreshold: 2,
		Timeout:          10 * time.Second,
		Clock:            clock,
		Metrics:          NewNoOpMetrics(),
		Logger:           discardLogger(),
	})
}

func TestCircuitBreaker_Execute_ClosedState(t *testing.T) {
	clock := NewMockClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	cb := newTestBreaker(clock)

	t.Run("successful operation", func(t *testing.T) {
		err := cb.Execute(func() error { return nil })
		if err != nil {
			t.Errorf("Execute() error = %v, want nil", err)
		}
		if got := cb.Status().State; got != StateClosed {
			t.Errorf("State = %v, want %v", got, StateClosed)
		}
	})

	t.Run("failed operation returns the error unchanged", func(t *testing.T) {
		sentinel := errors.New("operation failed")
		err := cb.Execute(func() error { return sentinel })
		if !errors.Is(err, sentinel) {
			t.Errorf("Execute() error = %v, want %v", err, sentinel)
		}
		if got := cb.Status().State; got != StateClosed {
			t.Errorf("State = %v, want %v (below threshold)", got, StateClosed)
		}
	})

	t.Run("success resets the failure streak", func(t *testing.T) {
		cb.Execute(func() error { return errors.New("fail") })
		cb.Execute(func() error { return errors.New("fail") })
		cb.Execute(func() error { return nil })

		status := cb.Status()
		if status.ConsecutiveFailures != 0 {
			t.Errorf("ConsecutiveFailures = %v, want 0 after success", status.ConsecutiveFailures)
		}
		if status.State != StateClosed {
			t.Errorf("State = %v, want %v", status.State, StateClosed)
		}
	})
}

func TestCircuitBreaker_OpensAfterConsecutiveFailures(t *testing.T) {
	clock := NewMockClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	cb := newTestBreaker(clock)

	for i := 0; i < 3; i++ {
		cb.Execute(func() error { return errors.New("fail") })
	}

	status := cb.Status()
	if status.State != StateOpen {
		t.Fatalf("State = %v, want %v after 3 failures", status.State, StateOpen)
	}
	if status.OpenedAt == nil || !status.OpenedAt.Equal(clock.Now()) {
		t.Errorf("OpenedAt = %v, want %v", status.OpenedAt, clock.Now())
	}

	// The next call must be rejected without invoking the operation.
	invoked := 0
	err := cb.Execute(func() error {
		invoked++
		return nil
	})

	if invoked != 0 {
		t.Errorf("operation invoked %d times while open, want 0", invoked)
	}
	if !IsCircuitOpen(err) {
		t.Fatalf("Execute() error = %v, want CircuitOpenError", err)
	}
	var openErr *CircuitOpenError
	errors.As(err, &openErr)
	if openErr.Service != "payments" {
		t.Errorf("CircuitOpenError.Service = %q, want %q", openErr.Service, "payments")
	}
	if openErr.RetryIn != 10*time.Second {
		t.Errorf("CircuitOpenError.RetryIn = %v, want %v", openErr.RetryIn, 10*time.Second)
	}

	stats := cb.Statistics()
	if stats.TotalCalls != 3 {
		t.Errorf("TotalCalls = %v, want 3 (rejections are not calls)", stats.TotalCalls)
	}
	if stats.Rejections != 1 {
		t.Errorf("Rejections = %v, want 1", stats.Rejections)
	}
	if got := len(cb.History(0)); got != 3 {
		t.Errorf("history length = %v, want 3 (rejections never ran)", got)
	}
}

func TestCircuitBreaker_TrialAfterTimeout(t *testing.T) {
	clock := NewMockClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	cb := newTestBreaker(clock)

	for i := 0; i < 3; i++ {
		cb.Execute(func() error { return errors.New("fail") })
	}

	// Before the timeout elapses, calls are still rejected.
	clock.Advance(9 * time.Second)
	err := cb.Execute(func() error { return nil })
	if !IsCircuitOpen(err) {
		t.Fatalf("Execute() before timeout error = %v, want CircuitOpenError", err)
	}

	// After the timeout, the next call runs as the recovery trial.
	clock.Advance(2 * time.Second)
	invoked := 0
	err = cb.Execute(func() error {
		invoked++
		return nil
	})
	if err != nil {
		t.Fatalf("trial Execute() error = %v, want nil", err)
	}
	if invoked != 1 {
		t.Fatalf("trial invoked %d times, want 1", invoked)
	}

	// One success is below SuccessThreshold 2, so the breaker keeps probing.
	status := cb.Status()
	if status.State != StateHalfOpen {
		t.Fatalf("State = %v, want %v after first trial success", status.State, StateHalfOpen)
	}
	if status.ConsecutiveSuccesses != 1 {
		t.Errorf("ConsecutiveSuccesses = %v, want 1", status.ConsecutiveSuccesses)
	}

	// The second consecutive success closes the circuit and resets counters.
	if err := cb.Execute(func() error { return nil }); err != nil {
		t.Fatalf("second trial Execute() error = %v, want nil", err)
	}
	status = cb.Status()
	if status.State != StateClosed {
		t.Errorf("State = %v, want %v after success threshold", status.State, StateClosed)
	}
	if status.ConsecutiveSuccesses != 0 || status.ConsecutiveFailures != 0 {
		t.Errorf("counters = (%d successes, %d failures), want both 0",
			status.ConsecutiveSuccesses, status.ConsecutiveFailures)
	}
	if status.OpenedAt != nil {
		t.Errorf("OpenedAt = %v, want nil when closed", status.OpenedAt)
	}
}

func TestCircuitBreaker_HalfOpenFailureReopens(t *testing.T) {
	clock := NewMockClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	cb := newTestBreaker(clock)

	for i := 0; i < 3; i++ {
		cb.Execute(func() error { return errors.New("fail") })
	}
	firstOpenedAt := *cb.Status().OpenedAt

	clock.Advance(11 * time.Second)
	err := cb.Execute(func() error { return errors.New("still failing") })
	if err == nil {
		t.Fatal("trial Execute() should return the operation error")
	}

	status := cb.Status()
	if status.State != StateOpen {
		t.Fatalf("State = %v, want %v after failed trial", status.State, StateOpen)
	}
	if status.OpenedAt == nil {
		t.Fatal("OpenedAt should be set while open")
	}
	if !status.OpenedAt.After(firstOpenedAt) {
		t.Errorf("OpenedAt = %v, want later than first opening %v", status.OpenedAt, firstOpenedAt)
	}
	if !status.OpenedAt.Equal(clock.Now()) {
		t.Errorf("OpenedAt = %v, want refreshed to %v", status.OpenedAt, clock.Now())
	}
	if status.ConsecutiveFailures != 0 || status.ConsecutiveSuccesses != 0 {
		t.Errorf("counters = (%d failures, %d successes), want both 0 after reopening",
			status.ConsecutiveFailures, status.ConsecutiveSuccesses)
	}

	// The full timeout applies again from the fresh openedAt.
	clock.Advance(9 * time.Second)
	if err := cb.Execute(func() error { return nil }); !IsCircuitOpen(err) {
		t.Errorf("Execute() error = %v, want CircuitOpenError before the new timeout", err)
	}
}

func TestCircuitBreaker_HalfOpenSingleTrial(t *testing.T) {
	clock := NewMockClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	cb := newTestBreaker(clock)

	for i := 0; i < 3; i++ {
		cb.Execute(func() error { return errors.New("fail") })
	}
	clock.Advance(11 * time.Second)

	release := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- cb.Execute(func() error {
			<-release
			return nil
		})
	}()

	waitFor(t, func() bool { return cb.Status().State == StateHalfOpen },
		"breaker never entered half-open")

	// While the trial is in flight, other calls are rejected.
	invoked := 0
	err := cb.Execute(func() error {
		invoked++
		return nil
	})
	if invoked != 0 {
		t.Errorf("second call invoked the operation during an in-flight trial")
	}
	if !IsCircuitOpen(err) {
		t.Errorf("Execute() during trial error = %v, want CircuitOpenError", err)
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("trial Execute() error = %v, want nil", err)
	}

	// With the trial settled, the next call is admitted as a new trial.
	if err := cb.Execute(func() error { return nil }); err != nil {
		t.Errorf("Execute() after trial error = %v, want nil", err)
	}
	if got := cb.Status().State; got != StateClosed {
		t.Errorf("State = %v, want %v after two successes", got, StateClosed)
	}
}

func TestCircuitBreaker_SkippedOutcome(t *testing.T) {
	clock := NewMockClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	cb := newTestBreaker(clock)

	t.Run("skip books nothing in closed state", func(t *testing.T) {
		sentinel := errors.New("upstream throttled")
		err := cb.Execute(func() error { return Skip(sentinel) })

		if !errors.Is(err, sentinel) {
			t.Fatalf("Execute() error = %v, want %v unwrapped", err, sentinel)
		}
		stats := cb.Statistics()
		if stats.TotalCalls != 0 || stats.Successes != 0 || stats.Failures != 0 {
			t.Errorf("skipped outcome was recorded: calls=%d successes=%d failures=%d",
				stats.TotalCalls, stats.Successes, stats.Failures)
		}
		if got := len(cb.History(0)); got != 0 {
			t.Errorf("history length = %v, want 0 after skipped outcome", got)
		}
		if got := cb.Status().ConsecutiveFailures; got != 0 {
			t.Errorf("ConsecutiveFailures = %v, want 0", got)
		}
	})

	t.Run("skip does not break a failure streak", func(t *testing.T) {
		cb.Execute(func() error { return errors.New("fail") })
		cb.Execute(func() error { return errors.New("fail") })
		cb.Execute(func() error { return Skip(errors.New("caller gave up")) })

		if got := cb.Status().ConsecutiveFailures; got != 2 {
			t.Errorf("ConsecutiveFailures = %v, want 2 (skip is not a success)", got)
		}
	})

	t.Run("Skip(nil) is nil", func(t *testing.T) {
		if err := Skip(nil); err != nil {
			t.Errorf("Skip(nil) = %v, want nil", err)
		}
	})
}

func TestCircuitBreaker_HalfOpenSkippedTrial(t *testing.T) {
	clock := NewMockClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	cb := newTestBreaker(clock)

	for i := 0; i < 3; i++ {
		cb.Execute(func() error { return errors.New("fail") })
	}
	clock.Advance(11 * time.Second)

	// The recovery trial gets throttled: it measured nothing, so it must
	// neither count toward SuccessThreshold nor consume the trial slot.
	err := cb.Execute(func() error { return Skip(errors.New("429 from upstream")) })
	if err == nil {
		t.Fatal("Execute() = nil, want the skipped error")
	}

	status := cb.Status()
	if status.State != StateHalfOpen {
		t.Fatalf("State = %v, want %v after skipped trial", status.State, StateHalfOpen)
	}
	if status.ConsecutiveSuccesses != 0 {
		t.Errorf("ConsecutiveSuccesses = %v, want 0 (trial never measured)", status.ConsecutiveSuccesses)
	}

	// The slot is free again: two real successes close the breaker.
	if err := cb.Execute(func() error { return nil }); err != nil {
		t.Fatalf("Execute() after skipped trial error = %v, want admission", err)
	}
	if err := cb.Execute(func() error { return nil }); err != nil {
		t.Fatalf("second trial Execute() error = %v", err)
	}
	if got := cb.Status().State; got != StateClosed {
		t.Errorf("State = %v, want %v after two real trial successes", got, StateClosed)
	}
}

func TestCircuitBreaker_History(t *testing.T) {
	clock := NewMockClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	cb := NewCircuitBreaker("api", BreakerConfig{
		FailureThreshold: 10,
		SuccessThreshold: 2,
		Timeout:          10 * time.Second,
		HistorySize:      3,
		Clock:            clock,
		Metrics:          NewNoOpMetrics(),
		Logger:           discardLogger(),
	})

	cb.Execute(func() error { clock.Advance(5 * time.Millisecond); return nil })
	clock.Advance(time.Second)
	cb.Execute(func() error { clock.Advance(10 * time.Millisecond); return errors.New("fail") })
	clock.Advance(time.Second)
	cb.Execute(func() error { clock.Advance(15 * time.Millisecond); return nil })

	got := cb.History(0)
	if len(got) != 3 {
		t.Fatalf("History(0) returned %d entries, want 3", len(got))
	}
	if got[0].Outcome != OutcomeSuccess || got[0].Latency != 15*time.Millisecond {
		t.Errorf("newest entry = %+v, want success with 15ms latency", got[0])
	}
	if got[1].Outcome != OutcomeFailure || got[1].Latency != 10*time.Millisecond {
		t.Errorf("middle entry = %+v, want failure with 10ms latency", got[1])
	}
	if !got[0].Timestamp.After(got[1].Timestamp) {
		t.Error("entries should be ordered newest first")
	}

	t.Run("limit", func(t *testing.T) {
		if got := cb.History(2); len(got) != 2 {
			t.Errorf("History(2) returned %d entries, want 2", len(got))
		}
	})

	t.Run("eviction at capacity", func(t *testing.T) {
		clock.Advance(time.Second)
		cb.Execute(func() error { return errors.New("newest") })

		got := cb.History(0)
		if len(got) != 3 {
			t.Fatalf("History(0) returned %d entries, want 3 at capacity", len(got))
		}
		if got[0].Outcome != OutcomeFailure {
			t.Errorf("newest entry outcome = %v, want %v", got[0].Outcome, OutcomeFailure)
		}
		// The oldest entry (the 5ms success) has been evicted.
		for _, e := range got {
			if e.Latency == 5*time.Millisecond {
				t.Error("oldest entry should have been evicted")
			}
		}
	})

	t.Run("clear", func(t *testing.T) {
		cb.ClearHistory()
		if got := cb.History(0); len(got) != 0 {
			t.Errorf("History(0) after ClearHistory returned %d entries, want 0", len(got))
		}
	})
}

func TestCircuitBreaker_Statistics(t *testing.T) {
	clock := NewMockClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	cb := newTestBreaker(clock)

	cb.Execute(func() error { return nil })
	cb.Execute(func() error { return nil })
	cb.Execute(func() error { return nil })
	cb.Execute(func() error { return errors.New("fail") })

	stats := cb.Statistics()
	if stats.Service != "payments" {
		t.Errorf("Service = %q, want %q", stats.Service, "payments")
	}
	if stats.TotalCalls != 4 {
		t.Errorf("TotalCalls = %v, want 4", stats.TotalCalls)
	}
	if stats.Successes != 3 {
		t.Errorf("Successes = %v, want 3", stats.Successes)
	}
	if stats.Failures != 1 {
		t.Errorf("Failures = %v, want 1", stats.Failures)
	}
	if stats.SuccessRate != 0.75 {
		t.Errorf("SuccessRate = %v, want 0.75", stats.SuccessRate)
	}
	if stats.Rejections != 0 {
		t.Errorf("Rejections = %v, want 0", stats.Rejections)
	}

	t.Run("state duration tracks the clock", func(t *testing.T) {
		clock.Advance(42 * time.Second)
		if got := cb.Statistics().StateDuration; got != 42*time.Second {
			t.Errorf("StateDuration = %v, want 42s", got)
		}
	})

	t.Run("empty breaker has zero rate", func(t *testing.T) {
		fresh := newTestBreaker(clock)
		if got := fresh.Statistics().SuccessRate; got != 0 {
			t.Errorf("SuccessRate = %v, want 0 with no calls", got)
		}
	})
}

func TestCircuitBreaker_Status_TimeUntilTrial(t *testing.T) {
	clock := NewMockClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	cb := newTestBreaker(clock)

	if got := cb.Status().TimeUntilTrial; got != 0 {
		t.Errorf("TimeUntilTrial = %v, want 0 while closed", got)
	}

	for i := 0; i < 3; i++ {
		cb.Execute(func() error { return errors.New("fail") })
	}

	if got := cb.Status().TimeUntilTrial; got != 10*time.Second {
		t.Errorf("TimeUntilTrial = %v, want 10s just after opening", got)
	}

	clock.Advance(4 * time.Second)
	if got := cb.Status().TimeUntilTrial; got != 6*time.Second {
		t.Errorf("TimeUntilTrial = %v, want 6s after 4s", got)
	}

	clock.Advance(7 * time.Second)
	if got := cb.Status().TimeUntilTrial; got != 0 {
		t.Errorf("TimeUntilTrial = %v, want 0 once the timeout has passed", got)
	}
}

func TestCircuitBreaker_ForceState(t *testing.T) {
	clock := NewMockClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))

	t.Run("force open rejects calls", func(t *testing.T) {
		cb := newTestBreaker(clock)
		cb.ForceState(StateOpen)

		invoked := 0
		err := cb.Execute(func() error {
			invoked++
			return nil
		})
		if invoked != 0 {
			t.Error("operation ran while forced open")
		}
		if !IsCircuitOpen(err) {
			t.Errorf("Execute() error = %v, want CircuitOpenError", err)
		}
		if got := cb.Status().OpenedAt; got == nil || !got.Equal(clock.Now()) {
			t.Errorf("OpenedAt = %v, want %v", got, clock.Now())
		}
	})

	t.Run("force closed zeroes counters", func(t *testing.T) {
		cb := newTestBreaker(clock)
		cb.Execute(func() error { return errors.New("fail") })
		cb.Execute(func() error { return errors.New("fail") })

		cb.ForceState(StateClosed)

		status := cb.Status()
		if status.State != StateClosed {
			t.Errorf("State = %v, want %v", status.State, StateClosed)
		}
		if status.ConsecutiveFailures != 0 {
			t.Errorf("ConsecutiveFailures = %v, want 0", status.ConsecutiveFailures)
		}
	})

	t.Run("force half-open admits one trial", func(t *testing.T) {
		cb := newTestBreaker(clock)
		cb.ForceState(StateHalfOpen)

		if err := cb.Execute(func() error { return nil }); err != nil {
			t.Fatalf("trial Execute() error = %v, want nil", err)
		}
		if got := cb.Status().State; got != StateHalfOpen {
			t.Errorf("State = %v, want %v after one of two required successes", got, StateHalfOpen)
		}
		if err := cb.Execute(func() error { return nil }); err != nil {
			t.Fatalf("second trial Execute() error = %v, want nil", err)
		}
		if got := cb.Status().State; got != StateClosed {
			t.Errorf("State = %v, want %v", got, StateClosed)
		}
	})
}

func TestCircuitBreaker_Reset(t *testing.T) {
	clock := NewMockClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	cb := newTestBreaker(clock)

	cb.Execute(func() error { return nil })
	for i := 0; i < 3; i++ {
		cb.Execute(func() error { return errors.New("fail") })
	}
	cb.Execute(func() error { return nil }) // rejected while open

	if cb.Status().State != StateOpen {
		t.Fatal("breaker should be open before reset")
	}

	cb.Reset()

	status := cb.Status()
	if status.State != StateClosed {
		t.Errorf("State = %v, want %v after Reset", status.State, StateClosed)
	}
	if status.ConsecutiveFailures != 0 || status.ConsecutiveSuccesses != 0 {
		t.Errorf("counters = (%d failures, %d successes), want both 0",
			status.ConsecutiveFailures, status.ConsecutiveSuccesses)
	}
	if status.OpenedAt != nil {
		t.Errorf("OpenedAt = %v, want nil", status.OpenedAt)
	}

	stats := cb.Statistics()
	if stats.TotalCalls != 0 || stats.Successes != 0 || stats.Failures != 0 || stats.Rejections != 0 {
		t.Errorf("Statistics after Reset = %+v, want zeroed aggregates", stats)
	}

	// History persists through a reset until explicitly cleared.
	if got := len(cb.History(0)); got != 4 {
		t.Errorf("history length after Reset = %v, want 4", got)
	}

	// The breaker works normally after a reset.
	if err := cb.Execute(func() error { return nil }); err != nil {
		t.Errorf("Execute() after Reset error = %v, want nil", err)
	}
}

func TestCircuitBreaker_Run(t *testing.T) {
	clock := NewMockClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	cb := newTestBreaker(clock)

	t.Run("returns the operation's value", func(t *testing.T) {
		got, err := Run(cb, func() (string, error) { return "hello", nil })
		if err != nil {
			t.Fatalf("Run() error = %v, want nil", err)
		}
		if got != "hello" {
			t.Errorf("Run() = %q, want %q", got, "hello")
		}
	})

	t.Run("rejection returns the zero value", func(t *testing.T) {
		cb.ForceState(StateOpen)
		got, err := Run(cb, func() (string, error) { return "hello", nil })
		if !IsCircuitOpen(err) {
			t.Fatalf("Run() error = %v, want CircuitOpenError", err)
		}
		if got != "" {
			t.Errorf("Run() = %q, want zero value", got)
		}
	})
}

func TestCircuitBreaker_ConcurrentAccess(t *testing.T) {
	clock := NewMockClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	cb := NewCircuitBreaker("bulk", BreakerConfig{
		FailureThreshold: 1000,
		SuccessThreshold: 2,
		Timeout:          10 * time.Second,
		Clock:            clock,
		Metrics:          NewNoOpMetrics(),
		Logger:           discardLogger(),
	})

	var wg sync.WaitGroup
	numGoroutines := 10
	operationsPerGoroutine := 100

	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < operationsPerGoroutine; j++ {
				op := func() error {
					if j%2 == 0 {
						return nil
					}
					return errors.New("error")
				}
				cb.Execute(op)
			}
		}()
	}

	wg.Wait()

	stats := cb.Statistics()
	if want := int64(numGoroutines * operationsPerGoroutine); stats.TotalCalls != want {
		t.Errorf("TotalCalls = %v, want %v", stats.TotalCalls, want)
	}
	if stats.Successes+stats.Failures != stats.TotalCalls {
		t.Errorf("Successes(%d) + Failures(%d) != TotalCalls(%d)",
			stats.Successes, stats.Failures, stats.TotalCalls)
	}
}
