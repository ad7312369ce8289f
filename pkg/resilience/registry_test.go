package resilience

import (
	"errors"
	"sync"
	"testing"
	"time"
)

func newTestRegistry(clock *MockClock) *Registry {
	return NewRegistry(BreakerConfig{
		FailureThreshold: 3,
		SuccessThreshold: 2,
		Timeout:          10 * time.Second,
		Clock:            clock,
		Metrics:          NewNoOpMetrics(),
		Logger:           discardLogger(),
	})
}

func TestRegistry_Get(t *testing.T) {
	clock := NewMockClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	r := newTestRegistry(clock)

	t.Run("creates on first use", func(t *testing.T) {
		b := r.Get("slack")
		if b == nil {
			t.Fatal("Get() returned nil")
		}
		if b.Service() != "slack" {
			t.Errorf("Service() = %q, want %q", b.Service(), "slack")
		}
	})

	t.Run("returns the same instance", func(t *testing.T) {
		if r.Get("slack") != r.Get("slack") {
			t.Error("Get() should return the cached instance")
		}
	})

	t.Run("config on first get applies", func(t *testing.T) {
		b := r.Get("fragile", BreakerConfig{FailureThreshold: 1})
		b.Execute(func() error { return errors.New("fail") })
		if got := b.Status().State; got != StateOpen {
			t.Errorf("State = %v, want %v after one failure with threshold 1", got, StateOpen)
		}
	})

	t.Run("existing instance is never reconfigured", func(t *testing.T) {
		first := r.Get("sticky", BreakerConfig{FailureThreshold: 1})
		second := r.Get("sticky", BreakerConfig{FailureThreshold: 100})
		if first != second {
			t.Fatal("Get() with a config should still return the cached instance")
		}
		second.Execute(func() error { return errors.New("fail") })
		if got := second.Status().State; got != StateOpen {
			t.Errorf("State = %v, want %v (original threshold 1 must win)", got, StateOpen)
		}
	})

	t.Run("custom config inherits the registry clock", func(t *testing.T) {
		b := r.Get("clocked", BreakerConfig{FailureThreshold: 1, Timeout: 5 * time.Second})
		b.Execute(func() error { return errors.New("fail") })
		if b.Status().State != StateOpen {
			t.Fatal("breaker should be open")
		}

		// Advancing the registry's mock clock must move this breaker's
		// trial window, proving the clock was inherited.
		clock.Advance(6 * time.Second)
		if err := b.Execute(func() error { return nil }); err != nil {
			t.Errorf("Execute() after timeout error = %v, want a trial call", err)
		}
	})
}

func TestRegistry_Lookup(t *testing.T) {
	clock := NewMockClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	r := newTestRegistry(clock)

	if _, ok := r.Lookup("missing"); ok {
		t.Error("Lookup() ok = true for an unregistered service")
	}

	created := r.Get("slack")
	found, ok := r.Lookup("slack")
	if !ok {
		t.Fatal("Lookup() ok = false for a registered service")
	}
	if found != created {
		t.Error("Lookup() returned a different instance than Get()")
	}
}

func TestRegistry_Names(t *testing.T) {
	clock := NewMockClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	r := newTestRegistry(clock)

	if got := r.Names(); len(got) != 0 {
		t.Errorf("Names() = %v, want empty", got)
	}

	r.Get("slack")
	r.Get("anthropic")
	r.Get("discord")

	got := r.Names()
	want := []string{"anthropic", "discord", "slack"}
	if len(got) != len(want) {
		t.Fatalf("Names() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Names() = %v, want sorted %v", got, want)
		}
	}
}

func TestRegistry_AllStatuses(t *testing.T) {
	clock := NewMockClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	r := newTestRegistry(clock)

	r.Get("healthy").Execute(func() error { return nil })
	broken := r.Get("broken")
	for i := 0; i < 3; i++ {
		broken.Execute(func() error { return errors.New("fail") })
	}

	statuses := r.AllStatuses()
	if len(statuses) != 2 {
		t.Fatalf("AllStatuses() returned %d entries, want 2", len(statuses))
	}
	if statuses["healthy"].State != StateClosed {
		t.Errorf("healthy state = %v, want %v", statuses["healthy"].State, StateClosed)
	}
	if statuses["broken"].State != StateOpen {
		t.Errorf("broken state = %v, want %v", statuses["broken"].State, StateOpen)
	}
}

func TestRegistry_AllStatistics(t *testing.T) {
	clock := NewMockClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	r := newTestRegistry(clock)

	b := r.Get("slack")
	b.Execute(func() error { return nil })
	b.Execute(func() error { return errors.New("fail") })

	stats := r.AllStatistics()
	if len(stats) != 1 {
		t.Fatalf("AllStatistics() returned %d entries, want 1", len(stats))
	}
	if stats["slack"].TotalCalls != 2 {
		t.Errorf("TotalCalls = %v, want 2", stats["slack"].TotalCalls)
	}
	if stats["slack"].SuccessRate != 0.5 {
		t.Errorf("SuccessRate = %v, want 0.5", stats["slack"].SuccessRate)
	}
}

func TestRegistry_Reset(t *testing.T) {
	clock := NewMockClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	r := newTestRegistry(clock)

	t.Run("unknown service", func(t *testing.T) {
		if err := r.Reset("missing"); !errors.Is(err, ErrUnknownService) {
			t.Errorf("Reset() error = %v, want ErrUnknownService", err)
		}
	})

	t.Run("returns the breaker to closed", func(t *testing.T) {
		b := r.Get("slack")
		for i := 0; i < 3; i++ {
			b.Execute(func() error { return errors.New("fail") })
		}
		if b.Status().State != StateOpen {
			t.Fatal("breaker should be open before reset")
		}

		if err := r.Reset("slack"); err != nil {
			t.Fatalf("Reset() error = %v", err)
		}
		if got := b.Status().State; got != StateClosed {
			t.Errorf("State = %v, want %v", got, StateClosed)
		}
		if got := b.Statistics().TotalCalls; got != 0 {
			t.Errorf("TotalCalls = %v, want 0 after reset", got)
		}
		// History survives a reset for audit.
		if got := len(b.History(0)); got != 3 {
			t.Errorf("history length = %v, want 3", got)
		}
	})
}

func TestRegistry_ResetAll(t *testing.T) {
	clock := NewMockClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	r := newTestRegistry(clock)

	for _, name := range []string{"a", "b"} {
		b := r.Get(name)
		for i := 0; i < 3; i++ {
			b.Execute(func() error { return errors.New("fail") })
		}
	}

	r.ResetAll()

	for name, status := range r.AllStatuses() {
		if status.State != StateClosed {
			t.Errorf("%s state = %v, want %v", name, status.State, StateClosed)
		}
		if status.ConsecutiveFailures != 0 {
			t.Errorf("%s ConsecutiveFailures = %v, want 0", name, status.ConsecutiveFailures)
		}
	}
}

func TestRegistry_ConcurrentGet(t *testing.T) {
	clock := NewMockClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	r := newTestRegistry(clock)

	var wg sync.WaitGroup
	instances := make([]*CircuitBreaker, 20)
	for i := range instances {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			instances[i] = r.Get("shared")
		}(i)
	}
	wg.Wait()

	for i := 1; i < len(instances); i++ {
		if instances[i] != instances[0] {
			t.Fatal("concurrent Get() calls returned different instances")
		}
	}
}

func TestDefaultLimiter(t *testing.T) {
	if DefaultLimiter() == nil {
		t.Fatal("DefaultLimiter() returned nil")
	}
	if DefaultLimiter() != DefaultLimiter() {
		t.Error("DefaultLimiter() should return the same instance")
	}
}

func TestDefaultRegistry(t *testing.T) {
	if DefaultRegistry() == nil {
		t.Fatal("DefaultRegistry() returned nil")
	}
	if DefaultRegistry() != DefaultRegistry() {
		t.Error("DefaultRegistry() should return the same instance")
	}
}
