package resilience

import (
	"context"
	"time"
)

// TimerScheduler is the production Scheduler backed by the runtime timer heap.
type TimerScheduler struct{}

// NewTimerScheduler creates a Scheduler that uses real timers.
func NewTimerScheduler() *TimerScheduler {
	return &TimerScheduler{}
}

// Schedule runs fn once after d using time.AfterFunc.
func (s *TimerScheduler) Schedule(d time.Duration, fn func()) (cancel func()) {
	if d < 0 {
		d = 0
	}
	t := time.AfterFunc(d, fn)
	return func() { t.Stop() }
}

// Sleep blocks for d or until ctx is done.
func (s *TimerScheduler) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
