package resilience

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"
)

// discardLogger keeps state-change warnings out of test output.
func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// MockClock is a controllable clock for testing
type MockClock struct {
	mu  sync.RWMutex
	now time.Time
}

func NewMockClock(now time.Time) *MockClock {
	return &MockClock{now: now}
}

func (c *MockClock) Now() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.now
}

func (c *MockClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func (c *MockClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// manualTask is one callback registered with a manualScheduler.
type manualTask struct {
	due       time.Time
	fn        func()
	cancelled bool
}

// manualScheduler holds scheduled callbacks until the test fires them and
// turns Sleep calls into mock-clock advances, so timer behavior is fully
// deterministic.
type manualScheduler struct {
	mu     sync.Mutex
	clock  *MockClock
	tasks  []*manualTask
	sleeps []time.Duration
}

func newManualScheduler(clock *MockClock) *manualScheduler {
	return &manualScheduler{clock: clock}
}

func (s *manualScheduler) Schedule(d time.Duration, fn func()) (cancel func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	task := &manualTask{due: s.clock.Now().Add(d), fn: fn}
	s.tasks = append(s.tasks, task)
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		task.cancelled = true
	}
}

func (s *manualScheduler) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	s.sleeps = append(s.sleeps, d)
	s.mu.Unlock()
	s.clock.Advance(d)
	return nil
}

// fire runs, on the calling goroutine, every task due at or before the
// current mock time, including tasks that become due because a running
// task advanced the clock. Returns how many tasks ran.
func (s *manualScheduler) fire() int {
	fired := 0
	for {
		s.mu.Lock()
		now := s.clock.Now()
		var next *manualTask
		idx := -1
		for i, task := range s.tasks {
			if task.cancelled || task.due.After(now) {
				continue
			}
			if next == nil || task.due.Before(next.due) {
				next = task
				idx = i
			}
		}
		if next == nil {
			s.mu.Unlock()
			return fired
		}
		s.tasks = append(s.tasks[:idx], s.tasks[idx+1:]...)
		s.mu.Unlock()

		next.fn()
		fired++
	}
}

func (s *manualScheduler) pendingTasks() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, task := range s.tasks {
		if !task.cancelled {
			n++
		}
	}
	return n
}

func (s *manualScheduler) recordedSleeps() []time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]time.Duration, len(s.sleeps))
	copy(out, s.sleeps)
	return out
}

// scriptedClient returns canned results in order and records every request
// it performs together with the mock time it ran at.
type scriptedClient struct {
	mu       sync.Mutex
	clock    *MockClock
	script   []scriptedResult
	requests []*http.Request
	times    []time.Time
}

type scriptedResult struct {
	resp *http.Response
	err  error
}

func newScriptedClient(clock *MockClock, script ...scriptedResult) *scriptedClient {
	return &scriptedClient{clock: clock, script: script}
}

func (c *scriptedClient) Do(req *http.Request) (*http.Response, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.requests = append(c.requests, req)
	c.times = append(c.times, c.clock.Now())

	if len(c.script) == 0 {
		return okResponse(), nil
	}
	next := c.script[0]
	c.script = c.script[1:]
	return next.resp, next.err
}

func (c *scriptedClient) calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.requests)
}

func (c *scriptedClient) requestPaths() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]string, 0, len(c.requests))
	for _, req := range c.requests {
		out = append(out, req.URL.Path)
	}
	return out
}

func (c *scriptedClient) requestTimes() []time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]time.Time, len(c.times))
	copy(out, c.times)
	return out
}

func respond(resp *http.Response) scriptedResult {
	return scriptedResult{resp: resp}
}

func fail(err error) scriptedResult {
	return scriptedResult{err: err}
}

func okResponse() *http.Response {
	return &http.Response{
		StatusCode: http.StatusOK,
		Header:     make(http.Header),
		Body:       io.NopCloser(strings.NewReader("ok")),
	}
}

func throttleResponse(headers map[string]string, body string) *http.Response {
	h := make(http.Header)
	for k, v := range headers {
		h.Set(k, v)
	}
	return &http.Response{
		StatusCode: http.StatusTooManyRequests,
		Header:     h,
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func newRequest(t *testing.T, url string) *http.Request {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		t.Fatalf("NewRequest(%q) error = %v", url, err)
	}
	return req
}

// waitFor polls cond on real time until it holds or the deadline passes.
// It exists for tests that need a goroutine to reach a known point (e.g.
// a dispatch parked in the queue) before the mock clock moves on.
func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal(msg)
}
