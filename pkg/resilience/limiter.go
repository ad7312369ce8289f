package resilience

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter routes outbound HTTP calls through per-host throttle tracking.
//
// Behavior per call:
//   - Calls to a host inside an active cooldown are queued (strict FIFO,
//     bounded by MaxQueueSize) and re-dispatched when the cooldown expires.
//   - Calls to an unthrottled host wait out the host's pacing interval, if
//     one is configured, and then go to the network.
//   - A throttling response (HTTP 429) starts or extends the host's
//     cooldown using the upstream retry hint when present, exponential
//     backoff otherwise, and surfaces a RateLimitError to the caller.
//
// Host state lives in memory for the lifetime of the instance; nothing is
// shared between instances or persisted across restarts.
type RateLimiter struct {
	config Config
	store  *hostStore
	pacers map[string]*rate.Limiter
}

type dispatchResult struct {
	resp *http.Response
	err  error
}

// NewRateLimiter creates a rate limiter with the given configuration.
//
// Zero-valued fields are filled from DefaultConfig; explicitly invalid
// values (negative sizes or delays, multiplier below 1) return an error.
func NewRateLimiter(config Config) (*RateLimiter, error) {
	config.ApplyDefaults()
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid rate limiter config: %w", err)
	}

	// Copy the pacing table so the running limiter cannot observe caller
	// mutations of the map.
	perHost := make(map[string]time.Duration, len(config.PerHostDelay))
	pacers := make(map[string]*rate.Limiter, len(config.PerHostDelay))
	for host, delay := range config.PerHostDelay {
		perHost[host] = delay
		if delay > 0 {
			pacers[host] = rate.NewLimiter(rate.Every(delay), 1)
		}
	}
	config.PerHostDelay = perHost

	return &RateLimiter{
		config: config,
		store:  newHostStore(),
		pacers: pacers,
	}, nil
}

// Dispatch performs req, honoring the target host's cooldown and pacing.
//
// When the host is inside an active cooldown the call is enqueued and
// Dispatch blocks until the queued entry runs after the cooldown expires;
// the queue is strict FIFO per host. An enqueue attempt beyond MaxQueueSize
// fails immediately with QueueFullError and the queue is left unchanged.
//
// Outcomes:
//   - Non-throttled responses are returned as-is; the caller owns the body.
//   - HTTP 429 responses are consumed and returned as a RateLimitError
//     carrying the host and the applied cooldown.
//   - Transport errors propagate unchanged and do not affect host state.
//
// ctx bounds queue waits and pacing delays. Once the request is on the
// wire it runs to completion under the request's own context; a caller
// that abandons a queued call still lets the entry execute, and its
// response is discarded.
//
// Parameters:
//   - ctx: Context for queue and pacing waits
//   - req: Request to perform; req.URL.Host keys the throttle state
//
// Returns the response, or one of QueueFullError, RateLimitError, a
// transport error, or ctx.Err().
func (l *RateLimiter) Dispatch(ctx context.Context, req *http.Request) (*http.Response, error) {
	if req == nil || req.URL == nil {
		return nil, fmt.Errorf("resilience: dispatch requires a request with a URL")
	}
	host := req.URL.Host
	if host == "" {
		return nil, fmt.Errorf("resilience: request URL %q has no host", req.URL)
	}

	if _, limited := l.store.cooldown(host, l.config.Clock.Now()); limited {
		return l.enqueueAndWait(ctx, host, req)
	}
	return l.send(ctx, host, req)
}

// enqueueAndWait parks the call until the host's cooldown drain runs it.
//
// The entry's execute goes straight to send, never back through Dispatch:
// re-entering Dispatch from a drained entry could re-enqueue it and block
// the drain goroutine on its own result channel, wedging the queue. A host
// that re-enters cooldown while the entry is between dequeue and send just
// costs that one call a throttle outcome.
func (l *RateLimiter) enqueueAndWait(ctx context.Context, host string, req *http.Request) (*http.Response, error) {
	ch := make(chan dispatchResult, 1)
	entry := &queueEntry{
		ctx: ctx,
		execute: func() {
			resp, err := l.send(ctx, host, req)
			ch <- dispatchResult{resp: resp, err: err}
		},
		reject: func(err error) {
			ch <- dispatchResult{err: err}
		},
	}

	depth, err := l.store.enqueue(host, entry, l.config.MaxQueueSize)
	if err != nil {
		l.config.Metrics.RecordQueueRejected(host)
		l.config.Logger.Warn("outbound queue full",
			slog.String("host", host),
			slog.Int("max_queue_size", l.config.MaxQueueSize),
		)
		return nil, err
	}
	l.config.Metrics.RecordQueueDepth(host, depth)
	l.config.Logger.Debug("outbound call queued for cooldown",
		slog.String("host", host),
		slog.Int("queue_length", depth),
	)

	select {
	case res := <-ch:
		return res.resp, res.err
	case <-ctx.Done():
		// The entry will still execute or be rejected exactly once; reap
		// the late result so its body does not leak.
		go func() {
			if res := <-ch; res.resp != nil {
				res.resp.Body.Close()
			}
		}()
		return nil, ctx.Err()
	}
}

// send paces and performs the outbound call, handling throttle responses.
func (l *RateLimiter) send(ctx context.Context, host string, req *http.Request) (*http.Response, error) {
	if err := l.pace(ctx, host); err != nil {
		return nil, err
	}

	start := l.config.Clock.Now()
	resp, err := l.config.Client.Do(req)
	latency := l.config.Clock.Now().Sub(start)

	if err != nil {
		l.config.Metrics.RecordDispatch(host, "transport_error", latency)
		return nil, err
	}
	if resp.StatusCode != http.StatusTooManyRequests {
		l.store.clearBackoff(host)
		l.config.Metrics.RecordDispatch(host, "ok", latency)
		return resp, nil
	}
	return nil, l.throttled(host, resp, latency)
}

// pace waits until the host's pacing interval has elapsed since the
// previous call. Hosts without a configured interval pass straight through.
func (l *RateLimiter) pace(ctx context.Context, host string) error {
	pacer, ok := l.pacers[host]
	if !ok {
		return nil
	}
	now := l.config.Clock.Now()
	r := pacer.ReserveN(now, 1)
	if !r.OK() {
		return nil
	}
	delay := r.DelayFrom(now)
	if delay <= 0 {
		return nil
	}
	if err := l.config.Scheduler.Sleep(ctx, delay); err != nil {
		r.CancelAt(l.config.Clock.Now())
		return err
	}
	return nil
}

// throttled updates host state for a 429, schedules the queue drain at the
// cooldown deadline, and builds the error surfaced to the caller.
func (l *RateLimiter) throttled(host string, resp *http.Response, latency time.Duration) error {
	now := l.config.Clock.Now()
	hint, hasHint := retryHint(resp, now, l.config.DefaultRetryAfter)
	resp.Body.Close()

	resetAt, retryCount := l.store.throttle(host, now, func(retryCount int) time.Duration {
		if hasHint {
			return hint
		}
		return backoffDelay(l.config.BaseDelay, l.config.MaxDelay, l.config.BackoffMultiplier, retryCount)
	})
	delay := resetAt.Sub(now)

	l.config.Metrics.RecordDispatch(host, "throttled", latency)
	l.config.Metrics.RecordThrottle(host)
	l.config.Scheduler.Schedule(delay, func() { l.drain(host) })

	l.config.Logger.Warn("host rate limited",
		slog.String("host", host),
		slog.Int("status", resp.StatusCode),
		slog.Int("retry_count", retryCount),
		slog.Bool("hint_present", hasHint),
		slog.Duration("retry_after", delay),
		slog.Time("reset_at", resetAt),
	)

	return &RateLimitError{Host: host, StatusCode: resp.StatusCode, RetryAfter: delay}
}

// drain releases the host's queue in FIFO order once its cooldown expires.
//
// Entries run one at a time with DrainInterval between them. A fresh
// throttle observed mid-drain stops the loop; the remaining entries stay
// queued under the new cooldown, whose own drain is already scheduled.
func (l *RateLimiter) drain(host string) {
	if !l.store.tryBeginDrain(host) {
		return
	}
	defer l.store.endDrain(host)

	pending := l.store.queueLen(host)
	if pending == 0 {
		return
	}
	l.config.Logger.Debug("draining outbound queue",
		slog.String("host", host),
		slog.Int("pending", pending),
	)

	drained := 0
	defer func() {
		if drained > 0 {
			l.config.Metrics.RecordQueueDrained(host, drained)
		}
	}()

	for {
		// The cooldown check and the pop are one atomic store operation, so
		// a throttle landing mid-drain leaves the remaining entries queued
		// rather than dequeuing one into a fresh cooldown.
		entry, remaining, ok := l.store.dequeueReady(host, l.config.Clock.Now())
		if !ok {
			return
		}
		l.config.Metrics.RecordQueueDepth(host, remaining)
		drained++

		if entry.ctx != nil && entry.ctx.Err() != nil {
			entry.reject(entry.ctx.Err())
			continue
		}
		entry.execute()

		if remaining == 0 {
			return
		}
		if err := l.config.Scheduler.Sleep(context.Background(), l.config.DrainInterval); err != nil {
			return
		}
	}
}

// HostStatus returns a read-only snapshot of one host's state and queue
// length. Reading applies the lazy cooldown-expiry check and nothing else.
func (l *RateLimiter) HostStatus(host string) HostStatus {
	return l.store.status(host, l.config.Clock.Now())
}

// Status returns snapshots for every host this limiter has dispatched to,
// keyed by host.
func (l *RateLimiter) Status() map[string]HostStatus {
	return l.store.statusAll(l.config.Clock.Now())
}

// ClearRateLimit administratively returns host to its default state:
// not limited, no cooldown deadline, zero retry count.
//
// Pending queued entries are not discarded; a drain is kicked off so the
// backlog flushes without waiting for the stale cooldown timer, which is
// not cancelled and fires harmlessly against the cleared state.
func (l *RateLimiter) ClearRateLimit(host string) {
	l.store.reset(host)
	l.config.Logger.Info("rate limit cleared", slog.String("host", host))
	if l.store.queueLen(host) > 0 {
		l.config.Scheduler.Schedule(0, func() { l.drain(host) })
	}
}

// ResetAll applies ClearRateLimit to every known host.
func (l *RateLimiter) ResetAll() {
	l.store.resetAll()
	l.config.Logger.Info("all rate limits cleared")
	for host, status := range l.store.statusAll(l.config.Clock.Now()) {
		if status.QueueLength > 0 {
			l.config.Scheduler.Schedule(0, func() { l.drain(host) })
		}
	}
}

// Config returns a copy of the limiter's configuration for reporting.
func (l *RateLimiter) Config() Config {
	cfg := l.config
	perHost := make(map[string]time.Duration, len(cfg.PerHostDelay))
	for host, delay := range cfg.PerHostDelay {
		perHost[host] = delay
	}
	cfg.PerHostDelay = perHost
	return cfg
}
