package resilience

import (
	"sync"
	"time"
)

// HostStatus is a point-in-time snapshot of one host's rate-limit state.
type HostStatus struct {
	// Host is the URL authority the state belongs to.
	Host string

	// RateLimited reports whether the host is inside an active cooldown.
	RateLimited bool

	// ResetAt is the instant the cooldown expires. Nil when not limited.
	ResetAt *time.Time

	// RetryAfter is the remaining cooldown at snapshot time. Zero when
	// not limited.
	RetryAfter time.Duration

	// RetryCount is the number of consecutive throttles observed since
	// the last successful call.
	RetryCount int

	// QueueLength is the number of calls waiting for the cooldown.
	QueueLength int
}

// hostState is the per-host record tracked by the limiter.
//
// Invariant: rateLimited is true iff resetAt is non-zero and in the future.
// The flag is re-evaluated lazily whenever the state is read; there is no
// background sweep. retryCount outlives cooldown expiry so that repeated
// throttles keep escalating the backoff until a call succeeds.
type hostState struct {
	host        string
	rateLimited bool
	resetAt     time.Time
	retryCount  int
	queue       requestQueue
	draining    bool
}

// expireLocked clears the cooldown flag once resetAt has passed.
// Callers must hold the store lock.
func (h *hostState) expireLocked(now time.Time) {
	if h.rateLimited && !h.resetAt.After(now) {
		h.rateLimited = false
		h.resetAt = time.Time{}
	}
}

func (h *hostState) statusLocked(now time.Time) HostStatus {
	s := HostStatus{
		Host:        h.host,
		RateLimited: h.rateLimited,
		RetryCount:  h.retryCount,
		QueueLength: h.queue.len(),
	}
	if h.rateLimited {
		resetAt := h.resetAt
		s.ResetAt = &resetAt
		s.RetryAfter = resetAt.Sub(now)
	}
	return s
}

// hostStore owns the host-state map and the per-host queues.
//
// All mutation goes through store methods so the lazy-expiry and
// queue-bound invariants are enforced in one place. Host entries are
// created lazily on first use and live for the lifetime of the limiter;
// reset operations return them to defaults without removing them.
type hostStore struct {
	mu    sync.RWMutex
	hosts map[string]*hostState
}

func newHostStore() *hostStore {
	return &hostStore{hosts: make(map[string]*hostState)}
}

func (s *hostStore) getLocked(host string) *hostState {
	h, ok := s.hosts[host]
	if !ok {
		h = &hostState{host: host}
		s.hosts[host] = h
	}
	return h
}

// cooldown reports whether host is inside an active cooldown and how long
// remains. Reading applies the lazy expiry check.
func (s *hostStore) cooldown(host string, now time.Time) (time.Duration, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	h, ok := s.hosts[host]
	if !ok {
		return 0, false
	}
	h.expireLocked(now)
	if !h.rateLimited {
		return 0, false
	}
	return h.resetAt.Sub(now), true
}

// throttle records a throttling response: the retry counter is incremented
// first, then delayFor maps the new counter to a cooldown delay.
// Returns the cooldown deadline and the new counter value.
func (s *hostStore) throttle(host string, now time.Time, delayFor func(retryCount int) time.Duration) (time.Time, int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	h := s.getLocked(host)
	h.retryCount++
	h.rateLimited = true
	h.resetAt = now.Add(delayFor(h.retryCount))
	return h.resetAt, h.retryCount
}

// clearBackoff resets the retry counter after a non-throttled outcome.
func (s *hostStore) clearBackoff(host string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if h, ok := s.hosts[host]; ok {
		h.retryCount = 0
	}
}

// reset returns host to {rateLimited: false, resetAt: zero, retryCount: 0}.
// Queued entries are left in place for the next drain.
func (s *hostStore) reset(host string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if h, ok := s.hosts[host]; ok {
		h.rateLimited = false
		h.resetAt = time.Time{}
		h.retryCount = 0
	}
}

func (s *hostStore) resetAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, h := range s.hosts {
		h.rateLimited = false
		h.resetAt = time.Time{}
		h.retryCount = 0
	}
}

// enqueue appends e to host's queue unless it already holds max entries.
// Returns the resulting depth, or QueueFullError with the queue unchanged.
func (s *hostStore) enqueue(host string, e *queueEntry, max int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	h := s.getLocked(host)
	if h.queue.len() >= max {
		return h.queue.len(), &QueueFullError{Host: host, Limit: max}
	}
	h.queue.push(e)
	return h.queue.len(), nil
}

// dequeueReady pops the oldest pending entry only while host is outside an
// active cooldown, checking and popping under one lock so a concurrent
// throttle cannot slip between the two. Returns false, leaving the queue
// untouched, when the host is limited or the queue is empty.
func (s *hostStore) dequeueReady(host string, now time.Time) (*queueEntry, int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	h, ok := s.hosts[host]
	if !ok {
		return nil, 0, false
	}
	h.expireLocked(now)
	if h.rateLimited {
		return nil, h.queue.len(), false
	}
	e, ok := h.queue.shift()
	return e, h.queue.len(), ok
}

func (s *hostStore) queueLen(host string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if h, ok := s.hosts[host]; ok {
		return h.queue.len()
	}
	return 0
}

// tryBeginDrain marks host as draining. Returns false when another drain
// is already running so overlapping timers cannot interleave entries.
func (s *hostStore) tryBeginDrain(host string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	h := s.getLocked(host)
	if h.draining {
		return false
	}
	h.draining = true
	return true
}

func (s *hostStore) endDrain(host string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if h, ok := s.hosts[host]; ok {
		h.draining = false
	}
}

// status snapshots one host, applying the lazy expiry check first.
func (s *hostStore) status(host string, now time.Time) HostStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	h, ok := s.hosts[host]
	if !ok {
		return HostStatus{Host: host}
	}
	h.expireLocked(now)
	return h.statusLocked(now)
}

// statusAll snapshots every host the limiter has seen.
func (s *hostStore) statusAll(now time.Time) map[string]HostStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]HostStatus, len(s.hosts))
	for name, h := range s.hosts {
		h.expireLocked(now)
		out[name] = h.statusLocked(now)
	}
	return out
}
