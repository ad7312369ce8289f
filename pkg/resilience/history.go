package resilience

import "time"

// Outcome classifies one executed operation in a breaker's history.
type Outcome string

const (
	// OutcomeSuccess marks an operation that returned no error.
	OutcomeSuccess Outcome = "success"

	// OutcomeFailure marks an operation that returned an error.
	OutcomeFailure Outcome = "failure"
)

// HistoryEntry records one execution of a breaker-wrapped operation.
//
// Calls rejected while the breaker was open never ran and are counted in
// rejection statistics instead of appearing here.
type HistoryEntry struct {
	Timestamp time.Time
	Outcome   Outcome
	Latency   time.Duration
}

// outcomeHistory is a fixed-capacity ring of the most recent entries.
// Once full, appending silently evicts the oldest entry. It carries no
// locking of its own; the owning breaker serializes access.
type outcomeHistory struct {
	entries []HistoryEntry
	next    int
	count   int
}

func newOutcomeHistory(capacity int) *outcomeHistory {
	if capacity < 1 {
		capacity = 1
	}
	return &outcomeHistory{entries: make([]HistoryEntry, capacity)}
}

func (h *outcomeHistory) append(e HistoryEntry) {
	h.entries[h.next] = e
	h.next = (h.next + 1) % len(h.entries)
	if h.count < len(h.entries) {
		h.count++
	}
}

// newestFirst returns up to limit entries, most recent first.
// A non-positive limit returns everything retained.
func (h *outcomeHistory) newestFirst(limit int) []HistoryEntry {
	if limit <= 0 || limit > h.count {
		limit = h.count
	}
	out := make([]HistoryEntry, 0, limit)
	for i := 1; i <= limit; i++ {
		idx := (h.next - i + len(h.entries)) % len(h.entries)
		out = append(out, h.entries[idx])
	}
	return out
}

func (h *outcomeHistory) len() int {
	return h.count
}

func (h *outcomeHistory) clear() {
	h.next = 0
	h.count = 0
}
