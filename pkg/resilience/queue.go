package resilience

import "context"

// queueEntry is one pending call waiting for a host's cooldown to expire.
//
// Exactly one of execute or reject runs, once: execute re-invokes the
// dispatch and delivers its result to the waiting caller; reject discards
// the entry without a network call.
type queueEntry struct {
	ctx     context.Context
	execute func()
	reject  func(err error)
}

// requestQueue is a strict-FIFO queue of pending calls for one host.
//
// It carries no locking of its own; the owning hostStore serializes access.
type requestQueue struct {
	entries []*queueEntry
}

func (q *requestQueue) push(e *queueEntry) {
	q.entries = append(q.entries, e)
}

func (q *requestQueue) shift() (*queueEntry, bool) {
	if len(q.entries) == 0 {
		return nil, false
	}
	e := q.entries[0]
	q.entries[0] = nil
	q.entries = q.entries[1:]
	return e, true
}

func (q *requestQueue) len() int {
	return len(q.entries)
}
