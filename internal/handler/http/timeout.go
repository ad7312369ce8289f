package http

import (
	"context"
	"net/http"
	"sync"
	"time"
)

// Timeout caps request handling at duration. When the deadline passes
// before the handler writes anything, the client gets 504 and later
// writes from the handler goroutine are discarded. The request context
// is cancelled so downstream calls can abort.
func Timeout(duration time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), duration)
			defer cancel()
			r = r.WithContext(ctx)

			guarded := &deadlineWriter{ResponseWriter: w}
			done := make(chan struct{})
			go func() {
				next.ServeHTTP(guarded, r)
				close(done)
			}()

			select {
			case <-done:
			case <-ctx.Done():
				if guarded.markTimedOut() {
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusGatewayTimeout)
					_, _ = w.Write([]byte(`{"error":"request timeout"}`))
				}
			}
		})
	}
}

// deadlineWriter serializes writes between the handler goroutine and the
// timeout path so exactly one of them produces the response.
type deadlineWriter struct {
	http.ResponseWriter
	mu       sync.Mutex
	timedOut bool
	written  bool
}

// markTimedOut flips the writer into timed-out state. It reports true
// when the handler had not written yet, meaning the caller owns the
// timeout response.
func (w *deadlineWriter) markTimedOut() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.timedOut = true
	return !w.written
}

func (w *deadlineWriter) WriteHeader(statusCode int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timedOut || w.written {
		return
	}
	w.written = true
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *deadlineWriter) Write(data []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timedOut {
		return 0, http.ErrHandlerTimeout
	}
	if !w.written {
		w.written = true
		w.ResponseWriter.WriteHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(data)
}
