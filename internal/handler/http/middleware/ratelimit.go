package middleware

import (
	"log/slog"
	"net/http"
	"sync"
	"time"
)

// RateLimiter throttles a single endpoint group per client IP with a
// sliding window. It backs the cheap limits on the auth and search routes;
// outbound platform traffic is paced separately by pkg/resilience.
type RateLimiter struct {
	limit       int
	window      time.Duration
	ipExtractor IPExtractor

	mu       sync.Mutex
	arrivals map[string][]time.Time
}

// NewRateLimiter allows up to limit requests per client IP within window.
// The extractor decides which address counts as the client (see IPExtractor).
func NewRateLimiter(limit int, window time.Duration, ipExtractor IPExtractor) *RateLimiter {
	return &RateLimiter{
		limit:       limit,
		window:      window,
		ipExtractor: ipExtractor,
		arrivals:    make(map[string][]time.Time),
	}
}

// Middleware rejects over-limit requests with 429. A failed IP extraction
// falls back to the raw peer address; only an unusable peer address is a
// 500, since keying every such request on one bucket would let a single
// broken client starve everyone.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip, err := rl.ipExtractor.ExtractIP(r)
		if err != nil {
			ip, err = hostFromAddr(r.RemoteAddr)
			if err != nil {
				slog.Error("rate limiter could not identify the client",
					slog.String("remote_addr", r.RemoteAddr),
					slog.String("error", err.Error()),
				)
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				return
			}
		}

		if !rl.allow(ip) {
			slog.Warn("rate limit exceeded",
				slog.String("ip", ip),
				slog.String("path", r.URL.Path),
				slog.Int("limit", rl.limit),
				slog.Duration("window", rl.window),
			)
			http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (rl *RateLimiter) allow(ip string) bool {
	now := time.Now()
	cutoff := now.Add(-rl.window)

	rl.mu.Lock()
	defer rl.mu.Unlock()

	kept := pruneBefore(rl.arrivals[ip], cutoff)
	if len(kept) >= rl.limit {
		rl.arrivals[ip] = kept
		return false
	}
	rl.arrivals[ip] = append(kept, now)
	return true
}

// CleanupExpired drops IPs whose whole window has lapsed so the map does
// not grow with every client ever seen. Run it on a ticker.
func (rl *RateLimiter) CleanupExpired() {
	cutoff := time.Now().Add(-rl.window)

	rl.mu.Lock()
	defer rl.mu.Unlock()

	for ip, arrivals := range rl.arrivals {
		kept := pruneBefore(arrivals, cutoff)
		if len(kept) == 0 {
			delete(rl.arrivals, ip)
			continue
		}
		rl.arrivals[ip] = kept
	}

	slog.Debug("rate limiter cleanup completed", slog.Int("active_ips", len(rl.arrivals)))
}

// pruneBefore keeps only timestamps after cutoff, reusing the slice's
// backing array. Arrivals are appended in order, so the survivors are a
// suffix.
func pruneBefore(arrivals []time.Time, cutoff time.Time) []time.Time {
	for i, ts := range arrivals {
		if ts.After(cutoff) {
			return arrivals[i:]
		}
	}
	return nil
}
