package resilience

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// maxHintBodySize bounds how much of a throttled response body is read
// while looking for a JSON retry hint.
const maxHintBodySize = 4096

// retryHint extracts the upstream's cooldown hint from a throttling
// response. Sources, in order:
//
//  1. Retry-After header as integer seconds
//  2. Retry-After header as an HTTP-date, converted to a remaining delta
//  3. A retry_after field (seconds) in a JSON body, as Slack-style APIs send
//
// Malformed or past-dated hints clamp to fallback so a bad upstream value
// can never produce a zero or negative cooldown. The second result is false
// only when the response carries no hint at all, which tells the caller to
// use exponential backoff instead.
//
// The body is consumed up to maxHintBodySize; callers are expected to close
// the response afterwards.
func retryHint(resp *http.Response, now time.Time, fallback time.Duration) (time.Duration, bool) {
	if raw := strings.TrimSpace(resp.Header.Get("Retry-After")); raw != "" {
		if secs, err := strconv.Atoi(raw); err == nil {
			if secs > 0 {
				return time.Duration(secs) * time.Second, true
			}
			return fallback, true
		}
		if at, err := http.ParseTime(raw); err == nil {
			if d := at.Sub(now); d > 0 {
				return d, true
			}
			return fallback, true
		}
		return fallback, true
	}

	if d, ok := bodyRetryHint(resp.Body, fallback); ok {
		return d, true
	}
	return 0, false
}

// bodyRetryHint looks for {"retry_after": seconds} in a JSON body.
func bodyRetryHint(body io.Reader, fallback time.Duration) (time.Duration, bool) {
	if body == nil {
		return 0, false
	}
	data, err := io.ReadAll(io.LimitReader(body, maxHintBodySize))
	if err != nil || len(data) == 0 {
		return 0, false
	}

	var payload struct {
		RetryAfter *float64 `json:"retry_after"`
	}
	if err := json.Unmarshal(data, &payload); err != nil || payload.RetryAfter == nil {
		return 0, false
	}
	if *payload.RetryAfter <= 0 {
		return fallback, true
	}
	return time.Duration(*payload.RetryAfter * float64(time.Second)), true
}
