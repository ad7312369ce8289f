package resilience

import (
	"math"
	"time"
)

// backoffDelay computes the exponential cooldown for the given consecutive
// throttle count: base * multiplier^(retryCount-1), capped at max.
//
// retryCount is 1-based; the first hint-less throttle waits exactly base.
func backoffDelay(base, max time.Duration, multiplier float64, retryCount int) time.Duration {
	if retryCount < 1 {
		retryCount = 1
	}
	d := float64(base) * math.Pow(multiplier, float64(retryCount-1))
	if d > float64(max) || math.IsInf(d, 1) {
		return max
	}
	return time.Duration(d)
}
