package resilience

import "sync"

var (
	defaultLimiterOnce sync.Once
	defaultLimiter     *RateLimiter

	defaultRegistryOnce sync.Once
	defaultRegistry     *Registry
)

// DefaultLimiter returns the process-wide rate limiter, creating it on
// first use with DefaultConfig.
//
// Components that need isolated state or custom configuration should
// construct their own limiter with NewRateLimiter instead.
func DefaultLimiter() *RateLimiter {
	defaultLimiterOnce.Do(func() {
		l, err := NewRateLimiter(DefaultConfig())
		if err != nil {
			// DefaultConfig always validates.
			panic(err)
		}
		defaultLimiter = l
	})
	return defaultLimiter
}

// DefaultRegistry returns the process-wide breaker registry, creating it
// on first use with DefaultBreakerConfig.
func DefaultRegistry() *Registry {
	defaultRegistryOnce.Do(func() {
		defaultRegistry = NewRegistry(DefaultBreakerConfig())
	})
	return defaultRegistry
}
