package resilience

import (
	"sort"
	"sync"
)

// Registry creates and retrieves named circuit breakers and aggregates
// their status and statistics for operational tooling.
//
// Breakers are created lazily on first Get and live for the lifetime of
// the registry; Reset and ResetAll return them to defaults without
// removing the entry.
type Registry struct {
	mu       sync.RWMutex
	breakers map[string]*CircuitBreaker
	defaults BreakerConfig
}

// NewRegistry creates a registry whose breakers default to defaults.
//
// Zero-valued fields in defaults are filled from DefaultBreakerConfig, so
// NewRegistry(BreakerConfig{}) yields the documented default thresholds.
func NewRegistry(defaults BreakerConfig) *Registry {
	defaults.ApplyDefaults()
	return &Registry{
		breakers: make(map[string]*CircuitBreaker),
		defaults: defaults,
	}
}

// Get returns the breaker registered for service, creating it on first
// use with the supplied config (or the registry defaults when omitted).
//
// An existing breaker always wins: a config passed for a name that is
// already registered does not reconfigure the instance.
func (r *Registry) Get(service string, config ...BreakerConfig) *CircuitBreaker {
	r.mu.RLock()
	b, ok := r.breakers[service]
	r.mu.RUnlock()
	if ok {
		return b
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if b, ok := r.breakers[service]; ok {
		return b
	}

	cfg := r.defaults
	if len(config) > 0 {
		cfg = config[0]
		if cfg.Clock == nil {
			cfg.Clock = r.defaults.Clock
		}
		if cfg.Metrics == nil {
			cfg.Metrics = r.defaults.Metrics
		}
		if cfg.Logger == nil {
			cfg.Logger = r.defaults.Logger
		}
	}
	b = NewCircuitBreaker(service, cfg)
	r.breakers[service] = b
	return b
}

// Lookup returns the breaker for service without creating one.
func (r *Registry) Lookup(service string) (*CircuitBreaker, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.breakers[service]
	return b, ok
}

// Names returns the registered service names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.breakers))
	for name := range r.breakers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// AllStatuses snapshots every registered breaker, keyed by service.
func (r *Registry) AllStatuses() map[string]BreakerStatus {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]BreakerStatus, len(r.breakers))
	for name, b := range r.breakers {
		out[name] = b.Status()
	}
	return out
}

// AllStatistics aggregates statistics across every registered breaker,
// keyed by service.
func (r *Registry) AllStatistics() map[string]BreakerStatistics {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]BreakerStatistics, len(r.breakers))
	for name, b := range r.breakers {
		out[name] = b.Statistics()
	}
	return out
}

// Reset forces the named breaker to closed with zeroed counters.
// Returns ErrUnknownService when no breaker is registered for service.
func (r *Registry) Reset(service string) error {
	b, ok := r.Lookup(service)
	if !ok {
		return ErrUnknownService
	}
	b.Reset()
	return nil
}

// ResetAll forces every registered breaker to closed with zeroed counters.
// History entries persist for audit.
func (r *Registry) ResetAll() {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, b := range r.breakers {
		b.Reset()
	}
}
