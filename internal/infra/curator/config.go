package curator

import "time"

// Config holds tuning for feed curation and article extraction.
type Config struct {
	// MaxSeedsPerFeed caps how many entries one feed may contribute.
	MaxSeedsPerFeed int

	// MaxConcurrent bounds parallel feed fetches in a curation run.
	MaxConcurrent int

	// FetchTimeout is the per-feed fetch budget.
	FetchTimeout time.Duration

	// MaxBodyBytes caps how much of a response body is read, so one
	// oversized feed or article cannot exhaust memory.
	MaxBodyBytes int64

	// ExcerptRunes is the length carried into a seed's excerpt.
	ExcerptRunes int

	// UserAgent identifies the curator to feed hosts.
	UserAgent string
}

// DefaultConfig returns the curation defaults.
func DefaultConfig() Config {
	return Config{
		MaxSeedsPerFeed: 10,
		MaxConcurrent:   5,
		FetchTimeout:    30 * time.Second,
		MaxBodyBytes:    5 << 20, // 5 MiB
		ExcerptRunes:    300,
		UserAgent:       "CampaignRelayBot/1.0",
	}
}

// applyDefaults fills zero fields from DefaultConfig.
func (c *Config) applyDefaults() {
	d := DefaultConfig()
	if c.MaxSeedsPerFeed <= 0 {
		c.MaxSeedsPerFeed = d.MaxSeedsPerFeed
	}
	if c.MaxConcurrent <= 0 {
		c.MaxConcurrent = d.MaxConcurrent
	}
	if c.FetchTimeout <= 0 {
		c.FetchTimeout = d.FetchTimeout
	}
	if c.MaxBodyBytes <= 0 {
		c.MaxBodyBytes = d.MaxBodyBytes
	}
	if c.ExcerptRunes <= 0 {
		c.ExcerptRunes = d.ExcerptRunes
	}
	if c.UserAgent == "" {
		c.UserAgent = d.UserAgent
	}
}
