package http

import (
	"context"
	"log/slog"
	"time"

	"campaign-relay/internal/handler/http/middleware"
	"campaign-relay/internal/pkg/config"
)

// StartRateLimitCleanup periodically sweeps expired entries out of an
// endpoint rate limiter so inactive client IPs do not accumulate. It runs
// until ctx is cancelled, which happens during server shutdown.
func StartRateLimitCleanup(
	ctx context.Context,
	limiter *middleware.RateLimiter,
	interval time.Duration,
	limiterType string,
) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	slog.Info("rate limit cleanup started",
		slog.String("limiter_type", limiterType),
		slog.Duration("interval", interval))

	for {
		select {
		case <-ctx.Done():
			slog.Info("rate limit cleanup stopped",
				slog.String("limiter_type", limiterType))
			return

		case <-ticker.C:
			limiter.CleanupExpired()
			slog.Debug("rate limit cleanup completed",
				slog.String("limiter_type", limiterType))
		}
	}
}

// CleanupConfig holds configuration for rate limit cleanup.
type CleanupConfig struct {
	// Interval specifies how often to run cleanup.
	Interval time.Duration
}

// DefaultCleanupInterval is the default cleanup interval if not specified.
const DefaultCleanupInterval = 5 * time.Minute

// LoadCleanupConfigFromEnv reads RATELIMIT_CLEANUP_INTERVAL (e.g. "5m");
// a missing or unparseable value falls back to the default rather than
// failing startup.
func LoadCleanupConfigFromEnv() CleanupConfig {
	interval := config.Duration("RATELIMIT_CLEANUP_INTERVAL", DefaultCleanupInterval, config.ValidatePositiveDuration)
	return CleanupConfig{Interval: interval.Value}
}
