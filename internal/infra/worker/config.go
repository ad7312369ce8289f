package worker

import (
	"fmt"
	"log/slog"
	"time"

	"campaign-relay/internal/pkg/config"
)

// WorkerConfig holds the configuration for the publish worker.
// It controls the scan schedule, timezone, publish concurrency, and the
// operational parameters of the worker process.
//
// Configuration sources:
//   - Environment variables (loaded via LoadConfigFromEnv)
//   - Default values (provided by DefaultConfig)
//
// All fields have defaults and validation rules so the worker can start
// safely even with invalid or missing configuration.
//
// Example usage:
//
//	// Use defaults
//	config := DefaultConfig()
//
//	// Load from environment with fallback
//	config, err := LoadConfigFromEnv(logger, metrics)
//	if err != nil {
//	    // This should never happen with fail-open strategy
//	    log.Fatal("Unexpected configuration error: %v", err)
//	}
type WorkerConfig struct {
	// ScanSchedule is the cron expression for the due-post scan.
	// Format: "minute hour day month weekday"
	// Example: "* * * * *" (every minute)
	// Validation: Must be a valid cron expression (5 fields)
	// Default: "* * * * *"
	ScanSchedule string

	// Timezone is the IANA timezone name for cron scheduling. Post due
	// times are stored in UTC; the timezone only anchors the schedule.
	// Example: "Asia/Tokyo", "UTC", "America/New_York"
	// Validation: Must be a valid IANA timezone name
	// Default: "Asia/Tokyo"
	Timezone string

	// PublishMaxConcurrent is the maximum number of posts published
	// simultaneously in one scan. This bounds the worker pool handed to
	// the publish service.
	// Range: 1-50
	// Default: 10
	PublishMaxConcurrent int

	// ScanTimeout is the maximum duration for a single publish scan.
	// After this timeout the scan is cancelled; claimed posts finish
	// their in-flight publish and unclaimed posts wait for the next scan.
	// Must be positive (> 0)
	// Default: 5 minutes
	ScanTimeout time.Duration

	// HealthPort is the port number for the health check HTTP server.
	// Range: 1024-65535 (avoid privileged ports)
	// Default: 9091
	HealthPort int
}

// DefaultConfig returns a WorkerConfig with default values tuned for:
//   - Timeliness: a scan every minute keeps publish latency under 60s
//   - Safety: the 5-minute timeout prevents a stuck scan from piling up
//   - Throughput: 10 concurrent publishes balances speed against
//     per-host rate limits on the destination platforms
//   - Standard ports: 9091 for health checks
//
// Example:
//
//	config := DefaultConfig()
//	config.ScanSchedule = "*/5 * * * *" // Scan every five minutes instead
func DefaultConfig() WorkerConfig {
	return WorkerConfig{
		ScanSchedule:         "* * * * *",
		Timezone:             "Asia/Tokyo",
		PublishMaxConcurrent: 10,
		ScanTimeout:          5 * time.Minute,
		HealthPort:           9091,
	}
}

// Validate checks if the configuration values are valid.
// Each field is validated with the reusable validators from
// internal/pkg/config; all failures are collected and returned together.
//
// Validation rules:
//   - ScanSchedule: Must be a valid cron expression
//   - Timezone: Must be a valid IANA timezone name
//   - PublishMaxConcurrent: Must be between 1 and 50 (inclusive)
//   - ScanTimeout: Must be positive (> 0)
//   - HealthPort: Must be between 1024 and 65535
func (c *WorkerConfig) Validate() error {
	var errors []error

	if err := config.ValidateCronSchedule(c.ScanSchedule); err != nil {
		errors = append(errors, fmt.Errorf("scan schedule: %w", err))
	}

	if err := config.ValidateTimezone(c.Timezone); err != nil {
		errors = append(errors, fmt.Errorf("timezone: %w", err))
	}

	if err := config.ValidateIntRange(c.PublishMaxConcurrent, 1, 50); err != nil {
		errors = append(errors, fmt.Errorf("publish max concurrent: %w", err))
	}

	if err := config.ValidatePositiveDuration(c.ScanTimeout); err != nil {
		errors = append(errors, fmt.Errorf("scan timeout: %w", err))
	}

	if err := config.ValidateIntRange(c.HealthPort, 1024, 65535); err != nil {
		errors = append(errors, fmt.Errorf("health port: %w", err))
	}

	if len(errors) > 0 {
		return fmt.Errorf("validation failed: %v", errors)
	}

	return nil
}

// LoadConfigFromEnv loads worker configuration from environment variables
// with validation and automatic fallback to default values on failure.
//
// This function implements the fail-open strategy:
//  1. Start with DefaultConfig() as base
//  2. Load each field from environment variables
//  3. Validate each loaded value
//  4. If validation fails: use the default, log a warning, increment metrics
//  5. Never return an error - always return a valid configuration
//
// Environment variables:
//   - SCAN_SCHEDULE: Cron expression (default: "* * * * *")
//   - WORKER_TIMEZONE: IANA timezone name (default: "Asia/Tokyo")
//   - PUBLISH_MAX_CONCURRENT: Integer 1-50 (default: 10)
//   - SCAN_TIMEOUT: Duration string, e.g., "5m" (default: 5 minutes)
//   - WORKER_HEALTH_PORT: Integer 1024-65535 (default: 9091)
//
// Metrics updated:
//   - ValidationErrorsTotal: Incremented for each validation failure
//   - FallbacksTotal: Incremented for each fallback applied
//   - FallbackActive: Set to 1 if any fallback is active, 0 otherwise
//   - LoadTimestamp: Set to current time after successful load
func LoadConfigFromEnv(logger *slog.Logger, metrics *WorkerMetrics) (*WorkerConfig, error) {
	cfg := DefaultConfig()
	fallbackApplied := false

	note := func(field string, warnings []string) {
		fallbackApplied = true
		metrics.RecordValidationError(field)
		metrics.RecordFallback(field)
		for _, warning := range warnings {
			logger.Warn("Configuration fallback applied",
				slog.String("field", field),
				slog.String("warning", warning))
		}
	}

	schedule := config.String("SCAN_SCHEDULE", cfg.ScanSchedule, config.ValidateCronSchedule)
	cfg.ScanSchedule = schedule.Value
	if schedule.FallbackApplied {
		note("scan_schedule", schedule.Warnings)
	}

	timezone := config.String("WORKER_TIMEZONE", cfg.Timezone, config.ValidateTimezone)
	cfg.Timezone = timezone.Value
	if timezone.FallbackApplied {
		note("timezone", timezone.Warnings)
	}

	concurrent := config.Int("PUBLISH_MAX_CONCURRENT", cfg.PublishMaxConcurrent, func(v int) error {
		return config.ValidateIntRange(v, 1, 50)
	})
	cfg.PublishMaxConcurrent = concurrent.Value
	if concurrent.FallbackApplied {
		note("publish_max_concurrent", concurrent.Warnings)
	}

	// Scan timeout is capped at one hour; a scan that needs longer than
	// that indicates a stuck platform, not a big batch.
	timeout := config.Duration("SCAN_TIMEOUT", cfg.ScanTimeout, func(d time.Duration) error {
		return config.ValidateDuration(d, 10*time.Second, 1*time.Hour)
	})
	cfg.ScanTimeout = timeout.Value
	if timeout.FallbackApplied {
		note("scan_timeout", timeout.Warnings)
	}

	port := config.Int("WORKER_HEALTH_PORT", cfg.HealthPort, func(v int) error {
		return config.ValidateIntRange(v, 1024, 65535)
	})
	cfg.HealthPort = port.Value
	if port.FallbackApplied {
		note("health_port", port.Warnings)
	}

	metrics.SetFallbackActive(fallbackApplied)
	metrics.RecordLoadTimestamp()

	// Always return valid config (fail-open strategy)
	return &cfg, nil
}
