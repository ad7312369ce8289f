package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"campaign-relay/pkg/resilience"
)

// Duration wraps time.Duration so values can be written as "500ms" or "1m"
// in YAML.
type Duration time.Duration

// UnmarshalYAML parses a duration string such as "30s" or "1m30s".
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// ResilienceConfig represents the outbound resilience configuration: the
// per-host rate limiter and the per-service circuit breakers.
type ResilienceConfig struct {
	Resilience struct {
		Limiter struct {
			MaxQueueSize      int                 `yaml:"max_queue_size"`
			DefaultRetryAfter Duration            `yaml:"default_retry_after"`
			BaseDelay         Duration            `yaml:"base_delay"`
			MaxDelay          Duration            `yaml:"max_delay"`
			BackoffMultiplier float64             `yaml:"backoff_multiplier"`
			DrainInterval     Duration            `yaml:"drain_interval"`
			PerHostDelay      map[string]Duration `yaml:"per_host_delay"`
		} `yaml:"limiter"`
		Breakers struct {
			Defaults BreakerSettings            `yaml:"defaults"`
			Services map[string]BreakerSettings `yaml:"services"`
		} `yaml:"breakers"`
	} `yaml:"resilience"`
}

// BreakerSettings holds circuit breaker thresholds for one service (or the
// defaults). Zero values fall back to the library defaults.
type BreakerSettings struct {
	FailureThreshold int      `yaml:"failure_threshold"`
	SuccessThreshold int      `yaml:"success_threshold"`
	Timeout          Duration `yaml:"timeout"`
	HistorySize      int      `yaml:"history_size"`
}

// LoadResilienceConfig loads resilience configuration from a YAML file.
// A missing file is not an error: the zero config is returned, and the
// resilience package fills every field with its defaults.
// The path parameter is expected to come from a trusted source
// (command-line argument or hardcoded default).
func LoadResilienceConfig(path string) (*ResilienceConfig, error) {
	// #nosec G304 -- path is provided by trusted source (CLI arg or config), not user input
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &ResilienceConfig{}, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config ResilienceConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := validateResilienceConfig(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

// validateResilienceConfig validates the loaded configuration.
func validateResilienceConfig(config *ResilienceConfig) error {
	limiter := config.Resilience.Limiter
	if limiter.MaxQueueSize < 0 {
		return fmt.Errorf("limiter max_queue_size must not be negative")
	}
	if limiter.BackoffMultiplier < 0 {
		return fmt.Errorf("limiter backoff_multiplier must not be negative")
	}
	if limiter.BackoffMultiplier > 0 && limiter.BackoffMultiplier < 1 {
		return fmt.Errorf("limiter backoff_multiplier must be at least 1")
	}

	if err := validateBreakerSettings("defaults", config.Resilience.Breakers.Defaults); err != nil {
		return err
	}
	for service, settings := range config.Resilience.Breakers.Services {
		if err := validateBreakerSettings(service, settings); err != nil {
			return err
		}
	}
	return nil
}

func validateBreakerSettings(name string, settings BreakerSettings) error {
	if settings.FailureThreshold < 0 {
		return fmt.Errorf("breaker %s: failure_threshold must not be negative", name)
	}
	if settings.SuccessThreshold < 0 {
		return fmt.Errorf("breaker %s: success_threshold must not be negative", name)
	}
	if settings.HistorySize < 0 {
		return fmt.Errorf("breaker %s: history_size must not be negative", name)
	}
	return nil
}

// LimiterConfig converts the loaded settings into a rate limiter config.
// Unset fields stay zero and pick up the library defaults.
func (c *ResilienceConfig) LimiterConfig() resilience.Config {
	limiter := c.Resilience.Limiter

	cfg := resilience.Config{
		MaxQueueSize:      limiter.MaxQueueSize,
		DefaultRetryAfter: time.Duration(limiter.DefaultRetryAfter),
		BaseDelay:         time.Duration(limiter.BaseDelay),
		MaxDelay:          time.Duration(limiter.MaxDelay),
		BackoffMultiplier: limiter.BackoffMultiplier,
		DrainInterval:     time.Duration(limiter.DrainInterval),
	}

	if len(limiter.PerHostDelay) > 0 {
		cfg.PerHostDelay = make(map[string]time.Duration, len(limiter.PerHostDelay))
		for host, delay := range limiter.PerHostDelay {
			cfg.PerHostDelay[host] = time.Duration(delay)
		}
	}

	return cfg
}

// BreakerDefaults converts the default breaker settings into a breaker config.
func (c *ResilienceConfig) BreakerDefaults() resilience.BreakerConfig {
	return toBreakerConfig(c.Resilience.Breakers.Defaults)
}

// ServiceBreakerConfigs returns the per-service breaker overrides.
// Services absent from the map use the defaults.
func (c *ResilienceConfig) ServiceBreakerConfigs() map[string]resilience.BreakerConfig {
	services := c.Resilience.Breakers.Services
	if len(services) == 0 {
		return nil
	}

	configs := make(map[string]resilience.BreakerConfig, len(services))
	for service, settings := range services {
		configs[service] = toBreakerConfig(settings)
	}
	return configs
}

func toBreakerConfig(settings BreakerSettings) resilience.BreakerConfig {
	return resilience.BreakerConfig{
		FailureThreshold: settings.FailureThreshold,
		SuccessThreshold: settings.SuccessThreshold,
		Timeout:          time.Duration(settings.Timeout),
		HistorySize:      settings.HistorySize,
	}
}
