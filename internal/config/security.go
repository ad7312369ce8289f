package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// SecurityConfig holds the auth surface settings: which provider serves
// credentials, the password policy, which paths skip authentication, and
// JWT issuance parameters.
type SecurityConfig struct {
	Security struct {
		Auth struct {
			Provider string `yaml:"provider"` // "basic" or "multi-user"
			Basic    struct {
				MinPasswordLength int      `yaml:"min_password_length"`
				WeakPasswords     []string `yaml:"weak_passwords"`
			} `yaml:"basic"`
		} `yaml:"auth"`
		PublicEndpoints []string `yaml:"public_endpoints"`
		JWT             struct {
			SecretEnv   string `yaml:"secret_env"`
			ExpiryHours int    `yaml:"expiry_hours"`
		} `yaml:"jwt"`
	} `yaml:"security"`
}

// DefaultSecurityConfig returns the settings used when no security config
// file is present: multi-user provider, 12-character minimum, the common
// weak-password list, and 1-hour tokens.
func DefaultSecurityConfig() *SecurityConfig {
	var cfg SecurityConfig
	cfg.Security.Auth.Provider = "multi-user"
	cfg.Security.Auth.Basic.MinPasswordLength = 12
	cfg.Security.Auth.Basic.WeakPasswords = []string{"password", "123456", "admin", "test", "secret"}
	cfg.Security.PublicEndpoints = []string{"/health", "/ready", "/live", "/metrics", "/swagger/", "/auth/token"}
	cfg.Security.JWT.SecretEnv = "JWT_SECRET"
	cfg.Security.JWT.ExpiryHours = 1
	return &cfg
}

// LoadSecurityConfig reads and validates a security configuration file.
// The path comes from a trusted source (CLI arg or env var), never from
// request input.
func LoadSecurityConfig(path string) (*SecurityConfig, error) {
	// #nosec G304 -- path is provided by trusted source (CLI arg or config), not user input
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg SecurityConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

func (c *SecurityConfig) validate() error {
	switch c.Security.Auth.Provider {
	case "basic", "multi-user":
	case "":
		return fmt.Errorf("auth provider is required")
	default:
		return fmt.Errorf("unknown auth provider %q", c.Security.Auth.Provider)
	}

	if c.Security.Auth.Basic.MinPasswordLength < 8 {
		return fmt.Errorf("min_password_length must be at least 8")
	}
	if c.Security.JWT.SecretEnv == "" {
		return fmt.Errorf("jwt secret_env is required")
	}
	if c.Security.JWT.ExpiryHours <= 0 {
		return fmt.Errorf("jwt expiry_hours must be positive")
	}
	return nil
}

// GetAuthProvider returns the configured authentication provider name.
func (c *SecurityConfig) GetAuthProvider() string {
	return c.Security.Auth.Provider
}

// GetMinPasswordLength returns the minimum password length requirement.
func (c *SecurityConfig) GetMinPasswordLength() int {
	return c.Security.Auth.Basic.MinPasswordLength
}

// GetWeakPasswords returns the list of rejected weak passwords.
func (c *SecurityConfig) GetWeakPasswords() []string {
	return c.Security.Auth.Basic.WeakPasswords
}

// GetPublicEndpoints returns the paths reachable without authentication.
func (c *SecurityConfig) GetPublicEndpoints() []string {
	return c.Security.PublicEndpoints
}

// GetJWTSecretEnv returns the environment variable holding the JWT secret.
func (c *SecurityConfig) GetJWTSecretEnv() string {
	return c.Security.JWT.SecretEnv
}

// GetJWTExpiryHours returns the token lifetime in hours.
func (c *SecurityConfig) GetJWTExpiryHours() int {
	return c.Security.JWT.ExpiryHours
}
