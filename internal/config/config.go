// Package config provides configuration loading for boqd.
package config

import (
	"fmt"
	"time"

	"github.com/fyrsmithlabs/boqd/internal/logging"
)

// Config is the full boqd configuration.
type Config struct {
	Logging  logging.Config `koanf:"logging"`
	Analyzer AnalyzerConfig `koanf:"analyzer"`
}

// AnalyzerConfig tunes the analysis pipeline and the built-in invoker
// middleware.
type AnalyzerConfig struct {
	// RoleTimeout bounds one specialist invocation. Zero disables the
	// per-role deadline.
	RoleTimeout time.Duration `koanf:"role_timeout"`

	// Retry configures the invoker retry middleware.
	Retry RetryConfig `koanf:"retry"`

	// RateLimit configures the invoker rate-limit middleware. Disabled
	// when RPS is zero.
	RateLimit RateLimitConfig `koanf:"rate_limit"`
}

// RetryConfig mirrors specialist.RetryConfig for the config file.
type RetryConfig struct {
	MaxRetries     int           `koanf:"max_retries"`
	InitialBackoff time.Duration `koanf:"initial_backoff"`
	MaxBackoff     time.Duration `koanf:"max_backoff"`
}

// RateLimitConfig throttles specialist invocations.
type RateLimitConfig struct {
	RPS   float64 `koanf:"rps"`
	Burst int     `koanf:"burst"`
}

// Default returns the configuration used when no file and no environment
// overrides are present.
func Default() Config {
	var cfg Config
	applyDefaults(&cfg)
	return cfg
}

// applyDefaults sets default values for missing configuration fields.
func applyDefaults(cfg *Config) {
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = logging.DefaultConfig().Level
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = logging.DefaultConfig().Format
	}
	if cfg.Analyzer.RoleTimeout == 0 {
		cfg.Analyzer.RoleTimeout = 30 * time.Second
	}
	if cfg.Analyzer.Retry.MaxRetries == 0 {
		cfg.Analyzer.Retry.MaxRetries = 2
	}
	if cfg.Analyzer.Retry.InitialBackoff == 0 {
		cfg.Analyzer.Retry.InitialBackoff = 200 * time.Millisecond
	}
	if cfg.Analyzer.Retry.MaxBackoff == 0 {
		cfg.Analyzer.Retry.MaxBackoff = 5 * time.Second
	}
	if cfg.Analyzer.RateLimit.RPS > 0 && cfg.Analyzer.RateLimit.Burst == 0 {
		cfg.Analyzer.RateLimit.Burst = 1
	}
}

// Validate checks the configuration for contradictions.
func (c *Config) Validate() error {
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	if c.Analyzer.RoleTimeout < 0 {
		return fmt.Errorf("analyzer.role_timeout must not be negative, got %s", c.Analyzer.RoleTimeout)
	}
	if c.Analyzer.Retry.MaxRetries < 0 {
		return fmt.Errorf("analyzer.retry.max_retries must not be negative, got %d", c.Analyzer.Retry.MaxRetries)
	}
	if c.Analyzer.RateLimit.RPS < 0 {
		return fmt.Errorf("analyzer.rate_limit.rps must not be negative, got %f", c.Analyzer.RateLimit.RPS)
	}
	if c.Analyzer.RateLimit.RPS > 0 && c.Analyzer.RateLimit.Burst <= 0 {
		return fmt.Errorf("analyzer.rate_limit.burst must be positive when rps is set, got %d", c.Analyzer.RateLimit.Burst)
	}
	return nil
}
