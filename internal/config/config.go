// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - New returns a Config populated with defaults.
// - Load layers an optional YAML file and COBRA_* environment variables on top.
// - Validation errors wrap ErrInvalidConfig, source errors wrap ErrLoadConfig.
package config

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrInvalidConfig = errors.New("invalid config")
	ErrLoadConfig    = errors.New("load config failed")
)

// Store drivers understood by the service.
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log encoding: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":3000".
	Addr string `koanf:"addr"`

	// StoreDriver selects the usuario store: memory, postgres or redis.
	StoreDriver string `koanf:"store_driver"`

	// DatabaseURL is the PostgreSQL connection string (store_driver=postgres).
	DatabaseURL string `koanf:"database_url"`

	// RedisURL is the Redis connection URL (store_driver=redis).
	RedisURL string `koanf:"redis_url"`

	// RedisPrefix namespaces every Redis key written by the store.
	RedisPrefix string `koanf:"redis_prefix"`

	// ValidateRequests enables OpenAPI request validation for documented routes.
	ValidateRequests bool `koanf:"validate_requests"`

	// MaxBodyBytes caps request bodies.
	MaxBodyBytes int64 `koanf:"max_body_bytes"`

	// ShutdownTimeoutMS bounds graceful shutdown.
	ShutdownTimeoutMS int `koanf:"shutdown_timeout_ms"`
}

// New creates a Config holding the defaults. With no file and no environment
// the service behaves like the original: port 3000, in-memory data.
func New() *Config {
	return &Config{
		LogLevel:          "info",
		LogFormat:         "text",
		Addr:              ":3000",
		StoreDriver:       DriverMemory,
		RedisPrefix:       "cobra:",
		ValidateRequests:  true,
		MaxBodyBytes:      1 << 20,
		ShutdownTimeoutMS: 30_000,
	}
}

// ShutdownTimeout returns ShutdownTimeoutMS as a duration.
func (c *Config) ShutdownTimeout() time.Duration {
	return time.Duration(c.ShutdownTimeoutMS) * time.Millisecond
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.MaxBodyBytes <= 0:
		return fmt.Errorf("%w: max_body_bytes must be positive", ErrInvalidConfig)
	case c.ShutdownTimeoutMS <= 0:
		return fmt.Errorf("%w: shutdown_timeout_ms must be positive", ErrInvalidConfig)
	}

	switch c.StoreDriver {
	case DriverMemory:
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("%w: database_url is required for store_driver=postgres", ErrInvalidConfig)
		}
	case DriverRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("%w: redis_url is required for store_driver=redis", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown store_driver %q", ErrInvalidConfig, c.StoreDriver)
	}
	return nil
}
