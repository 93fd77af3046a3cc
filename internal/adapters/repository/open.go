package repository

import (
	"context"
	"fmt"
)

// Config selects and configures a Store driver.
type Config struct {
	Driver      string // memory, postgres or redis
	DatabaseURL string
	RedisURL    string
	RedisPrefix string
}

// Open returns the Store selected by cfg.Driver. An empty driver means memory.
func Open(ctx context.Context, cfg Config, opts ...Option) (Store, error) {
	switch cfg.Driver {
	case "", driverMemory:
		return NewMemoryStore(ctx, opts...), nil
	case driverPostgres:
		s, err := NewPostgresStore(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return s, nil
	case driverRedis:
		s, err := NewRedisStore(ctx, cfg.RedisURL, cfg.RedisPrefix)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
	}
}
