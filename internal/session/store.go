package session

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Options selects and configures a session backend.
type Options struct {
	Backend         string
	IdleTimeout     time.Duration
	CleanupInterval time.Duration
	Redis           RedisOptions
	Logger          *slog.Logger
}

// New creates the store for opts.Backend. An empty backend selects memory.
func New(ctx context.Context, opts Options) (Store, error) {
	switch opts.Backend {
	case "", BackendMemory:
		return NewMemoryStore(opts.IdleTimeout, opts.CleanupInterval, opts.Logger), nil
	case BackendRedis:
		if opts.Redis.TTL <= 0 {
			opts.Redis.TTL = opts.IdleTimeout
		}
		if opts.Redis.Logger == nil {
			opts.Redis.Logger = opts.Logger
		}
		return NewRedisStore(ctx, opts.Redis)
	default:
		return nil, fmt.Errorf("unknown session backend %q (valid: %s, %s)", opts.Backend, BackendMemory, BackendRedis)
	}
}
