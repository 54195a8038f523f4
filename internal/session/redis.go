package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/teemow/workspace-console/internal/logging"
)

// DefaultRedisPrefix namespaces session keys.
const DefaultRedisPrefix = "workspace-console:"

// RedisOptions configures a RedisStore.
type RedisOptions struct {
	// URL is a redis:// or rediss:// URL.
	URL string

	// Prefix is prepended to every key (default: "workspace-console:").
	Prefix string

	// TTL bounds the lifetime of a session value (default: 24h).
	TTL time.Duration

	// Logger receives the client's internal messages. Optional.
	Logger *slog.Logger
}

// RedisStore keeps session state in Redis under <prefix>session:<id>:<namespace>.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(ctx context.Context, opts RedisOptions) (*RedisStore, error) {
	ropts, err := redis.ParseURL(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	if opts.Logger != nil {
		redis.SetLogger(logging.NewPrintfLogger(logging.WithService(opts.Logger, "redis"), slog.LevelWarn))
	}
	client := redis.NewClient(ropts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return NewRedisStoreWithClient(client, opts.Prefix, opts.TTL), nil
}

// NewRedisStoreWithClient wraps an existing client.
func NewRedisStoreWithClient(client *redis.Client, prefix string, ttl time.Duration) *RedisStore {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	if ttl <= 0 {
		ttl = DefaultIdleTimeout
	}
	return &RedisStore{client: client, prefix: prefix, ttl: ttl}
}

// Session returns the state for id.
func (s *RedisStore) Session(id string) State {
	if id == "" {
		id = DefaultID
	}
	return &redisState{store: s, id: id}
}

// Drop deletes every key of the session.
func (s *RedisStore) Drop(ctx context.Context, id string) error {
	iter := s.client.Scan(ctx, 0, s.sessionPrefix(id)+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan session keys: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to delete session keys: %w", err)
	}
	return nil
}

// Close closes the client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) sessionPrefix(id string) string {
	return s.prefix + "session:" + id + ":"
}

func (s *RedisStore) key(id, ns string) string {
	return s.sessionPrefix(id) + ns
}

type redisState struct {
	store *RedisStore
	id    string
}

func (r *redisState) ID() string { return r.id }

func (r *redisState) Load(ctx context.Context, ns string, dst any) (bool, error) {
	data, err := r.store.client.Get(ctx, r.store.key(r.id, ns)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to load session value %q: %w", ns, err)
	}
	return true, decode(ns, data, dst)
}

func (r *redisState) StoreOnce(ctx context.Context, ns string, v any) (bool, error) {
	data, err := encode(ns, v)
	if err != nil {
		return false, err
	}
	ok, err := r.store.client.SetNX(ctx, r.store.key(r.id, ns), data, r.store.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to store session value %q: %w", ns, err)
	}
	return ok, nil
}
