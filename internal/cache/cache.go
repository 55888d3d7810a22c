// Package cache stores the latest dashboard snapshot in Redis so several
// server instances can share one refresh.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/anaypant/acs-next-js-dev-sub002/internal/config"
)

// ErrMiss is returned by Load when no snapshot is stored.
var ErrMiss = errors.New("cache: miss")

// SnapshotCache keeps one JSON value under a fixed key.
type SnapshotCache struct {
	client redis.UniversalClient
	key    string
	ttl    time.Duration
}

// NewSnapshotCache creates a cache over client. A zero ttl stores without
// expiry.
func NewSnapshotCache(client redis.UniversalClient, key string, ttl time.Duration) *SnapshotCache {
	return &SnapshotCache{client: client, key: key, ttl: ttl}
}

// Key returns the Redis key the snapshot lives under.
func (c *SnapshotCache) Key() string { return c.key }

// Client returns the underlying Redis client, for sharing with locks.
func (c *SnapshotCache) Client() redis.UniversalClient { return c.client }

// Store serializes v as JSON and replaces the stored snapshot.
func (c *SnapshotCache) Store(ctx context.Context, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshaling snapshot: %w", err)
	}
	if err := c.client.Set(ctx, c.key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("storing snapshot %s: %w", c.key, err)
	}
	return nil
}

// Load decodes the stored snapshot into dst. It returns ErrMiss when the
// key is absent or expired.
func (c *SnapshotCache) Load(ctx context.Context, dst interface{}) error {
	data, err := c.client.Get(ctx, c.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrMiss
	}
	if err != nil {
		return fmt.Errorf("loading snapshot %s: %w", c.key, err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("decoding snapshot %s: %w", c.key, err)
	}
	return nil
}

// Invalidate removes the stored snapshot.
func (c *SnapshotCache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, c.key).Err(); err != nil {
		return fmt.Errorf("invalidating snapshot %s: %w", c.key, err)
	}
	return nil
}

// NewRedisClient connects to cfg.RedisAddr, which may be a host:port or a
// redis:// URL, and verifies the connection.
func NewRedisClient(ctx context.Context, cfg config.CacheConfig) (*redis.Client, error) {
	var opts *redis.Options
	if strings.HasPrefix(cfg.RedisAddr, "redis://") || strings.HasPrefix(cfg.RedisAddr, "rediss://") {
		parsed, err := redis.ParseURL(cfg.RedisAddr)
		if err != nil {
			return nil, fmt.Errorf("parsing redis url: %w", err)
		}
		opts = parsed
	} else {
		opts = &redis.Options{Addr: cfg.RedisAddr, DB: cfg.RedisDB}
	}
	if cfg.RedisPassword != "" {
		opts.Password = cfg.RedisPassword
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("pinging redis %s: %w", opts.Addr, err)
	}
	return client, nil
}
