// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis timeouts. Page renders wait on Get.
const (
	redisDialTimeout = 2 * time.Second
	redisIOTimeout   = 250 * time.Millisecond
)

// RedisCache keeps rendered pages in Redis so several site instances share
// them. Keys carry the store version, so stale pages are never read and
// simply expire.
type RedisCache struct {
	client     *redis.Client
	prefix     string
	defaultTTL time.Duration
	closed     atomic.Bool

	hits     atomic.Int64
	misses   atomic.Int64
	sets     atomic.Int64
	failures atomic.Int64
}

// NewRedisCache connects to cfg.RedisURL and checks the connection with
// PING. Prefix and DefaultTTL fall back to DefaultConfig.
func NewRedisCache(ctx context.Context, cfg Config) (*RedisCache, error) {
	if cfg.RedisURL == "" {
		return nil, errors.New("redis URL is required")
	}
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis URL: %w", err)
	}
	opts.DialTimeout = redisDialTimeout
	opts.ReadTimeout = redisIOTimeout
	opts.WriteTimeout = redisIOTimeout

	defaults := DefaultConfig()
	if cfg.Prefix == "" {
		cfg.Prefix = defaults.Prefix
	}
	if cfg.DefaultTTL <= 0 {
		cfg.DefaultTTL = defaults.DefaultTTL
	}

	client := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, redisDialTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}

	return &RedisCache{
		client:     client,
		prefix:     cfg.Prefix,
		defaultTTL: cfg.DefaultTTL,
	}, nil
}

// Get returns the rendered page for key. Redis failures are counted and
// returned; callers treat any error as a miss.
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	if c.closed.Load() {
		return nil, ErrCacheClosed
	}
	val, err := c.client.Get(ctx, c.prefix+key).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		c.misses.Add(1)
		return nil, ErrCacheMiss
	case err != nil:
		c.failures.Add(1)
		return nil, fmt.Errorf("render cache get %s: %w", key, err)
	}
	c.hits.Add(1)
	return val, nil
}

// Set stores a rendered page. A zero ttl uses the default TTL.
func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if c.closed.Load() {
		return ErrCacheClosed
	}
	if ttl <= 0 {
		ttl = c.defaultTTL
	}
	if err := c.client.Set(ctx, c.prefix+key, value, ttl).Err(); err != nil {
		c.failures.Add(1)
		return fmt.Errorf("render cache set %s: %w", key, err)
	}
	c.sets.Add(1)
	return nil
}

// Delete removes a rendered page.
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	if c.closed.Load() {
		return ErrCacheClosed
	}
	return c.client.Del(ctx, c.prefix+key).Err()
}

// Close closes the Redis connection. It is idempotent.
func (c *RedisCache) Close() error {
	if c.closed.CompareAndSwap(false, true) {
		return c.client.Close()
	}
	return nil
}

// Stats returns this instance's counters. Items is not tracked, since the
// keyspace is shared.
func (c *RedisCache) Stats() Stats {
	hits, misses := c.hits.Load(), c.misses.Load()
	return Stats{
		Backend: "redis",
		Hits:    hits,
		Misses:  misses,
		Sets:    c.sets.Load(),
		Errors:  c.failures.Load(),
		HitRate: hitRate(hits, misses),
	}
}

var _ Cache = (*RedisCache)(nil)
