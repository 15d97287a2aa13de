// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// MemoryCache is a thread-safe in-memory cache implementation.
type MemoryCache struct {
	mu         sync.Mutex
	data       map[string]memoryCacheEntry
	defaultTTL time.Duration
	maxSize    int // Maximum number of entries (0 = unlimited)
	stopCh     chan struct{}
	closed     atomic.Bool
	now        func() time.Time

	hits   atomic.Int64
	misses atomic.Int64
	sets   atomic.Int64
}

// memoryCacheEntry holds a cached value with its expiration time.
type memoryCacheEntry struct {
	value     []byte
	expiresAt time.Time
}

// MemoryCacheOptions configures the memory cache.
type MemoryCacheOptions struct {
	DefaultTTL      time.Duration
	MaxSize         int           // Maximum number of entries (0 = unlimited)
	CleanupInterval time.Duration // Interval for expired entry cleanup (0 = no cleanup)
}

// NewMemoryCache creates a new memory cache with the given options.
func NewMemoryCache(opts MemoryCacheOptions) *MemoryCache {
	if opts.DefaultTTL <= 0 {
		opts.DefaultTTL = 5 * time.Minute
	}
	c := &MemoryCache{
		data:       make(map[string]memoryCacheEntry),
		defaultTTL: opts.DefaultTTL,
		maxSize:    opts.MaxSize,
		stopCh:     make(chan struct{}),
		now:        time.Now,
	}

	if opts.CleanupInterval > 0 {
		go c.cleanupLoop(opts.CleanupInterval)
	}
	return c
}

// Get retrieves a copy of the value stored for key.
func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, error) {
	if c.closed.Load() {
		return nil, ErrCacheClosed
	}

	c.mu.Lock()
	entry, ok := c.data[key]
	if ok && c.now().After(entry.expiresAt) {
		delete(c.data, key)
		ok = false
	}
	c.mu.Unlock()

	if !ok {
		c.misses.Add(1)
		return nil, ErrCacheMiss
	}
	c.hits.Add(1)
	return append([]byte(nil), entry.value...), nil
}

// Set stores a copy of value. When the cache is full, expired entries are
// dropped first and then the entry closest to expiry is evicted.
func (c *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if c.closed.Load() {
		return ErrCacheClosed
	}
	if ttl == 0 {
		ttl = c.defaultTTL
	}
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.data[key]; !exists && c.maxSize > 0 && len(c.data) >= c.maxSize {
		c.removeExpiredLocked(now)
		if len(c.data) >= c.maxSize {
			c.evictOldestLocked()
		}
	}

	c.data[key] = memoryCacheEntry{
		value:     append([]byte(nil), value...),
		expiresAt: now.Add(ttl),
	}
	c.sets.Add(1)
	return nil
}

// Delete removes a key from the cache.
func (c *MemoryCache) Delete(_ context.Context, key string) error {
	if c.closed.Load() {
		return ErrCacheClosed
	}
	c.mu.Lock()
	delete(c.data, key)
	c.mu.Unlock()
	return nil
}

// Close stops the cleanup goroutine.
func (c *MemoryCache) Close() error {
	if c.closed.CompareAndSwap(false, true) {
		close(c.stopCh)
	}
	return nil
}

// Stats returns current cache statistics.
func (c *MemoryCache) Stats() Stats {
	c.mu.Lock()
	items := len(c.data)
	c.mu.Unlock()

	hits, misses := c.hits.Load(), c.misses.Load()
	return Stats{
		Backend: "memory",
		Hits:    hits,
		Misses:  misses,
		Sets:    c.sets.Load(),
		Items:   items,
		HitRate: hitRate(hits, misses),
	}
}

func (c *MemoryCache) removeExpiredLocked(now time.Time) {
	for key, entry := range c.data {
		if now.After(entry.expiresAt) {
			delete(c.data, key)
		}
	}
}

func (c *MemoryCache) evictOldestLocked() {
	var oldestKey string
	var oldest time.Time
	for key, entry := range c.data {
		if oldestKey == "" || entry.expiresAt.Before(oldest) {
			oldestKey, oldest = key, entry.expiresAt
		}
	}
	delete(c.data, oldestKey)
}

// cleanupLoop periodically removes expired entries.
func (c *MemoryCache) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.mu.Lock()
			c.removeExpiredLocked(c.now())
			c.mu.Unlock()
		case <-c.stopCh:
			return
		}
	}
}

var _ Cache = (*MemoryCache)(nil)
