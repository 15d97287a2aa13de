// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package cache stores rendered public pages so repeated blog reads skip
// Markdown rendering and sanitization. Values are opaque bytes; the backend
// is in-memory or Redis.
package cache

import (
	"context"
	"fmt"
	"time"
)

// Cache defines the interface for cache implementations.
// All implementations must be thread-safe.
type Cache interface {
	// Get returns the value for key, or ErrCacheMiss.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value for key. A zero ttl uses the default TTL.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a key from the cache.
	Delete(ctx context.Context, key string) error

	// Stats returns hit and miss counters.
	Stats() Stats

	// Close releases any resources held by the cache.
	Close() error
}

// Stats holds cache statistics.
type Stats struct {
	Backend string  `json:"backend"`
	Hits    int64   `json:"hits"`
	Misses  int64   `json:"misses"`
	Sets    int64   `json:"sets"`
	Errors  int64   `json:"errors"` // backend failures
	Items   int     `json:"items"`
	HitRate float64 `json:"hit_rate"` // percent
}

func hitRate(hits, misses int64) float64 {
	total := hits + misses
	if total == 0 {
		return 0
	}
	return float64(hits) / float64(total) * 100
}

// Error represents an error type for cache operations.
type Error string

func (e Error) Error() string {
	return string(e)
}

const (
	// ErrCacheMiss indicates the key was not found in cache or has expired.
	ErrCacheMiss Error = "cache miss"

	// ErrCacheClosed indicates the cache has been closed.
	ErrCacheClosed Error = "cache closed"
)

// ArticleKey is the key of a rendered article. The store version is part of
// the key, so any mutation makes older entries unreachable.
func ArticleKey(id string, storeVersion uint64) string {
	return fmt.Sprintf("article:%s:v%d", id, storeVersion)
}

// SitemapKey is the key of the rendered sitemap for a store version.
func SitemapKey(storeVersion uint64) string {
	return fmt.Sprintf("sitemap:v%d", storeVersion)
}
