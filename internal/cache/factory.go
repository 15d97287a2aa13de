// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"log/slog"
	"time"
)

// Config holds configuration for cache creation.
type Config struct {
	// RedisURL selects the Redis backend when set.
	RedisURL string

	// Prefix is the key prefix for Redis.
	Prefix string

	// DefaultTTL is the default TTL for cache entries.
	DefaultTTL time.Duration

	// MaxSize is the maximum number of entries for memory cache (0 = unlimited).
	MaxSize int

	// CleanupInterval is the interval for expired entry cleanup.
	CleanupInterval time.Duration
}

// DefaultConfig returns default cache configuration.
func DefaultConfig() Config {
	return Config{
		Prefix:          "school:",
		DefaultTTL:      5 * time.Minute,
		MaxSize:         1000,
		CleanupInterval: time.Minute,
	}
}

// New creates a cache from cfg. When Redis is configured but unreachable,
// it logs a warning and falls back to memory so the site still serves.
func New(ctx context.Context, cfg Config, logger *slog.Logger) Cache {
	if logger == nil {
		logger = slog.Default()
	}

	if cfg.RedisURL != "" {
		rc, err := NewRedisCache(ctx, cfg)
		if err == nil {
			logger.Info("render cache initialized", "backend", "redis")
			return rc
		}
		logger.Warn("render cache initialized", "backend", "memory",
			"note", "Redis unavailable, using fallback", "error", err)
	} else {
		logger.Info("render cache initialized", "backend", "memory")
	}

	return NewMemoryCache(MemoryCacheOptions{
		DefaultTTL:      cfg.DefaultTTL,
		MaxSize:         cfg.MaxSize,
		CleanupInterval: cfg.CleanupInterval,
	})
}
