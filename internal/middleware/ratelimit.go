// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// DefaultLimiterCacheSize bounds the number of tracked clients before the
// cache is reset by RateLimiter.Prune.
const DefaultLimiterCacheSize = 10000

// limiterCache is a generic rate limiter cache with double-check locking.
type limiterCache[K comparable] struct {
	limiters map[K]*rate.Limiter
	mu       sync.RWMutex
	rate     rate.Limit
	burst    int
}

// newLimiterCache creates a new limiter cache.
func newLimiterCache[K comparable](limit rate.Limit, burst int) *limiterCache[K] {
	return &limiterCache[K]{
		limiters: make(map[K]*rate.Limiter),
		rate:     limit,
		burst:    burst,
	}
}

// get returns the rate limiter for a specific key, creating one if needed.
func (lc *limiterCache[K]) get(key K) *rate.Limiter {
	lc.mu.RLock()
	limiter, exists := lc.limiters[key]
	lc.mu.RUnlock()

	if exists {
		return limiter
	}

	lc.mu.Lock()
	defer lc.mu.Unlock()

	// Double-check after acquiring write lock
	if limiter, exists = lc.limiters[key]; exists {
		return limiter
	}

	limiter = rate.NewLimiter(lc.rate, lc.burst)
	lc.limiters[key] = limiter
	return limiter
}

// clearIfExceeds clears all entries if the cache exceeds maxSize.
// Returns true if the cache was cleared.
func (lc *limiterCache[K]) clearIfExceeds(maxSize int) bool {
	lc.mu.Lock()
	defer lc.mu.Unlock()

	if len(lc.limiters) > maxSize {
		lc.limiters = make(map[K]*rate.Limiter)
		return true
	}
	return false
}

func (lc *limiterCache[K]) len() int {
	lc.mu.RLock()
	defer lc.mu.RUnlock()
	return len(lc.limiters)
}

// RateLimiter limits requests per client IP.
type RateLimiter struct {
	cache *limiterCache[string]
}

// NewPerMinuteLimiter allows perMinute requests per client per minute,
// with bursts of up to perMinute requests.
func NewPerMinuteLimiter(perMinute int) *RateLimiter {
	if perMinute <= 0 {
		perMinute = 1
	}
	return &RateLimiter{
		cache: newLimiterCache[string](rate.Every(time.Minute/time.Duration(perMinute)), perMinute),
	}
}

// Allow reports whether the client may make another request now.
func (rl *RateLimiter) Allow(ip string) bool {
	return rl.cache.get(ip).Allow()
}

// Middleware rejects requests over the limit with a JSON 429.
// Only POST requests are counted.
func (rl *RateLimiter) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				next.ServeHTTP(w, r)
				return
			}
			ip := getClientIP(r)
			if !rl.Allow(ip) {
				slog.Warn("form rate limit exceeded", "ip", ip, "path", r.URL.Path)
				WriteAPIError(w, http.StatusTooManyRequests, "rate_limit_exceeded",
					"Too many submissions. Please wait a moment and try again.", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Prune resets the limiter cache when it holds more than maxSize
// addresses. It reports whether a reset happened.
func (rl *RateLimiter) Prune(maxSize int) bool {
	if rl.cache.clearIfExceeds(maxSize) {
		slog.Info("rate limiter cache reset", "max_size", maxSize)
		return true
	}
	return false
}

// getClientIP extracts the client IP, preferring proxy headers.
func getClientIP(r *http.Request) string {
	// Check X-Real-IP header (set by reverse proxies)
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}

	// X-Forwarded-For can contain multiple IPs; take the first one
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
