// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"log/slog"
	"net/http"

	"filippo.io/csrf/gorilla"
)

// CSRFConfig holds configuration for CSRF protection.
// filippo.io/csrf/gorilla checks Fetch metadata headers instead of cookies.
type CSRFConfig struct {
	// AuthKey is a 32-byte key; the session secret is used.
	AuthKey []byte

	// ErrorHandler is called when CSRF validation fails.
	ErrorHandler http.Handler

	// TrustedOrigins are host:port values allowed to make cross-origin requests.
	TrustedOrigins []string
}

// DefaultCSRFConfig returns a CSRFConfig with sensible defaults.
// In development the local dev server origins are trusted.
func DefaultCSRFConfig(authKey []byte, isDev bool) CSRFConfig {
	cfg := CSRFConfig{AuthKey: authKey}
	if isDev {
		// Host-only values, not full URLs.
		cfg.TrustedOrigins = []string{
			"localhost:8080",
			"127.0.0.1:8080",
		}
	}
	return cfg
}

// CSRF returns a middleware that rejects cross-site state-changing requests.
func CSRF(cfg CSRFConfig) func(http.Handler) http.Handler {
	errorHandler := cfg.ErrorHandler
	if errorHandler == nil {
		errorHandler = http.HandlerFunc(csrfErrorHandler)
	}

	opts := []csrf.Option{csrf.ErrorHandler(errorHandler)}
	if len(cfg.TrustedOrigins) > 0 {
		opts = append(opts, csrf.TrustedOrigins(cfg.TrustedOrigins))
	}
	return csrf.Protect(cfg.AuthKey, opts...)
}

// csrfErrorHandler logs the failure and answers with a JSON 403.
func csrfErrorHandler(w http.ResponseWriter, r *http.Request) {
	reason := "unknown"
	if err := csrf.FailureReason(r); err != nil {
		reason = err.Error()
	}
	slog.Warn("CSRF validation failed",
		"reason", reason,
		"method", r.Method,
		"path", r.URL.Path,
		"origin", r.Header.Get("Origin"),
		"sec_fetch_site", r.Header.Get("Sec-Fetch-Site"),
	)
	WriteAPIError(w, http.StatusForbidden, "csrf_failed", "Cross-site request rejected", nil)
}

// SkipCSRF returns a middleware that skips CSRF protection for exact paths.
// It must run before CSRF.
func SkipCSRF(paths ...string) func(http.Handler) http.Handler {
	skipPaths := make(map[string]bool, len(paths))
	for _, p := range paths {
		skipPaths[p] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if skipPaths[r.URL.Path] {
				r = csrf.UnsafeSkipCheck(r)
			}
			next.ServeHTTP(w, r)
		})
	}
}
