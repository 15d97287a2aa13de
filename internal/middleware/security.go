// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package middleware provides HTTP middleware for the school site.
package middleware

import (
	"net/http"
	"sort"
	"strconv"
	"strings"
)

// SecurityHeadersConfig holds configuration for security headers.
type SecurityHeadersConfig struct {
	// IsDevelopment disables HSTS.
	IsDevelopment bool

	// ContentSecurityPolicy is the CSP header value.
	ContentSecurityPolicy string

	// HSTSMaxAge is the max-age for Strict-Transport-Security in seconds.
	// Set to 0 to disable HSTS.
	HSTSMaxAge int

	// HSTSIncludeSubDomains includes subdomains in HSTS policy.
	HSTSIncludeSubDomains bool

	// FrameOptions controls the X-Frame-Options header.
	// Valid values: "DENY", "SAMEORIGIN", or empty to disable.
	FrameOptions string

	// ReferrerPolicy controls the Referrer-Policy header.
	ReferrerPolicy string

	// PermissionsPolicy controls the Permissions-Policy header.
	PermissionsPolicy string

	// ExcludePaths are path prefixes that skip security headers.
	ExcludePaths []string
}

// cspDirective is one CSP directive in output order.
type cspDirective struct {
	name  string
	value string
}

// DefaultSecurityHeadersConfig returns a SecurityHeadersConfig with sensible defaults.
// Article images may come from any https host; everything else is same-origin.
func DefaultSecurityHeadersConfig(isDev bool) SecurityHeadersConfig {
	cfg := SecurityHeadersConfig{
		IsDevelopment:  isDev,
		HSTSMaxAge:     31536000, // 1 year
		FrameOptions:   "DENY",
		ReferrerPolicy: "strict-origin-when-cross-origin",
	}

	scriptSrc := "'self'"
	if isDev {
		scriptSrc = "'self' 'unsafe-eval'"
	} else {
		cfg.HSTSIncludeSubDomains = true
	}

	cfg.ContentSecurityPolicy = buildCSP([]cspDirective{
		{"default-src", "'self'"},
		{"script-src", scriptSrc},
		{"style-src", "'self' 'unsafe-inline'"},
		{"img-src", "'self' data: https:"},
		{"font-src", "'self' data:"},
		{"connect-src", "'self'"},
		{"object-src", "'none'"},
		{"base-uri", "'self'"},
		{"form-action", "'self'"},
		{"frame-ancestors", "'none'"},
	})

	cfg.PermissionsPolicy = buildPermissionsPolicy(map[string]string{
		"camera":          "()",
		"geolocation":     "()",
		"microphone":      "()",
		"payment":         "()",
		"usb":             "()",
		"interest-cohort": "()", // Block FLoC
		"browsing-topics": "()", // Block Topics API
	})

	return cfg
}

// buildCSP joins directives into a Content-Security-Policy value.
func buildCSP(directives []cspDirective) string {
	parts := make([]string, 0, len(directives))
	for _, d := range directives {
		if d.value == "" {
			parts = append(parts, d.name)
			continue
		}
		parts = append(parts, d.name+" "+d.value)
	}
	return strings.Join(parts, "; ")
}

// buildPermissionsPolicy builds a Permissions-Policy string sorted by feature.
func buildPermissionsPolicy(policies map[string]string) string {
	keys := make([]string, 0, len(policies))
	for key := range policies {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, key+"="+policies[key])
	}
	return strings.Join(parts, ", ")
}

// SecurityHeaders returns a middleware that adds security headers to responses.
func SecurityHeaders(cfg SecurityHeadersConfig) func(http.Handler) http.Handler {
	hsts := ""
	if !cfg.IsDevelopment && cfg.HSTSMaxAge > 0 {
		hsts = "max-age=" + strconv.Itoa(cfg.HSTSMaxAge)
		if cfg.HSTSIncludeSubDomains {
			hsts += "; includeSubDomains"
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, prefix := range cfg.ExcludePaths {
				if strings.HasPrefix(r.URL.Path, prefix) {
					next.ServeHTTP(w, r)
					return
				}
			}

			h := w.Header()
			if cfg.ContentSecurityPolicy != "" {
				h.Set("Content-Security-Policy", cfg.ContentSecurityPolicy)
			}
			if hsts != "" {
				h.Set("Strict-Transport-Security", hsts)
			}
			if cfg.FrameOptions != "" {
				h.Set("X-Frame-Options", cfg.FrameOptions)
			}
			h.Set("X-Content-Type-Options", "nosniff")
			if cfg.ReferrerPolicy != "" {
				h.Set("Referrer-Policy", cfg.ReferrerPolicy)
			}
			if cfg.PermissionsPolicy != "" {
				h.Set("Permissions-Policy", cfg.PermissionsPolicy)
			}

			next.ServeHTTP(w, r)
		})
	}
}
