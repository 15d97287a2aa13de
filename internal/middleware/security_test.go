// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestSecurityHeaders(t *testing.T) {
	tests := []struct {
		name     string
		isDev    bool
		wantHSTS bool
	}{
		{"production mode enables HSTS", false, true},
		{"development mode disables HSTS", true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := SecurityHeaders(DefaultSecurityHeadersConfig(tt.isDev))(okHandler())

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

			hsts := rec.Header().Get("Strict-Transport-Security")
			if tt.wantHSTS && !strings.Contains(hsts, "includeSubDomains") {
				t.Errorf("expected HSTS with subdomains, got %q", hsts)
			}
			if !tt.wantHSTS && hsts != "" {
				t.Errorf("expected no HSTS header but got: %s", hsts)
			}

			csp := rec.Header().Get("Content-Security-Policy")
			if !strings.HasPrefix(csp, "default-src 'self'") {
				t.Errorf("CSP should start with default-src, got %q", csp)
			}
			if !strings.Contains(csp, "object-src 'none'") {
				t.Errorf("CSP should block objects, got %q", csp)
			}
			if got := rec.Header().Get("X-Frame-Options"); got != "DENY" {
				t.Errorf("X-Frame-Options = %q, want DENY", got)
			}
			if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
				t.Errorf("X-Content-Type-Options = %q, want nosniff", got)
			}
			if rec.Header().Get("Permissions-Policy") == "" {
				t.Error("expected Permissions-Policy header")
			}
		})
	}
}

func TestSecurityHeadersExcludePaths(t *testing.T) {
	cfg := DefaultSecurityHeadersConfig(false)
	cfg.ExcludePaths = []string{"/health"}
	handler := SecurityHeaders(cfg)(okHandler())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Header().Get("Content-Security-Policy") != "" {
		t.Error("excluded path should not get CSP")
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/articles", nil))
	if rec.Header().Get("Content-Security-Policy") == "" {
		t.Error("non-excluded path should get CSP")
	}
}

func TestSecurityHeadersHSTSMaxAge(t *testing.T) {
	cfg := SecurityHeadersConfig{HSTSMaxAge: 600}
	rec := httptest.NewRecorder()
	SecurityHeaders(cfg)(okHandler()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if got := rec.Header().Get("Strict-Transport-Security"); got != "max-age=600" {
		t.Errorf("HSTS = %q, want max-age=600", got)
	}
}

func TestBuildCSP(t *testing.T) {
	got := buildCSP([]cspDirective{
		{"default-src", "'self'"},
		{"img-src", "https:"},
		{"upgrade-insecure-requests", ""},
	})
	want := "default-src 'self'; img-src https:; upgrade-insecure-requests"
	if got != want {
		t.Errorf("buildCSP() = %q, want %q", got, want)
	}
}

func TestBuildPermissionsPolicy(t *testing.T) {
	got := buildPermissionsPolicy(map[string]string{"usb": "()", "camera": "()"})
	if got != "camera=(), usb=()" {
		t.Errorf("buildPermissionsPolicy() = %q", got)
	}
}
