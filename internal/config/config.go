// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package config loads application settings from SCHOOL_* environment
// variables.
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// knownWeakSecrets contains default/example secrets that must be rejected.
var knownWeakSecrets = []string{
	"change-me-to-32-byte-secret-key!",
	"REPLACE_WITH_YOUR_OWN_SECRET_KEY!",
}

// Config holds the application configuration loaded from environment variables.
type Config struct {
	SessionSecret string `env:"SCHOOL_SESSION_SECRET,required"`
	ServerHost    string `env:"SCHOOL_SERVER_HOST" envDefault:"localhost"`
	ServerPort    int    `env:"SCHOOL_SERVER_PORT" envDefault:"8080"`
	Env           string `env:"SCHOOL_ENV" envDefault:"development"`
	LogLevel      string `env:"SCHOOL_LOG_LEVEL" envDefault:"info"`
	LogFormat     string `env:"SCHOOL_LOG_FORMAT" envDefault:"text"` // text or json
	SiteURL       string `env:"SCHOOL_SITE_URL" envDefault:"http://localhost:8080"`

	// Form submission
	SubmitLatencyMS     int    `env:"SCHOOL_SUBMIT_LATENCY_MS" envDefault:"800"`    // Simulated delivery latency
	SubmitWebhookURL    string `env:"SCHOOL_SUBMIT_WEBHOOK_URL"`                    // Optional real delivery endpoint
	SubmitWebhookSecret string `env:"SCHOOL_SUBMIT_WEBHOOK_SECRET"`                 // HMAC key for deliveries
	NoticeDisplayMS     int    `env:"SCHOOL_NOTICE_DISPLAY_MS" envDefault:"5000"`   // Success/error message lifetime
	FormRatePerMin      int    `env:"SCHOOL_FORM_RATE_PER_MIN" envDefault:"10"`     // Per-IP form submissions
	FormSessionIdleMin  int    `env:"SCHOOL_FORM_SESSION_IDLE_MIN" envDefault:"30"` // Evict idle form state
	AdminIdleMin        int    `env:"SCHOOL_ADMIN_IDLE_MIN" envDefault:"60"`        // Evict idle admin workspaces

	// Render cache
	RedisURL           string `env:"SCHOOL_REDIS_URL"`                             // Optional shared cache backend
	RenderCacheTTLSec  int    `env:"SCHOOL_RENDER_CACHE_TTL_SEC" envDefault:"300"` // Rendered article lifetime
	RenderCacheMaxSize int    `env:"SCHOOL_RENDER_CACHE_MAX" envDefault:"1000"`    // Memory backend entry limit

	// Seeding configuration
	SeedDemo bool `env:"SCHOOL_SEED_DEMO" envDefault:"true"` // Load demo articles on start
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// UseWebhook returns true if form submissions go to a real endpoint.
func (c Config) UseWebhook() bool {
	return c.SubmitWebhookURL != ""
}

// SubmitLatency returns the simulated delivery latency.
func (c Config) SubmitLatency() time.Duration {
	return time.Duration(c.SubmitLatencyMS) * time.Millisecond
}

// NoticeDisplay returns how long form success and error messages stay up.
func (c Config) NoticeDisplay() time.Duration {
	return time.Duration(c.NoticeDisplayMS) * time.Millisecond
}

// FormSessionIdle returns how long unused form state is kept.
func (c Config) FormSessionIdle() time.Duration {
	return time.Duration(c.FormSessionIdleMin) * time.Minute
}

// AdminIdle returns how long an unused admin workspace is kept.
func (c Config) AdminIdle() time.Duration {
	return time.Duration(c.AdminIdleMin) * time.Minute
}

// RenderCacheTTL returns how long a rendered article stays cached.
func (c Config) RenderCacheTTL() time.Duration {
	return time.Duration(c.RenderCacheTTLSec) * time.Second
}

// MinSessionSecretLength is the minimum required length for the session secret.
const MinSessionSecretLength = 32

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	// Validate session secret length
	if len(cfg.SessionSecret) < MinSessionSecretLength {
		return nil, fmt.Errorf("SCHOOL_SESSION_SECRET must be at least %d bytes long, got %d bytes; "+
			"generate a secure secret with: openssl rand -base64 32",
			MinSessionSecretLength, len(cfg.SessionSecret))
	}

	// Reject known weak/default secrets
	for _, weak := range knownWeakSecrets {
		if cfg.SessionSecret == weak {
			return nil, fmt.Errorf("SCHOOL_SESSION_SECRET is a known default value and must not be used; " +
				"generate a secure secret with: openssl rand -base64 32")
		}
	}

	if cfg.UseWebhook() && cfg.SubmitWebhookSecret == "" {
		return nil, fmt.Errorf("SCHOOL_SUBMIT_WEBHOOK_SECRET is required when SCHOOL_SUBMIT_WEBHOOK_URL is set")
	}
	if cfg.FormRatePerMin <= 0 {
		return nil, fmt.Errorf("SCHOOL_FORM_RATE_PER_MIN must be positive, got %d", cfg.FormRatePerMin)
	}
	if cfg.SubmitLatencyMS < 0 || cfg.NoticeDisplayMS < 0 {
		return nil, fmt.Errorf("SCHOOL_SUBMIT_LATENCY_MS and SCHOOL_NOTICE_DISPLAY_MS must not be negative")
	}

	if cfg.RenderCacheTTLSec <= 0 {
		return nil, fmt.Errorf("SCHOOL_RENDER_CACHE_TTL_SEC must be positive, got %d", cfg.RenderCacheTTLSec)
	}

	// Warn about low-entropy secrets
	if !hasMinimumEntropy(cfg.SessionSecret) {
		slog.Warn("SCHOOL_SESSION_SECRET has low character diversity; " +
			"consider generating a random secret with: openssl rand -base64 32")
	}

	return cfg, nil
}

// hasMinimumEntropy checks that a secret contains at least 3 character classes
// (lowercase, uppercase, digits, special characters).
func hasMinimumEntropy(s string) bool {
	charTypes := 0
	if strings.ContainsAny(s, "abcdefghijklmnopqrstuvwxyz") {
		charTypes++
	}
	if strings.ContainsAny(s, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") {
		charTypes++
	}
	if strings.ContainsAny(s, "0123456789") {
		charTypes++
	}
	if strings.ContainsAny(s, "!@#$%^&*()-_=+[]{}|;:,.<>?/~`'\"\\") {
		charTypes++
	}
	return charTypes >= 3
}
