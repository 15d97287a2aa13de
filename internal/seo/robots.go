// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package seo

import (
	"strings"
)

// RobotsConfig holds configuration for robots.txt generation.
type RobotsConfig struct {
	SiteURL       string   // Base URL for sitemap reference
	DisallowAll   bool     // Block all crawlers (for staging sites)
	DisallowPaths []string // Paths to disallow in addition to the defaults
}

// defaultDisallow are paths crawlers never need.
var defaultDisallow = []string{
	"/admin",
	"/forms",
	"/health",
}

// RobotsBuilder builds robots.txt content.
type RobotsBuilder struct {
	config RobotsConfig
}

// NewRobotsBuilder creates a new robots.txt builder.
func NewRobotsBuilder(config RobotsConfig) *RobotsBuilder {
	return &RobotsBuilder{config: config}
}

// Build generates the robots.txt content.
func (b *RobotsBuilder) Build() string {
	var sb strings.Builder

	sb.WriteString("User-agent: *\n")

	if b.config.DisallowAll {
		sb.WriteString("Disallow: /\n")
		return sb.String()
	}

	allPaths := append([]string{}, defaultDisallow...)
	allPaths = append(allPaths, b.config.DisallowPaths...)
	for _, path := range allPaths {
		sb.WriteString("Disallow: ")
		sb.WriteString(path)
		sb.WriteString("\n")
	}
	sb.WriteString("Allow: /\n")

	if b.config.SiteURL != "" {
		sb.WriteString("\nSitemap: ")
		sb.WriteString(strings.TrimSuffix(b.config.SiteURL, "/"))
		sb.WriteString("/sitemap.xml\n")
	}

	return sb.String()
}

// GenerateRobots is a convenience function to generate robots.txt content.
func GenerateRobots(siteURL string, disallowAll bool) string {
	return NewRobotsBuilder(RobotsConfig{SiteURL: siteURL, DisallowAll: disallowAll}).Build()
}
