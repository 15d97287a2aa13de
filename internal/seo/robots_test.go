// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package seo

import (
	"strings"
	"testing"
)

func TestRobotsBuilderBuildDefault(t *testing.T) {
	content := NewRobotsBuilder(RobotsConfig{SiteURL: "https://school.example/"}).Build()

	if !strings.HasPrefix(content, "User-agent: *\n") {
		t.Error("Build() should start with 'User-agent: *'")
	}
	for _, path := range []string{"/admin", "/forms", "/health"} {
		if !strings.Contains(content, "Disallow: "+path+"\n") {
			t.Errorf("Build() should disallow %q", path)
		}
	}
	if !strings.Contains(content, "Allow: /\n") {
		t.Error("Build() should contain 'Allow: /'")
	}
	if !strings.Contains(content, "Sitemap: https://school.example/sitemap.xml") {
		t.Error("Build() should contain sitemap reference")
	}
}

func TestRobotsBuilderBuildDisallowAll(t *testing.T) {
	content := GenerateRobots("https://staging.school.example", true)

	if content != "User-agent: *\nDisallow: /\n" {
		t.Errorf("Build() = %q", content)
	}
}

func TestRobotsBuilderCustomPaths(t *testing.T) {
	content := NewRobotsBuilder(RobotsConfig{DisallowPaths: []string{"/drafts"}}).Build()

	if !strings.Contains(content, "Disallow: /drafts\n") {
		t.Error("Build() should include custom disallow paths")
	}
	if strings.Contains(content, "Sitemap:") {
		t.Error("Build() without site URL should not reference a sitemap")
	}
}

func TestRobotsBuilderDoesNotMutateDefaults(t *testing.T) {
	_ = NewRobotsBuilder(RobotsConfig{DisallowPaths: []string{"/x"}}).Build()
	if len(defaultDisallow) != 3 {
		t.Errorf("defaultDisallow changed: %v", defaultDisallow)
	}
}
