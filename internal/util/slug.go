// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package util provides general-purpose helpers, currently article slug
// generation and validation with transliteration of non-Latin titles.
package util

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/mozillazg/go-unidecode"
)

// FallbackSlug is used when a title has no characters that survive slugging.
const FallbackSlug = "article"

// MaxSlugLength caps generated slugs; longer titles are cut at a hyphen.
const MaxSlugLength = 80

// nonSlugRe matches runs of characters that are not allowed in a slug.
var nonSlugRe = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify converts a title to a URL-friendly slug. Non-Latin scripts and
// accented letters are transliterated to ASCII first, so "Café Übung" becomes
// "cafe-ubung". The result may be empty.
func Slugify(s string) string {
	result := strings.ToLower(unidecode.Unidecode(s))
	result = nonSlugRe.ReplaceAllString(result, "-")
	result = strings.Trim(result, "-")

	if len(result) > MaxSlugLength {
		result = result[:MaxSlugLength]
		if i := strings.LastIndexByte(result, '-'); i > 0 {
			result = result[:i]
		}
		result = strings.Trim(result, "-")
	}
	return result
}

// UniqueSlug returns the slug of title, suffixed with -2, -3, ... until
// taken reports it free. Titles without usable characters get FallbackSlug.
func UniqueSlug(title string, taken func(string) bool) string {
	base := Slugify(title)
	if base == "" {
		base = FallbackSlug
	}
	slug := base
	for n := 2; taken(slug); n++ {
		slug = base + "-" + strconv.Itoa(n)
	}
	return slug
}

// IsValidSlug checks if a string is a valid slug format.
func IsValidSlug(s string) bool {
	if s == "" {
		return false
	}

	// Only lowercase letters, numbers and hyphens.
	for _, r := range s {
		if !((r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-') {
			return false
		}
	}

	if s[0] == '-' || s[len(s)-1] == '-' {
		return false
	}

	return !strings.Contains(s, "--")
}
