// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package sanitize neutralizes unsafe markup, URLs and scheme prefixes in
// user-supplied strings. Every function is pure, total and idempotent:
// applying it twice gives the same result as applying it once.
package sanitize

import (
	"html"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
)

// EmailMaxLength is the longest address Email accepts (RFC 5321 path limit).
const EmailMaxLength = 254

// maxPasses bounds the fixpoint loop in Text. Each productive pass strictly
// shortens the string, so real input settles in two or three passes.
const maxPasses = 64

var (
	// strictPolicy strips every element; script and style contents are dropped.
	strictPolicy = bluemonday.StrictPolicy()

	// ugcPolicy allows the safe subset of HTML produced by the article renderer.
	ugcPolicy = bluemonday.UGCPolicy()

	// eventHandlerRe matches inline event handler attributes such as onclick=.
	eventHandlerRe = regexp.MustCompile(`(?i)on\w+\s*=`)

	// schemeRe matches script-capable URL scheme prefixes.
	schemeRe = regexp.MustCompile(`(?i)javascript\s*:|\b(?:vbscript|data)\s*:`)

	// disallowedSchemeRe matches a URL that starts with a script-capable scheme.
	disallowedSchemeRe = regexp.MustCompile(`(?i)^(?:javascript|vbscript|data):`)

	// emailRe is the conservative local@domain.tld shape.
	emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// Text strips markup, event handler attributes and script-capable scheme
// prefixes from raw, trims surrounding whitespace and truncates the result to
// maxLength runes. A maxLength of zero or less disables truncation.
func Text(raw string, maxLength int) string {
	s := strip(raw)
	s = strings.TrimSpace(s)
	s = truncate(s, maxLength)
	return strings.TrimSpace(s)
}

// strip runs the removal passes until the string stops changing, so that
// removing one pattern can never leave another one behind.
func strip(s string) string {
	if !utf8.ValidString(s) {
		s = strings.ToValidUTF8(s, "")
	}
	for range maxPasses {
		next := html.UnescapeString(strictPolicy.Sanitize(s))
		next = eventHandlerRe.ReplaceAllString(next, "")
		next = schemeRe.ReplaceAllString(next, "")
		next = strings.NewReplacer("<", "", ">", "").Replace(next)
		if next == s {
			return s
		}
		s = next
	}
	return s
}

// truncate cuts s to at most n runes.
func truncate(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

// URL returns "#" when raw uses a disallowed scheme (javascript:, data:,
// vbscript:), otherwise the trimmed value percent-encoded the way
// encodeURI would encode it. Existing %XX escapes are preserved.
func URL(raw string) string {
	return cleanURL(raw, "#")
}

// URLOrEmpty is URL for call sites that must not emit a placeholder link:
// a rejected value becomes the empty string.
func URLOrEmpty(raw string) string {
	return cleanURL(raw, "")
}

func cleanURL(raw, rejected string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	if s == rejected {
		return s
	}
	// Browsers ignore embedded whitespace and control characters in schemes.
	folded := strings.Map(func(r rune) rune {
		if r <= ' ' || r == 0x7f {
			return -1
		}
		return r
	}, html.UnescapeString(s))
	if disallowedSchemeRe.MatchString(folded) {
		return rejected
	}
	return encodeURI(s)
}

// encodeURI percent-encodes every byte outside the encodeURI safe set.
func encodeURI(s string) string {
	const hex = "0123456789ABCDEF"
	var sb strings.Builder
	sb.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '%' && i+2 < len(s) && isHex(s[i+1]) && isHex(s[i+2]):
			sb.WriteByte(c)
		case isURISafe(c):
			sb.WriteByte(c)
		default:
			sb.WriteByte('%')
			sb.WriteByte(hex[c>>4])
			sb.WriteByte(hex[c&0x0f])
		}
	}
	return sb.String()
}

func isHex(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func isURISafe(c byte) bool {
	if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') {
		return true
	}
	return strings.IndexByte(";,/?:@&=+$-_.!~*'()#", c) >= 0
}

// Email trims raw, clamps it to EmailMaxLength runes and returns it only
// when it has the local@domain.tld shape. Anything else yields "".
func Email(raw string) string {
	s := truncate(strings.TrimSpace(raw), EmailMaxLength)
	if !emailRe.MatchString(s) {
		return ""
	}
	return s
}

// HTML sanitizes rendered article HTML, keeping the safe user-content subset.
func HTML(raw string) string {
	return ugcPolicy.Sanitize(raw)
}
