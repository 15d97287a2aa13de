// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package service provides the admin workspace logic built on top of the
// article store: search, bulk operations and command dispatch.
package service

import (
	"strings"
	"sync"

	"golang.org/x/text/cases"

	"github.com/olegiv/ocms-school/internal/model"
)

// StatusFilter restricts the visible articles to one status.
type StatusFilter string

// StatusAll passes every status. The empty StatusFilter means the same.
const StatusAll StatusFilter = "all"

// ParseStatusFilter converts a query parameter into a StatusFilter.
// Unknown values fall back to StatusAll.
func ParseStatusFilter(s string) StatusFilter {
	if st, ok := model.ParseStatus(s); ok {
		return StatusFilter(st)
	}
	return StatusAll
}

// FilterState is the admin list's current query and status predicate.
type FilterState struct {
	Query  string       `json:"query"`
	Status StatusFilter `json:"status"`
}

// normalized returns the canonical form used for matching and cache keys.
func (f FilterState) normalized() FilterState {
	f.Query = strings.TrimSpace(f.Query)
	if f.Status == "" {
		f.Status = StatusAll
	}
	return f
}

// Visible returns the articles matching filter, in their original order.
// The query is a case-insensitive substring match on title, excerpt and
// category; the status predicate is an exact match unless it is StatusAll.
func Visible(articles []model.Article, filter FilterState) []model.Article {
	filter = filter.normalized()
	fold := cases.Fold()
	query := fold.String(filter.Query)

	visible := make([]model.Article, 0, len(articles))
	for _, a := range articles {
		if filter.Status != StatusAll && string(a.Status) != string(filter.Status) {
			continue
		}
		if query != "" && !matchesQuery(fold, a, query) {
			continue
		}
		visible = append(visible, a)
	}
	return visible
}

func matchesQuery(fold cases.Caser, a model.Article, query string) bool {
	for _, field := range []string{a.Title, a.Excerpt, string(a.Category)} {
		if strings.Contains(fold.String(field), query) {
			return true
		}
	}
	return false
}

// IDs returns the identifiers of articles in order.
func IDs(articles []model.Article) []string {
	ids := make([]string, len(articles))
	for i, a := range articles {
		ids[i] = a.ID
	}
	return ids
}

// Source is a versioned article collection.
type Source interface {
	Version() uint64
	Snapshot() (version uint64, articles []model.Article)
}

type cacheKey struct {
	version uint64
	filter  FilterState
}

// SearchEngine memoizes Visible on the (source version, filter) pair.
// Any store mutation changes the version, so a cached result is never stale.
type SearchEngine struct {
	mu     sync.Mutex
	key    cacheKey
	result []model.Article
	valid  bool
	hits   int
	misses int
}

// NewSearchEngine creates a SearchEngine with an empty cache.
func NewSearchEngine() *SearchEngine {
	return &SearchEngine{}
}

// Visible returns the articles of src matching filter.
// The returned slice must not be modified.
func (e *SearchEngine) Visible(src Source, filter FilterState) []model.Article {
	filter = filter.normalized()

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.valid && e.key == (cacheKey{version: src.Version(), filter: filter}) {
		e.hits++
		return e.result
	}

	version, articles := src.Snapshot()
	e.misses++
	e.key = cacheKey{version: version, filter: filter}
	e.result = Visible(articles, filter)
	e.valid = true
	return e.result
}

// Stats returns the cache hit and miss counts.
func (e *SearchEngine) Stats() (hits, misses int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.hits, e.misses
}
