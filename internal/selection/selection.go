// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package selection tracks the article identifiers chosen for a bulk action.
package selection

import (
	"slices"
	"sync"
)

// Set is an insertion-ordered set of article identifiers.
// It is safe for concurrent use.
type Set struct {
	mu  sync.Mutex
	ids []string
}

// New creates an empty Set.
func New() *Set {
	return &Set{}
}

// Toggle adds id when absent and removes it when present.
// It reports whether id is selected afterwards.
func (s *Set) Toggle(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := slices.Index(s.ids, id); i >= 0 {
		s.ids = slices.Delete(s.ids, i, i+1)
		return false
	}
	s.ids = append(s.ids, id)
	return true
}

// SelectAll toggles between "everything visible" and "nothing".
// When the selection already equals the visible set it is cleared,
// otherwise it becomes exactly the visible set.
func (s *Set) SelectAll(visibleIDs []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	visible := dedupe(visibleIDs)
	if len(visible) > 0 && sameMembers(s.ids, visible) {
		s.ids = nil
		return
	}
	s.ids = visible
}

// Clear empties the selection.
func (s *Set) Clear() {
	s.mu.Lock()
	s.ids = nil
	s.mu.Unlock()
}

// Has reports whether id is selected.
func (s *Set) Has(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Contains(s.ids, id)
}

// Remove drops id from the selection. It reports whether id was selected.
func (s *Set) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := slices.Index(s.ids, id)
	if i < 0 {
		return false
	}
	s.ids = slices.Delete(s.ids, i, i+1)
	return true
}

// Reconcile drops every selected id that is not in visibleIDs and returns
// the number of ids dropped.
func (s *Set) Reconcile(visibleIDs []string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	visible := make(map[string]struct{}, len(visibleIDs))
	for _, id := range visibleIDs {
		visible[id] = struct{}{}
	}
	before := len(s.ids)
	s.ids = slices.DeleteFunc(s.ids, func(id string) bool {
		_, ok := visible[id]
		return !ok
	})
	return before - len(s.ids)
}

// IDs returns the selected ids in the order they were selected.
func (s *Set) IDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.ids)
}

// Len returns the number of selected ids.
func (s *Set) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ids)
}

func dedupe(ids []string) []string {
	if len(ids) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func sameMembers(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for _, id := range b {
		if !slices.Contains(a, id) {
			return false
		}
	}
	return true
}
