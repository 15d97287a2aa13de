// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/olegiv/ocms-school/internal/model"
	"github.com/olegiv/ocms-school/internal/store"
)

func sampleArticles() []model.Article {
	return []model.Article{
		{ID: "1", Title: "Robotics Final", Excerpt: "Year 9 engineers", Category: model.CategoryAcademics, Status: model.StatusPublished},
		{ID: "2", Title: "Open Day", Excerpt: "Tour the CAMPUS", Category: model.CategoryAdmissions, Status: model.StatusDraft},
		{ID: "3", Title: "Winter Concert", Excerpt: "Choir and orchestra", Category: model.CategoryArts, Status: model.StatusDraft},
		{ID: "4", Title: "Sports Day", Excerpt: "Relay results", Category: model.CategorySports, Status: model.StatusArchived},
	}
}

func TestVisible(t *testing.T) {
	articles := sampleArticles()

	tests := []struct {
		name   string
		filter FilterState
		want   []string
	}{
		{"empty filter returns all in order", FilterState{}, []string{"1", "2", "3", "4"}},
		{"all status", FilterState{Status: StatusAll}, []string{"1", "2", "3", "4"}},
		{"draft only", FilterState{Status: "draft"}, []string{"2", "3"}},
		{"archived only", FilterState{Status: "archived"}, []string{"4"}},
		{"title match", FilterState{Query: "concert"}, []string{"3"}},
		{"case insensitive excerpt", FilterState{Query: "campus"}, []string{"2"}},
		{"category match", FilterState{Query: "sports"}, []string{"4"}},
		{"category substring", FilterState{Query: "admiss"}, []string{"2"}},
		{"query and status", FilterState{Query: "day", Status: "draft"}, []string{"2"}},
		{"query trimmed", FilterState{Query: "  robotics "}, []string{"1"}},
		{"no match", FilterState{Query: "zebra"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IDs(Visible(articles, tt.filter))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestVisible_DoesNotModifyInput(t *testing.T) {
	articles := sampleArticles()
	_ = Visible(articles, FilterState{Query: "day"})
	assert.Equal(t, sampleArticles(), articles)
}

func TestParseStatusFilter(t *testing.T) {
	assert.Equal(t, StatusFilter("draft"), ParseStatusFilter("draft"))
	assert.Equal(t, StatusAll, ParseStatusFilter(""))
	assert.Equal(t, StatusAll, ParseStatusFilter("all"))
	assert.Equal(t, StatusAll, ParseStatusFilter("bogus"))
}

func TestSearchEngine_Memoizes(t *testing.T) {
	st := store.New()
	st.Create(model.Article{Title: "Open Day"})
	e := NewSearchEngine()

	first := e.Visible(st, FilterState{})
	second := e.Visible(st, FilterState{Status: StatusAll})
	hits, misses := e.Stats()

	assert.Len(t, first, 1)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, hits, "empty and all statuses share a cache key")
	assert.Equal(t, 1, misses)
}

func TestSearchEngine_InvalidatesOnMutation(t *testing.T) {
	st := store.New()
	a := st.Create(model.Article{Title: "Open Day"})
	e := NewSearchEngine()
	filter := FilterState{Status: "draft"}

	assert.Len(t, e.Visible(st, filter), 1)

	assert.NoError(t, st.SetStatus(a.ID, model.StatusPublished))
	assert.Empty(t, e.Visible(st, filter))

	st.Create(model.Article{Title: "Concert"})
	assert.Len(t, e.Visible(st, filter), 1)

	_, misses := e.Stats()
	assert.Equal(t, 3, misses)
}

func TestSearchEngine_InvalidatesOnFilterChange(t *testing.T) {
	st := store.New()
	st.Create(model.Article{Title: "Open Day"})
	st.Create(model.Article{Title: "Concert"})
	e := NewSearchEngine()

	assert.Len(t, e.Visible(st, FilterState{Query: "open"}), 1)
	assert.Len(t, e.Visible(st, FilterState{Query: "con"}), 1)
	assert.Len(t, e.Visible(st, FilterState{}), 2)
}
