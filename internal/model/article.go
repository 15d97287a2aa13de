// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"slices"
	"strings"
)

// Status is the publication status of an article.
type Status string

// Article statuses
const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
	StatusArchived  Status = "archived"
)

// ValidStatuses returns all article statuses.
func ValidStatuses() []Status {
	return []Status{StatusDraft, StatusPublished, StatusArchived}
}

// ParseStatus parses a status name case-insensitively.
func ParseStatus(s string) (Status, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, st := range ValidStatuses() {
		if string(st) == s {
			return st, true
		}
	}
	return "", false
}

// Category is the closed set of blog categories.
type Category string

// Article categories
const (
	CategoryAcademics  Category = "Academics"
	CategoryAdmissions Category = "Admissions"
	CategoryArts       Category = "Arts"
	CategoryCommunity  Category = "Community"
	CategoryEvents     Category = "Events"
	CategorySports     Category = "Sports"
)

// ValidCategories returns all categories in display order.
func ValidCategories() []Category {
	return []Category{
		CategoryAcademics,
		CategoryAdmissions,
		CategoryArts,
		CategoryCommunity,
		CategoryEvents,
		CategorySports,
	}
}

// CategoryNames returns the category names as plain strings.
func CategoryNames() []string {
	cats := ValidCategories()
	names := make([]string, len(cats))
	for i, c := range cats {
		names[i] = string(c)
	}
	return names
}

// ParseCategory parses a category name case-insensitively.
func ParseCategory(s string) (Category, bool) {
	s = strings.TrimSpace(s)
	for _, c := range ValidCategories() {
		if strings.EqualFold(string(c), s) {
			return c, true
		}
	}
	return "", false
}

// BlockType identifies the kind of a content block.
type BlockType string

// Content block types
const (
	BlockLead      BlockType = "lead"
	BlockHeading   BlockType = "heading"
	BlockParagraph BlockType = "paragraph"
)

// Block is one typed piece of article content.
type Block struct {
	Type BlockType `json:"type"`
	Text string    `json:"text"`
}

// WordsPerMinute is the reading speed used for read time estimates.
const WordsPerMinute = 200

// Article is a blog article managed from the admin dashboard.
type Article struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Slug        string   `json:"slug"`
	Category    Category `json:"category"`
	Excerpt     string   `json:"excerpt"`
	Author      string   `json:"author"`
	Tags        []string `json:"tags"`
	Image       string   `json:"image"`
	Content     []Block  `json:"content"`
	Featured    bool     `json:"featured"`
	Status      Status   `json:"status"`
	CreatedAt   string   `json:"created_at"`
	ReadMinutes int      `json:"read_minutes"`
}

// IsPublished returns true if the article is published.
func (a *Article) IsPublished() bool {
	return a.Status == StatusPublished
}

// IsDraft returns true if the article is a draft.
func (a *Article) IsDraft() bool {
	return a.Status == StatusDraft
}

// IsArchived returns true if the article is archived.
func (a *Article) IsArchived() bool {
	return a.Status == StatusArchived
}

// Clone returns a deep copy of the article.
func (a Article) Clone() Article {
	if a.Tags != nil {
		a.Tags = append([]string(nil), a.Tags...)
	}
	if a.Content != nil {
		a.Content = append([]Block(nil), a.Content...)
	}
	return a
}

// EstimateReadMinutes returns the read time for content blocks, never less than one minute.
func EstimateReadMinutes(blocks []Block) int {
	words := 0
	for _, b := range blocks {
		words += len(strings.Fields(b.Text))
	}
	minutes := (words + WordsPerMinute - 1) / WordsPerMinute
	if minutes < 1 {
		minutes = 1
	}
	return minutes
}

// NormalizeTags trims, drops empties and de-duplicates tags case-insensitively.
// The result is sorted so that two tag sets with the same members compare equal.
func NormalizeTags(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		key := strings.ToLower(t)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, t)
	}
	slices.SortFunc(out, func(a, b string) int {
		return strings.Compare(strings.ToLower(a), strings.ToLower(b))
	})
	return out
}

// ArticlePatch carries the fields an update may change.
// Nil fields are left untouched. ID, slug and status cannot be patched.
type ArticlePatch struct {
	Title    *string   `json:"title,omitempty"`
	Category *Category `json:"category,omitempty"`
	Excerpt  *string   `json:"excerpt,omitempty"`
	Author   *string   `json:"author,omitempty"`
	Tags     *[]string `json:"tags,omitempty"`
	Image    *string   `json:"image,omitempty"`
	Content  *[]Block  `json:"content,omitempty"`
	Featured *bool     `json:"featured,omitempty"`
}

// Apply writes the non-nil patch fields onto a copy of the article.
func (p ArticlePatch) Apply(a Article) Article {
	a = a.Clone()
	if p.Title != nil {
		a.Title = *p.Title
	}
	if p.Category != nil {
		a.Category = *p.Category
	}
	if p.Excerpt != nil {
		a.Excerpt = *p.Excerpt
	}
	if p.Author != nil {
		a.Author = *p.Author
	}
	if p.Tags != nil {
		a.Tags = append([]string(nil), (*p.Tags)...)
	}
	if p.Image != nil {
		a.Image = *p.Image
	}
	if p.Content != nil {
		a.Content = append([]Block(nil), (*p.Content)...)
	}
	if p.Featured != nil {
		a.Featured = *p.Featured
	}
	return a
}
