// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package seo builds the sitemap and robots.txt of the public blog.
package seo

import (
	"encoding/xml"
	"net/url"
	"strings"

	"github.com/olegiv/ocms-school/internal/model"
)

// XMLNamespace is the sitemap XML namespace.
const XMLNamespace = "http://www.sitemaps.org/schemas/sitemap/0.9"

// ArticlesPath is where the public blog is served.
const ArticlesPath = "/api/articles"

// ChangeFreq represents the change frequency of a URL.
type ChangeFreq string

// Valid change frequency values.
const (
	ChangeFreqDaily   ChangeFreq = "daily"
	ChangeFreqWeekly  ChangeFreq = "weekly"
	ChangeFreqMonthly ChangeFreq = "monthly"
)

// SitemapURL represents a single URL entry in the sitemap.
type SitemapURL struct {
	Loc        string     `xml:"loc"`
	LastMod    string     `xml:"lastmod,omitempty"`
	ChangeFreq ChangeFreq `xml:"changefreq,omitempty"`
	Priority   string     `xml:"priority,omitempty"`
}

// Sitemap represents the complete sitemap document.
type Sitemap struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []SitemapURL `xml:"url"`
}

// SitemapBuilder builds sitemap XML for the blog.
type SitemapBuilder struct {
	siteURL string
	urls    []SitemapURL
}

// NewSitemapBuilder creates a new sitemap builder.
func NewSitemapBuilder(siteURL string) *SitemapBuilder {
	return &SitemapBuilder{
		siteURL: strings.TrimSuffix(siteURL, "/"),
		urls:    make([]SitemapURL, 0),
	}
}

// AddIndex adds the article listing.
func (b *SitemapBuilder) AddIndex() {
	b.urls = append(b.urls, SitemapURL{
		Loc:        b.siteURL + ArticlesPath,
		ChangeFreq: ChangeFreqDaily,
		Priority:   "1.0",
	})
}

// AddArticle adds a published article. Other statuses are skipped.
func (b *SitemapBuilder) AddArticle(a model.Article) {
	if !a.IsPublished() || a.Slug == "" {
		return
	}
	entry := SitemapURL{
		Loc:        b.siteURL + ArticlesPath + "/" + url.PathEscape(a.Slug),
		ChangeFreq: ChangeFreqMonthly,
		Priority:   "0.8",
	}
	if a.Featured {
		entry.Priority = "0.9"
	}
	if len(a.CreatedAt) == len("2006-01-02") {
		entry.LastMod = a.CreatedAt
	}
	b.urls = append(b.urls, entry)
}

// AddCategory adds the filtered listing of one category.
func (b *SitemapBuilder) AddCategory(c model.Category) {
	b.urls = append(b.urls, SitemapURL{
		Loc:        b.siteURL + ArticlesPath + "?category=" + url.QueryEscape(strings.ToLower(string(c))),
		ChangeFreq: ChangeFreqWeekly,
		Priority:   "0.6",
	})
}

// Build generates the sitemap XML.
func (b *SitemapBuilder) Build() ([]byte, error) {
	sitemap := Sitemap{
		XMLNS: XMLNamespace,
		URLs:  b.urls,
	}

	output := []byte(xml.Header)
	xmlBytes, err := xml.MarshalIndent(sitemap, "", "  ")
	if err != nil {
		return nil, err
	}

	return append(output, xmlBytes...), nil
}

// GenerateSitemap lists the blog index, every category that has a
// published article, and every published article.
func GenerateSitemap(siteURL string, articles []model.Article) ([]byte, error) {
	builder := NewSitemapBuilder(siteURL)
	builder.AddIndex()

	used := make(map[model.Category]bool)
	for _, a := range articles {
		if a.IsPublished() {
			used[a.Category] = true
		}
	}
	for _, c := range model.ValidCategories() {
		if used[c] {
			builder.AddCategory(c)
		}
	}
	for _, a := range articles {
		builder.AddArticle(a)
	}
	return builder.Build()
}
