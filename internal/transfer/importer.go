// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package transfer

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/olegiv/ocms-school/internal/model"
	"github.com/olegiv/ocms-school/internal/sanitize"
)

// MaxImportSize limits the size of an import document (5MB).
const MaxImportSize = 5 << 20

// Import errors
var (
	ErrUnsupportedVersion = errors.New("unsupported export version")
	ErrImportTooLarge     = errors.New("import document too large")
)

// Field limits applied to imported articles.
const (
	maxTitleLength   = 150
	maxExcerptLength = 300
	maxAuthorLength  = 100
	maxTagLength     = 50
	maxBlockLength   = 5000
)

// ReadArticles decodes an export document and returns its articles with
// every text field sanitized. Identifiers and slugs are dropped so the
// store assigns fresh ones; unknown categories or statuses are rejected.
func ReadArticles(r io.Reader) ([]model.Article, error) {
	limited := io.LimitReader(r, MaxImportSize+1)
	raw, err := io.ReadAll(limited)
	if err != nil {
		return nil, fmt.Errorf("reading import: %w", err)
	}
	if len(raw) > MaxImportSize {
		return nil, ErrImportTooLarge
	}

	var data ExportData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("decoding import: %w", err)
	}
	if data.Version != ExportVersion {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedVersion, data.Version)
	}

	articles := make([]model.Article, 0, len(data.Articles))
	for i, a := range data.Articles {
		clean, err := cleanArticle(a)
		if err != nil {
			return nil, fmt.Errorf("article %d: %w", i, err)
		}
		articles = append(articles, clean)
	}
	return articles, nil
}

func cleanArticle(a model.Article) (model.Article, error) {
	category, ok := model.ParseCategory(string(a.Category))
	if !ok {
		return model.Article{}, fmt.Errorf("invalid category %q", a.Category)
	}
	status, ok := model.ParseStatus(string(a.Status))
	if !ok {
		return model.Article{}, fmt.Errorf("invalid status %q", a.Status)
	}

	tags := make([]string, 0, len(a.Tags))
	for _, t := range a.Tags {
		tags = append(tags, sanitize.Text(t, maxTagLength))
	}
	blocks := make([]model.Block, 0, len(a.Content))
	for _, b := range a.Content {
		switch b.Type {
		case model.BlockLead, model.BlockHeading, model.BlockParagraph:
		default:
			b.Type = model.BlockParagraph
		}
		if text := sanitize.Text(b.Text, maxBlockLength); text != "" {
			blocks = append(blocks, model.Block{Type: b.Type, Text: text})
		}
	}

	return model.Article{
		Title:     sanitize.Text(a.Title, maxTitleLength),
		Category:  category,
		Excerpt:   sanitize.Text(a.Excerpt, maxExcerptLength),
		Author:    sanitize.Text(a.Author, maxAuthorLength),
		Tags:      tags,
		Image:     sanitize.URLOrEmpty(a.Image),
		Content:   blocks,
		Featured:  a.Featured,
		Status:    status,
		CreatedAt: sanitize.Text(a.CreatedAt, len("2006-01-02")),
	}, nil
}
