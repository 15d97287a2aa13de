// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package transfer

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/olegiv/ocms-school/internal/model"
)

// ExportFilenameLayout formats the date in export file names.
const ExportFilenameLayout = "2006-01-02"

// ExportFilename returns the download name for an export made at now,
// e.g. "articles-export-2026-03-14.json".
func ExportFilename(now time.Time) string {
	return fmt.Sprintf("articles-export-%s.json", now.UTC().Format(ExportFilenameLayout))
}

// ExportArticles writes articles to w as an indented JSON document.
// Article order is preserved.
func ExportArticles(w io.Writer, articles []model.Article, now time.Time) error {
	if articles == nil {
		articles = []model.Article{}
	}
	data := ExportData{
		Version:    ExportVersion,
		ExportedAt: now.UTC(),
		Count:      len(articles),
		Articles:   articles,
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		return fmt.Errorf("encoding export: %w", err)
	}
	return nil
}
