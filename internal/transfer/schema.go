// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package transfer provides JSON export and import of articles.
package transfer

import (
	"time"

	"github.com/olegiv/ocms-school/internal/model"
)

// ExportVersion is the current version of the export format.
const ExportVersion = "1.0"

// ExportData represents the complete export structure.
type ExportData struct {
	Version    string          `json:"version"`
	ExportedAt time.Time       `json:"exported_at"`
	Count      int             `json:"count"`
	Articles   []model.Article `json:"articles"`
}
