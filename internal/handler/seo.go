// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"errors"
	"net/http"

	"github.com/olegiv/ocms-school/internal/cache"
	"github.com/olegiv/ocms-school/internal/seo"
)

// Robots handles GET /robots.txt.
func (h *Handler) Robots(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(seo.GenerateRobots(h.siteURL, h.hidden)))
}

// Sitemap handles GET /sitemap.xml. The document is cached per store
// version.
func (h *Handler) Sitemap(w http.ResponseWriter, r *http.Request) {
	version, articles := h.store.Snapshot()
	key := cache.SitemapKey(version)

	body, err := h.pages.Get(r.Context(), key)
	if err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) {
			h.logger.Warn("render cache read failed", "key", key, "error", err)
		}
		body, err = seo.GenerateSitemap(h.siteURL, articles)
		if err != nil {
			h.logger.Error("failed to build sitemap", "error", err)
			writeJSONError(w, http.StatusInternalServerError, "Internal error")
			return
		}
		if err := h.pages.Set(r.Context(), key, body, 0); err != nil {
			h.logger.Warn("render cache write failed", "key", key, "error", err)
		}
	}

	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	_, _ = w.Write(body)
}
