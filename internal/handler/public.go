// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/ocms-school/internal/cache"
	"github.com/olegiv/ocms-school/internal/model"
	"github.com/olegiv/ocms-school/internal/service"
	"github.com/olegiv/ocms-school/internal/store"
)

// ListPublished handles GET /api/articles. Only published articles are
// listed; q searches title, excerpt and category, category narrows further.
func (h *Handler) ListPublished(w http.ResponseWriter, r *http.Request) {
	filter := service.FilterState{
		Query:  r.URL.Query().Get("q"),
		Status: service.StatusFilter(model.StatusPublished),
	}
	visible := service.Visible(h.store.List(), filter)

	if raw := r.URL.Query().Get("category"); raw != "" {
		category, ok := model.ParseCategory(raw)
		if !ok {
			writeJSONError(w, http.StatusBadRequest, "Unknown category")
			return
		}
		narrowed := visible[:0]
		for _, a := range visible {
			if a.Category == category {
				narrowed = append(narrowed, a)
			}
		}
		visible = narrowed
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"articles": visible,
		"count":    len(visible),
	})
}

// ShowPublished handles GET /api/articles/{slug} and returns the article
// with its content rendered to sanitized HTML. Rendered responses are
// cached per store version.
func (h *Handler) ShowPublished(w http.ResponseWriter, r *http.Request) {
	version := h.store.Version()
	a, err := h.store.GetBySlug(chi.URLParam(r, "slug"))
	if errors.Is(err, store.ErrNotFound) || (err == nil && !a.IsPublished()) {
		writeJSONError(w, http.StatusNotFound, "Article not found")
		return
	}
	if err != nil {
		h.logger.Error("failed to load article", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "Internal error")
		return
	}

	key := cache.ArticleKey(a.ID, version)
	if body, err := h.pages.Get(r.Context(), key); err == nil {
		writeRawJSON(w, body)
		return
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		h.logger.Warn("render cache read failed", "key", key, "error", err)
	}

	rendered, err := h.renderer.Article(a)
	if err != nil {
		h.logger.Error("failed to render article", "slug", a.Slug, "error", err)
		writeJSONError(w, http.StatusInternalServerError, "Internal error")
		return
	}
	body, err := json.Marshal(rendered)
	if err != nil {
		h.logger.Error("failed to encode article", "slug", a.Slug, "error", err)
		writeJSONError(w, http.StatusInternalServerError, "Internal error")
		return
	}
	if err := h.pages.Set(r.Context(), key, body, 0); err != nil {
		h.logger.Warn("render cache write failed", "key", key, "error", err)
	}
	writeRawJSON(w, body)
}
