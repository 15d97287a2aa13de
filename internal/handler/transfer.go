// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"bytes"
	"errors"
	"net/http"
	"strconv"

	"github.com/olegiv/ocms-school/internal/service"
	"github.com/olegiv/ocms-school/internal/transfer"
)

// Export handles GET /admin/export and downloads the articles visible under
// the visitor's current filter as JSON.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	now := h.now()

	// Encode first so a failure can still produce an error response.
	var buf bytes.Buffer
	if err := transfer.ExportArticles(&buf, h.workspace(r).Visible(), now); err != nil {
		h.logger.Error("failed to export articles", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "Export failed")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="`+transfer.ExportFilename(now)+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	_, _ = buf.WriteTo(w)
}

// Import handles POST /admin/import. The body is an export document; every
// article in it is created as a new article.
func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	articles, err := transfer.ReadArticles(r.Body)
	switch {
	case errors.Is(err, transfer.ErrImportTooLarge):
		writeJSONError(w, http.StatusRequestEntityTooLarge, "Import file too large")
		return
	case err != nil:
		h.logger.Warn("rejected article import", "error", err)
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	ws := h.workspace(r)
	for _, a := range articles {
		if _, err := ws.Dispatch(r.Context(), service.CreateArticle{Article: a}); err != nil {
			h.writeDispatchError(w, err, service.Outcome{View: ws.View()})
			return
		}
	}
	h.logger.Info("articles imported", "count", len(articles))
	writeJSONSuccess(w, map[string]any{
		"imported": len(articles),
		"view":     ws.View(),
	})
}

// Notices handles GET /admin/notices?limit=N.
func (h *Handler) Notices(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeJSONError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = n
	}
	writeJSON(w, http.StatusOK, map[string]any{"notices": h.notices.Recent(limit)})
}
