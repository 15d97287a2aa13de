// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"
	"runtime"
	"time"

	"github.com/olegiv/ocms-school/internal/cache"
)

// HealthStatus is the health check response.
type HealthStatus struct {
	Status       string      `json:"status"`
	Timestamp    time.Time   `json:"timestamp"`
	Uptime       string      `json:"uptime"`
	Version      string      `json:"version"`
	Articles     int         `json:"articles"`
	FormSessions int         `json:"form_sessions"`
	Workspaces   int         `json:"workspaces"`
	Goroutines   int         `json:"goroutines"`
	RenderCache  cache.Stats `json:"render_cache"`
}

// Health handles GET /health requests.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthStatus{
		Status:       "healthy",
		Timestamp:    h.now().UTC(),
		Uptime:       time.Since(h.startTime).Round(time.Second).String(),
		Version:      h.version.String(),
		Articles:     h.store.Len(),
		FormSessions: h.forms.Len(),
		Workspaces:   h.workspaces.Len(),
		Goroutines:   runtime.NumGoroutine(),
		RenderCache:  h.pages.Stats(),
	})
}
