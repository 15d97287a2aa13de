// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/ocms-school/internal/scheduler"
)

// ListJobs handles GET /admin/jobs.
func (h *Handler) ListJobs(w http.ResponseWriter, r *http.Request) {
	jobs := []scheduler.JobInfo{}
	if h.jobs != nil {
		jobs = h.jobs.List()
	}
	writeJSON(w, http.StatusOK, map[string]any{"jobs": jobs})
}

// RunJob handles POST /admin/jobs/{name}/run.
func (h *Handler) RunJob(w http.ResponseWriter, r *http.Request) {
	if h.jobs == nil {
		writeJSONError(w, http.StatusNotFound, "Job not found")
		return
	}
	name := chi.URLParam(r, "name")
	if err := h.jobs.TriggerNow(name); err != nil {
		if errors.Is(err, scheduler.ErrJobNotFound) {
			writeJSONError(w, http.StatusNotFound, "Job not found")
			return
		}
		h.logger.Error("failed to run job", "name", name, "error", err)
		writeJSONError(w, http.StatusInternalServerError, "Internal error")
		return
	}
	writeJSONSuccess(w, map[string]any{"job": name})
}
