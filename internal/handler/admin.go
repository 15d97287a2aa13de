// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/ocms-school/internal/form"
	"github.com/olegiv/ocms-school/internal/model"
	"github.com/olegiv/ocms-school/internal/service"
	"github.com/olegiv/ocms-school/internal/store"
	"github.com/olegiv/ocms-school/internal/submission"
)

// dispatch runs cmd on the visitor's workspace and writes the outcome.
func (h *Handler) dispatch(w http.ResponseWriter, r *http.Request, cmd service.Command) {
	out, err := h.workspace(r).Dispatch(r.Context(), cmd)
	if err != nil {
		h.writeDispatchError(w, err, out)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// writeDispatchError maps workspace errors to HTTP statuses. The outcome
// view is included so the dashboard can redraw.
func (h *Handler) writeDispatchError(w http.ResponseWriter, err error, out service.Outcome) {
	status := http.StatusInternalServerError
	message := "Internal error"
	switch {
	case errors.Is(err, store.ErrNotFound):
		status, message = http.StatusNotFound, "Article not found"
	case errors.Is(err, store.ErrInvalidStatus):
		status, message = http.StatusBadRequest, "Invalid status"
	case errors.Is(err, service.ErrUnknownBulkOp):
		status, message = http.StatusBadRequest, "Unknown bulk operation"
	case errors.Is(err, service.ErrConfirmationRequired):
		status, message = http.StatusConflict, "Please confirm this operation"
	case errors.Is(err, service.ErrUnknownCommand):
		status, message = http.StatusBadRequest, "Unknown command"
	default:
		h.logger.Error("workspace command failed", "error", err)
	}
	writeJSON(w, status, map[string]any{
		"success": false,
		"error":   message,
		"view":    out.View,
	})
}

// ListArticles handles GET /admin/articles. The q and status parameters,
// when present, update the workspace filter.
func (h *Handler) ListArticles(w http.ResponseWriter, r *http.Request) {
	ws := h.workspace(r)
	query := r.URL.Query()
	if query.Has("q") {
		if _, err := ws.Dispatch(r.Context(), service.SetQuery{Query: query.Get("q")}); err != nil {
			h.writeDispatchError(w, err, service.Outcome{View: ws.View()})
			return
		}
	}
	if query.Has("status") {
		cmd := service.SetStatusFilter{Status: service.ParseStatusFilter(query.Get("status"))}
		if _, err := ws.Dispatch(r.Context(), cmd); err != nil {
			h.writeDispatchError(w, err, service.Outcome{View: ws.View()})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"view": ws.View()})
}

// articleKey names the article form instance of a visitor. id is empty for
// a new article; each edited article has its own instance.
func articleKey(visitor, id string) submission.Key {
	key := submission.Key{Visitor: visitor, Form: form.NameArticle}
	if id != "" {
		key.Form += "/" + id
	}
	return key
}

// articleMachine returns the visitor's submission machine for the article form.
func (h *Handler) articleMachine(visitor, id string) *submission.Machine {
	return h.forms.Bind(articleKey(visitor, id), form.Article, h.articleSubmit(visitor, id))
}

// articleSubmit dispatches a validated article payload to the visitor's
// workspace as a create, or as an update of id.
func (h *Handler) articleSubmit(visitor, id string) submission.SubmitFunc {
	return func(ctx context.Context, payload map[string]string) (submission.Result, error) {
		var cmd service.Command
		if id == "" {
			a, err := form.ArticleFromPayload(payload)
			if err != nil {
				return submission.Result{Message: err.Error()}, nil
			}
			cmd = service.CreateArticle{Article: a}
		} else {
			patch, err := form.ArticlePatchFromPayload(payload)
			if err != nil {
				return submission.Result{Message: err.Error()}, nil
			}
			cmd = service.UpdateArticle{ID: id, Patch: patch}
		}

		out, err := h.workspaces.Get(visitor).Dispatch(ctx, cmd)
		switch {
		case errors.Is(err, store.ErrNotFound):
			return submission.Result{Message: "Article not found"}, nil
		case err != nil:
			return submission.Result{}, err
		}
		return submission.Result{OK: true, Ref: out.Article.ID}, nil
	}
}

// submitArticle runs the article form body through m and writes the outcome.
func (h *Handler) submitArticle(w http.ResponseWriter, r *http.Request, m *submission.Machine) {
	values, err := readValues(w, r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	// A new attempt replaces a message still on display.
	m.Dismiss()
	if m.State() != submission.StateIdle {
		writeJSONError(w, http.StatusConflict, "A submission is already in progress")
		return
	}
	// Every request carries the whole form.
	draft := m.Draft()
	draft.Reset()
	draft.SetAll(values)

	snap, err := m.Submit(r.Context())
	switch {
	case errors.Is(err, submission.ErrBusy):
		writeJSONError(w, http.StatusConflict, "A submission is already in progress")
		return
	case errors.Is(err, submission.ErrClosed):
		writeJSONError(w, http.StatusConflict, "The submission was cancelled")
		return
	case err != nil:
		h.logger.Error("article submission error", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "Internal error")
		return
	}

	resp := map[string]any{"submission": snap}
	switch snap.State {
	case submission.StateSuccess:
		a, err := h.store.Get(snap.Ref)
		if err != nil {
			writeJSONError(w, http.StatusNotFound, "Article not found")
			return
		}
		resp["success"] = true
		resp["message"] = snap.Message
		resp["article"] = a
		resp["view"] = h.workspace(r).View()
		writeJSON(w, http.StatusOK, resp)
	case submission.StateError:
		resp["success"] = false
		resp["error"] = snap.Message
		status := http.StatusUnprocessableEntity
		if snap.Failed {
			status = http.StatusInternalServerError
		}
		writeJSON(w, status, resp)
	default:
		resp["focus_field"] = snap.FocusField
		writeValidationErrors(w, snap.Errors, resp)
	}
}

// CreateArticle handles POST /admin/articles.
func (h *Handler) CreateArticle(w http.ResponseWriter, r *http.Request) {
	h.submitArticle(w, r, h.articleMachine(h.visitor(r), ""))
}

// GetArticle handles GET /admin/articles/{id}. It returns the article and
// its values for the edit form.
func (h *Handler) GetArticle(w http.ResponseWriter, r *http.Request) {
	a, err := h.store.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeJSONError(w, http.StatusNotFound, "Article not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"article": a,
		"values":  form.ArticleValues(a),
	})
}

// UpdateArticle handles PUT /admin/articles/{id}.
func (h *Handler) UpdateArticle(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !h.store.Has(id) {
		writeJSONError(w, http.StatusNotFound, "Article not found")
		return
	}
	h.submitArticle(w, r, h.articleMachine(h.visitor(r), id))
}

// DeleteArticle handles DELETE /admin/articles/{id}.
func (h *Handler) DeleteArticle(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	h.forms.Close(articleKey(h.visitor(r), id))
	h.dispatch(w, r, service.DeleteArticle{ID: id})
}

// SetArticleStatus handles POST /admin/articles/{id}/status.
func (h *Handler) SetArticleStatus(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Status string `json:"status"`
	}
	if err := decodeJSON(w, r, &body); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	status, ok := model.ParseStatus(body.Status)
	if !ok {
		writeJSONError(w, http.StatusBadRequest, "Invalid status")
		return
	}
	h.dispatch(w, r, service.SetArticleStatus{ID: chi.URLParam(r, "id"), Status: status})
}

// ToggleSelection handles POST /admin/selection/toggle.
func (h *Handler) ToggleSelection(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ID string `json:"id"`
	}
	if err := decodeJSON(w, r, &body); err != nil || body.ID == "" {
		writeJSONError(w, http.StatusBadRequest, "Missing article id")
		return
	}
	h.dispatch(w, r, service.ToggleSelect{ID: body.ID})
}

// SelectAll handles POST /admin/selection/all. It toggles between all
// visible articles and none.
func (h *Handler) SelectAll(w http.ResponseWriter, r *http.Request) {
	h.dispatch(w, r, service.SelectAll{})
}

// ClearSelection handles DELETE /admin/selection.
func (h *Handler) ClearSelection(w http.ResponseWriter, r *http.Request) {
	h.dispatch(w, r, service.ClearSelection{})
}

// Bulk handles POST /admin/bulk. Destructive operations need
// "confirmed": true.
func (h *Handler) Bulk(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Op        string `json:"op"`
		Confirmed bool   `json:"confirmed"`
	}
	if err := decodeJSON(w, r, &body); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	h.dispatch(w, r, service.RunBulk{Op: service.BulkOp(body.Op), Confirmed: body.Confirmed})
}
