// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/ocms-school/internal/form"
	"github.com/olegiv/ocms-school/internal/model"
	"github.com/olegiv/ocms-school/internal/submission"
)

// honeypotField is a hidden input that humans leave empty.
const honeypotField = "_website"

// machine resolves the public form named in the URL and returns the
// requesting visitor's machine for it.
func (h *Handler) machine(w http.ResponseWriter, r *http.Request) (*submission.Machine, model.FormSchema, bool) {
	schema, ok := form.Lookup(chi.URLParam(r, "form"))
	if !ok {
		writeJSONError(w, http.StatusNotFound, "Form not found")
		return nil, model.FormSchema{}, false
	}
	key := submission.Key{Visitor: h.visitor(r), Form: schema.Name}
	return h.forms.Get(key, schema), schema, true
}

// ShowForm handles GET /forms/{form}: the field declarations together with
// the visitor's current draft and submission state.
func (h *Handler) ShowForm(w http.ResponseWriter, r *http.Request) {
	m, schema, ok := h.machine(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"form":       schema,
		"submission": m.Snapshot(),
	})
}

// SubmitForm handles POST /forms/{form}. The body carries field values as
// JSON or urlencoded form data.
func (h *Handler) SubmitForm(w http.ResponseWriter, r *http.Request) {
	m, schema, ok := h.machine(w, r)
	if !ok {
		return
	}

	values, err := readValues(w, r)
	if err != nil {
		if isBodyTooLarge(err) {
			writeJSONError(w, http.StatusRequestEntityTooLarge, "Request too large")
			return
		}
		writeJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if values[honeypotField] != "" {
		// Bot detected, silently pretend success
		h.logger.Info("honeypot triggered", "form", schema.Name, "ip", r.RemoteAddr)
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"message": schema.SuccessMessage,
		})
		return
	}

	// A new attempt replaces a message still on display.
	m.Dismiss()
	if state := m.State(); state != submission.StateIdle {
		writeJSONError(w, http.StatusConflict, "A submission is already in progress")
		return
	}
	m.Draft().SetAll(values)

	snap, err := m.Submit(r.Context())
	switch {
	case errors.Is(err, submission.ErrBusy):
		writeJSONError(w, http.StatusConflict, "A submission is already in progress")
		return
	case errors.Is(err, submission.ErrClosed):
		writeJSONError(w, http.StatusConflict, "The submission was cancelled")
		return
	case err != nil:
		h.logger.Error("form submission error", "form", schema.Name, "error", err)
		writeJSONError(w, http.StatusInternalServerError, "Internal error")
		return
	}

	resp := map[string]any{"submission": snap}
	switch snap.State {
	case submission.StateSuccess:
		resp["success"] = true
		resp["message"] = snap.Message
		writeJSON(w, http.StatusOK, resp)
	case submission.StateError:
		resp["success"] = false
		resp["error"] = snap.Message
		status := http.StatusUnprocessableEntity
		if snap.Failed {
			status = http.StatusBadGateway
		}
		writeJSON(w, status, resp)
	default:
		writeValidationErrors(w, snap.Errors, resp)
	}
}

// BlurField handles POST /forms/{form}/fields/{field}: it stores one value
// and returns its validation message for early feedback.
func (h *Handler) BlurField(w http.ResponseWriter, r *http.Request) {
	m, _, ok := h.machine(w, r)
	if !ok {
		return
	}

	var body struct {
		Value string `json:"value"`
	}
	if err := decodeJSON(w, r, &body); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	name := chi.URLParam(r, "field")
	draft := m.Draft()
	if err := draft.Set(name, body.Value); err != nil {
		writeJSONError(w, http.StatusNotFound, "Field not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"field": name,
		"value": draft.Value(name),
		"error": draft.Blur(name),
	})
}

// DismissForm handles POST /forms/{form}/dismiss.
func (h *Handler) DismissForm(w http.ResponseWriter, r *http.Request) {
	m, _, ok := h.machine(w, r)
	if !ok {
		return
	}
	m.Dismiss()
	writeJSON(w, http.StatusOK, map[string]any{"submission": m.Snapshot()})
}
