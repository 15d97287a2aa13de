// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net/http"

	"github.com/olegiv/ocms-school/internal/validate"
)

// maxBodySize bounds JSON and form request bodies.
const maxBodySize = 1 << 20

// writeJSON writes data as a JSON response with the given status.
func writeJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// writeRawJSON writes an already encoded JSON body with status 200.
func writeRawJSON(w http.ResponseWriter, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		slog.Debug("failed to write response", "error", err)
	}
}

// writeJSONError writes a JSON error response.
func writeJSONError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]any{
		"success": false,
		"error":   message,
	})
}

// writeJSONSuccess writes a JSON success response.
func writeJSONSuccess(w http.ResponseWriter, data map[string]any) {
	if data == nil {
		data = make(map[string]any)
	}
	data["success"] = true
	writeJSON(w, http.StatusOK, data)
}

// writeValidationErrors writes a 422 response listing field errors.
func writeValidationErrors(w http.ResponseWriter, errs validate.ErrorMap, extra map[string]any) {
	data := map[string]any{
		"success": false,
		"error":   "Please correct the highlighted fields",
		"errors":  errs,
	}
	for k, v := range extra {
		data[k] = v
	}
	writeJSON(w, http.StatusUnprocessableEntity, data)
}

// decodeJSON decodes a size-limited JSON request body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// readValues reads field values from a JSON object or an urlencoded form.
func readValues(w http.ResponseWriter, r *http.Request) (map[string]string, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		values := make(map[string]string)
		if err := decodeJSON(w, r, &values); err != nil {
			return nil, err
		}
		return values, nil
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	if err := r.ParseForm(); err != nil {
		return nil, fmt.Errorf("invalid form body: %w", err)
	}
	values := make(map[string]string, len(r.PostForm))
	for k := range r.PostForm {
		values[k] = r.PostForm.Get(k)
	}
	return values, nil
}

// isBodyTooLarge reports whether err came from an oversized body.
func isBodyTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}
