// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// APIError represents a JSON error response.
type APIError struct {
	Error struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details,omitempty"`
	} `json:"error"`
}

// WriteAPIError writes a JSON error response.
func WriteAPIError(w http.ResponseWriter, statusCode int, code, message string, details map[string]string) {
	var resp APIError
	resp.Error.Code = code
	resp.Error.Message = message
	resp.Error.Details = details

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}
