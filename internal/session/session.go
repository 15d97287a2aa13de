// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package session identifies visitors across requests so that each one
// keeps its own form state and admin workspace.
package session

import (
	"context"
	"net/http"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/alexedwards/scs/v2/memstore"
	"github.com/google/uuid"
)

// CookieName is the session cookie name.
const CookieName = "school_session"

// visitorKey stores the visitor identifier in session data.
const visitorKey = "visitor_id"

// New creates a session manager backed by an in-memory store.
func New(isDev bool) *scs.SessionManager {
	sm := scs.New()
	sm.Store = memstore.New()

	sm.Lifetime = 24 * time.Hour
	sm.Cookie.Name = CookieName
	sm.Cookie.HttpOnly = true
	sm.Cookie.SameSite = http.SameSiteLaxMode
	sm.Cookie.Secure = !isDev // Secure cookies in production only

	return sm
}

// VisitorID returns the identifier of the visitor owning the request
// session, creating one on first use. ctx must come from a request that
// passed through sm.LoadAndSave.
func VisitorID(ctx context.Context, sm *scs.SessionManager) string {
	if id := sm.GetString(ctx, visitorKey); id != "" {
		return id
	}
	id := uuid.NewString()
	sm.Put(ctx, visitorKey, id)
	return id
}
