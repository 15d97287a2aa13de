// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package handler exposes the public blog, the enquiry forms and the
// admin article dashboard over HTTP.
package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/ocms-school/internal/cache"
	"github.com/olegiv/ocms-school/internal/logging"
	"github.com/olegiv/ocms-school/internal/render"
	"github.com/olegiv/ocms-school/internal/scheduler"
	"github.com/olegiv/ocms-school/internal/service"
	"github.com/olegiv/ocms-school/internal/session"
	"github.com/olegiv/ocms-school/internal/store"
	"github.com/olegiv/ocms-school/internal/submission"
	"github.com/olegiv/ocms-school/internal/version"
)

// Deps are the collaborators a Handler serves.
type Deps struct {
	Store      *store.ArticleStore
	Workspaces *service.Workspaces
	Forms      *submission.Registry
	Sessions   *scs.SessionManager
	Notices    *logging.NoticeLog
	Logger     *slog.Logger
	Version    version.Info

	// Cache holds rendered articles. Nil uses a private memory cache.
	Cache cache.Cache

	// Jobs lists and triggers housekeeping jobs. Optional.
	Jobs *scheduler.Scheduler

	// SiteURL is the public base URL used in the sitemap.
	SiteURL string
	// HideFromCrawlers makes robots.txt disallow everything.
	HideFromCrawlers bool
}

// Handler serves every route of the site.
type Handler struct {
	store      *store.ArticleStore
	workspaces *service.Workspaces
	forms      *submission.Registry
	sessions   *scs.SessionManager
	notices    *logging.NoticeLog
	renderer   *render.Renderer
	pages      cache.Cache
	jobs       *scheduler.Scheduler
	siteURL    string
	hidden     bool
	logger     *slog.Logger
	version    version.Info
	now        func() time.Time
	startTime  time.Time
}

// New creates a Handler.
func New(d Deps) *Handler {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	notices := d.Notices
	if notices == nil {
		notices = logging.NewNoticeLog(logging.DefaultNoticeCapacity)
	}
	pages := d.Cache
	if pages == nil {
		pages = cache.NewMemoryCache(cache.MemoryCacheOptions{
			DefaultTTL: cache.DefaultConfig().DefaultTTL,
			MaxSize:    cache.DefaultConfig().MaxSize,
		})
	}
	return &Handler{
		store:      d.Store,
		workspaces: d.Workspaces,
		forms:      d.Forms,
		sessions:   d.Sessions,
		notices:    notices,
		renderer:   render.New(),
		pages:      pages,
		jobs:       d.Jobs,
		siteURL:    d.SiteURL,
		hidden:     d.HideFromCrawlers,
		logger:     logger,
		version:    d.Version,
		now:        time.Now,
		startTime:  time.Now(),
	}
}

// visitor returns the session visitor id for r.
func (h *Handler) visitor(r *http.Request) string {
	return session.VisitorID(r.Context(), h.sessions)
}

// workspace returns the admin workspace of the requesting visitor.
func (h *Handler) workspace(r *http.Request) *service.Workspace {
	return h.workspaces.Get(h.visitor(r))
}
