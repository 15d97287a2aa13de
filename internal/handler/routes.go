// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/olegiv/ocms-school/internal/middleware"
)

// RouterConfig configures the middleware stack.
type RouterConfig struct {
	IsDevelopment  bool
	CSRFKey        []byte
	RequestTimeout time.Duration
}

// NewRouter builds the application router around h.
func NewRouter(h *Handler, cfg RouterConfig, formLimiter *middleware.RateLimiter) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(requestLogger(h.logger))
	r.Use(chimw.Recoverer)
	r.Use(chimw.StripSlashes)
	if cfg.RequestTimeout > 0 {
		r.Use(chimw.Timeout(cfg.RequestTimeout))
	}
	r.Use(middleware.SecurityHeaders(middleware.DefaultSecurityHeadersConfig(cfg.IsDevelopment)))
	r.Use(middleware.CSRF(middleware.DefaultCSRFConfig(cfg.CSRFKey, cfg.IsDevelopment)))

	r.Get("/health", h.Health)
	r.Get("/robots.txt", h.Robots)
	r.Get("/sitemap.xml", h.Sitemap)

	r.Group(func(r chi.Router) {
		r.Use(h.sessions.LoadAndSave)

		r.Route("/api/articles", func(r chi.Router) {
			r.Get("/", h.ListPublished)
			r.Get("/{slug}", h.ShowPublished)
		})

		r.Route("/forms/{form}", func(r chi.Router) {
			if formLimiter != nil {
				r.Use(formLimiter.Middleware())
			}
			r.Get("/", h.ShowForm)
			r.Post("/", h.SubmitForm)
			r.Post("/fields/{field}", h.BlurField)
			r.Post("/dismiss", h.DismissForm)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Get("/articles", h.ListArticles)
			r.Post("/articles", h.CreateArticle)
			r.Get("/articles/{id}", h.GetArticle)
			r.Put("/articles/{id}", h.UpdateArticle)
			r.Delete("/articles/{id}", h.DeleteArticle)
			r.Post("/articles/{id}/status", h.SetArticleStatus)

			r.Post("/selection/toggle", h.ToggleSelection)
			r.Post("/selection/all", h.SelectAll)
			r.Delete("/selection", h.ClearSelection)
			r.Post("/bulk", h.Bulk)

			r.Get("/export", h.Export)
			r.Post("/import", h.Import)
			r.Get("/notices", h.Notices)

			r.Get("/jobs", h.ListJobs)
			r.Post("/jobs/{name}/run", h.RunJob)
		})
	})

	return r
}

// requestLogger logs one line per request at debug level, or at warn level
// for server errors.
func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)

			level := slog.LevelDebug
			if ww.Status() >= http.StatusInternalServerError {
				level = slog.LevelWarn
			}
			logger.Log(r.Context(), level, "request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"request_id", chimw.GetReqID(r.Context()))
		})
	}
}
