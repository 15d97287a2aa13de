// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Command schoolsite serves the school website: the public blog, the
// enquiry forms and the admin article dashboard.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/olegiv/ocms-school/internal/cache"
	"github.com/olegiv/ocms-school/internal/config"
	"github.com/olegiv/ocms-school/internal/handler"
	"github.com/olegiv/ocms-school/internal/logging"
	"github.com/olegiv/ocms-school/internal/middleware"
	"github.com/olegiv/ocms-school/internal/scheduler"
	"github.com/olegiv/ocms-school/internal/service"
	"github.com/olegiv/ocms-school/internal/session"
	"github.com/olegiv/ocms-school/internal/store"
	"github.com/olegiv/ocms-school/internal/submission"
	"github.com/olegiv/ocms-school/internal/util"
	"github.com/olegiv/ocms-school/internal/version"
	"github.com/olegiv/ocms-school/internal/webhook"
)

var (
	appVersion   = "dev"
	appGitCommit = "unknown"
	appBuildTime = "unknown"
)

// Housekeeping schedules.
const (
	sweepSchedule   = "@every 1m"
	limiterSchedule = "@every 10m"
)

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	showHelp := flag.Bool("help", false, "Show help information")
	flag.BoolVar(showHelp, "h", false, "Show help information (shorthand)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "schoolsite - school website content server\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  SCHOOL_SESSION_SECRET          Session and CSRF key (required, min 32 bytes)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  SCHOOL_SERVER_HOST             Listen host (default: localhost)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  SCHOOL_SERVER_PORT             Server port (default: 8080)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  SCHOOL_ENV                     Environment: development|production (default: development)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  SCHOOL_LOG_LEVEL               debug|info|warn|error (default: info)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  SCHOOL_LOG_FORMAT              text|json (default: text)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  SCHOOL_SITE_URL                Public base URL (default: http://localhost:8080)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  SCHOOL_SUBMIT_WEBHOOK_URL      Deliver forms to this endpoint (optional)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  SCHOOL_SUBMIT_WEBHOOK_SECRET   HMAC key for deliveries (required with URL)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  SCHOOL_SUBMIT_LATENCY_MS       Simulated delivery latency (default: 800)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  SCHOOL_NOTICE_DISPLAY_MS       Success/error message lifetime (default: 5000)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  SCHOOL_FORM_RATE_PER_MIN       Form submissions per IP per minute (default: 10)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  SCHOOL_FORM_SESSION_IDLE_MIN   Evict idle form state after (default: 30)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  SCHOOL_ADMIN_IDLE_MIN          Evict idle admin workspaces after (default: 60)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  SCHOOL_REDIS_URL               Shared render cache (optional, memory otherwise)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  SCHOOL_RENDER_CACHE_TTL_SEC    Rendered article lifetime (default: 300)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  SCHOOL_SEED_DEMO               Load demo articles (default: true)\n")
	}

	flag.Parse()

	info := version.Info{Version: appVersion, GitCommit: appGitCommit, BuildTime: appBuildTime}

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}
	if *showVersion {
		_, _ = fmt.Printf("schoolsite %s\n", info)
		os.Exit(0)
	}

	if err := run(info); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run(info version.Info) error {
	// Load .env files if present (development)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	notices := logging.NewNoticeLog(logging.DefaultNoticeCapacity)
	logger := logging.Setup(os.Stdout, cfg.LogLevel, cfg.LogFormat, notices)
	slog.SetDefault(logger)
	slog.Info("starting schoolsite", "version", info.Version, "env", cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	articles := store.New(store.WithLogger(logger))
	if cfg.SeedDemo {
		store.SeedDemo(articles)
	}

	transport, err := formTransport(ctx, cfg, logger)
	if err != nil {
		return err
	}
	forms := submission.NewRegistry(transport, logger,
		submission.WithDisplayDuration(cfg.NoticeDisplay()))

	bulk := service.NewBulkExecutor(service.LogNotifier{Logger: logger}, logger)
	workspaces := service.NewWorkspaces(articles, bulk, logger)

	formLimiter := middleware.NewPerMinuteLimiter(cfg.FormRatePerMin)

	jobs := scheduler.New(logger)
	idle := cfg.FormSessionIdle()
	if err := jobs.Add("form-sessions", "Evict idle form state", sweepSchedule, func(context.Context) {
		forms.Sweep(idle)
	}); err != nil {
		return err
	}
	adminIdle := cfg.AdminIdle()
	if err := jobs.Add("workspaces", "Evict idle admin workspaces", sweepSchedule, func(context.Context) {
		workspaces.Sweep(adminIdle)
	}); err != nil {
		return err
	}
	if err := jobs.Add("rate-limiter", "Reset oversized limiter cache", limiterSchedule, func(context.Context) {
		formLimiter.Prune(middleware.DefaultLimiterCacheSize)
	}); err != nil {
		return err
	}
	jobs.Start(ctx)
	defer jobs.Stop()

	pages := cache.New(ctx, cache.Config{
		RedisURL:        cfg.RedisURL,
		Prefix:          "school:",
		DefaultTTL:      cfg.RenderCacheTTL(),
		MaxSize:         cfg.RenderCacheMaxSize,
		CleanupInterval: time.Minute,
	}, logger)
	defer func() {
		if err := pages.Close(); err != nil {
			slog.Warn("closing render cache", "error", err)
		}
	}()

	h := handler.New(handler.Deps{
		Store:      articles,
		Workspaces: workspaces,
		Forms:      forms,
		Sessions:   session.New(cfg.IsDevelopment()),
		Notices:    notices,
		Logger:     logger,
		Version:    info,
		Cache:      pages,
		Jobs:       jobs,

		SiteURL:          cfg.SiteURL,
		HideFromCrawlers: cfg.IsDevelopment(),
	})
	router := handler.NewRouter(h, handler.RouterConfig{
		IsDevelopment:  cfg.IsDevelopment(),
		CSRFKey:        []byte(cfg.SessionSecret),
		RequestTimeout: 60 * time.Second,
	}, formLimiter)

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server: %w", err)
		}
	case <-ctx.Done():
	}

	slog.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}

// formTransport picks the form delivery: a signed webhook when an endpoint
// is configured, otherwise the simulated transport.
func formTransport(ctx context.Context, cfg *config.Config, logger *slog.Logger) (submission.Transport, error) {
	if !cfg.UseWebhook() {
		slog.Info("form delivery simulated", "latency", cfg.SubmitLatency())
		return submission.Static(webhook.Simulated(cfg.SubmitLatency())), nil
	}

	if err := util.ValidateEndpointURL(ctx, cfg.SubmitWebhookURL); err != nil {
		return nil, fmt.Errorf("invalid SCHOOL_SUBMIT_WEBHOOK_URL: %w", err)
	}
	d := webhook.NewDeliverer(cfg.SubmitWebhookURL, cfg.SubmitWebhookSecret, nil, logger)
	slog.Info("form delivery via webhook")
	return d.For, nil
}
