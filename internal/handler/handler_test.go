// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/olegiv/ocms-school/internal/cache"
	"github.com/olegiv/ocms-school/internal/logging"
	"github.com/olegiv/ocms-school/internal/middleware"
	"github.com/olegiv/ocms-school/internal/scheduler"
	"github.com/olegiv/ocms-school/internal/service"
	"github.com/olegiv/ocms-school/internal/session"
	"github.com/olegiv/ocms-school/internal/store"
	"github.com/olegiv/ocms-school/internal/submission"
)

// fakeTransport records payloads and answers with a configurable result.
type fakeTransport struct {
	mu       sync.Mutex
	payloads []map[string]string
	result   submission.Result
	err      error
}

func (f *fakeTransport) submit(_ context.Context, payload map[string]string) (submission.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.payloads = append(f.payloads, payload)
	return f.result, f.err
}

func (f *fakeTransport) set(res submission.Result, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.result, f.err = res, err
}

func (f *fakeTransport) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.payloads)
}

func (f *fakeTransport) last() map[string]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.payloads) == 0 {
		return nil
	}
	return f.payloads[len(f.payloads)-1]
}

type testEnv struct {
	srv       *httptest.Server
	client    *http.Client
	store     *store.ArticleStore
	notices   *logging.NoticeLog
	transport *fakeTransport
	pages     *cache.MemoryCache
}

type envOption func(*envConfig)

type envConfig struct {
	ratePerMin int
}

func withFormRate(n int) envOption {
	return func(c *envConfig) { c.ratePerMin = n }
}

func newTestEnv(t *testing.T, opts ...envOption) *testEnv {
	t.Helper()
	cfg := envConfig{ratePerMin: 1000}
	for _, opt := range opts {
		opt(&cfg)
	}

	notices := logging.NewNoticeLog(10)
	logger := logging.Setup(io.Discard, "error", "text", notices)
	st := store.New(store.WithLogger(logger))
	transport := &fakeTransport{result: submission.Result{OK: true}}

	forms := submission.NewRegistry(submission.Static(transport.submit), logger,
		submission.WithDisplayDuration(time.Minute))
	workspaces := service.NewWorkspaces(st,
		service.NewBulkExecutor(service.LogNotifier{Logger: logger}, logger), logger)

	jobs := scheduler.New(logger)
	require.NoError(t, jobs.Add("form-sessions", "Evict idle form state", "@hourly", func(context.Context) {
		forms.Sweep(0)
	}))

	pages := cache.NewMemoryCache(cache.MemoryCacheOptions{DefaultTTL: time.Minute})
	t.Cleanup(func() { _ = pages.Close() })

	h := New(Deps{
		Store:      st,
		Workspaces: workspaces,
		Forms:      forms,
		Sessions:   session.New(true),
		Notices:    notices,
		Logger:     logger,
		Cache:      pages,
		Jobs:       jobs,
		SiteURL:    "https://school.example",
	})
	router := NewRouter(h, RouterConfig{
		IsDevelopment: true,
		CSRFKey:       []byte("12345678901234567890123456789012"),
	}, middleware.NewPerMinuteLimiter(cfg.ratePerMin))

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return &testEnv{
		srv:       srv,
		client:    newClient(t),
		store:     st,
		notices:   notices,
		transport: transport,
		pages:     pages,
	}
}

// newClient returns a client with its own cookie jar, i.e. a new visitor.
func newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{Jar: jar}
}

// do sends a JSON body (when body is not nil) and decodes a JSON response.
func (e *testEnv) do(t *testing.T, method, path string, body any) (int, map[string]any) {
	t.Helper()
	return e.doAs(t, e.client, method, path, body)
}

func (e *testEnv) doAs(t *testing.T, client *http.Client, method, path string, body any) (int, map[string]any) {
	t.Helper()
	var rdr io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		rdr = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, e.srv.URL+path, rdr)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return e.send(t, client, req)
}

// postForm sends urlencoded values.
func (e *testEnv) postForm(t *testing.T, path string, values url.Values) (int, map[string]any) {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, e.srv.URL+path, strings.NewReader(values.Encode()))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return e.send(t, e.client, req)
}

func (e *testEnv) send(t *testing.T, client *http.Client, req *http.Request) (int, map[string]any) {
	t.Helper()
	resp, err := client.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var data map[string]any
	if len(bytes.TrimSpace(raw)) > 0 {
		require.NoError(t, json.Unmarshal(raw, &data), "body: %s", raw)
	}
	return resp.StatusCode, data
}

// obj and list unwrap decoded JSON values.
func obj(t *testing.T, v any) map[string]any {
	t.Helper()
	m, ok := v.(map[string]any)
	require.True(t, ok, "expected object, got %T", v)
	return m
}

func list(t *testing.T, v any) []any {
	t.Helper()
	if v == nil {
		return nil
	}
	l, ok := v.([]any)
	require.True(t, ok, "expected array, got %T", v)
	return l
}

func ids(t *testing.T, articles any) []string {
	t.Helper()
	var out []string
	for _, a := range list(t, articles) {
		out = append(out, obj(t, a)["id"].(string))
	}
	return out
}
