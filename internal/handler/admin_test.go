// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/ocms-school/internal/model"
	"github.com/olegiv/ocms-school/internal/store"
	"github.com/olegiv/ocms-school/internal/transfer"
)

func articleBody(title string) map[string]string {
	return map[string]string{
		"title":    title,
		"category": "Academics",
		"excerpt":  "A short summary.",
		"author":   "Head of Science",
		"tags":     "stem, Robotics, stem",
		"content":  "First paragraph is the lead.\n\n## Results\n\nWe won.",
		"featured": "on",
	}
}

func createArticle(t *testing.T, e *testEnv, title string) map[string]any {
	t.Helper()
	status, body := e.do(t, http.MethodPost, "/admin/articles", articleBody(title))
	require.Equal(t, http.StatusOK, status, "body: %v", body)
	return obj(t, body["article"])
}

func TestCreateArticle(t *testing.T) {
	e := newTestEnv(t)

	a := createArticle(t, e, "Science Fair Winners")
	assert.Equal(t, "science-fair-winners", a["slug"])
	assert.Equal(t, string(model.StatusDraft), a["status"])
	assert.Equal(t, true, a["featured"])
	assert.Equal(t, []any{"Robotics", "stem"}, a["tags"])

	content := list(t, a["content"])
	require.Len(t, content, 3)
	assert.Equal(t, string(model.BlockLead), obj(t, content[0])["type"])
	assert.Equal(t, string(model.BlockHeading), obj(t, content[1])["type"])
	assert.Equal(t, 1, e.store.Len())
}

func TestCreateArticle_Invalid(t *testing.T) {
	e := newTestEnv(t)
	body := articleBody("Hi")
	body["category"] = "Chess"

	status, resp := e.do(t, http.MethodPost, "/admin/articles", body)
	require.Equal(t, http.StatusUnprocessableEntity, status)
	errs := obj(t, resp["errors"])
	assert.Contains(t, errs, "title")
	assert.Contains(t, errs, "category")
	assert.Equal(t, "title", resp["focus_field"])
	assert.Equal(t, 0, e.store.Len())
}

func TestCreateArticle_ReentrantIsNoop(t *testing.T) {
	e := newTestEnv(t)
	status, _ := e.do(t, http.MethodGet, "/admin/articles", nil)
	require.Equal(t, http.StatusOK, status)

	entered := make(chan struct{})
	release := make(chan struct{})
	var enterOnce sync.Once
	unblock := sync.OnceFunc(func() { close(release) })
	t.Cleanup(unblock)
	unwatch := e.store.Watch(func(ev store.Event) {
		if ev.Type == store.EventCreated {
			enterOnce.Do(func() { close(entered) })
			<-release
		}
	})
	t.Cleanup(unwatch)

	raw, err := json.Marshal(articleBody("Spring Concert"))
	require.NoError(t, err)
	firstStatus := make(chan int, 1)
	go func() {
		req, err := http.NewRequest(http.MethodPost, e.srv.URL+"/admin/articles", bytes.NewReader(raw))
		if err != nil {
			firstStatus <- 0
			return
		}
		req.Header.Set("Content-Type", "application/json")
		resp, err := e.client.Do(req)
		if err != nil {
			firstStatus <- 0
			return
		}
		_ = resp.Body.Close()
		firstStatus <- resp.StatusCode
	}()

	select {
	case <-entered:
	case <-time.After(5 * time.Second):
		t.Fatal("first create never reached the store")
	}

	status, body := e.do(t, http.MethodPost, "/admin/articles", articleBody("Spring Concert"))
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, false, body["success"])

	unblock()
	assert.Equal(t, http.StatusOK, <-firstStatus)
	assert.Equal(t, 1, e.store.Len())

	// Once settled, the form accepts a new article.
	createArticle(t, e, "Summer Fete")
	assert.Equal(t, 2, e.store.Len())
}

func TestCreateArticle_Lifecycle(t *testing.T) {
	e := newTestEnv(t)

	status, body := e.do(t, http.MethodPost, "/admin/articles", articleBody("Open Day"))
	require.Equal(t, http.StatusOK, status)
	snap := obj(t, body["submission"])
	assert.Equal(t, "success", snap["state"])
	assert.Equal(t, "Article saved.", body["message"])
	assert.Equal(t, obj(t, body["article"])["id"], snap["ref"])
	assert.Len(t, list(t, obj(t, body["view"])["articles"]), 1)
}

func TestGetUpdateDeleteArticle(t *testing.T) {
	e := newTestEnv(t)
	id := createArticle(t, e, "Original Title")["id"].(string)

	status, body := e.do(t, http.MethodGet, "/admin/articles/"+id, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Original Title", obj(t, body["values"])["title"])

	update := articleBody("Updated Title")
	update["featured"] = ""
	status, body = e.do(t, http.MethodPut, "/admin/articles/"+id, update)
	require.Equal(t, http.StatusOK, status)
	a := obj(t, body["article"])
	assert.Equal(t, "Updated Title", a["title"])
	assert.Equal(t, false, a["featured"])
	assert.Equal(t, "original-title", a["slug"], "slug is stable across edits")

	status, _ = e.do(t, http.MethodDelete, "/admin/articles/"+id, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 0, e.store.Len())

	status, _ = e.do(t, http.MethodDelete, "/admin/articles/"+id, nil)
	assert.Equal(t, http.StatusNotFound, status)
	status, _ = e.do(t, http.MethodGet, "/admin/articles/"+id, nil)
	assert.Equal(t, http.StatusNotFound, status)
	status, _ = e.do(t, http.MethodPut, "/admin/articles/"+id, update)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestSetArticleStatus(t *testing.T) {
	e := newTestEnv(t)
	id := createArticle(t, e, "Status Article")["id"].(string)

	status, body := e.do(t, http.MethodPost, "/admin/articles/"+id+"/status", map[string]string{"status": "published"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "published", obj(t, body["article"])["status"])

	status, _ = e.do(t, http.MethodPost, "/admin/articles/"+id+"/status", map[string]string{"status": "deleted"})
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = e.do(t, http.MethodPost, "/admin/articles/missing/status", map[string]string{"status": "archived"})
	assert.Equal(t, http.StatusNotFound, status)
}

func TestListArticles_Filter(t *testing.T) {
	e := newTestEnv(t)
	draft := e.store.Create(model.Article{Title: "Draft Notice", Status: model.StatusDraft})
	e.store.Create(model.Article{Title: "Published Notice", Status: model.StatusPublished})

	_, body := e.do(t, http.MethodGet, "/admin/articles", nil)
	view := obj(t, body["view"])
	assert.Len(t, list(t, view["articles"]), 2)
	assert.EqualValues(t, 2, view["total"])

	_, body = e.do(t, http.MethodGet, "/admin/articles?status=draft&q=notice", nil)
	assert.Equal(t, []string{draft.ID}, ids(t, obj(t, body["view"])["articles"]))

	// The filter is remembered for the visitor.
	_, body = e.do(t, http.MethodGet, "/admin/articles", nil)
	assert.Equal(t, []string{draft.ID}, ids(t, obj(t, body["view"])["articles"]))

	// Another visitor has its own workspace.
	_, body = e.doAs(t, newClient(t), http.MethodGet, "/admin/articles", nil)
	assert.Len(t, list(t, obj(t, body["view"])["articles"]), 2)
}

func TestSelectionAndBulk(t *testing.T) {
	e := newTestEnv(t)
	a := e.store.Create(model.Article{Title: "A", Status: model.StatusDraft})
	b := e.store.Create(model.Article{Title: "B", Status: model.StatusPublished})
	c := e.store.Create(model.Article{Title: "C", Status: model.StatusDraft})

	e.do(t, http.MethodGet, "/admin/articles?status=draft", nil)

	_, body := e.do(t, http.MethodPost, "/admin/selection/toggle", map[string]string{"id": b.ID})
	assert.Empty(t, obj(t, body["view"])["selected"], "hidden articles cannot be selected")

	_, body = e.do(t, http.MethodPost, "/admin/selection/all", nil)
	assert.Equal(t, []any{a.ID, c.ID}, obj(t, body["view"])["selected"])

	status, body := e.do(t, http.MethodPost, "/admin/bulk", map[string]any{"op": "delete"})
	require.Equal(t, http.StatusConflict, status)
	assert.Equal(t, []any{a.ID, c.ID}, obj(t, body["view"])["selected"], "unconfirmed delete keeps the selection")

	status, body = e.do(t, http.MethodPost, "/admin/bulk", map[string]any{"op": "delete", "confirmed": true})
	require.Equal(t, http.StatusOK, status)
	bulk := obj(t, body["bulk"])
	assert.EqualValues(t, 2, bulk["affected"])
	assert.Equal(t, "2 articles deleted", bulk["message"])
	assert.Empty(t, obj(t, body["view"])["selected"])
	assert.Equal(t, 1, e.store.Len())

	_, body = e.do(t, http.MethodGet, "/admin/notices", nil)
	notices := list(t, body["notices"])
	require.NotEmpty(t, notices)
	assert.Equal(t, "2 articles deleted", obj(t, notices[0])["message"])
}

func TestBulk_UnknownOp(t *testing.T) {
	e := newTestEnv(t)
	status, _ := e.do(t, http.MethodPost, "/admin/bulk", map[string]any{"op": "feature"})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestClearSelection(t *testing.T) {
	e := newTestEnv(t)
	a := e.store.Create(model.Article{Title: "A"})
	e.do(t, http.MethodPost, "/admin/selection/toggle", map[string]string{"id": a.ID})

	status, body := e.do(t, http.MethodDelete, "/admin/selection", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, obj(t, body["view"])["selected"])
}

func TestNotices_InvalidLimit(t *testing.T) {
	e := newTestEnv(t)
	status, _ := e.do(t, http.MethodGet, "/admin/notices?limit=abc", nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestExportImport(t *testing.T) {
	e := newTestEnv(t)
	e.store.Create(model.Article{Title: "Exported One", Category: model.CategoryArts, Status: model.StatusPublished})
	e.store.Create(model.Article{Title: "Exported Two", Category: model.CategorySports})

	resp, err := e.client.Get(e.srv.URL + "/admin/export")
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "articles-export-")

	target := newTestEnv(t)
	req, err := http.NewRequest(http.MethodPost, target.srv.URL+"/admin/import", strings.NewReader(string(raw)))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	status, body := target.send(t, target.client, req)
	require.Equal(t, http.StatusOK, status, "body: %v", body)
	assert.EqualValues(t, 2, body["imported"])

	imported := target.store.List()
	require.Len(t, imported, 2)
	assert.Equal(t, "Exported One", imported[0].Title)
	assert.Equal(t, model.StatusPublished, imported[0].Status)
}

func TestExport_VisibleOnly(t *testing.T) {
	e := newTestEnv(t)
	e.store.Create(model.Article{Title: "Draft One", Status: model.StatusDraft})
	e.store.Create(model.Article{Title: "Draft Two", Status: model.StatusDraft})
	e.store.Create(model.Article{Title: "Live One", Status: model.StatusPublished})

	_, body := e.do(t, http.MethodGet, "/admin/articles?status=draft", nil)
	require.Len(t, list(t, obj(t, body["view"])["articles"]), 2)

	resp, err := e.client.Get(e.srv.URL + "/admin/export")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var doc transfer.ExportData
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&doc))
	assert.Equal(t, 2, doc.Count)
	require.Len(t, doc.Articles, 2)
	for _, a := range doc.Articles {
		assert.Equal(t, model.StatusDraft, a.Status)
	}
}

func TestImport_Invalid(t *testing.T) {
	e := newTestEnv(t)
	req, err := http.NewRequest(http.MethodPost, e.srv.URL+"/admin/import", strings.NewReader(`{"version":"9.9","articles":[]}`))
	require.NoError(t, err)
	status, _ := e.send(t, e.client, req)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestJobs(t *testing.T) {
	e := newTestEnv(t)

	status, body := e.do(t, http.MethodGet, "/admin/jobs", nil)
	require.Equal(t, http.StatusOK, status)
	jobs := list(t, body["jobs"])
	require.Len(t, jobs, 1)
	assert.Equal(t, "form-sessions", obj(t, jobs[0])["name"])

	status, _ = e.do(t, http.MethodGet, "/forms/contact", nil)
	require.Equal(t, http.StatusOK, status)
	_, health := e.do(t, http.MethodGet, "/health", nil)
	assert.EqualValues(t, 1, health["form_sessions"])

	status, body = e.do(t, http.MethodPost, "/admin/jobs/form-sessions/run", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["success"])

	_, health = e.do(t, http.MethodGet, "/health", nil)
	assert.EqualValues(t, 0, health["form_sessions"])

	status, _ = e.do(t, http.MethodPost, "/admin/jobs/nope/run", nil)
	assert.Equal(t, http.StatusNotFound, status)
}
