// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/olegiv/ocms-school/internal/model"
	"github.com/olegiv/ocms-school/internal/selection"
	"github.com/olegiv/ocms-school/internal/store"
)

// Workspace errors
var (
	ErrConfirmationRequired = errors.New("destructive operation requires confirmation")
	ErrUnknownCommand       = errors.New("unknown command")
)

// Command is an admin action dispatched to a Workspace.
type Command interface {
	command()
}

// SetQuery changes the free-text filter.
type SetQuery struct{ Query string }

// SetStatusFilter changes the status predicate.
type SetStatusFilter struct{ Status StatusFilter }

// ToggleSelect selects or deselects one visible article.
type ToggleSelect struct{ ID string }

// SelectAll toggles between all visible articles and none.
type SelectAll struct{}

// ClearSelection deselects everything.
type ClearSelection struct{}

// CreateArticle adds a new article.
type CreateArticle struct{ Article model.Article }

// UpdateArticle patches an existing article.
type UpdateArticle struct {
	ID    string
	Patch model.ArticlePatch
}

// DeleteArticle removes one article.
type DeleteArticle struct{ ID string }

// SetArticleStatus changes the status of one article.
type SetArticleStatus struct {
	ID     string
	Status model.Status
}

// RunBulk applies Op to the selection. Destructive operations need Confirmed.
type RunBulk struct {
	Op        BulkOp
	Confirmed bool
}

func (SetQuery) command()         {}
func (SetStatusFilter) command()  {}
func (ToggleSelect) command()     {}
func (SelectAll) command()        {}
func (ClearSelection) command()   {}
func (CreateArticle) command()    {}
func (UpdateArticle) command()    {}
func (DeleteArticle) command()    {}
func (SetArticleStatus) command() {}
func (RunBulk) command()          {}

// View is what the admin list renders.
type View struct {
	Filter   FilterState     `json:"filter"`
	Articles []model.Article `json:"articles"`
	Selected []string        `json:"selected"`
	Total    int             `json:"total"`
}

// Outcome is the result of a dispatched command.
type Outcome struct {
	View    View           `json:"view"`
	Article *model.Article `json:"article,omitempty"`
	Bulk    *BulkResult    `json:"bulk,omitempty"`
}

// Workspace is one admin's view of the shared article store: a filter,
// a selection and the derived visible list. Commands are applied in order.
type Workspace struct {
	mu     sync.Mutex
	filter FilterState

	store     *store.ArticleStore
	search    *SearchEngine
	selection *selection.Set
	bulk      *BulkExecutor
	logger    *slog.Logger

	unwatch func()
}

// NewWorkspace creates a Workspace over st. Removals from st, by this or
// any other workspace, are pruned from the selection. Call Close to stop
// watching the store.
func NewWorkspace(st *store.ArticleStore, bulk *BulkExecutor, logger *slog.Logger) *Workspace {
	if logger == nil {
		logger = slog.Default()
	}
	if bulk == nil {
		bulk = NewBulkExecutor(nil, logger)
	}
	w := &Workspace{
		filter:    FilterState{Status: StatusAll},
		store:     st,
		search:    NewSearchEngine(),
		selection: selection.New(),
		bulk:      bulk,
		logger:    logger,
	}
	sel := w.selection
	w.unwatch = st.Watch(func(ev store.Event) {
		if ev.Type == store.EventRemoved {
			sel.Remove(ev.ArticleID)
		}
	})
	return w
}

// Close detaches the workspace from the store.
func (w *Workspace) Close() {
	w.unwatch()
}

// Selection returns the workspace selection set.
func (w *Workspace) Selection() *selection.Set {
	return w.selection
}

// View returns the current visible list and selection.
func (w *Workspace) View() View {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.viewLocked()
}

// Visible returns the articles visible under the current filter.
func (w *Workspace) Visible() []model.Article {
	w.mu.Lock()
	defer w.mu.Unlock()
	return slices.Clone(w.search.Visible(w.store, w.filter))
}

// Dispatch applies cmd and returns the resulting view. Store errors such as
// store.ErrNotFound are logged and returned wrapped; the workspace state is
// left consistent either way.
func (w *Workspace) Dispatch(ctx context.Context, cmd Command) (Outcome, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	var out Outcome
	var err error

	switch c := cmd.(type) {
	case SetQuery:
		w.filter.Query = c.Query
	case SetStatusFilter:
		w.filter.Status = c.Status
	case ToggleSelect:
		if w.isVisibleLocked(c.ID) {
			w.selection.Toggle(c.ID)
		} else {
			w.logger.DebugContext(ctx, "ignoring selection of hidden article", "id", c.ID)
		}
	case SelectAll:
		w.selection.SelectAll(IDs(w.search.Visible(w.store, w.filter)))
	case ClearSelection:
		w.selection.Clear()
	case CreateArticle:
		a := w.store.Create(c.Article)
		w.logger.InfoContext(ctx, "article created", "id", a.ID, "slug", a.Slug)
		out.Article = &a
	case UpdateArticle:
		var a model.Article
		a, err = w.store.Update(c.ID, c.Patch)
		if err == nil {
			out.Article = &a
		}
		err = w.storeErr(ctx, "update article", c.ID, err)
	case DeleteArticle:
		err = w.storeErr(ctx, "delete article", c.ID, w.store.Remove(c.ID))
	case SetArticleStatus:
		err = w.store.SetStatus(c.ID, c.Status)
		if err == nil {
			a, _ := w.store.Get(c.ID)
			out.Article = &a
		}
		err = w.storeErr(ctx, "set article status", c.ID, err)
	case RunBulk:
		if _, perr := ParseBulkOp(string(c.Op)); perr != nil {
			err = perr
			break
		}
		if c.Op.Destructive() && !c.Confirmed {
			err = fmt.Errorf("%s: %w", c.Op, ErrConfirmationRequired)
			break
		}
		// Hidden ids must never be acted on.
		w.selection.Reconcile(IDs(w.search.Visible(w.store, w.filter)))
		var res BulkResult
		res, err = w.bulk.Execute(ctx, c.Op, w.selection, w.store)
		if err == nil {
			out.Bulk = &res
		}
	default:
		err = fmt.Errorf("%w: %T", ErrUnknownCommand, cmd)
	}

	out.View = w.viewLocked()
	return out, err
}

func (w *Workspace) storeErr(ctx context.Context, action, id string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, store.ErrNotFound) {
		w.logger.WarnContext(ctx, action+" skipped: article not found", "id", id)
	}
	return fmt.Errorf("%s %s: %w", action, id, err)
}

func (w *Workspace) isVisibleLocked(id string) bool {
	for _, a := range w.search.Visible(w.store, w.filter) {
		if a.ID == id {
			return true
		}
	}
	return false
}

// viewLocked derives the visible list and reconciles the selection with it.
func (w *Workspace) viewLocked() View {
	visible := w.search.Visible(w.store, w.filter)
	if dropped := w.selection.Reconcile(IDs(visible)); dropped > 0 {
		w.logger.Debug("dropped hidden articles from selection", "count", dropped)
	}
	return View{
		Filter:   w.filter.normalized(),
		Articles: slices.Clone(visible),
		Selected: w.selection.IDs(),
		Total:    w.store.Len(),
	}
}

// Workspaces hands out one Workspace per admin session. Workspaces that
// go unused are closed by Sweep.
type Workspaces struct {
	mu     sync.Mutex
	byKey  map[string]*workspaceEntry
	store  *store.ArticleStore
	bulk   *BulkExecutor
	logger *slog.Logger
	now    func() time.Time
}

type workspaceEntry struct {
	ws       *Workspace
	lastUsed time.Time
}

// NewWorkspaces creates an empty workspace registry over st.
func NewWorkspaces(st *store.ArticleStore, bulk *BulkExecutor, logger *slog.Logger) *Workspaces {
	if logger == nil {
		logger = slog.Default()
	}
	return &Workspaces{
		byKey:  make(map[string]*workspaceEntry),
		store:  st,
		bulk:   bulk,
		logger: logger,
		now:    time.Now,
	}
}

// Get returns the workspace for key, creating it on first use.
func (r *Workspaces) Get(key string) *Workspace {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	if e, ok := r.byKey[key]; ok {
		e.lastUsed = now
		return e.ws
	}
	w := NewWorkspace(r.store, r.bulk, r.logger)
	r.byKey[key] = &workspaceEntry{ws: w, lastUsed: now}
	return w
}

// Drop closes and forgets the workspace for key.
func (r *Workspaces) Drop(key string) {
	r.mu.Lock()
	e, ok := r.byKey[key]
	delete(r.byKey, key)
	r.mu.Unlock()

	if ok {
		e.ws.Close()
	}
}

// Sweep closes workspaces that have not been used for maxIdle and stops
// them watching the store. It returns the number evicted.
func (r *Workspaces) Sweep(maxIdle time.Duration) int {
	r.mu.Lock()
	cutoff := r.now().Add(-maxIdle)
	var stale []*Workspace
	for key, e := range r.byKey {
		if !e.lastUsed.After(cutoff) {
			stale = append(stale, e.ws)
			delete(r.byKey, key)
		}
	}
	r.mu.Unlock()

	for _, w := range stale {
		w.Close()
	}
	if len(stale) > 0 {
		r.logger.Info("evicted idle admin workspaces", "count", len(stale))
	}
	return len(stale)
}

// Len returns the number of live workspaces.
func (r *Workspaces) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byKey)
}
