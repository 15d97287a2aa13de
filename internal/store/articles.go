// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package store holds the in-memory article collection shared by the admin
// dashboard and the public blog. Entity state lives for the lifetime of the
// process; nothing is persisted.
package store

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/olegiv/ocms-school/internal/model"
	"github.com/olegiv/ocms-school/internal/util"
)

// Error represents an error type for store operations.
type Error string

func (e Error) Error() string {
	return string(e)
}

const (
	// ErrNotFound indicates no article has the requested identifier.
	ErrNotFound Error = "article not found"

	// ErrInvalidStatus indicates a status outside draft/published/archived.
	ErrInvalidStatus Error = "invalid article status"
)

// DateLayout is the format of Article.CreatedAt.
const DateLayout = "2006-01-02"

// EventType names a store mutation.
type EventType string

// Store events
const (
	EventCreated       EventType = "article.created"
	EventUpdated       EventType = "article.updated"
	EventRemoved       EventType = "article.removed"
	EventStatusChanged EventType = "article.status_changed"
)

// Event describes a completed mutation.
type Event struct {
	Type      EventType
	ArticleID string
	Status    model.Status
	Version   uint64
}

type watcher struct {
	id int
	fn func(Event)
}

// ArticleStore is a goroutine-safe, ordered, in-memory article collection.
// Iteration order is insertion order. Every mutation bumps Version.
type ArticleStore struct {
	mu       sync.RWMutex
	articles []model.Article
	index    map[string]int
	version  uint64

	watchMu     sync.Mutex
	watchers    []watcher
	nextWatcher int

	now    func() time.Time
	newID  func() string
	logger *slog.Logger
}

// Option configures an ArticleStore.
type Option func(*ArticleStore)

// WithClock overrides the clock used for default creation dates.
func WithClock(clock func() time.Time) Option {
	return func(s *ArticleStore) {
		if clock != nil {
			s.now = clock
		}
	}
}

// WithIDGenerator overrides identifier generation (used in tests).
func WithIDGenerator(gen func() string) Option {
	return func(s *ArticleStore) {
		if gen != nil {
			s.newID = gen
		}
	}
}

// WithLogger sets the logger used for mutation logs.
func WithLogger(logger *slog.Logger) Option {
	return func(s *ArticleStore) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates an empty ArticleStore.
func New(opts ...Option) *ArticleStore {
	s := &ArticleStore{
		index:  make(map[string]int),
		now:    time.Now,
		newID:  uuid.NewString,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create adds an article and returns the stored copy. The store assigns a
// fresh identifier and slug, defaults the status to draft and the creation
// date to today, normalizes tags and derives the read time.
func (s *ArticleStore) Create(a model.Article) model.Article {
	s.mu.Lock()
	a = a.Clone()
	a.ID = s.freshIDLocked()
	a.Slug = util.UniqueSlug(a.Title, s.slugTakenLocked)
	if _, ok := model.ParseStatus(string(a.Status)); !ok {
		a.Status = model.StatusDraft
	}
	if a.CreatedAt == "" {
		a.CreatedAt = s.now().Format(DateLayout)
	}
	normalize(&a)

	s.articles = append(s.articles, a)
	s.index[a.ID] = len(s.articles) - 1
	s.version++
	ev := Event{Type: EventCreated, ArticleID: a.ID, Status: a.Status, Version: s.version}
	out := a.Clone()
	s.mu.Unlock()

	s.logger.Debug("article created", "id", a.ID, "slug", a.Slug, "status", a.Status)
	s.notify(ev)
	return out
}

// Update applies patch to the article with the given id. Status is never
// changed by Update; use SetStatus.
func (s *ArticleStore) Update(id string, patch model.ArticlePatch) (model.Article, error) {
	s.mu.Lock()
	i, ok := s.index[id]
	if !ok {
		s.mu.Unlock()
		return model.Article{}, ErrNotFound
	}
	a := patch.Apply(s.articles[i])
	normalize(&a)
	s.articles[i] = a
	s.version++
	ev := Event{Type: EventUpdated, ArticleID: id, Status: a.Status, Version: s.version}
	out := a.Clone()
	s.mu.Unlock()

	s.notify(ev)
	return out, nil
}

// Remove deletes the article with the given id.
func (s *ArticleStore) Remove(id string) error {
	s.mu.Lock()
	i, ok := s.index[id]
	if !ok {
		s.mu.Unlock()
		return ErrNotFound
	}
	status := s.articles[i].Status
	s.articles = append(s.articles[:i], s.articles[i+1:]...)
	delete(s.index, id)
	for j := i; j < len(s.articles); j++ {
		s.index[s.articles[j].ID] = j
	}
	s.version++
	ev := Event{Type: EventRemoved, ArticleID: id, Status: status, Version: s.version}
	s.mu.Unlock()

	s.logger.Debug("article removed", "id", id)
	s.notify(ev)
	return nil
}

// SetStatus changes the status of the article with the given id.
func (s *ArticleStore) SetStatus(id string, status model.Status) error {
	if _, ok := model.ParseStatus(string(status)); !ok {
		return ErrInvalidStatus
	}

	s.mu.Lock()
	i, ok := s.index[id]
	if !ok {
		s.mu.Unlock()
		return ErrNotFound
	}
	s.articles[i].Status = status
	s.version++
	ev := Event{Type: EventStatusChanged, ArticleID: id, Status: status, Version: s.version}
	s.mu.Unlock()

	s.notify(ev)
	return nil
}

// Get returns the article with the given id.
func (s *ArticleStore) Get(id string) (model.Article, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.index[id]
	if !ok {
		return model.Article{}, ErrNotFound
	}
	return s.articles[i].Clone(), nil
}

// GetBySlug returns the article with the given slug.
func (s *ArticleStore) GetBySlug(slug string) (model.Article, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, a := range s.articles {
		if a.Slug == slug {
			return a.Clone(), nil
		}
	}
	return model.Article{}, ErrNotFound
}

// List returns a copy of all articles in store order.
func (s *ArticleStore) List() []model.Article {
	_, list := s.Snapshot()
	return list
}

// Snapshot returns the current version together with a copy of all articles,
// read under one lock so the pair is consistent.
func (s *ArticleStore) Snapshot() (uint64, []model.Article) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]model.Article, len(s.articles))
	for i, a := range s.articles {
		list[i] = a.Clone()
	}
	return s.version, list
}

// Version returns the mutation counter.
func (s *ArticleStore) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Len returns the number of stored articles.
func (s *ArticleStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.articles)
}

// Has reports whether an article with the given id exists.
func (s *ArticleStore) Has(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.index[id]
	return ok
}

// Watch registers fn to be called after every mutation, in registration
// order, outside the store lock. The returned function unregisters fn.
func (s *ArticleStore) Watch(fn func(Event)) (cancel func()) {
	s.watchMu.Lock()
	defer s.watchMu.Unlock()

	s.nextWatcher++
	id := s.nextWatcher
	s.watchers = append(s.watchers, watcher{id: id, fn: fn})

	return func() {
		s.watchMu.Lock()
		defer s.watchMu.Unlock()
		for i, w := range s.watchers {
			if w.id == id {
				s.watchers = append(s.watchers[:i:i], s.watchers[i+1:]...)
				return
			}
		}
	}
}

func (s *ArticleStore) notify(ev Event) {
	s.watchMu.Lock()
	ws := make([]watcher, len(s.watchers))
	copy(ws, s.watchers)
	s.watchMu.Unlock()

	for _, w := range ws {
		w.fn(ev)
	}
}

func (s *ArticleStore) freshIDLocked() string {
	for {
		id := s.newID()
		if _, taken := s.index[id]; !taken && id != "" {
			return id
		}
	}
}

func (s *ArticleStore) slugTakenLocked(slug string) bool {
	for _, a := range s.articles {
		if a.Slug == slug {
			return true
		}
	}
	return false
}

// normalize recomputes derived fields.
func normalize(a *model.Article) {
	a.Tags = model.NormalizeTags(a.Tags)
	a.ReadMinutes = model.EstimateReadMinutes(a.Content)
}
