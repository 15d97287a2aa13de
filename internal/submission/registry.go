// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package submission

import (
	"log/slog"
	"sync"
	"time"

	"github.com/olegiv/ocms-school/internal/form"
	"github.com/olegiv/ocms-school/internal/model"
)

// Key identifies one form instance: a visitor and a form name.
type Key struct {
	Visitor string
	Form    string
}

// Transport returns the submit function used for the named form.
type Transport func(form string) SubmitFunc

// Static returns a Transport that uses fn for every form.
func Static(fn SubmitFunc) Transport {
	return func(string) SubmitFunc { return fn }
}

// Registry keeps one Machine per visitor and form.
type Registry struct {
	mu        sync.Mutex
	machines  map[Key]*Machine
	transport Transport
	opts      []Option
	logger    *slog.Logger
}

// NewRegistry creates a registry whose machines deliver through transport.
func NewRegistry(transport Transport, logger *slog.Logger, opts ...Option) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		machines:  make(map[Key]*Machine),
		transport: transport,
		opts:      append([]Option{WithLogger(logger)}, opts...),
		logger:    logger,
	}
}

// Get returns the machine for key, creating one bound to a fresh draft of
// schema on first use.
func (r *Registry) Get(key Key, schema model.FormSchema) *Machine {
	r.mu.Lock()
	defer r.mu.Unlock()

	if m, ok := r.machines[key]; ok {
		m.touch()
		return m
	}
	m := New(form.NewDraft(schema), r.transport(schema.Name), r.opts...)
	r.machines[key] = m
	return m
}

// Bind is Get for forms whose delivery depends on the caller rather than
// the form name. submit is used only when the machine is created.
func (r *Registry) Bind(key Key, schema model.FormSchema, submit SubmitFunc) *Machine {
	r.mu.Lock()
	defer r.mu.Unlock()

	if m, ok := r.machines[key]; ok {
		m.touch()
		return m
	}
	m := New(form.NewDraft(schema), submit, r.opts...)
	r.machines[key] = m
	return m
}

// Lookup returns the machine for key if one exists.
func (r *Registry) Lookup(key Key) (*Machine, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.machines[key]
	return m, ok
}

// Close closes and forgets the machine for key.
func (r *Registry) Close(key Key) {
	r.mu.Lock()
	m, ok := r.machines[key]
	delete(r.machines, key)
	r.mu.Unlock()

	if ok {
		m.Close()
	}
}

// Len returns the number of live machines.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.machines)
}

// Sweep closes machines that have not been used for maxIdle and are not
// mid-submission. It returns the number evicted.
func (r *Registry) Sweep(maxIdle time.Duration) int {
	cutoff := time.Now().Add(-maxIdle)

	r.mu.Lock()
	var stale []*Machine
	for key, m := range r.machines {
		last, evictable := m.idleSince()
		if evictable && last.Before(cutoff) {
			stale = append(stale, m)
			delete(r.machines, key)
		}
	}
	r.mu.Unlock()

	for _, m := range stale {
		m.Close()
	}
	if len(stale) > 0 {
		r.logger.Info("evicted idle form sessions", "count", len(stale))
	}
	return len(stale)
}
