// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package submission

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/ocms-school/internal/form"
)

func TestRegistry_GetScopesByVisitorAndForm(t *testing.T) {
	r := NewRegistry(Static(okSubmit), nil)

	a := r.Get(Key{Visitor: "v1", Form: form.NameContact}, form.Contact)
	b := r.Get(Key{Visitor: "v1", Form: form.NameNewsletter}, form.Newsletter)
	c := r.Get(Key{Visitor: "v2", Form: form.NameContact}, form.Contact)

	assert.NotSame(t, a, b)
	assert.NotSame(t, a, c)
	assert.Same(t, a, r.Get(Key{Visitor: "v1", Form: form.NameContact}, form.Contact))
	assert.Equal(t, 3, r.Len())

	require.NoError(t, a.Draft().Set("name", "Ada"))
	assert.Equal(t, "", c.Draft().Value("name"), "drafts are not shared between visitors")
}

func TestRegistry_Close(t *testing.T) {
	r := NewRegistry(Static(okSubmit), nil)
	key := Key{Visitor: "v1", Form: form.NameContact}
	m := r.Get(key, form.Contact)

	r.Close(key)

	_, ok := r.Lookup(key)
	assert.False(t, ok)
	_, err := m.Submit(context.Background())
	assert.ErrorIs(t, err, ErrClosed)
}

func TestRegistry_Sweep(t *testing.T) {
	r := NewRegistry(Static(okSubmit), nil)
	r.Get(Key{Visitor: "old", Form: form.NameContact}, form.Contact)

	assert.Equal(t, 0, r.Sweep(time.Hour))
	assert.Equal(t, 1, r.Len())

	time.Sleep(5 * time.Millisecond)
	assert.Equal(t, 1, r.Sweep(time.Millisecond))
	assert.Equal(t, 0, r.Len())
}

func TestRegistry_TransportPerForm(t *testing.T) {
	var forms []string
	r := NewRegistry(func(name string) SubmitFunc {
		forms = append(forms, name)
		return okSubmit
	}, nil)

	r.Get(Key{Visitor: "v1", Form: form.NameNewsletter}, form.Newsletter)
	r.Get(Key{Visitor: "v1", Form: form.NameContact}, form.Contact)
	r.Get(Key{Visitor: "v1", Form: form.NameContact}, form.Contact)

	assert.Equal(t, []string{form.NameNewsletter, form.NameContact}, forms)
}

func TestRegistry_Bind(t *testing.T) {
	var transportCalls, boundCalls atomic.Int32
	r := NewRegistry(Static(func(context.Context, map[string]string) (Result, error) {
		transportCalls.Add(1)
		return Result{OK: true}, nil
	}), nil, WithDisplayDuration(0))

	bound := func(context.Context, map[string]string) (Result, error) {
		boundCalls.Add(1)
		return Result{OK: true, Ref: "first"}, nil
	}
	key := Key{Visitor: "v1", Form: form.NameContact}
	m := r.Bind(key, form.Contact, bound)
	assert.Same(t, m, r.Bind(key, form.Contact, okSubmit), "existing machine keeps its submit function")
	assert.Same(t, m, r.Get(key, form.Contact))

	m.Draft().SetAll(map[string]string{
		"name":    "Ada Lovelace",
		"email":   "ada@example.com",
		"message": "When is the next open day?",
	})
	snap, err := m.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "first", snap.Ref)
	assert.Equal(t, int32(1), boundCalls.Load())
	assert.Equal(t, int32(0), transportCalls.Load())
}
