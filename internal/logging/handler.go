// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package logging configures slog for the application and provides a
// handler that collects user-facing notices for the admin dashboard.
package logging

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// NoticeKey is the attribute that marks a record as a user notice.
// Any record carrying it with a true value is kept in the NoticeLog.
const NoticeKey = "notice"

// DefaultNoticeCapacity is the number of notices kept when none is given.
const DefaultNoticeCapacity = 50

// ParseLevel converts a config value into a slog.Level. Unknown values map
// to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Setup builds the application logger writing to w in the given format
// ("json" or text) and wraps it with a NoticeHandler feeding notices.
func Setup(w io.Writer, level, format string, notices *NoticeLog) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}

	var inner slog.Handler
	if strings.EqualFold(format, "json") {
		inner = slog.NewJSONHandler(w, opts)
	} else {
		inner = slog.NewTextHandler(w, opts)
	}
	return slog.New(NewNoticeHandler(inner, notices))
}

// Notice is one recorded user-facing message.
type Notice struct {
	Time    time.Time `json:"time"`
	Level   string    `json:"level"`
	Message string    `json:"message"`
}

// NoticeLog is a fixed-size ring of the most recent notices.
type NoticeLog struct {
	mu    sync.Mutex
	items []Notice
	next  int
	full  bool
}

// NewNoticeLog creates a NoticeLog holding up to capacity notices.
func NewNoticeLog(capacity int) *NoticeLog {
	if capacity <= 0 {
		capacity = DefaultNoticeCapacity
	}
	return &NoticeLog{items: make([]Notice, capacity)}
}

// Add records n, overwriting the oldest notice when the log is full.
func (l *NoticeLog) Add(n Notice) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.items[l.next] = n
	l.next = (l.next + 1) % len(l.items)
	if l.next == 0 {
		l.full = true
	}
}

// Recent returns up to limit notices, newest first. A limit of zero or
// less returns all of them.
func (l *NoticeLog) Recent(limit int) []Notice {
	l.mu.Lock()
	defer l.mu.Unlock()

	size := l.next
	if l.full {
		size = len(l.items)
	}
	if limit <= 0 || limit > size {
		limit = size
	}

	out := make([]Notice, 0, limit)
	for i := 0; i < limit; i++ {
		idx := (l.next - 1 - i + len(l.items)) % len(l.items)
		out = append(out, l.items[idx])
	}
	return out
}

// NoticeHandler is a slog.Handler that wraps another handler and also
// copies records marked with NoticeKey into a NoticeLog.
type NoticeHandler struct {
	inner   slog.Handler
	notices *NoticeLog
	marked  bool // set when WithAttrs already carried the notice attribute
}

// NewNoticeHandler wraps inner. A nil notices disables collection.
func NewNoticeHandler(inner slog.Handler, notices *NoticeLog) *NoticeHandler {
	return &NoticeHandler{inner: inner, notices: notices}
}

// Enabled implements slog.Handler.
func (h *NoticeHandler) Enabled(ctx context.Context, level slog.Level) bool {
	// Notices are logged at INFO and must be collected even when the
	// output level is higher.
	return h.notices != nil || h.inner.Enabled(ctx, level)
}

// Handle implements slog.Handler.
func (h *NoticeHandler) Handle(ctx context.Context, r slog.Record) error {
	if h.notices != nil && (h.marked || isNotice(r)) {
		h.notices.Add(Notice{Time: r.Time, Level: r.Level.String(), Message: r.Message})
	}
	if !h.inner.Enabled(ctx, r.Level) {
		return nil
	}
	return h.inner.Handle(ctx, r)
}

// WithAttrs implements slog.Handler.
func (h *NoticeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	marked := h.marked
	for _, a := range attrs {
		if isNoticeAttr(a) {
			marked = true
		}
	}
	return &NoticeHandler{inner: h.inner.WithAttrs(attrs), notices: h.notices, marked: marked}
}

// WithGroup implements slog.Handler.
func (h *NoticeHandler) WithGroup(name string) slog.Handler {
	return &NoticeHandler{inner: h.inner.WithGroup(name), notices: h.notices, marked: h.marked}
}

func isNotice(r slog.Record) bool {
	found := false
	r.Attrs(func(a slog.Attr) bool {
		if isNoticeAttr(a) {
			found = true
			return false
		}
		return true
	})
	return found
}

func isNoticeAttr(a slog.Attr) bool {
	if a.Key != NoticeKey {
		return false
	}
	v := a.Value.Resolve()
	return v.Kind() == slog.KindBool && v.Bool()
}
