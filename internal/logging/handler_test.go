// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"
)

// discardHandler is a slog.Handler that discards all logs.
type discardHandler struct{}

func (h discardHandler) Enabled(context.Context, slog.Level) bool  { return true }
func (h discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (h discardHandler) WithAttrs([]slog.Attr) slog.Handler        { return h }
func (h discardHandler) WithGroup(string) slog.Handler             { return h }

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{" error ", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNoticeHandler_CollectsMarkedRecords(t *testing.T) {
	notices := NewNoticeLog(10)
	logger := slog.New(NewNoticeHandler(discardHandler{}, notices))

	logger.Info("3 articles published", NoticeKey, true)
	logger.Info("ordinary log line")
	logger.Info("not a notice", NoticeKey, false)

	got := notices.Recent(0)
	if len(got) != 1 {
		t.Fatalf("Recent() returned %d notices, want 1", len(got))
	}
	if got[0].Message != "3 articles published" {
		t.Errorf("Message = %q", got[0].Message)
	}
	if got[0].Level != "INFO" {
		t.Errorf("Level = %q, want INFO", got[0].Level)
	}
}

func TestNoticeHandler_WithAttrs(t *testing.T) {
	notices := NewNoticeLog(10)
	logger := slog.New(NewNoticeHandler(discardHandler{}, notices)).With(NoticeKey, true)

	logger.Warn("form rate limited")

	if got := notices.Recent(0); len(got) != 1 || got[0].Level != "WARN" {
		t.Errorf("Recent() = %+v, want one WARN notice", got)
	}
}

func TestNoticeHandler_CollectsBelowOutputLevel(t *testing.T) {
	var buf bytes.Buffer
	notices := NewNoticeLog(10)
	logger := Setup(&buf, "error", "text", notices)

	logger.Info("1 article archived", NoticeKey, true)
	logger.Info("hidden")

	if buf.Len() != 0 {
		t.Errorf("output = %q, want nothing below error level", buf.String())
	}
	if len(notices.Recent(0)) != 1 {
		t.Error("notice below the output level was not collected")
	}
}

func TestSetup_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := Setup(&buf, "info", "json", nil)

	logger.Info("hello", "k", "v")

	if !strings.HasPrefix(buf.String(), "{") || !strings.Contains(buf.String(), `"k":"v"`) {
		t.Errorf("output = %q, want JSON", buf.String())
	}
}

func TestSetup_Text(t *testing.T) {
	var buf bytes.Buffer
	logger := Setup(&buf, "info", "", nil)

	logger.Debug("skipped")
	logger.Info("hello", "k", "v")

	out := buf.String()
	if strings.Contains(out, "skipped") {
		t.Error("debug record written at info level")
	}
	if !strings.Contains(out, "msg=hello") || !strings.Contains(out, "k=v") {
		t.Errorf("output = %q, want text format", out)
	}
}

func TestNoticeLog_Ring(t *testing.T) {
	l := NewNoticeLog(3)
	for i, msg := range []string{"a", "b", "c", "d", "e"} {
		l.Add(Notice{Time: time.Unix(int64(i), 0), Message: msg})
	}

	got := l.Recent(0)
	want := []string{"e", "d", "c"}
	if len(got) != len(want) {
		t.Fatalf("Recent() returned %d notices, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].Message != want[i] {
			t.Errorf("Recent()[%d] = %q, want %q", i, got[i].Message, want[i])
		}
	}

	if got := l.Recent(2); len(got) != 2 || got[0].Message != "e" {
		t.Errorf("Recent(2) = %+v", got)
	}
}

func TestNoticeLog_PartiallyFilled(t *testing.T) {
	l := NewNoticeLog(0)
	if got := l.Recent(5); len(got) != 0 {
		t.Errorf("empty log returned %d notices", len(got))
	}
	l.Add(Notice{Message: "only"})
	if got := l.Recent(5); len(got) != 1 || got[0].Message != "only" {
		t.Errorf("Recent(5) = %+v", got)
	}
}
