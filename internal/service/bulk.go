// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/olegiv/ocms-school/internal/logging"
	"github.com/olegiv/ocms-school/internal/model"
	"github.com/olegiv/ocms-school/internal/store"
)

// BulkOp is an action applied to every selected article.
type BulkOp string

// Bulk operations
const (
	BulkDelete  BulkOp = "delete"
	BulkPublish BulkOp = "publish"
	BulkArchive BulkOp = "archive"
)

// ErrUnknownBulkOp is returned for an operation outside delete/publish/archive.
var ErrUnknownBulkOp = errors.New("unknown bulk operation")

// ParseBulkOp converts a request value into a BulkOp.
func ParseBulkOp(s string) (BulkOp, error) {
	switch op := BulkOp(s); op {
	case BulkDelete, BulkPublish, BulkArchive:
		return op, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownBulkOp, s)
	}
}

// Destructive reports whether the operation cannot be undone.
func (op BulkOp) Destructive() bool {
	return op == BulkDelete
}

// pastTense is used in confirmation messages.
func (op BulkOp) pastTense() string {
	switch op {
	case BulkDelete:
		return "deleted"
	case BulkPublish:
		return "published"
	case BulkArchive:
		return "archived"
	default:
		return string(op)
	}
}

// BulkResult summarizes an executed bulk operation.
type BulkResult struct {
	Op       BulkOp   `json:"op"`
	Affected int      `json:"affected"`
	Missing  []string `json:"missing,omitempty"`
	Message  string   `json:"message"`
}

// Selection is the part of a selection set the executor needs.
type Selection interface {
	IDs() []string
	Clear()
}

// ArticleMutator is the part of the article store the executor needs.
type ArticleMutator interface {
	Remove(id string) error
	SetStatus(id string, status model.Status) error
}

// Notifier delivers user-facing confirmations.
type Notifier interface {
	Notify(ctx context.Context, message string)
}

// LogNotifier emits confirmations as INFO records tagged with
// logging.NoticeKey, which the notice handler collects for the dashboard.
type LogNotifier struct {
	Logger *slog.Logger
}

// Notify logs message as a notice.
func (n LogNotifier) Notify(ctx context.Context, message string) {
	logger := n.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.InfoContext(ctx, message, slog.Bool(logging.NoticeKey, true))
}

// BulkExecutor applies one operation to every selected article.
// It performs no confirmation; destructive operations must be confirmed
// by the caller before Execute is invoked.
type BulkExecutor struct {
	notifier Notifier
	logger   *slog.Logger
}

// NewBulkExecutor creates a BulkExecutor. A nil notifier logs notices
// through logger.
func NewBulkExecutor(notifier Notifier, logger *slog.Logger) *BulkExecutor {
	if logger == nil {
		logger = slog.Default()
	}
	if notifier == nil {
		notifier = LogNotifier{Logger: logger}
	}
	return &BulkExecutor{notifier: notifier, logger: logger}
}

// Execute applies op to every id in sel. Ids that no longer exist are
// logged and skipped. The selection is cleared afterwards regardless of
// partial failure, and a confirmation with the affected count is emitted.
func (e *BulkExecutor) Execute(ctx context.Context, op BulkOp, sel Selection, st ArticleMutator) (BulkResult, error) {
	if _, err := ParseBulkOp(string(op)); err != nil {
		return BulkResult{}, err
	}
	defer sel.Clear()

	result := BulkResult{Op: op}
	for _, id := range sel.IDs() {
		var err error
		switch op {
		case BulkDelete:
			err = st.Remove(id)
		case BulkPublish:
			err = st.SetStatus(id, model.StatusPublished)
		case BulkArchive:
			err = st.SetStatus(id, model.StatusArchived)
		}

		switch {
		case err == nil:
			result.Affected++
		case errors.Is(err, store.ErrNotFound):
			e.logger.WarnContext(ctx, "bulk operation skipped missing article", "op", op, "id", id)
			result.Missing = append(result.Missing, id)
		default:
			e.logger.ErrorContext(ctx, "bulk operation failed", "op", op, "id", id, "error", err)
		}
	}

	result.Message = ConfirmationMessage(op, result.Affected)
	e.notifier.Notify(ctx, result.Message)
	return result, nil
}

// ConfirmationMessage formats the notice shown after a bulk operation,
// e.g. "3 articles published".
func ConfirmationMessage(op BulkOp, affected int) string {
	noun := "articles"
	if affected == 1 {
		noun = "article"
	}
	return fmt.Sprintf("%d %s %s", affected, noun, op.pastTense())
}
