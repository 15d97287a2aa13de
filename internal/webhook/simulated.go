// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package webhook

import (
	"context"
	"log/slog"
	"time"

	"github.com/olegiv/ocms-school/internal/submission"
)

// Simulated returns a submit function that waits for latency and then
// accepts the payload. It returns the context error if ctx ends first.
func Simulated(latency time.Duration) submission.SubmitFunc {
	return func(ctx context.Context, payload map[string]string) (submission.Result, error) {
		if latency > 0 {
			timer := time.NewTimer(latency)
			defer timer.Stop()
			select {
			case <-ctx.Done():
				return submission.Result{}, ctx.Err()
			case <-timer.C:
			}
		}
		slog.Debug("simulated form delivery", "fields", len(payload))
		return submission.Result{OK: true}, nil
	}
}
