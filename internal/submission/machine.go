// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package submission implements the lifecycle shared by every form on the
// site: idle → validating → submitting → success or error → idle.
package submission

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/olegiv/ocms-school/internal/form"
	"github.com/olegiv/ocms-school/internal/validate"
)

// State is a submission lifecycle state.
type State string

// Submission states
const (
	StateIdle       State = "idle"
	StateValidating State = "validating"
	StateSubmitting State = "submitting"
	StateSuccess    State = "success"
	StateError      State = "error"
)

// DefaultDisplayDuration is how long a success or error message stays up.
const DefaultDisplayDuration = 5 * time.Second

// DefaultFailureMessage is shown when the submit function fails without
// a message of its own.
const DefaultFailureMessage = "Something went wrong. Please try again."

// Submission errors
var (
	// ErrBusy is returned when Submit is called outside the idle state.
	// The call is a no-op.
	ErrBusy = errors.New("submission already in progress")

	// ErrClosed is returned once the machine has been closed.
	ErrClosed = errors.New("submission machine closed")
)

// Result is what a submit function reports back.
type Result struct {
	OK      bool   `json:"ok"`
	Message string `json:"message,omitempty"`
	// Ref identifies what a successful submission created or changed.
	Ref string `json:"ref,omitempty"`
}

// SubmitFunc delivers a clean payload. A returned error is a transport
// failure; Result.OK false is a rejection. Both move the machine to
// StateError.
type SubmitFunc func(ctx context.Context, payload map[string]string) (Result, error)

// Snapshot is a consistent view of a machine.
type Snapshot struct {
	Form       string            `json:"form"`
	State      State             `json:"state"`
	Values     map[string]string `json:"values"`
	Errors     validate.ErrorMap `json:"errors"`
	Message    string            `json:"message,omitempty"`
	FocusField string            `json:"focus_field,omitempty"`
	Ref        string            `json:"ref,omitempty"`
	// Failed is set when the last attempt ended in a transport error.
	Failed bool `json:"-"`
}

// Option configures a Machine.
type Option func(*Machine)

// WithDisplayDuration sets how long success and error states last before
// returning to idle. Zero or less keeps them until Dismiss.
func WithDisplayDuration(d time.Duration) Option {
	return func(m *Machine) {
		m.display = d
	}
}

// WithTimeout bounds a single submit call.
func WithTimeout(d time.Duration) Option {
	return func(m *Machine) {
		m.timeout = d
	}
}

// WithLogger sets the machine logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Machine) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// Machine governs one form instance. At most one submission is in flight
// at a time; Submit calls made in any other state than idle are no-ops.
type Machine struct {
	draft  *form.Draft
	submit SubmitFunc

	display time.Duration
	timeout time.Duration
	logger  *slog.Logger

	mu        sync.Mutex
	state     State
	message   string
	focus     string
	ref       string
	failed    bool
	closed    bool
	attempt   uint64
	cancel    context.CancelFunc
	timer     *time.Timer
	lastTouch time.Time
}

// New creates an idle machine for draft that delivers through submit.
func New(draft *form.Draft, submit SubmitFunc, opts ...Option) *Machine {
	m := &Machine{
		draft:     draft,
		submit:    submit,
		display:   DefaultDisplayDuration,
		logger:    slog.Default(),
		state:     StateIdle,
		lastTouch: time.Now(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Draft returns the form draft the machine submits.
func (m *Machine) Draft() *form.Draft {
	return m.draft
}

// State returns the current state.
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Snapshot returns the current state with the draft values and errors.
func (m *Machine) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

func (m *Machine) snapshotLocked() Snapshot {
	return Snapshot{
		Form:       m.draft.Schema().Name,
		State:      m.state,
		Values:     m.draft.Values(),
		Errors:     m.draft.Errors(),
		Message:    m.message,
		FocusField: m.focus,
		Ref:        m.ref,
		Failed:     m.failed,
	}
}

// Submit validates the draft and, when it is valid, calls the submit
// function and waits for it. It returns ErrBusy without side effects when
// the machine is not idle, and ErrClosed when the machine was closed before
// or during the call; a late result is discarded in that case.
func (m *Machine) Submit(ctx context.Context) (Snapshot, error) {
	m.mu.Lock()
	if m.closed {
		snap := m.snapshotLocked()
		m.mu.Unlock()
		return snap, ErrClosed
	}
	if m.state != StateIdle {
		snap := m.snapshotLocked()
		m.mu.Unlock()
		return snap, ErrBusy
	}
	m.lastTouch = time.Now()
	m.state = StateValidating
	m.message = ""
	m.focus = ""
	m.ref = ""
	m.failed = false

	errs, payload := m.draft.Check()
	if !errs.OK() {
		m.focus = errs.FirstField(m.draft.Schema())
		m.state = StateIdle
		snap := m.snapshotLocked()
		m.mu.Unlock()
		return snap, nil
	}

	m.state = StateSubmitting
	m.attempt++
	attempt := m.attempt
	var runCtx context.Context
	var cancel context.CancelFunc
	if m.timeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, m.timeout)
	} else {
		runCtx, cancel = context.WithCancel(ctx)
	}
	m.cancel = cancel
	m.mu.Unlock()

	res, err := m.call(runCtx, payload)
	cancel()

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed || attempt != m.attempt {
		m.logger.Debug("discarding late submission result", "form", m.draft.Schema().Name)
		return m.snapshotLocked(), ErrClosed
	}
	m.cancel = nil

	switch {
	case err != nil:
		m.logger.Warn("form submission failed", "form", m.draft.Schema().Name, "error", err)
		m.state = StateError
		m.failed = true
		m.message = DefaultFailureMessage
	case !res.OK:
		m.state = StateError
		m.message = res.Message
		if m.message == "" {
			m.message = DefaultFailureMessage
		}
	default:
		m.state = StateSuccess
		m.ref = res.Ref
		m.message = res.Message
		if m.message == "" {
			m.message = m.draft.Schema().SuccessMessage
		}
		m.draft.Reset()
	}
	m.scheduleIdleLocked(attempt)
	return m.snapshotLocked(), nil
}

// call runs the submit function, turning a panic into an error so a faulty
// transport cannot leave the machine stuck in StateSubmitting.
func (m *Machine) call(ctx context.Context, payload map[string]string) (res Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("submit function panicked", "form", m.draft.Schema().Name, "panic", r)
			err = errors.New("submit function panicked")
		}
	}()
	return m.submit(ctx, payload)
}

func (m *Machine) scheduleIdleLocked(attempt uint64) {
	if m.display <= 0 {
		return
	}
	m.timer = time.AfterFunc(m.display, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if attempt == m.attempt && !m.closed {
			m.settleLocked()
		}
	})
}

// Dismiss clears a success or error message and returns to idle.
// It reports whether the state changed.
func (m *Machine) Dismiss() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return false
	}
	m.lastTouch = time.Now()
	return m.settleLocked()
}

func (m *Machine) settleLocked() bool {
	if m.state != StateSuccess && m.state != StateError {
		return false
	}
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
	m.state = StateIdle
	m.message = ""
	m.ref = ""
	m.failed = false
	return true
}

// Close tears the machine down: an in-flight submit call is cancelled and
// its result is never applied. Close is idempotent.
func (m *Machine) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	m.closed = true
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
}

// idleSince reports when the machine was last used and whether it may be
// evicted now.
func (m *Machine) idleSince() (time.Time, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastTouch, m.state != StateSubmitting && m.state != StateValidating
}

// touch marks the machine as used.
func (m *Machine) touch() {
	m.mu.Lock()
	m.lastTouch = time.Now()
	m.mu.Unlock()
}
