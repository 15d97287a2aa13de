// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package scheduler runs periodic housekeeping jobs on cron schedules.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler errors
var (
	ErrJobNotFound  = errors.New("job not found")
	ErrDuplicateJob = errors.New("job already registered")
)

// parser accepts standard five-field expressions and descriptors such as
// "@hourly" or "@every 1m".
var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// ValidateSchedule checks that expr is a schedule the scheduler accepts.
func ValidateSchedule(expr string) error {
	if _, err := parser.Parse(expr); err != nil {
		return fmt.Errorf("invalid cron expression %q: %w", expr, err)
	}
	return nil
}

// JobFunc is the body of a scheduled job.
type JobFunc func(ctx context.Context)

// JobInfo is the public view of a registered job.
type JobInfo struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Schedule    string    `json:"schedule"`
	LastRun     time.Time `json:"last_run"`
	NextRun     time.Time `json:"next_run"`
	Runs        int64     `json:"runs"`
}

type job struct {
	name        string
	description string
	schedule    string
	entryID     cron.EntryID
	fn          JobFunc
	runs        int64
	lastRun     time.Time
}

// Scheduler owns a cron instance and the jobs registered on it.
type Scheduler struct {
	cron   *cron.Cron
	logger *slog.Logger

	mu   sync.Mutex
	jobs map[string]*job
	ctx  context.Context
}

// New creates a stopped scheduler.
func New(logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	cl := cronLogger{logger: logger}
	return &Scheduler{
		cron: cron.New(
			cron.WithParser(parser),
			cron.WithLogger(cl),
			cron.WithChain(cron.SkipIfStillRunning(cl)),
		),
		logger: logger,
		jobs:   make(map[string]*job),
		ctx:    context.Background(),
	}
}

// Add registers fn under name to run on schedule.
func (s *Scheduler) Add(name, description, schedule string, fn JobFunc) error {
	if err := ValidateSchedule(schedule); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.jobs[name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateJob, name)
	}
	j := &job{name: name, description: description, schedule: schedule, fn: fn}
	id, err := s.cron.AddFunc(schedule, func() { s.run(j) })
	if err != nil {
		return fmt.Errorf("adding job %s: %w", name, err)
	}
	j.entryID = id
	s.jobs[name] = j

	s.logger.Debug("registered scheduled job", "name", name, "schedule", schedule)
	return nil
}

// Start begins running jobs. Jobs receive ctx.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	s.ctx = ctx
	n := len(s.jobs)
	s.mu.Unlock()

	s.cron.Start()
	s.logger.Info("scheduler started", "jobs", n)
}

// Stop stops the scheduler and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}

// List returns all registered jobs sorted by name.
func (s *Scheduler) List() []JobInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]JobInfo, 0, len(s.jobs))
	for _, j := range s.jobs {
		entry := s.cron.Entry(j.entryID)
		result = append(result, JobInfo{
			Name:        j.name,
			Description: j.description,
			Schedule:    j.schedule,
			LastRun:     j.lastRun,
			NextRun:     entry.Next,
			Runs:        j.runs,
		})
	}
	sort.Slice(result, func(i, k int) bool { return result[i].Name < result[k].Name })
	return result
}

// TriggerNow runs the named job immediately on the calling goroutine.
func (s *Scheduler) TriggerNow(name string) error {
	s.mu.Lock()
	j, ok := s.jobs[name]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrJobNotFound, name)
	}

	s.logger.Info("manually triggering job", "name", name)
	s.run(j)
	return nil
}

func (s *Scheduler) run(j *job) {
	s.mu.Lock()
	ctx := s.ctx
	s.mu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("scheduled job panicked", "name", j.name, "panic", r)
		}
	}()

	start := time.Now()
	j.fn(ctx)

	s.mu.Lock()
	j.runs++
	j.lastRun = start
	s.mu.Unlock()
	s.logger.Debug("scheduled job finished", "name", j.name, "duration", time.Since(start))
}

// cronLogger adapts slog to cron.Logger. Routine cron chatter goes to
// debug.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
