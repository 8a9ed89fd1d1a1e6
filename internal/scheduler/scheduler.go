// Copyright (c) 2025-2026 PursueGen
// SPDX-License-Identifier: GPL-3.0-or-later

// Package scheduler runs the periodic background jobs: calendar sync and
// audit log pruning.
package scheduler

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/pursuegen/pursue-go/internal/pco"
	"github.com/pursuegen/pursue-go/internal/store"
)

// Retention for audit log entries.
const logRetention = 90 * 24 * time.Hour

// Scheduler owns the cron runner and its jobs.
type Scheduler struct {
	db     *sql.DB
	cron   *cron.Cron
	logger *slog.Logger
	syncer *pco.Syncer
}

// New creates a scheduler. syncer may be nil when calendar sync is
// disabled; the pruning job always runs.
func New(db *sql.DB, syncer *pco.Syncer, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		db:     db,
		cron:   cron.New(),
		logger: logger,
		syncer: syncer,
	}
}

// Start registers the jobs and begins the cron loop.
func (s *Scheduler) Start() error {
	if s.syncer != nil {
		_, err := s.cron.AddFunc("@hourly", func() {
			if _, err := s.syncer.Sync(context.Background()); err != nil {
				s.logger.Error("scheduled calendar sync failed", "error", err)
			}
		})
		if err != nil {
			return err
		}
	}

	_, err := s.cron.AddFunc("@daily", func() {
		if err := s.pruneAuditLog(); err != nil {
			s.logger.Error("audit log pruning failed", "error", err)
		}
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("scheduler started", "jobs", len(s.cron.Entries()))
	return nil
}

// Stop waits for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}

func (s *Scheduler) pruneAuditLog() error {
	queries := store.New(s.db)
	cutoff := time.Now().Add(-logRetention)

	removed, err := queries.PruneLogEntries(context.Background(), cutoff)
	if err != nil {
		return err
	}
	if removed > 0 {
		s.logger.Info("pruned audit log", "removed", removed)
	}
	return nil
}
