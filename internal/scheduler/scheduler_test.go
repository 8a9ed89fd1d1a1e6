// Copyright (c) 2025-2026 PursueGen
// SPDX-License-Identifier: GPL-3.0-or-later

package scheduler

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	"github.com/pursuegen/pursue-go/internal/store"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()

	f, err := os.CreateTemp("", "pursue-scheduler-test-*.db")
	if err != nil {
		t.Fatalf("creating temp file: %v", err)
	}
	dbPath := f.Name()
	f.Close()

	db, err := store.NewDB(dbPath)
	if err != nil {
		os.Remove(dbPath)
		t.Fatalf("NewDB: %v", err)
	}
	if err := store.Migrate(db); err != nil {
		db.Close()
		os.Remove(dbPath)
		t.Fatalf("Migrate: %v", err)
	}
	t.Cleanup(func() {
		db.Close()
		os.Remove(dbPath)
	})
	return db
}

func TestStartStop(t *testing.T) {
	db := testDB(t)
	s := New(db, nil, nil)

	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	s.Stop()
}

func TestPruneAuditLog(t *testing.T) {
	db := testDB(t)
	queries := store.New(db)
	ctx := context.Background()

	old := store.CreateLogEntryParams{
		Level:     "info",
		Category:  "system",
		Message:   "ancient entry",
		CreatedAt: time.Now().Add(-120 * 24 * time.Hour),
	}
	recent := store.CreateLogEntryParams{
		Level:     "info",
		Category:  "system",
		Message:   "fresh entry",
		CreatedAt: time.Now(),
	}
	if err := queries.CreateLogEntry(ctx, old); err != nil {
		t.Fatalf("CreateLogEntry: %v", err)
	}
	if err := queries.CreateLogEntry(ctx, recent); err != nil {
		t.Fatalf("CreateLogEntry: %v", err)
	}

	s := New(db, nil, nil)
	if err := s.pruneAuditLog(); err != nil {
		t.Fatalf("pruneAuditLog: %v", err)
	}

	entries, err := queries.ListLogEntries(ctx, 10)
	if err != nil {
		t.Fatalf("ListLogEntries: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("len(entries) = %d, want 1", len(entries))
	}
	if entries[0].Message != "fresh entry" {
		t.Errorf("surviving entry = %q, want the fresh one", entries[0].Message)
	}
}
