// Copyright (c) 2025-2026 PursueGen
// SPDX-License-Identifier: GPL-3.0-or-later

package logging

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"os"
	"testing"

	"github.com/pursuegen/pursue-go/internal/model"
	"github.com/pursuegen/pursue-go/internal/store"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()

	f, err := os.CreateTemp("", "pursue-logging-test-*.db")
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

func TestEventLogHandler_MirrorsWarnAndAbove(t *testing.T) {
	db := testDB(t)
	inner := slog.NewTextHandler(io.Discard, nil)
	logger := slog.New(NewEventLogHandler(inner, db))

	logger.Info("routine startup message")
	logger.Warn("login rate limit tripped", "ip", "203.0.113.9")
	logger.Error("section write failed", "category", model.EventCategoryContent, "page", "home")

	entries, err := store.New(db).ListLogEntries(context.Background(), 10)
	if err != nil {
		t.Fatalf("ListLogEntries: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("len(entries) = %d, want 2 (INFO must not be mirrored)", len(entries))
	}

	// Most recent first.
	if entries[0].Level != model.EventLevelError {
		t.Errorf("entries[0].Level = %q, want %q", entries[0].Level, model.EventLevelError)
	}
	if entries[0].Category != model.EventCategoryContent {
		t.Errorf("entries[0].Category = %q, want explicit category", entries[0].Category)
	}
	if entries[1].Level != model.EventLevelWarning {
		t.Errorf("entries[1].Level = %q, want %q", entries[1].Level, model.EventLevelWarning)
	}
	if entries[1].Category != model.EventCategoryAuth {
		t.Errorf("entries[1].Category = %q, want inferred auth category", entries[1].Category)
	}
}
