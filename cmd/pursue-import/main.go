// Copyright (c) 2025-2026 PursueGen
// SPDX-License-Identifier: GPL-3.0-or-later

// Command pursue-import copies leader-dashboard data out of a legacy
// WordPress deployment into a pursue database. It is meant to run once
// against a stopped site; re-running is safe and skips what already
// exists.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"

	"github.com/pursuegen/pursue-go/internal/cache"
	"github.com/pursuegen/pursue-go/internal/content"
	"github.com/pursuegen/pursue-go/internal/store"
	"github.com/pursuegen/pursue-go/internal/transfer"
)

func main() {
	_ = godotenv.Load()

	dsn := flag.String("dsn", os.Getenv("PURSUE_WP_DSN"),
		"MySQL DSN of the WordPress database (user:pass@tcp(host:port)/dbname)")
	prefix := flag.String("prefix", envOrDefault("PURSUE_WP_PREFIX", "wp_"),
		"WordPress table prefix")
	dbPath := flag.String("db", envOrDefault("PURSUE_DB_PATH", "./data/pursue.db"),
		"Path to the pursue SQLite database")
	backend := flag.String("backend", envOrDefault("PURSUE_CONTENT_BACKEND", "sql"),
		"Section storage backend: sql or options")
	dryRun := flag.Bool("dry-run", false, "Read and validate without writing")
	skipUsers := flag.Bool("skip-users", false, "Do not import pending access requests")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "pursue-import - import legacy WordPress dashboard data\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s -dsn <mysql-dsn> [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if *dsn == "" {
		flag.Usage()
		os.Exit(2)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := run(*dsn, *prefix, *dbPath, *backend, *dryRun, *skipUsers, logger); err != nil {
		logger.Error("import failed", "error", err)
		os.Exit(1)
	}
}

func run(dsn, prefix, dbPath, backendName string, dryRun, skipUsers bool, logger *slog.Logger) error {
	if backendName != "sql" && backendName != "options" {
		return fmt.Errorf("backend must be \"sql\" or \"options\", got %q", backendName)
	}

	reader, err := transfer.NewReader(dsn, prefix)
	if err != nil {
		return fmt.Errorf("connecting to WordPress database: %w", err)
	}
	defer func() { _ = reader.Close() }()

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}
	db, err := store.NewDB(dbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() { _ = db.Close() }()

	if err := store.Migrate(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	queries := store.New(db)
	memCache := cache.NewMemoryCache(time.Minute, 100)
	defer func() { _ = memCache.Close() }()

	var backend content.Backend
	if backendName == "options" {
		backend = content.NewOptionBackend(queries)
	} else {
		backend = content.NewSQLBackend(queries)
	}
	contentStore := content.NewStore(backend, memCache)

	opts := transfer.DefaultImportOptions()
	opts.DryRun = dryRun
	opts.ImportUsers = !skipUsers

	importer := transfer.NewImporter(reader, contentStore, queries, logger)
	result, err := importer.Import(context.Background(), opts)
	if err != nil {
		return err
	}

	for _, e := range result.Errors {
		logger.Warn("entity failed", "entity", e.Entity, "id", e.ID, "message", e.Message)
	}
	logger.Info("import complete",
		"dry_run", result.DryRun,
		"created", result.TotalCreated(),
		"updated", result.TotalUpdated(),
		"skipped", result.TotalSkipped(),
	)
	if !result.Success {
		return fmt.Errorf("%d entities failed to import", len(result.Errors))
	}
	return nil
}

func envOrDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}
