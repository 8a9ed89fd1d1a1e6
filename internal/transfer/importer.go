// Copyright (c) 2025-2026 PursueGen
// SPDX-License-Identifier: GPL-3.0-or-later

// Package transfer imports leader-dashboard data from the legacy
// WordPress deployment: page sections, site settings, dashboard
// shortcuts, and pending access requests.
package transfer

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/pursuegen/pursue-go/internal/auth"
	"github.com/pursuegen/pursue-go/internal/content"
	"github.com/pursuegen/pursue-go/internal/model"
	"github.com/pursuegen/pursue-go/internal/store"
)

// Source supplies the legacy site's data. Reader implements it against
// a live MySQL database; tests supply fixtures.
type Source interface {
	Sections() ([]SectionRecord, error)
	Settings() ([]SettingRecord, error)
	Shortcuts() ([]ShortcutRecord, error)
	PendingUsers() ([]PendingUserRecord, error)
}

// ImportOptions controls what the importer touches.
type ImportOptions struct {
	DryRun bool

	ImportContent   bool
	ImportSettings  bool
	ImportShortcuts bool
	ImportUsers     bool
}

// DefaultImportOptions returns options with all entity types enabled.
func DefaultImportOptions() ImportOptions {
	return ImportOptions{
		ImportContent:   true,
		ImportSettings:  true,
		ImportShortcuts: true,
		ImportUsers:     true,
	}
}

// ImportError describes a single entity that failed to import.
type ImportError struct {
	Entity  string `json:"entity"`
	ID      string `json:"id"`
	Message string `json:"message"`
}

// ImportResult reports what the importer did, per entity type.
type ImportResult struct {
	Success bool           `json:"success"`
	DryRun  bool           `json:"dryRun"`
	Created map[string]int `json:"created"`
	Updated map[string]int `json:"updated"`
	Skipped map[string]int `json:"skipped"`
	Errors  []ImportError  `json:"errors,omitempty"`
}

// NewImportResult creates an empty result.
func NewImportResult(dryRun bool) *ImportResult {
	return &ImportResult{
		Success: true,
		DryRun:  dryRun,
		Created: make(map[string]int),
		Updated: make(map[string]int),
		Skipped: make(map[string]int),
	}
}

// IncrementCreated records a created entity.
func (r *ImportResult) IncrementCreated(entity string) { r.Created[entity]++ }

// IncrementUpdated records an updated entity.
func (r *ImportResult) IncrementUpdated(entity string) { r.Updated[entity]++ }

// IncrementSkipped records a skipped entity.
func (r *ImportResult) IncrementSkipped(entity string) { r.Skipped[entity]++ }

// AddError records a failed entity and marks the result unsuccessful.
func (r *ImportResult) AddError(entity, id, message string) {
	r.Success = false
	r.Errors = append(r.Errors, ImportError{Entity: entity, ID: id, Message: message})
}

// TotalCreated returns the count of created entities across all types.
func (r *ImportResult) TotalCreated() int { return sumCounts(r.Created) }

// TotalUpdated returns the count of updated entities across all types.
func (r *ImportResult) TotalUpdated() int { return sumCounts(r.Updated) }

// TotalSkipped returns the count of skipped entities across all types.
func (r *ImportResult) TotalSkipped() int { return sumCounts(r.Skipped) }

func sumCounts(m map[string]int) int {
	total := 0
	for _, n := range m {
		total += n
	}
	return total
}

// Importer writes legacy data into the running site. Sections go
// through the content store so key aliasing and cache invalidation
// apply the same as live edits.
type Importer struct {
	source  Source
	content *content.Store
	queries *store.Queries
	logger  *slog.Logger
}

// NewImporter creates an Importer.
func NewImporter(source Source, contentStore *content.Store, queries *store.Queries, logger *slog.Logger) *Importer {
	return &Importer{
		source:  source,
		content: contentStore,
		queries: queries,
		logger:  logger,
	}
}

// Import reads everything the options enable from the source and writes
// it into the site. Entities that fail are recorded in the result and
// the remaining entities still import.
func (i *Importer) Import(ctx context.Context, opts ImportOptions) (*ImportResult, error) {
	result := NewImportResult(opts.DryRun)

	if opts.ImportContent {
		if err := i.importSections(ctx, opts, result); err != nil {
			return result, err
		}
	}
	if opts.ImportSettings {
		if err := i.importSettings(ctx, opts, result); err != nil {
			return result, err
		}
	}
	if opts.ImportShortcuts {
		if err := i.importShortcuts(ctx, opts, result); err != nil {
			return result, err
		}
	}
	if opts.ImportUsers {
		if err := i.importPendingUsers(ctx, opts, result); err != nil {
			return result, err
		}
	}

	i.logger.Info("legacy import finished",
		"dry_run", opts.DryRun,
		"created", result.TotalCreated(),
		"updated", result.TotalUpdated(),
		"skipped", result.TotalSkipped(),
		"errors", len(result.Errors),
	)
	return result, nil
}

func (i *Importer) importSections(ctx context.Context, opts ImportOptions, result *ImportResult) error {
	records, err := i.source.Sections()
	if err != nil {
		return fmt.Errorf("reading sections: %w", err)
	}

	for _, rec := range records {
		id := rec.PageSlug + "/" + rec.SectionKey
		if opts.DryRun {
			result.IncrementCreated("sections")
			continue
		}
		_, err := i.content.GetSection(ctx, rec.PageSlug, rec.SectionKey)
		fresh := errors.Is(err, content.ErrNotFound)
		if err != nil && !fresh {
			result.AddError("section", id, err.Error())
			continue
		}
		if _, err := i.content.UpsertSection(ctx, rec.PageSlug, rec.SectionKey, rec.Content); err != nil {
			result.AddError("section", id, err.Error())
			continue
		}
		if fresh {
			result.IncrementCreated("sections")
		} else {
			result.IncrementUpdated("sections")
		}
	}
	return nil
}

func (i *Importer) importSettings(ctx context.Context, opts ImportOptions, result *ImportResult) error {
	records, err := i.source.Settings()
	if err != nil {
		return fmt.Errorf("reading settings: %w", err)
	}
	if len(records) == 0 {
		return nil
	}
	if opts.DryRun {
		result.Created["settings"] += len(records)
		return nil
	}

	updates := make([]model.SettingUpdate, 0, len(records))
	for _, rec := range records {
		updates = append(updates, model.SettingUpdate{Key: rec.Key, Value: rec.Value})
	}
	if _, err := i.content.UpdateSettings(ctx, updates); err != nil {
		result.AddError("settings", "", err.Error())
		return nil
	}
	result.Created["settings"] += len(records)
	return nil
}

func (i *Importer) importShortcuts(ctx context.Context, opts ImportOptions, result *ImportResult) error {
	records, err := i.source.Shortcuts()
	if err != nil {
		return fmt.Errorf("reading shortcuts: %w", err)
	}
	if len(records) == 0 {
		return nil
	}

	// Match on href to keep re-runs idempotent.
	existing := make(map[string]bool)
	if !opts.DryRun {
		current, err := i.content.ListShortcuts(ctx)
		if err != nil {
			return fmt.Errorf("listing shortcuts: %w", err)
		}
		for _, s := range current {
			existing[s.Href] = true
		}
	}

	for _, rec := range records {
		if opts.DryRun {
			result.IncrementCreated("shortcuts")
			continue
		}
		if existing[rec.Href] {
			result.IncrementSkipped("shortcuts")
			continue
		}
		_, err := i.content.CreateShortcut(ctx, model.Shortcut{
			Title:       rec.Title,
			Description: rec.Description,
			Icon:        rec.Icon,
			Href:        rec.Href,
			Color:       rec.Color,
			BgColor:     rec.BgColor,
			Position:    rec.Position,
		})
		if err != nil {
			result.AddError("shortcut", rec.Href, err.Error())
			continue
		}
		result.IncrementCreated("shortcuts")
	}
	return nil
}

// importPendingUsers recreates still-pending access requests. WordPress
// password hashes cannot be carried over, so imported accounts get an
// unusable random password and must reset it before first sign-in.
func (i *Importer) importPendingUsers(ctx context.Context, opts ImportOptions, result *ImportResult) error {
	records, err := i.source.PendingUsers()
	if err != nil {
		return fmt.Errorf("reading pending users: %w", err)
	}

	for _, rec := range records {
		if opts.DryRun {
			result.IncrementCreated("users")
			continue
		}
		if _, err := i.queries.GetUserByEmail(ctx, rec.Email); err == nil {
			result.IncrementSkipped("users")
			continue
		} else if !errors.Is(err, sql.ErrNoRows) {
			result.AddError("user", rec.Email, err.Error())
			continue
		}

		group := rec.RequestedGroup
		if !model.IsGroupRole(model.Role(group)) {
			i.logger.Warn("pending user has unknown requested group",
				"email", rec.Email, "group", group)
			group = ""
		}

		hash, err := auth.HashPassword(uuid.NewString())
		if err != nil {
			result.AddError("user", rec.Email, err.Error())
			continue
		}

		createdAt := rec.RequestedAt
		if createdAt.IsZero() {
			createdAt = time.Now().UTC()
		}
		_, err = i.queries.CreateUser(ctx, store.CreateUserParams{
			Email:          rec.Email,
			PasswordHash:   hash,
			FirstName:      rec.FirstName,
			LastName:       rec.LastName,
			Pending:        true,
			RequestedGroup: group,
			CreatedAt:      createdAt,
			UpdatedAt:      createdAt,
		})
		if err != nil {
			result.AddError("user", rec.Email, err.Error())
			continue
		}
		result.IncrementCreated("users")
	}
	return nil
}
