// Copyright (c) 2025-2026 PursueGen
// SPDX-License-Identifier: GPL-3.0-or-later

// Package content implements the section, settings, and shortcuts stores:
// schema-less (page, key) -> content storage with alias reconciliation,
// usable over either a relational table or a flat option-bag backend.
package content

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/pursuegen/pursue-go/internal/model"
)

// ErrNotFound is returned when a requested section or setting does not exist.
var ErrNotFound = errors.New("content not found")

// Backend is the raw storage contract beneath the Store. Backends store
// exactly what they are given: alias reconciliation, caching, and
// authorization all live above this interface, so the business rules are
// written once rather than per backend.
type Backend interface {
	// ListSections returns all sections of a page. An unknown page yields
	// an empty list, never an error.
	ListSections(ctx context.Context, pageSlug string) ([]model.Section, error)

	// GetSection returns one section, or ErrNotFound.
	GetSection(ctx context.Context, pageSlug, sectionKey string) (model.Section, error)

	// UpsertSection creates or replaces the section at (pageSlug,
	// sectionKey). Concurrent first writes to the same slot must resolve
	// to a single stored section.
	UpsertSection(ctx context.Context, pageSlug, sectionKey string, content json.RawMessage) (model.Section, error)

	// ListSettings returns all settings.
	ListSettings(ctx context.Context) ([]model.Setting, error)

	// UpdateSettings applies a bulk upsert and returns the full settings
	// list afterwards.
	UpdateSettings(ctx context.Context, updates []model.SettingUpdate) ([]model.Setting, error)

	// ListShortcuts returns the quick-link list in display order.
	ListShortcuts(ctx context.Context) ([]model.Shortcut, error)

	// CreateShortcut appends a quick-link entry.
	CreateShortcut(ctx context.Context, shortcut model.Shortcut) (model.Shortcut, error)

	// DeleteShortcut removes a quick-link entry.
	DeleteShortcut(ctx context.Context, id int64) error
}
