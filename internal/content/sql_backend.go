// Copyright (c) 2025-2026 PursueGen
// SPDX-License-Identifier: GPL-3.0-or-later

package content

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/pursuegen/pursue-go/internal/model"
	"github.com/pursuegen/pursue-go/internal/store"
)

// SQLBackend stores sections, settings, and shortcuts in relational
// tables. Upsert atomicity comes from the backing unique indexes.
type SQLBackend struct {
	queries *store.Queries
}

// NewSQLBackend returns a Backend over the given query layer.
func NewSQLBackend(queries *store.Queries) *SQLBackend {
	return &SQLBackend{queries: queries}
}

func (b *SQLBackend) ListSections(ctx context.Context, pageSlug string) ([]model.Section, error) {
	return b.queries.ListSectionsByPage(ctx, pageSlug)
}

func (b *SQLBackend) GetSection(ctx context.Context, pageSlug, sectionKey string) (model.Section, error) {
	section, err := b.queries.GetSection(ctx, pageSlug, sectionKey)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Section{}, ErrNotFound
	}
	return section, err
}

func (b *SQLBackend) UpsertSection(ctx context.Context, pageSlug, sectionKey string, content json.RawMessage) (model.Section, error) {
	return b.queries.UpsertSection(ctx, store.UpsertSectionParams{
		PageSlug:   pageSlug,
		SectionKey: sectionKey,
		Content:    content,
		UpdatedAt:  time.Now(),
	})
}

func (b *SQLBackend) ListSettings(ctx context.Context) ([]model.Setting, error) {
	return b.queries.ListSettings(ctx)
}

func (b *SQLBackend) UpdateSettings(ctx context.Context, updates []model.SettingUpdate) ([]model.Setting, error) {
	now := time.Now()
	for _, u := range updates {
		if _, err := b.queries.UpsertSetting(ctx, u.Key, u.Value, now); err != nil {
			return nil, err
		}
	}
	return b.queries.ListSettings(ctx)
}

func (b *SQLBackend) ListShortcuts(ctx context.Context) ([]model.Shortcut, error) {
	return b.queries.ListShortcuts(ctx)
}

func (b *SQLBackend) CreateShortcut(ctx context.Context, shortcut model.Shortcut) (model.Shortcut, error) {
	return b.queries.CreateShortcut(ctx, store.CreateShortcutParams{
		Title:       shortcut.Title,
		Description: shortcut.Description,
		Icon:        shortcut.Icon,
		Href:        shortcut.Href,
		Color:       shortcut.Color,
		BgColor:     shortcut.BgColor,
		Position:    shortcut.Position,
	})
}

func (b *SQLBackend) DeleteShortcut(ctx context.Context, id int64) error {
	return b.queries.DeleteShortcut(ctx, id)
}
