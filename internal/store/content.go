// Copyright (c) 2025-2026 PursueGen
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pursuegen/pursue-go/internal/model"
)

// UpsertSectionParams identifies a section slot and its replacement content.
type UpsertSectionParams struct {
	PageSlug   string
	SectionKey string
	Content    json.RawMessage
	UpdatedAt  time.Time
}

// UpsertSection inserts a section or replaces its content when the
// (page_slug, section_key) slot already exists. Concurrent first writes
// to the same slot resolve to a single row through the unique index.
func (q *Queries) UpsertSection(ctx context.Context, arg UpsertSectionParams) (model.Section, error) {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO site_sections (page_slug, section_key, content, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(page_slug, section_key)
		DO UPDATE SET content = excluded.content, updated_at = excluded.updated_at`,
		arg.PageSlug, arg.SectionKey, string(arg.Content), arg.UpdatedAt,
	)
	if err != nil {
		return model.Section{}, err
	}
	return q.GetSection(ctx, arg.PageSlug, arg.SectionKey)
}

// GetSection returns the section stored at the given slot.
func (q *Queries) GetSection(ctx context.Context, pageSlug, sectionKey string) (model.Section, error) {
	var s model.Section
	var content string
	err := q.db.QueryRowContext(ctx, `
		SELECT id, page_slug, section_key, content, updated_at
		FROM site_sections
		WHERE page_slug = ? AND section_key = ?`,
		pageSlug, sectionKey,
	).Scan(&s.ID, &s.PageSlug, &s.SectionKey, &content, &s.UpdatedAt)
	if err != nil {
		return model.Section{}, err
	}
	s.Content = json.RawMessage(content)
	return s, nil
}

// ListSectionsByPage returns all sections of a page. An unknown page
// yields an empty list, not an error.
func (q *Queries) ListSectionsByPage(ctx context.Context, pageSlug string) ([]model.Section, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT id, page_slug, section_key, content, updated_at
		FROM site_sections
		WHERE page_slug = ?
		ORDER BY section_key`,
		pageSlug,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sections []model.Section
	for rows.Next() {
		var s model.Section
		var content string
		if err := rows.Scan(&s.ID, &s.PageSlug, &s.SectionKey, &content, &s.UpdatedAt); err != nil {
			return nil, err
		}
		s.Content = json.RawMessage(content)
		sections = append(sections, s)
	}
	return sections, rows.Err()
}

// DeleteSection removes a section slot.
func (q *Queries) DeleteSection(ctx context.Context, pageSlug, sectionKey string) error {
	_, err := q.db.ExecContext(ctx,
		`DELETE FROM site_sections WHERE page_slug = ? AND section_key = ?`,
		pageSlug, sectionKey)
	return err
}

// UpsertSetting inserts a setting or replaces its value when the key
// already exists.
func (q *Queries) UpsertSetting(ctx context.Context, key string, value json.RawMessage, updatedAt time.Time) (model.Setting, error) {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO settings (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key)
		DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, string(value), updatedAt,
	)
	if err != nil {
		return model.Setting{}, err
	}
	return q.GetSetting(ctx, key)
}

// GetSetting returns the setting with the given key.
func (q *Queries) GetSetting(ctx context.Context, key string) (model.Setting, error) {
	var s model.Setting
	var value string
	err := q.db.QueryRowContext(ctx,
		`SELECT id, key, value, updated_at FROM settings WHERE key = ?`, key,
	).Scan(&s.ID, &s.Key, &value, &s.UpdatedAt)
	if err != nil {
		return model.Setting{}, err
	}
	s.Value = json.RawMessage(value)
	return s, nil
}

// ListSettings returns all settings ordered by key.
func (q *Queries) ListSettings(ctx context.Context) ([]model.Setting, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT id, key, value, updated_at FROM settings ORDER BY key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var settings []model.Setting
	for rows.Next() {
		var s model.Setting
		var value string
		if err := rows.Scan(&s.ID, &s.Key, &value, &s.UpdatedAt); err != nil {
			return nil, err
		}
		s.Value = json.RawMessage(value)
		settings = append(settings, s)
	}
	return settings, rows.Err()
}

// CreateShortcutParams holds the fields for a new quick-link entry.
type CreateShortcutParams struct {
	Title       string
	Description string
	Icon        string
	Href        string
	Color       string
	BgColor     string
	Position    int64
}

// CreateShortcut inserts a quick-link entry.
func (q *Queries) CreateShortcut(ctx context.Context, arg CreateShortcutParams) (model.Shortcut, error) {
	res, err := q.db.ExecContext(ctx, `
		INSERT INTO shortcuts (title, description, icon, href, color, bg_color, position)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		arg.Title, arg.Description, arg.Icon, arg.Href, arg.Color, arg.BgColor, arg.Position,
	)
	if err != nil {
		return model.Shortcut{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Shortcut{}, err
	}
	return model.Shortcut{
		ID: id, Title: arg.Title, Description: arg.Description, Icon: arg.Icon,
		Href: arg.Href, Color: arg.Color, BgColor: arg.BgColor, Position: arg.Position,
	}, nil
}

// ListShortcuts returns all quick-link entries in display order.
func (q *Queries) ListShortcuts(ctx context.Context) ([]model.Shortcut, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT id, title, description, icon, href, color, bg_color, position
		FROM shortcuts ORDER BY position, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var shortcuts []model.Shortcut
	for rows.Next() {
		var s model.Shortcut
		if err := rows.Scan(&s.ID, &s.Title, &s.Description, &s.Icon,
			&s.Href, &s.Color, &s.BgColor, &s.Position); err != nil {
			return nil, err
		}
		shortcuts = append(shortcuts, s)
	}
	return shortcuts, rows.Err()
}

// DeleteShortcuts removes all quick-link entries. Used when replacing
// the full ordered list in one operation.
func (q *Queries) DeleteShortcuts(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM shortcuts`)
	return err
}

// DeleteShortcut removes a single quick-link entry.
func (q *Queries) DeleteShortcut(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM shortcuts WHERE id = ?`, id)
	return err
}
