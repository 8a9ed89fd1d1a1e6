// Copyright (c) 2025-2026 PursueGen
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"
)

// GetOption returns the raw value stored under an option name.
func (q *Queries) GetOption(ctx context.Context, name string) (string, error) {
	var value string
	err := q.db.QueryRowContext(ctx,
		`SELECT value FROM options WHERE name = ?`, name).Scan(&value)
	return value, err
}

// SetOption stores a value under an option name, replacing any earlier one.
func (q *Queries) SetOption(ctx context.Context, name, value string, updatedAt time.Time) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO options (name, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(name)
		DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		name, value, updatedAt,
	)
	return err
}

// DeleteOption removes an option.
func (q *Queries) DeleteOption(ctx context.Context, name string) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM options WHERE name = ?`, name)
	return err
}
