// Copyright (c) 2025-2026 PursueGen
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/pursuegen/pursue-go/internal/model"
)

const eventColumns = `id, title, description, date, time_label, location,
	image_url, tags, is_planning_center, pco_id, created_at`

func scanEvent(row interface{ Scan(...any) error }) (model.Event, error) {
	var e model.Event
	var tags string
	err := row.Scan(
		&e.ID, &e.Title, &e.Description, &e.Date, &e.TimeLabel, &e.Location,
		&e.ImageURL, &tags, &e.IsPlanningCenter, &e.PCOID, &e.CreatedAt,
	)
	if err != nil {
		return model.Event{}, err
	}
	if err := json.Unmarshal([]byte(tags), &e.Tags); err != nil {
		e.Tags = nil
	}
	return e, nil
}

func marshalTags(tags []string) string {
	if tags == nil {
		tags = []string{}
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return "[]"
	}
	return string(b)
}

// CreateEventParams holds the fields for a new event.
type CreateEventParams struct {
	Title            string
	Description      string
	Date             time.Time
	TimeLabel        string
	Location         string
	ImageURL         string
	Tags             []string
	IsPlanningCenter bool
	PCOID            sql.NullString
	CreatedAt        time.Time
}

// CreateEvent inserts a new event and returns the stored row.
func (q *Queries) CreateEvent(ctx context.Context, arg CreateEventParams) (model.Event, error) {
	res, err := q.db.ExecContext(ctx, `
		INSERT INTO events (title, description, date, time_label, location,
			image_url, tags, is_planning_center, pco_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		arg.Title, arg.Description, arg.Date, arg.TimeLabel, arg.Location,
		arg.ImageURL, marshalTags(arg.Tags), arg.IsPlanningCenter, arg.PCOID, arg.CreatedAt,
	)
	if err != nil {
		return model.Event{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Event{}, err
	}
	return q.GetEvent(ctx, id)
}

// UpsertEventByPCOIDParams holds the fields of a synced calendar event.
type UpsertEventByPCOIDParams struct {
	Title       string
	Description string
	Date        time.Time
	TimeLabel   string
	Location    string
	ImageURL    string
	Tags        []string
	PCOID       string
	CreatedAt   time.Time
}

// UpsertEventByPCOID inserts a synced event or refreshes the existing row
// carrying the same external calendar ID.
func (q *Queries) UpsertEventByPCOID(ctx context.Context, arg UpsertEventByPCOIDParams) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO events (title, description, date, time_label, location,
			image_url, tags, is_planning_center, pco_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, 1, ?, ?)
		ON CONFLICT(pco_id) WHERE pco_id IS NOT NULL
		DO UPDATE SET title = excluded.title, description = excluded.description,
			date = excluded.date, time_label = excluded.time_label,
			location = excluded.location, image_url = excluded.image_url,
			tags = excluded.tags`,
		arg.Title, arg.Description, arg.Date, arg.TimeLabel, arg.Location,
		arg.ImageURL, marshalTags(arg.Tags), arg.PCOID, arg.CreatedAt,
	)
	return err
}

// GetEvent returns the event with the given ID.
func (q *Queries) GetEvent(ctx context.Context, id int64) (model.Event, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+eventColumns+` FROM events WHERE id = ?`, id)
	return scanEvent(row)
}

// ListEvents returns all events ordered by date.
func (q *Queries) ListEvents(ctx context.Context) ([]model.Event, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+eventColumns+` FROM events ORDER BY date, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// UpdateEventParams holds the editable fields of an event.
type UpdateEventParams struct {
	ID          int64
	Title       string
	Description string
	Date        time.Time
	TimeLabel   string
	Location    string
	ImageURL    string
	Tags        []string
}

// UpdateEvent updates a locally managed event.
func (q *Queries) UpdateEvent(ctx context.Context, arg UpdateEventParams) error {
	_, err := q.db.ExecContext(ctx, `
		UPDATE events
		SET title = ?, description = ?, date = ?, time_label = ?,
			location = ?, image_url = ?, tags = ?
		WHERE id = ?`,
		arg.Title, arg.Description, arg.Date, arg.TimeLabel,
		arg.Location, arg.ImageURL, marshalTags(arg.Tags), arg.ID,
	)
	return err
}

// DeleteEvent removes an event.
func (q *Queries) DeleteEvent(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM events WHERE id = ?`, id)
	return err
}

// CreateMediaParams holds the fields for a new media item.
type CreateMediaParams struct {
	URL        string
	Filename   string
	MimeType   string
	UploadedAt time.Time
}

// CreateMedia records an uploaded file.
func (q *Queries) CreateMedia(ctx context.Context, arg CreateMediaParams) (model.MediaItem, error) {
	res, err := q.db.ExecContext(ctx, `
		INSERT INTO media (url, filename, mime_type, uploaded_at)
		VALUES (?, ?, ?, ?)`,
		arg.URL, arg.Filename, arg.MimeType, arg.UploadedAt,
	)
	if err != nil {
		return model.MediaItem{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.MediaItem{}, err
	}
	return model.MediaItem{
		ID: id, URL: arg.URL, Filename: arg.Filename,
		MimeType: arg.MimeType, UploadedAt: arg.UploadedAt,
	}, nil
}

// GetMediaItem returns the media item with the given ID.
func (q *Queries) GetMediaItem(ctx context.Context, id int64) (model.MediaItem, error) {
	var m model.MediaItem
	err := q.db.QueryRowContext(ctx,
		`SELECT id, url, filename, mime_type, uploaded_at FROM media WHERE id = ?`, id,
	).Scan(&m.ID, &m.URL, &m.Filename, &m.MimeType, &m.UploadedAt)
	return m, err
}

// ListMedia returns all media items, most recent first.
func (q *Queries) ListMedia(ctx context.Context) ([]model.MediaItem, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT id, url, filename, mime_type, uploaded_at
		FROM media ORDER BY uploaded_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []model.MediaItem
	for rows.Next() {
		var m model.MediaItem
		if err := rows.Scan(&m.ID, &m.URL, &m.Filename, &m.MimeType, &m.UploadedAt); err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	return items, rows.Err()
}

// DeleteMedia removes a media record.
func (q *Queries) DeleteMedia(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM media WHERE id = ?`, id)
	return err
}
