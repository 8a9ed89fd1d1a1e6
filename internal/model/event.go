// Copyright (c) 2025-2026 PursueGen
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"database/sql"
	"time"
)

// Event is a calendar entry, either entered by a leader or mirrored from
// the Planning Center sync.
type Event struct {
	ID               int64          `json:"id"`
	Title            string         `json:"title"`
	Description      string         `json:"description"`
	Date             time.Time      `json:"date"`
	TimeLabel        string         `json:"time"` // display label, e.g. "10:00 AM"
	Location         string         `json:"location"`
	ImageURL         string         `json:"imageUrl"`
	Tags             []string       `json:"tags"`
	IsPlanningCenter bool           `json:"isPlanningCenter"`
	PCOID            sql.NullString `json:"-"`
	CreatedAt        time.Time      `json:"createdAt"`
}

// MediaItem is one uploaded file in the media library.
type MediaItem struct {
	ID         int64     `json:"id"`
	URL        string    `json:"url"`
	Filename   string    `json:"filename"` // original name as uploaded
	MimeType   string    `json:"mimeType"`
	UploadedAt time.Time `json:"uploadedAt"`
}
