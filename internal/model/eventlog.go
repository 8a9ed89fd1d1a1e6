// Copyright (c) 2025-2026 PursueGen
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"database/sql"
	"time"
)

// Event log levels.
const (
	EventLevelInfo    = "info"
	EventLevelWarning = "warning"
	EventLevelError   = "error"
)

// Event log categories.
const (
	EventCategoryAuth    = "auth"
	EventCategoryAccess  = "access"
	EventCategoryContent = "content"
	EventCategoryUser    = "user"
	EventCategorySystem  = "system"
)

// LogEntry is one row of the audit event log.
type LogEntry struct {
	ID        int64         `json:"id"`
	Level     string        `json:"level"`
	Category  string        `json:"category"`
	Message   string        `json:"message"`
	UserID    sql.NullInt64 `json:"userId,omitempty"`
	Metadata  string        `json:"metadata"`
	CreatedAt time.Time     `json:"createdAt"`
}
