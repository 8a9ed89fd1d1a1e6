// Copyright (c) 2025-2026 PursueGen
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"bytes"
	"encoding/json"
	"time"
)

// Section is one named, independently editable block of page content.
// Content is opaque to the store: arbitrary nested key/value data defined
// entirely by the page components that render it.
type Section struct {
	ID         int64           `json:"id"`
	PageSlug   string          `json:"pageSlug"`
	SectionKey string          `json:"sectionKey"`
	Content    json.RawMessage `json:"content"`
	UpdatedAt  time.Time       `json:"updatedAt"`
}

// EmptyContent reports whether raw holds no usable content: nothing at all,
// JSON null, or an empty object/array. Used by alias reconciliation to
// decide whether a canonical section needs healing from its legacy key.
func EmptyContent(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	switch {
	case len(trimmed) == 0:
		return true
	case bytes.Equal(trimmed, []byte("null")):
		return true
	case bytes.Equal(trimmed, []byte("{}")):
		return true
	case bytes.Equal(trimmed, []byte("[]")):
		return true
	}
	return false
}

// Setting is a globally keyed configuration value: theme colors, contact
// info, the site name. Same opacity rules as Section content.
type Setting struct {
	ID        int64           `json:"id"`
	Key       string          `json:"key"`
	Value     json.RawMessage `json:"value"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// SettingUpdate is one entry of a bulk settings write.
type SettingUpdate struct {
	Key   string          `json:"key"`
	Value json.RawMessage `json:"value"`
}

// Shortcut is a dashboard quick-link card shown to leaders.
type Shortcut struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Href        string `json:"href"`
	Color       string `json:"color"`
	BgColor     string `json:"bgColor"`
	Position    int64  `json:"order"`
}
