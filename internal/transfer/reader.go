// Copyright (c) 2025-2026 PursueGen
// SPDX-License-Identifier: GPL-3.0-or-later

package transfer

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

const (
	optionContentPrefix = "pursue_content_"
	optionSettings      = "pursue_settings"
	optionShortcuts     = "pursue_shortcuts"

	metaPending        = "tracker_pending"
	metaRequestedGroup = "requested_role"
	metaRequestedAt    = "tracker_requested_at"
)

// SectionRecord is one page section read from the legacy site.
type SectionRecord struct {
	PageSlug   string
	SectionKey string
	Content    json.RawMessage
}

// SettingRecord is one site setting read from the legacy site.
type SettingRecord struct {
	Key   string
	Value json.RawMessage
}

// ShortcutRecord is one dashboard shortcut read from the legacy site.
type ShortcutRecord struct {
	Title       string
	Description string
	Icon        string
	Href        string
	Color       string
	BgColor     string
	Position    int64
}

// PendingUserRecord is a leader whose access request was still awaiting
// a decision on the legacy site.
type PendingUserRecord struct {
	Email          string
	FirstName      string
	LastName       string
	RequestedGroup string
	RequestedAt    time.Time
}

// Reader reads dashboard data from a WordPress MySQL database where the
// legacy plugin stored it: page sections, settings, and shortcuts live
// in wp_options as serialized documents, and pending access requests
// live in wp_usermeta.
type Reader struct {
	db     *sql.DB
	prefix string // Table prefix (e.g., "wp_")
}

// NewReader opens a connection to the legacy WordPress database.
func NewReader(dsn string, tablePrefix string) (*Reader, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Test connection
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if tablePrefix == "" {
		tablePrefix = "wp_"
	}
	return &Reader{db: db, prefix: tablePrefix}, nil
}

// Close closes the database connection.
func (r *Reader) Close() error {
	return r.db.Close()
}

// option fetches a single wp_options row. Missing options return
// sql.ErrNoRows.
func (r *Reader) option(name string) (string, error) {
	query := fmt.Sprintf(`SELECT option_value FROM %soptions WHERE option_name = ?`, r.prefix)
	var value string
	if err := r.db.QueryRow(query, name).Scan(&value); err != nil {
		return "", err
	}
	return value, nil
}

// Sections reads every pursue_content_* option and flattens the stored
// documents into individual section records keyed by page and section.
func (r *Reader) Sections() ([]SectionRecord, error) {
	query := fmt.Sprintf(
		`SELECT option_name, option_value FROM %soptions WHERE option_name LIKE ? ORDER BY option_name`,
		r.prefix,
	)
	rows, err := r.db.Query(query, optionContentPrefix+"%")
	if err != nil {
		return nil, fmt.Errorf("failed to query content options: %w", err)
	}
	defer rows.Close()

	var records []SectionRecord
	for rows.Next() {
		var name, value string
		if err := rows.Scan(&name, &value); err != nil {
			return nil, fmt.Errorf("failed to scan option row: %w", err)
		}

		pageSlug := strings.TrimPrefix(name, optionContentPrefix)
		sections, err := parseSectionDocument(pageSlug, value)
		if err != nil {
			return nil, fmt.Errorf("option %s: %w", name, err)
		}
		records = append(records, sections...)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating content options: %w", err)
	}
	return records, nil
}

// parseSectionDocument decodes one page's serialized section list. Each
// entry carries its own pageSlug/sectionKey fields; the option name's
// page wins when they disagree, since routing on the legacy site keyed
// off the option name.
func parseSectionDocument(pageSlug, raw string) ([]SectionRecord, error) {
	doc, err := decodePHPValue(raw)
	if err != nil {
		return nil, fmt.Errorf("decoding section document: %w", err)
	}
	list, ok := doc.([]any)
	if !ok {
		return nil, fmt.Errorf("section document is %T, want list", doc)
	}

	records := make([]SectionRecord, 0, len(list))
	for i, entry := range list {
		section, ok := entry.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("section %d is %T, want map", i, entry)
		}
		key, _ := section["sectionKey"].(string)
		if key == "" {
			return nil, fmt.Errorf("section %d has no sectionKey", i)
		}
		content, err := json.Marshal(section["content"])
		if err != nil {
			return nil, fmt.Errorf("section %d: encoding content: %w", i, err)
		}
		records = append(records, SectionRecord{
			PageSlug:   pageSlug,
			SectionKey: key,
			Content:    content,
		})
	}
	return records, nil
}

// Settings reads the pursue_settings option. The legacy plugin stored
// settings as a list of {key, value} pairs.
func (r *Reader) Settings() ([]SettingRecord, error) {
	raw, err := r.option(optionSettings)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query settings option: %w", err)
	}

	doc, err := decodePHPValue(raw)
	if err != nil {
		return nil, fmt.Errorf("decoding settings: %w", err)
	}
	list, ok := doc.([]any)
	if !ok {
		return nil, fmt.Errorf("settings document is %T, want list", doc)
	}

	records := make([]SettingRecord, 0, len(list))
	for i, entry := range list {
		pair, ok := entry.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("setting %d is %T, want map", i, entry)
		}
		key, _ := pair["key"].(string)
		if key == "" {
			return nil, fmt.Errorf("setting %d has no key", i)
		}
		value, err := json.Marshal(pair["value"])
		if err != nil {
			return nil, fmt.Errorf("setting %d: encoding value: %w", i, err)
		}
		records = append(records, SettingRecord{Key: key, Value: value})
	}
	return records, nil
}

// Shortcuts reads the pursue_shortcuts option.
func (r *Reader) Shortcuts() ([]ShortcutRecord, error) {
	raw, err := r.option(optionShortcuts)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query shortcuts option: %w", err)
	}

	doc, err := decodePHPValue(raw)
	if err != nil {
		return nil, fmt.Errorf("decoding shortcuts: %w", err)
	}
	list, ok := doc.([]any)
	if !ok {
		return nil, fmt.Errorf("shortcuts document is %T, want list", doc)
	}

	records := make([]ShortcutRecord, 0, len(list))
	for i, entry := range list {
		m, ok := entry.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("shortcut %d is %T, want map", i, entry)
		}
		rec := ShortcutRecord{
			Title:       stringField(m, "title"),
			Description: stringField(m, "description"),
			Icon:        stringField(m, "icon"),
			Href:        stringField(m, "href"),
			Color:       stringField(m, "color"),
			BgColor:     stringField(m, "bgColor"),
			Position:    intField(m, "order"),
		}
		if rec.Title == "" || rec.Href == "" {
			return nil, fmt.Errorf("shortcut %d is missing title or href", i)
		}
		records = append(records, rec)
	}
	return records, nil
}

// PendingUsers reads accounts the legacy plugin flagged as awaiting an
// access decision. WordPress kept the flag, requested group, and request
// time as separate usermeta rows per user.
func (r *Reader) PendingUsers() ([]PendingUserRecord, error) {
	query := fmt.Sprintf(`
		SELECT u.user_email, u.display_name, u.user_registered,
		       grp.meta_value, at.meta_value
		FROM %susers u
		JOIN %susermeta pending ON pending.user_id = u.ID AND pending.meta_key = ? AND pending.meta_value = '1'
		LEFT JOIN %susermeta grp ON grp.user_id = u.ID AND grp.meta_key = ?
		LEFT JOIN %susermeta at ON at.user_id = u.ID AND at.meta_key = ?
		ORDER BY u.ID
	`, r.prefix, r.prefix, r.prefix, r.prefix)

	rows, err := r.db.Query(query, metaPending, metaRequestedGroup, metaRequestedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending users: %w", err)
	}
	defer rows.Close()

	var records []PendingUserRecord
	for rows.Next() {
		var (
			email, displayName string
			registered         sql.NullTime
			group, requestedAt sql.NullString
		)
		if err := rows.Scan(&email, &displayName, &registered, &group, &requestedAt); err != nil {
			return nil, fmt.Errorf("failed to scan user row: %w", err)
		}

		first, last := splitName(displayName)
		rec := PendingUserRecord{
			Email:          email,
			FirstName:      first,
			LastName:       last,
			RequestedGroup: group.String,
			RequestedAt:    parseRequestTime(requestedAt.String, registered),
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating pending users: %w", err)
	}
	return records, nil
}

// splitName divides a WordPress display_name into first and last parts
// at the first space.
func splitName(displayName string) (string, string) {
	displayName = strings.TrimSpace(displayName)
	if i := strings.IndexByte(displayName, ' '); i >= 0 {
		return displayName[:i], strings.TrimSpace(displayName[i+1:])
	}
	return displayName, ""
}

// parseRequestTime prefers the plugin's unix-timestamp meta, falling
// back to the account's registration time.
func parseRequestTime(meta string, registered sql.NullTime) time.Time {
	if meta != "" {
		var ts int64
		if _, err := fmt.Sscanf(meta, "%d", &ts); err == nil && ts > 0 {
			return time.Unix(ts, 0).UTC()
		}
	}
	if registered.Valid {
		return registered.Time
	}
	return time.Now().UTC()
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

func intField(m map[string]any, key string) int64 {
	switch v := m[key].(type) {
	case int64:
		return v
	case float64:
		return int64(v)
	case string:
		var n int64
		_, _ = fmt.Sscanf(v, "%d", &n)
		return n
	}
	return 0
}
