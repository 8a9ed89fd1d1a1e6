// Copyright (c) 2025-2026 PursueGen
// SPDX-License-Identifier: GPL-3.0-or-later

package transfer

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pursuegen/pursue-go/internal/cache"
	"github.com/pursuegen/pursue-go/internal/content"
	"github.com/pursuegen/pursue-go/internal/store"
)

// fakeSource serves fixtures in place of a live WordPress database.
type fakeSource struct {
	sections  []SectionRecord
	settings  []SettingRecord
	shortcuts []ShortcutRecord
	users     []PendingUserRecord
}

func (f *fakeSource) Sections() ([]SectionRecord, error)         { return f.sections, nil }
func (f *fakeSource) Settings() ([]SettingRecord, error)         { return f.settings, nil }
func (f *fakeSource) Shortcuts() ([]ShortcutRecord, error)       { return f.shortcuts, nil }
func (f *fakeSource) PendingUsers() ([]PendingUserRecord, error) { return f.users, nil }

type importEnv struct {
	queries *store.Queries
	content *content.Store
}

func newImportEnv(t *testing.T) *importEnv {
	t.Helper()

	db, err := store.NewDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, store.Migrate(db))

	queries := store.New(db)
	memCache := cache.NewMemoryCache(time.Minute, 100)
	t.Cleanup(func() { _ = memCache.Close() })

	return &importEnv{
		queries: queries,
		content: content.NewStore(content.NewSQLBackend(queries), memCache),
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func legacyFixture() *fakeSource {
	return &fakeSource{
		sections: []SectionRecord{
			{PageSlug: "home", SectionKey: "hero", Content: json.RawMessage(`{"title":"Welcome"}`)},
			{PageSlug: "about", SectionKey: "intro", Content: json.RawMessage(`{"body":"Who we are"}`)},
		},
		settings: []SettingRecord{
			{Key: "site_name", Value: json.RawMessage(`"Grace Community Church"`)},
			{Key: "primary_color", Value: json.RawMessage(`"#1e293b"`)},
		},
		shortcuts: []ShortcutRecord{
			{Title: "Home Page", Href: "/leader/home", Icon: "LayoutTemplate", Position: 1},
		},
		users: []PendingUserRecord{
			{
				Email:          "newleader@example.com",
				FirstName:      "Jordan",
				LastName:       "Lee",
				RequestedGroup: "highschoolboy",
				RequestedAt:    time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
			},
		},
	}
}

func TestImport_FullRun(t *testing.T) {
	env := newImportEnv(t)
	importer := NewImporter(legacyFixture(), env.content, env.queries, testLogger())
	ctx := context.Background()

	result, err := importer.Import(ctx, DefaultImportOptions())
	require.NoError(t, err)
	require.True(t, result.Success, "errors: %v", result.Errors)

	assert.Equal(t, 2, result.Created["sections"])
	assert.Equal(t, 2, result.Created["settings"])
	assert.Equal(t, 1, result.Created["shortcuts"])
	assert.Equal(t, 1, result.Created["users"])

	section, err := env.content.GetSection(ctx, "home", "hero")
	require.NoError(t, err)
	assert.JSONEq(t, `{"title":"Welcome"}`, string(section.Content))

	shortcuts, err := env.content.ListShortcuts(ctx)
	require.NoError(t, err)
	require.Len(t, shortcuts, 1)
	assert.Equal(t, "/leader/home", shortcuts[0].Href)

	user, err := env.queries.GetUserByEmail(ctx, "newleader@example.com")
	require.NoError(t, err)
	assert.True(t, user.Pending)
	assert.Equal(t, "highschoolboy", user.RequestedGroup)
	assert.Equal(t, "Jordan", user.FirstName)
	assert.NotEmpty(t, user.PasswordHash)
}

func TestImport_DryRun(t *testing.T) {
	env := newImportEnv(t)
	importer := NewImporter(legacyFixture(), env.content, env.queries, testLogger())
	ctx := context.Background()

	opts := DefaultImportOptions()
	opts.DryRun = true
	result, err := importer.Import(ctx, opts)
	require.NoError(t, err)
	assert.True(t, result.DryRun)
	assert.Equal(t, 6, result.TotalCreated())

	// Nothing written
	_, err = env.content.GetSection(ctx, "home", "hero")
	assert.ErrorIs(t, err, content.ErrNotFound)
	shortcuts, err := env.content.ListShortcuts(ctx)
	require.NoError(t, err)
	assert.Empty(t, shortcuts)
}

func TestImport_Rerun(t *testing.T) {
	env := newImportEnv(t)
	importer := NewImporter(legacyFixture(), env.content, env.queries, testLogger())
	ctx := context.Background()

	_, err := importer.Import(ctx, DefaultImportOptions())
	require.NoError(t, err)

	result, err := importer.Import(ctx, DefaultImportOptions())
	require.NoError(t, err)
	require.True(t, result.Success, "errors: %v", result.Errors)

	// Sections overwrite in place, shortcuts and users are matched and
	// left alone.
	assert.Equal(t, 0, result.Created["sections"])
	assert.Equal(t, 2, result.Updated["sections"])
	assert.Equal(t, 1, result.Skipped["shortcuts"])
	assert.Equal(t, 1, result.Skipped["users"])

	shortcuts, err := env.content.ListShortcuts(ctx)
	require.NoError(t, err)
	assert.Len(t, shortcuts, 1)
}

func TestImport_UnknownRequestedGroupCleared(t *testing.T) {
	env := newImportEnv(t)
	src := &fakeSource{
		users: []PendingUserRecord{
			{Email: "odd@example.com", FirstName: "Sam", RequestedGroup: "collegegroup"},
		},
	}
	importer := NewImporter(src, env.content, env.queries, testLogger())
	ctx := context.Background()

	result, err := importer.Import(ctx, DefaultImportOptions())
	require.NoError(t, err)
	require.True(t, result.Success)

	user, err := env.queries.GetUserByEmail(ctx, "odd@example.com")
	require.NoError(t, err)
	assert.True(t, user.Pending)
	assert.Empty(t, user.RequestedGroup)
}

func TestImport_SelectiveOptions(t *testing.T) {
	env := newImportEnv(t)
	importer := NewImporter(legacyFixture(), env.content, env.queries, testLogger())
	ctx := context.Background()

	result, err := importer.Import(ctx, ImportOptions{ImportContent: true})
	require.NoError(t, err)

	assert.Equal(t, 2, result.Created["sections"])
	assert.Zero(t, result.Created["users"])

	shortcuts, err := env.content.ListShortcuts(ctx)
	require.NoError(t, err)
	assert.Empty(t, shortcuts)
}

func TestImportResult_Operations(t *testing.T) {
	result := NewImportResult(false)

	assert.True(t, result.Success)
	assert.Empty(t, result.Errors)

	result.IncrementCreated("sections")
	result.IncrementCreated("sections")
	result.IncrementUpdated("sections")
	result.IncrementSkipped("users")

	assert.Equal(t, 2, result.TotalCreated())
	assert.Equal(t, 1, result.TotalUpdated())
	assert.Equal(t, 1, result.TotalSkipped())

	result.AddError("user", "x@example.com", "boom")
	assert.False(t, result.Success)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "user", result.Errors[0].Entity)
}
