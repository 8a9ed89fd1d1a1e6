// Copyright (c) 2025-2026 PursueGen
// SPDX-License-Identifier: GPL-3.0-or-later

package content

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/pursuegen/pursue-go/internal/cache"
	"github.com/pursuegen/pursue-go/internal/model"
	"github.com/pursuegen/pursue-go/internal/store"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()

	f, err := os.CreateTemp("", "pursue-content-test-*.db")
	if err != nil {
		t.Fatalf("creating temp file: %v", err)
	}
	dbPath := f.Name()
	f.Close()

	db, err := store.NewDB(dbPath)
	if err != nil {
		os.Remove(dbPath)
		t.Fatalf("NewDB: %v", err)
	}
	if err := store.Migrate(db); err != nil {
		db.Close()
		os.Remove(dbPath)
		t.Fatalf("Migrate: %v", err)
	}

	t.Cleanup(func() {
		db.Close()
		os.Remove(dbPath)
	})
	return db
}

// runBackends runs one test against both storage backends. The business
// rules live above the Backend interface, so every behavior must hold
// identically over the relational and option-bag implementations.
func runBackends(t *testing.T, fn func(t *testing.T, backend Backend)) {
	t.Helper()

	t.Run("sql", func(t *testing.T) {
		fn(t, NewSQLBackend(store.New(testDB(t))))
	})
	t.Run("options", func(t *testing.T) {
		fn(t, NewOptionBackend(store.New(testDB(t))))
	})
}

func newTestStore(t *testing.T, backend Backend) *Store {
	t.Helper()
	c := cache.NewMemoryCache(time.Minute, 0)
	t.Cleanup(func() { c.Close() })
	return NewStore(backend, c)
}

func TestUpsertSection_Idempotent(t *testing.T) {
	runBackends(t, func(t *testing.T, backend Backend) {
		s := newTestStore(t, backend)
		ctx := context.Background()

		content := json.RawMessage(`{"title":"Welcome"}`)
		if _, err := s.UpsertSection(ctx, "home", "hero", content); err != nil {
			t.Fatalf("UpsertSection: %v", err)
		}
		if _, err := s.UpsertSection(ctx, "home", "hero", content); err != nil {
			t.Fatalf("UpsertSection (second): %v", err)
		}

		sections, err := s.ListSections(ctx, "home")
		if err != nil {
			t.Fatalf("ListSections: %v", err)
		}
		if len(sections) != 1 {
			t.Fatalf("len(sections) = %d, want 1", len(sections))
		}
		if string(sections[0].Content) != string(content) {
			t.Errorf("Content = %s, want %s", sections[0].Content, content)
		}
	})
}

func TestUpsertSection_Replaces(t *testing.T) {
	runBackends(t, func(t *testing.T, backend Backend) {
		s := newTestStore(t, backend)
		ctx := context.Background()

		if _, err := s.UpsertSection(ctx, "about", "intro", json.RawMessage(`{"title":"Old"}`)); err != nil {
			t.Fatalf("UpsertSection: %v", err)
		}
		if _, err := s.UpsertSection(ctx, "about", "intro", json.RawMessage(`{"title":"New"}`)); err != nil {
			t.Fatalf("UpsertSection (second): %v", err)
		}

		section, err := s.GetSection(ctx, "about", "intro")
		if err != nil {
			t.Fatalf("GetSection: %v", err)
		}
		if string(section.Content) != `{"title":"New"}` {
			t.Errorf("Content = %s, want replaced value", section.Content)
		}
	})
}

func TestListSections_UnknownPage(t *testing.T) {
	runBackends(t, func(t *testing.T, backend Backend) {
		s := newTestStore(t, backend)

		sections, err := s.ListSections(context.Background(), "no-such-page")
		if err != nil {
			t.Fatalf("ListSections: %v", err)
		}
		if len(sections) != 0 {
			t.Errorf("len(sections) = %d, want 0", len(sections))
		}
	})
}

func TestGetSection_NotFound(t *testing.T) {
	runBackends(t, func(t *testing.T, backend Backend) {
		s := newTestStore(t, backend)

		_, err := s.GetSection(context.Background(), "home", "missing")
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("err = %v, want ErrNotFound", err)
		}
	})
}

func TestAlias_HealOnList(t *testing.T) {
	runBackends(t, func(t *testing.T, backend Backend) {
		s := newTestStore(t, backend)
		ctx := context.Background()

		// Legacy key holds content, canonical key absent.
		legacy := json.RawMessage(`{"cards":[{"title":"A"},{"title":"B"}]}`)
		if _, err := backend.UpsertSection(ctx, "home", "featured_cards", legacy); err != nil {
			t.Fatalf("UpsertSection (direct): %v", err)
		}

		sections, err := s.ListSections(ctx, "home")
		if err != nil {
			t.Fatalf("ListSections: %v", err)
		}

		var canonical *model.Section
		for i := range sections {
			if sections[i].SectionKey == "featured" {
				canonical = &sections[i]
			}
		}
		if canonical == nil {
			t.Fatal("canonical key absent from healed list")
		}
		if string(canonical.Content) != string(legacy) {
			t.Errorf("canonical Content = %s, want legacy content", canonical.Content)
		}

		// The repair is persisted, not just synthesized for this read.
		stored, err := backend.GetSection(ctx, "home", "featured")
		if err != nil {
			t.Fatalf("GetSection (direct): %v", err)
		}
		if string(stored.Content) != string(legacy) {
			t.Errorf("stored canonical Content = %s, want legacy content", stored.Content)
		}
	})
}

func TestAlias_HealEmptyCanonical(t *testing.T) {
	runBackends(t, func(t *testing.T, backend Backend) {
		s := newTestStore(t, backend)
		ctx := context.Background()

		legacy := json.RawMessage(`{"cards":[{"title":"A"}]}`)
		if _, err := backend.UpsertSection(ctx, "home", "featured", json.RawMessage(`{}`)); err != nil {
			t.Fatalf("UpsertSection (canonical): %v", err)
		}
		if _, err := backend.UpsertSection(ctx, "home", "featured_cards", legacy); err != nil {
			t.Fatalf("UpsertSection (legacy): %v", err)
		}

		sections, err := s.ListSections(ctx, "home")
		if err != nil {
			t.Fatalf("ListSections: %v", err)
		}
		for _, section := range sections {
			if section.SectionKey == "featured" && string(section.Content) != string(legacy) {
				t.Errorf("canonical Content = %s, want healed legacy content", section.Content)
			}
		}
	})
}

func TestAlias_WriteThrough(t *testing.T) {
	runBackends(t, func(t *testing.T, backend Backend) {
		s := newTestStore(t, backend)
		ctx := context.Background()

		// Writing the canonical key updates the legacy key.
		canonical := json.RawMessage(`{"cards":[{"title":"C"}]}`)
		if _, err := s.UpsertSection(ctx, "home", "featured", canonical); err != nil {
			t.Fatalf("UpsertSection (canonical): %v", err)
		}
		legacy, err := backend.GetSection(ctx, "home", "featured_cards")
		if err != nil {
			t.Fatalf("GetSection (legacy): %v", err)
		}
		if string(legacy.Content) != string(canonical) {
			t.Errorf("legacy Content = %s, want %s", legacy.Content, canonical)
		}

		// And the reverse: writing the legacy key updates the canonical key.
		updated := json.RawMessage(`{"cards":[{"title":"D"}]}`)
		if _, err := s.UpsertSection(ctx, "home", "featured_cards", updated); err != nil {
			t.Fatalf("UpsertSection (legacy): %v", err)
		}
		got, err := backend.GetSection(ctx, "home", "featured")
		if err != nil {
			t.Fatalf("GetSection (canonical): %v", err)
		}
		if string(got.Content) != string(updated) {
			t.Errorf("canonical Content = %s, want %s", got.Content, updated)
		}
	})
}

func TestUpsertSection_ConcurrentFirstWrite(t *testing.T) {
	runBackends(t, func(t *testing.T, backend Backend) {
		s := newTestStore(t, backend)
		ctx := context.Background()

		const writers = 8
		var wg sync.WaitGroup
		errs := make(chan error, writers)
		for i := 0; i < writers; i++ {
			wg.Add(1)
			go func(n int) {
				defer wg.Done()
				content, _ := json.Marshal(map[string]int{"writer": n})
				_, err := s.UpsertSection(ctx, "events", "calendar", content)
				errs <- err
			}(i)
		}
		wg.Wait()
		close(errs)

		for err := range errs {
			if err != nil {
				t.Fatalf("concurrent UpsertSection: %v", err)
			}
		}

		sections, err := s.ListSections(ctx, "events")
		if err != nil {
			t.Fatalf("ListSections: %v", err)
		}
		if len(sections) != 1 {
			t.Errorf("len(sections) = %d, want 1", len(sections))
		}
	})
}

func TestUpdateSettings(t *testing.T) {
	runBackends(t, func(t *testing.T, backend Backend) {
		s := newTestStore(t, backend)
		ctx := context.Background()

		settings, err := s.UpdateSettings(ctx, []model.SettingUpdate{
			{Key: "site_name", Value: json.RawMessage(`"Grace Community Church"`)},
			{Key: "primary_color", Value: json.RawMessage(`"#1e293b"`)},
		})
		if err != nil {
			t.Fatalf("UpdateSettings: %v", err)
		}
		if len(settings) != 2 {
			t.Fatalf("len(settings) = %d, want 2", len(settings))
		}

		// Key uniqueness: updating an existing key replaces, never duplicates.
		settings, err = s.UpdateSettings(ctx, []model.SettingUpdate{
			{Key: "site_name", Value: json.RawMessage(`"Hope Fellowship"`)},
		})
		if err != nil {
			t.Fatalf("UpdateSettings (second): %v", err)
		}
		if len(settings) != 2 {
			t.Fatalf("len(settings) = %d, want 2 after re-update", len(settings))
		}
		for _, setting := range settings {
			if setting.Key == "site_name" && string(setting.Value) != `"Hope Fellowship"` {
				t.Errorf("site_name = %s, want replaced value", setting.Value)
			}
		}
	})
}

func TestShortcuts_OrderedList(t *testing.T) {
	runBackends(t, func(t *testing.T, backend Backend) {
		s := newTestStore(t, backend)
		ctx := context.Background()

		for _, shortcut := range []model.Shortcut{
			{Title: "Settings", Href: "/leader/settings", Position: 3},
			{Title: "Home Page", Href: "/leader/home", Position: 1},
			{Title: "Events", Href: "/leader/events", Position: 2},
		} {
			if _, err := s.CreateShortcut(ctx, shortcut); err != nil {
				t.Fatalf("CreateShortcut: %v", err)
			}
		}

		shortcuts, err := s.ListShortcuts(ctx)
		if err != nil {
			t.Fatalf("ListShortcuts: %v", err)
		}
		want := []string{"Home Page", "Events", "Settings"}
		if len(shortcuts) != len(want) {
			t.Fatalf("len(shortcuts) = %d, want %d", len(shortcuts), len(want))
		}
		for i, title := range want {
			if shortcuts[i].Title != title {
				t.Errorf("shortcuts[%d].Title = %q, want %q", i, shortcuts[i].Title, title)
			}
		}

		if err := s.DeleteShortcut(ctx, shortcuts[0].ID); err != nil {
			t.Fatalf("DeleteShortcut: %v", err)
		}
		remaining, err := s.ListShortcuts(ctx)
		if err != nil {
			t.Fatalf("ListShortcuts (after delete): %v", err)
		}
		if len(remaining) != 2 {
			t.Errorf("len(shortcuts) = %d after delete, want 2", len(remaining))
		}
	})
}

func TestListSections_CacheInvalidatedOnWrite(t *testing.T) {
	runBackends(t, func(t *testing.T, backend Backend) {
		s := newTestStore(t, backend)
		ctx := context.Background()

		if _, err := s.UpsertSection(ctx, "home", "hero", json.RawMessage(`{"title":"First"}`)); err != nil {
			t.Fatalf("UpsertSection: %v", err)
		}
		if _, err := s.ListSections(ctx, "home"); err != nil {
			t.Fatalf("ListSections: %v", err)
		}

		if _, err := s.UpsertSection(ctx, "home", "hero", json.RawMessage(`{"title":"Second"}`)); err != nil {
			t.Fatalf("UpsertSection (second): %v", err)
		}

		sections, err := s.ListSections(ctx, "home")
		if err != nil {
			t.Fatalf("ListSections (after write): %v", err)
		}
		for _, section := range sections {
			if section.SectionKey == "hero" && string(section.Content) != `{"title":"Second"}` {
				t.Errorf("Content = %s, cached stale value survived a write", section.Content)
			}
		}
	})
}
