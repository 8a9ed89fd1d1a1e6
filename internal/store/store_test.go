// Copyright (c) 2025-2026 PursueGen
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/pursuegen/pursue-go/internal/model"
)

// testDB creates a temporary test database.
func testDB(t *testing.T) (*sql.DB, func()) {
	t.Helper()

	f, err := os.CreateTemp("", "pursue-test-*.db")
	if err != nil {
		t.Fatalf("creating temp file: %v", err)
	}
	dbPath := f.Name()
	f.Close()

	db, err := NewDB(dbPath)
	if err != nil {
		os.Remove(dbPath)
		t.Fatalf("NewDB: %v", err)
	}

	if err := Migrate(db); err != nil {
		db.Close()
		os.Remove(dbPath)
		t.Fatalf("Migrate: %v", err)
	}

	cleanup := func() {
		db.Close()
		os.Remove(dbPath)
	}

	return db, cleanup
}

func TestCreateUser(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	q := New(db)

	now := time.Now()
	user, err := q.CreateUser(ctx, CreateUserParams{
		Email:          "test@example.com",
		PasswordHash:   "hashed-password",
		FirstName:      "Test",
		LastName:       "User",
		Pending:        true,
		RequestedGroup: string(model.RoleHighSchoolBoys),
		CreatedAt:      now,
		UpdatedAt:      now,
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	if user.ID == 0 {
		t.Error("user.ID should not be 0")
	}
	if user.Email != "test@example.com" {
		t.Errorf("Email = %q, want %q", user.Email, "test@example.com")
	}
	if !user.Pending {
		t.Error("Pending = false, want true")
	}
	if got := user.Role(); got != model.RolePending {
		t.Errorf("Role() = %q, want %q", got, model.RolePending)
	}
}

func TestGetUserByEmail(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	q := New(db)

	now := time.Now()
	created, err := q.CreateUser(ctx, CreateUserParams{
		Email:        "leader@example.com",
		PasswordHash: "hash",
		LeaderGrant:  true,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	found, err := q.GetUserByEmail(ctx, "leader@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail: %v", err)
	}
	if found.ID != created.ID {
		t.Errorf("ID = %d, want %d", found.ID, created.ID)
	}
	if got := found.Role(); got != model.RoleAdminLeader {
		t.Errorf("Role() = %q, want %q", got, model.RoleAdminLeader)
	}

	_, err = q.GetUserByEmail(ctx, "missing@example.com")
	if !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("err = %v, want sql.ErrNoRows", err)
	}
}

func TestUpdateUserAccess(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	q := New(db)

	now := time.Now()
	user, err := q.CreateUser(ctx, CreateUserParams{
		Email:        "member@example.com",
		PasswordHash: "hash",
		Pending:      true,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	err = q.UpdateUserAccess(ctx, UpdateUserAccessParams{
		ID:        user.ID,
		GroupRole: string(model.RoleMiddleSchoolGirls),
		UpdatedAt: time.Now(),
	})
	if err != nil {
		t.Fatalf("UpdateUserAccess: %v", err)
	}

	updated, err := q.GetUserByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetUserByID: %v", err)
	}
	if updated.Pending {
		t.Error("Pending = true, want false")
	}
	if got := updated.Role(); got != model.RoleMiddleSchoolGirls {
		t.Errorf("Role() = %q, want %q", got, model.RoleMiddleSchoolGirls)
	}
}

func TestConsumeApprovalToken_SingleUse(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	q := New(db)

	now := time.Now()
	user, err := q.CreateUser(ctx, CreateUserParams{
		Email:        "pending@example.com",
		PasswordHash: "hash",
		Pending:      true,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	token, err := model.MintApprovalToken(user.ID)
	if err != nil {
		t.Fatalf("MintApprovalToken: %v", err)
	}
	if err := q.SetApprovalToken(ctx, user.ID, token.SecretHash, now); err != nil {
		t.Fatalf("SetApprovalToken: %v", err)
	}

	ok, err := q.ConsumeApprovalToken(ctx, user.ID, token.SecretHash, time.Now())
	if err != nil {
		t.Fatalf("ConsumeApprovalToken: %v", err)
	}
	if !ok {
		t.Fatal("first consume should succeed")
	}

	ok, err = q.ConsumeApprovalToken(ctx, user.ID, token.SecretHash, time.Now())
	if err != nil {
		t.Fatalf("ConsumeApprovalToken: %v", err)
	}
	if ok {
		t.Error("second consume should fail")
	}

	updated, err := q.GetUserByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetUserByID: %v", err)
	}
	if updated.ApprovalTokenHash.Valid {
		t.Error("token hash should be cleared after consumption")
	}
	if !updated.TokenConsumedAt.Valid {
		t.Error("token_consumed_at should be set")
	}
}

func TestConsumeApprovalToken_WrongHash(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	q := New(db)

	now := time.Now()
	user, err := q.CreateUser(ctx, CreateUserParams{
		Email:        "pending2@example.com",
		PasswordHash: "hash",
		Pending:      true,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if err := q.SetApprovalToken(ctx, user.ID, "real-hash", now); err != nil {
		t.Fatalf("SetApprovalToken: %v", err)
	}

	ok, err := q.ConsumeApprovalToken(ctx, user.ID, "bogus-hash", time.Now())
	if err != nil {
		t.Fatalf("ConsumeApprovalToken: %v", err)
	}
	if ok {
		t.Error("consume with wrong hash should fail")
	}

	updated, err := q.GetUserByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetUserByID: %v", err)
	}
	if !updated.ApprovalTokenHash.Valid {
		t.Error("stored token hash should survive a failed consume")
	}
}

func TestUpsertSection(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	q := New(db)

	first, err := q.UpsertSection(ctx, UpsertSectionParams{
		PageSlug:   "home",
		SectionKey: "hero",
		Content:    json.RawMessage(`{"title":"Welcome"}`),
		UpdatedAt:  time.Now(),
	})
	if err != nil {
		t.Fatalf("UpsertSection: %v", err)
	}
	if first.ID == 0 {
		t.Error("section.ID should not be 0")
	}

	second, err := q.UpsertSection(ctx, UpsertSectionParams{
		PageSlug:   "home",
		SectionKey: "hero",
		Content:    json.RawMessage(`{"title":"Updated"}`),
		UpdatedAt:  time.Now(),
	})
	if err != nil {
		t.Fatalf("UpsertSection (second): %v", err)
	}

	if second.ID != first.ID {
		t.Errorf("second upsert created a new row: ID %d, want %d", second.ID, first.ID)
	}
	if string(second.Content) != `{"title":"Updated"}` {
		t.Errorf("Content = %s, want updated value", second.Content)
	}

	sections, err := q.ListSectionsByPage(ctx, "home")
	if err != nil {
		t.Fatalf("ListSectionsByPage: %v", err)
	}
	if len(sections) != 1 {
		t.Errorf("len(sections) = %d, want 1", len(sections))
	}
}

func TestUpsertSection_ConcurrentFirstWrite(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	q := New(db)

	const writers = 8
	var wg sync.WaitGroup
	errs := make(chan error, writers)

	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			content, _ := json.Marshal(map[string]int{"writer": n})
			_, err := q.UpsertSection(ctx, UpsertSectionParams{
				PageSlug:   "events",
				SectionKey: "calendar",
				Content:    content,
				UpdatedAt:  time.Now(),
			})
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

	sections, err := q.ListSectionsByPage(ctx, "events")
	if err != nil {
		t.Fatalf("ListSectionsByPage: %v", err)
	}
	if len(sections) != 1 {
		t.Errorf("len(sections) = %d, want exactly 1 row after %d concurrent writers", len(sections), writers)
	}
}

func TestListSectionsByPage_UnknownPage(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	sections, err := New(db).ListSectionsByPage(context.Background(), "no-such-page")
	if err != nil {
		t.Fatalf("ListSectionsByPage: %v", err)
	}
	if len(sections) != 0 {
		t.Errorf("len(sections) = %d, want 0", len(sections))
	}
}

func TestUpsertSetting(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	q := New(db)

	first, err := q.UpsertSetting(ctx, "site_name", json.RawMessage(`"Grace Community Church"`), time.Now())
	if err != nil {
		t.Fatalf("UpsertSetting: %v", err)
	}

	second, err := q.UpsertSetting(ctx, "site_name", json.RawMessage(`"Hope Fellowship"`), time.Now())
	if err != nil {
		t.Fatalf("UpsertSetting (second): %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("second upsert created a new row: ID %d, want %d", second.ID, first.ID)
	}
	if string(second.Value) != `"Hope Fellowship"` {
		t.Errorf("Value = %s, want %q", second.Value, `"Hope Fellowship"`)
	}

	settings, err := q.ListSettings(ctx)
	if err != nil {
		t.Fatalf("ListSettings: %v", err)
	}
	if len(settings) != 1 {
		t.Errorf("len(settings) = %d, want 1", len(settings))
	}
}

func TestShortcuts_Ordering(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	q := New(db)

	for _, s := range []CreateShortcutParams{
		{Title: "Settings", Href: "/leader/settings", Position: 3},
		{Title: "Home Page", Href: "/leader/home", Position: 1},
		{Title: "Events", Href: "/leader/events", Position: 2},
	} {
		if _, err := q.CreateShortcut(ctx, s); err != nil {
			t.Fatalf("CreateShortcut: %v", err)
		}
	}

	shortcuts, err := q.ListShortcuts(ctx)
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
}

func TestUpsertEventByPCOID(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	q := New(db)

	now := time.Now()
	err := q.UpsertEventByPCOID(ctx, UpsertEventByPCOIDParams{
		Title:     "Worship Night",
		Date:      now.AddDate(0, 0, 7),
		TimeLabel: "7:00 PM",
		PCOID:     "pco-123",
		CreatedAt: now,
	})
	if err != nil {
		t.Fatalf("UpsertEventByPCOID: %v", err)
	}

	err = q.UpsertEventByPCOID(ctx, UpsertEventByPCOIDParams{
		Title:     "Worship Night (Rescheduled)",
		Date:      now.AddDate(0, 0, 8),
		TimeLabel: "8:00 PM",
		PCOID:     "pco-123",
		CreatedAt: now,
	})
	if err != nil {
		t.Fatalf("UpsertEventByPCOID (second): %v", err)
	}

	events, err := q.ListEvents(ctx)
	if err != nil {
		t.Fatalf("ListEvents: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("len(events) = %d, want 1", len(events))
	}
	if events[0].Title != "Worship Night (Rescheduled)" {
		t.Errorf("Title = %q, want updated title", events[0].Title)
	}
	if !events[0].IsPlanningCenter {
		t.Error("IsPlanningCenter = false, want true")
	}
}

func TestSeed(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()

	if err := Seed(ctx, db); err != nil {
		t.Fatalf("Seed: %v", err)
	}
	// Second run is a no-op.
	if err := Seed(ctx, db); err != nil {
		t.Fatalf("Seed (second): %v", err)
	}

	q := New(db)
	admin, err := q.GetUserByEmail(ctx, DefaultAdminEmail)
	if err != nil {
		t.Fatalf("GetUserByEmail: %v", err)
	}
	if !admin.IsAdmin {
		t.Error("seeded admin should have is_admin set")
	}
	if got := admin.Role(); got != model.RoleAdminLeader {
		t.Errorf("Role() = %q, want %q", got, model.RoleAdminLeader)
	}
}

func TestSeedContent(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()

	if err := SeedContent(ctx, db); err != nil {
		t.Fatalf("SeedContent: %v", err)
	}

	q := New(db)
	home, err := q.ListSectionsByPage(ctx, "home")
	if err != nil {
		t.Fatalf("ListSectionsByPage: %v", err)
	}
	if len(home) != 4 {
		t.Errorf("len(home sections) = %d, want 4", len(home))
	}

	// Edits survive a re-seed.
	if _, err := q.UpsertSection(ctx, UpsertSectionParams{
		PageSlug:   "home",
		SectionKey: "hero",
		Content:    json.RawMessage(`{"title":"Edited"}`),
		UpdatedAt:  time.Now(),
	}); err != nil {
		t.Fatalf("UpsertSection: %v", err)
	}
	if err := SeedContent(ctx, db); err != nil {
		t.Fatalf("SeedContent (second): %v", err)
	}
	hero, err := q.GetSection(ctx, "home", "hero")
	if err != nil {
		t.Fatalf("GetSection: %v", err)
	}
	if string(hero.Content) != `{"title":"Edited"}` {
		t.Errorf("Content = %s, re-seed overwrote an edit", hero.Content)
	}
}
