// Copyright (c) 2025-2026 PursueGen
// SPDX-License-Identifier: GPL-3.0-or-later

package access

import (
	"context"
	"database/sql"
	"errors"
	"net/url"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/pursuegen/pursue-go/internal/model"
	"github.com/pursuegen/pursue-go/internal/notify"
	"github.com/pursuegen/pursue-go/internal/store"
)

// fakeNotifier captures the approval email.
type fakeNotifier struct {
	mu       sync.Mutex
	messages []notify.Message
}

func (f *fakeNotifier) Send(_ context.Context, msg notify.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, msg)
	return nil
}

func (f *fakeNotifier) last(t *testing.T) notify.Message {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.messages) == 0 {
		t.Fatal("no notification was sent")
	}
	return f.messages[len(f.messages)-1]
}

func testController(t *testing.T) (*Controller, *store.Queries, *fakeNotifier) {
	t.Helper()

	f, err := os.CreateTemp("", "pursue-access-test-*.db")
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

	queries := store.New(db)
	fake := &fakeNotifier{}
	c := NewController(queries, fake, nil, "https://church.example.com", []string{"admin@example.com"})
	return c, queries, fake
}

func adminUser(t *testing.T, queries *store.Queries) model.User {
	t.Helper()
	now := time.Now()
	user, err := queries.CreateUser(context.Background(), store.CreateUserParams{
		Email:        "platform-admin@example.com",
		PasswordHash: "hash",
		IsAdmin:      true,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		t.Fatalf("CreateUser (admin): %v", err)
	}
	return user
}

// tokenFromEmail extracts the token secret from the emailed approve link.
func tokenFromEmail(t *testing.T, msg notify.Message) string {
	t.Helper()
	for _, line := range strings.Split(msg.Body, "\n") {
		idx := strings.Index(line, "https://")
		if idx < 0 || !strings.Contains(line, "decision=approve") {
			continue
		}
		u, err := url.Parse(strings.TrimSpace(line[idx:]))
		if err != nil {
			t.Fatalf("parsing approve link: %v", err)
		}
		return u.Query().Get("token")
	}
	t.Fatal("approve link not found in email body")
	return ""
}

func TestRegister_CreatesPendingWithToken(t *testing.T) {
	c, queries, fake := testController(t)
	ctx := context.Background()

	user, err := c.Register(ctx, RegisterParams{
		Email:          "New@Example.com",
		Password:       "correct horse battery staple",
		FirstName:      "New",
		LastName:       "Leader",
		RequestedGroup: string(model.RoleMiddleSchoolBoys),
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	if user.Email != "new@example.com" {
		t.Errorf("Email = %q, want lowercased", user.Email)
	}
	if got := user.Role(); got != model.RolePending {
		t.Errorf("Role() = %q, want %q", got, model.RolePending)
	}

	stored, err := queries.GetUserByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetUserByID: %v", err)
	}
	if !stored.ApprovalTokenHash.Valid {
		t.Error("approval token hash should be stored")
	}

	msg := fake.last(t)
	if msg.To[0] != "admin@example.com" {
		t.Errorf("notification went to %v, want the admin list", msg.To)
	}
	secret := tokenFromEmail(t, msg)
	if model.HashApprovalToken(secret) != stored.ApprovalTokenHash.String {
		t.Error("emailed token does not hash to the stored value")
	}
	if strings.Contains(msg.Body, stored.ApprovalTokenHash.String) {
		t.Error("email must carry the secret, never the stored hash")
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	c, _, _ := testController(t)
	ctx := context.Background()

	params := RegisterParams{Email: "dup@example.com", Password: "pw12345678"}
	if _, err := c.Register(ctx, params); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if _, err := c.Register(ctx, params); !errors.Is(err, ErrEmailTaken) {
		t.Errorf("err = %v, want ErrEmailTaken", err)
	}
}

func TestResolve_ApproveGrantsRequestedGroup(t *testing.T) {
	c, queries, fake := testController(t)
	ctx := context.Background()
	admin := adminUser(t, queries)

	user, err := c.Register(ctx, RegisterParams{
		Email:          "girl-leader@example.com",
		Password:       "pw12345678",
		RequestedGroup: string(model.RoleHighSchoolGirls),
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	secret := tokenFromEmail(t, fake.last(t))

	if err := c.Resolve(ctx, &admin, user.ID, secret, DecisionApprove); err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	updated, err := queries.GetUserByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetUserByID: %v", err)
	}
	if got := updated.Role(); got != model.RoleHighSchoolGirls {
		t.Errorf("Role() = %q, want %q", got, model.RoleHighSchoolGirls)
	}
	if updated.ApprovalTokenHash.Valid {
		t.Error("token should be destroyed on use")
	}
}

func TestResolve_ApproveWithoutGroupGrantsLeader(t *testing.T) {
	c, queries, fake := testController(t)
	ctx := context.Background()
	admin := adminUser(t, queries)

	user, err := c.Register(ctx, RegisterParams{
		Email:    "leader@example.com",
		Password: "pw12345678",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	secret := tokenFromEmail(t, fake.last(t))

	if err := c.Resolve(ctx, &admin, user.ID, secret, DecisionApprove); err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	updated, _ := queries.GetUserByID(ctx, user.ID)
	if got := updated.Role(); got != model.RoleAdminLeader {
		t.Errorf("Role() = %q, want %q", got, model.RoleAdminLeader)
	}
}

func TestResolve_Deny(t *testing.T) {
	c, queries, fake := testController(t)
	ctx := context.Background()
	admin := adminUser(t, queries)

	user, err := c.Register(ctx, RegisterParams{Email: "no@example.com", Password: "pw12345678"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	secret := tokenFromEmail(t, fake.last(t))

	if err := c.Resolve(ctx, &admin, user.ID, secret, DecisionDeny); err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	updated, _ := queries.GetUserByID(ctx, user.ID)
	if got := updated.Role(); got != model.RoleDenied {
		t.Errorf("Role() = %q, want %q", got, model.RoleDenied)
	}
}

func TestResolve_FailuresAreUniform(t *testing.T) {
	c, queries, fake := testController(t)
	ctx := context.Background()
	admin := adminUser(t, queries)

	user, err := c.Register(ctx, RegisterParams{Email: "probe@example.com", Password: "pw12345678"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	secret := tokenFromEmail(t, fake.last(t))

	leader := model.User{ID: 999, LeaderGrant: true}

	cases := []struct {
		name     string
		actor    *model.User
		userID   int64
		secret   string
		decision Decision
	}{
		{"unauthenticated", nil, user.ID, secret, DecisionApprove},
		{"non-administrator actor", &leader, user.ID, secret, DecisionApprove},
		{"wrong token", &admin, user.ID, "not-the-token", DecisionApprove},
		{"unknown user", &admin, 424242, secret, DecisionApprove},
		{"bad decision", &admin, user.ID, secret, Decision("promote")},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := c.Resolve(ctx, tc.actor, tc.userID, tc.secret, tc.decision); !errors.Is(err, ErrForbidden) {
				t.Errorf("err = %v, want ErrForbidden", err)
			}
		})
	}

	// No failure consumed the token or changed state.
	stored, _ := queries.GetUserByID(ctx, user.ID)
	if !stored.ApprovalTokenHash.Valid {
		t.Error("token should survive failed attempts")
	}
	if got := stored.Role(); got != model.RolePending {
		t.Errorf("Role() = %q after failures, want %q", got, model.RolePending)
	}
}

func TestResolve_TokenSingleUse(t *testing.T) {
	c, queries, fake := testController(t)
	ctx := context.Background()
	admin := adminUser(t, queries)

	user, err := c.Register(ctx, RegisterParams{Email: "once@example.com", Password: "pw12345678"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	secret := tokenFromEmail(t, fake.last(t))

	if err := c.Resolve(ctx, &admin, user.ID, secret, DecisionApprove); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	// Replaying the same link, even flipping the decision, fails closed.
	if err := c.Resolve(ctx, &admin, user.ID, secret, DecisionDeny); !errors.Is(err, ErrForbidden) {
		t.Errorf("replay err = %v, want ErrForbidden", err)
	}

	updated, _ := queries.GetUserByID(ctx, user.ID)
	if got := updated.Role(); got != model.RoleAdminLeader {
		t.Errorf("Role() = %q, replay must not change the decision", got)
	}
}

func TestSetRole_Guardrails(t *testing.T) {
	c, queries, _ := testController(t)
	ctx := context.Background()
	admin := adminUser(t, queries)

	now := time.Now()
	leader, err := queries.CreateUser(ctx, store.CreateUserParams{
		Email: "leader@example.com", PasswordHash: "hash", LeaderGrant: true,
		CreatedAt: now, UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	member, err := queries.CreateUser(ctx, store.CreateUserParams{
		Email: "member@example.com", PasswordHash: "hash",
		GroupRole: string(model.RoleMiddleSchoolBoys),
		CreatedAt: now, UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	// Happy path: leader promotes a group member.
	updated, err := c.SetRole(ctx, &leader, member.ID, model.RoleAdminLeader)
	if err != nil {
		t.Fatalf("SetRole: %v", err)
	}
	if got := updated.Role(); got != model.RoleAdminLeader {
		t.Errorf("Role() = %q, want %q", got, model.RoleAdminLeader)
	}

	// Administrator accounts are never valid targets.
	if _, err := c.SetRole(ctx, &leader, admin.ID, model.RoleDenied); !errors.Is(err, ErrProtectedUser) {
		t.Errorf("err = %v, want ErrProtectedUser", err)
	}

	// Self-targeting is rejected.
	if _, err := c.SetRole(ctx, &leader, leader.ID, model.RoleDenied); !errors.Is(err, ErrSelfTarget) {
		t.Errorf("err = %v, want ErrSelfTarget", err)
	}

	// A non-editor cannot change roles.
	pending := model.User{ID: member.ID, Pending: true}
	if _, err := c.SetRole(ctx, &pending, leader.ID, model.RoleDenied); !errors.Is(err, ErrForbidden) {
		t.Errorf("err = %v, want ErrForbidden", err)
	}

	// The administrator super-role is not assignable.
	if _, err := c.SetRole(ctx, &leader, member.ID, model.Role("administrator")); !errors.Is(err, ErrInvalidRole) {
		t.Errorf("err = %v, want ErrInvalidRole", err)
	}
}

func TestInvite(t *testing.T) {
	c, queries, _ := testController(t)
	ctx := context.Background()
	admin := adminUser(t, queries)

	user, err := c.Invite(ctx, &admin, InviteParams{
		Email:     "Invited@Example.com",
		FirstName: "Casey",
		LastName:  "Nguyen",
		Role:      model.RoleMiddleSchoolGirls,
	})
	if err != nil {
		t.Fatalf("Invite: %v", err)
	}
	if user.Email != "invited@example.com" {
		t.Errorf("email = %q, want lowercased", user.Email)
	}
	if got := user.Role(); got != model.RoleMiddleSchoolGirls {
		t.Errorf("Role() = %q, want %q", got, model.RoleMiddleSchoolGirls)
	}
	if user.Pending {
		t.Error("invited account must not be pending")
	}

	// Duplicate email.
	if _, err := c.Invite(ctx, &admin, InviteParams{
		Email: "invited@example.com", FirstName: "A", LastName: "B",
		Role: model.RoleAdminLeader,
	}); !errors.Is(err, ErrEmailTaken) {
		t.Errorf("err = %v, want ErrEmailTaken", err)
	}

	// Only editing and group roles can be granted directly.
	if _, err := c.Invite(ctx, &admin, InviteParams{
		Email: "other@example.com", Role: model.RoleDenied,
	}); !errors.Is(err, ErrInvalidRole) {
		t.Errorf("err = %v, want ErrInvalidRole", err)
	}

	// A non-editor cannot invite.
	viewer := model.User{ID: 99, GroupRole: string(model.RoleHighSchoolBoys)}
	if _, err := c.Invite(ctx, &viewer, InviteParams{
		Email: "nope@example.com", Role: model.RoleAdminLeader,
	}); !errors.Is(err, ErrForbidden) {
		t.Errorf("err = %v, want ErrForbidden", err)
	}
}

func TestDeleteUser_Guardrails(t *testing.T) {
	c, queries, _ := testController(t)
	ctx := context.Background()
	admin := adminUser(t, queries)

	now := time.Now()
	leader, err := queries.CreateUser(ctx, store.CreateUserParams{
		Email: "leader@example.com", PasswordHash: "hash", LeaderGrant: true,
		CreatedAt: now, UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	member, err := queries.CreateUser(ctx, store.CreateUserParams{
		Email: "member@example.com", PasswordHash: "hash",
		CreatedAt: now, UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	if err := c.DeleteUser(ctx, &leader, admin.ID); !errors.Is(err, ErrProtectedUser) {
		t.Errorf("err = %v, want ErrProtectedUser", err)
	}
	if err := c.DeleteUser(ctx, &leader, leader.ID); !errors.Is(err, ErrSelfTarget) {
		t.Errorf("err = %v, want ErrSelfTarget", err)
	}

	if err := c.DeleteUser(ctx, &leader, member.ID); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}
	if _, err := queries.GetUserByID(ctx, member.ID); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("err = %v, want sql.ErrNoRows after delete", err)
	}
}
