// Copyright (c) 2025-2026 PursueGen
// SPDX-License-Identifier: GPL-3.0-or-later

// Package access implements the account lifecycle: self-registration into
// a pending state, token-gated approval or denial by an administrator,
// direct role management, and the guardrails around both.
package access

import (
	"context"
	"crypto/subtle"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pursuegen/pursue-go/internal/auth"
	"github.com/pursuegen/pursue-go/internal/model"
	"github.com/pursuegen/pursue-go/internal/notify"
	"github.com/pursuegen/pursue-go/internal/store"
)

var (
	// ErrForbidden covers every precondition failure on the token-gated
	// approval path. It is deliberately uniform: a caller probing with a
	// bad token, a consumed token, or a wrong user id learns nothing about
	// which check failed.
	ErrForbidden = errors.New("forbidden")

	// ErrEmailTaken is returned when registering an email that already
	// has an account.
	ErrEmailTaken = errors.New("email already registered")

	// ErrProtectedUser is returned when a role change or deletion targets
	// a platform administrator account.
	ErrProtectedUser = errors.New("administrator accounts cannot be modified here")

	// ErrSelfTarget is returned when an actor tries to change or delete
	// their own account through the management path.
	ErrSelfTarget = errors.New("own account cannot be modified here")

	// ErrInvalidRole is returned for a role outside the assignable set.
	ErrInvalidRole = errors.New("role is not assignable")
)

// Decision is the outcome an approval link encodes.
type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionDeny    Decision = "deny"
)

// Controller drives all account state transitions. Every mutating
// endpoint in the system authorizes through it, directly or via the
// session middleware that resolves the same role rules.
type Controller struct {
	queries  *store.Queries
	notifier notify.Notifier
	logger   *slog.Logger

	baseURL     string
	adminEmails []string
}

// NewController builds a Controller. baseURL is the externally reachable
// site root used in approval links; adminEmails receives the requests.
func NewController(queries *store.Queries, notifier notify.Notifier, logger *slog.Logger, baseURL string, adminEmails []string) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		queries:     queries,
		notifier:    notifier,
		logger:      logger,
		baseURL:     strings.TrimRight(baseURL, "/"),
		adminEmails: adminEmails,
	}
}

// RegisterParams is a self-registration request.
type RegisterParams struct {
	Email          string
	Password       string
	FirstName      string
	LastName       string
	RequestedGroup string
}

// Register creates a pending account, mints its single-use approval
// token, and dispatches the approve/deny links to the administrators.
// The new account holds no access until a decision is made.
func (c *Controller) Register(ctx context.Context, params RegisterParams) (model.User, error) {
	email := strings.ToLower(strings.TrimSpace(params.Email))
	if email == "" || params.Password == "" {
		return model.User{}, errors.New("email and password are required")
	}

	if _, err := c.queries.GetUserByEmail(ctx, email); err == nil {
		return model.User{}, ErrEmailTaken
	} else if !errors.Is(err, sql.ErrNoRows) {
		return model.User{}, fmt.Errorf("checking email: %w", err)
	}

	passwordHash, err := auth.HashPassword(params.Password)
	if err != nil {
		return model.User{}, fmt.Errorf("hashing password: %w", err)
	}

	requestedGroup := ""
	if model.IsGroupRole(model.Role(params.RequestedGroup)) {
		requestedGroup = params.RequestedGroup
	}

	now := time.Now()
	user, err := c.queries.CreateUser(ctx, store.CreateUserParams{
		Email:          email,
		PasswordHash:   passwordHash,
		FirstName:      strings.TrimSpace(params.FirstName),
		LastName:       strings.TrimSpace(params.LastName),
		Pending:        true,
		RequestedGroup: requestedGroup,
		CreatedAt:      now,
		UpdatedAt:      now,
	})
	if err != nil {
		return model.User{}, fmt.Errorf("creating user: %w", err)
	}

	token, err := model.MintApprovalToken(user.ID)
	if err != nil {
		return model.User{}, fmt.Errorf("minting approval token: %w", err)
	}
	if err := c.queries.SetApprovalToken(ctx, user.ID, token.SecretHash, now); err != nil {
		return model.User{}, fmt.Errorf("storing approval token: %w", err)
	}

	msg := notify.ApprovalRequest(user, c.adminEmails,
		c.actionURL(user.ID, token.Secret, DecisionApprove),
		c.actionURL(user.ID, token.Secret, DecisionDeny),
	)
	if err := c.notifier.Send(ctx, msg); err != nil {
		c.logger.Error("dispatching approval request failed", "user_id", user.ID, "error", err)
	}

	c.audit(ctx, model.EventLevelInfo, "access request created", user.ID)
	return user, nil
}

// InviteParams describes an account created directly by a leader.
type InviteParams struct {
	Email     string
	FirstName string
	LastName  string
	Role      model.Role
}

// Invite creates an account with its role already applied, bypassing the
// pending/approval flow. Only the editing role and the view-only group
// roles can be granted this way. The account gets an unusable random
// password; the invitee must reset it before first sign-in.
func (c *Controller) Invite(ctx context.Context, actor *model.User, params InviteParams) (model.User, error) {
	if actor == nil || !actor.CanEdit() {
		return model.User{}, ErrForbidden
	}
	if params.Role != model.RoleAdminLeader && !model.IsGroupRole(params.Role) {
		return model.User{}, ErrInvalidRole
	}

	email := strings.ToLower(strings.TrimSpace(params.Email))
	if email == "" {
		return model.User{}, errors.New("email is required")
	}
	if _, err := c.queries.GetUserByEmail(ctx, email); err == nil {
		return model.User{}, ErrEmailTaken
	} else if !errors.Is(err, sql.ErrNoRows) {
		return model.User{}, fmt.Errorf("checking email: %w", err)
	}

	passwordHash, err := auth.HashPassword(uuid.NewString())
	if err != nil {
		return model.User{}, fmt.Errorf("hashing password: %w", err)
	}

	now := time.Now()
	create := store.CreateUserParams{
		Email:        email,
		PasswordHash: passwordHash,
		FirstName:    strings.TrimSpace(params.FirstName),
		LastName:     strings.TrimSpace(params.LastName),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if params.Role == model.RoleAdminLeader {
		create.LeaderGrant = true
	} else {
		create.GroupRole = string(params.Role)
	}

	user, err := c.queries.CreateUser(ctx, create)
	if err != nil {
		return model.User{}, fmt.Errorf("creating user: %w", err)
	}

	c.logger.Info("user invited",
		"user_id", user.ID,
		"role", string(params.Role),
		"actor_id", actor.ID,
	)
	c.audit(ctx, model.EventLevelInfo, "user invited as "+string(params.Role), user.ID)
	return user, nil
}

// actionURL builds one approval link.
func (c *Controller) actionURL(userID int64, secret string, decision Decision) string {
	q := url.Values{}
	q.Set("user", fmt.Sprint(userID))
	q.Set("token", secret)
	q.Set("decision", string(decision))
	return fmt.Sprintf("%s/access/action?%s", c.baseURL, q.Encode())
}

// Resolve applies an approval-link decision to a pending account.
//
// Preconditions, checked in order: the actor must be an authenticated
// platform administrator (holding the link alone is not enough), the
// presented token must match the stored hash under constant-time
// comparison, and the token must not have been consumed. The consume step
// is a compare-and-clear keyed on the hash, so of any number of
// concurrent calls with the same token exactly one proceeds. Every
// failure is reported as ErrForbidden with no state change.
func (c *Controller) Resolve(ctx context.Context, actor *model.User, userID int64, secret string, decision Decision) error {
	if actor == nil || !actor.IsAdministrator() {
		return ErrForbidden
	}
	if decision != DecisionApprove && decision != DecisionDeny {
		return ErrForbidden
	}

	user, err := c.queries.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrForbidden
		}
		return fmt.Errorf("loading user: %w", err)
	}
	if !user.ApprovalTokenHash.Valid {
		return ErrForbidden
	}

	presented := model.HashApprovalToken(secret)
	stored := user.ApprovalTokenHash.String
	if subtle.ConstantTimeCompare([]byte(presented), []byte(stored)) != 1 {
		return ErrForbidden
	}

	now := time.Now()
	consumed, err := c.queries.ConsumeApprovalToken(ctx, user.ID, stored, now)
	if err != nil {
		return fmt.Errorf("consuming token: %w", err)
	}
	if !consumed {
		return ErrForbidden
	}

	update := store.UpdateUserAccessParams{ID: user.ID, UpdatedAt: now}
	switch decision {
	case DecisionApprove:
		if model.IsGroupRole(model.Role(user.RequestedGroup)) {
			update.GroupRole = user.RequestedGroup
		} else {
			update.LeaderGrant = true
		}
	case DecisionDeny:
		update.Denied = true
	}
	if err := c.queries.UpdateUserAccess(ctx, update); err != nil {
		return fmt.Errorf("applying decision: %w", err)
	}

	c.logger.Info("access request resolved",
		"user_id", user.ID,
		"decision", string(decision),
		"actor_id", actor.ID,
	)
	c.audit(ctx, model.EventLevelInfo, "access request "+string(decision)+"d", user.ID)
	return nil
}

// SetRole applies a direct role change through the manage-access path.
// The actor must resolve to the editing role. Administrator accounts and
// the actor's own account are never valid targets.
func (c *Controller) SetRole(ctx context.Context, actor *model.User, targetID int64, role model.Role) (model.User, error) {
	if actor == nil || !actor.CanEdit() {
		return model.User{}, ErrForbidden
	}
	if !model.IsAssignableRole(role) {
		return model.User{}, ErrInvalidRole
	}

	target, err := c.queries.GetUserByID(ctx, targetID)
	if err != nil {
		return model.User{}, fmt.Errorf("loading user: %w", err)
	}
	if target.IsAdmin {
		return model.User{}, ErrProtectedUser
	}
	if target.ID == actor.ID {
		return model.User{}, ErrSelfTarget
	}

	update := store.UpdateUserAccessParams{ID: target.ID, UpdatedAt: time.Now()}
	switch {
	case role == model.RoleAdminLeader:
		update.LeaderGrant = true
	case role == model.RoleDenied:
		update.Denied = true
	case role == model.RolePending:
		update.Pending = true
	case model.IsGroupRole(role):
		update.GroupRole = string(role)
	}
	if err := c.queries.UpdateUserAccess(ctx, update); err != nil {
		return model.User{}, fmt.Errorf("updating role: %w", err)
	}

	c.logger.Info("role changed",
		"user_id", target.ID,
		"role", string(role),
		"actor_id", actor.ID,
	)
	c.audit(ctx, model.EventLevelInfo, "role set to "+string(role), target.ID)
	return c.queries.GetUserByID(ctx, target.ID)
}

// DeleteUser removes an account through the manage-access path, under
// the same guardrails as SetRole.
func (c *Controller) DeleteUser(ctx context.Context, actor *model.User, targetID int64) error {
	if actor == nil || !actor.CanEdit() {
		return ErrForbidden
	}

	target, err := c.queries.GetUserByID(ctx, targetID)
	if err != nil {
		return fmt.Errorf("loading user: %w", err)
	}
	if target.IsAdmin {
		return ErrProtectedUser
	}
	if target.ID == actor.ID {
		return ErrSelfTarget
	}

	if err := c.queries.DeleteUser(ctx, target.ID); err != nil {
		return fmt.Errorf("deleting user: %w", err)
	}

	c.logger.Info("user deleted", "user_id", target.ID, "actor_id", actor.ID)
	c.audit(ctx, model.EventLevelWarning, "user deleted", target.ID)
	return nil
}

// audit writes an access event to the audit log. Failures are logged and
// swallowed: auditing must never abort the operation it records.
func (c *Controller) audit(ctx context.Context, level, message string, userID int64) {
	err := c.queries.CreateLogEntry(ctx, store.CreateLogEntryParams{
		Level:     level,
		Category:  model.EventCategoryAccess,
		Message:   message,
		UserID:    sql.NullInt64{Int64: userID, Valid: true},
		CreatedAt: time.Now(),
	})
	if err != nil {
		c.logger.Error("writing audit entry failed", "error", err)
	}
}
