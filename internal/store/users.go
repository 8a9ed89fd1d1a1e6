// Copyright (c) 2025-2026 PursueGen
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/pursuegen/pursue-go/internal/model"
)

const userColumns = `id, email, password_hash, first_name, last_name,
	is_admin, leader_grant, group_role, pending, denied, requested_group,
	approval_token_hash, token_consumed_at, created_at, updated_at, last_login_at`

func scanUser(row interface{ Scan(...any) error }) (model.User, error) {
	var u model.User
	err := row.Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName,
		&u.IsAdmin, &u.LeaderGrant, &u.GroupRole, &u.Pending, &u.Denied, &u.RequestedGroup,
		&u.ApprovalTokenHash, &u.TokenConsumedAt, &u.CreatedAt, &u.UpdatedAt, &u.LastLoginAt,
	)
	return u, err
}

// CreateUserParams holds the fields for inserting a new user.
type CreateUserParams struct {
	Email             string
	PasswordHash      string
	FirstName         string
	LastName          string
	IsAdmin           bool
	LeaderGrant       bool
	GroupRole         string
	Pending           bool
	Denied            bool
	RequestedGroup    string
	ApprovalTokenHash sql.NullString
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// CreateUser inserts a new user and returns the stored row.
func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (model.User, error) {
	res, err := q.db.ExecContext(ctx, `
		INSERT INTO users (
			email, password_hash, first_name, last_name,
			is_admin, leader_grant, group_role, pending, denied, requested_group,
			approval_token_hash, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		arg.Email, arg.PasswordHash, arg.FirstName, arg.LastName,
		arg.IsAdmin, arg.LeaderGrant, arg.GroupRole, arg.Pending, arg.Denied, arg.RequestedGroup,
		arg.ApprovalTokenHash, arg.CreatedAt, arg.UpdatedAt,
	)
	if err != nil {
		return model.User{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.User{}, err
	}
	return q.GetUserByID(ctx, id)
}

// GetUserByID returns the user with the given ID.
func (q *Queries) GetUserByID(ctx context.Context, id int64) (model.User, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return scanUser(row)
}

// GetUserByEmail returns the user with the given email.
func (q *Queries) GetUserByEmail(ctx context.Context, email string) (model.User, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, email)
	return scanUser(row)
}

// ListUsers returns all users ordered by creation time.
func (q *Queries) ListUsers(ctx context.Context) ([]model.User, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// CountUsers returns the total number of users.
func (q *Queries) CountUsers(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n)
	return n, err
}

// CountPendingUsers returns the number of users awaiting approval.
func (q *Queries) CountPendingUsers(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE pending = 1`).Scan(&n)
	return n, err
}

// UpdateUserAccessParams holds the access facts for a user update.
type UpdateUserAccessParams struct {
	ID          int64
	LeaderGrant bool
	GroupRole   string
	Pending     bool
	Denied      bool
	UpdatedAt   time.Time
}

// UpdateUserAccess replaces the access facts from which a user's
// effective role is derived.
func (q *Queries) UpdateUserAccess(ctx context.Context, arg UpdateUserAccessParams) error {
	_, err := q.db.ExecContext(ctx, `
		UPDATE users
		SET leader_grant = ?, group_role = ?, pending = ?, denied = ?, updated_at = ?
		WHERE id = ?`,
		arg.LeaderGrant, arg.GroupRole, arg.Pending, arg.Denied, arg.UpdatedAt, arg.ID,
	)
	return err
}

// UpdateUserProfileParams holds the editable profile fields.
type UpdateUserProfileParams struct {
	ID        int64
	Email     string
	FirstName string
	LastName  string
	UpdatedAt time.Time
}

// UpdateUserProfile updates a user's profile fields.
func (q *Queries) UpdateUserProfile(ctx context.Context, arg UpdateUserProfileParams) error {
	_, err := q.db.ExecContext(ctx, `
		UPDATE users
		SET email = ?, first_name = ?, last_name = ?, updated_at = ?
		WHERE id = ?`,
		arg.Email, arg.FirstName, arg.LastName, arg.UpdatedAt, arg.ID,
	)
	return err
}

// UpdateUserPassword replaces a user's password hash.
func (q *Queries) UpdateUserPassword(ctx context.Context, id int64, passwordHash string, updatedAt time.Time) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?`,
		passwordHash, updatedAt, id,
	)
	return err
}

// UpdateUserLastLogin records a successful login time.
func (q *Queries) UpdateUserLastLogin(ctx context.Context, id int64, at time.Time) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE users SET last_login_at = ? WHERE id = ?`, at, id)
	return err
}

// SetApprovalToken stores the hash of a freshly minted approval token,
// replacing any earlier one for the same user.
func (q *Queries) SetApprovalToken(ctx context.Context, id int64, tokenHash string, updatedAt time.Time) error {
	_, err := q.db.ExecContext(ctx, `
		UPDATE users
		SET approval_token_hash = ?, token_consumed_at = NULL, updated_at = ?
		WHERE id = ?`,
		tokenHash, updatedAt, id,
	)
	return err
}

// ConsumeApprovalToken atomically clears the stored token hash, but only
// when it still matches and has not been consumed. It reports whether
// this call was the one that consumed the token: concurrent callers with
// the same token see at most one true result.
func (q *Queries) ConsumeApprovalToken(ctx context.Context, id int64, tokenHash string, at time.Time) (bool, error) {
	res, err := q.db.ExecContext(ctx, `
		UPDATE users
		SET approval_token_hash = NULL, token_consumed_at = ?, updated_at = ?
		WHERE id = ? AND approval_token_hash = ? AND token_consumed_at IS NULL`,
		at, at, id, tokenHash,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// DeleteUser removes a user.
func (q *Queries) DeleteUser(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	return err
}
