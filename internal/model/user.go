// Copyright (c) 2025-2026 PursueGen
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model defines domain models and types used throughout the
// application including User, Section, Event, and the role resolution rules.
package model

import (
	"database/sql"
	"time"
)

// User represents an account in the leader area. The symbolic role is never
// stored; it is derived from the persisted grants and flags by Role().
type User struct {
	ID           int64  `json:"id"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"` // Never expose in JSON
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`

	// Underlying facts for role resolution. Kept separate so the symbolic
	// role is always recomputed and can never drift out of sync.
	IsAdmin        bool   `json:"-"` // platform administrator privilege
	LeaderGrant    bool   `json:"-"` // dedicated edit-capability grant
	GroupRole      string `json:"-"` // one of the view-only group roles, or ""
	Pending        bool   `json:"-"`
	Denied         bool   `json:"-"`
	RequestedGroup string `json:"-"` // group asked for at registration

	// Approval token state. The hash is cleared when the token is consumed.
	ApprovalTokenHash sql.NullString `json:"-"`
	TokenConsumedAt   sql.NullTime   `json:"-"`

	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
	LastLoginAt sql.NullTime `json:"-"`
}

// IsAdministrator reports whether the account belongs to a platform operator.
// Administrators can never be demoted or deleted through the leader endpoints.
func (u *User) IsAdministrator() bool {
	return u.IsAdmin
}

// FullName returns the user's display name.
func (u *User) FullName() string {
	if u.FirstName == "" {
		return u.LastName
	}
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// PublicUser is the wire shape returned by the auth and admin endpoints.
type PublicUser struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Public returns the user's public shape with the resolved role.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Role:      u.Role(),
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
