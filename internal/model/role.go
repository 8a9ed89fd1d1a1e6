// Copyright (c) 2025-2026 PursueGen
// SPDX-License-Identifier: GPL-3.0-or-later

package model

// Role is a symbolic role derived from a user's stored grants and flags.
type Role string

// The closed set of symbolic roles.
const (
	RolePending     Role = "pending"
	RoleDenied      Role = "denied"
	RoleAdminLeader Role = "admin_leader"

	// View-only grade group roles. Group leaders may read privileged
	// resources but never write shared content.
	RoleMiddleSchoolBoys  Role = "middleschoolboy"
	RoleMiddleSchoolGirls Role = "middleschoolgirl"
	RoleHighSchoolBoys    Role = "highschoolboy"
	RoleHighSchoolGirls   Role = "highschoolgirl"
)

// GroupRoles lists the view-only group roles in display order.
var GroupRoles = []Role{
	RoleMiddleSchoolBoys,
	RoleMiddleSchoolGirls,
	RoleHighSchoolBoys,
	RoleHighSchoolGirls,
}

// groupLabels maps group roles to their human-readable names.
var groupLabels = map[Role]string{
	RoleMiddleSchoolBoys:  "Middle School Boys",
	RoleMiddleSchoolGirls: "Middle School Girls",
	RoleHighSchoolBoys:    "High School Boys",
	RoleHighSchoolGirls:   "High School Girls",
}

// IsGroupRole reports whether r is one of the view-only group roles.
func IsGroupRole(r Role) bool {
	_, ok := groupLabels[r]
	return ok
}

// GroupLabel returns the display name for a group role, or the role
// string itself when no label is known.
func GroupLabel(r Role) string {
	if label, ok := groupLabels[r]; ok {
		return label
	}
	return string(r)
}

// IsAssignableRole reports whether r may be applied through the role
// management endpoints. The administrator super-role is intentionally
// absent: it belongs to platform operators and is never assignable here.
func IsAssignableRole(r Role) bool {
	switch r {
	case RoleAdminLeader, RoleDenied, RolePending:
		return true
	}
	return IsGroupRole(r)
}

// Role resolves the user's symbolic role. Evaluation order matters:
// denial wins over everything, a pending request wins over any grant, and
// absence of an explicit grant is never treated as access.
func (u *User) Role() Role {
	switch {
	case u.Denied:
		return RoleDenied
	case u.Pending:
		return RolePending
	case u.IsAdmin || u.LeaderGrant:
		return RoleAdminLeader
	case IsGroupRole(Role(u.GroupRole)):
		return Role(u.GroupRole)
	}
	return RoleDenied
}

// CanEdit reports whether the user may mutate shared content.
func (u *User) CanEdit() bool {
	return u.Role() == RoleAdminLeader
}

// CanViewPrivileged reports whether the user may read view-only privileged
// resources (distinct from public content, which needs no role at all).
func (u *User) CanViewPrivileged() bool {
	r := u.Role()
	return r == RoleAdminLeader || IsGroupRole(r)
}
