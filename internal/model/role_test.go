package model

import "testing"

func TestRoleResolutionPrecedence(t *testing.T) {
	tests := []struct {
		name string
		user User
		want Role
	}{
		{
			name: "denied wins over group role",
			user: User{Denied: true, GroupRole: string(RoleHighSchoolBoys)},
			want: RoleDenied,
		},
		{
			name: "denied wins over leader grant",
			user: User{Denied: true, LeaderGrant: true},
			want: RoleDenied,
		},
		{
			name: "pending wins over leader grant",
			user: User{Pending: true, LeaderGrant: true},
			want: RolePending,
		},
		{
			name: "administrator resolves to admin_leader",
			user: User{IsAdmin: true},
			want: RoleAdminLeader,
		},
		{
			name: "leader grant resolves to admin_leader",
			user: User{LeaderGrant: true},
			want: RoleAdminLeader,
		},
		{
			name: "group membership resolves to group role",
			user: User{GroupRole: string(RoleMiddleSchoolGirls)},
			want: RoleMiddleSchoolGirls,
		},
		{
			name: "unknown group falls through to denied",
			user: User{GroupRole: "kindergarten"},
			want: RoleDenied,
		},
		{
			name: "no facts at all is default deny",
			user: User{},
			want: RoleDenied,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.user.Role(); got != tt.want {
				t.Errorf("Role() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCanEdit(t *testing.T) {
	leader := User{LeaderGrant: true}
	if !leader.CanEdit() {
		t.Error("leader grant should allow editing")
	}

	group := User{GroupRole: string(RoleHighSchoolGirls)}
	if group.CanEdit() {
		t.Error("group role must not allow editing")
	}
	if !group.CanViewPrivileged() {
		t.Error("group role should allow privileged reads")
	}

	nobody := User{}
	if nobody.CanEdit() || nobody.CanViewPrivileged() {
		t.Error("user with no grants must have no access")
	}
}

func TestIsAssignableRole(t *testing.T) {
	for _, r := range GroupRoles {
		if !IsAssignableRole(r) {
			t.Errorf("group role %q should be assignable", r)
		}
	}
	if !IsAssignableRole(RoleAdminLeader) {
		t.Error("admin_leader should be assignable")
	}
	if IsAssignableRole("administrator") {
		t.Error("administrator must never be assignable")
	}
	if IsAssignableRole("") {
		t.Error("empty role must not be assignable")
	}
}
