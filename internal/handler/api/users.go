// Copyright (c) 2025-2026 PursueGen
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/pursuegen/pursue-go/internal/access"
	"github.com/pursuegen/pursue-go/internal/middleware"
	"github.com/pursuegen/pursue-go/internal/model"
)

// AuthUser handles GET /api/auth/user. Unauthenticated callers get 401;
// everyone else gets their public shape with the resolved role.
func (h *Handler) AuthUser(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	if user == nil {
		WriteUnauthorized(w, "Not authenticated")
		return
	}
	WriteSuccess(w, user.Public(), nil)
}

// ListUsers handles GET /api/users.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.queries.ListUsers(r.Context())
	if err != nil {
		slog.Error("listing users", "error", err)
		WriteInternalError(w, "Failed to list users")
		return
	}

	public := make([]model.PublicUser, 0, len(users))
	for i := range users {
		public = append(public, users[i].Public())
	}
	WriteSuccess(w, public, &Meta{Total: int64(len(public))})
}

// CreateUserRequest is the body for directly created accounts.
type CreateUserRequest struct {
	Email     string     `json:"email"`
	FirstName string     `json:"firstName"`
	LastName  string     `json:"lastName"`
	Role      model.Role `json:"role"`
}

// CreateUser handles POST /api/users. The account is created with its
// role already applied, skipping the approval flow.
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "Invalid JSON body", nil)
		return
	}

	fields := make(map[string]string)
	if req.Email == "" {
		fields["email"] = "Email is required"
	}
	if req.FirstName == "" {
		fields["firstName"] = "First name is required"
	}
	if req.LastName == "" {
		fields["lastName"] = "Last name is required"
	}
	if len(fields) > 0 {
		WriteValidationError(w, fields)
		return
	}

	user, err := h.access.Invite(r.Context(), middleware.GetUser(r), access.InviteParams{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      req.Role,
	})
	if err != nil {
		if errors.Is(err, access.ErrEmailTaken) {
			WriteBadRequest(w, "Email is already in use", nil)
			return
		}
		writeAccessError(w, err)
		return
	}
	WriteCreated(w, user.Public())
}

// SetRoleRequest is the body for role updates.
type SetRoleRequest struct {
	Role model.Role `json:"role"`
}

// SetUserRole handles PUT /api/users/{id}/role.
func (h *Handler) SetUserRole(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		WriteBadRequest(w, "Invalid user ID", nil)
		return
	}

	var req SetRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "Invalid JSON body", nil)
		return
	}

	updated, err := h.access.SetRole(r.Context(), middleware.GetUser(r), id, req.Role)
	if err != nil {
		writeAccessError(w, err)
		return
	}
	WriteSuccess(w, updated.Public(), nil)
}

// DeleteUser handles DELETE /api/users/{id}.
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		WriteBadRequest(w, "Invalid user ID", nil)
		return
	}

	if err := h.access.DeleteUser(r.Context(), middleware.GetUser(r), id); err != nil {
		writeAccessError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// writeAccessError maps access control errors onto API responses.
func writeAccessError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, access.ErrProtectedUser):
		WriteForbidden(w, "Administrators cannot be modified")
	case errors.Is(err, access.ErrSelfTarget):
		WriteForbidden(w, "You cannot modify your own account")
	case errors.Is(err, sql.ErrNoRows):
		WriteNotFound(w, "User not found")
	case errors.Is(err, access.ErrInvalidRole):
		WriteValidationError(w, map[string]string{"role": "Role is not assignable"})
	case errors.Is(err, access.ErrForbidden):
		WriteForbidden(w, "Not allowed")
	default:
		slog.Error("access operation failed", "error", err)
		WriteInternalError(w, "Operation failed")
	}
}
