// Copyright (c) 2025-2026 PursueGen
// SPDX-License-Identifier: GPL-3.0-or-later

// Package middleware provides HTTP middleware for authentication,
// role gating, and request hardening.
package middleware

import (
	"context"
	"database/sql"
	"net/http"

	"github.com/alexedwards/scs/v2"

	"github.com/pursuegen/pursue-go/internal/model"
	"github.com/pursuegen/pursue-go/internal/store"
)

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

// ContextKeyUser carries the authenticated user.
const ContextKeyUser ContextKey = "user"

// SessionKeyUserID is the session key holding the signed-in user's id.
const SessionKeyUserID = "user_id"

// Auth paths.
const (
	LoginPath  = "/leader/login"
	DeniedPath = "/leader/denied"
	ViewPath   = "/leader/view"
)

// LoadUser loads the session's user into the request context when a
// session exists. It never redirects: gating decisions belong to the
// Require* middleware further down the chain.
func LoadUser(sm *scs.SessionManager, db *sql.DB) func(http.Handler) http.Handler {
	queries := store.New(db)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := sm.GetInt64(r.Context(), SessionKeyUserID)
			if userID == 0 {
				next.ServeHTTP(w, r)
				return
			}

			user, err := queries.GetUserByID(r.Context(), userID)
			if err != nil {
				// Stale session for a deleted account.
				_ = sm.Destroy(r.Context())
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyUser, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUser retrieves the current user from the request context.
// Returns nil if no user is in context.
func GetUser(r *http.Request) *model.User {
	user, ok := r.Context().Value(ContextKeyUser).(model.User)
	if !ok {
		return nil
	}
	return &user
}

// RequireLeader gates the full editor area. Unauthenticated visitors are
// sent to sign-in; pending accounts are forcibly signed out and sent back
// with a pending indicator; denied accounts see the denied view; group
// roles are redirected to the reduced view-only area.
func RequireLeader(sm *scs.SessionManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := GetUser(r)
			if user == nil {
				http.Redirect(w, r, LoginPath, http.StatusSeeOther)
				return
			}

			switch role := user.Role(); {
			case role == model.RolePending:
				_ = sm.Destroy(r.Context())
				http.Redirect(w, r, LoginPath+"?pending=1", http.StatusSeeOther)
			case role == model.RoleDenied:
				http.Redirect(w, r, DeniedPath, http.StatusSeeOther)
			case role == model.RoleAdminLeader:
				next.ServeHTTP(w, r)
			case model.IsGroupRole(role):
				http.Redirect(w, r, ViewPath, http.StatusSeeOther)
			default:
				http.Redirect(w, r, DeniedPath, http.StatusSeeOther)
			}
		})
	}
}

// RequireViewer gates the reduced view-only area: any privileged role may
// enter, with the same pending and denied handling as RequireLeader.
func RequireViewer(sm *scs.SessionManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := GetUser(r)
			if user == nil {
				http.Redirect(w, r, LoginPath, http.StatusSeeOther)
				return
			}

			switch role := user.Role(); {
			case role == model.RolePending:
				_ = sm.Destroy(r.Context())
				http.Redirect(w, r, LoginPath+"?pending=1", http.StatusSeeOther)
			case role == model.RoleDenied:
				http.Redirect(w, r, DeniedPath, http.StatusSeeOther)
			case user.CanViewPrivileged():
				next.ServeHTTP(w, r)
			default:
				http.Redirect(w, r, DeniedPath, http.StatusSeeOther)
			}
		})
	}
}

// RequireEditorAPI authorizes mutating API calls: the requester must be
// authenticated (401 otherwise) and resolve to the editing role (403
// otherwise). Every content write in the system passes through this gate.
func RequireEditorAPI(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := GetUser(r)
		if user == nil {
			jsonError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		if !user.CanEdit() {
			jsonError(w, http.StatusForbidden, "Forbidden")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireViewerAPI authorizes privileged read-only API calls for the
// editing role and the view-only group roles.
func RequireViewerAPI(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := GetUser(r)
		if user == nil {
			jsonError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		if !user.CanViewPrivileged() {
			jsonError(w, http.StatusForbidden, "Forbidden")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func jsonError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(`{"message":"` + message + `"}`))
}
