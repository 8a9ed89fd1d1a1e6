// Copyright (c) 2025-2026 PursueGen
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/alexedwards/scs/v2"

	"github.com/pursuegen/pursue-go/internal/access"
	"github.com/pursuegen/pursue-go/internal/auth"
	"github.com/pursuegen/pursue-go/internal/middleware"
	"github.com/pursuegen/pursue-go/internal/model"
	"github.com/pursuegen/pursue-go/internal/render"
	"github.com/pursuegen/pursue-go/internal/store"
)

// AuthHandler handles the login, logout and registration routes.
type AuthHandler struct {
	queries         *store.Queries
	renderer        *render.Renderer
	sessionManager  *scs.SessionManager
	loginProtection *middleware.LoginProtection
	access          *access.Controller
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(db *sql.DB, renderer *render.Renderer, sm *scs.SessionManager, lp *middleware.LoginProtection, ac *access.Controller) *AuthHandler {
	return &AuthHandler{
		queries:         store.New(db),
		renderer:        renderer,
		sessionManager:  sm,
		loginProtection: lp,
		access:          ac,
	}
}

// groupOption is one selectable group on the registration form.
type groupOption struct {
	Value string
	Label string
}

func groupOptions() []groupOption {
	opts := make([]groupOption, 0, len(model.GroupRoles))
	for _, r := range model.GroupRoles {
		opts = append(opts, groupOption{Value: string(r), Label: model.GroupLabel(r)})
	}
	return opts
}

// LoginForm renders the login page. Authenticated users are redirected to
// their landing page instead.
func (h *AuthHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	if user := middleware.GetUser(r); user != nil {
		http.Redirect(w, r, landingPath(user), http.StatusSeeOther)
		return
	}

	data := render.TemplateData{
		Title: "Sign in",
		Data: struct{ Pending bool }{
			Pending: r.URL.Query().Get("pending") == "1",
		},
		CSRFToken: h.sessionManager.Token(r.Context()),
	}
	if err := h.renderer.Render(w, r, "auth/login", data); err != nil {
		slog.Error("rendering login page", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// Login handles the login form submission.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		flashError(w, r, h.renderer, RouteLogin, "Invalid form data")
		return
	}

	email := r.FormValue("email")
	password := r.FormValue("password")
	if email == "" || password == "" {
		flashError(w, r, h.renderer, RouteLogin, "Email and password are required")
		return
	}

	if h.loginProtection != nil && h.loginProtection.IsLocked(email) {
		slog.Warn("login attempt on locked account", "email", email)
		flashError(w, r, h.renderer, RouteLogin, "Too many failed attempts. Try again later.")
		return
	}

	user, err := h.queries.GetUserByEmail(r.Context(), email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			slog.Warn("login failed: user not found", "email", email)
		} else {
			slog.Error("database error during login", "error", err)
		}
		// Record the failure even for unknown accounts to prevent enumeration.
		if h.loginProtection != nil {
			h.loginProtection.RecordFailure(email)
		}
		flashError(w, r, h.renderer, RouteLogin, "Invalid email or password")
		return
	}

	valid, err := auth.CheckPassword(password, user.PasswordHash)
	if err != nil || !valid {
		if err != nil {
			slog.Error("password check error", "error", err)
		} else {
			slog.Warn("login failed: invalid password", "user_id", user.ID)
		}
		if h.loginProtection != nil {
			h.loginProtection.RecordFailure(email)
		}
		flashError(w, r, h.renderer, RouteLogin, "Invalid email or password")
		return
	}

	if h.loginProtection != nil {
		h.loginProtection.RecordSuccess(email)
	}

	// A pending account authenticates but holds no access yet.
	if user.Role() == model.RolePending {
		http.Redirect(w, r, RouteLogin+"?pending=1", http.StatusSeeOther)
		return
	}

	if err := h.queries.UpdateUserLastLogin(r.Context(), user.ID, time.Now()); err != nil {
		slog.Error("failed to update last login time", "error", err, "user_id", user.ID)
	}

	// Regenerate session ID to prevent session fixation
	if err := h.sessionManager.RenewToken(r.Context()); err != nil {
		slog.Error("session renewal error", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	h.sessionManager.Put(r.Context(), middleware.SessionKeyUserID, user.ID)

	slog.Info("user logged in", "user_id", user.ID, "email", user.Email)

	h.renderer.SetFlash(r, "Welcome back, "+user.FullName(), "success")
	http.Redirect(w, r, landingPath(&user), http.StatusSeeOther)
}

// Logout destroys the session and returns to the login page.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	userID := h.sessionManager.GetInt64(r.Context(), middleware.SessionKeyUserID)

	if err := h.sessionManager.Destroy(r.Context()); err != nil {
		slog.Error("session destroy error", "error", err)
	}

	if userID > 0 {
		slog.Info("user logged out", "user_id", userID)
	}
	flashAndRedirect(w, r, h.renderer, RouteLogin, "You have been signed out", "info")
}

// RegisterForm renders the access request page.
func (h *AuthHandler) RegisterForm(w http.ResponseWriter, r *http.Request) {
	data := render.TemplateData{
		Title: "Request access",
		Data: struct{ Groups []groupOption }{
			Groups: groupOptions(),
		},
		CSRFToken: h.sessionManager.Token(r.Context()),
	}
	if err := h.renderer.Render(w, r, "auth/register", data); err != nil {
		slog.Error("rendering register page", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// Register handles the access request submission. The new account starts
// pending; administrators decide via the mailed approval links.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		flashError(w, r, h.renderer, RouteRegister, "Invalid form data")
		return
	}

	password := r.FormValue("password")
	if len(password) < 8 {
		flashError(w, r, h.renderer, RouteRegister, "Password must be at least 8 characters")
		return
	}

	_, err := h.access.Register(r.Context(), access.RegisterParams{
		Email:          r.FormValue("email"),
		Password:       password,
		FirstName:      r.FormValue("first_name"),
		LastName:       r.FormValue("last_name"),
		RequestedGroup: r.FormValue("requested_group"),
	})
	if err != nil {
		if errors.Is(err, access.ErrEmailTaken) {
			flashError(w, r, h.renderer, RouteRegister, "An account with that email already exists")
			return
		}
		slog.Error("registration failed", "error", err)
		flashError(w, r, h.renderer, RouteRegister, "Could not submit your request. Check the form and try again.")
		return
	}

	flashSuccess(w, r, h.renderer, RouteLogin, "Request submitted. You will be able to sign in once an administrator approves it.")
}

// Denied renders the page shown to denied accounts.
func (h *AuthHandler) Denied(w http.ResponseWriter, r *http.Request) {
	data := render.TemplateData{
		Title: "Access denied",
		User:  middleware.GetUser(r),
	}
	if err := h.renderer.Render(w, r, "auth/denied", data); err != nil {
		slog.Error("rendering denied page", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// landingPath returns where a user lands after login, by capability.
func landingPath(u *model.User) string {
	switch {
	case u.CanEdit():
		return RouteLeader
	case u.Role() == model.RoleDenied:
		return RouteDenied
	default:
		return RouteView
	}
}
