// Copyright (c) 2025-2026 PursueGen
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/alexedwards/scs/v2"

	"github.com/pursuegen/pursue-go/internal/content"
	"github.com/pursuegen/pursue-go/internal/middleware"
	"github.com/pursuegen/pursue-go/internal/model"
	"github.com/pursuegen/pursue-go/internal/render"
	"github.com/pursuegen/pursue-go/internal/store"
)

// LeaderHandler serves the leader dashboard pages.
type LeaderHandler struct {
	queries        *store.Queries
	content        *content.Store
	renderer       *render.Renderer
	sessionManager *scs.SessionManager
}

// NewLeaderHandler creates a new LeaderHandler.
func NewLeaderHandler(db *sql.DB, cs *content.Store, renderer *render.Renderer, sm *scs.SessionManager) *LeaderHandler {
	return &LeaderHandler{
		queries:        store.New(db),
		content:        cs,
		renderer:       renderer,
		sessionManager: sm,
	}
}

type dashboardData struct {
	Shortcuts    []model.Shortcut
	Events       []model.Event
	PendingCount int64
}

// Dashboard renders the editing dashboard with its shortcut cards.
func (h *LeaderHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	shortcuts, err := h.content.ListShortcuts(r.Context())
	if err != nil {
		slog.Error("listing shortcuts", "error", err)
	}
	events, err := h.queries.ListEvents(r.Context())
	if err != nil {
		slog.Error("listing events", "error", err)
	}

	var pending int64
	if user != nil && user.IsAdministrator() {
		if pending, err = h.queries.CountPendingUsers(r.Context()); err != nil {
			slog.Error("counting pending users", "error", err)
		}
	}

	data := render.TemplateData{
		Title: "Dashboard",
		User:  user,
		Data: dashboardData{
			Shortcuts:    shortcuts,
			Events:       events,
			PendingCount: pending,
		},
		CSRFToken: h.sessionManager.Token(r.Context()),
	}
	if err := h.renderer.Render(w, r, "leader/dashboard", data); err != nil {
		slog.Error("rendering dashboard", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// View renders the read-only overview for group leaders.
func (h *LeaderHandler) View(w http.ResponseWriter, r *http.Request) {
	events, err := h.queries.ListEvents(r.Context())
	if err != nil {
		slog.Error("listing events", "error", err)
	}

	data := render.TemplateData{
		Title: "Overview",
		User:  middleware.GetUser(r),
		Data: struct{ Events []model.Event }{
			Events: events,
		},
		CSRFToken: h.sessionManager.Token(r.Context()),
	}
	if err := h.renderer.Render(w, r, "leader/view", data); err != nil {
		slog.Error("rendering overview", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// userRow is a flattened user for the roster template.
type userRow struct {
	FullName string
	Email    string
	Role     model.Role
	IsAdmin  bool
}

// Users renders the leader roster.
func (h *LeaderHandler) Users(w http.ResponseWriter, r *http.Request) {
	users, err := h.queries.ListUsers(r.Context())
	if err != nil {
		slog.Error("listing users", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	rows := make([]userRow, 0, len(users))
	for i := range users {
		u := &users[i]
		rows = append(rows, userRow{
			FullName: u.FullName(),
			Email:    u.Email,
			Role:     u.Role(),
			IsAdmin:  u.IsAdministrator(),
		})
	}

	data := render.TemplateData{
		Title: "Leaders",
		User:  middleware.GetUser(r),
		Data: struct{ Users []userRow }{
			Users: rows,
		},
		CSRFToken: h.sessionManager.Token(r.Context()),
	}
	if err := h.renderer.Render(w, r, "leader/users", data); err != nil {
		slog.Error("rendering users page", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}
