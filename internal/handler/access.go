// Copyright (c) 2025-2026 PursueGen
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/alexedwards/scs/v2"

	"github.com/pursuegen/pursue-go/internal/access"
	"github.com/pursuegen/pursue-go/internal/middleware"
	"github.com/pursuegen/pursue-go/internal/render"
)

// AccessHandler resolves the approve/deny links mailed to administrators.
type AccessHandler struct {
	access         *access.Controller
	renderer       *render.Renderer
	sessionManager *scs.SessionManager
}

// NewAccessHandler creates a new AccessHandler.
func NewAccessHandler(ac *access.Controller, renderer *render.Renderer, sm *scs.SessionManager) *AccessHandler {
	return &AccessHandler{
		access:         ac,
		renderer:       renderer,
		sessionManager: sm,
	}
}

type actionResult struct {
	Heading string
	Message string
}

// Action handles GET /access/action?user=&token=&decision=. The caller must
// hold an administrator session; every invalid combination fails the same way.
func (h *AccessHandler) Action(w http.ResponseWriter, r *http.Request) {
	actor := middleware.GetUser(r)
	if actor == nil {
		// Send them through login and back is overkill for a one-shot
		// link; the mail says to sign in first.
		h.renderForbidden(w, r)
		return
	}

	userID, err := strconv.ParseInt(r.URL.Query().Get("user"), 10, 64)
	if err != nil {
		h.renderForbidden(w, r)
		return
	}
	secret := r.URL.Query().Get("token")
	decision := access.Decision(r.URL.Query().Get("decision"))

	if err := h.access.Resolve(r.Context(), actor, userID, secret, decision); err != nil {
		if !errors.Is(err, access.ErrForbidden) {
			slog.Error("resolving access request", "error", err)
		}
		h.renderForbidden(w, r)
		return
	}

	result := actionResult{Heading: "Request approved", Message: "The leader now has access and can sign in."}
	if decision == access.DecisionDeny {
		result = actionResult{Heading: "Request denied", Message: "The request was denied. The account holds no access."}
	}

	data := render.TemplateData{
		Title: result.Heading,
		User:  actor,
		Data:  result,
	}
	if err := h.renderer.Render(w, r, "auth/action", data); err != nil {
		slog.Error("rendering action result", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

func (h *AccessHandler) renderForbidden(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusForbidden)
	data := render.TemplateData{
		Title: "Not allowed",
		User:  middleware.GetUser(r),
		Data: actionResult{
			Heading: "Not allowed",
			Message: "This link is invalid, already used, or you are not signed in as an administrator.",
		},
	}
	if err := h.renderer.Render(w, r, "auth/action", data); err != nil {
		slog.Error("rendering forbidden page", "error", err)
	}
}
