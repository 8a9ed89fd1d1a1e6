// Copyright (c) 2025-2026 PursueGen
// SPDX-License-Identifier: GPL-3.0-or-later

// Package handler contains the HTML handlers for the leader area.
package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/pursuegen/pursue-go/internal/render"
)

// Route constants shared across handlers and the router.
const (
	RouteLeader         = "/leader"
	RouteLogin          = "/leader/login"
	RouteLogout         = "/leader/logout"
	RouteRegister       = "/leader/register"
	RouteDenied         = "/leader/denied"
	RouteView           = "/leader/view"
	RouteUsers          = "/leader/users"
	RouteAccessAction   = "/access/action"
	HeaderContentType   = "Content-Type"
	ContentTypeHTMLUTF8 = "text/html; charset=utf-8"
)

// ParseIDParam parses the {id} URL parameter as int64.
func ParseIDParam(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	if raw == "" {
		return 0, errors.New("missing id parameter")
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, errors.New("invalid id parameter")
	}
	return id, nil
}

// flashAndRedirect sets a flash message and redirects to the given URL.
// Uses http.StatusSeeOther (303) for POST/PUT/DELETE redirects.
func flashAndRedirect(w http.ResponseWriter, r *http.Request, renderer *render.Renderer, url, message, messageType string) {
	renderer.SetFlash(r, message, messageType)
	http.Redirect(w, r, url, http.StatusSeeOther)
}

// flashError sets an error flash message and redirects to the given URL.
func flashError(w http.ResponseWriter, r *http.Request, renderer *render.Renderer, url, message string) {
	flashAndRedirect(w, r, renderer, url, message, "error")
}

// flashSuccess sets a success flash message and redirects to the given URL.
func flashSuccess(w http.ResponseWriter, r *http.Request, renderer *render.Renderer, url, message string) {
	flashAndRedirect(w, r, renderer, url, message, "success")
}
