// Copyright (c) 2025-2026 PursueGen
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"regexp"

	"github.com/go-chi/chi/v5"

	"github.com/pursuegen/pursue-go/internal/content"
	"github.com/pursuegen/pursue-go/internal/model"
)

// slugPattern constrains page slugs and section keys.
var slugPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]{0,63}$`)

// maxSectionContent caps a single section payload at 1 MB.
const maxSectionContent = 1 << 20

// ListSections handles GET /api/content/{page}.
func (h *Handler) ListSections(w http.ResponseWriter, r *http.Request) {
	page := chi.URLParam(r, "page")
	if !slugPattern.MatchString(page) {
		WriteBadRequest(w, "Invalid page slug", nil)
		return
	}

	sections, err := h.content.ListSections(r.Context(), page)
	if err != nil {
		slog.Error("listing sections", "page", page, "error", err)
		WriteInternalError(w, "Failed to list sections")
		return
	}
	WriteSuccess(w, sections, &Meta{Total: int64(len(sections))})
}

// GetSection handles GET /api/content/{page}/{key}.
func (h *Handler) GetSection(w http.ResponseWriter, r *http.Request) {
	page := chi.URLParam(r, "page")
	key := chi.URLParam(r, "key")
	if !slugPattern.MatchString(page) || !slugPattern.MatchString(key) {
		WriteBadRequest(w, "Invalid page slug or section key", nil)
		return
	}

	section, err := h.content.GetSection(r.Context(), page, key)
	if err != nil {
		if errors.Is(err, content.ErrNotFound) {
			WriteNotFound(w, "Section not found")
			return
		}
		slog.Error("getting section", "page", page, "key", key, "error", err)
		WriteInternalError(w, "Failed to get section")
		return
	}
	WriteSuccess(w, section, nil)
}

// UpdateSectionRequest is the body for section upserts.
type UpdateSectionRequest struct {
	Content json.RawMessage `json:"content"`
}

// UpdateSection handles PUT /api/content/{page}/{key}. The write creates
// the section when it does not exist yet.
func (h *Handler) UpdateSection(w http.ResponseWriter, r *http.Request) {
	page := chi.URLParam(r, "page")
	key := chi.URLParam(r, "key")
	if !slugPattern.MatchString(page) || !slugPattern.MatchString(key) {
		WriteBadRequest(w, "Invalid page slug or section key", nil)
		return
	}

	var req UpdateSectionRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxSectionContent)).Decode(&req); err != nil {
		WriteBadRequest(w, "Invalid JSON body", nil)
		return
	}
	if len(req.Content) == 0 || !json.Valid(req.Content) {
		WriteValidationError(w, map[string]string{"content": "Content must be valid JSON"})
		return
	}

	section, err := h.content.UpsertSection(r.Context(), page, key, req.Content)
	if err != nil {
		slog.Error("upserting section", "page", page, "key", key, "error", err)
		WriteInternalError(w, "Failed to save section")
		return
	}
	WriteSuccess(w, section, nil)
}

// ListSettings handles GET /api/settings.
func (h *Handler) ListSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.content.ListSettings(r.Context())
	if err != nil {
		slog.Error("listing settings", "error", err)
		WriteInternalError(w, "Failed to list settings")
		return
	}
	WriteSuccess(w, settings, &Meta{Total: int64(len(settings))})
}

// UpdateSettings handles PUT /api/settings with a bulk key/value payload.
func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var updates []model.SettingUpdate
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxSectionContent)).Decode(&updates); err != nil {
		WriteBadRequest(w, "Invalid JSON body", nil)
		return
	}
	if len(updates) == 0 {
		WriteValidationError(w, map[string]string{"settings": "At least one setting is required"})
		return
	}
	for _, u := range updates {
		if u.Key == "" || len(u.Value) == 0 || !json.Valid(u.Value) {
			WriteValidationError(w, map[string]string{u.Key: "Key and valid JSON value are required"})
			return
		}
	}

	settings, err := h.content.UpdateSettings(r.Context(), updates)
	if err != nil {
		slog.Error("updating settings", "error", err)
		WriteInternalError(w, "Failed to update settings")
		return
	}
	WriteSuccess(w, settings, nil)
}

// ListShortcuts handles GET /api/shortcuts.
func (h *Handler) ListShortcuts(w http.ResponseWriter, r *http.Request) {
	shortcuts, err := h.content.ListShortcuts(r.Context())
	if err != nil {
		slog.Error("listing shortcuts", "error", err)
		WriteInternalError(w, "Failed to list shortcuts")
		return
	}
	WriteSuccess(w, shortcuts, &Meta{Total: int64(len(shortcuts))})
}

// CreateShortcut handles POST /api/shortcuts.
func (h *Handler) CreateShortcut(w http.ResponseWriter, r *http.Request) {
	var shortcut model.Shortcut
	if err := json.NewDecoder(r.Body).Decode(&shortcut); err != nil {
		WriteBadRequest(w, "Invalid JSON body", nil)
		return
	}
	if shortcut.Title == "" || shortcut.Href == "" {
		WriteValidationError(w, map[string]string{"title": "Title and href are required"})
		return
	}

	created, err := h.content.CreateShortcut(r.Context(), shortcut)
	if err != nil {
		slog.Error("creating shortcut", "error", err)
		WriteInternalError(w, "Failed to create shortcut")
		return
	}
	WriteCreated(w, created)
}

// DeleteShortcut handles DELETE /api/shortcuts/{id}.
func (h *Handler) DeleteShortcut(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		WriteBadRequest(w, "Invalid shortcut ID", nil)
		return
	}
	if err := h.content.DeleteShortcut(r.Context(), id); err != nil {
		slog.Error("deleting shortcut", "id", id, "error", err)
		WriteInternalError(w, "Failed to delete shortcut")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
