// Copyright (c) 2025-2026 PursueGen
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/pursuegen/pursue-go/internal/store"
)

// EventRequest is the body for creating and updating events.
type EventRequest struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Date        time.Time `json:"date"`
	TimeLabel   string    `json:"time"`
	Location    string    `json:"location"`
	ImageURL    string    `json:"imageUrl"`
	Tags        []string  `json:"tags"`
}

func (req *EventRequest) validate() map[string]string {
	errs := make(map[string]string)
	if req.Title == "" {
		errs["title"] = "Title is required"
	}
	if req.Date.IsZero() {
		errs["date"] = "Date is required"
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// ListEvents handles GET /api/events.
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.queries.ListEvents(r.Context())
	if err != nil {
		slog.Error("listing events", "error", err)
		WriteInternalError(w, "Failed to list events")
		return
	}
	WriteSuccess(w, events, &Meta{Total: int64(len(events))})
}

// CreateEvent handles POST /api/events.
func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req EventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "Invalid JSON body", nil)
		return
	}
	if errs := req.validate(); errs != nil {
		WriteValidationError(w, errs)
		return
	}

	event, err := h.queries.CreateEvent(r.Context(), store.CreateEventParams{
		Title:       req.Title,
		Description: req.Description,
		Date:        req.Date,
		TimeLabel:   req.TimeLabel,
		Location:    req.Location,
		ImageURL:    req.ImageURL,
		Tags:        req.Tags,
		CreatedAt:   time.Now(),
	})
	if err != nil {
		slog.Error("creating event", "error", err)
		WriteInternalError(w, "Failed to create event")
		return
	}
	WriteCreated(w, event)
}

// UpdateEvent handles PUT /api/events/{id}.
func (h *Handler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		WriteBadRequest(w, "Invalid event ID", nil)
		return
	}

	var req EventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "Invalid JSON body", nil)
		return
	}
	if errs := req.validate(); errs != nil {
		WriteValidationError(w, errs)
		return
	}

	if _, err := h.queries.GetEvent(r.Context(), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			WriteNotFound(w, "Event not found")
			return
		}
		slog.Error("getting event", "id", id, "error", err)
		WriteInternalError(w, "Failed to update event")
		return
	}

	if err := h.queries.UpdateEvent(r.Context(), store.UpdateEventParams{
		ID:          id,
		Title:       req.Title,
		Description: req.Description,
		Date:        req.Date,
		TimeLabel:   req.TimeLabel,
		Location:    req.Location,
		ImageURL:    req.ImageURL,
		Tags:        req.Tags,
	}); err != nil {
		slog.Error("updating event", "id", id, "error", err)
		WriteInternalError(w, "Failed to update event")
		return
	}

	event, err := h.queries.GetEvent(r.Context(), id)
	if err != nil {
		WriteInternalError(w, "Failed to load updated event")
		return
	}
	WriteSuccess(w, event, nil)
}

// DeleteEvent handles DELETE /api/events/{id}.
func (h *Handler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		WriteBadRequest(w, "Invalid event ID", nil)
		return
	}
	if err := h.queries.DeleteEvent(r.Context(), id); err != nil {
		slog.Error("deleting event", "id", id, "error", err)
		WriteInternalError(w, "Failed to delete event")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
