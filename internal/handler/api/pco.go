// Copyright (c) 2025-2026 PursueGen
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"log/slog"
	"net/http"
)

// SyncResponse reports the outcome of a Planning Center sync.
type SyncResponse struct {
	Synced int `json:"synced"`
}

// SyncPCO handles POST /api/pco/sync, pulling upcoming events on demand.
func (h *Handler) SyncPCO(w http.ResponseWriter, r *http.Request) {
	if h.syncer == nil {
		WriteError(w, http.StatusServiceUnavailable, "sync_disabled", "Planning Center sync is not enabled", nil)
		return
	}

	n, err := h.syncer.Sync(r.Context())
	if err != nil {
		slog.Error("planning center sync failed", "error", err)
		WriteInternalError(w, "Sync failed")
		return
	}
	WriteSuccess(w, SyncResponse{Synced: n}, nil)
}
