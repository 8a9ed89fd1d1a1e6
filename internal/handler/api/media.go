// Copyright (c) 2025-2026 PursueGen
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pursuegen/pursue-go/internal/store"
)

// maxUploadSize caps uploads at 5 MB, matching the frontend limit.
const maxUploadSize = 5 << 20

// allowedUploadTypes lists the accepted upload MIME types.
var allowedUploadTypes = map[string]string{
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"image/gif":       ".gif",
	"image/webp":      ".webp",
	"image/svg+xml":   ".svg",
	"application/pdf": ".pdf",
}

// ListMedia handles GET /api/media.
func (h *Handler) ListMedia(w http.ResponseWriter, r *http.Request) {
	items, err := h.queries.ListMedia(r.Context())
	if err != nil {
		slog.Error("listing media", "error", err)
		WriteInternalError(w, "Failed to list media")
		return
	}
	WriteSuccess(w, items, &Meta{Total: int64(len(items))})
}

// UploadMedia handles POST /api/media with a multipart "file" field. The
// stored filename is a fresh UUID; the original name is kept as metadata.
func (h *Handler) UploadMedia(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		WriteBadRequest(w, "File too large or invalid multipart body", nil)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		WriteBadRequest(w, "No file uploaded", nil)
		return
	}
	defer func() { _ = file.Close() }()

	mimeType := header.Header.Get("Content-Type")
	ext, ok := allowedUploadTypes[mimeType]
	if !ok {
		WriteValidationError(w, map[string]string{"file": "Unsupported file type"})
		return
	}

	name := uuid.New().String() + ext
	dst, err := os.Create(filepath.Join(h.uploadsDir, name))
	if err != nil {
		slog.Error("creating upload file", "error", err)
		WriteInternalError(w, "Failed to store file")
		return
	}
	defer func() { _ = dst.Close() }()

	if _, err := io.Copy(dst, file); err != nil {
		slog.Error("writing upload file", "error", err)
		WriteInternalError(w, "Failed to store file")
		return
	}

	item, err := h.queries.CreateMedia(r.Context(), store.CreateMediaParams{
		URL:        "/uploads/" + name,
		Filename:   filepath.Base(header.Filename),
		MimeType:   mimeType,
		UploadedAt: time.Now(),
	})
	if err != nil {
		slog.Error("recording media item", "error", err)
		WriteInternalError(w, "Failed to record upload")
		return
	}
	WriteCreated(w, item)
}

// DeleteMedia handles DELETE /api/media/{id}. The file on disk is removed
// best-effort; a missing file does not fail the request.
func (h *Handler) DeleteMedia(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		WriteBadRequest(w, "Invalid media ID", nil)
		return
	}

	item, err := h.queries.GetMediaItem(r.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			WriteNotFound(w, "Media not found")
			return
		}
		slog.Error("getting media item", "id", id, "error", err)
		WriteInternalError(w, "Failed to delete media")
		return
	}

	base := filepath.Base(item.URL)
	if base != "." && !strings.HasPrefix(base, "..") {
		if err := os.Remove(filepath.Join(h.uploadsDir, base)); err != nil && !os.IsNotExist(err) {
			slog.Warn("removing media file", "file", base, "error", err)
		}
	}

	if err := h.queries.DeleteMedia(r.Context(), id); err != nil {
		slog.Error("deleting media row", "id", id, "error", err)
		WriteInternalError(w, "Failed to delete media")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
