// Copyright (c) 2025-2026 PursueGen
// SPDX-License-Identifier: GPL-3.0-or-later

// Package pco syncs calendar events from Planning Center Online into the
// local events table. Only a mock client ships for now; the Client
// interface is the seam where a real API client slots in.
package pco

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/pursuegen/pursue-go/internal/store"
)

// Event is one upstream calendar entry.
type Event struct {
	ID          string
	Title       string
	Description string
	StartsAt    time.Time
	TimeLabel   string
	Location    string
	ImageURL    string
	Tags        []string
}

// Client fetches upcoming events from the upstream calendar.
type Client interface {
	UpcomingEvents(ctx context.Context) ([]Event, error)
}

// MockClient returns a fixed slate of upcoming events, with dates pinned
// relative to now so the public calendar always has future content.
type MockClient struct{}

// UpcomingEvents implements Client.
func (MockClient) UpcomingEvents(_ context.Context) ([]Event, error) {
	now := time.Now()
	return []Event{
		{
			ID:        "mock-sunday-service",
			Title:     "Sunday Gathering",
			StartsAt:  now.AddDate(0, 0, 7),
			TimeLabel: "10:00 AM",
			Location:  "Main Sanctuary",
			Tags:      []string{"service"},
		},
		{
			ID:          "mock-student-night",
			Title:       "Student Night",
			Description: "Worship and small groups for all students.",
			StartsAt:    now.AddDate(0, 0, 10),
			TimeLabel:   "6:30 PM",
			Location:    "Youth Hall",
			Tags:        []string{"youth", "students"},
		},
		{
			ID:        "mock-serve-day",
			Title:     "Community Serve Day",
			StartsAt:  now.AddDate(0, 0, 14),
			TimeLabel: "9:00 AM",
			Location:  "City Park",
			Tags:      []string{"outreach"},
		},
	}, nil
}

// Syncer copies upstream events into the events table.
type Syncer struct {
	client  Client
	queries *store.Queries
	logger  *slog.Logger
}

// NewSyncer builds a Syncer.
func NewSyncer(client Client, queries *store.Queries, logger *slog.Logger) *Syncer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Syncer{client: client, queries: queries, logger: logger}
}

// Sync fetches upstream events and upserts them by their upstream id, so
// repeated runs refresh rather than duplicate. Returns the event count.
func (s *Syncer) Sync(ctx context.Context) (int, error) {
	events, err := s.client.UpcomingEvents(ctx)
	if err != nil {
		return 0, fmt.Errorf("fetching upstream events: %w", err)
	}

	for _, e := range events {
		err := s.queries.UpsertEventByPCOID(ctx, store.UpsertEventByPCOIDParams{
			Title:       e.Title,
			Description: e.Description,
			Date:        e.StartsAt,
			TimeLabel:   e.TimeLabel,
			Location:    e.Location,
			ImageURL:    e.ImageURL,
			Tags:        e.Tags,
			PCOID:       e.ID,
			CreatedAt:   time.Now(),
		})
		if err != nil {
			return 0, fmt.Errorf("upserting event %q: %w", e.ID, err)
		}
	}

	s.logger.Info("calendar sync complete", "events", len(events))
	return len(events), nil
}
