// Copyright (c) 2025-2026 PursueGen
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"
)

// SeedContent populates starter site content so a fresh install renders a
// complete public site. Each page is seeded only when it has no sections
// yet, so edits survive restarts.
func SeedContent(ctx context.Context, db *sql.DB) error {
	queries := New(db)
	now := time.Now()

	type slot struct {
		page    string
		key     string
		content any
	}

	pages := map[string][]slot{
		"home": {
			{"home", "hero", map[string]any{
				"title":               "Welcome to Our Church",
				"subtitle":            "A place to call home",
				"primaryButtonText":   "Join Us",
				"primaryButtonUrl":    "/next-steps",
				"secondaryButtonText": "Watch Online",
				"secondaryButtonUrl":  "/events",
				"backgroundImage":     "https://images.unsplash.com/photo-1438232992991-995b7058bbb3?auto=format&fit=crop&q=80",
			}},
			{"home", "schedule", map[string]any{
				"title":       "Weekly Schedule",
				"description": "Join us every Sunday at 9:00 AM and 11:00 AM. We also have youth groups on Wednesdays.",
				"image":       "https://images.unsplash.com/photo-1510590337019-5ef8d3d32116?auto=format&fit=crop&q=80",
				"times": []map[string]string{
					{"label": "Classic Service", "time": "9:00 AM"},
					{"label": "Modern Service", "time": "11:00 AM"},
				},
			}},
			{"home", "featured", map[string]any{
				"cards": []map[string]string{
					{"title": "New Here?", "body": "Plan your visit and see what we're about.", "buttonText": "Learn More", "buttonUrl": "/about", "image": "https://images.unsplash.com/photo-1507643179173-617d699f8696?auto=format&fit=crop&q=80"},
					{"title": "Get Involved", "body": "Find a group or serve with us.", "buttonText": "Next Steps", "buttonUrl": "/next-steps", "image": "https://images.unsplash.com/photo-1529070538774-1843cb3265df?auto=format&fit=crop&q=80"},
					{"title": "Events", "body": "See what's coming up next.", "buttonText": "View Calendar", "buttonUrl": "/events", "image": "https://images.unsplash.com/photo-1511632765486-a01980e01a18?auto=format&fit=crop&q=80"},
				},
			}},
			{"home", "service_types", map[string]any{
				"types": []map[string]string{
					{
						"title":       "First Wednesday",
						"description": "On the first Wednesday of the month, students join the church for First Wednesday! The students are encouraged to gather in the student section to worship and listen to the message together!",
						"imageUrl":    "https://images.unsplash.com/photo-1523580494863-6f3031224c94?auto=format&fit=crop&q=80",
						"alignment":   "right",
					},
					{
						"title":       "Life Night",
						"description": "Life Night is our dynamic, next-level worship service that we put on for students each month. Life Nights are our evangelistic services that are geared toward the lost.",
						"imageUrl":    "https://images.unsplash.com/photo-1493225255756-d9584f8606e9?auto=format&fit=crop&q=80",
						"alignment":   "left",
					},
				},
			}},
		},
		"about": {
			{"about", "intro", map[string]any{
				"title":    "Who We Are",
				"body":     "We are a community of believers passionate about sharing the love of Christ. Our mission is to love God, love people, and make disciples.",
				"imageUrl": "https://images.unsplash.com/photo-1510590337019-5ef8d3d32116?auto=format&fit=crop&q=80",
			}},
			{"about", "values", map[string]any{
				"title":    "What to Expect",
				"body":     "Join us for a time of worship, teaching, and fellowship. Come as you are! We have programs for kids, youth, and adults.",
				"imageUrl": "https://images.unsplash.com/photo-1438232992991-995b7058bbb3?auto=format&fit=crop&q=80",
			}},
			{"about", "team", map[string]any{
				"leaders": []map[string]string{
					{"name": "Pastor John Doe", "role": "Lead Pastor", "imageUrl": ""},
					{"name": "Jane Smith", "role": "Worship Leader", "imageUrl": ""},
				},
			}},
		},
		"next-steps": {
			{"next-steps", "steps", map[string]any{
				"list": []map[string]string{
					{"title": "Attend a Service", "description": "Join us this Sunday at 9AM or 11AM.", "buttonText": "Plan Your Visit", "buttonUrl": "/", "imageUrl": ""},
					{"title": "Join a Group", "description": "Find community and grow together in a small group.", "buttonText": "Find a Group", "buttonUrl": "/events", "imageUrl": ""},
					{"title": "Start Serving", "description": "Make a difference by joining a volunteer team.", "buttonText": "Join a Team", "buttonUrl": "/contact", "imageUrl": ""},
				},
			}},
		},
		"contact": {
			{"contact", "info", map[string]any{
				"address":      "123 Main St, Anytown, USA",
				"email":        "info@church.com",
				"phone":        "(555) 123-4567",
				"serviceTimes": "Sundays at 9:00 AM & 11:00 AM",
			}},
		},
		"global": {
			{"global", "social_links", map[string]any{
				"links": []map[string]string{
					{"platform": "facebook", "url": "https://facebook.com"},
					{"platform": "instagram", "url": "https://instagram.com"},
					{"platform": "youtube", "url": "https://youtube.com"},
				},
			}},
		},
	}

	for page, slots := range pages {
		existing, err := queries.ListSectionsByPage(ctx, page)
		if err != nil {
			return fmt.Errorf("checking page %q: %w", page, err)
		}
		if len(existing) > 0 {
			continue
		}
		for _, s := range slots {
			raw, err := json.Marshal(s.content)
			if err != nil {
				return fmt.Errorf("encoding seed section %s/%s: %w", s.page, s.key, err)
			}
			if _, err := queries.UpsertSection(ctx, UpsertSectionParams{
				PageSlug:   s.page,
				SectionKey: s.key,
				Content:    raw,
				UpdatedAt:  now,
			}); err != nil {
				return fmt.Errorf("seeding section %s/%s: %w", s.page, s.key, err)
			}
		}
		slog.Info("seeded page content", "page", page, "sections", len(slots))
	}

	if err := seedSettings(ctx, queries, now); err != nil {
		return err
	}
	if err := seedShortcuts(ctx, queries); err != nil {
		return err
	}
	return seedEvents(ctx, queries, now)
}

func seedSettings(ctx context.Context, queries *Queries, now time.Time) error {
	existing, err := queries.ListSettings(ctx)
	if err != nil {
		return fmt.Errorf("checking settings: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}

	defaults := []struct{ key, value string }{
		{"site_name", "Grace Community Church"},
		{"primary_color", "#1e293b"},
		{"secondary_color", "#f1f5f9"},
		{"contact_email", "info@church.com"},
		{"contact_phone", "(555) 123-4567"},
		{"contact_address", "123 Main St, Anytown, USA"},
		{"menu_bg_color", "#ffffff"},
		{"menu_text_color", "#1e293b"},
		{"site_bg_color", "#ffffff"},
		{"site_text_color", "#1e293b"},
		{"font_family", "Inter"},
	}
	for _, d := range defaults {
		value, err := json.Marshal(d.value)
		if err != nil {
			return fmt.Errorf("encoding setting %q: %w", d.key, err)
		}
		if _, err := queries.UpsertSetting(ctx, d.key, value, now); err != nil {
			return fmt.Errorf("seeding setting %q: %w", d.key, err)
		}
	}
	slog.Info("seeded default settings", "count", len(defaults))
	return nil
}

func seedShortcuts(ctx context.Context, queries *Queries) error {
	existing, err := queries.ListShortcuts(ctx)
	if err != nil {
		return fmt.Errorf("checking shortcuts: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}

	defaults := []CreateShortcutParams{
		{Title: "Home Page", Description: "Edit hero, schedule, service types", Icon: "LayoutTemplate", Href: "/leader/home", Color: "text-blue-500", BgColor: "bg-blue-500/10", Position: 1},
		{Title: "Events", Description: "Manage church calendar", Icon: "Calendar", Href: "/leader/events", Color: "text-purple-500", BgColor: "bg-purple-500/10", Position: 2},
		{Title: "Media", Description: "Upload photos & files", Icon: "Image", Href: "/leader/media", Color: "text-green-500", BgColor: "bg-green-500/10", Position: 3},
		{Title: "Settings", Description: "Theme & global configs", Icon: "Settings", Href: "/leader/settings", Color: "text-orange-500", BgColor: "bg-orange-500/10", Position: 4},
	}
	for _, d := range defaults {
		if _, err := queries.CreateShortcut(ctx, d); err != nil {
			return fmt.Errorf("seeding shortcut %q: %w", d.Title, err)
		}
	}
	slog.Info("seeded dashboard shortcuts", "count", len(defaults))
	return nil
}

func seedEvents(ctx context.Context, queries *Queries, now time.Time) error {
	existing, err := queries.ListEvents(ctx)
	if err != nil {
		return fmt.Errorf("checking events: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}

	defaults := []CreateEventParams{
		{
			Title:       "Sunday Service",
			Description: "Join us for worship and a message.",
			Date:        now.AddDate(0, 0, 3),
			TimeLabel:   "10:00 AM",
			Location:    "Main Sanctuary",
			ImageURL:    "https://images.unsplash.com/photo-1438232992991-995b7058bbb3?auto=format&fit=crop&q=80",
			Tags:        []string{"service", "worship"},
			CreatedAt:   now,
		},
		{
			Title:       "Youth Group",
			Description: "Fun, games, and fellowship for grades 6-12.",
			Date:        now.AddDate(0, 0, 5),
			TimeLabel:   "6:30 PM",
			Location:    "Youth Hall",
			ImageURL:    "https://images.unsplash.com/photo-1529070538774-1843cb3265df?auto=format&fit=crop&q=80",
			Tags:        []string{"youth"},
			CreatedAt:   now,
		},
	}
	for _, d := range defaults {
		if _, err := queries.CreateEvent(ctx, d); err != nil {
			return fmt.Errorf("seeding event %q: %w", d.Title, err)
		}
	}
	slog.Info("seeded starter events", "count", len(defaults))
	return nil
}
