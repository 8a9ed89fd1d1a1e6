// Copyright (c) 2025-2026 PursueGen
// SPDX-License-Identifier: GPL-3.0-or-later

package content

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/pursuegen/pursue-go/internal/cache"
	"github.com/pursuegen/pursue-go/internal/model"
)

const (
	cacheKeySections  = "content:sections:"
	cacheKeySettings  = "content:settings"
	cacheKeyShortcuts = "content:shortcuts"

	defaultCacheTTL = 5 * time.Minute
)

// Store is the section/settings/shortcuts service. It layers alias
// reconciliation and read caching over a Backend, so both backends get
// identical behavior from a single implementation of the rules.
type Store struct {
	backend Backend
	cache   cache.Cache
	ttl     time.Duration
}

// NewStore returns a Store over the given backend. The cache may be nil,
// which disables read caching.
func NewStore(backend Backend, c cache.Cache) *Store {
	return &Store{backend: backend, cache: c, ttl: defaultCacheTTL}
}

// ListSections returns all sections of a page, healing declared aliases
// so a canonical key is never empty while its legacy partner has content.
// Unknown pages return an empty list.
func (s *Store) ListSections(ctx context.Context, pageSlug string) ([]model.Section, error) {
	if cached, ok := s.cachedSections(ctx, pageSlug); ok {
		return cached, nil
	}

	sections, err := s.backend.ListSections(ctx, pageSlug)
	if err != nil {
		return nil, err
	}
	sections, err = s.healAliases(ctx, pageSlug, sections)
	if err != nil {
		return nil, err
	}

	s.cacheSections(ctx, pageSlug, sections)
	return sections, nil
}

// GetSection returns one section. A missing or empty canonical key with a
// populated legacy partner is healed on the way out.
func (s *Store) GetSection(ctx context.Context, pageSlug, sectionKey string) (model.Section, error) {
	section, err := s.backend.GetSection(ctx, pageSlug, sectionKey)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return model.Section{}, err
	}
	if err == nil && !model.EmptyContent(section.Content) {
		return section, nil
	}

	partner, ok := partnerOf(pageSlug, sectionKey)
	if !ok {
		if err != nil {
			return model.Section{}, err
		}
		return section, nil
	}

	other, otherErr := s.backend.GetSection(ctx, pageSlug, partner)
	if otherErr != nil || model.EmptyContent(other.Content) {
		if err != nil {
			return model.Section{}, err
		}
		return section, nil
	}

	healed, healErr := s.backend.UpsertSection(ctx, pageSlug, sectionKey, other.Content)
	if healErr != nil {
		return model.Section{}, healErr
	}
	s.invalidateSections(ctx, pageSlug)
	return healed, nil
}

// UpsertSection writes a section, propagating the content to its alias
// partner so the two names never diverge.
func (s *Store) UpsertSection(ctx context.Context, pageSlug, sectionKey string, content json.RawMessage) (model.Section, error) {
	section, err := s.backend.UpsertSection(ctx, pageSlug, sectionKey, content)
	if err != nil {
		return model.Section{}, err
	}

	if partner, ok := partnerOf(pageSlug, sectionKey); ok {
		if _, err := s.backend.UpsertSection(ctx, pageSlug, partner, content); err != nil {
			return model.Section{}, err
		}
	}

	s.invalidateSections(ctx, pageSlug)
	return section, nil
}

// healAliases repairs empty canonical keys from their populated legacy
// partners, persisting the repair so later reads need no synthesis.
func (s *Store) healAliases(ctx context.Context, pageSlug string, sections []model.Section) ([]model.Section, error) {
	aliases := sectionAliases[pageSlug]
	if len(aliases) == 0 {
		return sections, nil
	}

	byKey := make(map[string]int, len(sections))
	for i, section := range sections {
		byKey[section.SectionKey] = i
	}

	for canonical, legacy := range aliases {
		legacyIdx, hasLegacy := byKey[legacy]
		if !hasLegacy || model.EmptyContent(sections[legacyIdx].Content) {
			continue
		}
		canonicalIdx, hasCanonical := byKey[canonical]
		if hasCanonical && !model.EmptyContent(sections[canonicalIdx].Content) {
			continue
		}

		healed, err := s.backend.UpsertSection(ctx, pageSlug, canonical, sections[legacyIdx].Content)
		if err != nil {
			return nil, err
		}
		if hasCanonical {
			sections[canonicalIdx] = healed
		} else {
			sections = append(sections, healed)
			byKey[canonical] = len(sections) - 1
		}
		slog.Info("healed section alias", "page", pageSlug, "canonical", canonical, "legacy", legacy)
	}
	return sections, nil
}

// ListSettings returns all settings.
func (s *Store) ListSettings(ctx context.Context) ([]model.Setting, error) {
	if s.cache != nil {
		if raw, err := s.cache.Get(ctx, cacheKeySettings); err == nil {
			var settings []model.Setting
			if json.Unmarshal(raw, &settings) == nil {
				return settings, nil
			}
		}
	}

	settings, err := s.backend.ListSettings(ctx)
	if err != nil {
		return nil, err
	}
	s.cachePut(ctx, cacheKeySettings, settings)
	return settings, nil
}

// UpdateSettings applies a bulk settings write and returns the resulting
// full list.
func (s *Store) UpdateSettings(ctx context.Context, updates []model.SettingUpdate) ([]model.Setting, error) {
	settings, err := s.backend.UpdateSettings(ctx, updates)
	if err != nil {
		return nil, err
	}
	s.cacheDelete(ctx, cacheKeySettings)
	return settings, nil
}

// ListShortcuts returns the quick-link list in display order.
func (s *Store) ListShortcuts(ctx context.Context) ([]model.Shortcut, error) {
	if s.cache != nil {
		if raw, err := s.cache.Get(ctx, cacheKeyShortcuts); err == nil {
			var shortcuts []model.Shortcut
			if json.Unmarshal(raw, &shortcuts) == nil {
				return shortcuts, nil
			}
		}
	}

	shortcuts, err := s.backend.ListShortcuts(ctx)
	if err != nil {
		return nil, err
	}
	s.cachePut(ctx, cacheKeyShortcuts, shortcuts)
	return shortcuts, nil
}

// CreateShortcut appends a quick-link entry.
func (s *Store) CreateShortcut(ctx context.Context, shortcut model.Shortcut) (model.Shortcut, error) {
	created, err := s.backend.CreateShortcut(ctx, shortcut)
	if err != nil {
		return model.Shortcut{}, err
	}
	s.cacheDelete(ctx, cacheKeyShortcuts)
	return created, nil
}

// DeleteShortcut removes a quick-link entry.
func (s *Store) DeleteShortcut(ctx context.Context, id int64) error {
	if err := s.backend.DeleteShortcut(ctx, id); err != nil {
		return err
	}
	s.cacheDelete(ctx, cacheKeyShortcuts)
	return nil
}

func (s *Store) cachedSections(ctx context.Context, pageSlug string) ([]model.Section, bool) {
	if s.cache == nil {
		return nil, false
	}
	raw, err := s.cache.Get(ctx, cacheKeySections+pageSlug)
	if err != nil {
		return nil, false
	}
	var sections []model.Section
	if err := json.Unmarshal(raw, &sections); err != nil {
		return nil, false
	}
	return sections, true
}

func (s *Store) cacheSections(ctx context.Context, pageSlug string, sections []model.Section) {
	s.cachePut(ctx, cacheKeySections+pageSlug, sections)
}

func (s *Store) invalidateSections(ctx context.Context, pageSlug string) {
	s.cacheDelete(ctx, cacheKeySections+pageSlug)
}

func (s *Store) cachePut(ctx context.Context, key string, value any) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, raw, s.ttl); err != nil && !errors.Is(err, cache.ErrCacheClosed) {
		slog.Warn("cache set failed", "key", key, "error", err)
	}
}

func (s *Store) cacheDelete(ctx context.Context, key string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, key); err != nil && !errors.Is(err, cache.ErrCacheClosed) {
		slog.Warn("cache delete failed", "key", key, "error", err)
	}
}
