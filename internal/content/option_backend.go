// Copyright (c) 2025-2026 PursueGen
// SPDX-License-Identifier: GPL-3.0-or-later

package content

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/pursuegen/pursue-go/internal/model"
	"github.com/pursuegen/pursue-go/internal/store"
)

// Option bag names. Sections live in one bag per page, settings and
// shortcuts each in a single bag.
const (
	optionContentPrefix = "pursue_content_"
	optionSettings      = "pursue_settings"
	optionShortcuts     = "pursue_shortcuts"
)

// OptionBackend stores content in flat option bags: one JSON document per
// bag, addressed by name. It serves installs whose hosting platform only
// offers a key/value options table. Read-modify-write cycles on a bag are
// serialized through a per-bag mutex, since the options table has no
// conflict target finer than the whole document.
type OptionBackend struct {
	queries *store.Queries

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewOptionBackend returns a Backend over the options table.
func NewOptionBackend(queries *store.Queries) *OptionBackend {
	return &OptionBackend{
		queries: queries,
		locks:   make(map[string]*sync.Mutex),
	}
}

// bagLock returns the mutex guarding one option bag.
func (b *OptionBackend) bagLock(name string) *sync.Mutex {
	b.mu.Lock()
	defer b.mu.Unlock()
	l, ok := b.locks[name]
	if !ok {
		l = &sync.Mutex{}
		b.locks[name] = l
	}
	return l
}

type optionEntry struct {
	Content   json.RawMessage `json:"content"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

func (b *OptionBackend) readBag(ctx context.Context, name string) (map[string]optionEntry, error) {
	raw, err := b.queries.GetOption(ctx, name)
	if errors.Is(err, sql.ErrNoRows) {
		return map[string]optionEntry{}, nil
	}
	if err != nil {
		return nil, err
	}
	bag := map[string]optionEntry{}
	if err := json.Unmarshal([]byte(raw), &bag); err != nil {
		return nil, fmt.Errorf("decoding option bag %q: %w", name, err)
	}
	return bag, nil
}

func (b *OptionBackend) writeBag(ctx context.Context, name string, bag map[string]optionEntry) error {
	raw, err := json.Marshal(bag)
	if err != nil {
		return fmt.Errorf("encoding option bag %q: %w", name, err)
	}
	return b.queries.SetOption(ctx, name, string(raw), time.Now())
}

func (b *OptionBackend) ListSections(ctx context.Context, pageSlug string) ([]model.Section, error) {
	bag, err := b.readBag(ctx, optionContentPrefix+pageSlug)
	if err != nil {
		return nil, err
	}

	sections := make([]model.Section, 0, len(bag))
	for key, entry := range bag {
		sections = append(sections, model.Section{
			PageSlug:   pageSlug,
			SectionKey: key,
			Content:    entry.Content,
			UpdatedAt:  entry.UpdatedAt,
		})
	}
	sort.Slice(sections, func(i, j int) bool {
		return sections[i].SectionKey < sections[j].SectionKey
	})
	return sections, nil
}

func (b *OptionBackend) GetSection(ctx context.Context, pageSlug, sectionKey string) (model.Section, error) {
	bag, err := b.readBag(ctx, optionContentPrefix+pageSlug)
	if err != nil {
		return model.Section{}, err
	}
	entry, ok := bag[sectionKey]
	if !ok {
		return model.Section{}, ErrNotFound
	}
	return model.Section{
		PageSlug:   pageSlug,
		SectionKey: sectionKey,
		Content:    entry.Content,
		UpdatedAt:  entry.UpdatedAt,
	}, nil
}

func (b *OptionBackend) UpsertSection(ctx context.Context, pageSlug, sectionKey string, content json.RawMessage) (model.Section, error) {
	name := optionContentPrefix + pageSlug
	lock := b.bagLock(name)
	lock.Lock()
	defer lock.Unlock()

	bag, err := b.readBag(ctx, name)
	if err != nil {
		return model.Section{}, err
	}
	now := time.Now()
	bag[sectionKey] = optionEntry{Content: content, UpdatedAt: now}
	if err := b.writeBag(ctx, name, bag); err != nil {
		return model.Section{}, err
	}
	return model.Section{
		PageSlug:   pageSlug,
		SectionKey: sectionKey,
		Content:    content,
		UpdatedAt:  now,
	}, nil
}

func (b *OptionBackend) ListSettings(ctx context.Context) ([]model.Setting, error) {
	bag, err := b.readBag(ctx, optionSettings)
	if err != nil {
		return nil, err
	}

	settings := make([]model.Setting, 0, len(bag))
	for key, entry := range bag {
		settings = append(settings, model.Setting{
			Key:       key,
			Value:     entry.Content,
			UpdatedAt: entry.UpdatedAt,
		})
	}
	sort.Slice(settings, func(i, j int) bool {
		return settings[i].Key < settings[j].Key
	})
	return settings, nil
}

func (b *OptionBackend) UpdateSettings(ctx context.Context, updates []model.SettingUpdate) ([]model.Setting, error) {
	lock := b.bagLock(optionSettings)
	lock.Lock()
	defer lock.Unlock()

	bag, err := b.readBag(ctx, optionSettings)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	for _, u := range updates {
		bag[u.Key] = optionEntry{Content: u.Value, UpdatedAt: now}
	}
	if err := b.writeBag(ctx, optionSettings, bag); err != nil {
		return nil, err
	}

	settings := make([]model.Setting, 0, len(bag))
	for key, entry := range bag {
		settings = append(settings, model.Setting{
			Key:       key,
			Value:     entry.Content,
			UpdatedAt: entry.UpdatedAt,
		})
	}
	sort.Slice(settings, func(i, j int) bool {
		return settings[i].Key < settings[j].Key
	})
	return settings, nil
}

// shortcutBag is the stored shape of the shortcuts option.
type shortcutBag struct {
	NextID int64            `json:"nextId"`
	Items  []model.Shortcut `json:"items"`
}

func (b *OptionBackend) readShortcutBag(ctx context.Context) (shortcutBag, error) {
	raw, err := b.queries.GetOption(ctx, optionShortcuts)
	if errors.Is(err, sql.ErrNoRows) {
		return shortcutBag{NextID: 1}, nil
	}
	if err != nil {
		return shortcutBag{}, err
	}
	var bag shortcutBag
	if err := json.Unmarshal([]byte(raw), &bag); err != nil {
		return shortcutBag{}, fmt.Errorf("decoding option bag %q: %w", optionShortcuts, err)
	}
	if bag.NextID == 0 {
		bag.NextID = 1
	}
	return bag, nil
}

func (b *OptionBackend) writeShortcutBag(ctx context.Context, bag shortcutBag) error {
	raw, err := json.Marshal(bag)
	if err != nil {
		return fmt.Errorf("encoding option bag %q: %w", optionShortcuts, err)
	}
	return b.queries.SetOption(ctx, optionShortcuts, string(raw), time.Now())
}

func (b *OptionBackend) ListShortcuts(ctx context.Context) ([]model.Shortcut, error) {
	bag, err := b.readShortcutBag(ctx)
	if err != nil {
		return nil, err
	}
	items := append([]model.Shortcut(nil), bag.Items...)
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Position < items[j].Position
	})
	return items, nil
}

func (b *OptionBackend) CreateShortcut(ctx context.Context, shortcut model.Shortcut) (model.Shortcut, error) {
	lock := b.bagLock(optionShortcuts)
	lock.Lock()
	defer lock.Unlock()

	bag, err := b.readShortcutBag(ctx)
	if err != nil {
		return model.Shortcut{}, err
	}
	shortcut.ID = bag.NextID
	bag.NextID++
	bag.Items = append(bag.Items, shortcut)
	if err := b.writeShortcutBag(ctx, bag); err != nil {
		return model.Shortcut{}, err
	}
	return shortcut, nil
}

func (b *OptionBackend) DeleteShortcut(ctx context.Context, id int64) error {
	lock := b.bagLock(optionShortcuts)
	lock.Lock()
	defer lock.Unlock()

	bag, err := b.readShortcutBag(ctx)
	if err != nil {
		return err
	}
	items := bag.Items[:0]
	for _, s := range bag.Items {
		if s.ID != id {
			items = append(items, s)
		}
	}
	bag.Items = items
	return b.writeShortcutBag(ctx, bag)
}
