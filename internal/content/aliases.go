// Copyright (c) 2025-2026 PursueGen
// SPDX-License-Identifier: GPL-3.0-or-later

package content

// sectionAliases maps (pageSlug, canonical key) to a legacy key that older
// page components still read and write. Both keys must always hold the
// same content; the Store heals and write-throughs to keep them aligned.
var sectionAliases = map[string]map[string]string{
	"home": {
		"featured": "featured_cards",
	},
}

// aliasOf returns the legacy partner of a canonical key, if one exists.
func aliasOf(pageSlug, sectionKey string) (string, bool) {
	legacy, ok := sectionAliases[pageSlug][sectionKey]
	return legacy, ok
}

// canonicalOf returns the canonical partner of a legacy key, if one exists.
func canonicalOf(pageSlug, sectionKey string) (string, bool) {
	for canonical, legacy := range sectionAliases[pageSlug] {
		if legacy == sectionKey {
			return canonical, true
		}
	}
	return "", false
}

// partnerOf returns the other name of an aliased section, whichever side
// was given, or false when the key participates in no alias pair.
func partnerOf(pageSlug, sectionKey string) (string, bool) {
	if legacy, ok := aliasOf(pageSlug, sectionKey); ok {
		return legacy, true
	}
	return canonicalOf(pageSlug, sectionKey)
}
