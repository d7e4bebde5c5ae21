// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package models holds the records that flow between pipeline stages.
// Every stage produces new records; nothing here is mutated after creation.
package models

import (
	"strings"
	"time"
)

// Category is the show format reported by the metadata provider.
type Category string

const (
	CategoryTV      Category = "TV"
	CategoryTVShort Category = "TV_SHORT"
	CategoryMovie   Category = "MOVIE"
	CategoryOVA     Category = "OVA"
	CategoryONA     Category = "ONA"
	CategorySpecial Category = "SPECIAL"
)

// ParseCategory maps a provider format string onto a Category. Unknown
// values fall back to TV, which is what the provider uses for most entries.
func ParseCategory(s string) Category {
	switch Category(strings.ToUpper(strings.TrimSpace(s))) {
	case CategoryTVShort:
		return CategoryTVShort
	case CategoryMovie:
		return CategoryMovie
	case CategoryOVA:
		return CategoryOVA
	case CategoryONA:
		return CategoryONA
	case CategorySpecial:
		return CategorySpecial
	default:
		return CategoryTV
	}
}

// ShowRecord is a canonical media entry torrents are attributed to.
type ShowRecord struct {
	ID             int       `json:"id"`
	CanonicalTitle string    `json:"canonical_title"`
	AltTitle       string    `json:"alt_title,omitempty"`
	Synonyms       []string  `json:"synonyms,omitempty"`
	StartDate      time.Time `json:"start_date"`
	EpisodeCount   *int      `json:"episode_count,omitempty"`
	Category       Category  `json:"category"`
}

// IsMovie reports whether downloads for this show are bucketed without an episode dimension.
func (s ShowRecord) IsMovie() bool {
	return s.Category == CategoryMovie
}

// Titles returns the canonical title, alt title and synonyms, skipping blanks.
func (s ShowRecord) Titles() []string {
	out := make([]string, 0, 2+len(s.Synonyms))
	for _, t := range append([]string{s.CanonicalTitle, s.AltTitle}, s.Synonyms...) {
		if strings.TrimSpace(t) != "" {
			out = append(out, t)
		}
	}
	return out
}
