// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package matching attributes torrent titles to shows of the catalog.
package matching

import (
	"regexp"
	"slices"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/hiinaspace/nyaastats/internal/models"
	"github.com/hiinaspace/nyaastats/pkg/titles"
)

var (
	seasonWord    = regexp.MustCompile(`\bseason (\d+)\b`)
	seasonOrdinal = regexp.MustCompile(`\b(\d+)(?:st|nd|rd|th) season\b`)
)

// ShowEntry is the precomputed match data for one show.
type ShowEntry struct {
	Show models.ShowRecord

	// Variants are the distinct informative normalized titles, sorted.
	Variants []string

	sorted  []string
	seasons map[int]struct{}
}

// HasSeason reports whether the normalized canonical title carries a
// "season N" or "Nth season" marker for n.
func (e *ShowEntry) HasSeason(n int) bool {
	_, ok := e.seasons[n]
	return ok
}

// Index is the read-only match universe shared by all workers.
type Index struct {
	guard   titles.Guard
	entries []*ShowEntry
	byID    map[int]*ShowEntry
}

// NewIndex builds the index. Entries are kept in ascending show ID order;
// a duplicate ID keeps the first record seen.
func NewIndex(shows []models.ShowRecord, guard titles.Guard) *Index {
	ix := &Index{
		guard:   guard,
		entries: make([]*ShowEntry, 0, len(shows)),
		byID:    make(map[int]*ShowEntry, len(shows)),
	}

	for _, show := range shows {
		if _, dup := ix.byID[show.ID]; dup {
			log.Warn().Int("showId", show.ID).Str("title", show.CanonicalTitle).Msg("duplicate show id in catalog, keeping first")
			continue
		}

		entry := &ShowEntry{Show: show, seasons: seasonMarkers(titles.Normalize(show.CanonicalTitle))}
		for _, t := range show.Titles() {
			normalized := titles.Normalize(t)
			if !guard.Informative(normalized) || slices.Contains(entry.Variants, normalized) {
				continue
			}
			entry.Variants = append(entry.Variants, normalized)
		}
		slices.Sort(entry.Variants)

		entry.sorted = make([]string, len(entry.Variants))
		for i, v := range entry.Variants {
			entry.sorted[i] = tokenSort(v)
		}

		if len(entry.Variants) == 0 {
			log.Debug().Int("showId", show.ID).Str("title", show.CanonicalTitle).Msg("show has no informative title variants")
		}

		ix.entries = append(ix.entries, entry)
		ix.byID[show.ID] = entry
	}

	slices.SortFunc(ix.entries, func(a, b *ShowEntry) int {
		return a.Show.ID - b.Show.ID
	})

	return ix
}

// Guard returns the guard variants were filtered with.
func (ix *Index) Guard() titles.Guard {
	return ix.guard
}

// Show looks up an entry by show ID.
func (ix *Index) Show(id int) (*ShowEntry, bool) {
	e, ok := ix.byID[id]
	return e, ok
}

// Contains reports whether id is part of the universe.
func (ix *Index) Contains(id int) bool {
	_, ok := ix.byID[id]
	return ok
}

// Entries returns the entries in ascending show ID order.
func (ix *Index) Entries() []*ShowEntry {
	return ix.entries
}

// Len returns the number of shows.
func (ix *Index) Len() int {
	return len(ix.entries)
}

func seasonMarkers(normalized string) map[int]struct{} {
	seasons := make(map[int]struct{})
	for _, re := range []*regexp.Regexp{seasonWord, seasonOrdinal} {
		for _, m := range re.FindAllStringSubmatch(normalized, -1) {
			n, err := strconv.Atoi(m[1])
			if err != nil || n < 1 {
				continue
			}
			seasons[n] = struct{}{}
		}
	}
	return seasons
}
