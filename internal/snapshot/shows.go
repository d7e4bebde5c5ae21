// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package snapshot

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/hiinaspace/nyaastats/internal/models"
)

// showEntry is the on-disk catalog format. JSON catalogs parse the same way.
type showEntry struct {
	ID             int      `yaml:"id"`
	CanonicalTitle string   `yaml:"canonical_title"`
	AltTitle       string   `yaml:"alt_title"`
	Synonyms       []string `yaml:"synonyms"`
	StartDate      string   `yaml:"start_date"`
	EpisodeCount   *int     `yaml:"episode_count"`
	Category       string   `yaml:"category"`
}

// LoadShows reads the show catalog from path.
func LoadShows(path string) ([]models.ShowRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read show catalog: %w", err)
	}
	shows, err := ParseShows(data)
	if err != nil {
		return nil, fmt.Errorf("parse show catalog %s: %w", path, err)
	}
	return shows, nil
}

// ParseShows decodes a YAML or JSON list of shows. Entries without an id or
// canonical title, or with an unparseable start date, are skipped.
func ParseShows(data []byte) ([]models.ShowRecord, error) {
	var entries []showEntry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, err
	}

	shows := make([]models.ShowRecord, 0, len(entries))
	for i, e := range entries {
		if e.ID <= 0 || strings.TrimSpace(e.CanonicalTitle) == "" {
			log.Warn().Int("index", i).Int("showId", e.ID).Msg("skipping catalog entry without id or title")
			continue
		}

		var start time.Time
		if e.StartDate != "" {
			t, err := time.Parse(time.DateOnly, e.StartDate)
			if err != nil {
				log.Warn().Int("showId", e.ID).Str("startDate", e.StartDate).Msg("skipping catalog entry with invalid start date")
				continue
			}
			start = t
		}

		shows = append(shows, models.ShowRecord{
			ID:             e.ID,
			CanonicalTitle: strings.TrimSpace(e.CanonicalTitle),
			AltTitle:       strings.TrimSpace(e.AltTitle),
			Synonyms:       e.Synonyms,
			StartDate:      start,
			EpisodeCount:   e.EpisodeCount,
			Category:       models.ParseCategory(e.Category),
		})
	}

	return shows, nil
}
