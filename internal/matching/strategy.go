// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package matching

import (
	"strings"

	"github.com/hiinaspace/nyaastats/internal/domain"
	"github.com/hiinaspace/nyaastats/internal/models"
	"github.com/hiinaspace/nyaastats/pkg/titles"
)

const (
	subtitleSeparator = " - "
	minPrefixLength   = 4
)

// Candidate is one title being matched.
type Candidate struct {
	Raw        string
	Normalized string
	Season     *int
	Episode    *int

	// best raw fuzzy score observed by any tier, reported on no match
	best int
}

func newCandidate(raw string, season, episode *int) *Candidate {
	return &Candidate{
		Raw:        raw,
		Normalized: titles.Normalize(raw),
		Season:     season,
		Episode:    episode,
	}
}

// Strategy is one match tier. Tiers are tried in order until one succeeds.
type Strategy interface {
	AttemptMatch(c *Candidate) (models.MatchResult, bool)
}

type episodeRangeStrategy struct {
	index  *Index
	ranges map[string][]domain.EpisodeRange
}

func newEpisodeRangeStrategy(index *Index, ranges []domain.EpisodeRange) *episodeRangeStrategy {
	s := &episodeRangeStrategy{index: index, ranges: make(map[string][]domain.EpisodeRange)}
	for _, r := range ranges {
		key := titles.Normalize(r.Title)
		s.ranges[key] = append(s.ranges[key], r)
	}
	return s
}

func (s *episodeRangeStrategy) AttemptMatch(c *Candidate) (models.MatchResult, bool) {
	if c.Episode == nil {
		return models.MatchResult{}, false
	}
	for _, r := range s.ranges[c.Normalized] {
		if !r.Contains(*c.Episode) {
			continue
		}
		entry, ok := s.index.Show(r.ShowID)
		if !ok {
			continue
		}
		return models.MatchResult{
			ShowID:         intPtr(entry.Show.ID),
			Score:          100,
			Method:         models.MethodEpisodeRange,
			MatchedVariant: entry.Show.CanonicalTitle,
		}, true
	}
	return models.MatchResult{}, false
}

type overrideStrategy struct {
	index     *Index
	overrides map[string]int
}

func newOverrideStrategy(index *Index, overrides map[string]int) *overrideStrategy {
	s := &overrideStrategy{index: index, overrides: make(map[string]int, len(overrides))}
	for title, id := range overrides {
		s.overrides[titles.Normalize(title)] = id
	}
	return s
}

func (s *overrideStrategy) AttemptMatch(c *Candidate) (models.MatchResult, bool) {
	id, ok := s.overrides[c.Normalized]
	if !ok {
		return models.MatchResult{}, false
	}
	entry, ok := s.index.Show(id)
	if !ok {
		return models.MatchResult{}, false
	}
	return models.MatchResult{
		ShowID:         intPtr(entry.Show.ID),
		Score:          100,
		Method:         models.MethodManualOverride,
		MatchedVariant: entry.Show.CanonicalTitle,
		SeasonHint:     copyInt(c.Season),
	}, true
}

type fuzzyStrategy struct {
	index     *Index
	threshold int
	bonus     int
}

func (s *fuzzyStrategy) AttemptMatch(c *Candidate) (models.MatchResult, bool) {
	sorted := tokenSort(c.Normalized)

	var (
		best      *ShowEntry
		bestScore int
		bestVar   string
		bonusUsed bool
	)

	for _, entry := range s.index.Entries() {
		bonus := 0
		if c.Season != nil && entry.HasSeason(*c.Season) {
			bonus = s.bonus
		}
		for i, variant := range entry.sorted {
			score := ratio(sorted, variant)
			if score > c.best {
				c.best = score
			}
			// strict comparison keeps the lowest show ID and first variant on ties
			if adjusted := score + bonus; adjusted > bestScore {
				best = entry
				bestScore = adjusted
				bestVar = entry.Variants[i]
				bonusUsed = bonus > 0
			}
		}
	}

	if best == nil || bestScore < s.threshold {
		return models.MatchResult{}, false
	}

	result := models.MatchResult{
		ShowID:         intPtr(best.Show.ID),
		Score:          min(bestScore, 100),
		Method:         models.MethodFuzzy,
		MatchedVariant: bestVar,
	}
	if bonusUsed {
		result.Method = models.MethodSeasonAware
		result.SeasonHint = copyInt(c.Season)
	}
	return result, true
}

// subtitleStrategy retries the override and fuzzy tiers on the part of the
// raw title before the first " - ", which drops long translated subtitles.
type subtitleStrategy struct {
	guard titles.Guard
	tiers []Strategy
}

func (s *subtitleStrategy) AttemptMatch(c *Candidate) (models.MatchResult, bool) {
	head, _, found := strings.Cut(c.Raw, subtitleSeparator)
	if !found {
		return models.MatchResult{}, false
	}

	prefix := newCandidate(strings.TrimSpace(head), c.Season, c.Episode)
	if !s.guard.Informative(prefix.Normalized) || len(prefix.Normalized) < minPrefixLength {
		return models.MatchResult{}, false
	}

	defer func() { c.best = max(c.best, prefix.best) }()
	for _, tier := range s.tiers {
		if result, ok := tier.AttemptMatch(prefix); ok {
			return result, true
		}
	}
	return models.MatchResult{}, false
}

func intPtr(v int) *int {
	return &v
}

func copyInt(v *int) *int {
	if v == nil {
		return nil
	}
	return intPtr(*v)
}
