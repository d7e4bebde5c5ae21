// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package matching

import (
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/hiinaspace/nyaastats/internal/domain"
	"github.com/hiinaspace/nyaastats/internal/models"
)

// Engine runs the match tiers against an Index. It is safe for concurrent use.
type Engine struct {
	index      *Index
	strategies []Strategy
}

// NewEngine validates cfg against the index and assembles the tiers:
// episode range, manual override, season-aware fuzzy, subtitle-stripped retry.
func NewEngine(index *Index, cfg domain.MatchingConfig) (*Engine, error) {
	if index == nil {
		return nil, errors.New("matching: nil index")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.ValidateShows(index.Contains); err != nil {
		return nil, err
	}

	override := newOverrideStrategy(index, cfg.Overrides)
	fuzzy := &fuzzyStrategy{index: index, threshold: cfg.FuzzyThreshold, bonus: cfg.SeasonBonus}

	return &Engine{
		index: index,
		strategies: []Strategy{
			newEpisodeRangeStrategy(index, cfg.EpisodeRanges),
			override,
			fuzzy,
			&subtitleStrategy{guard: index.Guard(), tiers: []Strategy{override, fuzzy}},
		},
	}, nil
}

// Index returns the universe the engine matches against.
func (e *Engine) Index() *Index {
	return e.index
}

// Match attributes title to at most one show. It never fails: an
// uninformative title or a score below threshold yields MethodNone with the
// best raw score seen.
func (e *Engine) Match(title string, season, episode *int) models.MatchResult {
	c := newCandidate(title, season, episode)
	if !e.index.Guard().Informative(c.Normalized) {
		return models.NoMatch(0)
	}

	for _, s := range e.strategies {
		if result, ok := s.AttemptMatch(c); ok {
			return result
		}
	}

	log.Trace().Str("title", title).Int("bestScore", c.best).Msg("no match")
	return models.NoMatch(c.best)
}
