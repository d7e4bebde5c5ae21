// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package models

// MatchMethod names the strategy that produced a MatchResult.
type MatchMethod string

const (
	MethodEpisodeRange   MatchMethod = "episode_range"
	MethodManualOverride MatchMethod = "manual_override"
	MethodSeasonAware    MatchMethod = "season_aware"
	MethodFuzzy          MatchMethod = "fuzzy"
	MethodNone           MatchMethod = "none"
)

// MatchResult attributes one torrent to at most one show. A result with
// MethodNone carries the best raw fuzzy score seen, for diagnostics.
type MatchResult struct {
	Infohash       string      `json:"infohash"`
	ShowID         *int        `json:"show_id"`
	Score          int         `json:"score"`
	Method         MatchMethod `json:"method"`
	MatchedVariant string      `json:"matched_variant,omitempty"`
	SeasonHint     *int        `json:"season_hint,omitempty"`
}

// Matched reports whether the result names a show.
func (m MatchResult) Matched() bool {
	return m.ShowID != nil
}

// NoMatch returns a MethodNone result with a diagnostic score.
func NoMatch(score int) MatchResult {
	return MatchResult{Score: score, Method: MethodNone}
}
