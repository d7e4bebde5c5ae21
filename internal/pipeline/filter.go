// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package pipeline

import (
	"fmt"
	"strings"
	"time"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/hiinaspace/nyaastats/internal/domain"
	"github.com/hiinaspace/nyaastats/internal/models"
)

// filterEnv is what a torrent filter expression can see.
type filterEnv struct {
	Infohash  string         `expr:"infohash"`
	Filename  string         `expr:"filename"`
	Title     string         `expr:"title"`
	Season    int            `expr:"season"`
	Episode   int            `expr:"episode"`
	Published time.Time      `expr:"published"`
	Extra     map[string]any `expr:"extra"`
}

func newFilterEnv(rec models.TorrentRecord) filterEnv {
	env := filterEnv{
		Infohash:  rec.Infohash,
		Filename:  rec.Filename,
		Title:     rec.ParsedTitle,
		Published: rec.PublishTime,
		Extra:     rec.Extra.AsMap(),
	}
	if rec.ParsedSeason != nil {
		env.Season = *rec.ParsedSeason
	}
	if rec.ParsedEpisode != nil {
		env.Episode = *rec.ParsedEpisode
	}
	return env
}

// TorrentFilter is a compiled boolean expression deciding which torrents
// take part in a run. A nil filter keeps everything.
type TorrentFilter struct {
	source  string
	program *vm.Program
}

// CompileFilter compiles code. Blank code yields a nil filter.
func CompileFilter(code string) (*TorrentFilter, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, nil
	}

	program, err := expr.Compile(code, expr.Env(filterEnv{}), expr.AsBool())
	if err != nil {
		return nil, &domain.ConfigError{Field: "torrentFilter", Reason: err.Error()}
	}
	return &TorrentFilter{source: code, program: program}, nil
}

// String returns the expression source.
func (f *TorrentFilter) String() string {
	if f == nil {
		return ""
	}
	return f.source
}

// Allow evaluates the filter for rec.
func (f *TorrentFilter) Allow(rec models.TorrentRecord) (bool, error) {
	if f == nil {
		return true, nil
	}
	out, err := expr.Run(f.program, newFilterEnv(rec))
	if err != nil {
		return false, fmt.Errorf("evaluate torrent filter for %s: %w", rec.Infohash, err)
	}
	keep, ok := out.(bool)
	if !ok {
		return false, fmt.Errorf("torrent filter returned %T, want bool", out)
	}
	return keep, nil
}
