// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"github.com/hiinaspace/nyaastats/internal/models"
	"github.com/hiinaspace/nyaastats/internal/pipeline"
	"github.com/hiinaspace/nyaastats/internal/timeseries"
)

const (
	matchesFile       = "matches.json"
	episodesFile      = "episodes.json"
	moviesFile        = "movies.json"
	rankingsFile      = "rankings.json"
	contributionsFile = "torrent_downloads.json"
	diagnosticsFile   = "diagnostics.json"
)

// writeOutputs writes one JSON document per product of the run into dir.
func writeOutputs(dir string, out *pipeline.Output) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	rankings := timeseries.GroupByWeek(out.Rankings)
	if rankings == nil {
		rankings = []models.WeekTable{}
	}

	files := []struct {
		name  string
		value any
	}{
		{matchesFile, out.Matches},
		{episodesFile, nonNil(out.Episodes)},
		{moviesFile, nonNil(out.Movies)},
		{rankingsFile, rankings},
		{contributionsFile, nonNil(out.Contributions)},
		{diagnosticsFile, out.Diagnostics},
	}

	for _, f := range files {
		path := filepath.Join(dir, f.name)
		if err := writeJSONFile(path, f.value); err != nil {
			return err
		}
		log.Debug().Str("path", path).Msg("wrote output")
	}

	return nil
}

// writeJSONFile writes through a temp file so readers never see a partial document.
func writeJSONFile(path string, v any) error {
	tmp := path + ".tmp"

	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create %s: %w", tmp, err)
	}

	if err := writeJSON(f, v); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("close %s: %w", tmp, err)
	}

	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename %s: %w", tmp, err)
	}
	return nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
