// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	DefaultFuzzyThreshold = 85
	DefaultSeasonBonus    = 10
	DefaultWeekOffset     = -5
	DefaultWeekStartDay   = "sunday"

	maxWeekOffsetHours = 14
)

// Config represents the application configuration
type Config struct {
	Version       string
	LogLevel      string `toml:"logLevel" mapstructure:"logLevel"`
	LogPath       string `toml:"logPath" mapstructure:"logPath"`
	LogMaxSize    int    `toml:"logMaxSize" mapstructure:"logMaxSize"`
	LogMaxBackups int    `toml:"logMaxBackups" mapstructure:"logMaxBackups"`

	DatabasePath string `toml:"databasePath" mapstructure:"databasePath"`
	ShowsPath    string `toml:"showsPath" mapstructure:"showsPath"`
	OutputDir    string `toml:"outputDir" mapstructure:"outputDir"`
	MetricsPath  string `toml:"metricsPath" mapstructure:"metricsPath"`

	// Since drops torrents published before this date (YYYY-MM-DD). Empty keeps everything.
	Since string `toml:"since" mapstructure:"since"`

	// Workers bounds the matching and aggregation worker pools. Zero uses GOMAXPROCS.
	Workers int `toml:"workers" mapstructure:"workers"`

	// TorrentFilter is an optional boolean expression evaluated per torrent before
	// matching. Torrents for which it is false are left out of the run.
	TorrentFilter string `toml:"torrentFilter" mapstructure:"torrentFilter"`

	Matching MatchingConfig `toml:"matching" mapstructure:"matching"`
	Week     WeekConfig     `toml:"week" mapstructure:"week"`
}

// MatchingConfig holds the tables and thresholds the match engine is built from.
type MatchingConfig struct {
	FuzzyThreshold int `toml:"fuzzyThreshold" mapstructure:"fuzzyThreshold"`
	SeasonBonus    int `toml:"seasonBonus" mapstructure:"seasonBonus"`

	Guard GuardConfig `toml:"guard" mapstructure:"guard"`

	// Overrides maps a normalized torrent title straight to a show id.
	Overrides map[string]int `toml:"overrides" mapstructure:"overrides"`

	// EpisodeRanges maps continuous episode numbering onto per-season shows.
	EpisodeRanges []EpisodeRange `toml:"episodeRanges" mapstructure:"episodeRanges"`

	// Corrections rewrites known-bad guessed titles before matching.
	Corrections map[string]string `toml:"corrections" mapstructure:"corrections"`
}

// GuardConfig parameterizes the low-information title guard.
type GuardConfig struct {
	MinLength    int  `toml:"minLength" mapstructure:"minLength"`
	RequireLatin bool `toml:"requireLatin" mapstructure:"requireLatin"`
}

// EpisodeRange sends episodes MinEpisode..MaxEpisode (inclusive) of Title to ShowID.
type EpisodeRange struct {
	Title      string `toml:"title" mapstructure:"title"`
	MinEpisode int    `toml:"minEpisode" mapstructure:"minEpisode"`
	MaxEpisode int    `toml:"maxEpisode" mapstructure:"maxEpisode"`
	ShowID     int    `toml:"showId" mapstructure:"showId"`
}

// Contains reports whether episode falls inside the range.
func (r EpisodeRange) Contains(episode int) bool {
	return episode >= r.MinEpisode && episode <= r.MaxEpisode
}

// WeekConfig fixes calendar week boundaries for rankings. The offset is a
// plain UTC offset in hours and does not follow daylight saving time.
type WeekConfig struct {
	OffsetHours int    `toml:"offsetHours" mapstructure:"offsetHours"`
	StartDay    string `toml:"startDay" mapstructure:"startDay"`
}

// Offset returns the configured UTC offset as a duration.
func (w WeekConfig) Offset() time.Duration {
	return time.Duration(w.OffsetHours) * time.Hour
}

// Weekday parses StartDay. An empty value means Sunday.
func (w WeekConfig) Weekday() (time.Weekday, error) {
	day := strings.ToLower(strings.TrimSpace(w.StartDay))
	if day == "" {
		return time.Sunday, nil
	}
	for d := time.Sunday; d <= time.Saturday; d++ {
		name := strings.ToLower(d.String())
		if day == name || day == name[:3] {
			return d, nil
		}
	}
	return time.Sunday, fmt.Errorf("unknown weekday %q", w.StartDay)
}

// ConfigError is a structural configuration problem. It is reported before
// any record is processed.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration %s: %s", e.Field, e.Reason)
}

func configErrorf(field, format string, args ...any) error {
	return &ConfigError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// DefaultMatching returns the matching configuration used when nothing is configured.
func DefaultMatching() MatchingConfig {
	return MatchingConfig{
		FuzzyThreshold: DefaultFuzzyThreshold,
		SeasonBonus:    DefaultSeasonBonus,
		Guard:          GuardConfig{MinLength: 3, RequireLatin: true},
	}
}

// Validate checks everything that can be checked without the show catalog.
func (c *Config) Validate() error {
	var errs []error

	if err := c.Matching.Validate(); err != nil {
		errs = append(errs, err)
	}

	if c.Workers < 0 {
		errs = append(errs, configErrorf("workers", "must not be negative, got %d", c.Workers))
	}

	if c.Week.OffsetHours < -maxWeekOffsetHours || c.Week.OffsetHours > maxWeekOffsetHours {
		errs = append(errs, configErrorf("week.offsetHours", "must be within ±%d, got %d", maxWeekOffsetHours, c.Week.OffsetHours))
	}
	if _, err := c.Week.Weekday(); err != nil {
		errs = append(errs, configErrorf("week.startDay", "%v", err))
	}

	if c.Since != "" {
		if _, err := c.SinceTime(); err != nil {
			errs = append(errs, configErrorf("since", "expected YYYY-MM-DD, got %q", c.Since))
		}
	}

	return errors.Join(errs...)
}

// SinceTime parses Since. The zero time is returned when Since is empty.
func (c *Config) SinceTime() (time.Time, error) {
	if c.Since == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.DateOnly, c.Since)
}

// Validate checks thresholds and table shapes.
func (m *MatchingConfig) Validate() error {
	var errs []error

	if m.FuzzyThreshold < 0 || m.FuzzyThreshold > 100 {
		errs = append(errs, configErrorf("matching.fuzzyThreshold", "must be within [0,100], got %d", m.FuzzyThreshold))
	}
	if m.SeasonBonus < 0 {
		errs = append(errs, configErrorf("matching.seasonBonus", "must not be negative, got %d", m.SeasonBonus))
	}
	if m.Guard.MinLength < 1 {
		errs = append(errs, configErrorf("matching.guard.minLength", "must be at least 1, got %d", m.Guard.MinLength))
	}

	for title, id := range m.Overrides {
		if strings.TrimSpace(title) == "" {
			errs = append(errs, configErrorf("matching.overrides", "empty title for show %d", id))
		}
	}

	for i, r := range m.EpisodeRanges {
		field := fmt.Sprintf("matching.episodeRanges[%d]", i)
		if strings.TrimSpace(r.Title) == "" {
			errs = append(errs, configErrorf(field, "title is required"))
		}
		if r.MinEpisode > r.MaxEpisode {
			errs = append(errs, configErrorf(field, "minEpisode %d is after maxEpisode %d", r.MinEpisode, r.MaxEpisode))
		}
	}

	return errors.Join(errs...)
}

// ValidateShows checks that every override and episode range targets a known show.
func (m *MatchingConfig) ValidateShows(known func(id int) bool) error {
	var errs []error

	for title, id := range m.Overrides {
		if !known(id) {
			errs = append(errs, configErrorf("matching.overrides", "title %q references unknown show %d", title, id))
		}
	}
	for i, r := range m.EpisodeRanges {
		if !known(r.ShowID) {
			errs = append(errs, configErrorf(fmt.Sprintf("matching.episodeRanges[%d]", i), "references unknown show %d", r.ShowID))
		}
	}

	return errors.Join(errs...)
}
