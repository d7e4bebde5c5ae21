// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Matching: DefaultMatching(),
		Week:     WeekConfig{OffsetHours: DefaultWeekOffset, StartDay: DefaultWeekStartDay},
	}
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults are valid", func(*Config) {}, ""},
		{"threshold above 100", func(c *Config) { c.Matching.FuzzyThreshold = 101 }, "matching.fuzzyThreshold"},
		{"threshold below 0", func(c *Config) { c.Matching.FuzzyThreshold = -1 }, "matching.fuzzyThreshold"},
		{"threshold bounds inclusive", func(c *Config) { c.Matching.FuzzyThreshold = 100 }, ""},
		{"negative bonus", func(c *Config) { c.Matching.SeasonBonus = -5 }, "matching.seasonBonus"},
		{"guard min length", func(c *Config) { c.Matching.Guard.MinLength = 0 }, "matching.guard.minLength"},
		{"negative workers", func(c *Config) { c.Workers = -2 }, "workers"},
		{"offset too far", func(c *Config) { c.Week.OffsetHours = 15 }, "week.offsetHours"},
		{"bad weekday", func(c *Config) { c.Week.StartDay = "someday" }, "week.startDay"},
		{"bad since", func(c *Config) { c.Since = "10/01/2025" }, "since"},
		{"inverted range", func(c *Config) {
			c.Matching.EpisodeRanges = []EpisodeRange{{Title: "spy x family", MinEpisode: 50, MaxEpisode: 26, ShowID: 1}}
		}, "matching.episodeRanges[0]"},
		{"range without title", func(c *Config) {
			c.Matching.EpisodeRanges = []EpisodeRange{{MinEpisode: 1, MaxEpisode: 2, ShowID: 1}}
		}, "title is required"},
		{"blank override title", func(c *Config) {
			c.Matching.Overrides = map[string]int{" ": 1}
		}, "matching.overrides"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()

			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)

			var cfgErr *ConfigError
			assert.True(t, errors.As(err, &cfgErr), "error should be a ConfigError")
		})
	}
}

func TestMatchingValidateShows(t *testing.T) {
	t.Parallel()

	known := func(id int) bool { return id == 1 || id == 2 }

	m := DefaultMatching()
	m.Overrides = map[string]int{"gachiakuta": 1}
	m.EpisodeRanges = []EpisodeRange{{Title: "one piece", MinEpisode: 1, MaxEpisode: 9999, ShowID: 2}}
	require.NoError(t, m.ValidateShows(known))

	m.Overrides["kizoku tensei"] = 99
	err := m.ValidateShows(known)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown show 99")

	var cfgErr *ConfigError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "matching.overrides", cfgErr.Field)
}

func TestWeekConfig(t *testing.T) {
	t.Parallel()

	day, err := WeekConfig{}.Weekday()
	require.NoError(t, err)
	assert.Equal(t, time.Sunday, day)

	day, err = WeekConfig{StartDay: "Mon"}.Weekday()
	require.NoError(t, err)
	assert.Equal(t, time.Monday, day)

	day, err = WeekConfig{StartDay: "saturday"}.Weekday()
	require.NoError(t, err)
	assert.Equal(t, time.Saturday, day)

	assert.Equal(t, -5*time.Hour, WeekConfig{OffsetHours: -5}.Offset())
}

func TestEpisodeRangeContains(t *testing.T) {
	t.Parallel()

	r := EpisodeRange{MinEpisode: 13, MaxEpisode: 25}
	assert.True(t, r.Contains(13))
	assert.True(t, r.Contains(25))
	assert.False(t, r.Contains(12))
	assert.False(t, r.Contains(26))
}

func TestSinceTime(t *testing.T) {
	t.Parallel()

	cfg := &Config{}
	since, err := cfg.SinceTime()
	require.NoError(t, err)
	assert.True(t, since.IsZero())

	cfg.Since = "2025-10-01"
	since, err = cfg.SinceTime()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC), since)
}
