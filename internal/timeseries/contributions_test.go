// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package timeseries

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hiinaspace/nyaastats/internal/models"
)

func TestTorrentContributions(t *testing.T) {
	t.Parallel()

	cal := defaultCalendar(t)
	weekA := time.Date(2025, 10, 6, 12, 0, 0, 0, time.UTC)
	weekB := time.Date(2025, 10, 13, 12, 0, 0, 0, time.UTC)
	running := time.Date(2025, 10, 20, 6, 0, 0, 0, time.UTC)
	now := time.Date(2025, 10, 20, 12, 0, 0, 0, time.UTC)

	episode := 3
	torrents := map[string]ContributionTorrent{
		"a1": {ShowID: 1, Episode: &episode, Filename: "[SubsPlease] Gachiakuta - 03 (1080p).mkv", Method: models.MethodFuzzy, Score: 100},
		"a2": {ShowID: 1, Episode: &episode, Filename: "[Erai-raws] Gachiakuta - 03 [720p].mkv", Method: models.MethodManualOverride, Score: 100},
		"b1": {ShowID: 2, Filename: "spiking.mkv", Method: models.MethodFuzzy, Score: 91},
		"c1": {ShowID: 3, Filename: "doubling.mkv", Method: models.MethodFuzzy, Score: 88},
		"d1": {ShowID: 4, Filename: "from-zero.mkv", Method: models.MethodFuzzy, Score: 87},
	}

	deltas := []models.DeltaRecord{
		{Infohash: "a1", SampleTime: weekA, Delta: 50},
		{Infohash: "a1", SampleTime: weekA.Add(time.Hour), Delta: 30},
		{Infohash: "a2", SampleTime: weekA, Delta: 80},
		{Infohash: "a1", SampleTime: weekB, Delta: 10},
		{Infohash: "a1", SampleTime: running, Delta: 999},
		{Infohash: "b1", SampleTime: weekA, Delta: 10},
		{Infohash: "b1", SampleTime: weekB, Delta: 25},
		{Infohash: "c1", SampleTime: weekA, Delta: 10},
		{Infohash: "c1", SampleTime: weekB, Delta: 20},
		{Infohash: "d1", SampleTime: weekA, Delta: 0},
		{Infohash: "d1", SampleTime: weekB, Delta: 100},
		{Infohash: "unknown", SampleTime: weekA, Delta: 500},
	}

	rankings := []models.WeeklyRanking{
		{WeekStart: date(2025, 10, 5), ShowID: 1, Rank: 1},
		{WeekStart: date(2025, 10, 5), ShowID: 2, Rank: 2},
		{WeekStart: date(2025, 10, 12), ShowID: 9, Rank: 1},
	}

	got := TorrentContributions(deltas, torrents, rankings, cal, now, 1, ContributionSpike)
	require.Len(t, got, 2, "top ranked show and the spiking show; doubling exactly, growth from zero and shows without deltas are left out")

	top := got[0]
	assert.Equal(t, 1, top.ShowID)
	require.Len(t, top.Weeks, 2, "running week is excluded")
	assert.Equal(t, date(2025, 10, 5), top.Weeks[0].WeekStart)
	assert.Equal(t, int64(160), top.Weeks[0].TotalDownloads)
	require.Len(t, top.Weeks[0].Torrents, 2)
	assert.Equal(t, models.TorrentContribution{
		Infohash:    "a1",
		Filename:    "[SubsPlease] Gachiakuta - 03 (1080p).mkv",
		Episode:     &episode,
		MatchMethod: models.MethodFuzzy,
		MatchScore:  100,
		Downloads:   80,
	}, top.Weeks[0].Torrents[0])
	assert.Equal(t, "a2", top.Weeks[0].Torrents[1].Infohash, "equal downloads order by infohash")
	assert.Equal(t, models.MethodManualOverride, top.Weeks[0].Torrents[1].MatchMethod)
	assert.Equal(t, date(2025, 10, 12), top.Weeks[1].WeekStart)
	assert.Equal(t, int64(10), top.Weeks[1].TotalDownloads)

	spike := got[1]
	assert.Equal(t, 2, spike.ShowID)
	require.Len(t, spike.Weeks, 2)
	assert.Equal(t, int64(10), spike.Weeks[0].TotalDownloads)
	assert.Equal(t, int64(25), spike.Weeks[1].TotalDownloads)
}

func TestTorrentContributionsSpikeOnly(t *testing.T) {
	t.Parallel()

	cal := defaultCalendar(t)
	now := time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC)

	torrents := map[string]ContributionTorrent{"x": {ShowID: 5, Method: models.MethodFuzzy, Score: 90}}
	deltas := []models.DeltaRecord{
		{Infohash: "x", SampleTime: time.Date(2025, 10, 6, 12, 0, 0, 0, time.UTC), Delta: 4},
		{Infohash: "x", SampleTime: time.Date(2025, 10, 20, 12, 0, 0, 0, time.UTC), Delta: 9},
	}

	got := TorrentContributions(deltas, torrents, nil, cal, now, ContributionTopRank, ContributionSpike)
	require.Len(t, got, 1, "growth is measured between observed weeks even with a gap")
	assert.Equal(t, 5, got[0].ShowID)

	assert.Empty(t, TorrentContributions(nil, torrents, nil, cal, now, ContributionTopRank, ContributionSpike))
}
