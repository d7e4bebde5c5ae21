// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package timeseries

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hiinaspace/nyaastats/internal/models"
)

func ep(n int) *int {
	return &n
}

func delta(hash string, at time.Time, d int64) models.DeltaRecord {
	return models.DeltaRecord{Infohash: hash, SampleTime: at, Delta: d}
}

func TestBucketKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		hours float64
		want  int
	}{
		{0, 0},
		{0.99, 0},
		{1, 1},
		{167.5, 167},
		{168, 168},
		{168.5, 168},
		{191.9, 168},
		{192, 192},
		{200, 192},
		{240, 240},
		{-0.5, -1},
		{-3, -3},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, BucketKey(tt.hours), "hours=%v", tt.hours)
	}
}

func TestFirstObserved(t *testing.T) {
	t.Parallel()

	torrents := map[string]TorrentInfo{
		"a": {Infohash: "a", ShowID: 1, Episode: ep(1), PublishTime: t0.Add(2 * time.Hour)},
		"b": {Infohash: "b", ShowID: 1, Episode: ep(1), PublishTime: t0},
		"c": {Infohash: "c", ShowID: 1, Episode: ep(2), PublishTime: t0.Add(24 * 7 * time.Hour)},
		"d": {Infohash: "d", ShowID: 1, PublishTime: t0.Add(-time.Hour)},
		"e": {Infohash: "e", ShowID: 2, Episode: ep(1), PublishTime: t0, Movie: true},
	}

	first := FirstObserved(torrents)
	assert.Equal(t, map[EpisodeKey]time.Time{
		{ShowID: 1, Episode: 1}: t0,
		{ShowID: 1, Episode: 2}: t0.Add(24 * 7 * time.Hour),
	}, first)
}

func TestAggregateEpisodes(t *testing.T) {
	t.Parallel()

	torrents := map[string]TorrentInfo{
		"first": {Infohash: "first", ShowID: 7, Episode: ep(3), PublishTime: t0},
		"ember": {Infohash: "ember", ShowID: 7, Episode: ep(3), PublishTime: t0.Add(30 * time.Minute)},
		"later": {Infohash: "later", ShowID: 7, Episode: ep(4), PublishTime: t0.Add(168 * time.Hour)},
		"batch": {Infohash: "batch", ShowID: 7, PublishTime: t0},
		"other": {Infohash: "other", ShowID: 2, Episode: ep(1), PublishTime: t0},
	}

	deltas := []models.DeltaRecord{
		delta("first", t0, 0),
		delta("first", t0.Add(20*time.Minute), 50),
		delta("ember", t0.Add(40*time.Minute), 30),
		delta("first", t0.Add(90*time.Minute), 20),
		delta("first", t0.Add(170*time.Hour), 5),
		delta("first", t0.Add(190*time.Hour), 4),
		delta("first", t0.Add(200*time.Hour), 1),
		delta("batch", t0.Add(time.Hour), 999),
		delta("unmatched", t0.Add(time.Hour), 999),
		delta("other", t0.Add(-2*time.Hour), 3),
	}

	for _, workers := range []int{1, 3, 8} {
		series, err := AggregateEpisodes(context.Background(), deltas, torrents, workers)
		require.NoError(t, err)
		require.Len(t, series, 2, "episode 4 has no samples and produces nothing")

		other := series[0]
		assert.Equal(t, 2, other.ShowID)
		require.Len(t, other.Buckets, 1)
		assert.Equal(t, -2, other.Buckets[0].BucketOffsetHours, "samples before first observation are kept")

		s := series[1]
		assert.Equal(t, 7, s.ShowID)
		assert.Equal(t, 3, s.Episode)

		offsets := make([]int, len(s.Buckets))
		periods := make([]int64, len(s.Buckets))
		cumulative := make([]int64, len(s.Buckets))
		for i, b := range s.Buckets {
			offsets[i] = b.BucketOffsetHours
			periods[i] = b.PeriodDownloads
			cumulative[i] = b.CumulativeDownloads
		}
		assert.Equal(t, []int{0, 1, 168, 192}, offsets)
		assert.Equal(t, []int64{80, 20, 9, 1}, periods)
		assert.Equal(t, []int64{80, 100, 109, 110}, cumulative)

		assert.Equal(t, t0, s.Buckets[0].BucketStartTime)
		assert.Equal(t, t0.Add(170*time.Hour), s.Buckets[2].BucketStartTime)
	}
}

func TestAggregateEpisodesCumulativeMatchesTotal(t *testing.T) {
	t.Parallel()

	torrents := map[string]TorrentInfo{"a": {Infohash: "a", ShowID: 1, Episode: ep(1), PublishTime: t0}}

	var deltas []models.DeltaRecord
	var total int64
	for h := 0; h < 400; h += 7 {
		d := int64(h % 13)
		total += d
		deltas = append(deltas, delta("a", t0.Add(time.Duration(h)*time.Hour), d))
	}

	series, err := AggregateEpisodes(context.Background(), deltas, torrents, 2)
	require.NoError(t, err)
	require.Len(t, series, 1)

	buckets := series[0].Buckets
	for i := 1; i < len(buckets); i++ {
		assert.Greater(t, buckets[i].BucketOffsetHours, buckets[i-1].BucketOffsetHours)
		assert.GreaterOrEqual(t, buckets[i].CumulativeDownloads, buckets[i-1].CumulativeDownloads)
	}
	assert.Equal(t, total, buckets[len(buckets)-1].CumulativeDownloads)
}

func TestAggregateMovies(t *testing.T) {
	t.Parallel()

	// t0 is Wednesday 2025-10-01
	torrents := map[string]TorrentInfo{
		"m1": {Infohash: "m1", ShowID: 40, PublishTime: t0, Movie: true},
		"m2": {Infohash: "m2", ShowID: 40, Episode: ep(1), PublishTime: t0.Add(48 * time.Hour), Movie: true},
		"tv": {Infohash: "tv", ShowID: 41, Episode: ep(1), PublishTime: t0},
	}
	deltas := []models.DeltaRecord{
		delta("m1", t0.Add(time.Hour), 100),
		delta("m2", t0.Add(50*time.Hour), 40),
		delta("m1", t0.Add(8*24*time.Hour), 10),
		delta("m1", t0.Add(22*24*time.Hour), 2),
		delta("tv", t0.Add(time.Hour), 500),
	}

	series := AggregateMovies(deltas, torrents)
	require.Len(t, series, 1)
	assert.Equal(t, 40, series[0].ShowID)

	b := series[0].Buckets
	require.Len(t, b, 3)
	assert.Equal(t, 0, b[0].WeeksSinceRelease)
	assert.Equal(t, int64(140), b[0].PeriodDownloads)
	assert.Equal(t, time.Date(2025, 9, 29, 0, 0, 0, 0, time.UTC), b[0].WeekStart)
	assert.Equal(t, 1, b[1].WeeksSinceRelease)
	assert.Equal(t, int64(150), b[1].CumulativeDownloads)
	assert.Equal(t, 3, b[2].WeeksSinceRelease)
	assert.Equal(t, int64(152), b[2].CumulativeDownloads)
}

func TestMondayOf(t *testing.T) {
	t.Parallel()

	monday := time.Date(2025, 10, 6, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, monday, MondayOf(monday.Add(3*time.Hour)))
	assert.Equal(t, monday, MondayOf(time.Date(2025, 10, 12, 23, 59, 0, 0, time.UTC)))
	assert.Equal(t, monday.AddDate(0, 0, -7), MondayOf(time.Date(2025, 10, 5, 12, 0, 0, 0, time.UTC)))
}
