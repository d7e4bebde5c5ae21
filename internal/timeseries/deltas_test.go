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

var t0 = time.Date(2025, 10, 1, 12, 0, 0, 0, time.UTC)

func sample(hash string, hours int, downloads int64) models.StatSample {
	return models.StatSample{Infohash: hash, SampleTime: t0.Add(time.Duration(hours) * time.Hour), CumulativeDownloads: downloads}
}

func deltaValues(records []models.DeltaRecord) []int64 {
	out := make([]int64, len(records))
	for i, r := range records {
		out[i] = r.Delta
	}
	return out
}

func TestComputeDeltas(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		samples   []models.StatSample
		want      []int64
		anomalies int
		malformed int
	}{
		{
			name:    "empty",
			samples: nil,
			want:    []int64{},
		},
		{
			name:    "single sample is zero",
			samples: []models.StatSample{sample("a", 0, 500)},
			want:    []int64{0},
		},
		{
			name:    "increasing counter",
			samples: []models.StatSample{sample("a", 0, 10), sample("a", 1, 25), sample("a", 2, 25), sample("a", 3, 40)},
			want:    []int64{0, 15, 0, 15},
		},
		{
			name:      "counter reset is clamped",
			samples:   []models.StatSample{sample("a", 0, 100), sample("a", 1, 120), sample("a", 2, 5), sample("a", 3, 30)},
			want:      []int64{0, 20, 0, 25},
			anomalies: 1,
		},
		{
			name:    "unsorted input is ordered by time",
			samples: []models.StatSample{sample("a", 2, 30), sample("a", 0, 10), sample("a", 1, 20)},
			want:    []int64{0, 10, 10},
		},
		{
			name: "malformed samples are dropped",
			samples: []models.StatSample{
				sample("a", 0, 10),
				{Infohash: "a", CumulativeDownloads: 50},
				sample("a", 1, -1),
				sample("a", 2, 18),
			},
			want:      []int64{0, 8},
			malformed: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, stats := ComputeDeltas(tt.samples)
			assert.Equal(t, tt.want, deltaValues(got))
			assert.Equal(t, tt.anomalies, stats.Anomalies)
			assert.Equal(t, tt.malformed, stats.Malformed)
			assert.Equal(t, len(tt.samples), stats.Samples)
			for _, d := range got {
				assert.GreaterOrEqual(t, d.Delta, int64(0))
			}
		})
	}
}

func TestComputeDeltasStableForEqualTimes(t *testing.T) {
	t.Parallel()

	samples := []models.StatSample{sample("a", 0, 10), sample("a", 1, 20), sample("a", 1, 25)}
	got, _ := ComputeDeltas(samples)
	assert.Equal(t, []int64{0, 10, 5}, deltaValues(got))
}

func TestComputeDeltasSumProperty(t *testing.T) {
	t.Parallel()

	// without resets the deltas add up to last minus first
	samples := []models.StatSample{sample("a", 0, 7), sample("a", 5, 19), sample("a", 9, 19), sample("a", 30, 102)}
	got, _ := ComputeDeltas(samples)

	var sum int64
	for _, d := range got {
		sum += d.Delta
	}
	assert.Equal(t, int64(102-7), sum)
}

func TestComputeAll(t *testing.T) {
	t.Parallel()

	samples := []models.StatSample{
		sample("bbb", 1, 5),
		sample("aaa", 1, 30),
		sample("bbb", 0, 1),
		sample("aaa", 0, 10),
		sample("aaa", 2, 20),
	}

	for _, workers := range []int{0, 1, 4} {
		got, stats, err := ComputeAll(context.Background(), samples, workers)
		require.NoError(t, err)
		require.Len(t, got, 5)

		assert.Equal(t, []string{"aaa", "aaa", "aaa", "bbb", "bbb"}, []string{got[0].Infohash, got[1].Infohash, got[2].Infohash, got[3].Infohash, got[4].Infohash})
		assert.Equal(t, []int64{0, 20, 0, 0, 4}, deltaValues(got))
		assert.Equal(t, 1, stats.Anomalies)
		assert.Equal(t, 5, stats.Samples)
	}
}

func TestComputeAllCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := ComputeAll(ctx, []models.StatSample{sample("a", 0, 1)}, 1)
	require.ErrorIs(t, err, context.Canceled)
}
