// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package timeseries

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hiinaspace/nyaastats/internal/domain"
	"github.com/hiinaspace/nyaastats/internal/models"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func defaultCalendar(t *testing.T) WeekCalendar {
	t.Helper()
	cal, err := NewWeekCalendar(domain.WeekConfig{OffsetHours: -5, StartDay: "sunday"})
	require.NoError(t, err)
	return cal
}

func TestWeekCalendar(t *testing.T) {
	t.Parallel()

	cal := defaultCalendar(t)

	tests := []struct {
		name string
		at   time.Time
		want time.Time
	}{
		{"monday", time.Date(2025, 9, 29, 12, 0, 0, 0, time.UTC), date(2025, 9, 28)},
		{"sunday early utc is still saturday locally", time.Date(2025, 10, 5, 3, 0, 0, 0, time.UTC), date(2025, 9, 28)},
		{"sunday after local midnight", time.Date(2025, 10, 5, 5, 0, 0, 0, time.UTC), date(2025, 10, 5)},
		{"saturday evening", time.Date(2025, 10, 11, 23, 0, 0, 0, time.UTC), date(2025, 10, 5)},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, cal.WeekStart(tt.at), tt.name)
	}

	assert.Equal(t, time.Date(2025, 10, 5, 5, 0, 0, 0, time.UTC), cal.WeekEnd(date(2025, 9, 28)))
	assert.False(t, cal.Complete(date(2025, 9, 28), time.Date(2025, 10, 5, 4, 59, 0, 0, time.UTC)))
	assert.True(t, cal.Complete(date(2025, 9, 28), time.Date(2025, 10, 5, 5, 0, 0, 0, time.UTC)))
}

func TestWeekCalendarMondayStart(t *testing.T) {
	t.Parallel()

	cal, err := NewWeekCalendar(domain.WeekConfig{OffsetHours: 9, StartDay: "mon"})
	require.NoError(t, err)

	// 2025-10-05 20:00 UTC is Monday 05:00 in UTC+9
	assert.Equal(t, date(2025, 10, 6), cal.WeekStart(time.Date(2025, 10, 5, 20, 0, 0, 0, time.UTC)))
	assert.Equal(t, date(2025, 9, 29), cal.WeekStart(time.Date(2025, 10, 5, 14, 0, 0, 0, time.UTC)))

	_, err = NewWeekCalendar(domain.WeekConfig{StartDay: "funday"})
	require.Error(t, err)
}

func TestRankWeekly(t *testing.T) {
	t.Parallel()

	cal := defaultCalendar(t)
	showOf := map[string]int{"a": 3, "b": 1, "c": 2, "d": 4}

	week1 := time.Date(2025, 9, 29, 12, 0, 0, 0, time.UTC)
	week2 := time.Date(2025, 10, 6, 12, 0, 0, 0, time.UTC)
	week3 := time.Date(2025, 10, 13, 12, 0, 0, 0, time.UTC)

	deltas := []models.DeltaRecord{
		delta("a", week1, 60),
		delta("a", week1.Add(time.Hour), 40),
		delta("b", week1, 100),
		delta("c", week1, 50),
		delta("d", week1, 0),
		delta("unmatched", week1, 1000),
		delta("c", week2, 70),
		delta("a", week2, 10),
		delta("b", week3, 5),
	}

	t.Run("partial week excluded", func(t *testing.T) {
		t.Parallel()

		now := time.Date(2025, 10, 18, 0, 0, 0, 0, time.UTC)
		got := RankWeekly(deltas, showOf, cal, now)

		want := []models.WeeklyRanking{
			{WeekStart: date(2025, 9, 28), ShowID: 1, Rank: 1, Downloads: 100, CumulativeDownloads: 100},
			{WeekStart: date(2025, 9, 28), ShowID: 3, Rank: 2, Downloads: 100, CumulativeDownloads: 100},
			{WeekStart: date(2025, 9, 28), ShowID: 2, Rank: 3, Downloads: 50, CumulativeDownloads: 50},
			{WeekStart: date(2025, 9, 28), ShowID: 4, Rank: 4, Downloads: 0, CumulativeDownloads: 0},
			{WeekStart: date(2025, 10, 5), ShowID: 2, Rank: 1, Downloads: 70, CumulativeDownloads: 120},
			{WeekStart: date(2025, 10, 5), ShowID: 3, Rank: 2, Downloads: 10, CumulativeDownloads: 110},
		}
		assert.Equal(t, want, got)
	})

	t.Run("week included once elapsed", func(t *testing.T) {
		t.Parallel()

		now := time.Date(2025, 10, 19, 5, 0, 0, 0, time.UTC)
		got := RankWeekly(deltas, showOf, cal, now)
		require.Len(t, got, 7)

		last := got[6]
		assert.Equal(t, date(2025, 10, 12), last.WeekStart)
		assert.Equal(t, 1, last.ShowID)
		assert.Equal(t, 1, last.Rank)
		assert.Equal(t, int64(105), last.CumulativeDownloads)
	})

	t.Run("ranks are dense ordinals", func(t *testing.T) {
		t.Parallel()

		got := RankWeekly(deltas, showOf, cal, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
		for _, table := range GroupByWeek(got) {
			for i, r := range table.Rankings {
				assert.Equal(t, i+1, r.Rank)
				if i > 0 {
					assert.LessOrEqual(t, r.Downloads, table.Rankings[i-1].Downloads)
				}
			}
		}
	})
}

func TestRankWeeklyEmpty(t *testing.T) {
	t.Parallel()

	assert.Empty(t, RankWeekly(nil, nil, defaultCalendar(t), time.Now()))
	assert.Empty(t, GroupByWeek(nil))
}

func TestGroupByWeek(t *testing.T) {
	t.Parallel()

	rankings := []models.WeeklyRanking{
		{WeekStart: date(2025, 9, 28), ShowID: 1, Rank: 1},
		{WeekStart: date(2025, 9, 28), ShowID: 2, Rank: 2},
		{WeekStart: date(2025, 10, 5), ShowID: 2, Rank: 1},
	}

	tables := GroupByWeek(rankings)
	require.Len(t, tables, 2)
	assert.Equal(t, date(2025, 9, 28), tables[0].WeekStart)
	assert.Len(t, tables[0].Rankings, 2)
	assert.Equal(t, date(2025, 10, 5), tables[1].WeekStart)
	assert.Len(t, tables[1].Rankings, 1)
}
