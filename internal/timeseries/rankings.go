// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package timeseries

import (
	"cmp"
	"slices"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hiinaspace/nyaastats/internal/domain"
	"github.com/hiinaspace/nyaastats/internal/models"
)

// WeekCalendar assigns instants to calendar weeks in a fixed UTC offset.
type WeekCalendar struct {
	offset time.Duration
	start  time.Weekday
}

// NewWeekCalendar builds a calendar from the week configuration.
func NewWeekCalendar(cfg domain.WeekConfig) (WeekCalendar, error) {
	start, err := cfg.Weekday()
	if err != nil {
		return WeekCalendar{}, &domain.ConfigError{Field: "week.startDay", Reason: err.Error()}
	}
	return WeekCalendar{offset: cfg.Offset(), start: start}, nil
}

// WeekStart returns the local date the week containing t starts on,
// expressed as midnight UTC of that date.
func (c WeekCalendar) WeekStart(t time.Time) time.Time {
	local := t.UTC().Add(c.offset)
	day := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
	back := (int(day.Weekday()) - int(c.start) + 7) % 7
	return day.AddDate(0, 0, -back)
}

// WeekEnd returns the instant the week starting on weekStart has fully elapsed.
func (c WeekCalendar) WeekEnd(weekStart time.Time) time.Time {
	return weekStart.AddDate(0, 0, 7).Add(-c.offset)
}

// Complete reports whether the week starting on weekStart has ended by now.
func (c WeekCalendar) Complete(weekStart, now time.Time) bool {
	return !c.WeekEnd(weekStart).After(now)
}

// RankWeekly sums deltas per show and week and ranks shows within each
// week by downloads, highest first, ties going to the lower show ID.
// Ranks are ordinal positions starting at 1. Weeks that have not fully
// elapsed at now are left out. Deltas of torrents missing from showOf are
// ignored. The result is ordered by week, then rank.
func RankWeekly(deltas []models.DeltaRecord, showOf map[string]int, cal WeekCalendar, now time.Time) []models.WeeklyRanking {
	totals := make(map[time.Time]map[int]int64)
	for _, d := range deltas {
		showID, ok := showOf[d.Infohash]
		if !ok {
			continue
		}
		ws := cal.WeekStart(d.SampleTime)
		shows, ok := totals[ws]
		if !ok {
			shows = make(map[int]int64)
			totals[ws] = shows
		}
		shows[showID] += d.Delta
	}

	weeks := make([]time.Time, 0, len(totals))
	for ws := range totals {
		weeks = append(weeks, ws)
	}
	slices.SortFunc(weeks, func(a, b time.Time) int { return a.Compare(b) })

	cumulative := make(map[int]int64)
	var out []models.WeeklyRanking
	for _, ws := range weeks {
		if !cal.Complete(ws, now) {
			log.Debug().Time("weekStart", ws).Msg("skipping partial week")
			continue
		}

		shows := totals[ws]
		ids := make([]int, 0, len(shows))
		for id := range shows {
			ids = append(ids, id)
		}
		slices.SortFunc(ids, func(a, b int) int {
			return cmp.Or(cmp.Compare(shows[b], shows[a]), cmp.Compare(a, b))
		})

		for i, id := range ids {
			cumulative[id] += shows[id]
			out = append(out, models.WeeklyRanking{
				WeekStart:           ws,
				ShowID:              id,
				Rank:                i + 1,
				Downloads:           shows[id],
				CumulativeDownloads: cumulative[id],
			})
		}
	}
	return out
}

// GroupByWeek splits a ranking list ordered by week into per-week tables.
func GroupByWeek(rankings []models.WeeklyRanking) []models.WeekTable {
	var tables []models.WeekTable
	for _, r := range rankings {
		if n := len(tables); n == 0 || !tables[n-1].WeekStart.Equal(r.WeekStart) {
			tables = append(tables, models.WeekTable{WeekStart: r.WeekStart})
		}
		last := &tables[len(tables)-1]
		last.Rankings = append(last.Rankings, r)
	}
	return tables
}
