// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package timeseries

import (
	"math"
	"slices"
	"time"

	"github.com/hiinaspace/nyaastats/internal/models"
)

const week = 7 * 24 * time.Hour

// AggregateMovies buckets deltas of movie torrents per show into 7-day
// windows counted from the show's earliest torrent. Episode numbers are
// ignored.
func AggregateMovies(deltas []models.DeltaRecord, torrents map[string]TorrentInfo) []models.MovieSeries {
	first := make(map[int]time.Time)
	for _, t := range torrents {
		if !t.Movie || t.PublishTime.IsZero() {
			continue
		}
		if cur, ok := first[t.ShowID]; !ok || t.PublishTime.Before(cur) {
			first[t.ShowID] = t.PublishTime
		}
	}

	groups := make(map[int]map[int]*bucketAcc)
	for _, d := range deltas {
		info, ok := torrents[d.Infohash]
		if !ok || !info.Movie {
			continue
		}
		start, ok := first[info.ShowID]
		if !ok {
			continue
		}
		weeks := int(math.Floor(float64(d.SampleTime.Sub(start)) / float64(week)))

		buckets, ok := groups[info.ShowID]
		if !ok {
			buckets = make(map[int]*bucketAcc)
			groups[info.ShowID] = buckets
		}
		acc, ok := buckets[weeks]
		if !ok {
			acc = &bucketAcc{start: d.SampleTime}
			buckets[weeks] = acc
		}
		acc.sum += d.Delta
		if d.SampleTime.Before(acc.start) {
			acc.start = d.SampleTime
		}
	}

	out := make([]models.MovieSeries, 0, len(groups))
	for showID, buckets := range groups {
		offsets := make([]int, 0, len(buckets))
		for w := range buckets {
			offsets = append(offsets, w)
		}
		slices.Sort(offsets)

		series := models.MovieSeries{ShowID: showID, Buckets: make([]models.MovieBucket, len(offsets))}
		var running int64
		for i, w := range offsets {
			acc := buckets[w]
			running += acc.sum
			series.Buckets[i] = models.MovieBucket{
				ShowID:              showID,
				WeeksSinceRelease:   w,
				BucketStartTime:     acc.start,
				WeekStart:           MondayOf(acc.start),
				PeriodDownloads:     acc.sum,
				CumulativeDownloads: running,
			}
		}
		out = append(out, series)
	}
	slices.SortFunc(out, func(a, b models.MovieSeries) int {
		return a.ShowID - b.ShowID
	})
	return out
}

// MondayOf returns midnight UTC of the Monday starting t's calendar week.
func MondayOf(t time.Time) time.Time {
	t = t.UTC()
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return day.AddDate(0, 0, -((int(day.Weekday()) + 6) % 7))
}
