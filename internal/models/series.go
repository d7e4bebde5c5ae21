// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package models

import "time"

// StatSample is one observation of a torrent's cumulative download counter.
type StatSample struct {
	Infohash            string    `json:"infohash"`
	SampleTime          time.Time `json:"sample_time"`
	CumulativeDownloads int64     `json:"cumulative_downloads"`
}

// DeltaRecord is the non-negative increase since the previous sample.
// The first record of every torrent has Delta 0.
type DeltaRecord struct {
	Infohash   string    `json:"infohash"`
	SampleTime time.Time `json:"sample_time"`
	Delta      int64     `json:"delta"`
}

// EpisodeBucket sums deltas for one episode over a window measured from
// the episode's first observed release.
type EpisodeBucket struct {
	ShowID              int       `json:"show_id"`
	Episode             int       `json:"episode"`
	BucketOffsetHours   int       `json:"bucket_offset_hours"`
	BucketStartTime     time.Time `json:"bucket_start_time"`
	PeriodDownloads     int64     `json:"period_downloads"`
	CumulativeDownloads int64     `json:"cumulative_downloads"`
}

// EpisodeSeries is the ordered downloads-to-date curve of one episode.
type EpisodeSeries struct {
	ShowID  int             `json:"show_id"`
	Episode int             `json:"episode"`
	Buckets []EpisodeBucket `json:"buckets"`
}

// MovieBucket sums deltas for a movie over a 7-day window from first observation.
type MovieBucket struct {
	ShowID              int       `json:"show_id"`
	WeeksSinceRelease   int       `json:"weeks_since_release"`
	BucketStartTime     time.Time `json:"bucket_start_time"`
	WeekStart           time.Time `json:"week_start"`
	PeriodDownloads     int64     `json:"period_downloads"`
	CumulativeDownloads int64     `json:"cumulative_downloads"`
}

// MovieSeries is the ordered downloads-to-date curve of one movie.
type MovieSeries struct {
	ShowID  int           `json:"show_id"`
	Buckets []MovieBucket `json:"buckets"`
}

// WeeklyRanking is one show's position within a calendar week.
type WeeklyRanking struct {
	WeekStart           time.Time `json:"week_start"`
	ShowID              int       `json:"show_id"`
	Rank                int       `json:"rank"`
	Downloads           int64     `json:"downloads"`
	CumulativeDownloads int64     `json:"cumulative_downloads"`
}

// WeekTable is the ranking table of a single week, ordered by rank.
type WeekTable struct {
	WeekStart time.Time       `json:"week_start"`
	Rankings  []WeeklyRanking `json:"rankings"`
}

// TorrentContribution is one torrent's share of a show's weekly downloads.
type TorrentContribution struct {
	Infohash    string      `json:"infohash"`
	Filename    string      `json:"filename"`
	Episode     *int        `json:"episode"`
	MatchMethod MatchMethod `json:"match_method"`
	MatchScore  int         `json:"match_score"`
	Downloads   int64       `json:"downloads"`
}

// WeekContributions lists the torrents behind one show's week, largest first.
type WeekContributions struct {
	WeekStart      time.Time             `json:"week_start"`
	TotalDownloads int64                 `json:"total_downloads"`
	Torrents       []TorrentContribution `json:"torrents"`
}

// ShowContributions is the per-torrent breakdown of a show across weeks.
type ShowContributions struct {
	ShowID int                 `json:"show_id"`
	Title  string              `json:"title"`
	Weeks  []WeekContributions `json:"weeks"`
}
