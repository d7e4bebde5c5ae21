// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package timeseries

import (
	"cmp"
	"maps"
	"slices"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hiinaspace/nyaastats/internal/models"
)

// Selection thresholds of the contribution report.
const (
	ContributionTopRank = 30
	ContributionSpike   = 2.0
)

// ContributionTorrent is the match of one torrent as shown in the
// contribution report.
type ContributionTorrent struct {
	ShowID   int
	Episode  *int
	Filename string
	Method   models.MatchMethod
	Score    int
}

type showWeek struct {
	showID int
	week   time.Time
}

// TorrentContributions breaks shows' weekly downloads down by torrent, so a
// ranking can be traced back to the releases behind it. A show is reported
// when it placed at topRank or better in any ranked week, or when its
// downloads grew by more than spike times from one observed week to the
// next. Weeks that have not fully elapsed at now are left out. Shows are
// ordered by ID, weeks ascending, torrents by downloads descending and then
// infohash.
func TorrentContributions(deltas []models.DeltaRecord, torrents map[string]ContributionTorrent, rankings []models.WeeklyRanking, cal WeekCalendar, now time.Time, topRank int, spike float64) []models.ShowContributions {
	perTorrent := make(map[showWeek]map[string]int64)
	for _, d := range deltas {
		t, ok := torrents[d.Infohash]
		if !ok {
			continue
		}
		ws := cal.WeekStart(d.SampleTime)
		if !cal.Complete(ws, now) {
			continue
		}
		key := showWeek{showID: t.ShowID, week: ws}
		byHash, ok := perTorrent[key]
		if !ok {
			byHash = make(map[string]int64)
			perTorrent[key] = byHash
		}
		byHash[d.Infohash] += d.Delta
	}

	weeks := make(map[int][]time.Time)
	totals := make(map[showWeek]int64, len(perTorrent))
	for key, byHash := range perTorrent {
		weeks[key.showID] = append(weeks[key.showID], key.week)
		for _, n := range byHash {
			totals[key] += n
		}
	}

	include := make(map[int]bool)
	for _, r := range rankings {
		if r.Rank <= topRank {
			include[r.ShowID] = true
		}
	}
	for id, ws := range weeks {
		slices.SortFunc(ws, func(a, b time.Time) int { return a.Compare(b) })
		for i := 1; i < len(ws); i++ {
			prev := totals[showWeek{showID: id, week: ws[i-1]}]
			cur := totals[showWeek{showID: id, week: ws[i]}]
			if prev > 0 && float64(cur) > spike*float64(prev) {
				include[id] = true
				break
			}
		}
	}

	ids := make([]int, 0, len(include))
	for id := range include {
		if len(weeks[id]) > 0 {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)

	out := make([]models.ShowContributions, 0, len(ids))
	for _, id := range ids {
		show := models.ShowContributions{ShowID: id}
		for _, ws := range weeks[id] {
			key := showWeek{showID: id, week: ws}
			byHash := perTorrent[key]

			hashes := slices.Collect(maps.Keys(byHash))
			slices.SortFunc(hashes, func(a, b string) int {
				return cmp.Or(cmp.Compare(byHash[b], byHash[a]), cmp.Compare(a, b))
			})

			week := models.WeekContributions{WeekStart: ws, TotalDownloads: totals[key]}
			for _, h := range hashes {
				t := torrents[h]
				week.Torrents = append(week.Torrents, models.TorrentContribution{
					Infohash:    h,
					Filename:    t.Filename,
					Episode:     t.Episode,
					MatchMethod: t.Method,
					MatchScore:  t.Score,
					Downloads:   byHash[h],
				})
			}
			show.Weeks = append(show.Weeks, week)
		}
		out = append(out, show)
	}

	if len(out) == 0 {
		log.Debug().Msg("no show qualifies for the contribution report")
	}
	return out
}
