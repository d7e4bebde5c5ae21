// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package timeseries

import (
	"cmp"
	"context"
	"math"
	"runtime"
	"slices"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/sync/errgroup"

	"github.com/hiinaspace/nyaastats/internal/models"
)

const (
	hourlyWindowHours = 168
	dailyBucketHours  = 24
)

// EpisodeKey identifies one episode of one show.
type EpisodeKey struct {
	ShowID  int
	Episode int
}

func (k EpisodeKey) hash() uint64 {
	var buf [40]byte
	b := strconv.AppendInt(buf[:0], int64(k.ShowID), 10)
	b = append(b, ':')
	b = strconv.AppendInt(b, int64(k.Episode), 10)
	return xxhash.Sum64(b)
}

// TorrentInfo is the matched metadata of a torrent needed for bucketing.
type TorrentInfo struct {
	Infohash    string
	ShowID      int
	Episode     *int
	PublishTime time.Time
	Movie       bool
}

func (t TorrentInfo) episodeKey() (EpisodeKey, bool) {
	if t.Movie || t.Episode == nil {
		return EpisodeKey{}, false
	}
	return EpisodeKey{ShowID: t.ShowID, Episode: *t.Episode}, true
}

// FirstObserved returns the earliest publish time per episode across all
// torrents carrying it. Movies and torrents without an episode are skipped.
func FirstObserved(torrents map[string]TorrentInfo) map[EpisodeKey]time.Time {
	first := make(map[EpisodeKey]time.Time)
	for _, t := range torrents {
		key, ok := t.episodeKey()
		if !ok || t.PublishTime.IsZero() {
			continue
		}
		if cur, seen := first[key]; !seen || t.PublishTime.Before(cur) {
			first[key] = t.PublishTime
		}
	}
	return first
}

// BucketKey maps hours since first observation onto a bucket offset: hourly
// for the first week, then 24h buckets anchored at hour 168. Negative hours
// stay hourly.
func BucketKey(hours float64) int {
	if hours <= hourlyWindowHours {
		return int(math.Floor(hours))
	}
	return hourlyWindowHours + int(math.Floor((hours-hourlyWindowHours)/dailyBucketHours))*dailyBucketHours
}

type keyedDelta struct {
	key   EpisodeKey
	delta models.DeltaRecord
}

type bucketAcc struct {
	start time.Time
	sum   int64
}

// AggregateEpisodes buckets deltas of episodic torrents relative to each
// episode's first observed release. Groups are split into shards by key hash
// and aggregated concurrently; the result is ordered by show, episode and
// bucket offset. Episodes without samples produce no series.
func AggregateEpisodes(ctx context.Context, deltas []models.DeltaRecord, torrents map[string]TorrentInfo, workers int) ([]models.EpisodeSeries, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	first := FirstObserved(torrents)

	shards := make([][]keyedDelta, workers)
	for _, d := range deltas {
		info, ok := torrents[d.Infohash]
		if !ok {
			continue
		}
		key, ok := info.episodeKey()
		if !ok {
			continue
		}
		if _, ok := first[key]; !ok {
			continue
		}
		shard := key.hash() % uint64(workers)
		shards[shard] = append(shards[shard], keyedDelta{key: key, delta: d})
	}

	results := make([][]models.EpisodeSeries, workers)

	g, gctx := errgroup.WithContext(ctx)
	for i, shard := range shards {
		if len(shard) == 0 {
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = aggregateShard(shard, first)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var out []models.EpisodeSeries
	for _, r := range results {
		out = append(out, r...)
	}
	slices.SortFunc(out, func(a, b models.EpisodeSeries) int {
		return cmp.Or(cmp.Compare(a.ShowID, b.ShowID), cmp.Compare(a.Episode, b.Episode))
	})
	return out, nil
}

func aggregateShard(shard []keyedDelta, first map[EpisodeKey]time.Time) []models.EpisodeSeries {
	groups := make(map[EpisodeKey]map[int]*bucketAcc)
	for _, kd := range shard {
		hours := kd.delta.SampleTime.Sub(first[kd.key]).Hours()
		offset := BucketKey(hours)

		buckets, ok := groups[kd.key]
		if !ok {
			buckets = make(map[int]*bucketAcc)
			groups[kd.key] = buckets
		}
		acc, ok := buckets[offset]
		if !ok {
			acc = &bucketAcc{start: kd.delta.SampleTime}
			buckets[offset] = acc
		}
		acc.sum += kd.delta.Delta
		if kd.delta.SampleTime.Before(acc.start) {
			acc.start = kd.delta.SampleTime
		}
	}

	out := make([]models.EpisodeSeries, 0, len(groups))
	for key, buckets := range groups {
		offsets := make([]int, 0, len(buckets))
		for o := range buckets {
			offsets = append(offsets, o)
		}
		slices.Sort(offsets)

		series := models.EpisodeSeries{ShowID: key.ShowID, Episode: key.Episode, Buckets: make([]models.EpisodeBucket, len(offsets))}
		var running int64
		for i, o := range offsets {
			acc := buckets[o]
			running += acc.sum
			series.Buckets[i] = models.EpisodeBucket{
				ShowID:              key.ShowID,
				Episode:             key.Episode,
				BucketOffsetHours:   o,
				BucketStartTime:     acc.start,
				PeriodDownloads:     acc.sum,
				CumulativeDownloads: running,
			}
		}
		out = append(out, series)
	}
	return out
}
