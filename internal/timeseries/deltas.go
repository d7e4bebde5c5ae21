// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package timeseries turns cumulative tracker counters into per-sample
// download deltas, release-relative episode curves and weekly rankings.
package timeseries

import (
	"context"
	"runtime"
	"slices"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/hiinaspace/nyaastats/internal/models"
)

// DeltaStats counts what was dropped or repaired while computing deltas.
type DeltaStats struct {
	Samples   int `json:"samples"`
	Malformed int `json:"malformed"`
	Anomalies int `json:"anomalies"`
}

func (s *DeltaStats) add(o DeltaStats) {
	s.Samples += o.Samples
	s.Malformed += o.Malformed
	s.Anomalies += o.Anomalies
}

// ComputeDeltas converts the samples of a single torrent into deltas. Samples
// are ordered by time (stable for equal times); the first delta is 0 and a
// counter that goes backwards yields 0 rather than a negative delta.
// Samples with a negative counter or zero time are dropped.
func ComputeDeltas(samples []models.StatSample) ([]models.DeltaRecord, DeltaStats) {
	stats := DeltaStats{Samples: len(samples)}

	valid := make([]models.StatSample, 0, len(samples))
	for _, s := range samples {
		if s.CumulativeDownloads < 0 || s.SampleTime.IsZero() {
			stats.Malformed++
			continue
		}
		valid = append(valid, s)
	}
	slices.SortStableFunc(valid, func(a, b models.StatSample) int {
		return a.SampleTime.Compare(b.SampleTime)
	})

	out := make([]models.DeltaRecord, len(valid))
	for i, s := range valid {
		out[i] = models.DeltaRecord{Infohash: s.Infohash, SampleTime: s.SampleTime}
		if i == 0 {
			continue
		}
		diff := s.CumulativeDownloads - valid[i-1].CumulativeDownloads
		if diff < 0 {
			stats.Anomalies++
			log.Debug().
				Str("infohash", s.Infohash).
				Time("sampleTime", s.SampleTime).
				Int64("drop", -diff).
				Msg("download counter went backwards, clamping delta to 0")
			continue
		}
		out[i].Delta = diff
	}

	return out, stats
}

// ComputeAll groups samples by infohash and computes every torrent on the
// worker pool. The result is ordered by (infohash, sample time).
func ComputeAll(ctx context.Context, samples []models.StatSample, workers int) ([]models.DeltaRecord, DeltaStats, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	byHash := make(map[string][]models.StatSample)
	for _, s := range samples {
		byHash[s.Infohash] = append(byHash[s.Infohash], s)
	}
	hashes := make([]string, 0, len(byHash))
	for h := range byHash {
		hashes = append(hashes, h)
	}
	slices.Sort(hashes)

	perTorrent := make([][]models.DeltaRecord, len(hashes))
	perStats := make([]DeltaStats, len(hashes))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, h := range hashes {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			perTorrent[i], perStats[i] = ComputeDeltas(byHash[h])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, DeltaStats{}, err
	}
	if err := ctx.Err(); err != nil {
		return nil, DeltaStats{}, err
	}

	var (
		total DeltaStats
		n     int
	)
	for i := range hashes {
		total.add(perStats[i])
		n += len(perTorrent[i])
	}
	out := make([]models.DeltaRecord, 0, n)
	for _, recs := range perTorrent {
		out = append(out, recs...)
	}

	if total.Anomalies > 0 || total.Malformed > 0 {
		log.Warn().Int("anomalies", total.Anomalies).Int("malformed", total.Malformed).Msg("repaired download counters")
	}

	return out, total, nil
}
