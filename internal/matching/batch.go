// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package matching

import (
	"context"
	"runtime"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/hiinaspace/nyaastats/internal/models"
	"github.com/hiinaspace/nyaastats/pkg/titles"
)

// Request is one torrent to match.
type Request struct {
	Infohash string
	Title    string
	Season   *int
	Episode  *int
}

// Stats summarizes a batch. Matched + Unmatched + Rejected == Total.
type Stats struct {
	Total     int                        `json:"total"`
	Matched   int                        `json:"matched"`
	Unmatched int                        `json:"unmatched"`
	Rejected  int                        `json:"rejected"`
	ByMethod  map[models.MatchMethod]int `json:"by_method"`
	MatchRate float64                    `json:"match_rate"`
}

// Report holds one result per request, in request order.
type Report struct {
	Results []models.MatchResult `json:"results"`
	Stats   Stats                `json:"stats"`
}

// MatchAll matches reqs on up to workers goroutines. Requests with an empty
// or uninformative title are rejected without running any tier.
func MatchAll(ctx context.Context, engine *Engine, reqs []Request, workers int) (*Report, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	results := make([]models.MatchResult, len(reqs))
	rejected := make([]bool, len(reqs))
	guard := engine.Index().Guard()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, req := range reqs {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if strings.TrimSpace(req.Title) == "" || !guard.Informative(titles.Normalize(req.Title)) {
				rejected[i] = true
				results[i] = models.NoMatch(0)
			} else {
				results[i] = engine.Match(req.Title, req.Season, req.Episode)
			}
			results[i].Infohash = req.Infohash
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	report := &Report{Results: results, Stats: summarize(results, rejected)}

	log.Info().
		Int("total", report.Stats.Total).
		Int("matched", report.Stats.Matched).
		Int("unmatched", report.Stats.Unmatched).
		Int("rejected", report.Stats.Rejected).
		Float64("matchRate", report.Stats.MatchRate).
		Msg("matched torrents")

	return report, nil
}

func summarize(results []models.MatchResult, rejected []bool) Stats {
	stats := Stats{Total: len(results), ByMethod: make(map[models.MatchMethod]int)}
	for i, r := range results {
		switch {
		case rejected[i]:
			stats.Rejected++
		case r.Matched():
			stats.Matched++
			stats.ByMethod[r.Method]++
		default:
			stats.Unmatched++
		}
	}
	if stats.Total > 0 {
		stats.MatchRate = float64(stats.Matched) / float64(stats.Total)
	}
	return stats
}
