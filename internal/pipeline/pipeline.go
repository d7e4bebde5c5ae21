// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package pipeline wires one batch run together: filter, correct and match
// torrents, turn counter samples into deltas, then bucket and rank them.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hiinaspace/nyaastats/internal/domain"
	"github.com/hiinaspace/nyaastats/internal/matching"
	"github.com/hiinaspace/nyaastats/internal/metrics"
	"github.com/hiinaspace/nyaastats/internal/models"
	"github.com/hiinaspace/nyaastats/internal/timeseries"
	"github.com/hiinaspace/nyaastats/pkg/hashutil"
	"github.com/hiinaspace/nyaastats/pkg/titles"
)

// Input is one snapshot of the tracker plus the counts of records the
// loader already had to skip.
type Input struct {
	Torrents          []models.TorrentRecord
	Samples           []models.StatSample
	MalformedTorrents int
	MalformedSamples  int
}

// Diagnostics counts every record that was skipped, repaired or left
// unattributed. None of these abort a run.
type Diagnostics struct {
	MalformedTorrents int `json:"malformed_torrents"`
	MalformedSamples  int `json:"malformed_samples"`
	CounterAnomalies  int `json:"counter_anomalies"`
	Unmatched         int `json:"unmatched"`
	Rejected          int `json:"rejected"`
	FilteredOut       int `json:"filtered_out"`
}

// Output is everything a run produces. Contributions breaks top ranked and
// spiking shows down per torrent.
type Output struct {
	Matches       *matching.Report           `json:"matches"`
	Episodes      []models.EpisodeSeries     `json:"episodes"`
	Movies        []models.MovieSeries       `json:"movies"`
	Rankings      []models.WeeklyRanking     `json:"rankings"`
	Contributions []models.ShowContributions `json:"contributions"`
	Diagnostics   Diagnostics                `json:"diagnostics"`
	Samples       int                        `json:"samples"`
	Duration      time.Duration              `json:"duration"`
	Finished      time.Time                  `json:"finished"`
}

// Summary converts the output into the metrics run summary.
func (o *Output) Summary() metrics.RunSummary {
	s := metrics.RunSummary{
		FilteredOut:       o.Diagnostics.FilteredOut,
		Unmatched:         o.Diagnostics.Unmatched,
		Rejected:          o.Diagnostics.Rejected,
		MalformedTorrents: o.Diagnostics.MalformedTorrents,
		MalformedSamples:  o.Diagnostics.MalformedSamples,
		CounterAnomalies:  o.Diagnostics.CounterAnomalies,
		Samples:           o.Samples,
		EpisodeSeries:     len(o.Episodes),
		MovieSeries:       len(o.Movies),
		RankedWeeks:       len(timeseries.GroupByWeek(o.Rankings)),
		Duration:          o.Duration,
		Finished:          o.Finished,
		ByMethod:          make(map[string]int),
	}
	if o.Matches != nil {
		s.Torrents = o.Matches.Stats.Total + o.Diagnostics.FilteredOut
		s.Matched = o.Matches.Stats.Matched
		for m, n := range o.Matches.Stats.ByMethod {
			s.ByMethod[string(m)] = n
		}
	}
	for _, e := range o.Episodes {
		s.EpisodeBuckets += len(e.Buckets)
	}
	for _, m := range o.Movies {
		s.MovieBuckets += len(m.Buckets)
	}
	return s
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithClock replaces time.Now, which decides which ranking week is partial.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) {
		p.now = now
	}
}

// Pipeline is built once per run from validated configuration and the
// show catalog.
type Pipeline struct {
	engine      *matching.Engine
	corrections titles.Corrections
	filter      *TorrentFilter
	calendar    timeseries.WeekCalendar
	workers     int
	now         func() time.Time
}

// New validates cfg against shows and prepares every stage. Configuration
// problems are returned as *domain.ConfigError before any record is read.
func New(cfg *domain.Config, shows []models.ShowRecord, opts ...Option) (*Pipeline, error) {
	if cfg == nil {
		return nil, fmt.Errorf("pipeline: nil config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	guard := titles.Guard{MinLength: cfg.Matching.Guard.MinLength, RequireLatin: cfg.Matching.Guard.RequireLatin}
	engine, err := matching.NewEngine(matching.NewIndex(shows, guard), cfg.Matching)
	if err != nil {
		return nil, err
	}

	filter, err := CompileFilter(cfg.TorrentFilter)
	if err != nil {
		return nil, err
	}

	calendar, err := timeseries.NewWeekCalendar(cfg.Week)
	if err != nil {
		return nil, err
	}

	corrections := titles.DefaultCorrections()
	for from, to := range titles.NewCorrections(cfg.Matching.Corrections) {
		corrections[from] = to
	}

	p := &Pipeline{
		engine:      engine,
		corrections: corrections,
		filter:      filter,
		calendar:    calendar,
		workers:     cfg.Workers,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}

	log.Debug().
		Int("shows", engine.Index().Len()).
		Int("corrections", len(corrections)).
		Str("filter", filter.String()).
		Msg("pipeline ready")

	return p, nil
}

// MatchTitle runs a single guessed title through the corrections and the
// match engine, the same way Run does for every torrent.
func (p *Pipeline) MatchTitle(title string, season, episode *int) models.MatchResult {
	return p.engine.Match(p.corrections.Apply(title), season, episode)
}

// Run processes one snapshot. Only cancellation of ctx makes it fail; bad
// records are counted in Diagnostics and skipped.
func (p *Pipeline) Run(ctx context.Context, in Input) (*Output, error) {
	started := p.now()
	diag := Diagnostics{MalformedTorrents: in.MalformedTorrents, MalformedSamples: in.MalformedSamples}

	torrents := p.selectTorrents(in.Torrents, &diag)

	reqs := make([]matching.Request, len(torrents))
	for i, t := range torrents {
		reqs[i] = matching.Request{
			Infohash: t.Infohash,
			Title:    p.corrections.Apply(t.ParsedTitle),
			Season:   t.ParsedSeason,
			Episode:  t.ParsedEpisode,
		}
	}

	report, err := matching.MatchAll(ctx, p.engine, reqs, p.workers)
	if err != nil {
		return nil, fmt.Errorf("match torrents: %w", err)
	}
	diag.Unmatched = report.Stats.Unmatched
	diag.Rejected = report.Stats.Rejected

	infos := make(map[string]timeseries.TorrentInfo, report.Stats.Matched)
	showOf := make(map[string]int, report.Stats.Matched)
	contributors := make(map[string]timeseries.ContributionTorrent, report.Stats.Matched)
	for i, result := range report.Results {
		if !result.Matched() {
			continue
		}
		t := torrents[i]
		entry, _ := p.engine.Index().Show(*result.ShowID)
		infos[t.Infohash] = timeseries.TorrentInfo{
			Infohash:    t.Infohash,
			ShowID:      *result.ShowID,
			Episode:     t.ParsedEpisode,
			PublishTime: t.PublishTime,
			Movie:       entry != nil && entry.Show.IsMovie(),
		}
		showOf[t.Infohash] = *result.ShowID
		contributors[t.Infohash] = timeseries.ContributionTorrent{
			ShowID:   *result.ShowID,
			Episode:  t.ParsedEpisode,
			Filename: t.Filename,
			Method:   result.Method,
			Score:    result.Score,
		}
	}

	samples := make([]models.StatSample, 0, len(in.Samples))
	for _, s := range in.Samples {
		s.Infohash = hashutil.Normalize(s.Infohash)
		if _, ok := showOf[s.Infohash]; ok {
			samples = append(samples, s)
		}
	}

	deltas, deltaStats, err := timeseries.ComputeAll(ctx, samples, p.workers)
	if err != nil {
		return nil, fmt.Errorf("compute deltas: %w", err)
	}
	diag.MalformedSamples += deltaStats.Malformed
	diag.CounterAnomalies = deltaStats.Anomalies

	episodes, err := timeseries.AggregateEpisodes(ctx, deltas, infos, p.workers)
	if err != nil {
		return nil, fmt.Errorf("aggregate episodes: %w", err)
	}
	movies := timeseries.AggregateMovies(deltas, infos)

	now := p.now()
	rankings := timeseries.RankWeekly(deltas, showOf, p.calendar, now)

	contributions := timeseries.TorrentContributions(deltas, contributors, rankings, p.calendar, now,
		timeseries.ContributionTopRank, timeseries.ContributionSpike)
	for i := range contributions {
		if entry, ok := p.engine.Index().Show(contributions[i].ShowID); ok {
			contributions[i].Title = entry.Show.CanonicalTitle
		}
	}

	out := &Output{
		Matches:       report,
		Episodes:      episodes,
		Movies:        movies,
		Rankings:      rankings,
		Contributions: contributions,
		Diagnostics:   diag,
		Samples:       len(samples),
		Duration:      now.Sub(started),
		Finished:      now,
	}

	log.Info().
		Int("episodes", len(episodes)).
		Int("movies", len(movies)).
		Int("rankings", len(rankings)).
		Int("anomalies", diag.CounterAnomalies).
		Int("filteredOut", diag.FilteredOut).
		Dur("duration", out.Duration).
		Msg("pipeline run finished")

	return out, nil
}

// selectTorrents drops duplicate infohashes and torrents the filter rejects.
func (p *Pipeline) selectTorrents(in []models.TorrentRecord, diag *Diagnostics) []models.TorrentRecord {
	seen := make(map[string]struct{}, len(in))
	out := make([]models.TorrentRecord, 0, len(in))

	for _, t := range in {
		hash, ok := hashutil.Canonical(t.Infohash)
		if !ok {
			diag.MalformedTorrents++
			log.Warn().Str("infohash", t.Infohash).Msg("skipping torrent with invalid infohash")
			continue
		}
		if _, dup := seen[hash]; dup {
			diag.MalformedTorrents++
			log.Warn().Str("infohash", hash).Msg("skipping duplicate torrent")
			continue
		}
		seen[hash] = struct{}{}
		t.Infohash = hash

		keep, err := p.filter.Allow(t)
		if err != nil {
			log.Warn().Err(err).Str("infohash", hash).Msg("torrent filter failed, excluding torrent")
		}
		if !keep {
			diag.FilteredOut++
			continue
		}
		out = append(out, t)
	}

	return out
}
