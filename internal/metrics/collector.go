// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package metrics

import (
	"slices"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// RunSummary is what a pipeline run reports to the collector.
type RunSummary struct {
	Torrents          int
	FilteredOut       int
	Matched           int
	Unmatched         int
	Rejected          int
	ByMethod          map[string]int
	Samples           int
	MalformedTorrents int
	MalformedSamples  int
	CounterAnomalies  int
	EpisodeSeries     int
	EpisodeBuckets    int
	MovieSeries       int
	MovieBuckets      int
	RankedWeeks       int
	Duration          time.Duration
	Finished          time.Time
}

// RunCollector exposes the last recorded RunSummary.
type RunCollector struct {
	mu      sync.RWMutex
	summary *RunSummary

	torrentsDesc    *prometheus.Desc
	filteredDesc    *prometheus.Desc
	matchesDesc     *prometheus.Desc
	unmatchedDesc   *prometheus.Desc
	rejectedDesc    *prometheus.Desc
	samplesDesc     *prometheus.Desc
	malformedDesc   *prometheus.Desc
	anomaliesDesc   *prometheus.Desc
	seriesDesc      *prometheus.Desc
	bucketsDesc     *prometheus.Desc
	rankedWeeksDesc *prometheus.Desc
	durationDesc    *prometheus.Desc
	finishedDesc    *prometheus.Desc
}

func NewRunCollector() *RunCollector {
	return &RunCollector{
		torrentsDesc: prometheus.NewDesc(
			"nyaastats_torrents_total",
			"Number of torrents read from the snapshot",
			nil,
			nil,
		),
		filteredDesc: prometheus.NewDesc(
			"nyaastats_torrents_filtered_total",
			"Number of torrents excluded by the torrent filter expression",
			nil,
			nil,
		),
		matchesDesc: prometheus.NewDesc(
			"nyaastats_matches_total",
			"Number of torrents attributed to a show by match method",
			[]string{"method"},
			nil,
		),
		unmatchedDesc: prometheus.NewDesc(
			"nyaastats_unmatched_total",
			"Number of torrents no show reached the fuzzy threshold for",
			nil,
			nil,
		),
		rejectedDesc: prometheus.NewDesc(
			"nyaastats_rejected_total",
			"Number of torrents with an empty or uninformative title",
			nil,
			nil,
		),
		samplesDesc: prometheus.NewDesc(
			"nyaastats_samples_total",
			"Number of download counter samples read",
			nil,
			nil,
		),
		malformedDesc: prometheus.NewDesc(
			"nyaastats_malformed_records_total",
			"Number of input records skipped as malformed by kind",
			[]string{"kind"},
			nil,
		),
		anomaliesDesc: prometheus.NewDesc(
			"nyaastats_counter_anomalies_total",
			"Number of samples whose download counter decreased",
			nil,
			nil,
		),
		seriesDesc: prometheus.NewDesc(
			"nyaastats_series",
			"Number of time series produced by kind",
			[]string{"kind"},
			nil,
		),
		bucketsDesc: prometheus.NewDesc(
			"nyaastats_buckets",
			"Number of time buckets produced by kind",
			[]string{"kind"},
			nil,
		),
		rankedWeeksDesc: prometheus.NewDesc(
			"nyaastats_ranked_weeks",
			"Number of complete weeks in the ranking table",
			nil,
			nil,
		),
		durationDesc: prometheus.NewDesc(
			"nyaastats_run_duration_seconds",
			"Wall time of the last pipeline run",
			nil,
			nil,
		),
		finishedDesc: prometheus.NewDesc(
			"nyaastats_run_finished_timestamp_seconds",
			"Unix time the last pipeline run finished",
			nil,
			nil,
		),
	}
}

// Record replaces the summary exposed by the collector.
func (c *RunCollector) Record(s RunSummary) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.summary = &s
}

func (c *RunCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.torrentsDesc
	ch <- c.filteredDesc
	ch <- c.matchesDesc
	ch <- c.unmatchedDesc
	ch <- c.rejectedDesc
	ch <- c.samplesDesc
	ch <- c.malformedDesc
	ch <- c.anomaliesDesc
	ch <- c.seriesDesc
	ch <- c.bucketsDesc
	ch <- c.rankedWeeksDesc
	ch <- c.durationDesc
	ch <- c.finishedDesc
}

func (c *RunCollector) Collect(ch chan<- prometheus.Metric) {
	c.mu.RLock()
	s := c.summary
	c.mu.RUnlock()

	if s == nil {
		return
	}

	counter := func(desc *prometheus.Desc, v int, labels ...string) {
		ch <- prometheus.MustNewConstMetric(desc, prometheus.CounterValue, float64(v), labels...)
	}
	gauge := func(desc *prometheus.Desc, v float64, labels ...string) {
		ch <- prometheus.MustNewConstMetric(desc, prometheus.GaugeValue, v, labels...)
	}

	counter(c.torrentsDesc, s.Torrents)
	counter(c.filteredDesc, s.FilteredOut)

	methods := make([]string, 0, len(s.ByMethod))
	for m := range s.ByMethod {
		methods = append(methods, m)
	}
	slices.Sort(methods)
	for _, m := range methods {
		counter(c.matchesDesc, s.ByMethod[m], m)
	}

	counter(c.unmatchedDesc, s.Unmatched)
	counter(c.rejectedDesc, s.Rejected)
	counter(c.samplesDesc, s.Samples)
	counter(c.malformedDesc, s.MalformedTorrents, "torrent")
	counter(c.malformedDesc, s.MalformedSamples, "sample")
	counter(c.anomaliesDesc, s.CounterAnomalies)

	gauge(c.seriesDesc, float64(s.EpisodeSeries), "episode")
	gauge(c.seriesDesc, float64(s.MovieSeries), "movie")
	gauge(c.bucketsDesc, float64(s.EpisodeBuckets), "episode")
	gauge(c.bucketsDesc, float64(s.MovieBuckets), "movie")
	gauge(c.rankedWeeksDesc, float64(s.RankedWeeks))
	gauge(c.durationDesc, s.Duration.Seconds())
	if !s.Finished.IsZero() {
		gauge(c.finishedDesc, float64(s.Finished.Unix()))
	}
}
