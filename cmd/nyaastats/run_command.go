// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/hiinaspace/nyaastats/internal/domain"
	"github.com/hiinaspace/nyaastats/internal/matching"
	"github.com/hiinaspace/nyaastats/internal/metrics"
	"github.com/hiinaspace/nyaastats/internal/pipeline"
	"github.com/hiinaspace/nyaastats/internal/snapshot"
	"github.com/hiinaspace/nyaastats/pkg/titles"
)

// runReport is printed to stdout after a successful run.
type runReport struct {
	OutputDir   string               `json:"output_dir"`
	Matches     matching.Stats       `json:"matches"`
	Diagnostics pipeline.Diagnostics `json:"diagnostics"`
	Episodes    int                  `json:"episodes"`
	Movies      int                  `json:"movies"`
	Weeks       int                  `json:"weeks"`
}

func RunPipelineCommand(configPath *string) *cobra.Command {
	var (
		outputDir    string
		databasePath string
		since        string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Match a scraper snapshot and write time series and weekly rankings",
		RunE: func(cmd *cobra.Command, _ []string) error {
			appCfg, closer, err := loadConfig(cmd, *configPath)
			if err != nil {
				return err
			}
			defer closer.Close()

			cfg := appCfg.Config
			if outputDir != "" {
				cfg.OutputDir = outputDir
			}
			if databasePath != "" {
				cfg.DatabasePath = databasePath
			}
			if since != "" {
				cfg.Since = since
				if err := cfg.Validate(); err != nil {
					return err
				}
			}

			return runPipeline(cmd.Context(), cfg, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "Output directory (overrides outputDir)")
	cmd.Flags().StringVar(&databasePath, "database", "", "Scraper database (overrides databasePath)")
	cmd.Flags().StringVar(&since, "since", "", "Ignore torrents published before this date (YYYY-MM-DD)")

	return cmd
}

func runPipeline(ctx context.Context, cfg *domain.Config, stdout io.Writer) error {
	shows, err := snapshot.LoadShows(cfg.ShowsPath)
	if err != nil {
		return err
	}

	p, err := pipeline.New(cfg, shows)
	if err != nil {
		return err
	}

	since, err := cfg.SinceTime()
	if err != nil {
		return err
	}

	log.Info().
		Str("database", cfg.DatabasePath).
		Int("shows", len(shows)).
		Time("since", since).
		Msg("loading snapshot")

	snap, err := snapshot.LoadFile(ctx, cfg.DatabasePath, titles.NewParser(), since)
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}

	out, err := p.Run(ctx, pipeline.Input{
		Torrents:          snap.Torrents,
		Samples:           snap.Samples,
		MalformedTorrents: snap.MalformedTorrents,
		MalformedSamples:  snap.MalformedSamples,
	})
	if err != nil {
		return err
	}

	if err := writeOutputs(cfg.OutputDir, out); err != nil {
		return err
	}

	summary := out.Summary()
	if cfg.MetricsPath != "" {
		m := metrics.NewManager()
		m.Record(summary)
		if err := m.WriteTextfile(cfg.MetricsPath); err != nil {
			return err
		}
	}

	return writeJSON(stdout, runReport{
		OutputDir:   cfg.OutputDir,
		Matches:     out.Matches.Stats,
		Diagnostics: out.Diagnostics,
		Episodes:    summary.EpisodeSeries,
		Movies:      summary.MovieSeries,
		Weeks:       summary.RankedWeeks,
	})
}
