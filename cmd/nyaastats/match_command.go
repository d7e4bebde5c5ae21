// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/hiinaspace/nyaastats/internal/models"
	"github.com/hiinaspace/nyaastats/internal/pipeline"
	"github.com/hiinaspace/nyaastats/internal/snapshot"
	"github.com/hiinaspace/nyaastats/pkg/titles"
)

type matchOutput struct {
	Input   string             `json:"input"`
	Title   string             `json:"title"`
	Season  *int               `json:"season,omitempty"`
	Episode *int               `json:"episode,omitempty"`
	Result  models.MatchResult `json:"result"`
}

func RunMatchCommand(configPath *string) *cobra.Command {
	var (
		season   int
		episode  int
		filename bool
	)

	cmd := &cobra.Command{
		Use:   "match <title>",
		Short: "Match a single title against the show catalog",
		Example: `  nyaastats match "Gachiakuta" --episode 5
  nyaastats match --filename "[SubsPlease] Gachiakuta - 05 (1080p) [ABCD1234].mkv"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			appCfg, closer, err := loadConfig(cmd, *configPath)
			if err != nil {
				return err
			}
			defer closer.Close()

			shows, err := snapshot.LoadShows(appCfg.Config.ShowsPath)
			if err != nil {
				return err
			}

			p, err := pipeline.New(appCfg.Config, shows)
			if err != nil {
				return err
			}

			input := strings.Join(args, " ")
			out := matchOutput{Input: input, Title: input}

			if filename {
				parsed := titles.NewParser().Parse(input)
				out.Title = parsed.Title
				out.Season = parsed.Season()
				out.Episode = parsed.EpisodeNumber()
			}
			if cmd.Flags().Changed("season") {
				out.Season = &season
			}
			if cmd.Flags().Changed("episode") {
				out.Episode = &episode
			}

			out.Result = p.MatchTitle(out.Title, out.Season, out.Episode)
			return writeJSON(cmd.OutOrStdout(), out)
		},
	}

	cmd.Flags().IntVarP(&season, "season", "s", 0, "Season number of the release")
	cmd.Flags().IntVarP(&episode, "episode", "e", 0, "Episode number of the release")
	cmd.Flags().BoolVarP(&filename, "filename", "f", false, "Treat the input as a release filename and guess title, season and episode")

	return cmd
}
