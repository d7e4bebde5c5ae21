// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hiinaspace/nyaastats/internal/config"
	"github.com/hiinaspace/nyaastats/internal/pipeline"
	"github.com/hiinaspace/nyaastats/internal/snapshot"
)

func RunConfigCommand(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	cmd.AddCommand(runConfigInitCommand())
	cmd.AddCommand(runConfigValidateCommand(configPath))
	return cmd
}

func runConfigInitCommand() *cobra.Command {
	var targetPath string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a sample configuration file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			target := strings.TrimSpace(targetPath)
			if target == "" {
				target = config.DefaultConfigPath()
			}

			if err := config.WriteDefaultConfig(target); err != nil {
				return err
			}

			cmd.Printf("Wrote sample configuration to %s\n", target)
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	return cmd
}

func runConfigValidateCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration against the show catalog",
		RunE: func(cmd *cobra.Command, _ []string) error {
			appCfg, closer, err := loadConfig(cmd, *configPath)
			if err != nil {
				return err
			}
			defer closer.Close()

			shows, err := snapshot.LoadShows(appCfg.Config.ShowsPath)
			if err != nil {
				return err
			}
			if _, err := pipeline.New(appCfg.Config, shows); err != nil {
				return fmt.Errorf("validate config: %w", err)
			}

			if used := appCfg.ConfigFileUsed(); used != "" {
				cmd.Printf("Config path: %s\n", used)
			} else {
				cmd.Println("No config file found; defaults were used")
			}
			cmd.Printf("Shows: %d\n", len(shows))
			cmd.Println("Configuration valid")
			return nil
		},
	}
}
