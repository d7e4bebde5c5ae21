// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"encoding/json"
	"io"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/hiinaspace/nyaastats/internal/config"
	"github.com/hiinaspace/nyaastats/internal/logger"
)

// loadConfig reads the configuration and sets up logging on the command's
// stderr. The returned closer releases the log file.
func loadConfig(cmd *cobra.Command, configPath string) (*config.AppConfig, io.Closer, error) {
	appCfg, err := config.New(configPath)
	if err != nil {
		return nil, nil, err
	}

	closer := logger.Setup(appCfg.Config, cmd.ErrOrStderr())

	if used := appCfg.ConfigFileUsed(); used != "" {
		log.Debug().Str("path", used).Msg("loaded config file")
	} else {
		log.Debug().Msg("no config file found, using defaults and environment")
	}

	return appCfg, closer, nil
}

// writeJSON encodes v as indented JSON.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
