// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hiinaspace/nyaastats/internal/domain"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"ERROR", zerolog.ErrorLevel},
		{"warn", zerolog.WarnLevel},
		{"WARNING", zerolog.WarnLevel},
		{"INFO", zerolog.InfoLevel},
		{" debug ", zerolog.DebugLevel},
		{"TRACE", zerolog.TraceLevel},
		{"", zerolog.InfoLevel},
		{"verbose", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseLevel(tt.in), tt.in)
	}
}

func TestSetupWritesConsoleAndFile(t *testing.T) {
	oldLogger := log.Logger
	oldLevel := zerolog.GlobalLevel()
	t.Cleanup(func() {
		log.Logger = oldLogger
		zerolog.SetGlobalLevel(oldLevel)
	})

	path := filepath.Join(t.TempDir(), "log", "nyaastats.log")
	var console bytes.Buffer

	closer := Setup(&domain.Config{LogLevel: "DEBUG", LogPath: path, LogMaxSize: 1, LogMaxBackups: 1}, &console)

	log.Debug().Str("infohash", "abc").Msg("matched torrent")
	log.Trace().Msg("hidden")
	require.NoError(t, closer.Close())

	assert.Contains(t, console.String(), "matched torrent")
	assert.NotContains(t, console.String(), "hidden")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"infohash":"abc"`)
	assert.Contains(t, string(data), `"message":"matched torrent"`)
}
