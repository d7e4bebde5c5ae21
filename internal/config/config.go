// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package config

import (
	_ "embed"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"github.com/hiinaspace/nyaastats/internal/domain"
)

const (
	envPrefix = "NYAASTATS__"

	// keyDelimiter replaces viper's "." so table keys such as "dr. stone"
	// in [matching.corrections] survive as single keys.
	keyDelimiter = "::"
)

//go:embed sample_config.toml
var sampleConfig string

// AppConfig wraps the decoded configuration together with the viper
// instance and the file it came from.
type AppConfig struct {
	Config *domain.Config
	viper  *viper.Viper
	dir    string
}

// scalar keys that can be overridden from the environment, written with "."
// between sections
var defaults = map[string]any{
	"logLevel":                    "INFO",
	"logPath":                     "",
	"logMaxSize":                  50,
	"logMaxBackups":               3,
	"databasePath":                "nyaastats.db",
	"showsPath":                   "shows.yaml",
	"outputDir":                   "output",
	"metricsPath":                 "",
	"since":                       "",
	"workers":                     0,
	"torrentFilter":               "",
	"matching.fuzzyThreshold":     domain.DefaultFuzzyThreshold,
	"matching.seasonBonus":        domain.DefaultSeasonBonus,
	"matching.guard.minLength":    3,
	"matching.guard.requireLatin": true,
	"week.offsetHours":            domain.DefaultWeekOffset,
	"week.startDay":               domain.DefaultWeekStartDay,
}

// New loads configuration from configPath, or from the default search
// locations when configPath is empty. A missing config file is not an
// error; defaults and environment variables still apply.
func New(configPath string) (*AppConfig, error) {
	v := viper.NewWithOptions(viper.KeyDelimiter(keyDelimiter))
	v.SetConfigType("toml")

	for key, value := range defaults {
		vkey := strings.ReplaceAll(key, ".", keyDelimiter)
		v.SetDefault(vkey, value)
		if err := v.BindEnv(vkey, EnvName(key)); err != nil {
			return nil, errors.Wrapf(err, "bind env for %s", key)
		}
	}

	dir := ""
	if configPath != "" {
		v.SetConfigFile(configPath)
		dir = filepath.Dir(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "read config %s", configPath)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath(getDefaultConfigDir())
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, errors.Wrap(err, "read config")
			}
		} else {
			dir = filepath.Dir(v.ConfigFileUsed())
		}
	}

	cfg := &domain.Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Wrap(err, "decode config")
	}

	c := &AppConfig{Config: cfg, viper: v, dir: dir}
	c.resolvePaths()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return c, nil
}

// ConfigDir returns the directory relative paths are resolved against.
func (c *AppConfig) ConfigDir() string {
	return c.dir
}

// ConfigFileUsed returns the path of the loaded config file, if any.
func (c *AppConfig) ConfigFileUsed() string {
	return c.viper.ConfigFileUsed()
}

func (c *AppConfig) resolvePaths() {
	resolve := func(p string) string {
		if p == "" || filepath.IsAbs(p) || c.dir == "" {
			return p
		}
		return filepath.Join(c.dir, p)
	}

	c.Config.DatabasePath = resolve(c.Config.DatabasePath)
	c.Config.ShowsPath = resolve(c.Config.ShowsPath)
	c.Config.OutputDir = resolve(c.Config.OutputDir)
	c.Config.MetricsPath = resolve(c.Config.MetricsPath)
	c.Config.LogPath = resolve(c.Config.LogPath)
}

// EnvName maps a config key to its environment variable, e.g.
// "matching.fuzzyThreshold" -> "NYAASTATS__MATCHING__FUZZY_THRESHOLD".
func EnvName(key string) string {
	parts := strings.Split(key, ".")
	for i, part := range parts {
		parts[i] = toScreamingSnake(part)
	}
	return envPrefix + strings.Join(parts, "__")
}

func toScreamingSnake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) && i > 0 {
			b.WriteByte('_')
		}
		b.WriteRune(unicode.ToUpper(r))
	}
	return b.String()
}

// DefaultConfigPath is where `config init` writes when no path is given.
func DefaultConfigPath() string {
	return filepath.Join(getDefaultConfigDir(), "config.toml")
}

func getDefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		if xdg == "/config" {
			return xdg
		}
		return filepath.Join(xdg, "nyaastats")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "nyaastats")
}

// WriteDefaultConfig writes the commented sample configuration to path. It
// refuses to overwrite an existing file.
func WriteDefaultConfig(path string) error {
	if _, err := os.Stat(path); err == nil {
		return errors.Errorf("config file %s already exists", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(err, "create config directory")
	}
	return errors.Wrap(os.WriteFile(path, []byte(sampleConfig), 0o644), "write config")
}
