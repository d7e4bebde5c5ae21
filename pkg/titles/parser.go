// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package titles

import (
	"strings"
	"time"

	"github.com/autobrr/autobrr/pkg/ttlcache"
	"github.com/moistari/rls"
	"golang.org/x/sync/singleflight"
)

// ParsedTitle represents parsed title information from a release filename.
type ParsedTitle struct {
	Type       string   `json:"type,omitempty"`
	Title      string   `json:"title,omitempty"`
	Subtitle   string   `json:"subtitle,omitempty"`
	Year       int      `json:"year,omitempty"`
	Series     int      `json:"series,omitempty"`
	Episode    int      `json:"episode,omitempty"`
	Version    string   `json:"version,omitempty"`
	Group      string   `json:"group,omitempty"`
	Resolution string   `json:"resolution,omitempty"`
	Source     string   `json:"source,omitempty"`
	Codec      []string `json:"codec,omitempty"`
	Container  string   `json:"container,omitempty"`
	Language   []string `json:"language,omitempty"`
}

// Season returns the parsed season, or nil when rls found none.
func (p ParsedTitle) Season() *int {
	if p.Series <= 0 {
		return nil
	}
	season := p.Series
	return &season
}

// EpisodeNumber returns the parsed episode, or nil when rls found none.
func (p ParsedTitle) EpisodeNumber() *int {
	if p.Episode <= 0 {
		return nil
	}
	episode := p.Episode
	return &episode
}

// Parser guesses title metadata from release filenames with a TTL cache.
// It is only consulted for torrents the scraper stored without a parsed title.
type Parser struct {
	cache *ttlcache.Cache[string, ParsedTitle]
	sf    singleflight.Group
}

// NewParser creates a new title parser with TTL cache
func NewParser() *Parser {
	return &Parser{
		cache: ttlcache.New(ttlcache.Options[string, ParsedTitle]{}.SetDefaultTTL(5 * time.Minute)),
	}
}

// Parse parses a single filename. A nil parser or blank name yields the zero value.
func (p *Parser) Parse(name string) ParsedTitle {
	name = strings.TrimSpace(name)
	if p == nil || name == "" {
		return ParsedTitle{}
	}

	if cached, found := p.cache.Get(name); found {
		return cached
	}

	// identical filenames parsed concurrently by the worker pool share one parse
	v, _, _ := p.sf.Do(name, func() (any, error) {
		parsed := parseRelease(name)
		p.cache.Set(name, parsed, ttlcache.DefaultTTL)
		return parsed, nil
	})
	return v.(ParsedTitle)
}

func parseRelease(name string) ParsedTitle {
	release := rls.ParseString(name)
	parsed := ParsedTitle{
		Title:      release.Title,
		Subtitle:   release.Subtitle,
		Year:       release.Year,
		Series:     release.Series,
		Episode:    release.Episode,
		Version:    release.Version,
		Group:      release.Group,
		Resolution: release.Resolution,
		Source:     release.Source,
		Codec:      release.Codec,
		Container:  release.Container,
		Language:   release.Language,
	}
	if typ := releaseType(&release); typ != rls.Unknown {
		parsed.Type = typ.String()
	}
	return parsed
}
