// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package snapshot reads the scraper's torrent catalog, counter samples and
// the show catalog into pipeline records.
package snapshot

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/avast/retry-go"
	"github.com/rs/zerolog/log"

	"github.com/hiinaspace/nyaastats/internal/database"
	"github.com/hiinaspace/nyaastats/internal/models"
	"github.com/hiinaspace/nyaastats/pkg/hashutil"
	"github.com/hiinaspace/nyaastats/pkg/titles"
)

const (
	loadAttempts   = 3
	loadRetryDelay = 2 * time.Second
)

const torrentsQuery = `
SELECT infohash, filename, CAST(pubdate AS TEXT),
       title, season, episode, year,
       release_group, resolution, source, container, video_codec,
       trusted, remake, status, size_bytes
FROM torrents`

const statsQuery = `
SELECT infohash, CAST(timestamp AS TEXT), downloads
FROM stats`

// Snapshot is everything the pipeline reads from the scraper database.
type Snapshot struct {
	Torrents          []models.TorrentRecord
	Samples           []models.StatSample
	MalformedTorrents int
	MalformedSamples  int
}

// Loader reads a snapshot database. Torrents stored without a parsed title
// are run through parser.
type Loader struct {
	db     *database.DB
	parser *titles.Parser
}

func NewLoader(db *database.DB, parser *titles.Parser) *Loader {
	if parser == nil {
		parser = titles.NewParser()
	}
	return &Loader{db: db, parser: parser}
}

// Load reads torrents published at or after since (zero keeps all) and the
// samples of those torrents.
func (l *Loader) Load(ctx context.Context, since time.Time) (*Snapshot, error) {
	torrents, badTorrents, err := l.Torrents(ctx, since)
	if err != nil {
		return nil, err
	}

	known := make(map[string]struct{}, len(torrents))
	for _, t := range torrents {
		known[t.Infohash] = struct{}{}
	}

	samples, badSamples, err := l.Samples(ctx, func(hash string) bool {
		_, ok := known[hash]
		return ok
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Int("torrents", len(torrents)).
		Int("samples", len(samples)).
		Int("malformedTorrents", badTorrents).
		Int("malformedSamples", badSamples).
		Msg("loaded snapshot")

	return &Snapshot{
		Torrents:          torrents,
		Samples:           samples,
		MalformedTorrents: badTorrents,
		MalformedSamples:  badSamples,
	}, nil
}

type torrentRow struct {
	infohash  string
	filename  sql.NullString
	pubdate   sql.NullString
	title     sql.NullString
	season    sql.NullInt64
	episode   sql.NullInt64
	year      sql.NullInt64
	group     sql.NullString
	res       sql.NullString
	source    sql.NullString
	container sql.NullString
	codec     sql.NullString
	trusted   sql.NullBool
	remake    sql.NullBool
	status    sql.NullString
	size      sql.NullInt64
}

// Torrents reads the torrent catalog. Rows with an invalid infohash, a blank
// filename or an unparseable publish date are skipped and counted.
func (l *Loader) Torrents(ctx context.Context, since time.Time) ([]models.TorrentRecord, int, error) {
	rows, err := l.db.QueryContext(ctx, torrentsQuery)
	if err != nil {
		return nil, 0, fmt.Errorf("query torrents: %w", err)
	}
	defer rows.Close()

	var (
		out       []models.TorrentRecord
		malformed int
	)
	for rows.Next() {
		var r torrentRow
		if err := rows.Scan(&r.infohash, &r.filename, &r.pubdate,
			&r.title, &r.season, &r.episode, &r.year,
			&r.group, &r.res, &r.source, &r.container, &r.codec,
			&r.trusted, &r.remake, &r.status, &r.size); err != nil {
			return nil, 0, fmt.Errorf("scan torrent: %w", err)
		}

		rec, reason := l.toRecord(r)
		if reason != "" {
			malformed++
			log.Warn().Str("infohash", r.infohash).Str("reason", reason).Msg("skipping malformed torrent")
			continue
		}
		if !since.IsZero() && rec.PublishTime.Before(since) {
			continue
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate torrents: %w", err)
	}

	return out, malformed, nil
}

func (l *Loader) toRecord(r torrentRow) (models.TorrentRecord, string) {
	hash, ok := hashutil.Canonical(r.infohash)
	if !ok {
		return models.TorrentRecord{}, "invalid infohash"
	}
	filename := strings.TrimSpace(r.filename.String)
	if filename == "" {
		return models.TorrentRecord{}, "blank filename"
	}
	published, err := ParseTimestamp(r.pubdate.String)
	if err != nil {
		return models.TorrentRecord{}, err.Error()
	}

	rec := models.TorrentRecord{
		Infohash:    hash,
		Filename:    filename,
		PublishTime: published,
		Extra:       models.Extra{},
	}

	if title := strings.TrimSpace(r.title.String); title != "" {
		rec.ParsedTitle = title
		rec.ParsedSeason = storedNumber(r.season)
		rec.ParsedEpisode = storedNumber(r.episode)
		setString(rec.Extra, "group", r.group)
		setString(rec.Extra, "resolution", r.res)
		setString(rec.Extra, "container", r.container)
		if r.source.Valid && strings.TrimSpace(r.source.String) != "" {
			rec.Extra["source"] = models.StringValue(titles.NormalizeSource(r.source.String))
		}
		if r.codec.Valid && strings.TrimSpace(r.codec.String) != "" {
			rec.Extra["codec"] = models.StringValue(titles.JoinCodecs(strings.Fields(r.codec.String)))
		}
		if r.year.Valid && r.year.Int64 > 0 {
			rec.Extra["year"] = models.IntValue(r.year.Int64)
		}
	} else {
		parsed := l.parser.Parse(filename)
		rec.ParsedTitle = parsed.Title
		rec.ParsedSeason = parsed.Season()
		rec.ParsedEpisode = parsed.EpisodeNumber()
		extraFromParsed(rec.Extra, parsed)
	}

	if r.trusted.Valid {
		rec.Extra["trusted"] = models.BoolValue(r.trusted.Bool)
	}
	if r.remake.Valid {
		rec.Extra["remake"] = models.BoolValue(r.remake.Bool)
	}
	setString(rec.Extra, "status", r.status)
	if r.size.Valid {
		rec.Extra["size"] = models.IntValue(r.size.Int64)
	}

	return rec, ""
}

func extraFromParsed(extra models.Extra, p titles.ParsedTitle) {
	for key, value := range map[string]string{
		"type":       p.Type,
		"group":      p.Group,
		"resolution": p.Resolution,
		"source":     titles.NormalizeSource(p.Source),
		"container":  p.Container,
		"codec":      titles.JoinCodecs(p.Codec),
		"language":   strings.Join(p.Language, " "),
		"version":    p.Version,
		"subtitle":   p.Subtitle,
	} {
		if value != "" {
			extra[key] = models.StringValue(value)
		}
	}
	if p.Year > 0 {
		extra["year"] = models.IntValue(int64(p.Year))
	}
}

func setString(extra models.Extra, key string, v sql.NullString) {
	if s := strings.TrimSpace(v.String); v.Valid && s != "" {
		extra[key] = models.StringValue(s)
	}
}

// storedNumber keeps a stored 0, which the scraper writes for prologue
// episodes and specials. Only NULL and negative values are absent.
func storedNumber(v sql.NullInt64) *int {
	if !v.Valid || v.Int64 < 0 {
		return nil
	}
	n := int(v.Int64)
	return &n
}

// Samples reads counter samples for torrents accepted by keep. Rows with an
// unparseable timestamp are skipped and counted. Negative counters are
// passed through and left for delta computation to reject.
func (l *Loader) Samples(ctx context.Context, keep func(infohash string) bool) ([]models.StatSample, int, error) {
	rows, err := l.db.QueryContext(ctx, statsQuery)
	if err != nil {
		return nil, 0, fmt.Errorf("query stats: %w", err)
	}
	defer rows.Close()

	var (
		out       []models.StatSample
		malformed int
	)
	for rows.Next() {
		var (
			rawHash   string
			timestamp sql.NullString
			downloads sql.NullInt64
		)
		if err := rows.Scan(&rawHash, &timestamp, &downloads); err != nil {
			return nil, 0, fmt.Errorf("scan stats: %w", err)
		}

		hash := hashutil.Normalize(rawHash)
		if keep != nil && !keep(hash) {
			continue
		}

		at, err := ParseTimestamp(timestamp.String)
		if err != nil || !downloads.Valid {
			malformed++
			log.Warn().Str("infohash", hash).Str("timestamp", timestamp.String).Msg("skipping malformed stats sample")
			continue
		}

		out = append(out, models.StatSample{Infohash: hash, SampleTime: at, CumulativeDownloads: downloads.Int64})
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate stats: %w", err)
	}

	return out, malformed, nil
}

// LoadFile opens the database at path read-only and loads it. A load that
// fails because the scraper holds a lock is retried.
func LoadFile(ctx context.Context, path string, parser *titles.Parser, since time.Time) (*Snapshot, error) {
	var snap *Snapshot

	err := retry.Do(
		func() error {
			db, err := database.Open(path)
			if err != nil {
				return err
			}
			defer db.Close()

			snap, err = NewLoader(db, parser).Load(ctx, since)
			return err
		},
		retry.Context(ctx),
		retry.Attempts(loadAttempts),
		retry.Delay(loadRetryDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(database.IsBusy),
		retry.OnRetry(func(n uint, err error) {
			log.Warn().Err(err).Uint("attempt", n+1).Str("path", path).Msg("snapshot database busy, retrying")
		}),
	)
	if err != nil {
		return nil, err
	}

	return snap, nil
}
