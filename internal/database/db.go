// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package database opens the tracker scraper's SQLite snapshot.
//
// The pipeline only ever reads the snapshot. Open sets query_only on every
// connection so a stray write fails instead of touching the scraper's file.
// Create exists for fixtures and seeding and applies the scraper schema.
package database

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/autobrr/autobrr/pkg/ttlcache"
	"github.com/rs/zerolog/log"
	"modernc.org/sqlite"
	sqlitelib "modernc.org/sqlite/lib"
)

//go:embed schema.sql
var schemaSQL string

const (
	defaultBusyTimeoutMillis = 5000
	connectionSetupTimeout   = 10 * time.Second
)

// ErrNotFound is returned by Open when the snapshot file does not exist.
var ErrNotFound = errors.New("snapshot database not found")

type DB struct {
	conn     *sql.DB
	stmts    *ttlcache.Cache[string, *sql.Stmt]
	path     string
	readOnly bool

	closeOnce sync.Once
	closeErr  error
}

// Open opens an existing snapshot for reading.
func Open(databasePath string) (*DB, error) {
	if _, err := os.Stat(databasePath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, databasePath)
		}
		return nil, fmt.Errorf("stat database %s: %w", databasePath, err)
	}

	log.Debug().Msgf("Opening snapshot database at: %s", databasePath)
	return open(databasePath, true)
}

// Create opens databasePath for writing, creating the file and the scraper
// schema when missing.
func Create(databasePath string) (*DB, error) {
	dir := filepath.Dir(databasePath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory %s: %w", dir, err)
	}

	db, err := open(databasePath, false)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), connectionSetupTimeout)
	defer cancel()
	if _, err := db.conn.ExecContext(ctx, schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return db, nil
}

func open(databasePath string, readOnly bool) (*DB, error) {
	conn, err := sql.Open("sqlite", dsn(databasePath, readOnly))
	if err != nil {
		return nil, fmt.Errorf("failed to open database at %s: %w", databasePath, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), connectionSetupTimeout)
	defer cancel()
	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open database at %s: %w", databasePath, err)
	}

	// create ttlcache for prepared statements with 5 minute TTL and deallocation func
	stmtOpts := ttlcache.Options[string, *sql.Stmt]{}.SetDefaultTTL(5 * time.Minute).
		SetDeallocationFunc(func(k string, s *sql.Stmt, _ ttlcache.DeallocationReason) {
			if s != nil {
				_ = s.Close()
			}
		})

	return &DB{
		conn:     conn,
		stmts:    ttlcache.New(stmtOpts),
		path:     databasePath,
		readOnly: readOnly,
	}, nil
}

func dsn(databasePath string, readOnly bool) string {
	d := fmt.Sprintf("file:%s?_pragma=busy_timeout(%d)", databasePath, defaultBusyTimeoutMillis)
	if readOnly {
		d += "&_pragma=query_only(1)"
	}
	return d
}

// Path returns the file the database was opened from.
func (db *DB) Path() string {
	return db.path
}

// getStmt returns a prepared statement for the given query, preparing and
// caching it if necessary.
func (db *DB) getStmt(ctx context.Context, query string) (*sql.Stmt, error) {
	if s, found := db.stmts.Get(query); found && s != nil {
		return s, nil
	}

	s, err := db.conn.PrepareContext(ctx, query)
	if err != nil {
		return nil, err
	}

	db.stmts.Set(query, s, ttlcache.DefaultTTL)
	return s, nil
}

// QueryContext runs a read query through the prepared statement cache.
func (db *DB) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	stmt, err := db.getStmt(ctx, query)
	if err != nil {
		return db.conn.QueryContext(ctx, query, args...)
	}
	return stmt.QueryContext(ctx, args...)
}

// ExecContext runs a write. It fails on databases opened with Open.
func (db *DB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	if db.readOnly {
		return nil, fmt.Errorf("database %s is opened read-only", db.path)
	}
	return db.conn.ExecContext(ctx, query, args...)
}

func (db *DB) Close() error {
	db.closeOnce.Do(func() {
		// deallocation of cached statements is handled by ttlcache
		db.stmts.Close()
		db.closeErr = db.conn.Close()
	})
	return db.closeErr
}

// IsBusy reports whether err is SQLite refusing access because another
// connection holds a lock, as happens while the scraper is writing.
func IsBusy(err error) bool {
	var sqlErr *sqlite.Error
	if !errors.As(err, &sqlErr) {
		return false
	}
	switch sqlErr.Code() & 0xff {
	case sqlitelib.SQLITE_BUSY, sqlitelib.SQLITE_LOCKED:
		return true
	}
	return false
}
