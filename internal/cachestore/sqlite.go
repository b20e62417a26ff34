package cachestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"us-bars/internal/model"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS cache_records (
	cache_key  TEXT PRIMARY KEY,
	symbol     TEXT NOT NULL,
	timeframe  TEXT NOT NULL,
	record     TEXT NOT NULL,
	updated_at TIMESTAMP NOT NULL
)`

// SQLiteStore keeps one row per key in a single SQLite file.
type SQLiteStore struct {
	db  *sql.DB
	log *slog.Logger
}

// NewSQLiteStore opens (or creates) the database at path.
func NewSQLiteStore(ctx context.Context, path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("%w: open sqlite %s: %w", model.ErrStorage, path, err)
	}
	// One writer keeps SQLite from returning SQLITE_BUSY under concurrent refreshes.
	db.SetMaxOpenConns(1)
	db.SetConnMaxIdleTime(5 * time.Minute)

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: create schema: %w", model.ErrStorage, err)
	}
	return &SQLiteStore{
		db:  db,
		log: slog.Default().With("component", "sqlitestore"),
	}, nil
}

func (s *SQLiteStore) Read(ctx context.Context, key Key) Record {
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT record FROM cache_records WHERE cache_key = ?`, key.String()).Scan(&data)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			s.log.Warn("cache read failed, treating as miss", "key", key.String(), "error", err)
		}
		return Record{}
	}
	rec, err := decodeRecord([]byte(data))
	if err != nil {
		s.log.Warn("corrupt cache record, treating as miss", "key", key.String(), "error", err)
		return Record{}
	}
	return rec
}

func (s *SQLiteStore) Write(ctx context.Context, key Key, rec Record) error {
	data, err := encodeRecord(rec)
	if err != nil {
		return fmt.Errorf("%w: encode %s: %w", model.ErrStorage, key, err)
	}
	const q = `
		INSERT INTO cache_records (cache_key, symbol, timeframe, record, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(cache_key) DO UPDATE SET record = excluded.record, updated_at = excluded.updated_at
	`
	if _, err := s.db.ExecContext(ctx, q, key.String(), key.Symbol, string(key.Timeframe), string(data), time.Now().UTC()); err != nil {
		return fmt.Errorf("%w: upsert %s: %w", model.ErrStorage, key, err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
