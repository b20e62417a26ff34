package cachestore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"us-bars/internal/model"
)

// FileStore keeps one JSON file per key under dir: {dir}/{SYMBOL}_{tf}.json.
type FileStore struct {
	dir string
	log *slog.Logger
}

// NewFileStore creates dir if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("%w: create cache dir %s: %w", model.ErrStorage, dir, err)
	}
	return &FileStore{
		dir: dir,
		log: slog.Default().With("component", "filestore"),
	}, nil
}

// Path returns the file backing key.
func (s *FileStore) Path(key Key) string {
	return filepath.Join(s.dir, key.FileName())
}

func (s *FileStore) Read(_ context.Context, key Key) Record {
	path := s.Path(key)
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.log.Warn("cache read failed, treating as miss", "key", key.String(), "error", err)
		}
		return Record{}
	}
	rec, err := decodeRecord(data)
	if err != nil {
		s.log.Warn("corrupt cache record, treating as miss", "key", key.String(), "path", path, "error", err)
		return Record{}
	}
	return rec
}

// Write replaces the record atomically: temp file in the same dir, then rename.
func (s *FileStore) Write(_ context.Context, key Key, rec Record) error {
	data, err := encodeRecord(rec)
	if err != nil {
		return fmt.Errorf("%w: encode %s: %w", model.ErrStorage, key, err)
	}
	tmp, err := os.CreateTemp(s.dir, "."+key.String()+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: create temp for %s: %w", model.ErrStorage, key, err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		cleanup()
		return fmt.Errorf("%w: write %s: %w", model.ErrStorage, key, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		cleanup()
		return fmt.Errorf("%w: sync %s: %w", model.ErrStorage, key, err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("%w: close %s: %w", model.ErrStorage, key, err)
	}
	if err := os.Rename(tmpName, s.Path(key)); err != nil {
		cleanup()
		return fmt.Errorf("%w: rename %s: %w", model.ErrStorage, key, err)
	}
	s.log.Debug("cache written", "key", key.String(), "bars", len(rec.Bars))
	return nil
}

// Close is a no-op.
func (s *FileStore) Close() error {
	return nil
}
