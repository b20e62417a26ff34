package cachestore

import (
	"context"
	"fmt"
	"sync"

	"us-bars/internal/model"
)

// MemoryStore keeps encoded records in a map. Records are copied through the
// JSON codec so callers never share slices with the store.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string][]byte
	writes  int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string][]byte)}
}

func (m *MemoryStore) Read(_ context.Context, key Key) Record {
	m.mu.RLock()
	data, ok := m.records[key.String()]
	m.mu.RUnlock()
	if !ok {
		return Record{}
	}
	rec, err := decodeRecord(data)
	if err != nil {
		return Record{}
	}
	return rec
}

func (m *MemoryStore) Write(_ context.Context, key Key, rec Record) error {
	data, err := encodeRecord(rec)
	if err != nil {
		return fmt.Errorf("%w: encode %s: %w", model.ErrStorage, key, err)
	}
	m.mu.Lock()
	m.records[key.String()] = data
	m.writes++
	m.mu.Unlock()
	return nil
}

// Writes returns how many writes the store has accepted.
func (m *MemoryStore) Writes() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.writes
}

func (m *MemoryStore) Close() error {
	return nil
}
