// Package cachestore persists one Record per (symbol, timeframe) pair.
//
// Reads never fail: a missing or corrupt record is returned as an empty Record
// (cache miss). Writes replace the whole record and wrap failures in model.ErrStorage.
package cachestore

import (
	"context"
	"time"

	"us-bars/internal/model"
)

// StatusRateLimited marks a backoff placeholder record.
const StatusRateLimited = "rate_limited"

// Store is implemented by FileStore, SQLiteStore and MemoryStore.
// Implementations must be safe for concurrent use.
type Store interface {
	Read(ctx context.Context, key Key) Record
	Write(ctx context.Context, key Key, rec Record) error
	Close() error
}

// Meta describes the last fetch of a series. A nil *Meta is the Empty state.
type Meta struct {
	LastFetchAt      time.Time  `json:"last_fetch_at"`
	LastBarDate      *string    `json:"last_bar_date"`
	RateLimitedUntil *time.Time `json:"rate_limited_until,omitempty"`
	Status           string     `json:"status,omitempty"`
}

// Record is the persisted unit: metadata plus bars in ascending time order.
type Record struct {
	Meta *Meta       `json:"meta"`
	Bars []model.Bar `json:"bars"`
}

// Empty reports whether no fetch has succeeded (or the record was unreadable).
func (r Record) Empty() bool {
	return r.Meta == nil
}

// RateLimited reports whether r is a backoff placeholder.
func (r Record) RateLimited() bool {
	return r.Meta != nil && r.Meta.Status == StatusRateLimited && r.Meta.RateLimitedUntil != nil
}

// FreshRecord builds a record for bars fetched at now. LastBarDate follows the last bar.
func FreshRecord(now time.Time, bars []model.Bar) Record {
	meta := &Meta{LastFetchAt: now.UTC()}
	if len(bars) > 0 {
		last := bars[len(bars)-1].Time
		meta.LastBarDate = &last
	}
	return Record{Meta: meta, Bars: bars}
}

// RateLimitedRecord builds a placeholder that blocks upstream calls until until.
func RateLimitedRecord(now, until time.Time) Record {
	u := until.UTC()
	return Record{
		Meta: &Meta{
			LastFetchAt:      now.UTC(),
			RateLimitedUntil: &u,
			Status:           StatusRateLimited,
		},
		Bars: []model.Bar{},
	}
}
