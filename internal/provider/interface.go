package provider

import (
	"context"
	"time"

	"us-bars/internal/model"
)

// Fetcher loads raw bars from an upstream price provider.
//
// since == nil means full available history (bounded by the lookback window);
// otherwise only bars on or after since are returned. A rate-limited upstream
// yields an empty slice and a nil error. Any other failure wraps model.ErrUpstream.
type Fetcher interface {
	FetchDaily(ctx context.Context, symbol string, since *time.Time) ([]model.Bar, error)
	FetchIntraday(ctx context.Context, symbol string, since *time.Time) ([]model.Bar, error)
}

// DataProvider is the abstraction used by the application when accessing a data source.
// Implementations are responsible for their own resource cleanup.
type DataProvider interface {
	Fetcher
	GetName() string
	Close() error
}
