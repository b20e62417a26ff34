// Package barcache serves bar windows from the cache store, refreshing them
// from the upstream provider with incremental (delta) fetches.
//
// Per (symbol, timeframe) request:
//
//	validate -> load -> rate-limit gate -> first-time fetch | freshness check -> delta fetch -> window
//
// First-time failures are user visible and leave a backoff placeholder so a
// never-cached symbol cannot trigger an upstream retry storm. Delta failures are
// absorbed: the request is served from the existing (possibly stale) cache.
package barcache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"us-bars/internal/cachestore"
	"us-bars/internal/model"
	"us-bars/internal/provider"
	"us-bars/internal/resample"
)

const (
	// MaxBars caps every cached series; the oldest bars are evicted first.
	MaxBars = 1500

	// RateLimitBackoff is how long a placeholder blocks upstream calls.
	RateLimitBackoff = 15 * time.Minute
)

// Result is the window returned to the HTTP layer.
type Result struct {
	Symbol string      `json:"symbol"`
	Data   []model.Bar `json:"data"`
}

// Manager is safe for concurrent use. Concurrent requests for the same key
// share one load/refresh.
type Manager struct {
	store   cachestore.Store
	fetcher provider.Fetcher
	now     func() time.Time
	log     *slog.Logger
	group   singleflight.Group
}

// Option customizes a Manager.
type Option func(*Manager)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithLogger sets the manager's logger.
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) { m.log = l }
}

// New creates a Manager reading and writing store and fetching from fetcher.
func New(store cachestore.Store, fetcher provider.Fetcher, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		fetcher: fetcher,
		now:     time.Now,
		log:     slog.Default().With("component", "barcache"),
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// GetBars returns the trailing min(days, available) bars of symbol at timeframe tf.
// days < 1 is treated as 1. Weekly and monthly bars are resampled from an
// inflated daily window (days*7, days*30).
func (m *Manager) GetBars(ctx context.Context, symbol string, days int, tf model.Timeframe) (*Result, error) {
	if err := model.ValidateSymbol(symbol); err != nil {
		return nil, err
	}
	days = max(days, 1)
	symbol = strings.ToUpper(symbol)

	var bars []model.Bar
	switch tf {
	case model.Weekly, model.Monthly:
		daily, err := m.GetBars(ctx, symbol, days*tf.DailySpan(), model.Daily)
		if err != nil {
			return nil, err
		}
		bars = resample.ByTimeframe(daily.Data, tf)
	case model.Daily, model.FourHour:
		var err error
		bars, err = m.load(ctx, symbol, tf)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: %q", model.ErrInvalidTimeframe, tf)
	}

	return &Result{Symbol: symbol, Data: tail(bars, days)}, nil
}

// load collapses concurrent refreshes of one key into a single call.
func (m *Manager) load(ctx context.Context, symbol string, tf model.Timeframe) ([]model.Bar, error) {
	key, err := cachestore.NewKey(symbol, tf)
	if err != nil {
		return nil, err
	}
	// The shared refresh must not be cancelled by whichever caller started it.
	shared := context.WithoutCancel(ctx)
	v, err, dup := m.group.Do(key.String(), func() (any, error) {
		return m.refresh(shared, key)
	})
	if dup {
		m.log.Debug("joined in-flight refresh", "key", key.String())
	}
	if err != nil {
		return nil, err
	}
	return v.([]model.Bar), nil
}

// refresh runs the state machine for one key and returns the full cached series.
func (m *Manager) refresh(ctx context.Context, key cachestore.Key) ([]model.Bar, error) {
	rec := m.store.Read(ctx, key)
	now := m.now()

	if rec.RateLimited() {
		until := *rec.Meta.RateLimitedUntil
		if now.Before(until) {
			return nil, &model.RateLimitedError{Until: until}
		}
		m.log.Info("backoff window elapsed, retrying upstream", "key", key.String(), "until", until)
		rec = cachestore.Record{}
	}

	if rec.Empty() {
		return m.fetchFull(ctx, key, now)
	}

	if isFresh(rec, now) {
		return rec.Bars, nil
	}
	return m.fetchDelta(ctx, key, rec, now), nil
}

// fetchFull loads the bounded full history for a key with no usable cache.
func (m *Manager) fetchFull(ctx context.Context, key cachestore.Key, now time.Time) ([]model.Bar, error) {
	bars, err := m.fetch(ctx, key, nil)
	if err != nil {
		m.log.Warn("first fetch failed, writing backoff placeholder", "key", key.String(), "error", err)
		if werr := m.writePlaceholder(ctx, key, now); werr != nil {
			return nil, errors.Join(err, werr)
		}
		return nil, err
	}
	if len(bars) == 0 {
		m.log.Warn("first fetch returned no bars, writing backoff placeholder", "key", key.String())
		rlErr := &model.RateLimitedError{Until: now.Add(RateLimitBackoff)}
		if werr := m.writePlaceholder(ctx, key, now); werr != nil {
			return nil, errors.Join(rlErr, werr)
		}
		return nil, rlErr
	}

	bars = capBars(mergeBars(nil, bars))
	if err := m.store.Write(ctx, key, cachestore.FreshRecord(now, bars)); err != nil {
		return nil, err
	}
	m.log.Info("cached full history", "key", key.String(), "bars", len(bars))
	return bars, nil
}

// fetchDelta requests bars after the last cached one and merges them. It never
// fails: upstream or storage errors leave the existing cache in place.
func (m *Manager) fetchDelta(ctx context.Context, key cachestore.Key, rec cachestore.Record, now time.Time) []model.Bar {
	var since *time.Time
	if rec.Meta.LastBarDate != nil {
		since = dayAfter(*rec.Meta.LastBarDate)
	}

	delta, err := m.fetch(ctx, key, since)
	if err != nil {
		m.log.Warn("delta refresh failed, serving cached bars", "key", key.String(), "error", err)
		return rec.Bars
	}
	if len(delta) == 0 {
		return rec.Bars
	}

	merged := capBars(mergeBars(rec.Bars, delta))
	if err := m.store.Write(ctx, key, cachestore.FreshRecord(now, merged)); err != nil {
		m.log.Warn("could not persist delta, serving merged bars", "key", key.String(), "error", err)
		return merged
	}
	m.log.Debug("merged delta", "key", key.String(), "fetched", len(delta), "bars", len(merged))
	return merged
}

func (m *Manager) fetch(ctx context.Context, key cachestore.Key, since *time.Time) ([]model.Bar, error) {
	var (
		bars []model.Bar
		err  error
	)
	if key.Timeframe.Intraday() {
		bars, err = m.fetcher.FetchIntraday(ctx, key.Symbol, since)
	} else {
		bars, err = m.fetcher.FetchDaily(ctx, key.Symbol, since)
	}
	if err != nil && !errors.Is(err, model.ErrUpstream) {
		err = fmt.Errorf("%w: %w", model.ErrUpstream, err)
	}
	return bars, err
}

func (m *Manager) writePlaceholder(ctx context.Context, key cachestore.Key, now time.Time) error {
	return m.store.Write(ctx, key, cachestore.RateLimitedRecord(now, now.Add(RateLimitBackoff)))
}

// isFresh reports whether the newest cached bar is from today (UTC) or later.
// Identifiers compare as strings, so "2024-01-02T14:00:00Z" >= "2024-01-02".
func isFresh(rec cachestore.Record, now time.Time) bool {
	if rec.Meta.LastBarDate == nil {
		return false
	}
	return *rec.Meta.LastBarDate >= now.UTC().Format(model.DateLayout)
}

// dayAfter parses the date part of a bar identifier. Unparsable identifiers
// yield nil, which requests full history.
func dayAfter(id string) *time.Time {
	if len(id) < len(model.DateLayout) {
		return nil
	}
	day, err := time.Parse(model.DateLayout, id[:len(model.DateLayout)])
	if err != nil {
		return nil
	}
	next := day.AddDate(0, 0, 1)
	return &next
}

// mergeBars appends delta bars whose time is not already present, in provider
// order. The result is re-sorted only if the provider returned bars out of order.
func mergeBars(existing, delta []model.Bar) []model.Bar {
	seen := make(map[string]struct{}, len(existing)+len(delta))
	out := make([]model.Bar, 0, len(existing)+len(delta))
	for _, b := range existing {
		seen[b.Time] = struct{}{}
		out = append(out, b)
	}
	for _, b := range delta {
		if _, dup := seen[b.Time]; dup {
			continue
		}
		seen[b.Time] = struct{}{}
		out = append(out, b)
	}
	cmp := func(a, b model.Bar) int { return strings.Compare(a.Time, b.Time) }
	if !slices.IsSortedFunc(out, cmp) {
		slices.SortStableFunc(out, cmp)
	}
	return out
}

// capBars keeps the newest MaxBars bars.
func capBars(bars []model.Bar) []model.Bar {
	if len(bars) > MaxBars {
		return bars[len(bars)-MaxBars:]
	}
	return bars
}

// tail copies the trailing n bars so callers never alias the cached series.
func tail(bars []model.Bar, n int) []model.Bar {
	n = min(n, len(bars))
	out := make([]model.Bar, n)
	copy(out, bars[len(bars)-n:])
	return out
}
