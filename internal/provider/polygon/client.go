// Package polygon fetches daily and 4-hour aggregates from the Polygon REST API.
package polygon

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"
	_ "time/tzdata"

	"github.com/go-resty/resty/v2"

	"us-bars/internal/model"
	"us-bars/internal/provider"
)

const (
	defaultBaseURL = "https://api.polygon.io"
	aggregatesPath = "/v2/aggs/ticker/{ticker}/range/{multiplier}/{timespan}/{from}/{to}"

	// Max 50k results per request; 5 years of daily or 30 days of 4-hour bars fit in one page.
	maxLimit = 50000
)

var marketLocation = mustLoadLocation("America/New_York")

func mustLoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Client implements provider.DataProvider for Polygon aggregates.
type Client struct {
	http *resty.Client
	keys *keyRing
	now  func() time.Time
	log  *slog.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithBaseURL points the client at another host (tests, proxies).
func WithBaseURL(u string) Option {
	return func(c *Client) { c.http.SetBaseURL(u) }
}

// WithKeyInterval paces each API key to one request per d. Zero disables pacing.
func WithKeyInterval(d time.Duration) Option {
	return func(c *Client) { c.keys.interval = max(d, 0) }
}

// WithClock overrides time.Now for the request range.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// New creates a Polygon client rotating over apiKeys.
func New(apiKeys []string, opts ...Option) (*Client, error) {
	ring, err := newKeyRing(apiKeys)
	if err != nil {
		return nil, err
	}
	c := &Client{
		http: provider.NewHTTPClient(defaultBaseURL),
		keys: ring,
		now:  time.Now,
		log:  slog.Default().With("provider", "polygon"),
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// GetName returns provider name
func (c *Client) GetName() string {
	return "Polygon"
}

// Close closes connections
func (c *Client) Close() error {
	return nil
}

// Keys returns how many API keys the client rotates over.
func (c *Client) Keys() int {
	return c.keys.size()
}

// FetchDaily requests 1-day aggregates from since (or the 5-year lookback) through today.
func (c *Client) FetchDaily(ctx context.Context, symbol string, since *time.Time) ([]model.Bar, error) {
	return c.aggregates(ctx, symbol, 1, "day", provider.StartDate(since, c.now(), false), false)
}

// FetchIntraday requests 4-hour aggregates from since (or the 30-day lookback) through today.
func (c *Client) FetchIntraday(ctx context.Context, symbol string, since *time.Time) ([]model.Bar, error) {
	return c.aggregates(ctx, symbol, 4, "hour", provider.StartDate(since, c.now(), true), true)
}

// aggregates runs one GET request. On 429 it returns (nil, nil) so the caller
// falls back to its cache instead of retrying.
func (c *Client) aggregates(ctx context.Context, symbol string, multiplier int, timespan string, from time.Time, intraday bool) ([]model.Bar, error) {
	to := c.now().UTC()
	key, err := c.keys.take(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: polygon %s: wait for API key: %w", model.ErrUpstream, symbol, err)
	}
	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParams(map[string]string{
			"ticker":     symbol,
			"multiplier": strconv.Itoa(multiplier),
			"timespan":   timespan,
			"from":       from.Format(model.DateLayout),
			"to":         to.Format(model.DateLayout),
		}).
		SetQueryParams(map[string]string{
			"adjusted": "true",
			"sort":     "asc",
			"limit":    strconv.Itoa(maxLimit),
			"apiKey":   key,
		}).
		Get(aggregatesPath)
	if err != nil {
		return nil, fmt.Errorf("%w: polygon %s: %w", model.ErrUpstream, symbol, err)
	}

	if resp.StatusCode() == http.StatusTooManyRequests {
		c.log.Warn("rate limited", "symbol", symbol, "timespan", timespan, "key", keyPrefix(key))
		return nil, nil
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("%w: polygon %s: API status %d: %s", model.ErrUpstream, symbol, resp.StatusCode(), string(resp.Body()))
	}

	var result AggregatesResponse
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return nil, fmt.Errorf("%w: polygon %s: parse JSON: %w", model.ErrUpstream, symbol, err)
	}
	// DELAYED is returned on plans without real-time data; the bars are still valid.
	if result.Status != "OK" && result.Status != "DELAYED" {
		return nil, fmt.Errorf("%w: polygon %s: API status not OK: %s %s", model.ErrUpstream, symbol, result.Status, result.Error)
	}

	bars := make([]model.Bar, 0, len(result.Results))
	for _, raw := range result.Results {
		bars = append(bars, raw.ToBar(intraday))
	}
	c.log.Debug("fetched aggregates", "symbol", symbol, "timespan", timespan, "bars", len(bars), "key", keyPrefix(key))
	return bars, nil
}
