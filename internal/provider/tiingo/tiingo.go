// Package tiingo fetches end-of-day and IEX intraday bars from the Tiingo REST API.
package tiingo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"us-bars/internal/model"
	"us-bars/internal/provider"
)

const (
	defaultBaseURL = "https://api.tiingo.com"
	dailyPath      = "/tiingo/daily/{ticker}/prices"
	intradayPath   = "/iex/{ticker}/prices"

	// Tiingo answers some over-quota requests with 200 and a plain-text message.
	allocationMarker = "request allocation"
)

// Client implements provider.DataProvider for Tiingo.
type Client struct {
	http  *resty.Client
	token string
	now   func() time.Time
	log   *slog.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithBaseURL points the client at another host (tests, proxies).
func WithBaseURL(u string) Option {
	return func(c *Client) { c.http.SetBaseURL(u) }
}

// WithClock overrides time.Now for lookback computation.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// New creates a Tiingo client authenticated with token.
func New(token string, opts ...Option) (*Client, error) {
	if token == "" {
		return nil, fmt.Errorf("tiingo: API token is empty")
	}
	c := &Client{
		http:  provider.NewHTTPClient(defaultBaseURL),
		token: token,
		now:   time.Now,
		log:   slog.Default().With("provider", "tiingo"),
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// GetName returns provider name
func (c *Client) GetName() string {
	return "Tiingo"
}

// Close is a no-op; the HTTP client holds no resources that need releasing.
func (c *Client) Close() error {
	return nil
}

// priceRow is one row of either price endpoint.
type priceRow struct {
	Date   string                  `json:"date"`
	Open   float64                 `json:"open"`
	High   float64                 `json:"high"`
	Low    float64                 `json:"low"`
	Close  float64                 `json:"close"`
	Volume *provider.FlexibleInt64 `json:"volume"`
}

// FetchDaily requests end-of-day prices from since (or the 5-year lookback).
func (c *Client) FetchDaily(ctx context.Context, symbol string, since *time.Time) ([]model.Bar, error) {
	start := provider.StartDate(since, c.now(), false)
	rows, err := c.get(ctx, dailyPath, symbol, map[string]string{
		"startDate": start.Format(model.DateLayout),
	})
	if err != nil {
		return nil, err
	}
	return toBars(rows, model.DateLayout)
}

// FetchIntraday requests 4-hour IEX bars, resampled by Tiingo, from since (or the 30-day lookback).
func (c *Client) FetchIntraday(ctx context.Context, symbol string, since *time.Time) ([]model.Bar, error) {
	start := provider.StartDate(since, c.now(), true)
	rows, err := c.get(ctx, intradayPath, symbol, map[string]string{
		"startDate":    start.Format(model.DateLayout),
		"resampleFreq": "4hour",
		"columns":      "open,high,low,close,volume",
	})
	if err != nil {
		return nil, err
	}
	return toBars(rows, model.IntradayLayout)
}

// get returns (nil, nil) when Tiingo rate-limits the request.
func (c *Client) get(ctx context.Context, path, symbol string, query map[string]string) ([]priceRow, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("ticker", strings.ToLower(symbol)).
		SetQueryParams(query).
		SetQueryParam("token", c.token).
		Get(path)
	if err != nil {
		return nil, fmt.Errorf("%w: tiingo %s: %w", model.ErrUpstream, symbol, err)
	}

	body := resp.Body()
	if resp.StatusCode() == http.StatusTooManyRequests || isAllocationMessage(body) {
		c.log.Warn("rate limited", "symbol", symbol, "status", resp.StatusCode())
		return nil, nil
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("%w: tiingo %s: status %d: %s", model.ErrUpstream, symbol, resp.StatusCode(), snippet(body))
	}

	var rows []priceRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("%w: tiingo %s: parse JSON: %w", model.ErrUpstream, symbol, err)
	}
	return rows, nil
}

func isAllocationMessage(body []byte) bool {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] == '[' {
		return false
	}
	return bytes.Contains(bytes.ToLower(trimmed), []byte(allocationMarker))
}

func snippet(body []byte) string {
	const max = 200
	if len(body) > max {
		return string(body[:max]) + "..."
	}
	return string(body)
}

// toBars normalizes Tiingo dates ("2024-01-02T00:00:00.000Z") to layout.
func toBars(rows []priceRow, layout string) ([]model.Bar, error) {
	bars := make([]model.Bar, 0, len(rows))
	for i, r := range rows {
		ts, err := time.Parse(time.RFC3339, r.Date)
		if err != nil {
			return nil, fmt.Errorf("%w: tiingo row %d: date %q: %w", model.ErrUpstream, i, r.Date, err)
		}
		bars = append(bars, model.Bar{
			Time:   ts.UTC().Format(layout),
			Open:   r.Open,
			High:   r.High,
			Low:    r.Low,
			Close:  r.Close,
			Volume: r.Volume.Volume(),
		})
	}
	return bars, nil
}
