package polygon

import (
	"time"

	"us-bars/internal/model"
	"us-bars/internal/provider"
)

// BarRaw is raw bar for JSON with FlexibleInt64 for Volume
type BarRaw struct {
	Timestamp int64                   `json:"t"` // Unix timestamp in milliseconds
	Open      float64                 `json:"o"`
	High      float64                 `json:"h"`
	Low       float64                 `json:"l"`
	Close     float64                 `json:"c"`
	Volume    *provider.FlexibleInt64 `json:"v"`
	VWAP      float64                 `json:"vw,omitempty"`
}

// ToBar converts BarRaw to model.Bar. Daily bars are keyed by their exchange-local
// (New York) calendar date, intraday bars by UTC timestamp.
func (br BarRaw) ToBar(intraday bool) model.Bar {
	ts := time.UnixMilli(br.Timestamp)
	var id string
	if intraday {
		id = ts.UTC().Format(model.IntradayLayout)
	} else {
		id = ts.In(marketLocation).Format(model.DateLayout)
	}
	return model.Bar{
		Time:   id,
		Open:   br.Open,
		High:   br.High,
		Low:    br.Low,
		Close:  br.Close,
		Volume: br.Volume.Volume(),
	}
}

// AggregatesResponse is Polygon API response with next_url
type AggregatesResponse struct {
	Ticker       string   `json:"ticker"`
	QueryCount   int      `json:"queryCount"`
	ResultsCount int      `json:"resultsCount"`
	Adjusted     bool     `json:"adjusted"`
	Results      []BarRaw `json:"results"`
	Status       string   `json:"status"`
	RequestID    string   `json:"request_id"`
	Count        int      `json:"count"`
	NextURL      string   `json:"next_url,omitempty"`
	Error        string   `json:"error,omitempty"`
}
