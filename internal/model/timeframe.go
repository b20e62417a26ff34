package model

import (
	"fmt"
	"strings"
)

// Timeframe is the closed set of bar granularities served by the proxy.
type Timeframe string

const (
	Daily    Timeframe = "1d"
	FourHour Timeframe = "4h"
	Weekly   Timeframe = "1w"
	Monthly  Timeframe = "1m"
)

// Timeframes lists every supported timeframe.
var Timeframes = []Timeframe{Daily, FourHour, Weekly, Monthly}

// ParseTimeframe normalizes user input ("1D", "daily", "4hour", "1mo", ...) to a Timeframe.
// Empty input means Daily.
func ParseTimeframe(s string) (Timeframe, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "1d", "d", "day", "daily", "1day":
		return Daily, nil
	case "4h", "4hour", "4hours", "240", "240m", "240min":
		return FourHour, nil
	case "1w", "w", "wk", "1wk", "week", "weekly", "1week":
		return Weekly, nil
	case "1m", "m", "1mo", "mo", "month", "monthly", "1month":
		return Monthly, nil
	default:
		return "", fmt.Errorf("%w: %q (use 1d, 4h, 1w, 1m)", ErrInvalidTimeframe, s)
	}
}

// Derived reports whether bars of this timeframe are resampled from daily bars
// rather than fetched and cached directly.
func (t Timeframe) Derived() bool {
	return t == Weekly || t == Monthly
}

// DailySpan is the number of daily bars one bar of a derived timeframe needs.
func (t Timeframe) DailySpan() int {
	switch t {
	case Weekly:
		return 7
	case Monthly:
		return 30
	default:
		return 1
	}
}

// Intraday reports whether bars use timestamp identifiers.
func (t Timeframe) Intraday() bool {
	return t == FourHour
}

func (t Timeframe) String() string { return string(t) }
