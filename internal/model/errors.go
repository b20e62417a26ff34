package model

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrInvalidSymbol is returned before any I/O for malformed or over-long symbols.
	ErrInvalidSymbol = errors.New("invalid symbol")

	// ErrInvalidTimeframe is returned for timeframes outside 1d, 4h, 1w, 1m.
	ErrInvalidTimeframe = errors.New("invalid timeframe")

	// ErrRateLimited is matched by *RateLimitedError while a backoff window is active.
	ErrRateLimited = errors.New("rate limited")

	// ErrUpstream wraps non rate-limit failures from the price provider.
	ErrUpstream = errors.New("upstream error")

	// ErrStorage wraps cache write failures.
	ErrStorage = errors.New("storage error")
)

// RateLimitedError carries the end of the backoff window. Callers should not
// retry before Until.
type RateLimitedError struct {
	Until time.Time
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("rate limited: retry after %s", e.Until.UTC().Format(time.RFC3339))
}

// Is makes errors.Is(err, ErrRateLimited) true.
func (e *RateLimitedError) Is(target error) bool {
	return target == ErrRateLimited
}

// RetryAfter returns the wait until the backoff window closes, never negative.
func (e *RateLimitedError) RetryAfter(now time.Time) time.Duration {
	if d := e.Until.Sub(now); d > 0 {
		return d
	}
	return 0
}
