package provider

import "time"

// Full-history bounds used when since is nil.
const (
	DailyLookbackYears   = 5
	IntradayLookbackDays = 30
)

// StartDate returns the first calendar day to request: since when set, otherwise
// now minus the lookback window for the bar kind.
func StartDate(since *time.Time, now time.Time, intraday bool) time.Time {
	if since != nil {
		s := since.UTC()
		return time.Date(s.Year(), s.Month(), s.Day(), 0, 0, 0, 0, time.UTC)
	}
	n := now.UTC()
	today := time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, time.UTC)
	if intraday {
		return today.AddDate(0, 0, -IntradayLookbackDays)
	}
	return today.AddDate(-DailyLookbackYears, 0, 0)
}
