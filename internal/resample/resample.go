// Package resample aggregates daily bars into weekly or monthly bars.
package resample

import (
	"slices"
	"time"

	"us-bars/internal/model"
)

// BucketFunc maps a bar date to the first day of its bucket.
type BucketFunc func(day time.Time) time.Time

// WeekStart returns the Monday of day's ISO week.
func WeekStart(day time.Time) time.Time {
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

// MonthStart returns the first calendar day of day's month.
func MonthStart(day time.Time) time.Time {
	return time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// Weekly buckets bars by ISO week, keyed by that week's Monday.
func Weekly(bars []model.Bar) []model.Bar {
	return Aggregate(bars, WeekStart)
}

// Monthly buckets bars by calendar month, keyed by the first of the month.
func Monthly(bars []model.Bar) []model.Bar {
	return Aggregate(bars, MonthStart)
}

// ByTimeframe resamples daily bars to tf. Non-derived timeframes are returned as is.
func ByTimeframe(bars []model.Bar, tf model.Timeframe) []model.Bar {
	switch tf {
	case model.Weekly:
		return Weekly(bars)
	case model.Monthly:
		return Monthly(bars)
	default:
		return bars
	}
}

// Aggregate groups bars (in non-decreasing time order) by bucket:
//   - Open   : first bar's open seen for the bucket
//   - High   : max
//   - Low    : min
//   - Close  : last bar's close seen
//   - Volume : sum, absent volume counts as 0
//
// Output is sorted ascending by bucket date. Bars whose time does not start
// with a "2006-01-02" date are skipped.
func Aggregate(bars []model.Bar, bucket BucketFunc) []model.Bar {
	buckets := make(map[string]*model.Bar)
	var keys []string

	for _, b := range bars {
		day, ok := barDay(b.Time)
		if !ok {
			continue
		}
		key := bucket(day).Format(model.DateLayout)
		agg, seen := buckets[key]
		if !seen {
			vol := b.VolumeOrZero()
			buckets[key] = &model.Bar{
				Time:   key,
				Open:   b.Open,
				High:   b.High,
				Low:    b.Low,
				Close:  b.Close,
				Volume: &vol,
			}
			keys = append(keys, key)
			continue
		}
		agg.High = max(agg.High, b.High)
		agg.Low = min(agg.Low, b.Low)
		agg.Close = b.Close
		*agg.Volume += b.VolumeOrZero()
	}

	slices.Sort(keys)
	out := make([]model.Bar, 0, len(keys))
	for _, k := range keys {
		out = append(out, *buckets[k])
	}
	return out
}

func barDay(id string) (time.Time, bool) {
	if len(id) < len(model.DateLayout) {
		return time.Time{}, false
	}
	day, err := time.Parse(model.DateLayout, id[:len(model.DateLayout)])
	if err != nil {
		return time.Time{}, false
	}
	return day, true
}
