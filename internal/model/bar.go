package model

// Bar represents one OHLCV bar (daily, 4-hour, weekly or monthly).
// Shared by providers, the cache store, the resampler and export (json, csv, parquet).
//
// Time is a lexicographically sortable identifier: "2006-01-02" for daily and
// coarser bars, RFC 3339 UTC ("2006-01-02T15:04:05Z") for intraday bars.
type Bar struct {
	Time   string  `json:"time" parquet:"time"`
	Open   float64 `json:"open" parquet:"open"`
	High   float64 `json:"high" parquet:"high"`
	Low    float64 `json:"low" parquet:"low"`
	Close  float64 `json:"close" parquet:"close"`
	Volume *int64  `json:"volume,omitempty" parquet:"volume,optional"`
}

// Date layouts used for bar time identifiers.
const (
	DateLayout     = "2006-01-02"
	IntradayLayout = "2006-01-02T15:04:05Z"
)

// VolumeOrZero returns the volume, treating an absent volume as 0.
func (b Bar) VolumeOrZero() int64 {
	if b.Volume == nil {
		return 0
	}
	return *b.Volume
}

// Int64 returns a pointer to v, for building optional volumes.
func Int64(v int64) *int64 {
	return &v
}
