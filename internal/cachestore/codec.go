package cachestore

import (
	"encoding/json"
	"fmt"

	"us-bars/internal/model"
)

func encodeRecord(rec Record) ([]byte, error) {
	if rec.Bars == nil {
		rec.Bars = []model.Bar{}
	}
	return json.Marshal(rec)
}

// decodeRecord parses data and checks the record is well formed. Any failure is
// reported so the caller can treat the record as a cache miss.
func decodeRecord(data []byte) (Record, error) {
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return Record{}, fmt.Errorf("parse record: %w", err)
	}
	if rec.Meta == nil {
		return rec, nil
	}
	if rec.Meta.Status == StatusRateLimited && rec.Meta.RateLimitedUntil == nil {
		return Record{}, fmt.Errorf("rate_limited record without rate_limited_until")
	}
	for i := 1; i < len(rec.Bars); i++ {
		if rec.Bars[i].Time <= rec.Bars[i-1].Time {
			return Record{}, fmt.Errorf("bars out of order at %d (%s <= %s)", i, rec.Bars[i].Time, rec.Bars[i-1].Time)
		}
	}
	return rec, nil
}
