package cachestore

import (
	"us-bars/internal/model"
)

// Key identifies one cached series. Symbol is sanitized and uppercased.
type Key struct {
	Symbol    string
	Timeframe model.Timeframe
}

// NewKey sanitizes symbol for use as a storage identifier. Symbols that sanitize
// to the same string share a key.
func NewKey(symbol string, tf model.Timeframe) (Key, error) {
	clean, err := model.SanitizeSymbol(symbol)
	if err != nil {
		return Key{}, err
	}
	return Key{Symbol: clean, Timeframe: tf}, nil
}

// String returns the storage identifier, e.g. "AAPL_1d".
func (k Key) String() string {
	return k.Symbol + "_" + string(k.Timeframe)
}

// FileName is the file store name for k.
func (k Key) FileName() string {
	return k.String() + ".json"
}
