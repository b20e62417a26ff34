// Package saver writes bar series to disk in an export format.
package saver

import (
	"fmt"
	"strings"

	"us-bars/internal/model"
)

// Saver persists one bar series per file. Callers depend only on this
// interface; the export format is picked once at startup.
type Saver interface {
	Save(bars []model.Bar, path string) error
	Extension() string
}

// Formats lists the accepted export formats.
var Formats = []string{"csv", "json", "parquet"}

// NewSaver returns the implementation for format (csv, parquet, json).
// Returns nil if format is not supported.
func NewSaver(format string) Saver {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "csv":
		return CSVSaver{}
	case "parquet":
		return ParquetSaver{}
	case "json":
		return JSONSaver{}
	default:
		return nil
	}
}

// ParseFormat is NewSaver with an error for unknown formats.
func ParseFormat(format string) (Saver, error) {
	s := NewSaver(format)
	if s == nil {
		return nil, fmt.Errorf("saver: unsupported format %q (use one of %s)", format, strings.Join(Formats, ", "))
	}
	return s, nil
}
