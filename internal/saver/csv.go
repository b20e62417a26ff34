package saver

import (
	"encoding/csv"
	"os"
	"strconv"

	"us-bars/internal/model"
)

// CSVSaver writes bars as CSV (header: time,open,high,low,close,volume).
// A missing volume is an empty cell.
type CSVSaver struct{}

func (CSVSaver) Extension() string { return "csv" }

func (CSVSaver) Save(bars []model.Bar, path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	w := csv.NewWriter(f)

	if err := w.Write([]string{"time", "open", "high", "low", "close", "volume"}); err != nil {
		return err
	}
	for _, b := range bars {
		vol := ""
		if b.Volume != nil {
			vol = strconv.FormatInt(*b.Volume, 10)
		}
		if err := w.Write([]string{
			b.Time,
			floatStr(b.Open),
			floatStr(b.High),
			floatStr(b.Low),
			floatStr(b.Close),
			vol,
		}); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func floatStr(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }
