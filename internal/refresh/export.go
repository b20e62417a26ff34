package refresh

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"us-bars/internal/model"
	"us-bars/internal/saver"
)

// ExportPath returns <dir>/<SYMBOL>/<symbol>_<tf>.<ext>.
func ExportPath(dir, symbol string, tf model.Timeframe, ext string) string {
	upper := strings.ToUpper(symbol)
	name := fmt.Sprintf("%s_%s.%s", strings.ToLower(symbol), tf, ext)
	return filepath.Join(dir, upper, name)
}

func exportBars(dir string, s saver.Saver, symbol string, tf model.Timeframe, bars []model.Bar) (string, error) {
	path := ExportPath(dir, symbol, tf, s.Extension())
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", err
	}
	if err := s.Save(bars, path); err != nil {
		return "", err
	}
	return path, nil
}
