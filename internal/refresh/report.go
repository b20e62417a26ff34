package refresh

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

const (
	successReportName = ".lastrun.success.json"
	failedReportName  = ".lastrun.failed.json"
)

// FailedEntry is one failed (symbol, timeframe) refresh.
type FailedEntry struct {
	Symbol    string `json:"symbol"`
	Timeframe string `json:"timeframe"`
	Reason    string `json:"reason"`
}

func writeRunReport(dir string, successList []string, failedList []FailedEntry) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	if len(successList) > 0 {
		p := filepath.Join(dir, successReportName)
		if err := writeJSONFile(p, successList); err != nil {
			return err
		}
		slog.Info("report wrote success", "path", p, "symbols", len(successList))
	}
	if len(failedList) > 0 {
		p := filepath.Join(dir, failedReportName)
		if err := writeJSONFile(p, failedList); err != nil {
			return err
		}
		slog.Info("report wrote failed", "path", p, "count", len(failedList))
	}
	return nil
}

func writeJSONFile(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func appendSuccess(list []string, symbol string) []string {
	for _, s := range list {
		if s == symbol {
			return list
		}
	}
	return append(list, symbol)
}

func joinFailedReasons(failedList []FailedEntry) string {
	var b strings.Builder
	for i, f := range failedList {
		if i > 0 {
			b.WriteString("; ")
		}
		fmt.Fprintf(&b, "%s/%s: %s", f.Symbol, f.Timeframe, f.Reason)
		if i >= 4 && len(failedList) > 6 {
			fmt.Fprintf(&b, " (+%d more)", len(failedList)-5)
			break
		}
	}
	return b.String()
}
