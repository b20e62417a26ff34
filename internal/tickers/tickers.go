// Package tickers loads the symbol list used by batch refresh.
package tickers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"us-bars/internal/model"
)

// DefaultPaths are tried in order when no ticker file is configured.
var DefaultPaths = []string{
	"indices/combined.txt",
	"indices/tickers.json",
	"indices/sp500.txt",
}

// ErrNotFound means neither the configured file nor any default path exists.
var ErrNotFound = errors.New("tickers: no ticker file found")

// LoadFromFile reads a list of tickers from a file.
// Supported formats:
//   - .txt  : one ticker per line, '#' lines are treated as comments
//   - .json : JSON array of strings
//
// Tickers are uppercased and de-duplicated in file order. Entries that are not
// valid symbols are skipped with a warning.
func LoadFromFile(path string) ([]string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read ticker file %s: %w", path, err)
	}

	var raw []string
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if err := json.Unmarshal(content, &raw); err != nil {
			return nil, fmt.Errorf("parse JSON %s: %w", path, err)
		}
	case ".txt":
		raw = parseText(string(content))
	default:
		return nil, fmt.Errorf("unsupported ticker file extension %q (use .txt or .json)", filepath.Ext(path))
	}

	tickers := normalize(raw)
	slog.Info("loaded tickers from file", "count", len(tickers), "path", path)
	return tickers, nil
}

// Load reads path when set and present, otherwise the first existing DefaultPaths entry.
func Load(path string) ([]string, error) {
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			return LoadFromFile(path)
		}
		slog.Info("ticker file not found, trying default paths", "path", path)
	}
	for _, p := range DefaultPaths {
		if _, err := os.Stat(p); err == nil {
			return LoadFromFile(p)
		}
	}
	return nil, ErrNotFound
}

func parseText(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line != "" && !strings.HasPrefix(line, "#") {
			out = append(out, line)
		}
	}
	return out
}

func normalize(raw []string) []string {
	seen := make(map[string]bool, len(raw))
	out := make([]string, 0, len(raw))
	for _, t := range raw {
		t = strings.ToUpper(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		if err := model.ValidateSymbol(t); err != nil {
			slog.Warn("skipping invalid ticker", "ticker", t, "error", err)
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}
