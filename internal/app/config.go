package app

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"us-bars/internal/model"
)

// Config holds application configuration from env
type Config struct {
	DataProvider   string   `validate:"oneof=tiingo polygon"`
	TiingoAPIKey   string   `validate:"required_if=DataProvider tiingo"`
	PolygonAPIKeys []string `validate:"required_if=DataProvider polygon,dive,required"`
	// PolygonKeyInterval paces each key (12s on free plans). Zero disables pacing.
	PolygonKeyInterval time.Duration `validate:"gte=0"`

	CacheBackend string `validate:"oneof=file sqlite memory"`
	CacheDir     string `validate:"required"`

	HTTPAddr    string `validate:"required"`
	StaticDir   string
	CORSOrigin  string
	DefaultDays int `validate:"min=1,max=10000"`

	TickersFile       string
	RefreshTimeframes []model.Timeframe `validate:"min=1"`
	RefreshGroupSize  int               `validate:"min=1,max=100"`
	RefreshGroupDelay time.Duration     `validate:"gte=0"`
	RefreshRunHour    int               `validate:"min=0,max=23"`
	RefreshRunMinute  int               `validate:"min=0,max=59"`

	ExportFormat string `validate:"omitempty,oneof=csv json parquet"`
	ExportDir    string

	LogLevel string // debug | info | warn | error
}

// LoadConfig reads config from environment and validates it.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		DataProvider: strings.ToLower(getEnv("DATA_PROVIDER", "tiingo")),
		TiingoAPIKey: os.Getenv("TIINGO_API_KEY"),
		CacheBackend: strings.ToLower(getEnv("CACHE_BACKEND", "file")),
		CacheDir:     getEnv("CACHE_DIR", filepath.Join("data", "cache")),
		HTTPAddr:     getEnv("HTTP_ADDR", ":8080"),
		StaticDir:    os.Getenv("STATIC_DIR"),
		CORSOrigin:   getEnv("CORS_ORIGIN", "*"),
		TickersFile:  os.Getenv("TICKERS_FILE"),
		ExportFormat: strings.ToLower(os.Getenv("EXPORT_FORMAT")),
		ExportDir:    getEnv("EXPORT_DIR", filepath.Join("data", "export")),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
	}
	cfg.PolygonAPIKeys = parsePolygonAPIKeys()
	if port := os.Getenv("PORT"); port != "" {
		cfg.HTTPAddr = ":" + port
	}

	var err error
	if cfg.DefaultDays, err = getEnvInt("DEFAULT_DAYS", 100); err != nil {
		return nil, err
	}
	if cfg.RefreshGroupSize, err = getEnvInt("REFRESH_GROUP_SIZE", 5); err != nil {
		return nil, err
	}
	if cfg.RefreshRunHour, err = getEnvInt("REFRESH_RUN_HOUR", 22); err != nil {
		return nil, err
	}
	if cfg.RefreshRunMinute, err = getEnvInt("REFRESH_RUN_MINUTE", 30); err != nil {
		return nil, err
	}
	if cfg.RefreshGroupDelay, err = getEnvDuration("REFRESH_GROUP_DELAY", 12*time.Second); err != nil {
		return nil, err
	}
	if cfg.PolygonKeyInterval, err = getEnvDuration("POLYGON_KEY_INTERVAL", 0); err != nil {
		return nil, err
	}
	if cfg.RefreshTimeframes, err = parseTimeframes(getEnv("REFRESH_TIMEFRAMES", "1d")); err != nil {
		return nil, err
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, fmt.Errorf("%s: %q is not an integer", key, v)
	}
	return n, nil
}

// getEnvDuration accepts Go durations ("12s", "1m30s") or plain seconds.
func getEnvDuration(key string, def time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d, nil
	}
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second, nil
	}
	return 0, fmt.Errorf("%s: %q is not a duration", key, v)
}

func parsePolygonAPIKeys() []string {
	s := os.Getenv("POLYGON_API_KEYS")
	if s == "" {
		s = os.Getenv("POLYGON_API_KEY")
	}
	if s == "" {
		return nil
	}
	var keys []string
	for _, k := range strings.Split(s, ",") {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}

// parseTimeframes parses a comma list of cached timeframes. Derived timeframes
// are accepted; they refresh the daily series they are built from.
func parseTimeframes(s string) ([]model.Timeframe, error) {
	seen := make(map[model.Timeframe]bool)
	var out []model.Timeframe
	for _, part := range strings.Split(s, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		tf, err := model.ParseTimeframe(part)
		if err != nil {
			return nil, fmt.Errorf("REFRESH_TIMEFRAMES: %w", err)
		}
		if !seen[tf] {
			seen[tf] = true
			out = append(out, tf)
		}
	}
	return out, nil
}

// SQLitePath returns the sqlite cache file inside CacheDir.
func (c *Config) SQLitePath() string {
	return filepath.Join(c.CacheDir, "cache.db")
}

// ReportDir is where batch refresh writes .lastrun.*.json.
func (c *Config) ReportDir() string {
	return c.CacheDir
}
