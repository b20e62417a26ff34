package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"us-bars/internal/cachestore"
	"us-bars/internal/provider"
	"us-bars/internal/provider/polygon"
	"us-bars/internal/provider/tiingo"
)

// CreateProvider creates DataProvider from config
func CreateProvider(cfg *Config) (provider.DataProvider, error) {
	switch cfg.DataProvider {
	case "tiingo":
		if cfg.TiingoAPIKey == "" {
			return nil, fmt.Errorf("TIINGO_API_KEY not set")
		}
		c, err := tiingo.New(cfg.TiingoAPIKey)
		if err != nil {
			return nil, err
		}
		return c, nil
	case "polygon":
		if len(cfg.PolygonAPIKeys) == 0 {
			return nil, fmt.Errorf("POLYGON_API_KEY or POLYGON_API_KEYS not set")
		}
		c, err := polygon.New(cfg.PolygonAPIKeys, polygon.WithKeyInterval(cfg.PolygonKeyInterval))
		if err != nil {
			return nil, err
		}
		return c, nil
	default:
		return nil, fmt.Errorf("unsupported data provider: %s. Options: tiingo, polygon", cfg.DataProvider)
	}
}

// CreateStore opens the configured cache backend. Caller must Close it.
func CreateStore(ctx context.Context, cfg *Config) (cachestore.Store, error) {
	switch cfg.CacheBackend {
	case "file":
		return cachestore.NewFileStore(cfg.CacheDir)
	case "sqlite":
		if err := os.MkdirAll(cfg.CacheDir, 0755); err != nil {
			return nil, fmt.Errorf("create cache dir: %w", err)
		}
		return cachestore.NewSQLiteStore(ctx, cfg.SQLitePath())
	case "memory":
		slog.Warn("memory cache backend: cached bars and backoff state are lost on restart")
		return cachestore.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unsupported cache backend: %s. Options: file, sqlite, memory", cfg.CacheBackend)
	}
}
