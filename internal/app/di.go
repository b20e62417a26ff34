package app

import (
	"context"
	"log/slog"

	"us-bars/internal/barcache"
	"us-bars/internal/cachestore"
	"us-bars/internal/httpapi"
	"us-bars/internal/provider"
	"us-bars/internal/refresh"
	"us-bars/internal/saver"
)

// ProvideConfig loads config from environment (for Wire).
func ProvideConfig() (*Config, error) {
	return LoadConfig()
}

// ProvideDataProvider creates the upstream provider (for Wire). The cleanup closes it.
func ProvideDataProvider(cfg *Config) (provider.DataProvider, func(), error) {
	dp, err := CreateProvider(cfg)
	if err != nil {
		return nil, nil, err
	}
	slog.Info("using data provider", "provider", dp.GetName())
	return dp, func() {
		if err := dp.Close(); err != nil {
			slog.Warn("close data provider", "error", err)
		}
	}, nil
}

// ProvideStore opens the cache backend (for Wire). The cleanup closes it.
func ProvideStore(cfg *Config) (cachestore.Store, func(), error) {
	store, err := CreateStore(context.Background(), cfg)
	if err != nil {
		return nil, nil, err
	}
	slog.Info("cache store", "backend", cfg.CacheBackend, "dir", cfg.CacheDir)
	return store, func() {
		if err := store.Close(); err != nil {
			slog.Warn("close cache store", "error", err)
		}
	}, nil
}

// ProvideManager builds the delta cache manager (for Wire).
func ProvideManager(store cachestore.Store, dp provider.DataProvider) *barcache.Manager {
	return barcache.New(store, dp)
}

// ProvideServer builds the HTTP server (for Wire).
func ProvideServer(cfg *Config, m *barcache.Manager, dp provider.DataProvider) *httpapi.Server {
	return httpapi.NewServer(m, httpapi.Options{
		Addr:         cfg.HTTPAddr,
		StaticDir:    cfg.StaticDir,
		CORSOrigin:   cfg.CORSOrigin,
		DefaultDays:  cfg.DefaultDays,
		ProviderName: dp.GetName(),
	}, slog.Default())
}

// ProvideSaver returns the export saver, or nil when EXPORT_FORMAT is empty (for Wire).
func ProvideSaver(cfg *Config) (saver.Saver, error) {
	if cfg.ExportFormat == "" {
		return nil, nil
	}
	return saver.ParseFormat(cfg.ExportFormat)
}

// ProvideRefresher builds the batch refresher (for Wire).
func ProvideRefresher(cfg *Config, m *barcache.Manager, s saver.Saver) *refresh.Refresher {
	return refresh.New(m, refresh.Options{
		GroupSize:  cfg.RefreshGroupSize,
		GroupDelay: cfg.RefreshGroupDelay,
		Timeframes: cfg.RefreshTimeframes,
		ReportDir:  cfg.ReportDir(),
		ExportDir:  cfg.ExportDir,
		Saver:      s,
	})
}
