package app

import (
	"context"
	"testing"

	"us-bars/internal/cachestore"
	"us-bars/internal/refresh"
)

func TestCreateStore(t *testing.T) {
	for _, backend := range []string{"file", "sqlite", "memory"} {
		t.Run(backend, func(t *testing.T) {
			cfg := &Config{CacheBackend: backend, CacheDir: t.TempDir()}
			store, err := CreateStore(context.Background(), cfg)
			if err != nil {
				t.Fatal(err)
			}
			defer store.Close()
			switch backend {
			case "file":
				if _, ok := store.(*cachestore.FileStore); !ok {
					t.Fatalf("got %T", store)
				}
			case "sqlite":
				if _, ok := store.(*cachestore.SQLiteStore); !ok {
					t.Fatalf("got %T", store)
				}
			case "memory":
				if _, ok := store.(*cachestore.MemoryStore); !ok {
					t.Fatalf("got %T", store)
				}
			}
		})
	}
	if _, err := CreateStore(context.Background(), &Config{CacheBackend: "redis"}); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}

func TestCreateProvider(t *testing.T) {
	dp, err := CreateProvider(&Config{DataProvider: "tiingo", TiingoAPIKey: "tok"})
	if err != nil {
		t.Fatal(err)
	}
	defer dp.Close()
	if dp.GetName() == "" {
		t.Fatal("provider name empty")
	}

	dp, err = CreateProvider(&Config{DataProvider: "polygon", PolygonAPIKeys: []string{"a", "b"}})
	if err != nil {
		t.Fatal(err)
	}
	defer dp.Close()

	for _, cfg := range []*Config{
		{DataProvider: "tiingo"},
		{DataProvider: "polygon"},
		{DataProvider: "yahoo"},
	} {
		if _, err := CreateProvider(cfg); err == nil {
			t.Errorf("%s: expected error", cfg.DataProvider)
		}
	}
}

func TestProvideSaver(t *testing.T) {
	s, err := ProvideSaver(&Config{})
	if err != nil || s != nil {
		t.Fatalf("empty format should disable export, got %v %v", s, err)
	}
	s, err = ProvideSaver(&Config{ExportFormat: "csv"})
	if err != nil || s.Extension() != "csv" {
		t.Fatalf("got %v %v", s, err)
	}
	if _, err := ProvideSaver(&Config{ExportFormat: "xml"}); err == nil {
		t.Fatal("expected error")
	}
}

var _ Runner = (*refresh.Refresher)(nil)
