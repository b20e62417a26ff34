//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"us-bars/internal/app"
	"us-bars/internal/barcache"
	"us-bars/internal/cachestore"
	"us-bars/internal/httpapi"
	"us-bars/internal/provider"
	"us-bars/internal/refresh"
)

// App holds application dependencies built by Wire.
type App struct {
	Config    *app.Config
	DP        provider.DataProvider
	Store     cachestore.Store
	Manager   *barcache.Manager
	Server    *httpapi.Server
	Refresher *refresh.Refresher
}

// InitializeApp builds App via Wire.
// Caller must call the returned cleanup, which closes the store and provider.
func InitializeApp() (*App, func(), error) {
	wire.Build(
		app.ProvideConfig,
		app.ProvideDataProvider,
		app.ProvideStore,
		app.ProvideManager,
		app.ProvideServer,
		app.ProvideSaver,
		app.ProvideRefresher,
		wire.Struct(new(App), "*"),
	)
	return nil, nil, nil
}
