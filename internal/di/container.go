// Package di provides dependency injection configuration for the book bot.
package di

import (
	"log/slog"

	"github.com/samber/do/v2"

	"github.com/Nickwheeler93/discord-book-bot/internal/config"
	"github.com/Nickwheeler93/discord-book-bot/internal/di/providers"
	"github.com/Nickwheeler93/discord-book-bot/internal/metadata/googlebooks"
	"github.com/Nickwheeler93/discord-book-bot/internal/service"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideStore)

	// Catalog search
	do.Provide(injector, providers.ProvideCatalogClient)

	// Business services
	do.Provide(injector, providers.ProvideAnnouncer)
	do.Provide(injector, providers.ProvideLibraryService)
	do.Provide(injector, providers.ProvideSearchService)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap triggers lazy initialization of every service so startup errors
// surface before the server begins accepting requests.
func Bootstrap(injector *do.RootScope) error {
	_ = do.MustInvoke[*config.Config](injector)
	_ = do.MustInvoke[*slog.Logger](injector)
	_ = do.MustInvoke[*providers.StoreHandle](injector)
	_ = do.MustInvoke[*googlebooks.Client](injector)
	_ = do.MustInvoke[service.Announcer](injector)
	_ = do.MustInvoke[*service.LibraryService](injector)
	_ = do.MustInvoke[*service.SearchService](injector)
	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)

	return nil
}
