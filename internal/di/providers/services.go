package providers

import (
	"log/slog"

	"github.com/samber/do/v2"

	"github.com/Nickwheeler93/discord-book-bot/internal/config"
	"github.com/Nickwheeler93/discord-book-bot/internal/metadata/googlebooks"
	"github.com/Nickwheeler93/discord-book-bot/internal/service"
)

// ProvideCatalogClient provides the Google Books search client.
func ProvideCatalogClient(i do.Injector) (*googlebooks.Client, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*slog.Logger](i)

	opts := []googlebooks.Option{googlebooks.WithTimeout(cfg.Catalog.Timeout)}
	if cfg.Catalog.BaseURL != "" {
		opts = append(opts, googlebooks.WithBaseURL(cfg.Catalog.BaseURL))
	}

	return googlebooks.NewClient(log, opts...), nil
}

// ProvideAnnouncer provides the announcement sink. The log-backed announcer
// stands in until a chat delivery implementation is wired.
func ProvideAnnouncer(i do.Injector) (service.Announcer, error) {
	log := do.MustInvoke[*slog.Logger](i)
	return service.NewLogAnnouncer(log), nil
}

// ProvideLibraryService provides the shelf orchestration service.
func ProvideLibraryService(i do.Injector) (*service.LibraryService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	announcer := do.MustInvoke[service.Announcer](i)
	log := do.MustInvoke[*slog.Logger](i)

	return service.NewLibraryService(storeHandle.Store, announcer, log), nil
}

// ProvideSearchService provides the catalog search service.
func ProvideSearchService(i do.Injector) (*service.SearchService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	catalog := do.MustInvoke[*googlebooks.Client](i)
	log := do.MustInvoke[*slog.Logger](i)

	return service.NewSearchService(catalog, log,
		service.WithSessionTTL(cfg.Search.CacheTTL),
		service.WithSessionCap(cfg.Search.CacheSize),
	), nil
}
