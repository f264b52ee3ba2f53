package providers

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/samber/do/v2"

	"github.com/Nickwheeler93/discord-book-bot/internal/config"
	"github.com/Nickwheeler93/discord-book-bot/internal/store/sqlite"
)

// StoreHandle wraps the store with shutdown capability.
type StoreHandle struct {
	*sqlite.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore provides the SQLite store.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*slog.Logger](i)

	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o750); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	st, err := sqlite.Open(cfg.Database.Path, log)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	log.Info("Store opened", "path", cfg.Database.Path)
	return &StoreHandle{Store: st}, nil
}
