package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/habitoapp/habito-server/internal/config"
	"github.com/habitoapp/habito-server/internal/logger"
	"github.com/habitoapp/habito-server/internal/store/kv"
	"github.com/habitoapp/habito-server/internal/store/sqlite"
)

// StoreHandle wraps the SQLite store with shutdown capability.
type StoreHandle struct {
	*sqlite.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore opens the SQLite database and applies migrations.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	path := cfg.Storage.DatabasePath()
	db, err := sqlite.Open(path, log.Logger)
	if err != nil {
		return nil, err
	}

	users, err := db.ListUsers(context.Background())
	if err != nil {
		log.Warn("Failed to count users", "error", err)
	}
	log.Info("Database initialized", "path", path, "users", len(users))

	return &StoreHandle{Store: db}, nil
}

// KVHandle wraps the badger session store with shutdown capability.
type KVHandle struct {
	*kv.Store
}

// Shutdown implements do.Shutdownable.
func (h *KVHandle) Shutdown() error {
	return h.Close()
}

// ProvideKV opens the badger store holding sessions and password resets.
func ProvideKV(i do.Injector) (*KVHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	path := cfg.Storage.KVPath()
	s, err := kv.Open(path, log.Logger)
	if err != nil {
		return nil, err
	}
	log.Info("Session store initialized", "path", path)

	return &KVHandle{Store: s}, nil
}
