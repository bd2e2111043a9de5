// Package backend turns the configured data backend name into the
// stores the rest of the application works against.
package backend

import (
	"fmt"

	"duitku/internal/auth"
	"duitku/internal/config"
	"duitku/internal/ledger"
	applog "duitku/internal/log"
	"duitku/internal/storage"
	"duitku/internal/storage/memory"
)

// Stores bundles the persistence ports a backend provides. Both
// point at the same underlying store.
type Stores struct {
	Auth    auth.Store
	Ledger  ledger.Store
	cleanup func() error
}

// Close releases the backend's resources. Safe to call on backends
// without any.
func (s *Stores) Close() error {
	if s.cleanup == nil {
		return nil
	}
	return s.cleanup()
}

// Open builds the stores for the configured backend.
func Open(cfg *config.Config, logger *applog.Logger) (*Stores, error) {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}

	switch cfg.DataBackend {
	case "sqlite":
		repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
		}
		logger.Info("Initialized SQLite backend", "db_path", cfg.SQLiteDBPath)
		return &Stores{Auth: repo, Ledger: repo, cleanup: repo.Close}, nil

	case "memory":
		store := memory.NewStore()
		logger.Info("Initialized memory backend")
		return &Stores{Auth: store, Ledger: store}, nil

	default:
		return nil, fmt.Errorf("unsupported data backend: %s", cfg.DataBackend)
	}
}
