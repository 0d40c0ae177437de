package providers

import (
	"github.com/samber/do/v2"

	"github.com/locallibrary/catalog/internal/config"
	"github.com/locallibrary/catalog/internal/logger"
	"github.com/locallibrary/catalog/internal/store"
	"github.com/locallibrary/catalog/internal/store/sqlite"
)

// StoreHandle wraps the store with shutdown capability.
type StoreHandle struct {
	store.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore opens the store selected by the storage driver.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	path := cfg.Storage.DatabasePath()

	var (
		db  store.Store
		err error
	)
	switch cfg.Storage.Driver {
	case config.DriverSQLite:
		db, err = sqlite.Open(path, log.Logger)
	default:
		db, err = store.New(path, log.Logger)
	}
	if err != nil {
		return nil, err
	}

	log.Info("Database initialized", "driver", cfg.Storage.Driver, "path", path)

	return &StoreHandle{Store: db}, nil
}
