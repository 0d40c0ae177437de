// Package providers contains dependency injection providers for the catalog server.
package providers

import (
	"os"

	"github.com/samber/do/v2"

	"github.com/locallibrary/catalog/internal/config"
	"github.com/locallibrary/catalog/internal/logger"
)

// ProvideConfig provides the application configuration.
func ProvideConfig(i do.Injector) (*config.Config, error) {
	return config.LoadConfig(os.Args[1:])
}

// ProvideLogger provides the structured logger.
func ProvideLogger(i do.Injector) (*logger.Logger, error) {
	cfg := do.MustInvoke[*config.Config](i)

	log := logger.ForEnvironment(cfg.App.Environment, cfg.Logger.Level, os.Stdout)

	log.Info("Starting catalog server",
		"environment", cfg.App.Environment,
		"log_level", cfg.Logger.Level,
		"data_path", cfg.Storage.DataPath,
		"driver", cfg.Storage.Driver,
	)

	return log, nil
}
