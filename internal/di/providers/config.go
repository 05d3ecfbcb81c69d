// Package providers contains dependency injection providers for the Versemark server.
package providers

import (
	"github.com/samber/do/v2"

	"github.com/versemark/versemark-server/internal/config"
	"github.com/versemark/versemark-server/internal/logger"
)

// ProvideConfig provides the application configuration from flags, environment and .env.
// Containers built with an already-loaded config never call this.
func ProvideConfig(i do.Injector) (*config.Config, error) {
	return config.LoadConfig()
}

// ProvideLogger provides the structured logger.
func ProvideLogger(i do.Injector) (*logger.Logger, error) {
	cfg := do.MustInvoke[*config.Config](i)

	log := logger.New(logger.Config{
		Level:       logger.ParseLevel(cfg.Logger.Level),
		AddSource:   cfg.App.Environment == "development",
		Environment: cfg.App.Environment,
	})

	log.Info("Starting Versemark",
		"environment", cfg.App.Environment,
		"log_level", cfg.Logger.Level,
		"data_path", cfg.App.DataPath,
		"store", cfg.Store.Backend,
		"scripture_source", cfg.Scripture.Source,
	)

	return log, nil
}
