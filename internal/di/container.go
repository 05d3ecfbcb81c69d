// Package di provides dependency injection configuration for the Versemark server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/versemark/versemark-server/internal/color"
	"github.com/versemark/versemark-server/internal/config"
	"github.com/versemark/versemark-server/internal/di/providers"
	"github.com/versemark/versemark-server/internal/logger"
	"github.com/versemark/versemark-server/internal/service"
)

// NewContainer creates and configures the DI container with all providers.
// Configuration is loaded from os.Args, the environment and .env.
func NewContainer() *do.RootScope {
	injector := do.New()
	do.Provide(injector, providers.ProvideConfig)
	register(injector)
	return injector
}

// NewContainerWithConfig creates a container around an already-loaded configuration.
// The CLI uses it so its own flags never reach the config flag set.
func NewContainerWithConfig(cfg *config.Config) *do.RootScope {
	injector := do.New()
	do.ProvideValue(injector, cfg)
	register(injector)
	return injector
}

func register(injector *do.RootScope) {
	// Core infrastructure
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideSSEManager)
	do.Provide(injector, providers.ProvideStore)

	// Domain inputs
	do.Provide(injector, providers.ProvidePalette)
	do.Provide(injector, providers.ProvideScripture)

	// Business services
	do.Provide(injector, providers.ProvideColorCache)
	do.Provide(injector, providers.ProvideCategoryService)
	do.Provide(injector, providers.ProvideHighlightService)
	do.Provide(injector, providers.ProvideResolver)
	do.Provide(injector, providers.ProvideDeletionService)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)
}

// Bootstrap initializes all services and starts the HTTP server.
// This triggers lazy initialization of every provider so startup failures surface here.
func Bootstrap(injector *do.RootScope) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = toError(r)
		}
	}()

	_ = do.MustInvoke[*config.Config](injector)
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[*providers.SSEManagerHandle](injector)
	_ = do.MustInvoke[*providers.StoreHandle](injector)
	_ = do.MustInvoke[*color.Palette](injector)
	_ = do.MustInvoke[*providers.ScriptureHandle](injector)

	// Business services
	_ = do.MustInvoke[*service.CategoryService](injector)
	_ = do.MustInvoke[*service.HighlightService](injector)
	_ = do.MustInvoke[*service.Resolver](injector)
	_ = do.MustInvoke[*service.DeletionService](injector)

	// Server
	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)

	return nil
}
