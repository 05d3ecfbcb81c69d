package providers

import (
	"github.com/samber/do/v2"

	"github.com/versemark/versemark-server/internal/color"
	"github.com/versemark/versemark-server/internal/config"
	"github.com/versemark/versemark-server/internal/logger"
	"github.com/versemark/versemark-server/internal/service"
)

// ProvideColorCache provides the shared loaded-colors bookkeeping.
func ProvideColorCache(i do.Injector) (*service.ColorCache, error) {
	return service.NewColorCache(), nil
}

// ProvideCategoryService provides the category assignment service.
func ProvideCategoryService(i do.Injector) (*service.CategoryService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	palette := do.MustInvoke[*color.Palette](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewCategoryService(storeHandle.Store, palette, sseHandle.Manager, log.Component("categories")), nil
}

// ProvideHighlightService provides the highlight service.
func ProvideHighlightService(i do.Injector) (*service.HighlightService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	lookup := do.MustInvoke[*ScriptureHandle](i)
	cache := do.MustInvoke[*service.ColorCache](i)
	palette := do.MustInvoke[*color.Palette](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewHighlightService(
		storeHandle.Store,
		lookup.CachedLookup,
		cache,
		palette,
		sseHandle.Manager,
		log.Component("highlights"),
		cfg.Store.DeleteBatchSize,
	), nil
}

// ProvideResolver provides the category membership resolver.
func ProvideResolver(i do.Injector) (*service.Resolver, error) {
	categories := do.MustInvoke[*service.CategoryService](i)
	highlights := do.MustInvoke[*service.HighlightService](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewResolver(categories, highlights, log.Component("membership")), nil
}

// ProvideDeletionService provides the safe category deletion service.
func ProvideDeletionService(i do.Injector) (*service.DeletionService, error) {
	categories := do.MustInvoke[*service.CategoryService](i)
	highlights := do.MustInvoke[*service.HighlightService](i)
	cache := do.MustInvoke[*service.ColorCache](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewDeletionService(categories, highlights, cache, sseHandle.Manager, log.Component("deletion")), nil
}
