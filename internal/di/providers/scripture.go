package providers

import (
	"fmt"

	"github.com/samber/do/v2"

	"github.com/versemark/versemark-server/internal/color"
	"github.com/versemark/versemark-server/internal/config"
	"github.com/versemark/versemark-server/internal/logger"
	"github.com/versemark/versemark-server/internal/scripture"
)

// ProvidePalette provides the fixed color palette, from file when configured.
func ProvidePalette(i do.Injector) (*color.Palette, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if cfg.Palette.File == "" {
		palette := color.Default()
		log.Info("Using built-in palette", "colors", palette.Len())
		return palette, nil
	}

	palette, err := color.LoadPalette(cfg.Palette.File)
	if err != nil {
		return nil, fmt.Errorf("load palette: %w", err)
	}
	log.Info("Palette loaded", "file", cfg.Palette.File, "colors", palette.Len())
	return palette, nil
}

// ScriptureHandle wraps the cached verse text lookup with shutdown capability.
type ScriptureHandle struct {
	*scripture.CachedLookup
	client *scripture.Client
}

// Shutdown implements do.Shutdownable.
func (h *ScriptureHandle) Shutdown() error {
	h.CachedLookup.Close()
	if h.client != nil {
		h.client.Close()
	}
	return nil
}

// ProvideScripture provides the verse text lookup for the configured source.
func ProvideScripture(i do.Injector) (*ScriptureHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)

	var (
		next   scripture.Lookup
		client *scripture.Client
	)
	switch cfg.Scripture.Source {
	case config.ScriptureFromHTTP:
		client = scripture.NewClient(cfg.Scripture.APIURL, cfg.Scripture.RequestsPerSecond, log.Component("scripture"))
		next = client
	default:
		next = scripture.NewStoreLookup(storeHandle.Store)
	}

	cached, err := scripture.NewCachedLookup(next, cfg.Scripture.CacheSize)
	if err != nil {
		if client != nil {
			client.Close()
		}
		return nil, fmt.Errorf("create verse cache: %w", err)
	}

	log.Info("Scripture lookup ready",
		"source", cfg.Scripture.Source,
		"cache_size", cfg.Scripture.CacheSize,
	)

	return &ScriptureHandle{CachedLookup: cached, client: client}, nil
}
