package providers

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/samber/do/v2"

	"github.com/versemark/versemark-server/internal/config"
	"github.com/versemark/versemark-server/internal/logger"
	"github.com/versemark/versemark-server/internal/sse"
	"github.com/versemark/versemark-server/internal/store"
	"github.com/versemark/versemark-server/internal/store/kv"
	"github.com/versemark/versemark-server/internal/store/sqlite"
)

// SSEManagerHandle wraps the SSE manager with its context for lifecycle management.
type SSEManagerHandle struct {
	*sse.Manager
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (h *SSEManagerHandle) Shutdown() error {
	h.cancel()
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Manager.Shutdown(ctx)
}

// ProvideSSEManager provides the server-sent events manager.
func ProvideSSEManager(i do.Injector) (*SSEManagerHandle, error) {
	log := do.MustInvoke[*logger.Logger](i)

	manager := sse.NewManager(log.Component("sse"))

	// Start in background
	ctx, cancel := context.WithCancel(context.Background())
	go manager.Start(ctx)

	log.Info("SSE manager started")

	return &SSEManagerHandle{
		Manager: manager,
		cancel:  cancel,
	}, nil
}

// StoreHandle wraps the record store with shutdown capability.
type StoreHandle struct {
	store.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore provides the record store for the configured backend.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	st, path, err := OpenStore(cfg, log.Component("store"))
	if err != nil {
		return nil, err
	}

	log.Info("Record store initialized", "backend", cfg.Store.Backend, "path", path)

	return &StoreHandle{Store: st}, nil
}

// OpenStore opens the backend named by cfg.Store.Backend under the data path.
// It returns the store and the file or directory it lives in.
func OpenStore(cfg *config.Config, log *slog.Logger) (store.Store, string, error) {
	if err := os.MkdirAll(cfg.App.DataPath, dataDirMode); err != nil {
		return nil, "", fmt.Errorf("create data path: %w", err)
	}

	switch cfg.Store.Backend {
	case config.BackendBadger:
		path := cfg.BadgerPath()
		st, err := kv.Open(path, log)
		if err != nil {
			return nil, "", err
		}
		return st, path, nil
	case config.BackendSQLite, "":
		path := cfg.SQLitePath()
		st, err := sqlite.Open(path, log)
		if err != nil {
			return nil, "", err
		}
		return st, path, nil
	default:
		return nil, "", fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}
