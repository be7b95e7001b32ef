package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/viant/ranking/engine"
	"github.com/viant/ranking/internal/config"
	"github.com/viant/ranking/internal/logging"
	"github.com/viant/ranking/store"
)

// runtime bundles what every command needs.
type runtime struct {
	cfg    *config.Config
	logger *zap.Logger
	store  store.Store
	close  func() error
}

func newRuntime(ctx context.Context, configPath string) (*runtime, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(logging.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format})
	if err != nil {
		return nil, err
	}
	rt := &runtime{cfg: cfg, logger: logger, close: func() error { return nil }}
	switch cfg.Storage.Driver {
	case "memory":
		rt.store = store.NewMemoryStore()
	default:
		db, err := engine.Open(cfg.Storage.DSN)
		if err != nil {
			return nil, err
		}
		s, err := store.NewSQLiteStore(ctx, db, logger)
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to open store: %w", err)
		}
		rt.store = s
		rt.close = db.Close
	}
	logger.Debug("runtime ready", zap.String("driver", cfg.Storage.Driver), zap.String("dsn", cfg.Storage.DSN))
	return rt, nil
}

func (r *runtime) Close() error {
	_ = r.logger.Sync()
	return r.close()
}
