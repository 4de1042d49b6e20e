package persistence

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/volunteer-hub/internal/config"
	"github.com/spec-kit/volunteer-hub/internal/repository"
	"github.com/spec-kit/volunteer-hub/internal/repository/memory"
)

// OpenStore returns the Postgres-backed store when a DSN is configured, applying
// migrations if enabled, and the in-memory store otherwise. The returned
// Postgres handle must be closed by the caller; it is a no-op without a DSN.
func OpenStore(ctx context.Context, cfg config.PostgresConfig, logger *zap.Logger) (repository.Store, *Postgres, error) {
	pg, err := NewPostgres(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	if !pg.Enabled() {
		return memory.NewStore(), pg, nil
	}
	if cfg.RunMigrations {
		if err := RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			pg.Close()
			return nil, nil, err
		}
	}
	return repository.NewPostgresStore(pg.PoolHandle()), pg, nil
}
