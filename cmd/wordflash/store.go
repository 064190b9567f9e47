package main

import (
	"context"
	"fmt"

	"github.com/vytor/wordflash/internal/api"
	"github.com/vytor/wordflash/internal/config"
	"github.com/vytor/wordflash/internal/db"
	"github.com/vytor/wordflash/internal/repository"
	"github.com/vytor/wordflash/internal/repository/postgres"
	"github.com/vytor/wordflash/internal/repository/sqlite"
)

// store bundles the repositories of one backend.
type store struct {
	words     repository.WordRepository
	users     repository.UserRepository
	progress  repository.ProgressRepository
	reconcile repository.ReconcileRepository
	ready     api.ReadinessCheck
	close     func()
}

func openStore(ctx context.Context, cfg config.Config) (*store, error) {
	switch cfg.DBDriver {
	case config.DriverPostgres:
		pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, postgres.PoolConfig{MaxConns: int32(cfg.DBMaxConns)})
		if err != nil {
			return nil, err
		}
		if err := postgres.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrate postgres: %w", err)
		}
		tx := postgres.NewTransactor(pool)
		return &store{
			words:     postgres.NewWordRepository(pool),
			users:     postgres.NewUserRepository(pool),
			progress:  postgres.NewProgressRepository(pool, tx),
			reconcile: postgres.NewReconcileRepository(pool, tx),
			ready:     pool.Ping,
			close:     pool.Close,
		}, nil

	case config.DriverSQLite:
		database, err := db.Open(cfg.DBPath)
		if err != nil {
			return nil, err
		}
		return &store{
			words:     sqlite.NewWordRepository(database.DB),
			users:     sqlite.NewUserRepository(database.DB),
			progress:  sqlite.NewProgressRepository(database.DB),
			reconcile: sqlite.NewReconcileRepository(database.DB),
			ready:     database.PingContext,
			close:     func() { database.Close() },
		}, nil
	}
	return nil, fmt.Errorf("unknown db driver %q", cfg.DBDriver)
}
