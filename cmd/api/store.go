// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/taibuivan/authgate/internal/platform/config"
	"github.com/taibuivan/authgate/internal/platform/migration"
	pgstore "github.com/taibuivan/authgate/internal/platform/postgres"
	"github.com/taibuivan/authgate/internal/platform/sqlite"
	"github.com/taibuivan/authgate/internal/users/auth"
)

// userStore bundles the repository with its lifecycle hooks.
type userStore struct {
	users auth.UserRepository
	ping  func(ctx context.Context) error
	close func()
}

// openStore connects the backend selected by STORE_DRIVER.
func openStore(ctx context.Context, cfg *config.Config, log *slog.Logger) (*userStore, error) {
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		pool, err := pgstore.NewPool(ctx, cfg.DatabaseURL, log)
		if err != nil {
			return nil, err
		}

		if err := migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log); err != nil {
			pool.Close()
			return nil, err
		}

		return &userStore{
			users: auth.NewPostgresUserRepository(pool),
			ping:  func(ctx context.Context) error { return pgstore.Ping(ctx, pool) },
			close: func() {
				log.Info("closing_postgres_pool")
				pool.Close()
			},
		}, nil

	case config.DriverSQLite:
		db, err := sqlite.Open(cfg.SQLitePath, log)
		if err != nil {
			return nil, err
		}

		repository, err := auth.NewGormUserRepository(db)
		if err != nil {
			_ = sqlite.Close(db)
			return nil, err
		}

		return &userStore{
			users: repository,
			ping:  func(ctx context.Context) error { return sqlite.Ping(ctx, db) },
			close: func() {
				log.Info("closing_sqlite_database")
				if err := sqlite.Close(db); err != nil {
					log.Error("sqlite_close_failed", slog.Any("error", err))
				}
			},
		}, nil
	}

	return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}
