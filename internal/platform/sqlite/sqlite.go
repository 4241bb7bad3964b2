// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package sqlite opens the embedded gorm database used when STORE_DRIVER=sqlite.

It suits single-instance deployments and tests: the whole user store lives in
one file (or in memory for ":memory:"). Schema creation is left to the
repositories through gorm's AutoMigrate.
*/
package sqlite

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const (
	slowQueryThreshold = 200 * time.Millisecond
	pingTimeout        = 2 * time.Second
)

// InMemory is the DSN of a private, process-local database.
const InMemory = ":memory:"

// Open creates the database file if needed and returns a gorm handle.
//
// SQLite allows a single writer, so the pool is capped at one connection.
// This also keeps an in-memory database shared by every caller.
func Open(path string, logger *slog.Logger) (*gorm.DB, error) {
	if path != InMemory && !strings.HasPrefix(path, "file:") {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			return nil, fmt.Errorf("sqlite: failed to create data directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
		Logger: gormlogger.New(&gormWriter{logger: logger}, gormlogger.Config{
			SlowThreshold:             slowQueryThreshold,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("sqlite: failed to open %q: %w", path, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("sqlite: failed to access pool: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	logger.Info("sqlite_database_opened", slog.String("path", path))

	return db, nil
}

// Ping verifies that the database answers within a short deadline.
func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("sqlite: ping failed: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := sqlDB.PingContext(pingCtx); err != nil {
		return fmt.Errorf("sqlite: ping failed: %w", err)
	}
	return nil
}

// Close releases the underlying connection.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// gormWriter adapts gorm's printf logger to slog.
type gormWriter struct {
	logger *slog.Logger
}

// Printf implements gormlogger.Writer.
func (w *gormWriter) Printf(format string, args ...any) {
	w.logger.Warn("gorm_query", slog.String("detail", strings.TrimSpace(fmt.Sprintf(format, args...))))
}
