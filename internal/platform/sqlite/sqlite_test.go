// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sqlite_test

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/authgate/internal/platform/sqlite"
)

func TestOpen_InMemory(t *testing.T) {
	db, err := sqlite.Open(sqlite.InMemory, slog.Default())
	require.NoError(t, err)
	defer sqlite.Close(db)

	assert.NoError(t, sqlite.Ping(context.Background(), db))
}

func TestOpen_CreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "authgate.db")

	db, err := sqlite.Open(path, slog.Default())
	require.NoError(t, err)
	require.NoError(t, sqlite.Ping(context.Background(), db))
	require.NoError(t, sqlite.Close(db))

	_, err = os.Stat(filepath.Dir(path))
	assert.NoError(t, err)
}
