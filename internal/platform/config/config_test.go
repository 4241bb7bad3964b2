// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/authgate/internal/platform/config"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/authgate")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, config.DriverPostgres, cfg.StoreDriver)
	assert.Equal(t, time.Hour, cfg.AccessTokenTTL)
	assert.Equal(t, 2*time.Hour, cfg.RefreshTokenTTL)
	assert.True(t, cfg.UsesCookies())
	assert.True(t, cfg.CookieSecure)
	assert.True(t, cfg.IsDevelopment())
	assert.False(t, cfg.TrustProxyHeaders)
}

func TestLoad_MissingSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/authgate")

	_, err := config.Load()
	assert.Error(t, err)
}

func TestLoad_ExtraOrigins(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/authgate")
	t.Setenv("EXTRA_ORIGINS", "https://a.example,https://b.example")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins())
}

func TestValidate(t *testing.T) {
	valid := func() *config.Config {
		return &config.Config{
			StoreDriver:     config.DriverSQLite,
			SQLitePath:      ":memory:",
			AuthTransport:   config.TransportBearer,
			AccessTokenTTL:  time.Hour,
			RefreshTokenTTL: 2 * time.Hour,
		}
	}

	tests := []struct {
		name   string
		mutate func(*config.Config)
		ok     bool
	}{
		{"valid", func(*config.Config) {}, true},
		{"postgres_without_dsn", func(c *config.Config) { c.StoreDriver = config.DriverPostgres }, false},
		{"unknown_driver", func(c *config.Config) { c.StoreDriver = "mysql" }, false},
		{"unknown_transport", func(c *config.Config) { c.AuthTransport = "session" }, false},
		{"refresh_not_longer", func(c *config.Config) { c.RefreshTokenTTL = time.Hour }, false},
		{"zero_access_ttl", func(c *config.Config) { c.AccessTokenTTL = 0 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
