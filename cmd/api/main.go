// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command api is the entry point for the authgate HTTP API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Open the user store (PostgreSQL + migrations, or SQLite).
//  4. Connect to Redis when configured.
//  5. Wire the token service, authentication and HTTP handlers.
//  6. Start HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/taibuivan/authgate/internal/api"
	"github.com/taibuivan/authgate/internal/platform/config"
	"github.com/taibuivan/authgate/internal/platform/constants"
	"github.com/taibuivan/authgate/internal/platform/middleware"
	"github.com/taibuivan/authgate/internal/platform/ratelimit"
	redisstore "github.com/taibuivan/authgate/internal/platform/redis"
	"github.com/taibuivan/authgate/internal/platform/sec"
	"github.com/taibuivan/authgate/internal/users/auth"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	log := newLogger(slog.LevelInfo)
	log.Info("service_initializing", slog.String("version", constants.AppVersion))

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		log = newLogger(slog.LevelDebug)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
		slog.String("store_driver", cfg.StoreDriver),
		slog.String("auth_transport", cfg.AuthTransport),
		slog.Bool("trust_proxy_headers", cfg.TrustProxyHeaders),
	)

	if !cfg.CookieSecure && cfg.IsProduction() {
		log.Warn("insecure_cookies_in_production")
	}

	// Startup gets a deadline so misconfiguration fails fast.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// Background workers stop when the server shuts down.
	appCtx, appCancel := context.WithCancel(context.Background())
	defer appCancel()

	// ── 3. User Store ─────────────────────────────────────────────────────
	store, err := openStore(startupCtx, cfg, log)
	must(log, err, "open user store")
	defer store.close()

	healthChecks := []api.HealthCheck{{Name: cfg.StoreDriver, Check: store.ping}}

	// ── 4. Redis (optional) ───────────────────────────────────────────────
	var limiter ratelimit.Limiter
	if cfg.RedisURL != "" {
		rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
		must(log, err, "connect to redis")
		defer func() {
			log.Info("closing_redis_client")
			if cerr := rdb.Close(); cerr != nil {
				log.Error("redis_close_failed", slog.Any("error", cerr))
			}
		}()

		limiter = ratelimit.NewRedisLimiter(rdb, cfg.RateLimitBurst, constants.RateLimitWindow)
		healthChecks = append(healthChecks, api.HealthCheck{
			Name:  "redis",
			Check: func(ctx context.Context) error { return redisstore.Ping(ctx, rdb) },
		})
	} else {
		limiter = ratelimit.NewMemoryLimiter(appCtx, cfg.RateLimitRPS, cfg.RateLimitBurst)
	}

	// ── 5. Authentication ─────────────────────────────────────────────────
	tokens, err := sec.NewTokenService(sec.TokenConfig{
		Secret:     []byte(cfg.JWTSecret),
		Issuer:     constants.AuthIssuer,
		AccessTTL:  cfg.AccessTokenTTL,
		RefreshTTL: cfg.RefreshTokenTTL,
		EmbedEmail: true,
	})
	must(log, err, "initialize token service")

	extract := middleware.BearerExtractor
	if cfg.UsesCookies() {
		extract = middleware.CookieExtractor
	}

	authService := auth.NewService(store.users, sec.NewBcryptHasher(0), tokens, cfg.UsesCookies())
	authHandler := auth.NewHandler(authService, auth.HandlerConfig{
		UseCookies:   cfg.UsesCookies(),
		CookieSecure: cfg.CookieSecure,
		CookieDomain: cfg.CookieDomain,
	})

	// ── 6. HTTP Server ────────────────────────────────────────────────────
	liveness, readiness := api.NewHealthHandlers(healthChecks, log)

	server := api.NewServer(cfg, log, api.Guards{
		Limiter:      limiter,
		Authenticate: middleware.Authenticate(extract, tokens, store.users),
	}, api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Auth:      authHandler,
	})

	// ── 7. Graceful Shutdown ──────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case sig := <-quit:
		log.Info("shutdown_signal_received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server_startup_error", slog.Any("error", err))
	}

	log.Info("shutting_down_server", slog.Duration("timeout", constants.ShutdownTimeout))
	appCancel()

	if err := server.Shutdown(constants.ShutdownTimeout); err != nil {
		log.Error("shutdown_error", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server_stopped_cleanly")
}

// newLogger builds the JSON logger and installs it as the default.
func newLogger(level slog.Level) *slog.Logger {
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	})).With(slog.String("app", constants.AppName))

	slog.SetDefault(log)
	return log
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is limited to startup wiring. After startup, errors are returned.
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup_failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
