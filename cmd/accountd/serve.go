// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Accountd Contributors

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

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/accountd/accountd/internal/api"
	"github.com/accountd/accountd/internal/auth"
	authpostgres "github.com/accountd/accountd/internal/auth/postgres"
	"github.com/accountd/accountd/internal/cache"
	"github.com/accountd/accountd/internal/config"
	"github.com/accountd/accountd/internal/health"
	"github.com/accountd/accountd/internal/logging"
	"github.com/accountd/accountd/internal/observability"
	"github.com/accountd/accountd/internal/store"
	"github.com/accountd/accountd/internal/user"
	userpostgres "github.com/accountd/accountd/internal/user/postgres"
)

const shutdownTimeout = 5 * time.Second

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the accountd API server",
		Long: `Start the HTTP API. Connects to Postgres and the token cache,
then serves until SIGINT or SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(resolveConfigFile(), cmd.Flags())
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runServeWithDeps(ctx, cfg, nil)
		},
	}

	config.RegisterServeFlags(cmd.Flags())

	return cmd
}

// runServeWithDeps runs the server until ctx is cancelled or a listener
// fails. If deps is nil, default implementations are used.
func runServeWithDeps(ctx context.Context, cfg *config.Config, deps *ServeDeps) error {
	if deps == nil {
		deps = &ServeDeps{}
	}
	deps.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := logging.SetDefault(logging.Options{
		Service: "accountd",
		Version: version,
		Format:  cfg.Log.Format,
		Level:   cfg.Log.Level,
	}, deps.LogOutput)
	if err != nil {
		return err
	}

	logger.InfoContext(ctx, "starting accountd",
		"http_addr", cfg.HTTP.Addr,
		"cache_driver", cfg.Cache.Driver,
		"token_ttl", cfg.Auth.TokenTTL.String(),
	)

	pool, err := deps.PoolFactory(ctx, store.ConnectOptions{
		URL:        cfg.Database.URL,
		MaxConns:   cfg.Database.MaxConns,
		MaxRetries: cfg.Startup.MaxRetries,
		RetryBase:  cfg.Startup.RetryBase,
	})
	if err != nil {
		return oops.With("operation", "connect to database").Wrap(err)
	}
	defer pool.Close()
	logger.InfoContext(ctx, "connected to database")

	var (
		tokens      auth.TokenCache
		cachePinger health.Pinger
	)
	switch cfg.Cache.Driver {
	case config.CacheDriverMemory:
		tokens = auth.NewMemoryTokenCache()
		logger.WarnContext(ctx, "using in-process token cache; tokens are lost on restart")
	default:
		client, err := deps.RedisFactory(ctx, cache.ConnectOptions{
			Addr:       cfg.Redis.Addr,
			Password:   cfg.Redis.Password,
			DB:         cfg.Redis.DB,
			MaxRetries: cfg.Startup.MaxRetries,
			RetryBase:  cfg.Startup.RetryBase,
		})
		if err != nil {
			return oops.With("operation", "connect to redis").Wrap(err)
		}
		defer func() {
			if closeErr := client.Close(); closeErr != nil {
				logger.Warn("error closing redis client", "error", closeErr)
			}
		}()
		redisTokens := auth.NewRedisTokenCache(client)
		tokens, cachePinger = redisTokens, redisTokens
		logger.InfoContext(ctx, "connected to redis", "addr", cfg.Redis.Addr)
	}

	hasher := auth.NewArgon2idHasher()
	sessions, err := auth.NewAuthServiceWithLogger(
		authpostgres.NewCredentialStore(pool), tokens, hasher, cfg.Auth.TokenTTL, logger)
	if err != nil {
		return err
	}
	users, err := user.NewService(userpostgres.NewUserRepository(pool), hasher, logger)
	if err != nil {
		return err
	}
	checker := health.NewChecker(pool, cachePinger)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		obsServer ObservabilityServer
		metrics   *observability.Metrics
	)
	if cfg.Metrics.Addr != "" {
		obsServer = deps.ObservabilityServerFactory(cfg.Metrics.Addr, checker.Probes()...)
		obsErrChan, err := obsServer.Start()
		if err != nil {
			return oops.Code("OBSERVABILITY_START_FAILED").With("addr", cfg.Metrics.Addr).Wrap(err)
		}
		go monitorServerErrors(ctx, cancel, obsErrChan, "observability")
		metrics = obsServer.Metrics()
	}

	listener, err := deps.ListenerFactory("tcp", cfg.HTTP.Addr)
	if err != nil {
		stopObservability(logger, obsServer)
		return oops.Code("HTTP_LISTEN_FAILED").With("addr", cfg.HTTP.Addr).Wrap(err)
	}

	httpSrv := &http.Server{
		Handler:           api.NewServeMux(api.NewHandler(sessions, users, checker, metrics, logger)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		if serveErr := httpSrv.Serve(listener); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			errChan <- serveErr
		}
	}()

	addr := listener.Addr().String()
	logger.InfoContext(ctx, "accountd ready", "http_addr", addr)
	if deps.OnReady != nil {
		deps.OnReady(addr)
	}

	var serveErr error
	select {
	case err := <-errChan:
		serveErr = oops.Code("HTTP_SERVE_FAILED").With("addr", addr).Wrap(err)
	case <-ctx.Done():
		logger.Info("shutting down")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("error stopping http server", "error", err)
	}
	stopObservability(logger, obsServer)

	logger.Info("shutdown complete")
	return serveErr
}

func stopObservability(logger *slog.Logger, obsServer ObservabilityServer) {
	if obsServer == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := obsServer.Stop(ctx); err != nil {
		logger.Warn("error stopping observability server", "error", err)
	}
}

// monitorServerErrors cancels ctx when a background server reports an error.
func monitorServerErrors(ctx context.Context, cancel context.CancelFunc, errCh <-chan error, serverName string) {
	select {
	case err, ok := <-errCh:
		if !ok {
			return
		}
		if err != nil {
			slog.Error("server error, triggering shutdown",
				"server", serverName,
				"error", err,
			)
			cancel()
		}
	case <-ctx.Done():
	}
}
