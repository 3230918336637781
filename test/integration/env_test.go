// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Accountd Contributors

//go:build integration

package integration

import (
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/accountd/accountd/internal/api"
	"github.com/accountd/accountd/internal/auth"
	authpostgres "github.com/accountd/accountd/internal/auth/postgres"
	"github.com/accountd/accountd/internal/cache"
	"github.com/accountd/accountd/internal/health"
	"github.com/accountd/accountd/internal/store"
	"github.com/accountd/accountd/internal/user"
	userpostgres "github.com/accountd/accountd/internal/user/postgres"
)

// testEnv holds the containers and the in-process API wired against them.
type testEnv struct {
	ctx      context.Context
	cancel   context.CancelFunc
	pg       *postgres.PostgresContainer
	redisC   testcontainers.Container
	pool     *pgxpool.Pool
	redis    *redis.Client
	server   *httptest.Server
	tokenTTL time.Duration
}

// setupTestEnv starts Postgres and Redis, applies migrations and serves the
// API on an httptest server.
func setupTestEnv(tokenTTL time.Duration) (*testEnv, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	env := &testEnv{ctx: ctx, cancel: cancel, tokenTTL: tokenTTL}

	var err error
	env.pg, err = postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("accountd_test"),
		postgres.WithUsername("accountd"),
		postgres.WithPassword("accountd"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		env.cleanup()
		return nil, err
	}

	env.redisC, err = testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		env.cleanup()
		return nil, err
	}

	connStr, err := env.pg.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		env.cleanup()
		return nil, err
	}

	migrator, err := store.NewMigrator(connStr)
	if err != nil {
		env.cleanup()
		return nil, err
	}
	if err := migrator.Up(); err != nil {
		_ = migrator.Close()
		env.cleanup()
		return nil, err
	}
	_ = migrator.Close()

	env.pool, err = store.Connect(ctx, store.ConnectOptions{URL: connStr, MaxRetries: 5, RetryBase: 200 * time.Millisecond})
	if err != nil {
		env.cleanup()
		return nil, err
	}

	host, err := env.redisC.Host(ctx)
	if err != nil {
		env.cleanup()
		return nil, err
	}
	port, err := env.redisC.MappedPort(ctx, "6379/tcp")
	if err != nil {
		env.cleanup()
		return nil, err
	}
	env.redis, err = cache.Connect(ctx, cache.ConnectOptions{Addr: host + ":" + port.Port(), MaxRetries: 5, RetryBase: 200 * time.Millisecond})
	if err != nil {
		env.cleanup()
		return nil, err
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	hasher := auth.NewArgon2idHasher()
	tokens := auth.NewRedisTokenCache(env.redis)

	sessions, err := auth.NewAuthServiceWithLogger(authpostgres.NewCredentialStore(env.pool), tokens, hasher, tokenTTL, logger)
	if err != nil {
		env.cleanup()
		return nil, err
	}
	users, err := user.NewService(userpostgres.NewUserRepository(env.pool), hasher, logger)
	if err != nil {
		env.cleanup()
		return nil, err
	}

	handler := api.NewHandler(sessions, users, health.NewChecker(env.pool, tokens), nil, logger)
	env.server = httptest.NewServer(api.NewServeMux(handler))

	return env, nil
}

// cleanup releases all test resources.
func (env *testEnv) cleanup() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if env.server != nil {
		env.server.Close()
	}
	if env.redis != nil {
		_ = env.redis.Close()
	}
	if env.pool != nil {
		env.pool.Close()
	}
	if env.redisC != nil {
		_ = env.redisC.Terminate(ctx)
	}
	if env.pg != nil {
		_ = env.pg.Terminate(ctx)
	}
	env.cancel()
}
