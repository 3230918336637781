// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Accountd Contributors

package main

import (
	"context"
	"io"
	"net"

	"github.com/redis/go-redis/v9"

	"github.com/accountd/accountd/internal/cache"
	"github.com/accountd/accountd/internal/observability"
	"github.com/accountd/accountd/internal/store"
)

// ServeDeps contains injectable dependencies for the serve command.
// All fields with nil values will use their default implementations.
type ServeDeps struct {
	// PoolFactory opens the Postgres pool.
	// Default: store.Connect
	PoolFactory func(ctx context.Context, opts store.ConnectOptions) (DBPool, error)

	// RedisFactory opens the Redis client for the token cache.
	// Default: cache.Connect
	RedisFactory func(ctx context.Context, opts cache.ConnectOptions) (redis.UniversalClient, error)

	// ObservabilityServerFactory creates an observability server.
	// Default: observability.NewServer
	ObservabilityServerFactory func(addr string, probes ...observability.Probe) ObservabilityServer

	// ListenerFactory creates the API listener.
	// Default: net.Listen
	ListenerFactory func(network, address string) (net.Listener, error)

	// LogOutput receives log lines.
	// Default: os.Stderr
	LogOutput io.Writer

	// OnReady is called with the bound API address once serving starts.
	OnReady func(addr string)
}

// DBPool is the pool handle serve owns: repository access plus Close.
type DBPool interface {
	store.Pool
	Close()
}

// ObservabilityServer interface wraps the methods used from observability.Server.
type ObservabilityServer interface {
	Start() (<-chan error, error)
	Stop(ctx context.Context) error
	Addr() string
	Metrics() *observability.Metrics
}

func (d *ServeDeps) applyDefaults() {
	if d.PoolFactory == nil {
		d.PoolFactory = func(ctx context.Context, opts store.ConnectOptions) (DBPool, error) {
			return store.Connect(ctx, opts)
		}
	}
	if d.RedisFactory == nil {
		d.RedisFactory = func(ctx context.Context, opts cache.ConnectOptions) (redis.UniversalClient, error) {
			return cache.Connect(ctx, opts)
		}
	}
	if d.ObservabilityServerFactory == nil {
		d.ObservabilityServerFactory = func(addr string, probes ...observability.Probe) ObservabilityServer {
			return observability.NewServer(addr, probes...)
		}
	}
	if d.ListenerFactory == nil {
		d.ListenerFactory = net.Listen
	}
}
