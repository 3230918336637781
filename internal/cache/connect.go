// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Accountd Contributors

package cache

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"
)

// ConnectOptions configures the Redis client created by Connect.
type ConnectOptions struct {
	Addr       string
	Password   string
	DB         int
	MaxRetries uint64
	RetryBase  time.Duration
}

// Connect creates a Redis client and waits until it answers PING, backing
// off exponentially between attempts. The caller owns the returned client.
func Connect(ctx context.Context, opts ConnectOptions) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	base := opts.RetryBase
	if base <= 0 {
		base = 500 * time.Millisecond
	}
	backoff := retry.WithMaxRetries(opts.MaxRetries, retry.NewExponential(base))

	attempt := 0
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		if err := client.Ping(ctx).Err(); err != nil {
			slog.WarnContext(ctx, "redis not reachable yet",
				"addr", opts.Addr,
				"attempt", attempt,
				"error", err,
			)
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		_ = client.Close() //nolint:errcheck // connect error takes precedence
		return nil, oops.Code("CACHE_CONNECT_FAILED").
			With("addr", opts.Addr).
			With("attempts", attempt).
			Wrap(err)
	}

	return client, nil
}
