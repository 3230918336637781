// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Accountd Contributors

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisStore(t *testing.T) (*Store[string, int], *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	return NewStore[string, int](client, intCodec{}), mr
}

func TestStore_SetGet(t *testing.T) {
	ctx := context.Background()
	store, mr := newRedisStore(t)

	require.NoError(t, store.SetWithTTL(ctx, "a", 42, time.Hour))

	raw, err := mr.Get("a")
	require.NoError(t, err)
	assert.Equal(t, "42", raw)

	v, ok, err := store.Get(ctx, "a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 42, v)

	_, ok, err = store.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_TTLSentinels(t *testing.T) {
	ctx := context.Background()
	store, mr := newRedisStore(t)

	ttl, err := store.TTL(ctx, "missing")
	require.NoError(t, err)
	assert.Equal(t, TTLNotFound, ttl)

	require.NoError(t, mr.Set("forever", "1"))
	ttl, err = store.TTL(ctx, "forever")
	require.NoError(t, err)
	assert.Equal(t, TTLNoExpiry, ttl)

	require.NoError(t, store.SetWithTTL(ctx, "a", 1, 3600*time.Second))
	ttl, err = store.TTL(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, int64(3600), ttl)
}

func TestStore_Expiry(t *testing.T) {
	ctx := context.Background()
	store, mr := newRedisStore(t)

	require.NoError(t, store.SetWithTTL(ctx, "a", 1, 10*time.Second))
	mr.FastForward(10 * time.Second)

	_, ok, err := store.Get(ctx, "a")
	require.NoError(t, err)
	assert.False(t, ok)

	n, err := store.Delete(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestStore_TruncatesFractionalTTL(t *testing.T) {
	ctx := context.Background()
	store, mr := newRedisStore(t)

	require.NoError(t, store.SetWithTTL(ctx, "a", 1, 90*time.Second+700*time.Millisecond))
	assert.Equal(t, 90*time.Second, mr.TTL("a"))
}

func TestStore_RejectsSubSecondTTL(t *testing.T) {
	store, mr := newRedisStore(t)

	err := store.SetWithTTL(context.Background(), "a", 1, 500*time.Millisecond)
	require.ErrorIs(t, err, ErrInvalidTTL)
	assert.False(t, mr.Exists("a"))
}

func TestStore_Delete(t *testing.T) {
	ctx := context.Background()
	store, _ := newRedisStore(t)

	require.NoError(t, store.SetWithTTL(ctx, "a", 1, time.Minute))

	n, err := store.Delete(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = store.Delete(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestStore_DecodeFailure(t *testing.T) {
	ctx := context.Background()
	store, mr := newRedisStore(t)
	require.NoError(t, mr.Set("bad", "forty-two"))

	_, ok, err := store.Get(ctx, "bad")
	require.ErrorIs(t, err, ErrConversion)
	assert.NotErrorIs(t, err, ErrTransport)
	assert.False(t, ok)
}

func TestStore_TransportFailure(t *testing.T) {
	ctx := context.Background()
	store, mr := newRedisStore(t)
	mr.Close()

	err := store.SetWithTTL(ctx, "a", 1, time.Minute)
	require.ErrorIs(t, err, ErrTransport)

	_, _, err = store.Get(ctx, "a")
	require.ErrorIs(t, err, ErrTransport)

	_, err = store.TTL(ctx, "a")
	require.ErrorIs(t, err, ErrTransport)

	_, err = store.Delete(ctx, "a")
	require.ErrorIs(t, err, ErrTransport)

	require.ErrorIs(t, store.Ping(ctx), ErrTransport)
}

func TestConnect(t *testing.T) {
	t.Run("succeeds against a live server", func(t *testing.T) {
		mr := miniredis.RunT(t)
		client, err := Connect(context.Background(), ConnectOptions{Addr: mr.Addr(), MaxRetries: 1})
		require.NoError(t, err)
		t.Cleanup(func() { _ = client.Close() })
		assert.NoError(t, client.Ping(context.Background()).Err())
	})

	t.Run("fails after retries are exhausted", func(t *testing.T) {
		mr := miniredis.RunT(t)
		addr := mr.Addr()
		mr.Close()

		_, err := Connect(context.Background(), ConnectOptions{
			Addr:       addr,
			MaxRetries: 2,
			RetryBase:  time.Millisecond,
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "connection refused")
	})
}
