// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Accountd Contributors

package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store is a Redis-backed keyed store with per-entry expiry.
// The client is shared and owned by the caller; Store never closes it.
type Store[K ~string, V any] struct {
	client redis.UniversalClient
	codec  Codec[V]
}

// NewStore creates a Store over an already connected client.
func NewStore[K ~string, V any](client redis.UniversalClient, codec Codec[V]) *Store[K, V] {
	return &Store[K, V]{client: client, codec: codec}
}

// SetWithTTL writes value under key with SET EX, replacing any previous
// entry and resetting its TTL. The TTL is truncated to whole seconds.
func (s *Store[K, V]) SetWithTTL(ctx context.Context, key K, value V, ttl time.Duration) error {
	ttl, err := wholeSeconds(ttl)
	if err != nil {
		return err
	}
	if err := s.client.SetEx(ctx, string(key), s.codec.Encode(value), ttl).Err(); err != nil {
		return transportError("set", string(key), err)
	}
	return nil
}

// Get returns the decoded value for key. The bool is false if the key does
// not exist.
func (s *Store[K, V]) Get(ctx context.Context, key K) (V, bool, error) {
	var zero V

	raw, err := s.client.Get(ctx, string(key)).Result()
	if errors.Is(err, redis.Nil) {
		return zero, false, nil
	}
	if err != nil {
		return zero, false, transportError("get", string(key), err)
	}

	value, err := s.codec.Decode(raw)
	if err != nil {
		return zero, false, conversionError(string(key), err)
	}
	return value, true, nil
}

// TTL returns the remaining lifetime of key in seconds, or TTLNotFound /
// TTLNoExpiry.
func (s *Store[K, V]) TTL(ctx context.Context, key K) (int64, error) {
	// Raw TTL reply keeps the -2/-1 sentinels as plain integers.
	secs, err := s.client.Do(ctx, "TTL", string(key)).Int64()
	if err != nil {
		return 0, transportError("ttl", string(key), err)
	}
	return secs, nil
}

// Delete removes key and returns the number of entries removed.
func (s *Store[K, V]) Delete(ctx context.Context, key K) (int64, error) {
	n, err := s.client.Del(ctx, string(key)).Result()
	if err != nil {
		return 0, transportError("delete", string(key), err)
	}
	return n, nil
}

// Ping checks connectivity to the cache tier.
func (s *Store[K, V]) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return transportError("ping", "", err)
	}
	return nil
}
