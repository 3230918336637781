// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Accountd Contributors

package auth

import (
	"github.com/oklog/ulid/v2"
	"github.com/redis/go-redis/v9"

	"github.com/accountd/accountd/internal/cache"
)

// Compile-time checks that both cache backends satisfy TokenCache.
var (
	_ TokenCache = (*cache.Store[AccessToken, ulid.ULID])(nil)
	_ TokenCache = (*cache.MemoryStore[AccessToken, ulid.ULID])(nil)
)

// NewRedisTokenCache returns a TokenCache stored in Redis. Keys are the
// token itself; values are the owner's ULID string.
func NewRedisTokenCache(client redis.UniversalClient) *cache.Store[AccessToken, ulid.ULID] {
	return cache.NewStore[AccessToken, ulid.ULID](client, UserIDCodec{})
}

// NewMemoryTokenCache returns an in-process TokenCache.
func NewMemoryTokenCache() *cache.MemoryStore[AccessToken, ulid.ULID] {
	return cache.NewMemoryStore[AccessToken, ulid.ULID](UserIDCodec{})
}
