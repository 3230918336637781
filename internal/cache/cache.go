// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Accountd Contributors

// Package cache provides keyed storage with per-entry expiry.
//
// Two implementations share the same contract: Store talks to Redis and
// MemoryStore keeps entries in process. Both are generic over a string-like
// key type and a value type, with values serialised through a Codec.
//
// TTL follows the Redis convention: TTLNotFound (-2) means the key does not
// exist, TTLNoExpiry (-1) means it exists without an expiry.
package cache

import (
	"errors"
	"fmt"
	"time"

	"github.com/samber/oops"
)

// TTL sentinel values, identical to the ones Redis returns.
const (
	TTLNotFound int64 = -2
	TTLNoExpiry int64 = -1
)

var (
	// ErrTransport marks a failure talking to the cache tier. Callers should
	// treat it as retryable and surface it.
	ErrTransport = errors.New("cache transport failure")

	// ErrConversion marks a stored value that the codec cannot decode.
	ErrConversion = errors.New("cache value conversion failed")

	// ErrInvalidTTL is returned when a TTL shorter than one second is requested.
	ErrInvalidTTL = errors.New("ttl must be at least one second")
)

// Codec converts values to and from their stored string form.
type Codec[V any] interface {
	Encode(v V) string
	Decode(s string) (V, error)
}

// StringCodec stores strings as is.
type StringCodec struct{}

// Encode returns s unchanged.
func (StringCodec) Encode(s string) string { return s }

// Decode returns s unchanged.
func (StringCodec) Decode(s string) (string, error) { return s, nil }

// wholeSeconds validates ttl and truncates it to whole seconds.
func wholeSeconds(ttl time.Duration) (time.Duration, error) {
	if ttl < time.Second {
		return 0, oops.Code("CACHE_INVALID_TTL").
			With("ttl", ttl.String()).
			Wrap(ErrInvalidTTL)
	}
	return ttl.Truncate(time.Second), nil
}

func transportError(operation, key string, err error) error {
	return oops.Code("CACHE_TRANSPORT_FAILED").
		With("operation", operation).
		With("key_len", len(key)).
		Wrapf(fmt.Errorf("%w: %w", ErrTransport, err), "cache %s", operation)
}

func conversionError(key string, err error) error {
	return oops.Code("CACHE_CONVERSION_FAILED").
		With("operation", "decode value").
		With("key_len", len(key)).
		Wrapf(fmt.Errorf("%w: %w", ErrConversion, err), "cache decode")
}
