// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Accountd Contributors

package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Access token configuration.
const (
	AccessTokenBytes   = 32        // 32 bytes = 64 hex chars
	DefaultTokenTTL    = time.Hour // used when no TTL is configured
	MinTokenTTL        = time.Second
	bearerPrefixLength = len("Bearer ")
)

// AccessToken is an opaque, unguessable session token. It is never stored
// relationally; it only exists as a token cache key.
type AccessToken string

// String returns the token value.
func (t AccessToken) String() string {
	return string(t)
}

// GenerateAccessToken creates a new random access token.
func GenerateAccessToken() (AccessToken, error) {
	tokenBytes := make([]byte, AccessTokenBytes)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", oops.Code("SESSION_TOKEN_GENERATE_FAILED").
			With("operation", "crypto/rand.Read").
			With("requested_bytes", AccessTokenBytes).
			Wrap(err)
	}
	return AccessToken(hex.EncodeToString(tokenBytes)), nil
}

// ParseBearer extracts the token from an Authorization header value of the
// form "Bearer <token>". The scheme is matched case-insensitively. Returns
// false if the header is not a bearer token.
func ParseBearer(header string) (AccessToken, bool) {
	if len(header) <= bearerPrefixLength {
		return "", false
	}
	if header[bearerPrefixLength-1] != ' ' || !strings.EqualFold(header[:bearerPrefixLength-1], "Bearer") {
		return "", false
	}
	return AccessToken(header[bearerPrefixLength:]), true
}

// TokenCache maps access tokens to the owning user with a per-entry TTL.
// Implementations must treat each key as a linearizable single-key store.
type TokenCache interface {
	// SetWithTTL writes the mapping, replacing any existing entry and its TTL.
	SetWithTTL(ctx context.Context, token AccessToken, userID ulid.ULID, ttl time.Duration) error

	// Get returns the owner of token. The bool is false when the token is
	// absent or expired.
	Get(ctx context.Context, token AccessToken) (ulid.ULID, bool, error)

	// TTL returns the remaining lifetime in seconds: -2 if the token does not
	// exist, -1 if it exists without expiry.
	TTL(ctx context.Context, token AccessToken) (int64, error)

	// Delete removes the token and returns how many entries were removed.
	Delete(ctx context.Context, token AccessToken) (int64, error)
}

// UserIDCodec converts user identities to and from their cached string form.
type UserIDCodec struct{}

// Encode returns the canonical ULID string.
func (UserIDCodec) Encode(id ulid.ULID) string {
	return id.String()
}

// Decode parses a cached value back into a ULID.
func (UserIDCodec) Decode(s string) (ulid.ULID, error) {
	id, err := ulid.ParseStrict(s)
	if err != nil {
		return ulid.ULID{}, oops.Code("SESSION_INVALID_USER_ID").
			With("value", s).
			Wrap(err)
	}
	return id, nil
}
