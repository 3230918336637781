// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Accountd Contributors

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/accountd/accountd/internal/cache"
	"github.com/accountd/accountd/internal/observability"
)

// Service authenticates credentials and manages access tokens.
//
// Token lifecycle: absent -> active (StoreToken/IssueToken) -> absent
// (DeleteToken or TTL expiry). There is no renewal. A user may hold any
// number of live tokens at once.
//
// Service keeps no mutable state of its own; concurrent calls are safe as
// long as the TokenCache is. The store and cache handles are shared and are
// never closed here.
type Service struct {
	credentials CredentialStore
	tokens      TokenCache
	hasher      PasswordHasher
	tokenTTL    time.Duration
	logger      *slog.Logger
}

// NewAuthService creates a new Service using the default logger.
// A zero tokenTTL selects DefaultTokenTTL.
func NewAuthService(credentials CredentialStore, tokens TokenCache, hasher PasswordHasher, tokenTTL time.Duration) (*Service, error) {
	return NewAuthServiceWithLogger(credentials, tokens, hasher, tokenTTL, slog.Default())
}

// NewAuthServiceWithLogger creates a new Service with an explicit logger.
func NewAuthServiceWithLogger(credentials CredentialStore, tokens TokenCache, hasher PasswordHasher, tokenTTL time.Duration, logger *slog.Logger) (*Service, error) {
	if credentials == nil {
		return nil, oops.Code("AUTH_INVALID_CONFIG").Errorf("credential store is required")
	}
	if tokens == nil {
		return nil, oops.Code("AUTH_INVALID_CONFIG").Errorf("token cache is required")
	}
	if hasher == nil {
		return nil, oops.Code("AUTH_INVALID_CONFIG").Errorf("password hasher is required")
	}
	if logger == nil {
		return nil, oops.Code("AUTH_INVALID_CONFIG").Errorf("logger is required")
	}
	if tokenTTL == 0 {
		tokenTTL = DefaultTokenTTL
	}
	if tokenTTL < MinTokenTTL {
		return nil, oops.Code("AUTH_INVALID_CONFIG").
			With("token_ttl", tokenTTL.String()).
			Errorf("token TTL must be at least %s", MinTokenTTL)
	}

	return &Service{
		credentials: credentials,
		tokens:      tokens,
		hasher:      hasher,
		tokenTTL:    tokenTTL.Truncate(time.Second),
		logger:      logger,
	}, nil
}

// TokenLifetime returns the lifetime given to every minted token.
func (s *Service) TokenLifetime() time.Duration {
	return s.tokenTTL
}

// dummyPasswordHash is verified when the email is unknown so that a miss
// costs the same as a wrong password. It never matches any password.
//
//nolint:gosec // G101: intentionally fake hash, not a credential.
const dummyPasswordHash = "$argon2id$v=19$m=65536,t=1,p=4$AAAAAAAAAAAAAAAAAAAAAA$AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"

// Authenticate returns the credential registered under email.
// Returns (nil, nil) when no account has that email.
func (s *Service) Authenticate(ctx context.Context, email string) (*Credential, error) {
	cred, err := s.credentials.FindByEmail(ctx, email)
	if err != nil {
		kind := ErrStorage
		if errors.Is(err, ErrConversion) {
			kind = ErrConversion
		}
		return nil, oops.Code("AUTH_AUTHENTICATE_FAILED").
			With("operation", "find credential by email").
			Wrap(withKind(kind, err))
	}
	return cred, nil
}

// Login verifies email and password and mints a new access token.
// An unknown email and a wrong password both return ErrUnauthorized.
func (s *Service) Login(ctx context.Context, email, password string) (AccessToken, *Credential, error) {
	cred, err := s.Authenticate(ctx, email)
	if err != nil {
		return "", nil, err
	}

	targetHash := dummyPasswordHash
	if cred != nil {
		targetHash = cred.PasswordHash
	}

	valid, verifyErr := s.hasher.Verify(password, targetHash)
	if verifyErr != nil {
		if cred == nil {
			return "", nil, s.reject(ctx, "AUTH_INVALID_CREDENTIALS")
		}
		return "", nil, oops.Code("AUTH_LOGIN_FAILED").
			With("operation", "verify password").
			With("user_id", cred.ID.String()).
			Wrap(verifyErr)
	}

	if cred == nil || !valid {
		return "", nil, s.reject(ctx, "AUTH_INVALID_CREDENTIALS")
	}

	if s.hasher.NeedsUpgrade(cred.PasswordHash) {
		s.logger.InfoContext(ctx, "credential uses a legacy password hash",
			"user_id", cred.ID.String(),
		)
	}

	token, err := s.IssueToken(ctx, cred.ID)
	if err != nil {
		return "", nil, err
	}
	return token, cred, nil
}

// IssueToken mints a fresh random token for userID and stores it.
func (s *Service) IssueToken(ctx context.Context, userID ulid.ULID) (AccessToken, error) {
	token, err := GenerateAccessToken()
	if err != nil {
		return "", err
	}
	return s.StoreToken(ctx, userID, token)
}

// StoreToken writes token -> userID into the token cache with the configured
// TTL and returns the same token. Storing an existing token replaces its
// owner and resets its TTL; other tokens of the same user are untouched.
func (s *Service) StoreToken(ctx context.Context, userID ulid.ULID, token AccessToken) (AccessToken, error) {
	if token == "" {
		return "", oops.Code("SESSION_TOKEN_EMPTY").Errorf("access token cannot be empty")
	}
	if userID.Compare(ulid.ULID{}) == 0 {
		return "", oops.Code("SESSION_INVALID_USER").Errorf("user ID cannot be zero")
	}

	if err := s.tokens.SetWithTTL(ctx, token, userID, s.tokenTTL); err != nil {
		return "", oops.Code("SESSION_STORE_FAILED").
			With("operation", "store access token").
			With("user_id", userID.String()).
			Wrap(cacheKind(err))
	}

	observability.RecordSessionEvent(observability.SessionIssued)
	s.logger.DebugContext(ctx, "access token stored",
		"user_id", userID.String(),
		"ttl", s.tokenTTL.String(),
	)
	return token, nil
}

// ResolveToken returns the user owning token. A token that was never
// minted, has expired or was revoked returns ErrUnauthorized.
func (s *Service) ResolveToken(ctx context.Context, token AccessToken) (ulid.ULID, error) {
	if token == "" {
		return ulid.ULID{}, s.reject(ctx, "SESSION_UNAUTHORIZED")
	}

	userID, ok, err := s.tokens.Get(ctx, token)
	if err != nil {
		return ulid.ULID{}, oops.Code("SESSION_RESOLVE_FAILED").
			With("operation", "get access token").
			Wrap(cacheKind(err))
	}
	if !ok {
		return ulid.ULID{}, s.reject(ctx, "SESSION_UNAUTHORIZED")
	}
	return userID, nil
}

// TokenTTL returns the remaining lifetime of token in seconds, or -2 if it
// does not exist.
func (s *Service) TokenTTL(ctx context.Context, token AccessToken) (int64, error) {
	ttl, err := s.tokens.TTL(ctx, token)
	if err != nil {
		return 0, oops.Code("SESSION_TTL_FAILED").
			With("operation", "get access token ttl").
			Wrap(cacheKind(err))
	}
	return ttl, nil
}

// DeleteToken revokes token. If nothing was removed the token was never
// minted, already revoked or expired; all three return ErrUnauthorized.
// Of several concurrent revokes of one token exactly one succeeds.
func (s *Service) DeleteToken(ctx context.Context, token AccessToken) error {
	if token == "" {
		return s.reject(ctx, "SESSION_UNAUTHORIZED")
	}

	removed, err := s.tokens.Delete(ctx, token)
	if err != nil {
		return oops.Code("SESSION_DELETE_FAILED").
			With("operation", "delete access token").
			Wrap(cacheKind(err))
	}
	if removed == 0 {
		return s.reject(ctx, "SESSION_UNAUTHORIZED")
	}

	observability.RecordSessionEvent(observability.SessionRevoked)
	s.logger.DebugContext(ctx, "access token revoked")
	return nil
}

func (s *Service) reject(ctx context.Context, code string) error {
	observability.RecordSessionEvent(observability.SessionRejected)
	s.logger.DebugContext(ctx, "request rejected", "code", code)
	return oops.Code(code).Wrap(ErrUnauthorized)
}

// cacheKind tags a token cache error with ErrConversion or ErrCache.
func cacheKind(err error) error {
	if errors.Is(err, cache.ErrConversion) || errors.Is(err, ErrConversion) {
		return withKind(ErrConversion, err)
	}
	return withKind(ErrCache, err)
}

func withKind(kind, err error) error {
	if errors.Is(err, kind) {
		return err
	}
	return fmt.Errorf("%w: %w", kind, err)
}
