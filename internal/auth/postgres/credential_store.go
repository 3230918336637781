// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Accountd Contributors

// Package postgres implements auth.CredentialStore over the users table.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/accountd/accountd/internal/auth"
	"github.com/accountd/accountd/internal/store"
)

// CredentialStore reads credentials from PostgreSQL. It never writes.
type CredentialStore struct {
	pool store.Pool
}

// NewCredentialStore creates a CredentialStore over a shared pool.
func NewCredentialStore(pool store.Pool) *CredentialStore {
	return &CredentialStore{pool: pool}
}

// FindByEmail returns the credential whose email matches exactly, or
// (nil, nil) if there is none.
func (s *CredentialStore) FindByEmail(ctx context.Context, email string) (*auth.Credential, error) {
	var (
		idStr string
		cred  auth.Credential
	)
	err := s.pool.QueryRow(ctx,
		`SELECT id, email, password_hash FROM users WHERE email = $1`,
		email,
	).Scan(&idStr, &cred.Email, &cred.PasswordHash)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, oops.Code("CREDENTIAL_LOOKUP_FAILED").
			With("operation", "select credential by email").
			Wrap(fmt.Errorf("%w: %w", auth.ErrStorage, err))
	}

	cred.ID, err = ulid.ParseStrict(idStr)
	if err != nil {
		return nil, oops.Code("CREDENTIAL_CORRUPT_ID").
			With("operation", "parse user id").
			With("id", idStr).
			Wrap(fmt.Errorf("%w: %w", auth.ErrConversion, err))
	}

	return &cred, nil
}

// Compile-time interface check.
var _ auth.CredentialStore = (*CredentialStore)(nil)
