// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Accountd Contributors

package auth

import (
	"context"

	"github.com/oklog/ulid/v2"
)

// Credential is the identity and password hash of a registered account.
// The session subsystem only ever reads it.
type Credential struct {
	ID           ulid.ULID
	Email        string
	PasswordHash string
}

// CredentialStore looks up credentials by email.
type CredentialStore interface {
	// FindByEmail returns the credential whose email matches exactly.
	// Returns (nil, nil) when no account has that email; an error means the
	// store itself failed.
	FindByEmail(ctx context.Context, email string) (*Credential, error)
}
