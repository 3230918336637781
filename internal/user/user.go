// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Accountd Contributors

// Package user manages registered accounts.
package user

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"
)

// User is a registered account. The password hash is never exposed here;
// it is only read back through auth.CredentialStore.
type User struct {
	ID        ulid.ULID
	Name      string
	Email     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewUser holds the row written on registration.
type NewUser struct {
	ID           ulid.ULID
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// Repository persists users.
type Repository interface {
	// Create inserts a user. Returns ErrEmailTaken if the email is in use.
	Create(ctx context.Context, u NewUser) error

	// List returns every user ordered by creation time.
	List(ctx context.Context) ([]*User, error)

	// Delete removes a user. Returns ErrNotFound if no row matched.
	Delete(ctx context.Context, id ulid.ULID) error
}
