// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Accountd Contributors

// Package postgres implements user.Repository over the users table.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/accountd/accountd/internal/store"
	"github.com/accountd/accountd/internal/user"
)

// UserRepository implements user.Repository using PostgreSQL.
type UserRepository struct {
	pool store.Pool
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(pool store.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

// Create inserts a new user row.
func (r *UserRepository) Create(ctx context.Context, u user.NewUser) error {
	tag, err := r.pool.Exec(ctx, `
		INSERT INTO users (id, name, email, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
	`,
		u.ID.String(),
		u.Name,
		u.Email,
		u.PasswordHash,
		u.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return oops.Code("USER_EMAIL_TAKEN").
				With("user_id", u.ID.String()).
				Wrap(user.ErrEmailTaken)
		}
		return oops.Code("USER_CREATE_FAILED").
			With("operation", "insert user").
			With("user_id", u.ID.String()).
			Wrap(fmt.Errorf("%w: %w", user.ErrStorage, err))
	}
	if tag.RowsAffected() == 0 {
		return oops.Code("USER_NOT_CREATED").
			With("user_id", u.ID.String()).
			Wrapf(user.ErrStorage, "no user has been created")
	}
	return nil
}

// List returns every user ordered by creation time.
func (r *UserRepository) List(ctx context.Context) ([]*user.User, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, email, created_at, updated_at
		FROM users
		ORDER BY created_at, id
	`)
	if err != nil {
		return nil, oops.Code("USER_LIST_FAILED").
			With("operation", "select users").
			Wrap(fmt.Errorf("%w: %w", user.ErrStorage, err))
	}
	defer rows.Close()

	users := make([]*user.User, 0)
	for rows.Next() {
		var (
			idStr string
			u     user.User
		)
		if err := rows.Scan(&idStr, &u.Name, &u.Email, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, oops.Code("USER_LIST_FAILED").
				With("operation", "scan user row").
				Wrap(fmt.Errorf("%w: %w", user.ErrStorage, err))
		}
		u.ID, err = ulid.ParseStrict(idStr)
		if err != nil {
			return nil, oops.Code("USER_CORRUPT_ID").
				With("id", idStr).
				Wrap(err)
		}
		users = append(users, &u)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("USER_LIST_FAILED").
			With("operation", "iterate users").
			Wrap(fmt.Errorf("%w: %w", user.ErrStorage, err))
	}
	return users, nil
}

// Delete removes the user with id.
func (r *UserRepository) Delete(ctx context.Context, id ulid.ULID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id.String())
	if err != nil {
		return oops.Code("USER_DELETE_FAILED").
			With("operation", "delete user").
			With("user_id", id.String()).
			Wrap(fmt.Errorf("%w: %w", user.ErrStorage, err))
	}
	if tag.RowsAffected() == 0 {
		return oops.Code("USER_NOT_FOUND").
			With("user_id", id.String()).
			Wrap(user.ErrNotFound)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}

// Compile-time interface check.
var _ user.Repository = (*UserRepository)(nil)
