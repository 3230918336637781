// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Accountd Contributors

package user

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/accountd/accountd/internal/auth"
)

// Service registers, lists and deletes users.
type Service struct {
	repo   Repository
	hasher auth.PasswordHasher
	now    func() time.Time
	logger *slog.Logger
}

// NewService creates a Service.
func NewService(repo Repository, hasher auth.PasswordHasher, logger *slog.Logger) (*Service, error) {
	if repo == nil {
		return nil, oops.Code("USER_INVALID_CONFIG").Errorf("repository is required")
	}
	if hasher == nil {
		return nil, oops.Code("USER_INVALID_CONFIG").Errorf("password hasher is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, hasher: hasher, now: time.Now, logger: logger}, nil
}

// Register validates in, hashes the password and stores a new user.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*User, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, oops.Code("USER_HASH_FAILED").
			With("operation", "hash password").
			Wrap(err)
	}

	now := s.now().UTC().Truncate(time.Microsecond)
	row := NewUser{
		ID:           ulid.Make(),
		Name:         strings.TrimSpace(in.Name),
		Email:        in.Email,
		PasswordHash: hash,
		CreatedAt:    now,
	}
	if err := s.repo.Create(ctx, row); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "user registered", "user_id", row.ID.String())
	return &User{
		ID:        row.ID,
		Name:      row.Name,
		Email:     row.Email,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// List returns all users ordered by creation time.
func (s *Service) List(ctx context.Context) ([]*User, error) {
	return s.repo.List(ctx)
}

// Delete removes a user. Access tokens already issued to the user stay
// valid until they expire or are revoked.
func (s *Service) Delete(ctx context.Context, id ulid.ULID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "user deleted", "user_id", id.String())
	return nil
}
