// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Accountd Contributors

package user

import "errors"

var (
	// ErrNotFound is returned when the user does not exist.
	ErrNotFound = errors.New("user not found")

	// ErrEmailTaken is returned when registering an email that is already in use.
	ErrEmailTaken = errors.New("email already registered")

	// ErrValidation is returned when registration input is rejected.
	ErrValidation = errors.New("invalid user input")

	// ErrStorage marks a relational store failure.
	ErrStorage = errors.New("storage failure")
)
