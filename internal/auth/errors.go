// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Accountd Contributors

package auth

import "errors"

// Error kinds surfaced by the session subsystem. Returned errors are oops
// errors wrapping one of these, so callers match with errors.Is.
var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized covers a missing, expired or revoked token as well as
	// an unknown email or wrong password. The cases are never distinguished.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrStorage marks a relational store failure.
	ErrStorage = errors.New("storage failure")

	// ErrCache marks a token cache failure.
	ErrCache = errors.New("cache failure")

	// ErrConversion marks a stored value that cannot be parsed back into its
	// typed form.
	ErrConversion = errors.New("stored value conversion failed")
)
