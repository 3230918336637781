// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Accountd Contributors

package user

import (
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/samber/oops"
)

// MaxNameLength is the longest accepted display name, in characters.
const MaxNameLength = 100

// RegisterInput is the data needed to register a user.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// Validate checks the input and returns an error wrapping ErrValidation
// naming the first offending field.
func (in RegisterInput) Validate() error {
	name := strings.TrimSpace(in.Name)
	switch {
	case name == "":
		return invalid("name", "name is required")
	case utf8.RuneCountInString(name) > MaxNameLength:
		return invalid("name", "name must be at most 100 characters")
	}

	if in.Email == "" {
		return invalid("email", "email is required")
	}
	addr, err := mail.ParseAddress(in.Email)
	if err != nil || addr.Address != in.Email {
		return invalid("email", "email is not a valid address")
	}

	if in.Password == "" {
		return invalid("password", "password is required")
	}
	return nil
}

func invalid(field, msg string) error {
	return oops.Code("USER_INVALID_INPUT").
		With("field", field).
		Wrapf(ErrValidation, "%s", msg)
}
