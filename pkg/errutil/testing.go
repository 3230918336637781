// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Accountd Contributors

package errutil

import (
	"fmt"
	"testing"

	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// AssertErrorCode asserts that err is an oops error carrying code.
func AssertErrorCode(t testing.TB, err error, code string) {
	t.Helper()
	require.Error(t, err)
	_, ok := oops.AsOops(err)
	require.Truef(t, ok, "expected an oops error, got %T: %v", err, err)
	assert.Equal(t, code, Code(err))
}

// AssertErrorKind asserts that err matches the kind sentinel with errors.Is
// and carries code. Service errors in this module are always both.
func AssertErrorKind(t testing.TB, err, kind error, code string) {
	t.Helper()
	require.ErrorIs(t, err, kind)
	AssertErrorCode(t, err, code)
}

// AssertErrorContext asserts that the oops context of err holds key = value.
func AssertErrorContext(t testing.TB, err error, key string, value any) {
	t.Helper()
	oopsErr, ok := oops.AsOops(err)
	require.Truef(t, ok, "expected an oops error, got %T: %v", err, err)
	got, found := oopsErr.Context()[key]
	require.Truef(t, found, "context key %q missing from %v", key, oopsErr.Context())
	assert.Equal(t, value, got)
}

// AssertRedacted asserts that secret appears neither in the message of err
// nor in any value of its oops context. Tokens and passwords must never
// reach the logs through an error.
func AssertRedacted(t testing.TB, err error, secret string) {
	t.Helper()
	require.Error(t, err)
	assert.NotContains(t, err.Error(), secret)
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return
	}
	for key, value := range oopsErr.Context() {
		assert.NotContainsf(t, fmt.Sprint(value), secret, "context key %q", key)
	}
}
