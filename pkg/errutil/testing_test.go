// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Accountd Contributors

package errutil_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"

	"github.com/accountd/accountd/pkg/errutil"
)

// recordingT captures assertion failures instead of failing the test.
type recordingT struct {
	testing.TB
	failed bool
}

func (r *recordingT) Helper()               {}
func (r *recordingT) Name() string          { return "recording" }
func (r *recordingT) Errorf(string, ...any) { r.failed = true }
func (r *recordingT) FailNow()              { r.failed = true }

var errUnauthorized = errors.New("unauthorized")

func rejected() error {
	return oops.Code("SESSION_UNAUTHORIZED").Wrap(errUnauthorized)
}

func TestAssertErrorKind(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		kind   error
		code   string
		failed bool
	}{
		{name: "kind and code match", err: rejected(), kind: errUnauthorized, code: "SESSION_UNAUTHORIZED"},
		{name: "wrong code", err: rejected(), kind: errUnauthorized, code: "AUTH_INVALID_CREDENTIALS", failed: true},
		{name: "wrong kind", err: rejected(), kind: errors.New("cache failure"), code: "SESSION_UNAUTHORIZED", failed: true},
		{name: "plain error", err: fmt.Errorf("wrapped: %w", errUnauthorized), kind: errUnauthorized, code: "SESSION_UNAUTHORIZED", failed: true},
		{name: "nil error", kind: errUnauthorized, code: "SESSION_UNAUTHORIZED", failed: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recordingT{}
			errutil.AssertErrorKind(rec, tt.err, tt.kind, tt.code)
			assert.Equal(t, tt.failed, rec.failed)
		})
	}
}

func TestAssertErrorContext(t *testing.T) {
	err := oops.Code("CACHE_TRANSPORT_FAILED").
		With("operation", "get").
		With("key_len", 64).
		Errorf("cache get")

	errutil.AssertErrorContext(t, err, "operation", "get")

	rec := &recordingT{}
	errutil.AssertErrorContext(rec, err, "key", "tok-123")
	assert.True(t, rec.failed, "missing key must fail")

	rec = &recordingT{}
	errutil.AssertErrorContext(rec, err, "key_len", 32)
	assert.True(t, rec.failed, "wrong value must fail")
}

func TestAssertRedacted(t *testing.T) {
	errutil.AssertRedacted(t, oops.Code("CACHE_TRANSPORT_FAILED").With("key_len", 7).Errorf("cache get"), "tok-123")

	leaks := map[string]error{
		"message": oops.Code("SESSION_STORE_FAILED").Errorf("store tok-123"),
		"context": oops.Code("SESSION_STORE_FAILED").With("token", "tok-123").Errorf("store token"),
	}
	for name, err := range leaks {
		t.Run(name, func(t *testing.T) {
			rec := &recordingT{}
			errutil.AssertRedacted(rec, err, "tok-123")
			assert.True(t, rec.failed)
		})
	}
}
