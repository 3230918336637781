// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Accountd Contributors

// Package errutil holds helpers for logging and asserting oops errors.
package errutil

import (
	"context"
	"log/slog"

	"github.com/samber/oops"
)

// LogError logs err at error level. For oops errors the code and context are
// logged as separate attributes so they stay queryable.
func LogError(ctx context.Context, logger *slog.Logger, msg string, err error) {
	logger.ErrorContext(ctx, msg, Attrs(err)...)
}

// Attrs returns slog key/value pairs describing err.
func Attrs(err error) []any {
	attrs := []any{"error", err.Error()}
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return attrs
	}
	if code := Code(err); code != "" {
		attrs = append(attrs, "code", code)
	}
	if ectx := oopsErr.Context(); len(ectx) > 0 {
		attrs = append(attrs, "context", ectx)
	}
	return attrs
}

// Code returns the oops error code carried by err, or "" if there is none.
func Code(err error) string {
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return ""
	}
	var code any = oopsErr.Code()
	if s, ok := code.(string); ok {
		return s
	}
	return ""
}
