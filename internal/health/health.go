// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Accountd Contributors

// Package health checks the backing stores.
package health

import (
	"context"
	"time"

	"github.com/samber/oops"

	"github.com/accountd/accountd/internal/observability"
)

// DefaultTimeout bounds a single readiness probe.
const DefaultTimeout = 2 * time.Second

// Pinger is anything that can check its own connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Checker pings the relational store and the token cache.
type Checker struct {
	db      Pinger
	cache   Pinger
	timeout time.Duration
}

// NewChecker creates a Checker. A nil cache pinger means the token cache is
// in process and always healthy.
func NewChecker(db, cache Pinger) *Checker {
	return &Checker{db: db, cache: cache, timeout: DefaultTimeout}
}

// WithTimeout sets the per-probe timeout applied by Probes.
func (c *Checker) WithTimeout(d time.Duration) *Checker {
	c.timeout = d
	return c
}

// CheckDB pings the database.
func (c *Checker) CheckDB(ctx context.Context) error {
	if c.db == nil {
		return oops.Code("HEALTH_DB_UNCONFIGURED").Errorf("database is not configured")
	}
	if err := c.db.Ping(ctx); err != nil {
		return oops.Code("HEALTH_DB_UNREACHABLE").Wrap(err)
	}
	return nil
}

// CheckCache pings the token cache.
func (c *Checker) CheckCache(ctx context.Context) error {
	if c.cache == nil {
		return nil
	}
	if err := c.cache.Ping(ctx); err != nil {
		return oops.Code("HEALTH_CACHE_UNREACHABLE").Wrap(err)
	}
	return nil
}

// Probes returns the database and cache checks as readiness probes, each
// bounded by the configured timeout.
func (c *Checker) Probes() []observability.Probe {
	return []observability.Probe{
		{Name: "db", Check: c.bounded(c.CheckDB)},
		{Name: "cache", Check: c.bounded(c.CheckCache)},
	}
}

func (c *Checker) bounded(check func(context.Context) error) func(context.Context) error {
	return func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()
		return check(ctx)
	}
}
