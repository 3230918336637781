// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Accountd Contributors

package cache

import (
	"context"
	"sync"
	"time"
)

// memorySweepInterval bounds how often SetWithTTL scans for expired entries.
const memorySweepInterval = time.Minute

type memoryEntry struct {
	raw       string
	expiresAt time.Time // zero means no expiry
}

// MemoryStore is an in-process Store replacement for tests and single-node
// development. Expired entries are dropped on access, and writes sweep the
// whole map at most once per memorySweepInterval so entries that are never
// read again do not accumulate.
type MemoryStore[K ~string, V any] struct {
	mu        sync.Mutex
	entries   map[K]memoryEntry
	codec     Codec[V]
	now       func() time.Time
	lastSweep time.Time
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore[K ~string, V any](codec Codec[V]) *MemoryStore[K, V] {
	return &MemoryStore[K, V]{
		entries: make(map[K]memoryEntry),
		codec:   codec,
		now:     time.Now,
	}
}

// WithClock replaces the time source. Used to drive expiry in tests.
func (m *MemoryStore[K, V]) WithClock(now func() time.Time) *MemoryStore[K, V] {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
	return m
}

// SetWithTTL stores value under key, replacing any previous entry.
func (m *MemoryStore[K, V]) SetWithTTL(_ context.Context, key K, value V, ttl time.Duration) error {
	ttl, err := wholeSeconds(ttl)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if now.Sub(m.lastSweep) >= memorySweepInterval {
		m.sweep(now)
	}
	m.entries[key] = memoryEntry{
		raw:       m.codec.Encode(value),
		expiresAt: now.Add(ttl),
	}
	return nil
}

// Get returns the decoded value for key.
func (m *MemoryStore[K, V]) Get(_ context.Context, key K) (V, bool, error) {
	var zero V

	m.mu.Lock()
	entry, ok := m.lookup(key)
	m.mu.Unlock()
	if !ok {
		return zero, false, nil
	}

	value, err := m.codec.Decode(entry.raw)
	if err != nil {
		return zero, false, conversionError(string(key), err)
	}
	return value, true, nil
}

// TTL returns the remaining lifetime of key in seconds, rounded the way
// Redis rounds it.
func (m *MemoryStore[K, V]) TTL(_ context.Context, key K) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.lookup(key)
	if !ok {
		return TTLNotFound, nil
	}
	if entry.expiresAt.IsZero() {
		return TTLNoExpiry, nil
	}
	remaining := entry.expiresAt.Sub(m.now())
	return int64((remaining + 500*time.Millisecond) / time.Second), nil
}

// Delete removes key and returns the number of entries removed.
func (m *MemoryStore[K, V]) Delete(_ context.Context, key K) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.lookup(key); !ok {
		return 0, nil
	}
	delete(m.entries, key)
	return 1, nil
}

// Ping always succeeds.
func (m *MemoryStore[K, V]) Ping(context.Context) error {
	return nil
}

// lookup returns the live entry for key, evicting it if expired.
// Callers must hold m.mu.
func (m *MemoryStore[K, V]) lookup(key K) (memoryEntry, bool) {
	entry, ok := m.entries[key]
	if !ok {
		return memoryEntry{}, false
	}
	if !entry.expiresAt.IsZero() && !m.now().Before(entry.expiresAt) {
		delete(m.entries, key)
		return memoryEntry{}, false
	}
	return entry, true
}

// sweep evicts every expired entry. Callers must hold m.mu.
func (m *MemoryStore[K, V]) sweep(now time.Time) {
	for key, entry := range m.entries {
		if !entry.expiresAt.IsZero() && !now.Before(entry.expiresAt) {
			delete(m.entries, key)
		}
	}
	m.lastSweep = now
}
