// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package kv provides the key-value store abstraction backing translation
// history, favorites and review scheduling state.
package kv

import (
	"context"
	"time"
)

// Store defines the interface for key-value store implementations.
// All implementations must be thread-safe.
// Values are opaque []byte so implementations can back them with Redis
// strings or plain in-memory maps.
//
// Sorted-set operations follow Redis semantics: members are ordered by
// ascending score (ties broken lexically by member), and ranks may be
// negative to count from the end of the set.
type Store interface {
	// Get retrieves a value. Returns ErrNotFound if the key does not
	// exist or has expired.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value with the given TTL. A zero TTL means the entry
	// never expires.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// SortedAdd adds a member to a sorted set, or updates its score if it
	// is already present.
	SortedAdd(ctx context.Context, set string, score float64, member string) error

	// SortedRemove removes a member from a sorted set. Removing a missing
	// member is not an error.
	SortedRemove(ctx context.Context, set, member string) error

	// SortedRange returns members by rank, inclusive on both ends.
	// With reverse, ranks count from the highest score downwards.
	SortedRange(ctx context.Context, set string, start, stop int64, reverse bool) ([]string, error)

	// SortedTrimByRank removes all members whose rank falls within
	// [start, stop], inclusive.
	SortedTrimByRank(ctx context.Context, set string, start, stop int64) error

	// Close releases any resources held by the store.
	Close() error
}

// Pinger is an optional interface for stores that can report backend
// connectivity, used by the health endpoint.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Error represents an error type for store operations.
type Error string

func (e Error) Error() string {
	return string(e)
}

const (
	// ErrNotFound indicates the key was not found or has expired.
	ErrNotFound Error = "key not found"

	// ErrClosed indicates the store has been closed.
	ErrClosed Error = "store closed"
)
