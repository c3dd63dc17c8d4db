// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package kv

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// MemoryStore is a thread-safe in-memory Store implementation.
// It is used in tests and when no Redis URL is configured; entries do not
// survive a restart.
type MemoryStore struct {
	mu     sync.RWMutex
	data   map[string]memoryEntry
	sets   map[string][]scoredMember
	closed atomic.Bool
}

type memoryEntry struct {
	value     []byte
	expiresAt time.Time // zero means no expiry
}

func (e memoryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

type scoredMember struct {
	score  float64
	member string
}

// NewMemoryStore creates a new empty memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data: make(map[string]memoryEntry),
		sets: make(map[string][]scoredMember),
	}
}

// Get retrieves a value.
func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	if s.closed.Load() {
		return nil, ErrClosed
	}

	s.mu.RLock()
	entry, ok := s.data[key]
	s.mu.RUnlock()

	if !ok {
		return nil, ErrNotFound
	}
	if entry.expired(time.Now()) {
		s.mu.Lock()
		delete(s.data, key)
		s.mu.Unlock()
		return nil, ErrNotFound
	}

	// Return a copy to prevent mutation
	result := make([]byte, len(entry.value))
	copy(result, entry.value)
	return result, nil
}

// Set stores a value with the specified TTL.
func (s *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if s.closed.Load() {
		return ErrClosed
	}

	valueCopy := make([]byte, len(value))
	copy(valueCopy, value)

	entry := memoryEntry{value: valueCopy}
	if ttl > 0 {
		entry.expiresAt = time.Now().Add(ttl)
	}

	s.mu.Lock()
	s.data[key] = entry
	s.mu.Unlock()
	return nil
}

// Delete removes a key.
func (s *MemoryStore) Delete(_ context.Context, key string) error {
	if s.closed.Load() {
		return ErrClosed
	}

	s.mu.Lock()
	delete(s.data, key)
	s.mu.Unlock()
	return nil
}

// SortedAdd adds a member to a sorted set, updating its score if present.
func (s *MemoryStore) SortedAdd(_ context.Context, set string, score float64, member string) error {
	if s.closed.Load() {
		return ErrClosed
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	members := s.sets[set]
	for i := range members {
		if members[i].member == member {
			members = append(members[:i], members[i+1:]...)
			break
		}
	}
	members = append(members, scoredMember{score: score, member: member})

	// Keep sorted by score, ties broken lexically (Redis ordering)
	sort.SliceStable(members, func(i, j int) bool {
		if members[i].score != members[j].score {
			return members[i].score < members[j].score
		}
		return members[i].member < members[j].member
	})

	s.sets[set] = members
	return nil
}

// SortedRemove removes a member from a sorted set.
func (s *MemoryStore) SortedRemove(_ context.Context, set, member string) error {
	if s.closed.Load() {
		return ErrClosed
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	members := s.sets[set]
	for i := range members {
		if members[i].member == member {
			s.sets[set] = append(members[:i], members[i+1:]...)
			break
		}
	}
	return nil
}

// SortedRange returns members by rank.
func (s *MemoryStore) SortedRange(_ context.Context, set string, start, stop int64, reverse bool) ([]string, error) {
	if s.closed.Load() {
		return nil, ErrClosed
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	members := s.sets[set]
	n := int64(len(members))

	lo, hi, ok := normalizeRange(n, start, stop)
	if !ok {
		return []string{}, nil
	}

	result := make([]string, 0, hi-lo+1)
	for i := lo; i <= hi; i++ {
		if reverse {
			result = append(result, members[n-1-i].member)
		} else {
			result = append(result, members[i].member)
		}
	}
	return result, nil
}

// SortedTrimByRank removes members whose rank falls within [start, stop].
func (s *MemoryStore) SortedTrimByRank(_ context.Context, set string, start, stop int64) error {
	if s.closed.Load() {
		return ErrClosed
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	members := s.sets[set]
	lo, hi, ok := normalizeRange(int64(len(members)), start, stop)
	if !ok {
		return nil
	}

	s.sets[set] = append(members[:lo:lo], members[hi+1:]...)
	return nil
}

// Close marks the store closed and drops all entries.
func (s *MemoryStore) Close() error {
	if s.closed.CompareAndSwap(false, true) {
		s.mu.Lock()
		s.data = nil
		s.sets = nil
		s.mu.Unlock()
	}
	return nil
}

// normalizeRange resolves Redis-style rank bounds (negative ranks count
// from the end) against a set of size n. Returns ok=false for an empty
// selection.
func normalizeRange(n, start, stop int64) (lo, hi int64, ok bool) {
	if start < 0 {
		start += n
	}
	if stop < 0 {
		stop += n
	}
	if start < 0 {
		start = 0
	}
	if stop >= n {
		stop = n - 1
	}
	if n == 0 || start > stop || start >= n || stop < 0 {
		return 0, 0, false
	}
	return start, stop, true
}

// Ensure MemoryStore implements Store.
var _ Store = (*MemoryStore)(nil)
