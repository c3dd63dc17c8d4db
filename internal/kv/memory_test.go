// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package kv

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *MemoryStore {
	t.Helper()
	s := NewMemoryStore()
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func mustSet(t *testing.T, s *MemoryStore, key, value string) {
	t.Helper()
	if err := s.Set(context.Background(), key, []byte(value), 0); err != nil {
		t.Fatalf("Set(%q) failed: %v", key, err)
	}
}

func TestMemorySetAndGet(t *testing.T) {
	s := newTestStore(t)
	mustSet(t, s, "key1", "value1")

	got, err := s.Get(context.Background(), "key1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(got) != "value1" {
		t.Errorf("Get = %q, want %q", got, "value1")
	}
}

func TestMemoryGetMissing(t *testing.T) {
	s := newTestStore(t)

	if _, err := s.Get(context.Background(), "nonexistent"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get error = %v, want ErrNotFound", err)
	}
}

func TestMemoryExpiration(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.Set(ctx, "expiring", []byte("v"), 30*time.Millisecond); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if _, err := s.Get(ctx, "expiring"); err != nil {
		t.Fatalf("Get before expiry failed: %v", err)
	}

	time.Sleep(40 * time.Millisecond)
	if _, err := s.Get(ctx, "expiring"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after expiry error = %v, want ErrNotFound", err)
	}
}

func TestMemoryDelete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mustSet(t, s, "to-delete", "v")
	if err := s.Delete(ctx, "to-delete"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := s.Get(ctx, "to-delete"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after delete error = %v, want ErrNotFound", err)
	}

	// Deleting a missing key is not an error
	if err := s.Delete(ctx, "never-existed"); err != nil {
		t.Errorf("Delete of missing key failed: %v", err)
	}
}

func TestMemoryValueIsolation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	original := []byte("value")
	if err := s.Set(ctx, "k", original, 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	original[0] = 'X'

	got, err := s.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(got) != "value" {
		t.Errorf("stored value mutated externally: %q", got)
	}

	got[0] = 'Y'
	again, _ := s.Get(ctx, "k")
	if string(again) != "value" {
		t.Errorf("returned value aliased store: %q", again)
	}
}

func TestSortedAddOrdersByScore(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_ = s.SortedAdd(ctx, "set", 3, "c")
	_ = s.SortedAdd(ctx, "set", 1, "a")
	_ = s.SortedAdd(ctx, "set", 2, "b")

	got, err := s.SortedRange(ctx, "set", 0, -1, false)
	if err != nil {
		t.Fatalf("SortedRange failed: %v", err)
	}
	want := []string{"a", "b", "c"}
	assertMembers(t, got, want)
}

func TestSortedAddUpdatesScoreWithoutDuplicate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_ = s.SortedAdd(ctx, "set", 1, "a")
	_ = s.SortedAdd(ctx, "set", 2, "b")
	_ = s.SortedAdd(ctx, "set", 3, "a") // re-add with higher score

	got, _ := s.SortedRange(ctx, "set", 0, -1, false)
	assertMembers(t, got, []string{"b", "a"})
}

func TestSortedRangeReverse(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		_ = s.SortedAdd(ctx, "set", float64(i), fmt.Sprintf("m%d", i))
	}

	got, _ := s.SortedRange(ctx, "set", 0, 2, true)
	assertMembers(t, got, []string{"m5", "m4", "m3"})
}

func TestSortedRangeNegativeBounds(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		_ = s.SortedAdd(ctx, "set", float64(i), fmt.Sprintf("m%d", i))
	}

	got, _ := s.SortedRange(ctx, "set", -2, -1, false)
	assertMembers(t, got, []string{"m4", "m5"})

	// Out-of-bounds selections are empty, not an error
	got, _ = s.SortedRange(ctx, "set", 10, 20, false)
	assertMembers(t, got, nil)

	got, _ = s.SortedRange(ctx, "empty", 0, -1, false)
	assertMembers(t, got, nil)
}

func TestSortedRemove(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_ = s.SortedAdd(ctx, "set", 1, "a")
	_ = s.SortedAdd(ctx, "set", 2, "b")

	if err := s.SortedRemove(ctx, "set", "a"); err != nil {
		t.Fatalf("SortedRemove failed: %v", err)
	}
	if err := s.SortedRemove(ctx, "set", "missing"); err != nil {
		t.Errorf("SortedRemove of missing member failed: %v", err)
	}

	got, _ := s.SortedRange(ctx, "set", 0, -1, false)
	assertMembers(t, got, []string{"b"})
}

func TestSortedTrimByRankKeepsNewest(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for i := 1; i <= 10; i++ {
		_ = s.SortedAdd(ctx, "set", float64(i), fmt.Sprintf("m%d", i))
	}

	// Redis idiom for "keep the 3 highest-scored": remove ranks 0..-4
	if err := s.SortedTrimByRank(ctx, "set", 0, -4); err != nil {
		t.Fatalf("SortedTrimByRank failed: %v", err)
	}

	got, _ := s.SortedRange(ctx, "set", 0, -1, false)
	assertMembers(t, got, []string{"m8", "m9", "m10"})
}

func TestSortedTrimByRankNoopWhenUnderLimit(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_ = s.SortedAdd(ctx, "set", 1, "a")
	_ = s.SortedAdd(ctx, "set", 2, "b")

	if err := s.SortedTrimByRank(ctx, "set", 0, -4); err != nil {
		t.Fatalf("SortedTrimByRank failed: %v", err)
	}

	got, _ := s.SortedRange(ctx, "set", 0, -1, false)
	assertMembers(t, got, []string{"a", "b"})
}

func TestClosedStoreRejectsOperations(t *testing.T) {
	s := NewMemoryStore()
	_ = s.Close()

	if _, err := s.Get(context.Background(), "k"); !errors.Is(err, ErrClosed) {
		t.Errorf("Get on closed store error = %v, want ErrClosed", err)
	}
	if err := s.Set(context.Background(), "k", nil, 0); !errors.Is(err, ErrClosed) {
		t.Errorf("Set on closed store error = %v, want ErrClosed", err)
	}
	// Closing twice is fine
	if err := s.Close(); err != nil {
		t.Errorf("second Close failed: %v", err)
	}
}

func assertMembers(t *testing.T, got, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("members = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("members = %v, want %v", got, want)
		}
	}
}
