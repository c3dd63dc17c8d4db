// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package history

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/habla-go/internal/kv"
	"github.com/olegiv/habla-go/internal/model"
)

// fakeClock hands out strictly increasing millisecond timestamps so
// record keys never collide in tests.
type fakeClock struct {
	base time.Time
	tick int
}

func (c *fakeClock) Now() time.Time {
	c.tick++
	return c.base.Add(time.Duration(c.tick) * time.Millisecond)
}

func newTestStore(t *testing.T) (*Store, *kv.MemoryStore) {
	t.Helper()
	mem := kv.NewMemoryStore()
	t.Cleanup(func() { _ = mem.Close() })

	s := NewStore(mem, slog.Default())
	clock := &fakeClock{base: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)}
	s.now = clock.Now
	return s, mem
}

func record(t *testing.T, s *Store, original string) Result {
	t.Helper()
	res, err := s.Record(context.Background(), RecordInput{
		Original:    original,
		Translation: "trad: " + original,
		FromLang:    model.LanguageEnglish,
		ToLang:      model.LanguageSpanish,
	})
	require.NoError(t, err)
	require.NotEmpty(t, res.Key)
	return res
}

func TestRecordAndList(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	first := record(t, s, "hello")
	second := record(t, s, "goodbye")

	records, err := s.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, records, 2)

	// Most recent first
	assert.Equal(t, second.Key, records[0].Key)
	assert.Equal(t, first.Key, records[1].Key)
	assert.Equal(t, "goodbye", records[0].Original)
	assert.Equal(t, "trad: goodbye", records[0].Translation)
	assert.Equal(t, model.LanguageEnglish, records[0].FromLang)
	assert.False(t, records[0].Favorite)
}

func TestRecordKeyDerivedFromTimestamp(t *testing.T) {
	s, _ := newTestStore(t)

	res := record(t, s, "hola")
	assert.Equal(t, fmt.Sprintf("%s%d", KeyPrefix, res.Timestamp), res.Key)
}

func TestHistoryBoundedToMaxEntries(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	keys := make([]string, 0, 150)
	for i := 0; i < 150; i++ {
		res := record(t, s, fmt.Sprintf("phrase %d", i))
		keys = append(keys, res.Key)
	}

	records, err := s.List(ctx, 150)
	require.NoError(t, err)
	assert.Len(t, records, MaxEntries)

	listed := make(map[string]bool, len(records))
	for _, rec := range records {
		listed[rec.Key] = true
	}
	// The oldest 50 insertions were evicted from the index
	for i := 0; i < 50; i++ {
		assert.False(t, listed[keys[i]], "key %s should have been evicted", keys[i])
	}
	for i := 50; i < 150; i++ {
		assert.True(t, listed[keys[i]], "key %s should still be listed", keys[i])
	}
}

func TestListSkipsExpiredRecords(t *testing.T) {
	s, mem := newTestStore(t)
	ctx := context.Background()

	kept := record(t, s, "kept")
	gone := record(t, s, "gone")

	// Simulate TTL expiry of one record; its index entry remains
	require.NoError(t, mem.Delete(ctx, gone.Key))

	records, err := s.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, kept.Key, records[0].Key)
}

func TestSetFavoriteIdempotent(t *testing.T) {
	s, mem := newTestStore(t)
	ctx := context.Background()

	res := record(t, s, "favorito")

	_, err := s.SetFavorite(ctx, res.Key, true)
	require.NoError(t, err)
	_, err = s.SetFavorite(ctx, res.Key, true)
	require.NoError(t, err)

	members, err := mem.SortedRange(ctx, FavoritesSet, 0, -1, false)
	require.NoError(t, err)
	assert.Equal(t, []string{res.Key}, members, "favoriting twice must not duplicate membership")

	rec, err := s.Get(ctx, res.Key)
	require.NoError(t, err)
	assert.True(t, rec.Favorite)
}

func TestSetFavoriteFalseRemovesMembership(t *testing.T) {
	s, mem := newTestStore(t)
	ctx := context.Background()

	res := record(t, s, "meh")
	_, err := s.SetFavorite(ctx, res.Key, true)
	require.NoError(t, err)
	_, err = s.SetFavorite(ctx, res.Key, false)
	require.NoError(t, err)

	members, err := mem.SortedRange(ctx, FavoritesSet, 0, -1, false)
	require.NoError(t, err)
	assert.Empty(t, members)

	rec, err := s.Get(ctx, res.Key)
	require.NoError(t, err)
	assert.False(t, rec.Favorite)
}

func TestSetFavoriteUnknownKey(t *testing.T) {
	s, _ := newTestStore(t)

	_, err := s.SetFavorite(context.Background(), "translation:999", true)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteRemovesEverything(t *testing.T) {
	s, mem := newTestStore(t)
	ctx := context.Background()

	res := record(t, s, "borrame")
	_, err := s.SetFavorite(ctx, res.Key, true)
	require.NoError(t, err)
	// Simulate existing scheduling state
	require.NoError(t, mem.Set(ctx, SRSKey(res.Key), []byte(`{"easeFactor":2.5}`), 0))

	require.NoError(t, s.Delete(ctx, res.Key))

	records, err := s.List(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, records)

	members, err := mem.SortedRange(ctx, FavoritesSet, 0, -1, false)
	require.NoError(t, err)
	assert.Empty(t, members)

	_, err = mem.Get(ctx, SRSKey(res.Key))
	assert.ErrorIs(t, err, kv.ErrNotFound)

	// A second delete, or a favorite toggle, now reports not found
	assert.ErrorIs(t, s.Delete(ctx, res.Key), ErrNotFound)
	_, err = s.SetFavorite(ctx, res.Key, true)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetUnknownKey(t *testing.T) {
	s, _ := newTestStore(t)

	_, err := s.Get(context.Background(), "translation:123")
	assert.ErrorIs(t, err, ErrNotFound)
}

// flakyStore wraps a Store and fails selected operations.
type flakyStore struct {
	kv.Store
	failSortedAdd   bool
	failSortedRange bool
}

var errStoreDown = errors.New("store down")

func (f *flakyStore) SortedAdd(ctx context.Context, set string, score float64, member string) error {
	if f.failSortedAdd {
		return errStoreDown
	}
	return f.Store.SortedAdd(ctx, set, score, member)
}

func (f *flakyStore) SortedRange(ctx context.Context, set string, start, stop int64, reverse bool) ([]string, error) {
	if f.failSortedRange {
		return nil, errStoreDown
	}
	return f.Store.SortedRange(ctx, set, start, stop, reverse)
}

func TestRecordToleratesIndexFailure(t *testing.T) {
	mem := kv.NewMemoryStore()
	t.Cleanup(func() { _ = mem.Close() })
	flaky := &flakyStore{Store: mem, failSortedAdd: true}
	s := NewStore(flaky, slog.Default())

	res, err := s.Record(context.Background(), RecordInput{
		Original:    "hola",
		Translation: "hello",
		FromLang:    model.LanguageSpanish,
		ToLang:      model.LanguageEnglish,
	})
	require.NoError(t, err, "index failure must not fail the record")
	assert.NotEmpty(t, res.Warnings)

	// The record itself was stored
	_, err = mem.Get(context.Background(), res.Key)
	assert.NoError(t, err)
}

func TestListFailsSoft(t *testing.T) {
	mem := kv.NewMemoryStore()
	t.Cleanup(func() { _ = mem.Close() })
	flaky := &flakyStore{Store: mem, failSortedRange: true}
	s := NewStore(flaky, slog.Default())

	records, err := s.List(context.Background(), 10)
	require.NoError(t, err, "read failure degrades to empty, not error")
	assert.Empty(t, records)
}

func TestSetFavoriteToleratesIndexFailure(t *testing.T) {
	mem := kv.NewMemoryStore()
	t.Cleanup(func() { _ = mem.Close() })
	flaky := &flakyStore{Store: mem}
	s := NewStore(flaky, slog.Default())

	res, err := s.Record(context.Background(), RecordInput{
		Original: "x", Translation: "y",
		FromLang: model.LanguageEnglish, ToLang: model.LanguageSpanish,
	})
	require.NoError(t, err)

	flaky.failSortedAdd = true
	favRes, err := s.SetFavorite(context.Background(), res.Key, true)
	require.NoError(t, err)
	assert.NotEmpty(t, favRes.Warnings)

	// The flag on the record was still updated
	rec, err := s.Get(context.Background(), res.Key)
	require.NoError(t, err)
	assert.True(t, rec.Favorite)
}
