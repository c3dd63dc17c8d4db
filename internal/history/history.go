// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package history manages the append-only translation history and the
// favorites index on top of the key-value store.
//
// Persisted layout: each record lives at "translation:<millis>" with a
// 30-day TTL; "translation:history" and "translation:favorites" are
// sorted sets of record keys scored by time. The history set is trimmed
// to the most recent MaxEntries keys; trimming does not cascade to the
// favorites set or scheduling state, so a favorited record can outlive
// its history listing until its own TTL lapses.
package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/olegiv/habla-go/internal/kv"
	"github.com/olegiv/habla-go/internal/model"
)

const (
	// KeyPrefix prefixes every translation record key.
	KeyPrefix = "translation:"

	// HistorySet and FavoritesSet are the sorted-set index names.
	HistorySet   = "translation:history"
	FavoritesSet = "translation:favorites"

	// MaxEntries bounds the history index; older keys are evicted by rank.
	MaxEntries = 100

	// DefaultListLimit is how many records List returns by default.
	DefaultListLimit = 50

	// RecordTTL is the lifetime of a stored record. Toggling the favorite
	// flag rewrites the record and so refreshes it.
	RecordTTL = 30 * 24 * time.Hour
)

// SRSKey returns the key under which scheduling state for a record is stored.
func SRSKey(recordKey string) string {
	return "srs:" + recordKey
}

// ErrNotFound is returned when an operation targets a key with no record.
var ErrNotFound = errors.New("translation not found")

// Result is the outcome of a multi-step write. A nil error alongside a
// non-empty Warnings slice means the primary write succeeded but one or
// more secondary index updates did not.
type Result struct {
	Key       string
	Timestamp int64
	Warnings  []string
}

// RecordInput carries the fields of a new translation record. Key,
// timestamp and the favorite flag are assigned by the store.
type RecordInput struct {
	Original    string
	Translation string
	Examples    []model.ExamplePair
	FromLang    model.Language
	ToLang      model.Language
}

// Store persists translation records and their indexes.
type Store struct {
	kv     kv.Store
	logger *slog.Logger
	now    func() time.Time
}

// NewStore creates a history store backed by the given key-value store.
func NewStore(store kv.Store, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		kv:     store,
		logger: logger.With("component", "history"),
		now:    time.Now,
	}
}

// Record persists a new translation and appends it to the history index,
// trimming the index to MaxEntries. The record write is the primary step
// and its failure fails the call; index failures degrade to warnings.
func (s *Store) Record(ctx context.Context, in RecordInput) (Result, error) {
	ts := s.now().UnixMilli()
	key := KeyPrefix + strconv.FormatInt(ts, 10)

	// Millisecond keys can collide under a double submit; nudge once.
	if _, err := s.kv.Get(ctx, key); err == nil {
		ts++
		key = KeyPrefix + strconv.FormatInt(ts, 10)
	}

	rec := model.TranslationRecord{
		Key:         key,
		Original:    in.Original,
		Translation: in.Translation,
		Examples:    in.Examples,
		FromLang:    in.FromLang,
		ToLang:      in.ToLang,
		Timestamp:   ts,
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return Result{}, fmt.Errorf("encoding translation: %w", err)
	}
	if err := s.kv.Set(ctx, key, data, RecordTTL); err != nil {
		return Result{}, fmt.Errorf("storing translation: %w", err)
	}

	res := Result{Key: key, Timestamp: ts}

	if err := s.kv.SortedAdd(ctx, HistorySet, float64(ts), key); err != nil {
		s.logger.Warn("history index update failed", "key", key, "error", err)
		res.Warnings = append(res.Warnings, "history index update failed")
		return res, nil
	}
	if err := s.kv.SortedTrimByRank(ctx, HistorySet, 0, -(MaxEntries + 1)); err != nil {
		s.logger.Warn("history trim failed", "error", err)
		res.Warnings = append(res.Warnings, "history trim failed")
	}

	return res, nil
}

// List returns up to limit records, most recent first. Keys whose record
// has expired or been evicted are skipped. An index read failure degrades
// to an empty result rather than an error.
func (s *Store) List(ctx context.Context, limit int) ([]model.TranslationRecord, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	keys, err := s.kv.SortedRange(ctx, HistorySet, 0, int64(limit-1), true)
	if err != nil {
		s.logger.Error("history read failed", "error", err)
		return []model.TranslationRecord{}, nil
	}

	records := make([]model.TranslationRecord, 0, len(keys))
	for _, key := range keys {
		rec, err := s.getRecord(ctx, key)
		if err != nil {
			if !errors.Is(err, kv.ErrNotFound) {
				s.logger.Error("loading history record failed", "key", key, "error", err)
			}
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

// Delete removes a record together with its history membership, favorites
// membership and scheduling state. Returns ErrNotFound if no record
// exists. Index removals are best effort; a missing entry in any index is
// not an error.
func (s *Store) Delete(ctx context.Context, key string) error {
	if _, err := s.getRecord(ctx, key); err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("loading translation: %w", err)
	}

	if err := s.kv.Delete(ctx, key); err != nil {
		return fmt.Errorf("deleting translation: %w", err)
	}
	if err := s.kv.SortedRemove(ctx, HistorySet, key); err != nil {
		s.logger.Warn("removing history membership failed", "key", key, "error", err)
	}
	if err := s.kv.SortedRemove(ctx, FavoritesSet, key); err != nil {
		s.logger.Warn("removing favorites membership failed", "key", key, "error", err)
	}
	if err := s.kv.Delete(ctx, SRSKey(key)); err != nil {
		s.logger.Warn("removing scheduling state failed", "key", key, "error", err)
	}
	return nil
}

// SetFavorite updates the record's favorite flag and the favorites index.
// The record rewrite refreshes its TTL. Favoriting an already-favorited
// key re-scores its membership; the set never holds duplicates. Returns
// ErrNotFound if no record exists.
func (s *Store) SetFavorite(ctx context.Context, key string, favorite bool) (Result, error) {
	rec, err := s.getRecord(ctx, key)
	if err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return Result{}, ErrNotFound
		}
		return Result{}, fmt.Errorf("loading translation: %w", err)
	}

	rec.Favorite = favorite

	data, err := json.Marshal(rec)
	if err != nil {
		return Result{}, fmt.Errorf("encoding translation: %w", err)
	}
	if err := s.kv.Set(ctx, key, data, RecordTTL); err != nil {
		return Result{}, fmt.Errorf("updating translation: %w", err)
	}

	res := Result{Key: key, Timestamp: rec.Timestamp}

	if favorite {
		err = s.kv.SortedAdd(ctx, FavoritesSet, float64(s.now().UnixMilli()), key)
	} else {
		err = s.kv.SortedRemove(ctx, FavoritesSet, key)
	}
	if err != nil {
		s.logger.Warn("favorites index update failed", "key", key, "favorite", favorite, "error", err)
		res.Warnings = append(res.Warnings, "favorites index update failed")
	}

	return res, nil
}

// Get returns a single record by key, or ErrNotFound.
func (s *Store) Get(ctx context.Context, key string) (model.TranslationRecord, error) {
	rec, err := s.getRecord(ctx, key)
	if err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return model.TranslationRecord{}, ErrNotFound
		}
		return model.TranslationRecord{}, err
	}
	return rec, nil
}

func (s *Store) getRecord(ctx context.Context, key string) (model.TranslationRecord, error) {
	data, err := s.kv.Get(ctx, key)
	if err != nil {
		return model.TranslationRecord{}, err
	}

	var rec model.TranslationRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return model.TranslationRecord{}, fmt.Errorf("decoding translation %s: %w", key, err)
	}
	// Older records may predate the embedded key
	if rec.Key == "" {
		rec.Key = key
	}
	return rec, nil
}
