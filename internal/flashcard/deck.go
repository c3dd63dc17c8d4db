// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package flashcard derives the review deck from the favorites index and
// per-card scheduling state.
package flashcard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/olegiv/habla-go/internal/history"
	"github.com/olegiv/habla-go/internal/kv"
	"github.com/olegiv/habla-go/internal/model"
	"github.com/olegiv/habla-go/internal/srs"
)

// StateTTL is the lifetime of persisted scheduling state.
const StateTTL = 365 * 24 * time.Hour

// Card pairs a favorited translation with its scheduling state.
type Card struct {
	model.TranslationRecord
	SRS srs.State `json:"srs"`
}

// ReviewSummary is the schedule returned after a review is applied.
type ReviewSummary struct {
	NextReview int64 `json:"nextReview"` // epoch milliseconds
	Interval   int   `json:"interval"`   // days
}

// Deck reads due cards and applies review outcomes.
type Deck struct {
	kv     kv.Store
	logger *slog.Logger
	now    func() time.Time
}

// NewDeck creates a deck over the given key-value store.
func NewDeck(store kv.Store, logger *slog.Logger) *Deck {
	if logger == nil {
		logger = slog.Default()
	}
	return &Deck{
		kv:     store,
		logger: logger.With("component", "flashcard"),
		now:    time.Now,
	}
}

// DueCards returns every favorited card whose next review time has
// passed, in favorites insertion order. Cards whose record is gone are
// skipped; cards with no scheduling state yet get the default state and
// are therefore due immediately. An index read failure degrades to an
// empty deck.
func (d *Deck) DueCards(ctx context.Context) ([]Card, error) {
	keys, err := d.kv.SortedRange(ctx, history.FavoritesSet, 0, -1, false)
	if err != nil {
		d.logger.Error("favorites read failed", "error", err)
		return []Card{}, nil
	}

	now := d.now()
	cards := make([]Card, 0, len(keys))
	for _, key := range keys {
		rec, err := d.getRecord(ctx, key)
		if err != nil {
			// Orphaned favorite: the record expired or was evicted
			if !errors.Is(err, kv.ErrNotFound) {
				d.logger.Error("loading card record failed", "key", key, "error", err)
			}
			continue
		}

		state, err := d.getState(ctx, key, now)
		if err != nil {
			d.logger.Error("loading scheduling state failed", "key", key, "error", err)
			continue
		}

		if state.Due(now) {
			cards = append(cards, Card{TranslationRecord: rec, SRS: state})
		}
	}
	return cards, nil
}

// SubmitReview applies a review outcome to a card and persists the new
// scheduling state. Returns srs.ErrInvalidQuality for a quality outside
// [0,5] before touching the store, and history.ErrNotFound when the
// underlying record no longer exists.
func (d *Deck) SubmitReview(ctx context.Context, key string, quality int) (ReviewSummary, error) {
	if quality < srs.MinQuality || quality > srs.MaxQuality {
		return ReviewSummary{}, srs.ErrInvalidQuality
	}

	if _, err := d.getRecord(ctx, key); err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return ReviewSummary{}, history.ErrNotFound
		}
		return ReviewSummary{}, fmt.Errorf("loading translation: %w", err)
	}

	now := d.now()
	prior, err := d.getState(ctx, key, now)
	if err != nil {
		return ReviewSummary{}, fmt.Errorf("loading scheduling state: %w", err)
	}

	next, err := srs.Schedule(quality, prior, now)
	if err != nil {
		return ReviewSummary{}, err
	}

	data, err := json.Marshal(next)
	if err != nil {
		return ReviewSummary{}, fmt.Errorf("encoding scheduling state: %w", err)
	}
	if err := d.kv.Set(ctx, history.SRSKey(key), data, StateTTL); err != nil {
		return ReviewSummary{}, fmt.Errorf("storing scheduling state: %w", err)
	}

	return ReviewSummary{NextReview: next.NextReview, Interval: next.Interval}, nil
}

func (d *Deck) getRecord(ctx context.Context, key string) (model.TranslationRecord, error) {
	data, err := d.kv.Get(ctx, key)
	if err != nil {
		return model.TranslationRecord{}, err
	}

	var rec model.TranslationRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return model.TranslationRecord{}, fmt.Errorf("decoding translation %s: %w", key, err)
	}
	if rec.Key == "" {
		rec.Key = key
	}
	return rec, nil
}

// getState loads the card's scheduling state, lazily defaulting it for
// cards that have never been reviewed. The default is not persisted; it
// only becomes durable on the first review.
func (d *Deck) getState(ctx context.Context, key string, now time.Time) (srs.State, error) {
	data, err := d.kv.Get(ctx, history.SRSKey(key))
	if err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return srs.NewState(now), nil
		}
		return srs.State{}, err
	}

	var state srs.State
	if err := json.Unmarshal(data, &state); err != nil {
		return srs.State{}, fmt.Errorf("decoding scheduling state for %s: %w", key, err)
	}
	return state, nil
}
