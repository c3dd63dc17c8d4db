// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package srs implements the SM-2 spaced-repetition scheduling algorithm.
//
// Schedule is a pure function from a review quality score and a prior
// scheduling state to the next state; all persistence lives elsewhere.
package srs

import (
	"errors"
	"math"
	"time"
)

const (
	// MinQuality and MaxQuality bound the accepted review scores.
	MinQuality = 0
	MaxQuality = 5

	// DefaultEaseFactor is the ease factor assigned to new cards.
	DefaultEaseFactor = 2.5

	// MinEaseFactor is the floor below which the ease factor never drops.
	MinEaseFactor = 1.3

	// passThreshold is the lowest quality counted as a correct response.
	passThreshold = 3
)

// ErrInvalidQuality is returned when a quality score falls outside
// [MinQuality, MaxQuality].
var ErrInvalidQuality = errors.New("quality must be between 0 and 5")

// State is the per-card scheduling state. Interval is in calendar days;
// NextReview and LastReview are epoch milliseconds. LastReview is nil
// until the card has been reviewed at least once.
type State struct {
	EaseFactor  float64 `json:"easeFactor"`
	Repetitions int     `json:"repetitions"`
	Interval    int     `json:"interval"`
	NextReview  int64   `json:"nextReview"`
	LastReview  *int64  `json:"lastReview"`
}

// NewState returns the default state for a card that has never been
// reviewed: due immediately, with the standard starting ease factor.
func NewState(now time.Time) State {
	return State{
		EaseFactor: DefaultEaseFactor,
		NextReview: now.UnixMilli(),
	}
}

// Due reports whether the card is due for review at the given time.
func (s State) Due(now time.Time) bool {
	return s.NextReview <= now.UnixMilli()
}

// Schedule computes the state following a review with the given quality
// score. It never mutates prior; same inputs always yield the same output.
//
// A quality of 3 or above is a correct response: the interval grows
// (1 day, then 6 days, then interval*easeFactor rounded). Below 3 the
// repetition count and interval reset. The ease factor is adjusted on
// every review and floored at MinEaseFactor; there is no upper bound.
func Schedule(quality int, prior State, now time.Time) (State, error) {
	if quality < MinQuality || quality > MaxQuality {
		return State{}, ErrInvalidQuality
	}

	next := prior

	if quality >= passThreshold {
		switch prior.Repetitions {
		case 0:
			next.Interval = 1
		case 1:
			next.Interval = 6
		default:
			next.Interval = int(math.Round(float64(prior.Interval) * prior.EaseFactor))
		}
		next.Repetitions = prior.Repetitions + 1
	} else {
		next.Repetitions = 0
		next.Interval = 1
	}

	q := float64(quality)
	ef := prior.EaseFactor + (0.1 - (5-q)*(0.08+(5-q)*0.02))
	if ef < MinEaseFactor {
		ef = MinEaseFactor
	}
	next.EaseFactor = ef

	// Calendar-day arithmetic, not fractional days
	next.NextReview = now.AddDate(0, 0, next.Interval).UnixMilli()
	reviewed := now.UnixMilli()
	next.LastReview = &reviewed

	return next, nil
}
