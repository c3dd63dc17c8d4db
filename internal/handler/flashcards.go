// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/olegiv/habla-go/internal/history"
	"github.com/olegiv/habla-go/internal/srs"
)

// DueFlashcards handles GET /api/flashcards: every favorited card due
// for review.
func (h *Handler) DueFlashcards(w http.ResponseWriter, r *http.Request) {
	cards, err := h.deck.DueCards(r.Context())
	if err != nil {
		h.logger.Error("fetching due cards failed", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "Failed to fetch flashcards")
		return
	}

	writeJSONSuccess(w, map[string]any{"flashcards": cards})
}

type reviewRequest struct {
	Key     string `json:"key"`
	Quality *int   `json:"quality"`
}

// SubmitReview handles POST /api/flashcards: applies a review outcome
// and returns the next schedule.
func (h *Handler) SubmitReview(w http.ResponseWriter, r *http.Request) {
	var req reviewRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Key == "" || req.Quality == nil {
		writeJSONError(w, http.StatusBadRequest, "Key and quality are required")
		return
	}

	summary, err := h.deck.SubmitReview(r.Context(), req.Key, *req.Quality)
	if err != nil {
		switch {
		case errors.Is(err, srs.ErrInvalidQuality):
			writeJSONError(w, http.StatusBadRequest, "Quality must be between 0 and 5")
		case errors.Is(err, history.ErrNotFound):
			writeJSONError(w, http.StatusNotFound, "Translation not found")
		default:
			h.logger.Error("submitting review failed", "key", req.Key, "error", err)
			writeJSONError(w, http.StatusInternalServerError, "Failed to submit review")
		}
		return
	}

	writeJSONSuccess(w, map[string]any{
		"nextReview": time.UnixMilli(summary.NextReview).UTC().Format(time.RFC3339),
		"interval":   summary.Interval,
	})
}
