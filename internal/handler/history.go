// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/olegiv/habla-go/internal/history"
)

// History handles GET /api/history: the most recent translations, newest
// first. Store failures degrade to an empty list.
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	limit := history.DefaultListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeJSONError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = n
	}

	records, err := h.history.List(r.Context(), limit)
	if err != nil {
		h.logger.Error("listing history failed", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "Failed to fetch history")
		return
	}

	writeJSONSuccess(w, map[string]any{"history": records})
}

type keyRequest struct {
	Key string `json:"key"`
}

// DeleteHistoryItem handles DELETE /api/history: removes a translation
// and every index entry referencing it.
func (h *Handler) DeleteHistoryItem(w http.ResponseWriter, r *http.Request) {
	var req keyRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Key == "" {
		writeJSONError(w, http.StatusBadRequest, "Key is required")
		return
	}

	if err := h.history.Delete(r.Context(), req.Key); err != nil {
		if errors.Is(err, history.ErrNotFound) {
			writeJSONError(w, http.StatusNotFound, "Translation not found")
			return
		}
		h.logger.Error("deleting translation failed", "key", req.Key, "error", err)
		writeJSONError(w, http.StatusInternalServerError, "Failed to delete item")
		return
	}

	writeJSONSuccess(w, nil)
}

type favoriteRequest struct {
	Key      string `json:"key"`
	Favorite bool   `json:"favorite"`
}

// Favorite handles POST /api/favorite: toggles the favorite flag and the
// favorites index membership.
func (h *Handler) Favorite(w http.ResponseWriter, r *http.Request) {
	var req favoriteRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Key == "" {
		writeJSONError(w, http.StatusBadRequest, "Key is required")
		return
	}

	if _, err := h.history.SetFavorite(r.Context(), req.Key, req.Favorite); err != nil {
		if errors.Is(err, history.ErrNotFound) {
			writeJSONError(w, http.StatusNotFound, "Translation not found")
			return
		}
		h.logger.Error("updating favorite failed", "key", req.Key, "error", err)
		writeJSONError(w, http.StatusInternalServerError, "Failed to update favorite status")
		return
	}

	writeJSONSuccess(w, map[string]any{"favorite": req.Favorite})
}
