// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"
	"strings"

	"github.com/olegiv/habla-go/internal/history"
	"github.com/olegiv/habla-go/internal/model"
	"github.com/olegiv/habla-go/internal/translate"
)

type translateRequest struct {
	Text     string         `json:"text"`
	FromLang model.Language `json:"fromLang"`
	ToLang   model.Language `json:"toLang"`
}

// Translate handles POST /api/translate: calls the translation provider
// and records the result in history. A failed history write fails the
// request; failed index updates do not.
func (h *Handler) Translate(w http.ResponseWriter, r *http.Request) {
	var req translateRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if strings.TrimSpace(req.Text) == "" {
		writeJSONError(w, http.StatusBadRequest, "Text is required")
		return
	}
	if req.FromLang == "" {
		req.FromLang = model.LanguageEnglish
	}
	if req.ToLang == "" {
		req.ToLang = model.LanguageSpanish
	}
	if !req.FromLang.Valid() || !req.ToLang.Valid() {
		writeJSONError(w, http.StatusBadRequest, "Unsupported language")
		return
	}

	if h.translator == nil {
		writeJSONError(w, http.StatusServiceUnavailable, "Translation is not configured")
		return
	}

	translation, err := h.translator.Translate(r.Context(), translate.Request{
		Text:     req.Text,
		FromLang: req.FromLang,
		ToLang:   req.ToLang,
	})
	if err != nil {
		h.logger.Error("translation failed", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "Translation failed")
		return
	}

	res, err := h.history.Record(r.Context(), history.RecordInput{
		Original:    req.Text,
		Translation: translation,
		FromLang:    req.FromLang,
		ToLang:      req.ToLang,
	})
	if err != nil {
		h.logger.Error("storing translation failed", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "Failed to store translation")
		return
	}

	writeJSONSuccess(w, map[string]any{
		"translation": translation,
		"original":    req.Text,
		"fromLang":    req.FromLang,
		"toLang":      req.ToLang,
		"key":         res.Key,
		"timestamp":   res.Timestamp,
	})
}
