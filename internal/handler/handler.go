// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package handler implements the HTTP API surface.
package handler

import (
	"log/slog"

	"github.com/olegiv/habla-go/internal/flashcard"
	"github.com/olegiv/habla-go/internal/history"
	"github.com/olegiv/habla-go/internal/speech"
	"github.com/olegiv/habla-go/internal/translate"
)

// Handler holds shared dependencies for all API handlers. Translator and
// speech may be nil when the corresponding provider is not configured;
// their endpoints then answer 503.
type Handler struct {
	history    *history.Store
	deck       *flashcard.Deck
	translator translate.Translator
	speech     *speech.Service
	logger     *slog.Logger
}

// New creates an API handler.
func New(hist *history.Store, deck *flashcard.Deck, translator translate.Translator, speechSvc *speech.Service, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		history:    hist,
		deck:       deck,
		translator: translator,
		speech:     speechSvc,
		logger:     logger.With("component", "handler"),
	}
}
