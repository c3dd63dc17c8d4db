// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package speech

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/olegiv/habla-go/internal/kv"
	"github.com/olegiv/habla-go/internal/model"
)

// CacheTTL is how long synthesized audio stays cached.
const CacheTTL = 30 * 24 * time.Hour

// SpeakResult carries synthesized audio as base64 plus whether it came
// from cache.
type SpeakResult struct {
	AudioBase64 string
	Cached      bool
}

// Service fronts the speech engine with a key-value cache for synthesis.
// Cache failures are never fatal; the engine is the source of truth.
type Service struct {
	engine Engine
	kv     kv.Store
	logger *slog.Logger
}

// NewService creates a speech service.
func NewService(engine Engine, store kv.Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		engine: engine,
		kv:     store,
		logger: logger.With("component", "speech"),
	}
}

// CacheKey derives the cache key for a synthesis request. The text is
// base64-encoded and truncated so arbitrary input stays a valid key.
func CacheKey(lang model.Language, text string) string {
	enc := base64.StdEncoding.EncodeToString([]byte(text))
	if len(enc) > 100 {
		enc = enc[:100]
	}
	return "tts:" + string(lang) + ":" + enc
}

// Speak returns base64 audio for the text, serving from cache when
// possible.
func (s *Service) Speak(ctx context.Context, text string, lang model.Language) (SpeakResult, error) {
	key := CacheKey(lang, text)

	cached, err := s.kv.Get(ctx, key)
	if err == nil {
		return SpeakResult{AudioBase64: string(cached), Cached: true}, nil
	}
	if !errors.Is(err, kv.ErrNotFound) {
		s.logger.Warn("tts cache read failed", "error", err)
	}

	audio, err := s.engine.Synthesize(ctx, text)
	if err != nil {
		return SpeakResult{}, fmt.Errorf("synthesizing speech: %w", err)
	}
	encoded := base64.StdEncoding.EncodeToString(audio)

	if err := s.kv.Set(ctx, key, []byte(encoded), CacheTTL); err != nil {
		s.logger.Warn("tts cache write failed", "error", err)
	}

	return SpeakResult{AudioBase64: encoded}, nil
}

// Transcribe recognizes speech from the uploaded audio.
func (s *Service) Transcribe(ctx context.Context, audio io.Reader, filename string, lang model.Language) (string, error) {
	return s.engine.Transcribe(ctx, audio, filename, lang)
}

// Voices lists the available synthesis voices.
func (s *Service) Voices(ctx context.Context) ([]Voice, error) {
	return s.engine.Voices(ctx)
}
