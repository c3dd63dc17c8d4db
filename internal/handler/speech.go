// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"
	"strings"

	"github.com/olegiv/habla-go/internal/model"
)

// maxAudioBytes caps speech-to-text uploads.
const maxAudioBytes = 10 << 20

type ttsRequest struct {
	Text     string         `json:"text"`
	Language model.Language `json:"language"`
}

// TTS handles POST /api/tts: synthesizes speech for the text, serving
// repeated requests from cache.
func (h *Handler) TTS(w http.ResponseWriter, r *http.Request) {
	var req ttsRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeJSONError(w, http.StatusBadRequest, "Text is required")
		return
	}
	if h.speech == nil {
		writeJSONError(w, http.StatusServiceUnavailable, "Speech is not configured")
		return
	}

	result, err := h.speech.Speak(r.Context(), req.Text, req.Language)
	if err != nil {
		h.logger.Error("text-to-speech failed", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "Text-to-speech failed")
		return
	}

	writeJSONSuccess(w, map[string]any{
		"audio":  result.AudioBase64,
		"cached": result.Cached,
	})
}

// STT handles POST /api/stt: transcribes an uploaded audio file. Expects
// a multipart form with an "audio" file and an optional "language" field.
func (h *Handler) STT(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxAudioBytes)
	if err := r.ParseMultipartForm(maxAudioBytes); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid form data")
		return
	}

	file, header, err := r.FormFile("audio")
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "Audio file is required")
		return
	}
	defer func() { _ = file.Close() }()

	lang := model.Language(r.FormValue("language"))
	if lang == "" {
		lang = model.LanguageEnglish
	}

	if h.speech == nil {
		writeJSONError(w, http.StatusServiceUnavailable, "Speech is not configured")
		return
	}

	text, err := h.speech.Transcribe(r.Context(), file, header.Filename, lang)
	if err != nil {
		h.logger.Error("speech-to-text failed", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "Speech-to-text failed")
		return
	}

	writeJSONSuccess(w, map[string]any{"text": text})
}

// Voices handles GET /api/voices: lists the synthesis voices available
// to the configured API key. Useful when picking a voice ID.
func (h *Handler) Voices(w http.ResponseWriter, r *http.Request) {
	if h.speech == nil {
		writeJSONError(w, http.StatusServiceUnavailable, "Speech is not configured")
		return
	}

	voices, err := h.speech.Voices(r.Context())
	if err != nil {
		h.logger.Error("listing voices failed", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "Failed to fetch voices")
		return
	}

	writeJSONSuccess(w, map[string]any{
		"count":  len(voices),
		"voices": voices,
	})
}
