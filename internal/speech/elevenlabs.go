// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package speech wraps the text-to-speech and speech-to-text provider.
package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/olegiv/habla-go/internal/model"
)

const (
	defaultBaseURL = "https://api.elevenlabs.io"
	httpTimeout    = 60 * time.Second

	// DefaultVoiceID must match a voice in the configured Voice Lab.
	DefaultVoiceID = "scn1gPWkdVd8FhODJoei"

	ttsModelID = "eleven_turbo_v2_5"
	sttModelID = "eleven_multilingual_v2"
)

// Voice describes an available synthesis voice.
type Voice struct {
	ID       string `json:"voiceId"`
	Name     string `json:"name"`
	Category string `json:"category,omitempty"`
}

// Engine is the raw speech provider: synthesis, transcription and voice
// listing, without any caching.
type Engine interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
	Transcribe(ctx context.Context, audio io.Reader, filename string, lang model.Language) (string, error)
	Voices(ctx context.Context) ([]Voice, error)
}

// ElevenLabs is an Engine backed by the ElevenLabs HTTP API.
type ElevenLabs struct {
	httpClient *http.Client
	apiKey     string
	baseURL    string
	voiceID    string
}

// NewElevenLabs creates an ElevenLabs engine. voiceID falls back to
// DefaultVoiceID when empty.
func NewElevenLabs(apiKey, voiceID string) (*ElevenLabs, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("elevenlabs API key is required")
	}
	if voiceID == "" {
		voiceID = DefaultVoiceID
	}
	return &ElevenLabs{
		httpClient: &http.Client{Timeout: httpTimeout},
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		voiceID:    voiceID,
	}, nil
}

// Synthesize converts text to audio and returns the raw encoded bytes.
func (e *ElevenLabs) Synthesize(ctx context.Context, text string) ([]byte, error) {
	body, err := json.Marshal(map[string]any{
		"text":     text,
		"model_id": ttsModelID,
		"voice_settings": map[string]any{
			"stability":        0.5,
			"similarity_boost": 0.75,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("encoding tts request: %w", err)
	}

	url := fmt.Sprintf("%s/v1/text-to-speech/%s", e.baseURL, e.voiceID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("xi-api-key", e.apiKey)

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tts request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, apiError("tts", resp)
	}
	return io.ReadAll(resp.Body)
}

// Transcribe uploads audio and returns the recognized text.
func (e *ElevenLabs) Transcribe(ctx context.Context, audio io.Reader, filename string, lang model.Language) (string, error) {
	langCode := "spa"
	if lang == model.LanguageEnglish {
		langCode = "eng"
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	part, err := mw.CreateFormFile("audio", filename)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, audio); err != nil {
		return "", fmt.Errorf("reading audio: %w", err)
	}
	if err := mw.WriteField("model", sttModelID); err != nil {
		return "", err
	}
	if err := mw.WriteField("language_code", langCode); err != nil {
		return "", err
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/v1/speech-to-text", &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("xi-api-key", e.apiKey)

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("stt request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", apiError("stt", resp)
	}

	var result struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decoding stt response: %w", err)
	}
	return result.Text, nil
}

// Voices lists the voices available to the configured API key.
func (e *ElevenLabs) Voices(ctx context.Context) ([]Voice, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.baseURL+"/v1/voices", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("xi-api-key", e.apiKey)

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("voices request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, apiError("voices", resp)
	}

	var result struct {
		Voices []struct {
			VoiceID  string `json:"voice_id"`
			Name     string `json:"name"`
			Category string `json:"category"`
		} `json:"voices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decoding voices response: %w", err)
	}

	voices := make([]Voice, 0, len(result.Voices))
	for _, v := range result.Voices {
		voices = append(voices, Voice{ID: v.VoiceID, Name: v.Name, Category: v.Category})
	}
	return voices, nil
}

// VoiceID returns the voice used for synthesis.
func (e *ElevenLabs) VoiceID() string {
	return e.voiceID
}

func apiError(op string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	msg := strings.TrimSpace(string(body))
	if msg == "" {
		msg = resp.Status
	}
	return fmt.Errorf("elevenlabs %s: status %d: %s", op, resp.StatusCode, msg)
}

// Ensure ElevenLabs implements Engine.
var _ Engine = (*ElevenLabs)(nil)
