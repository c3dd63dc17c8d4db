// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package translate

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/habla-go/internal/model"
)

func TestNewClientRequiresAPIKey(t *testing.T) {
	_, err := NewClient(ClientOptions{})
	assert.Error(t, err)

	_, err = NewClient(ClientOptions{APIKey: "   "})
	assert.Error(t, err)
}

func TestNewClientDefaults(t *testing.T) {
	c, err := NewClient(ClientOptions{APIKey: "sk-test"})
	require.NoError(t, err)
	assert.Equal(t, DefaultModel, c.model)
}

// fakeProvider implements just enough of the chat completions API to
// capture the outgoing request.
func fakeProvider(t *testing.T, reply string, captured *map[string]any) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat/completions", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(captured))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":     "chatcmpl-test",
			"object": "chat.completion",
			"model":  "test-model",
			"choices": []map[string]any{
				{
					"index":         0,
					"finish_reason": "stop",
					"message":       map[string]any{"role": "assistant", "content": reply},
				},
			},
		})
	}))
}

func TestTranslateBuildsDirectionalPrompt(t *testing.T) {
	var captured map[string]any
	srv := fakeProvider(t, "que más parce", &captured)
	defer srv.Close()

	c, err := NewClient(ClientOptions{APIKey: "sk-test", BaseURL: srv.URL, Model: "test-model"})
	require.NoError(t, err)

	got, err := c.Translate(context.Background(), Request{
		Text:     "what's up man",
		FromLang: model.LanguageEnglish,
		ToLang:   model.LanguageSpanish,
	})
	require.NoError(t, err)
	assert.Equal(t, "que más parce", got)

	messages := captured["messages"].([]any)
	require.Len(t, messages, 2)
	system := messages[0].(map[string]any)
	assert.Equal(t, "system", system["role"])
	user := messages[1].(map[string]any)
	content := user["content"].(string)
	assert.True(t, strings.Contains(content, "English to Colombian Spanish"), "content: %s", content)
	assert.True(t, strings.Contains(content, "what's up man"), "content: %s", content)
}

func TestTranslateReverseDirection(t *testing.T) {
	var captured map[string]any
	srv := fakeProvider(t, "what's up", &captured)
	defer srv.Close()

	c, err := NewClient(ClientOptions{APIKey: "sk-test", BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = c.Translate(context.Background(), Request{
		Text:     "qué más",
		FromLang: model.LanguageSpanish,
		ToLang:   model.LanguageEnglish,
	})
	require.NoError(t, err)

	messages := captured["messages"].([]any)
	user := messages[1].(map[string]any)
	assert.Contains(t, user["content"].(string), "Colombian Spanish to English")
}

func TestTranslateProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error": {"message": "no credit"}}`, http.StatusPaymentRequired)
	}))
	defer srv.Close()

	c, err := NewClient(ClientOptions{APIKey: "sk-test", BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = c.Translate(context.Background(), Request{Text: "hola"})
	assert.Error(t, err)
}
