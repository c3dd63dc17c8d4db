// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package translate calls the LLM translation provider.
package translate

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"

	"github.com/olegiv/habla-go/internal/model"
)

// DefaultBaseURL points at OpenRouter's OpenAI-compatible API.
const DefaultBaseURL = "https://openrouter.ai/api/v1"

// DefaultModel is the chat model used for translation.
const DefaultModel = "anthropic/claude-haiku-4.5"

const temperature = 0.7

const systemPrompt = `You are a casual, fun translator between English and Colombian Spanish.

Key rules:
- Use INFORMAL language (tú, not usted)
- Use COLOMBIAN Spanish slang and expressions when natural
- Keep it CASUAL and conversational
- Use SIMPLE words, verbs, and grammar (avoid complex constructions)
- Include innuendos and playful language when appropriate
- Sound like a real Colombian person chatting with a friend

Translate naturally - don't be overly literal. Make it sound how a Colombian would actually say it.`

// Request is a single translation request.
type Request struct {
	Text     string
	FromLang model.Language
	ToLang   model.Language
}

// Translator produces a translation for a request.
type Translator interface {
	Translate(ctx context.Context, req Request) (string, error)
}

// Client is a Translator backed by an OpenAI-compatible chat API.
type Client struct {
	api   openai.Client
	model string
}

// ClientOptions configures the translation client.
type ClientOptions struct {
	APIKey  string
	BaseURL string // defaults to DefaultBaseURL
	Model   string // defaults to DefaultModel
}

// NewClient creates a translation client.
func NewClient(opts ClientOptions) (*Client, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, errors.New("translation API key is required")
	}
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Model == "" {
		opts.Model = DefaultModel
	}

	api := openai.NewClient(
		option.WithAPIKey(opts.APIKey),
		option.WithBaseURL(opts.BaseURL),
	)

	return &Client{api: api, model: opts.Model}, nil
}

// Translate sends the text to the chat model and returns the translation.
func (c *Client) Translate(ctx context.Context, req Request) (string, error) {
	direction := "English to Colombian Spanish"
	if req.FromLang == model.LanguageSpanish {
		direction = "Colombian Spanish to English"
	}

	completion, err := c.api.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: shared.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(fmt.Sprintf("Translate from %s:\n\n%s", direction, req.Text)),
		},
		Temperature: openai.Float(temperature),
	})
	if err != nil {
		return "", fmt.Errorf("translation request: %w", err)
	}
	if len(completion.Choices) == 0 {
		return "", errors.New("translation provider returned no choices")
	}

	return completion.Choices[0].Message.Content, nil
}

// Ensure Client implements Translator.
var _ Translator = (*Client)(nil)
