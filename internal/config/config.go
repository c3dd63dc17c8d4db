// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	ServerHost string `env:"HABLA_SERVER_HOST" envDefault:"localhost"`
	ServerPort int    `env:"HABLA_SERVER_PORT" envDefault:"8080"`
	Env        string `env:"HABLA_ENV" envDefault:"development"`
	LogLevel   string `env:"HABLA_LOG_LEVEL" envDefault:"info"`

	// Key-value store configuration
	RedisURL string `env:"HABLA_REDIS_URL"`               // Optional; falls back to the in-memory store
	KVPrefix string `env:"HABLA_KV_PREFIX" envDefault:""` // Key prefix for shared Redis instances

	// Translation provider (OpenAI-compatible)
	OpenRouterAPIKey  string `env:"OPENROUTER_API_KEY"`
	OpenRouterBaseURL string `env:"HABLA_OPENROUTER_BASE_URL" envDefault:"https://openrouter.ai/api/v1"`
	TranslationModel  string `env:"HABLA_TRANSLATION_MODEL" envDefault:"anthropic/claude-haiku-4.5"`

	// Speech provider
	ElevenLabsAPIKey string `env:"ELEVENLABS_API_KEY"`
	TTSVoiceID       string `env:"HABLA_TTS_VOICE_ID"` // Empty = provider default voice

	// Rate limiting for the costly provider-backed endpoints
	ProviderRPS   float64 `env:"HABLA_PROVIDER_RPS" envDefault:"1"`
	ProviderBurst int     `env:"HABLA_PROVIDER_BURST" envDefault:"5"`
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// UseRedis returns true if a Redis backend is configured.
func (c Config) UseRedis() bool {
	return c.RedisURL != ""
}

// TranslationEnabled returns true if the translation provider is configured.
func (c Config) TranslationEnabled() bool {
	return c.OpenRouterAPIKey != ""
}

// SpeechEnabled returns true if the speech provider is configured.
func (c Config) SpeechEnabled() bool {
	return c.ElevenLabsAPIKey != ""
}

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return nil, fmt.Errorf("invalid HABLA_LOG_LEVEL %q (use debug, info, warn or error)", cfg.LogLevel)
	}

	if cfg.ProviderRPS <= 0 {
		return nil, fmt.Errorf("HABLA_PROVIDER_RPS must be positive, got %v", cfg.ProviderRPS)
	}
	if cfg.ProviderBurst <= 0 {
		return nil, fmt.Errorf("HABLA_PROVIDER_BURST must be positive, got %d", cfg.ProviderBurst)
	}

	return cfg, nil
}
