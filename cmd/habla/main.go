// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// habla is the backend for the habla translation PWA: translation history,
// favorites and spaced-repetition flashcards over a key-value store, plus
// thin proxies to the translation and speech providers.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/olegiv/habla-go/internal/config"
	"github.com/olegiv/habla-go/internal/flashcard"
	"github.com/olegiv/habla-go/internal/handler"
	"github.com/olegiv/habla-go/internal/history"
	"github.com/olegiv/habla-go/internal/kv"
	"github.com/olegiv/habla-go/internal/middleware"
	"github.com/olegiv/habla-go/internal/speech"
	"github.com/olegiv/habla-go/internal/translate"
	"github.com/olegiv/habla-go/internal/version"
)

// Version information - injected at build time via ldflags
var (
	appVersion   = "dev"
	appGitCommit = "unknown"
	appBuildTime = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "habla - translation and flashcard backend\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  HABLA_SERVER_PORT     Server port (default: 8080)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  HABLA_REDIS_URL       Redis URL (optional; in-memory store when unset)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  OPENROUTER_API_KEY    Translation provider key\n")
		_, _ = fmt.Fprintf(os.Stderr, "  ELEVENLABS_API_KEY    Speech provider key\n")
	}

	flag.Parse()

	if *showVersion {
		info := version.Info{Version: appVersion, GitCommit: appGitCommit, BuildTime: appBuildTime}
		_, _ = fmt.Printf("habla %s\n", info)
		os.Exit(0)
	}

	if err := run(); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Load .env file if present (development)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	versionInfo := version.Info{
		Version:   appVersion,
		GitCommit: appGitCommit,
		BuildTime: appBuildTime,
	}

	// Setup logger
	logLevel := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// Key-value store: Redis when configured, in-memory otherwise
	var store kv.Store
	if cfg.UseRedis() {
		slog.Info("connecting to redis")
		store, err = kv.NewRedisStoreFromURL(cfg.RedisURL, cfg.KVPrefix)
		if err != nil {
			return fmt.Errorf("connecting to redis: %w", err)
		}
	} else {
		slog.Warn("no redis URL configured; using in-memory store, data will not survive restarts")
		store = kv.NewMemoryStore()
	}
	defer func() {
		if err := store.Close(); err != nil {
			slog.Error("error closing store", "error", err)
		}
	}()

	historyStore := history.NewStore(store, logger)
	deck := flashcard.NewDeck(store, logger)

	var translator translate.Translator
	if cfg.TranslationEnabled() {
		client, err := translate.NewClient(translate.ClientOptions{
			APIKey:  cfg.OpenRouterAPIKey,
			BaseURL: cfg.OpenRouterBaseURL,
			Model:   cfg.TranslationModel,
		})
		if err != nil {
			return fmt.Errorf("creating translation client: %w", err)
		}
		translator = client
	} else {
		slog.Warn("OPENROUTER_API_KEY not set; translation endpoint disabled")
	}

	var speechSvc *speech.Service
	if cfg.SpeechEnabled() {
		engine, err := speech.NewElevenLabs(cfg.ElevenLabsAPIKey, cfg.TTSVoiceID)
		if err != nil {
			return fmt.Errorf("creating speech client: %w", err)
		}
		speechSvc = speech.NewService(engine, store, logger)
	} else {
		slog.Warn("ELEVENLABS_API_KEY not set; speech endpoints disabled")
	}

	h := handler.New(historyStore, deck, translator, speechSvc, logger)
	healthHandler := handler.NewHealthHandler(store, versionInfo)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(120 * time.Second))

	providerLimit := middleware.RateLimitByIP(cfg.ProviderRPS, cfg.ProviderBurst)

	r.Route("/api", func(r chi.Router) {
		r.With(providerLimit).Post("/translate", h.Translate)
		r.Get("/history", h.History)
		r.Delete("/history", h.DeleteHistoryItem)
		r.Post("/favorite", h.Favorite)
		r.Get("/flashcards", h.DueFlashcards)
		r.Post("/flashcards", h.SubmitReview)
		r.With(providerLimit).Post("/tts", h.TTS)
		r.With(providerLimit).Post("/stt", h.STT)
		r.Get("/voices", h.Voices)
	})
	r.Get("/health", healthHandler.Health)

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      120 * time.Second, // Provider calls can be slow
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		slog.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env, "version", versionInfo.Version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}
