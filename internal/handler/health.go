// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/olegiv/habla-go/internal/kv"
	"github.com/olegiv/habla-go/internal/version"
)

// HealthHandler handles health check requests.
type HealthHandler struct {
	store     kv.Store
	version   version.Info
	startTime time.Time
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(store kv.Store, info version.Info) *HealthHandler {
	return &HealthHandler{
		store:     store,
		version:   info,
		startTime: time.Now(),
	}
}

// HealthStatus is the health check response.
type HealthStatus struct {
	Status  string           `json:"status"`
	Uptime  string           `json:"uptime"`
	Version string           `json:"version"`
	Checks  map[string]Check `json:"checks"`
}

// Check is the result of a single dependency check.
type Check struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// Health reports overall service health including store connectivity.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	status := HealthStatus{
		Status:  "ok",
		Uptime:  time.Since(h.startTime).Round(time.Second).String(),
		Version: h.version.Version,
		Checks:  map[string]Check{},
	}

	status.Checks["store"] = h.checkStore(r.Context())
	if status.Checks["store"].Status != "ok" {
		status.Status = "degraded"
	}

	code := http.StatusOK
	if status.Status != "ok" {
		code = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(status)
}

func (h *HealthHandler) checkStore(ctx context.Context) Check {
	pinger, ok := h.store.(kv.Pinger)
	if !ok {
		// In-memory store has no backend to probe
		return Check{Status: "ok"}
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := pinger.Ping(ctx); err != nil {
		return Check{Status: "error", Error: err.Error()}
	}
	return Check{Status: "ok"}
}
