// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package kv

import "testing"

func TestNewRedisStoreRequiresURL(t *testing.T) {
	if _, err := NewRedisStore(DefaultRedisOptions()); err == nil {
		t.Error("expected error for missing URL")
	}
}

func TestNewRedisStoreRejectsInvalidURL(t *testing.T) {
	opts := DefaultRedisOptions()
	opts.URL = "not-a-redis-url"
	if _, err := NewRedisStore(opts); err == nil {
		t.Error("expected error for invalid URL")
	}
}
