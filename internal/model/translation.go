// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model defines the data types shared across the application.
package model

// Language is a supported translation language.
type Language string

const (
	LanguageEnglish Language = "en"
	LanguageSpanish Language = "es"
)

// Valid reports whether l is a supported language code.
func (l Language) Valid() bool {
	return l == LanguageEnglish || l == LanguageSpanish
}

// ExamplePair is a usage example attached to a translation, with its
// English rendering.
type ExamplePair struct {
	Text    string `json:"text"`
	English string `json:"english"`
}

// TranslationRecord is a single stored translation. Records are created
// once per translation, mutated only to toggle Favorite, and removed on
// explicit delete or TTL expiry.
type TranslationRecord struct {
	Key         string        `json:"key"`
	Original    string        `json:"original"`
	Translation string        `json:"translation"`
	Examples    []ExamplePair `json:"examples,omitempty"`
	FromLang    Language      `json:"fromLang"`
	ToLang      Language      `json:"toLang"`
	Timestamp   int64         `json:"timestamp"` // creation time, epoch milliseconds
	Favorite    bool          `json:"favorite,omitempty"`
}
