// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package titles

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"hyphen joins words", "One-Punch Man Season 3", "onepunch man season 3"},
		{"brackets stripped", "[Oshi no Ko] 3rd Season", "oshi no ko 3rd season"},
		{"diacritics folded", "Shōgun: Part-2!", "shogun part2"},
		{"whitespace collapsed", "  Spy   x\tFamily ", "spy x family"},
		{"subtitle dash removed", "Kizoku Tensei - Megumareta", "kizoku tensei megumareta"},
		{"non latin dropped", "推しの子", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, Normalize(tt.input))
		})
	}
}

func TestGuardInformative(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		guard    Guard
		input    string
		expected bool
	}{
		{"lone digit", DefaultGuard, "2", false},
		{"two letters", DefaultGuard, "ab", false},
		{"digits only", DefaultGuard, "2025", false},
		{"three letters", DefaultGuard, "abc", true},
		{"digits with letter", DefaultGuard, "86 eighty six", true},
		{"empty", DefaultGuard, "", false},
		{"latin not required", Guard{MinLength: 3}, "123", true},
		{"longer minimum", Guard{MinLength: 5, RequireLatin: true}, "abcd", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, tt.guard.Informative(tt.input))
		})
	}
}
