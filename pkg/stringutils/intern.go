// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package stringutils provides string interning and cached normalizers for
// values that repeat heavily across a snapshot: infohashes, normalized title
// variants and guessed release titles.
package stringutils

import (
	"strings"
	"unique"
)

// Intern returns a canonical copy of s. Identical strings share memory.
func Intern(s string) string {
	if s == "" {
		return ""
	}
	return unique.Make(s).Value()
}

// InternNormalized interns a trimmed, lowercased copy of s.
func InternNormalized(s string) string {
	normalized := strings.ToLower(strings.TrimSpace(s))
	if normalized == "" {
		return ""
	}
	return unique.Make(normalized).Value()
}
