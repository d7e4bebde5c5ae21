// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package titles

import "strings"

// Corrections maps a guessed title (lowercased, trimmed) to the title it
// should have been. Filename guessers make systematic mistakes, e.g. reading
// the "Ko" of "Oshi no Ko" as a Korean language tag.
type Corrections map[string]string

// DefaultCorrections are the corrections shipped with the binary.
func DefaultCorrections() Corrections {
	return Corrections{
		"oshi no": "oshi no ko",
	}
}

// NewCorrections builds a table with lowercased, trimmed keys. Entries with
// an empty key or value are ignored.
func NewCorrections(entries map[string]string) Corrections {
	c := make(Corrections, len(entries))
	for from, to := range entries {
		key := strings.ToLower(strings.TrimSpace(from))
		to = strings.TrimSpace(to)
		if key == "" || to == "" {
			continue
		}
		c[key] = to
	}
	return c
}

// Apply returns the corrected title, or title unchanged when no entry exists.
func (c Corrections) Apply(title string) string {
	if len(c) == 0 {
		return title
	}
	if corrected, ok := c[strings.ToLower(strings.TrimSpace(title))]; ok {
		return corrected
	}
	return title
}
