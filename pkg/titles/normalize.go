// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package titles normalizes show and release titles for comparison and
// extracts title/season/episode guesses from raw release filenames.
package titles

import (
	"regexp"
	"strings"
	"time"

	"github.com/hiinaspace/nyaastats/pkg/stringutils"
)

var (
	nonAlphanumeric = regexp.MustCompile(`[^a-z0-9\s]+`)
	latinLetter     = regexp.MustCompile(`[a-z]`)

	titleNormalizer = stringutils.NewNormalizer(5*time.Minute, normalizeTitle)
)

// Guard decides whether a normalized title carries enough signal to be
// compared at all. Degenerate strings such as a lone "2" otherwise score
// perfectly against equally degenerate catalog synonyms.
type Guard struct {
	MinLength    int
	RequireLatin bool
}

// DefaultGuard rejects titles shorter than three characters or without a latin letter.
var DefaultGuard = Guard{MinLength: 3, RequireLatin: true}

// Informative reports whether the already-normalized title passes the guard.
func (g Guard) Informative(normalized string) bool {
	if len(normalized) < g.MinLength {
		return false
	}
	if g.RequireLatin && !latinLetter.MatchString(normalized) {
		return false
	}
	return true
}

// Normalize lowercases, folds diacritics, strips everything that is not
// [a-z0-9] or whitespace, and collapses whitespace. Results are cached.
//
// Examples:
//   - "One-Punch Man Season 3" → "onepunch man season 3"
//   - "[Oshi no Ko] 3rd Season" → "oshi no ko 3rd season"
//   - "Shōgun: Part-2!" → "shogun part2"
func Normalize(title string) string {
	return titleNormalizer.Normalize(title)
}

func normalizeTitle(title string) string {
	title = strings.ToLower(stringutils.NormalizeUnicode(title))
	title = nonAlphanumeric.ReplaceAllString(title, "")
	return stringutils.Intern(strings.Join(strings.Fields(title), " "))
}
