// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package stringutils

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// unicodeNormalizer caches NFKD folding, which dominates title normalization cost.
var unicodeNormalizer = NewNormalizer(defaultNormalizerTTL, foldUnicode)

// letters NFKD leaves untouched because they are distinct letters, not composed forms.
var letterFolds = strings.NewReplacer(
	"æ", "ae", "Æ", "AE",
	"œ", "oe", "Œ", "OE",
	"ø", "o", "Ø", "O",
	"ß", "ss",
	"ð", "d", "Ð", "D",
	"þ", "th", "Þ", "TH",
)

func foldUnicode(s string) string {
	s = letterFolds.Replace(s)

	// transform.Chain is stateful, so build one per call.
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))
	result, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return result
}

// NormalizeUnicode removes diacritics and decomposes ligatures with caching.
// Examples:
//   - "Shōgun" → "Shogun"
//   - "Kimetsu no Yaiba: Hashira Geiko-hen" → unchanged
//   - "Ōkami to Kōshinryō" → "Okami to Koshinryo"
//   - "ﬁ" → "fi"
func NormalizeUnicode(s string) string {
	return unicodeNormalizer.Normalize(s)
}
