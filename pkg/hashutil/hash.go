// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package hashutil canonicalizes torrent infohashes so snapshot rows, stats
// samples and match results all key on the same string.
package hashutil

import (
	"github.com/anacrolix/torrent/metainfo"

	"github.com/hiinaspace/nyaastats/pkg/stringutils"
)

// Normalize canonicalizes a torrent hash by trimming whitespace and converting to lowercase.
// Returns an empty string if the input is blank. The result is interned.
func Normalize(hash string) string {
	return stringutils.InternNormalized(hash)
}

const hexHashLength = 40

// Valid reports whether hash is a 40 character hex v1 infohash.
func Valid(hash string) bool {
	if len(hash) != hexHashLength {
		return false
	}
	var h metainfo.Hash
	return h.FromHexString(hash) == nil
}

// Canonical normalizes hash and reports whether the result is a valid infohash.
func Canonical(hash string) (string, bool) {
	normalized := Normalize(hash)
	if normalized == "" {
		return "", false
	}
	return normalized, Valid(normalized)
}
