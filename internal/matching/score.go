// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package matching

import (
	"math"
	"slices"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// TokenSortRatio scores two normalized titles in [0,100] ignoring word order.
func TokenSortRatio(a, b string) int {
	return ratio(tokenSort(a), tokenSort(b))
}

func tokenSort(s string) string {
	tokens := strings.Fields(s)
	slices.Sort(tokens)
	return strings.Join(tokens, " ")
}

// ratio is 100·(1 − d/L) with L the combined rune length and d the indel
// distance, rounded half to even.
func ratio(a, b string) int {
	total := len([]rune(a)) + len([]rune(b))
	if total == 0 {
		return 0
	}
	d := indelDistance(a, b)
	return int(math.RoundToEven(100 * (1 - float64(d)/float64(total))))
}

// indelDistance counts the insertions and deletions turning a into b. A
// substitution costs two.
func indelDistance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) > len(rb) {
		a, b = b, a
		ra, rb = rb, ra
	}
	// a shorter title contained in order in the longer one is the common
	// case for season and subtitle variants
	if fuzzy.Match(a, b) {
		return len(rb) - len(ra)
	}
	return len(ra) + len(rb) - 2*lcsLength(ra, rb)
}

func lcsLength(a, b []rune) int {
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for i := range a {
		for j := range b {
			switch {
			case a[i] == b[j]:
				cur[j+1] = prev[j] + 1
			case prev[j+1] >= cur[j]:
				cur[j+1] = prev[j+1]
			default:
				cur[j+1] = cur[j]
			}
		}
		prev, cur = cur, prev
	}
	return prev[len(b)]
}
