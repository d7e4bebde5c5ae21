// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package titles

import (
	"slices"
	"strings"

	"github.com/moistari/rls"
)

// codecAliases maps equivalent video codec names to one canonical form.
var codecAliases = map[string]string{
	"X264":  "AVC",
	"H.264": "AVC",
	"H264":  "AVC",
	"AVC":   "AVC",
	"X265":  "HEVC",
	"H.265": "HEVC",
	"H265":  "HEVC",
	"HEVC":  "HEVC",
}

// sourceAliases folds WEB-DL spellings together. Plain WEB stays ambiguous.
var sourceAliases = map[string]string{
	"WEB-DL": "WEBDL",
	"WEBDL":  "WEBDL",
	"WEBRIP": "WEBRIP",
	"WEB":    "WEB",
}

// NormalizeCodec returns the canonical uppercase name of a video codec.
func NormalizeCodec(codec string) string {
	upper := strings.ToUpper(strings.TrimSpace(codec))
	if canonical, ok := codecAliases[upper]; ok {
		return canonical
	}
	return upper
}

// JoinCodecs normalizes, dedupes and sorts codecs into one space separated
// string, so "x264" and "H.264" releases compare equal in filters.
func JoinCodecs(codecs []string) string {
	out := make([]string, 0, len(codecs))
	for _, c := range codecs {
		n := NormalizeCodec(c)
		if n == "" || slices.Contains(out, n) {
			continue
		}
		out = append(out, n)
	}
	slices.Sort(out)
	return strings.Join(out, " ")
}

// NormalizeSource returns the canonical uppercase name of a release source.
func NormalizeSource(source string) string {
	upper := strings.ToUpper(strings.TrimSpace(source))
	if canonical, ok := sourceAliases[upper]; ok {
		return canonical
	}
	return upper
}

var videoHints = []string{
	"2160p", "1080p", "720p", "576p", "480p", "hevc", "x264", "x265", "av1",
	"bluray", "blu-ray", "bdrip", "web-dl", "webdl", "webrip", "hdtv", "m2ts",
}

// releaseType corrects rls classifying fansub releases as music. Bracketed
// group tags and dash separated episode numbers look like artist - album
// names to it. Video hints turn the release back into an episode, or a
// movie when no episode was found.
func releaseType(r *rls.Release) rls.Type {
	if r.Type != rls.Music || !looksLikeVideo(r) {
		return r.Type
	}
	if r.Series > 0 || r.Episode > 0 {
		return rls.Episode
	}
	return rls.Movie
}

func looksLikeVideo(r *rls.Release) bool {
	if r.Resolution != "" || len(r.HDR) > 0 {
		return true
	}
	for _, c := range r.Codec {
		if containsAny(strings.ToLower(c), videoHints) {
			return true
		}
	}
	return containsAny(strings.ToLower(r.Title), videoHints) ||
		containsAny(strings.ToLower(r.Group), videoHints) ||
		containsAny(strings.ToLower(r.Source), videoHints)
}

func containsAny(s string, tokens []string) bool {
	if s == "" {
		return false
	}
	for _, t := range tokens {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}
