// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package models

import (
	"encoding/json"
	"time"
)

// ExtraKind identifies which field of an ExtraValue is set.
type ExtraKind uint8

const (
	ExtraString ExtraKind = iota
	ExtraInt
	ExtraFloat
	ExtraBool
)

// ExtraValue is a primitive value from the filename guesser that is not
// part of the core schema (release group, resolution, trusted flag, ...).
type ExtraValue struct {
	Kind  ExtraKind
	Str   string
	Int   int64
	Float float64
	Bool  bool
}

func StringValue(s string) ExtraValue { return ExtraValue{Kind: ExtraString, Str: s} }
func IntValue(i int64) ExtraValue { return ExtraValue{Kind: ExtraInt, Int: i} }
func FloatValue(f float64) ExtraValue { return ExtraValue{Kind: ExtraFloat, Float: f} }
func BoolValue(b bool) ExtraValue { return ExtraValue{Kind: ExtraBool, Bool: b} }

// Any returns the value as an untyped Go primitive.
func (v ExtraValue) Any() any {
	switch v.Kind {
	case ExtraInt:
		return v.Int
	case ExtraFloat:
		return v.Float
	case ExtraBool:
		return v.Bool
	default:
		return v.Str
	}
}

func (v ExtraValue) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Any())
}

// Extra is the typed extension map carried on a TorrentRecord.
type Extra map[string]ExtraValue

// AsMap converts the extension map into plain values, e.g. for filter expressions.
func (e Extra) AsMap() map[string]any {
	out := make(map[string]any, len(e))
	for k, v := range e {
		out[k] = v.Any()
	}
	return out
}

// TorrentRecord is one release from the tracker snapshot.
type TorrentRecord struct {
	Infohash      string    `json:"infohash"`
	Filename      string    `json:"filename"`
	PublishTime   time.Time `json:"publish_time"`
	ParsedTitle   string    `json:"parsed_title,omitempty"`
	ParsedSeason  *int      `json:"parsed_season,omitempty"`
	ParsedEpisode *int      `json:"parsed_episode,omitempty"`
	Extra         Extra     `json:"extra,omitempty"`
}
