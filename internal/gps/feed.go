// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package gps

import "unicode/utf8"

// Feed hands raw input lines to a Decoder one character at a time.
type Feed struct {
	dec *Decoder
}

func NewFeed(dec *Decoder) *Feed {
	return &Feed{dec: dec}
}

// FeedLine pushes every character of raw into the decoder. Invalid UTF-8
// bytes reach the decoder as utf8.RuneError, which drops the sentence in
// progress. Empty input is a no-op.
func (f *Feed) FeedLine(raw []byte) {
	for len(raw) > 0 {
		r, n := utf8.DecodeRune(raw)
		f.dec.Update(r)
		raw = raw[n:]
	}
}
