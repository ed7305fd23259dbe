// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package telemetry

import (
	"encoding/json"
	"fmt"
	"time"
)

// Frame describes one screen refresh: what was shown and the inputs that
// produced it. The device publishes one per refresh.
type Frame struct {
	Time  time.Time `json:"time"`
	Units string    `json:"units"` // "metric" or "imperial"

	// GPS
	Quality          string  `json:"fix"` // "none", "2d", "3d"
	Valid            bool    `json:"valid"`
	CourseDeg        float64 `json:"course_deg"`
	SpeedKnots       float64 `json:"speed_knots"`
	AltitudeM        float64 `json:"alt_m"`
	SatellitesInView int     `json:"sats_in_view"`
	SatellitesUsed   int     `json:"sats_used"`
	Sentences        uint64  `json:"sentences"`
	ParseErrors      uint64  `json:"parse_errors"`

	// Screen
	Heading       bool   `json:"heading"`
	Direction     string `json:"direction,omitempty"`
	SpeedText     string `json:"speed_text"`
	SpeedLabel    string `json:"speed_label"`
	AltitudeText  string `json:"alt_text"`
	AltitudeLabel string `json:"alt_label"`
	Heartbeat     bool   `json:"heartbeat"`

	// Light
	Ambient         float64 `json:"ambient"`
	AmbientSamples  int     `json:"ambient_samples"`
	BacklightTarget float64 `json:"backlight_target"`
	Backlight       float64 `json:"backlight"`

	Error string `json:"error,omitempty"`
}

// Decode parses a published frame.
func Decode(payload []byte) (Frame, error) {
	var f Frame
	if err := json.Unmarshal(payload, &f); err != nil {
		return Frame{}, fmt.Errorf("telemetry: %w", err)
	}
	return f, nil
}

// Encode is the wire form of a frame.
func (f Frame) Encode() ([]byte, error) {
	return json.Marshal(f)
}

// Summary is the one-line console rendering of a frame.
func (f Frame) Summary() string {
	compass := fmt.Sprintf("acquiring (%d in view)", f.SatellitesInView)
	if f.Heading {
		compass = fmt.Sprintf("%-2s %5.1f°", f.Direction, f.CourseDeg)
	}
	beat := "o"
	if f.Heartbeat {
		beat = "v"
	}
	return fmt.Sprintf("[%s] %-24s speed=%3s %-4s alt=%5s %-2s sats=%d/%d ambient=%6.1f backlight=%.2f %s",
		f.Quality, compass,
		f.SpeedText, f.SpeedLabel,
		f.AltitudeText, f.AltitudeLabel,
		f.SatellitesUsed, f.SatellitesInView,
		f.Ambient, f.Backlight, beat)
}
