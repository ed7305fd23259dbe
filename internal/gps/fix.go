// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package gps

// FixQuality is the receiver's solution mode as reported by GSA.
type FixQuality int

const (
	NoFix FixQuality = iota
	Fix2D
	Fix3D
)

func (q FixQuality) String() string {
	switch q {
	case Fix2D:
		return "2d"
	case Fix3D:
		return "3d"
	default:
		return "none"
	}
}

// HasPosition reports whether the fix carries a horizontal solution
// (course and ground speed are meaningful).
func (q FixQuality) HasPosition() bool {
	return q == Fix2D || q == Fix3D
}

const (
	knotsToMPH = 1.150779
	knotsToKPH = 1.852
)

// Speed is ground speed in every unit the display can show.
type Speed struct {
	Knots float64 `json:"knots"`
	MPH   float64 `json:"mph"`
	KPH   float64 `json:"kph"`
}

// SpeedFromKnots derives the other units from knots.
func SpeedFromKnots(kn float64) Speed {
	return Speed{Knots: kn, MPH: kn * knotsToMPH, KPH: kn * knotsToKPH}
}

// Fix is a snapshot of the decoded receiver state.
type Fix struct {
	Quality          FixQuality `json:"fix"`
	Valid            bool       `json:"valid"`        // last RMC status was "A"
	Course           float64    `json:"course_deg"`   // course over ground, degrees true
	Speed            Speed      `json:"speed"`        // speed over ground
	Altitude         float64    `json:"alt_m"`        // metres above mean sea level
	SatellitesInView int        `json:"sats_in_view"` // from GSV
	SatellitesUsed   int        `json:"sats_used"`    // from GGA
	Sentences        uint64     `json:"sentences"`    // successfully parsed
	ParseErrors      uint64     `json:"parse_errors"` // dropped sentences
}
