// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package gps

import (
	nmea "github.com/adrianmo/go-nmea"
)

// MaxSentenceLen bounds the sentence buffer. NMEA 0183 allows 82
// characters; anything much longer is line noise.
const MaxSentenceLen = 96

// Decoder assembles NMEA sentences one character at a time and keeps the
// latest receiver state. Partial sentences survive across calls, so input
// can arrive in arbitrary fragments.
//
// Not safe for concurrent use.
type Decoder struct {
	buf        []byte
	inSentence bool
	// checksum characters still expected after '*', or -1 before '*'
	csLeft int

	fix Fix
}

func NewDecoder() *Decoder {
	return &Decoder{buf: make([]byte, 0, MaxSentenceLen), csLeft: -1}
}

// Fix returns a copy of the current state.
func (d *Decoder) Fix() Fix {
	return d.fix
}

// Update consumes one character.
func (d *Decoder) Update(r rune) {
	switch {
	case r == '$':
		d.buf = append(d.buf[:0], '$')
		d.inSentence = true
		d.csLeft = -1
		return
	case !d.inSentence:
		return
	case r == '\r' || r == '\n':
		d.complete()
		return
	case r < 0x20 || r > 0x7e:
		d.discard()
		return
	}

	d.buf = append(d.buf, byte(r))
	if len(d.buf) > MaxSentenceLen {
		d.discard()
		return
	}

	switch {
	case r == '*' && d.csLeft < 0:
		d.csLeft = 2
	case d.csLeft > 0:
		d.csLeft--
		if d.csLeft == 0 {
			d.complete()
		}
	}
}

func (d *Decoder) discard() {
	d.fix.ParseErrors++
	d.reset()
}

func (d *Decoder) reset() {
	d.buf = d.buf[:0]
	d.inSentence = false
	d.csLeft = -1
}

func (d *Decoder) complete() {
	raw := string(d.buf)
	d.reset()

	s, err := nmea.Parse(raw)
	if err != nil {
		d.fix.ParseErrors++
		return
	}
	d.fix.Sentences++
	d.apply(s)
}

func (d *Decoder) apply(s nmea.Sentence) {
	switch m := s.(type) {
	case nmea.GSA:
		d.fix.Quality = qualityFromGSA(m.FixType)

	case nmea.GGA:
		d.fix.SatellitesUsed = int(m.NumSatellites)
		if m.FixQuality != nmea.Invalid {
			d.fix.Altitude = m.Altitude
		}

	case nmea.GSV:
		d.fix.SatellitesInView = int(m.NumberSVsInView)

	case nmea.RMC:
		d.fix.Valid = m.Validity == nmea.ValidRMC
		if d.fix.Valid {
			d.fix.Speed = SpeedFromKnots(m.Speed)
			d.fix.Course = m.Course
		}

	case nmea.VTG:
		d.fix.Course = m.TrueTrack
		d.fix.Speed = Speed{
			Knots: m.GroundSpeedKnots,
			MPH:   m.GroundSpeedKnots * knotsToMPH,
			KPH:   m.GroundSpeedKPH,
		}

	default:
		// other sentence types carry nothing the display needs
	}
}

func qualityFromGSA(fixType string) FixQuality {
	switch fixType {
	case nmea.Fix2D:
		return Fix2D
	case nmea.Fix3D:
		return Fix3D
	default:
		return NoFix
	}
}
