// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package display

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/relabs-tech/gps_compass/internal/gps"
)

// Screen layout for the 320x240 panel, in frame pixels.
const (
	compassImageX, compassImageY = 2, 4
	directionX, directionY       = 60, 205
	directionScale               = 1.5
	leftWrap                     = 160

	speedX, speedY         = 200, 35
	speedLabelY            = 85
	altitudeX, altitudeY   = 200, 170
	altitudeNarrowX        = 197
	altitudeWideX          = 175
	altitudeLabelY         = 210
	valueScale             = 1.4
	rightWrap              = 319
	separatorY             = 125
	separatorX1            = 170
	separatorX2            = 310
	separatorThickness     = 4
	heartbeatX, heartbeatY = 300, 225
	heartbeatScale         = 0.9
)

// acquiringLines is drawn in the compass region while there is no fix.
var acquiringLines = []struct {
	text string
	x, y int
}{
	{"Acquiring", 5, 40},
	{"....", 5, 70},
	{"satellites", 5, 120},
	{"in view:", 10, 160},
}

// Renderer draws a complete frame. It issues the same call sequence for the
// same inputs.
type Renderer struct{}

// Render clears the frame, draws every region and presents it. A failing
// call does not stop the rest of the frame; all errors are returned
// together.
func (Renderer) Render(s Surface, fix gps.Fix, units UnitSystem, beat bool) (View, error) {
	v := Select(fix, units)
	var errs []error

	s.SetColor(BackgroundBlue)
	s.Clear()

	if err := drawCompass(s, v); err != nil {
		errs = append(errs, err)
	}
	drawSpeed(s, v)
	drawSeparator(s)
	drawAltitude(s, v)
	drawHeartbeat(s, beat)

	if err := s.Present(); err != nil {
		errs = append(errs, fmt.Errorf("display: present: %w", err))
	}
	return v, errors.Join(errs...)
}

// Blank fills the frame with the background and presents it.
func (Renderer) Blank(s Surface) error {
	s.SetColor(BackgroundBlue)
	s.Clear()
	return s.Present()
}

func drawCompass(s Surface, v View) error {
	if !v.Heading {
		s.SetColor(White)
		for _, l := range acquiringLines {
			s.DrawText(l.text, l.x, l.y, leftWrap, 1.0)
		}
		s.DrawText(strconv.Itoa(v.SatellitesInView), 50, 200, leftWrap, 1.0)
		return nil
	}

	var err error
	if e := s.DrawImage(v.Direction.Asset(), compassImageX, compassImageY, 1.0); e != nil {
		err = fmt.Errorf("display: compass image %s: %w", v.Direction.Asset(), e)
	}
	s.SetColor(White)
	s.DrawText(v.Direction.String(), directionX, directionY, leftWrap, directionScale)
	return err
}

func drawSpeed(s Surface, v View) {
	s.SetColor(White)
	s.DrawText(v.SpeedLabel, speedX, speedLabelY, rightWrap, 1.0)
	s.DrawText(v.SpeedText, speedX, speedY, rightWrap, valueScale)
}

func drawSeparator(s Surface) {
	s.SetColor(LineBlue)
	s.DrawLine(separatorX1, separatorY, separatorX2, separatorY, separatorThickness)
}

func drawAltitude(s Surface, v View) {
	s.SetColor(White)
	s.DrawText(v.AltitudeLabel, altitudeX, altitudeLabelY, rightWrap, 1.0)

	x := altitudeX
	if v.AltitudeText != Placeholder {
		x = altitudeNarrowX
		if v.AltitudeWide {
			x = altitudeWideX
		}
	}
	s.DrawText(v.AltitudeText, x, altitudeY, rightWrap, valueScale)
}

func drawHeartbeat(s Surface, beat bool) {
	glyph := "o"
	if beat {
		glyph = "v"
	}
	s.DrawText(glyph, heartbeatX, heartbeatY, rightWrap, heartbeatScale)
}
