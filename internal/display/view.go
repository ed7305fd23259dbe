// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package display

import (
	"strconv"

	"github.com/relabs-tech/gps_compass/internal/gps"
)

// Placeholder is shown instead of a value the current fix cannot provide.
const Placeholder = "--"

// View is what the three screen regions show for one refresh. Each region
// decides on its own from the fix quality.
type View struct {
	// Compass region: a heading when the fix has a position, otherwise the
	// satellite acquisition message.
	Heading          bool
	Direction        Direction
	SatellitesInView int

	SpeedLabel string
	SpeedText  string

	AltitudeLabel string
	AltitudeText  string
	// AltitudeWide is set when the altitude in the display unit is 1000 or
	// more; it is drawn further left.
	AltitudeWide bool
}

// Select builds the View for a fix in the given unit system.
func Select(fix gps.Fix, units UnitSystem) View {
	v := View{
		SatellitesInView: fix.SatellitesInView,
		SpeedLabel:       units.SpeedLabel(),
		SpeedText:        Placeholder,
		AltitudeLabel:    units.AltitudeLabel(),
		AltitudeText:     Placeholder,
	}

	if fix.Quality.HasPosition() {
		v.Heading = true
		v.Direction = DirectionFor(fix.Course)
		v.SpeedText = formatWhole(units.Speed(fix.Speed))
	}

	if fix.Quality == gps.Fix3D {
		alt := units.Altitude(fix.Altitude)
		v.AltitudeText = formatWhole(alt)
		v.AltitudeWide = alt >= 1000
	}
	return v
}

func formatWhole(v float64) string {
	s := strconv.FormatFloat(v, 'f', 0, 64)
	if s == "-0" {
		return "0"
	}
	return s
}
