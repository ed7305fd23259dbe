// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package display

import "github.com/relabs-tech/gps_compass/internal/gps"

// UnitSystem selects how speed and altitude are shown.
type UnitSystem int

const (
	Metric UnitSystem = iota
	Imperial
)

const metresToFeet = 3.28084

func (u UnitSystem) String() string {
	if u == Imperial {
		return "imperial"
	}
	return "metric"
}

// Toggle returns the other unit system.
func (u UnitSystem) Toggle() UnitSystem {
	if u == Metric {
		return Imperial
	}
	return Metric
}

func (u UnitSystem) SpeedLabel() string {
	if u == Imperial {
		return "mph"
	}
	return "km/h"
}

func (u UnitSystem) AltitudeLabel() string {
	if u == Imperial {
		return "ft"
	}
	return "m"
}

// Speed picks the ground speed in this unit system.
func (u UnitSystem) Speed(s gps.Speed) float64 {
	if u == Imperial {
		return s.MPH
	}
	return s.KPH
}

// Altitude converts metres into this unit system.
func (u UnitSystem) Altitude(metres float64) float64 {
	if u == Imperial {
		return metres * metresToFeet
	}
	return metres
}
