// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package display

import "math"

// Direction is one of the eight compass points, clockwise from north.
type Direction int

const (
	North Direction = iota
	NorthEast
	East
	SouthEast
	South
	SouthWest
	West
	NorthWest
)

var directionNames = [8]string{"N", "NE", "E", "SE", "S", "SW", "W", "NW"}

// compassAssets maps each direction to its pre-rendered compass image.
var compassAssets = [8]string{
	"compass-160-N.jpg",
	"compass-160-NE.jpg",
	"compass-160-E.jpg",
	"compass-160-SE.jpg",
	"compass-160-S.jpg",
	"compass-160-SW.jpg",
	"compass-160-W.jpg",
	"compass-160-NW.jpg",
}

func (d Direction) String() string {
	return directionNames[d&7]
}

// Asset is the image name drawn for this direction.
func (d Direction) Asset() string {
	return compassAssets[d&7]
}

// DirectionFor maps a course over ground in degrees to the nearest compass
// point. Each point owns a 45° sector centred on it, so north covers
// [337.5, 22.5).
func DirectionFor(course float64) Direction {
	return sector(course + 22.5)
}

// sector splits a bearing, already offset by half a sector, into eight 45°
// slices starting at north. Bearings outside [0, 360) are wrapped.
func sector(bearing float64) Direction {
	bearing = math.Mod(bearing, 360)
	if bearing < 0 {
		bearing += 360
	}
	if math.IsNaN(bearing) {
		return North
	}
	idx := int(math.Floor(bearing / 45))
	if idx < 0 || idx > 7 {
		idx = 0
	}
	return Direction(idx)
}
