// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package ambient

// Default backlight tuning of the handheld.
const (
	DefaultMinLevel   = 0.5
	DefaultMaxLevel   = 1.0
	DefaultMaxAmbient = 180.0
	DefaultStep       = 0.05

	// DefaultScale converts a 16-bit ADC average into the ambient level
	// expected by the controller.
	DefaultScale = 0.01007
)

// Controller ramps the backlight toward a level proportional to the ambient
// light, one fixed step per refresh cycle, so brightness changes never snap.
type Controller struct {
	MinLevel   float64
	MaxLevel   float64
	MaxAmbient float64
	Step       float64
}

// DefaultController returns the controller tuning used on the device.
func DefaultController() Controller {
	return Controller{
		MinLevel:   DefaultMinLevel,
		MaxLevel:   DefaultMaxLevel,
		MaxAmbient: DefaultMaxAmbient,
		Step:       DefaultStep,
	}
}

// Target is the backlight level the controller is heading to for the given
// ambient level. It is not clamped.
func (c Controller) Target(ambient float64) float64 {
	if c.MaxAmbient <= 0 {
		return c.MaxLevel
	}
	return (ambient / c.MaxAmbient) * c.MaxLevel
}

// NextLevel returns the backlight level for the next cycle.
func (c Controller) NextLevel(ambient, current float64) float64 {
	target := c.Target(ambient)

	if target > current {
		current += c.Step
	} else if target < current {
		current -= c.Step
	}

	if current > c.MaxLevel {
		current = c.MaxLevel
	} else if current < c.MinLevel {
		current = c.MinLevel
	}
	return current
}
