// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package display

import "image/color"

// Surface is the drawing target for one refresh. Drawing calls only change
// an off-screen frame; Present pushes the frame to the panel.
type Surface interface {
	// Clear fills the whole frame with the current colour.
	Clear()
	SetColor(c color.Color)
	// DrawText draws s with its top-left corner at (x, y), wrapping words
	// so that no line is wider than wrap pixels.
	DrawText(s string, x, y, wrap int, scale float64)
	DrawLine(x1, y1, x2, y2, thickness int)
	// DrawImage draws the named asset with its top-left corner at (x, y).
	DrawImage(name string, x, y int, scale float64) error
	Present() error
	// SetBacklight sets the backlight duty, 0..1.
	SetBacklight(level float64) error
}

// Palette of the handheld.
var (
	White          = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	LineBlue       = color.RGBA{R: 42, G: 146, B: 255, A: 255}
	BackgroundBlue = color.RGBA{R: 0, G: 85, B: 218, A: 255}
)
