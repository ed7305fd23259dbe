// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package display

import (
	"fmt"
	"image/color"
)

// Op is one recorded drawing call.
type Op struct {
	Kind  string // "clear", "color", "text", "line", "image", "present", "backlight"
	Text  string // text or image name
	X, Y  int
	X2    int
	Y2    int
	Wrap  int
	Scale float64
	Color color.Color
	Level float64
}

func (o Op) String() string {
	switch o.Kind {
	case "text":
		return fmt.Sprintf("text %q @%d,%d x%.1f", o.Text, o.X, o.Y, o.Scale)
	case "image":
		return fmt.Sprintf("image %s @%d,%d", o.Text, o.X, o.Y)
	case "line":
		return fmt.Sprintf("line %d,%d-%d,%d w%d", o.X, o.Y, o.X2, o.Y2, o.Wrap)
	case "backlight":
		return fmt.Sprintf("backlight %.2f", o.Level)
	default:
		return o.Kind
	}
}

// Recorder is a Surface that keeps the calls of the current frame instead
// of drawing them. Clear starts a new frame.
type Recorder struct {
	Ops []Op
	// Frames receives a copy of every presented frame, when set.
	Frames func(ops []Op)
	// ImageErr, when set, is returned by DrawImage.
	ImageErr error

	cur       color.Color
	Backlight float64
	Presented int
}

func (r *Recorder) Clear() {
	r.Ops = r.Ops[:0]
	r.Ops = append(r.Ops, Op{Kind: "clear", Color: r.cur})
}

func (r *Recorder) SetColor(c color.Color) {
	r.cur = c
	r.Ops = append(r.Ops, Op{Kind: "color", Color: c})
}

func (r *Recorder) DrawText(s string, x, y, wrap int, scale float64) {
	r.Ops = append(r.Ops, Op{Kind: "text", Text: s, X: x, Y: y, Wrap: wrap, Scale: scale, Color: r.cur})
}

func (r *Recorder) DrawLine(x1, y1, x2, y2, thickness int) {
	r.Ops = append(r.Ops, Op{Kind: "line", X: x1, Y: y1, X2: x2, Y2: y2, Wrap: thickness, Color: r.cur})
}

func (r *Recorder) DrawImage(name string, x, y int, scale float64) error {
	r.Ops = append(r.Ops, Op{Kind: "image", Text: name, X: x, Y: y, Scale: scale})
	return r.ImageErr
}

func (r *Recorder) Present() error {
	r.Ops = append(r.Ops, Op{Kind: "present"})
	r.Presented++
	if r.Frames != nil {
		r.Frames(append([]Op(nil), r.Ops...))
	}
	return nil
}

func (r *Recorder) SetBacklight(level float64) error {
	r.Backlight = level
	return nil
}

// Texts returns the text of every text call in the current frame, in order.
func (r *Recorder) Texts() []string {
	var out []string
	for _, op := range r.Ops {
		if op.Kind == "text" {
			out = append(out, op.Text)
		}
	}
	return out
}

// FindText returns the first text op with the given text.
func (r *Recorder) FindText(s string) (Op, bool) {
	for _, op := range r.Ops {
		if op.Kind == "text" && op.Text == s {
			return op, true
		}
	}
	return Op{}, false
}
