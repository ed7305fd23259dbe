// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package display

import (
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg" // compass assets
	_ "image/png"
	"math"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
)

// Default frame size of the handheld panel.
const (
	DefaultWidth  = 320
	DefaultHeight = 240
)

// Panel is the physical screen a frame is pushed to. periph.io display
// drivers (ssd1306.Dev) satisfy it directly.
type Panel interface {
	Bounds() image.Rectangle
	Draw(r image.Rectangle, src image.Image, sp image.Point) error
}

// Backlight drives the panel backlight. Level is 0..1.
type Backlight interface {
	SetLevel(level float64) error
}

// Canvas is a Surface that rasterises into an RGBA frame and hands the
// frame to a Panel on Present. When the panel has a different size the
// frame is scaled to fit.
type Canvas struct {
	frame *image.RGBA
	pen   *image.Uniform
	face  font.Face

	// TextScale is the pixel multiplier applied to the 7x13 font at
	// scale 1.0.
	TextScale float64

	assetDir string
	assets   map[string]image.Image
	failed   map[string]error

	panel     Panel
	backlight Backlight
	scaled    *image.RGBA
}

// NewCanvas creates a width x height frame. panel and backlight may be nil.
func NewCanvas(width, height int, panel Panel, backlight Backlight, assetDir string) *Canvas {
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	return &Canvas{
		frame:     image.NewRGBA(image.Rect(0, 0, width, height)),
		pen:       image.NewUniform(White),
		face:      basicfont.Face7x13,
		TextScale: 2,
		assetDir:  assetDir,
		assets:    make(map[string]image.Image),
		failed:    make(map[string]error),
		panel:     panel,
		backlight: backlight,
	}
}

// Frame returns the frame being drawn. It is reused between refreshes.
func (c *Canvas) Frame() *image.RGBA {
	return c.frame
}

func (c *Canvas) Clear() {
	draw.Draw(c.frame, c.frame.Bounds(), c.pen, image.Point{}, draw.Src)
}

func (c *Canvas) SetColor(col color.Color) {
	c.pen = image.NewUniform(col)
}

func (c *Canvas) DrawText(s string, x, y, wrap int, scale float64) {
	px := c.TextScale * scale
	if px <= 0 || s == "" {
		return
	}
	lineH := int(math.Ceil(float64(c.face.Metrics().Height.Ceil()) * px))
	for i, line := range c.wrapLines(s, wrap, px) {
		c.drawTextLine(line, x, y+i*lineH, px)
	}
}

// wrapLines breaks s on spaces so that every line fits in width pixels.
// A single word wider than width gets a line of its own.
func (c *Canvas) wrapLines(s string, width int, px float64) []string {
	if width <= 0 {
		return []string{s}
	}
	fits := func(t string) bool {
		return float64(font.MeasureString(c.face, t).Ceil())*px <= float64(width)
	}
	if fits(s) {
		return []string{s}
	}

	var lines []string
	cur := ""
	for _, w := range strings.Fields(s) {
		switch {
		case cur == "":
			cur = w
		case fits(cur + " " + w):
			cur += " " + w
		default:
			lines = append(lines, cur)
			cur = w
		}
	}
	if cur != "" {
		lines = append(lines, cur)
	}
	return lines
}

func (c *Canvas) drawTextLine(s string, x, y int, px float64) {
	m := c.face.Metrics()
	w := font.MeasureString(c.face, s).Ceil()
	h := m.Height.Ceil()
	if w <= 0 || h <= 0 {
		return
	}

	mask := image.NewAlpha(image.Rect(0, 0, w, h))
	d := font.Drawer{
		Dst:  mask,
		Src:  image.Opaque,
		Face: c.face,
		Dot:  fixed.P(0, m.Ascent.Ceil()),
	}
	d.DrawString(s)

	dst := image.Rect(x, y, x+int(math.Round(float64(w)*px)), y+int(math.Round(float64(h)*px)))
	scaled := image.NewAlpha(dst)
	draw.NearestNeighbor.Scale(scaled, dst, mask, mask.Bounds(), draw.Src, nil)
	draw.DrawMask(c.frame, dst, c.pen, image.Point{}, scaled, dst.Min, draw.Over)
}

func (c *Canvas) DrawLine(x1, y1, x2, y2, thickness int) {
	if thickness < 1 {
		thickness = 1
	}
	half := float64(thickness) / 2
	fx1, fy1, fx2, fy2 := float64(x1), float64(y1), float64(x2), float64(y2)

	// offset perpendicular to the line, half the thickness on each side
	var nx, ny float64
	if length := math.Hypot(fx2-fx1, fy2-fy1); length > 0 {
		nx = -(fy2 - fy1) / length * half
		ny = (fx2 - fx1) / length * half
	} else {
		fx1 -= half
		fx2 += half
		ny = half
	}

	b := c.frame.Bounds()
	z := vector.NewRasterizer(b.Dx(), b.Dy())
	z.MoveTo(float32(fx1+nx), float32(fy1+ny))
	z.LineTo(float32(fx2+nx), float32(fy2+ny))
	z.LineTo(float32(fx2-nx), float32(fy2-ny))
	z.LineTo(float32(fx1-nx), float32(fy1-ny))
	z.ClosePath()
	z.Draw(c.frame, b, c.pen, image.Point{})
}

func (c *Canvas) DrawImage(name string, x, y int, scale float64) error {
	img, err := c.asset(name)
	if err != nil {
		return err
	}
	if scale <= 0 {
		scale = 1
	}
	sb := img.Bounds()
	dst := image.Rect(x, y,
		x+int(math.Round(float64(sb.Dx())*scale)),
		y+int(math.Round(float64(sb.Dy())*scale)))

	if scale == 1 {
		draw.Draw(c.frame, dst, img, sb.Min, draw.Src)
	} else {
		draw.ApproxBiLinear.Scale(c.frame, dst, img, sb, draw.Src, nil)
	}
	return nil
}

// asset decodes an image from the asset directory once. Failures are
// remembered so a missing file is not reopened every refresh.
func (c *Canvas) asset(name string) (image.Image, error) {
	if img, ok := c.assets[name]; ok {
		return img, nil
	}
	if err, ok := c.failed[name]; ok {
		return nil, err
	}

	img, err := decodeFile(filepath.Join(c.assetDir, name))
	if err != nil {
		c.failed[name] = err
		return nil, err
	}
	c.assets[name] = img
	return img, nil
}

func decodeFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}

func (c *Canvas) Present() error {
	if c.panel == nil {
		return nil
	}
	pb := c.panel.Bounds()
	var src image.Image = c.frame
	if pb.Size() != c.frame.Bounds().Size() {
		if c.scaled == nil || c.scaled.Bounds() != pb {
			c.scaled = image.NewRGBA(pb)
		}
		draw.ApproxBiLinear.Scale(c.scaled, pb, c.frame, c.frame.Bounds(), draw.Src, nil)
		src = c.scaled
	}
	return c.panel.Draw(pb, src, pb.Min)
}

func (c *Canvas) SetBacklight(level float64) error {
	if c.backlight == nil {
		return nil
	}
	return c.backlight.SetLevel(math.Max(0, math.Min(1, level)))
}
