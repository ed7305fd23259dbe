// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"fmt"
	"image"
	"image/png"
	"log"
	"math"
	"os"

	"golang.org/x/image/draw"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/devices/v3/ssd1306"
)

// SSD1306 is an I²C OLED panel. Its contrast register doubles as the
// backlight, so it serves as both the panel and the backlight driver.
type SSD1306 struct {
	*ssd1306.Dev
	bus i2c.BusCloser
}

// OpenSSD1306 opens the panel at addr on the named I²C bus ("" picks the
// first bus).
func OpenSSD1306(busName string, addr uint16) (*SSD1306, error) {
	if err := InitHost(); err != nil {
		return nil, fmt.Errorf("panel: %w", err)
	}

	bus, err := i2creg.Open(busName)
	if err != nil {
		return nil, fmt.Errorf("panel: I2C bus open: %w", err)
	}

	dev, err := ssd1306.NewI2C(&addrBus{Bus: bus, addr: addr}, &ssd1306.DefaultOpts)
	if err != nil {
		bus.Close()
		return nil, fmt.Errorf("panel: SSD1306 at 0x%02X: %w", addr, err)
	}
	log.Printf("panel: SSD1306 initialized at 0x%02X (%v)", addr, dev.Bounds().Size())

	return &SSD1306{Dev: dev, bus: bus}, nil
}

// SetLevel maps 0..1 onto the contrast register.
func (d *SSD1306) SetLevel(level float64) error {
	return d.SetContrast(byte(math.Round(clamp01(level) * 255)))
}

func (d *SSD1306) Close() error {
	haltErr := d.Halt()
	if err := d.bus.Close(); err != nil {
		return err
	}
	return haltErr
}

// addrBus pins every transaction to one device address, so drivers with a
// hard-wired address can reach a device strapped to the other one.
type addrBus struct {
	i2c.Bus
	addr uint16
}

func (b *addrBus) Tx(_ uint16, w, r []byte) error {
	return b.Bus.Tx(b.addr, w, r)
}

// PNGPanel writes every presented frame to a PNG file, replacing the
// previous one. Useful on a desk without the handheld.
type PNGPanel struct {
	path   string
	rect   image.Rectangle
	Frames int
}

func NewPNGPanel(path string, width, height int) *PNGPanel {
	return &PNGPanel{path: path, rect: image.Rect(0, 0, width, height)}
}

func (p *PNGPanel) Bounds() image.Rectangle {
	return p.rect
}

func (p *PNGPanel) Draw(r image.Rectangle, src image.Image, sp image.Point) error {
	img := image.NewRGBA(p.rect)
	draw.Draw(img, r.Intersect(p.rect), src, sp, draw.Src)

	// write next to the target and rename, so readers never see half a file
	tmp := p.path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("png panel: %w", err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("png panel: encode: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("png panel: %w", err)
	}
	if err := os.Rename(tmp, p.path); err != nil {
		return fmt.Errorf("png panel: %w", err)
	}
	p.Frames++
	return nil
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
