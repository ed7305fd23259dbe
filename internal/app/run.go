// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/relabs-tech/gps_compass/internal/ambient"
	"github.com/relabs-tech/gps_compass/internal/clock"
	"github.com/relabs-tech/gps_compass/internal/config"
	"github.com/relabs-tech/gps_compass/internal/display"
	"github.com/relabs-tech/gps_compass/internal/gps"
	"github.com/relabs-tech/gps_compass/internal/sensors"
)

// TuningFromConfig reads the loop constants from cfg.
func TuningFromConfig(cfg *config.Config) Tuning {
	return Tuning{
		RefreshInterval: time.Duration(cfg.ScreenUpdateInterval) * time.Millisecond,
		Backlight: ambient.Controller{
			MinLevel:   cfg.MinBacklightLevel,
			MaxLevel:   cfg.MaxBacklightLevel,
			MaxAmbient: cfg.MaxAmbientLevel,
			Step:       cfg.BacklightAdjustStep,
		},
		AmbientScale: cfg.AmbientScale,
	}
}

func openGPS(cfg *config.Config) (gps.LineSource, error) {
	switch cfg.GPSSource {
	case config.GPSSourceMock:
		log.Println("gps: using mock receiver")
		return gps.NewMockSource(), nil
	case config.GPSSourceFile:
		log.Printf("gps: replaying %s", cfg.GPSReplayFile)
		return gps.OpenFile(cfg.GPSReplayFile, time.Duration(cfg.GPSReplayInterval)*time.Millisecond)
	default:
		return gps.OpenSerial(cfg.GPSSerialPort, cfg.GPSBaudRate)
	}
}

func openLight(cfg *config.Config) (sensors.LightSensor, error) {
	if cfg.LightSource == config.LightSourceMock {
		log.Println("light: using mock sensor")
		return sensors.NewMockLight(), nil
	}
	return sensors.OpenADS1115Light(cfg.LightI2CBus, cfg.LightI2CAddr, cfg.LightChannel)
}

func openButton(cfg *config.Config, clk clock.Clock) (sensors.Button, error) {
	switch cfg.ButtonSource {
	case config.ButtonSourceStdin:
		log.Println("button: press Enter to toggle units")
		return sensors.NewStdinButton(os.Stdin), nil
	case config.ButtonSourceNone:
		return sensors.NoButton{}, nil
	default:
		return sensors.OpenGPIOButton(cfg.ButtonPin, time.Duration(cfg.ButtonRepeatMS)*time.Millisecond, clk)
	}
}

// openSurface builds the canvas with its panel and backlight. The returned
// closer releases the hardware.
func openSurface(cfg *config.Config) (*display.Canvas, func() error, error) {
	var (
		panel     display.Panel
		backlight display.Backlight
		closer    = func() error { return nil }
	)

	switch cfg.DisplayBackend {
	case config.DisplayBackendPNG:
		log.Printf("display: writing frames to %s", cfg.DisplayPNGPath)
		panel = sensors.NewPNGPanel(cfg.DisplayPNGPath, cfg.DisplayWidth, cfg.DisplayHeight)
	default:
		oled, err := sensors.OpenSSD1306(cfg.DisplayI2CBus, cfg.DisplayI2CAddr)
		if err != nil {
			return nil, nil, err
		}
		panel = oled
		closer = oled.Close
		if cfg.BacklightBackend == config.BacklightBackendPanel {
			backlight = oled
		}
	}

	if cfg.BacklightBackend == config.BacklightBackendSysfs {
		bl, err := sensors.OpenSysfsBacklight(cfg.BacklightSysfsPath)
		if err != nil {
			closer()
			return nil, nil, err
		}
		backlight = bl
	}

	c := display.NewCanvas(cfg.DisplayWidth, cfg.DisplayHeight, panel, backlight, cfg.AssetDir)
	return c, closer, nil
}

// RunDevice runs the compass on the hardware named by the global config
// until ctx is cancelled.
func RunDevice(ctx context.Context) error {
	cfg := config.Get()
	clk := clock.NewSystem()

	src, err := openGPS(cfg)
	if err != nil {
		return fmt.Errorf("gps: %w", err)
	}
	light, err := openLight(cfg)
	if err != nil {
		src.Close()
		return err
	}
	button, err := openButton(cfg, clk)
	if err != nil {
		src.Close()
		light.Close()
		return err
	}
	surface, closeSurface, err := openSurface(cfg)
	if err != nil {
		src.Close()
		light.Close()
		closeButton(button)
		return err
	}
	defer closeSurface()

	parts := Parts{
		Clock:   clk,
		GPS:     src,
		Light:   light,
		Button:  button,
		Surface: surface,
	}
	if cfg.MQTTBroker != "" {
		pub, err := ConnectTelemetry(cfg.MQTTBroker, cfg.MQTTClientIDDevice, cfg.TopicTelemetry)
		if err != nil {
			log.Printf("device: telemetry disabled: %v", err)
		} else {
			defer pub.Close()
			parts.Telemetry = pub
		}
	}

	d := NewDevice(parts, TuningFromConfig(cfg))
	defer d.Close()

	if err := d.Boot(); err != nil {
		log.Printf("device: boot: %v", err)
	}
	log.Printf("device: running, refresh every %d ms", cfg.ScreenUpdateInterval)

	runLoop(ctx, d, clk, time.Duration(cfg.LoopIdleMS)*time.Millisecond)
	log.Println("device: shutting down")
	return nil
}

// runLoop steps the device until ctx is done. idle > 0 sleeps between
// iterations so a host CPU is not kept at 100%.
func runLoop(ctx context.Context, d *Device, clk clock.Clock, idle time.Duration) int {
	steps := 0
	for {
		select {
		case <-ctx.Done():
			return steps
		default:
		}
		d.Step(clk.Now())
		steps++
		if idle > 0 {
			time.Sleep(idle)
		}
	}
}
