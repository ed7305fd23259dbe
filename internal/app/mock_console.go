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

	"github.com/relabs-tech/gps_compass/internal/clock"
	"github.com/relabs-tech/gps_compass/internal/config"
	"github.com/relabs-tech/gps_compass/internal/display"
	"github.com/relabs-tech/gps_compass/internal/gps"
	"github.com/relabs-tech/gps_compass/internal/sensors"
	"github.com/relabs-tech/gps_compass/internal/telemetry"
)

// consolePrinter prints each frame instead of publishing it.
type consolePrinter struct{}

func (consolePrinter) Publish(f telemetry.Frame) {
	fmt.Println(f.Summary())
}

// RunMockConsole runs the full device loop against the simulated receiver
// and light sensor, printing each refresh. Enter toggles the units.
func RunMockConsole(ctx context.Context) error {
	clk := clock.NewSystem()
	d := NewDevice(Parts{
		Clock:     clk,
		GPS:       gps.NewMockSource(),
		Light:     sensors.NewMockLight(),
		Button:    sensors.NewStdinButton(os.Stdin),
		Surface:   &display.Recorder{},
		Telemetry: consolePrinter{},
	}, DefaultTuning())
	defer d.Close()

	if err := d.Boot(); err != nil {
		return err
	}
	log.Println("console: press Enter to toggle units, Ctrl+C to stop")

	runLoop(ctx, d, clk, time.Millisecond)
	return nil
}

// RunMockProducer runs the simulated device and publishes its frames to the
// configured broker, so the web and console viewers can be tried without
// hardware.
func RunMockProducer(ctx context.Context) error {
	cfg := config.Get()
	if cfg.MQTTBroker == "" {
		return fmt.Errorf("producer: MQTT_BROKER is not set")
	}
	pub, err := ConnectTelemetry(cfg.MQTTBroker, cfg.MQTTClientIDDevice+"-mock", cfg.TopicTelemetry)
	if err != nil {
		return err
	}
	defer pub.Close()

	clk := clock.NewSystem()
	d := NewDevice(Parts{
		Clock:     clk,
		GPS:       gps.NewMockSource(),
		Light:     sensors.NewMockLight(),
		Surface:   &display.Recorder{},
		Telemetry: pub,
	}, TuningFromConfig(cfg))
	defer d.Close()

	log.Printf("producer: publishing mock frames to %s", cfg.TopicTelemetry)
	runLoop(ctx, d, clk, time.Duration(cfg.LoopIdleMS)*time.Millisecond)
	if n := pub.Dropped(); n > 0 {
		log.Printf("producer: %d frames dropped", n)
	}
	return nil
}
