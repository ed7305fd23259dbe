// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/relabs-tech/gps_compass/internal/ambient"
	"github.com/relabs-tech/gps_compass/internal/clock"
	"github.com/relabs-tech/gps_compass/internal/display"
	"github.com/relabs-tech/gps_compass/internal/gps"
	"github.com/relabs-tech/gps_compass/internal/sensors"
	"github.com/relabs-tech/gps_compass/internal/telemetry"
)

// State is everything the loop carries from one iteration to the next
// apart from the sensor accumulators.
type State struct {
	Units     display.UnitSystem
	Backlight float64
	Heartbeat bool
}

// Publisher receives a frame after every refresh. Publish must not block.
type Publisher interface {
	Publish(f telemetry.Frame)
}

// Parts are the inputs and outputs the device loop polls and drives.
type Parts struct {
	Clock     clock.Clock
	GPS       gps.LineSource
	Light     sensors.LightSensor
	Button    sensors.Button
	Surface   display.Surface
	Telemetry Publisher // optional
}

// Tuning holds the loop constants.
type Tuning struct {
	RefreshInterval time.Duration
	Backlight       ambient.Controller
	AmbientScale    float64
}

// DefaultTuning is the handheld's tuning.
func DefaultTuning() Tuning {
	return Tuning{
		RefreshInterval: time.Second,
		Backlight:       ambient.DefaultController(),
		AmbientScale:    ambient.DefaultScale,
	}
}

// Device is the single-threaded control loop. Each Step polls every input
// once and, when the refresh deadline has passed, redraws the screen.
type Device struct {
	State *State

	parts    Parts
	tuning   Tuning
	decoder  *gps.Decoder
	feed     *gps.Feed
	sampler  ambient.Sampler
	sched    *clock.Scheduler
	renderer display.Renderer
	wall     func() time.Time

	lastErr string
}

// NewDevice arms the first refresh one interval from now. The backlight
// starts at the controller minimum in metric units.
func NewDevice(p Parts, t Tuning) *Device {
	if p.Button == nil {
		p.Button = sensors.NoButton{}
	}
	dec := gps.NewDecoder()
	return &Device{
		State: &State{
			Units:     display.Metric,
			Backlight: t.Backlight.MinLevel,
		},
		parts:   p,
		tuning:  t,
		decoder: dec,
		feed:    gps.NewFeed(dec),
		sched:   clock.NewScheduler(p.Clock.Now(), t.RefreshInterval),
		wall:    time.Now,
	}
}

// Boot clears the screen and applies the initial backlight level before
// the first iteration.
func (d *Device) Boot() error {
	var errs []error
	if err := d.parts.Surface.SetBacklight(d.State.Backlight); err != nil {
		errs = append(errs, fmt.Errorf("backlight: %w", err))
	}
	if err := d.renderer.Blank(d.parts.Surface); err != nil {
		errs = append(errs, fmt.Errorf("display: %w", err))
	}
	return errors.Join(errs...)
}

// Step runs one loop iteration at now: GPS, ambient light, button, then
// the refresh when it is due. It reports whether the screen was redrawn.
func (d *Device) Step(now clock.Ticks) bool {
	d.pollGPS()
	d.sampler.Accumulate(d.parts.Light.ReadU16())
	d.pollButton()

	if !d.sched.Due(now) {
		return false
	}
	d.sched.Rearm(now)
	d.refresh()
	return true
}

// Fix returns the decoded receiver state.
func (d *Device) Fix() gps.Fix {
	return d.decoder.Fix()
}

// pollGPS feeds at most one pending line per iteration.
func (d *Device) pollGPS() {
	line, ok := d.parts.GPS.Poll()
	if !ok {
		return
	}
	d.feed.FeedLine(line)
}

func (d *Device) pollButton() {
	if d.parts.Button.Pressed() {
		d.State.Units = d.State.Units.Toggle()
		log.Printf("device: units %s", d.State.Units)
	}
}

func (d *Device) refresh() {
	samples := d.sampler.Count()
	amb := d.sampler.AverageAndReset() * d.tuning.AmbientScale
	ctrl := d.tuning.Backlight
	d.State.Backlight = ctrl.NextLevel(amb, d.State.Backlight)

	var errs []error
	if err := d.parts.Surface.SetBacklight(d.State.Backlight); err != nil {
		errs = append(errs, fmt.Errorf("backlight: %w", err))
	}

	d.State.Heartbeat = !d.State.Heartbeat
	fix := d.decoder.Fix()
	view, err := d.renderer.Render(d.parts.Surface, fix, d.State.Units, d.State.Heartbeat)
	if err != nil {
		errs = append(errs, err)
	}
	err = errors.Join(errs...)
	d.report(err)

	if d.parts.Telemetry == nil {
		return
	}
	f := telemetry.Frame{
		Time:             d.wall(),
		Units:            d.State.Units.String(),
		Quality:          fix.Quality.String(),
		Valid:            fix.Valid,
		CourseDeg:        fix.Course,
		SpeedKnots:       fix.Speed.Knots,
		AltitudeM:        fix.Altitude,
		SatellitesInView: fix.SatellitesInView,
		SatellitesUsed:   fix.SatellitesUsed,
		Sentences:        fix.Sentences,
		ParseErrors:      fix.ParseErrors,
		Heading:          view.Heading,
		SpeedText:        view.SpeedText,
		SpeedLabel:       view.SpeedLabel,
		AltitudeText:     view.AltitudeText,
		AltitudeLabel:    view.AltitudeLabel,
		Heartbeat:        d.State.Heartbeat,
		Ambient:          amb,
		AmbientSamples:   samples,
		BacklightTarget:  ctrl.Target(amb),
		Backlight:        d.State.Backlight,
	}
	if view.Heading {
		f.Direction = view.Direction.String()
	}
	if err != nil {
		f.Error = err.Error()
	}
	d.parts.Telemetry.Publish(f)
}

// report logs refresh errors when they change, so a missing asset does not
// flood the log once a second.
func (d *Device) report(err error) {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	if msg == d.lastErr {
		return
	}
	d.lastErr = msg
	if err != nil {
		log.Printf("device: refresh: %v", err)
	} else {
		log.Println("device: refresh recovered")
	}
}

// Close releases the inputs.
func (d *Device) Close() error {
	var errs []error
	if err := closeButton(d.parts.Button); err != nil {
		errs = append(errs, fmt.Errorf("button: %w", err))
	}
	if err := d.parts.GPS.Close(); err != nil {
		errs = append(errs, fmt.Errorf("gps: %w", err))
	}
	if err := d.parts.Light.Close(); err != nil {
		errs = append(errs, fmt.Errorf("light: %w", err))
	}
	return errors.Join(errs...)
}

// closeButton releases b when it holds a pin or a reader.
func closeButton(b sensors.Button) error {
	if c, ok := b.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
