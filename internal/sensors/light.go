// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"fmt"
	"log"
	"math"
	"time"

	"periph.io/x/conn/v3/analog"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/devices/v3/ads1x15"
)

// LightSensor reports the ambient light level as a 16-bit reading.
// ReadU16 never blocks: it returns the most recent conversion, or 0 until
// the first one arrives.
type LightSensor interface {
	ReadU16() uint16
	Close() error
}

// ADS1115 conversion settings for the light sensor input.
const (
	lightFullScale  = 4096 * physic.MilliVolt
	lightSampleRate = 128 * physic.Hertz
)

var adsChannels = [4]ads1x15.Channel{
	ads1x15.Channel0,
	ads1x15.Channel1,
	ads1x15.Channel2,
	ads1x15.Channel3,
}

// ChannelLight serves the latest sample of a continuous analog stream.
type ChannelLight struct {
	samples <-chan analog.Sample
	stop    func() error
	last    uint16
	closed  bool
}

func newChannelLight(samples <-chan analog.Sample, stop func() error) *ChannelLight {
	return &ChannelLight{samples: samples, stop: stop}
}

// OpenADS1115Light opens an ADS1115 on the given I²C bus and starts
// continuous conversions on one single-ended channel.
func OpenADS1115Light(busName string, addr uint16, channel int) (*ChannelLight, error) {
	if channel < 0 || channel >= len(adsChannels) {
		return nil, fmt.Errorf("light: channel %d out of range", channel)
	}
	if err := InitHost(); err != nil {
		return nil, fmt.Errorf("light: %w", err)
	}

	bus, err := i2creg.Open(busName)
	if err != nil {
		return nil, fmt.Errorf("light: I2C bus open: %w", err)
	}

	adc, err := ads1x15.NewADS1115(bus, &ads1x15.Opts{I2cAddress: addr})
	if err != nil {
		bus.Close()
		return nil, fmt.Errorf("light: ADS1115 at 0x%02X: %w", addr, err)
	}

	pin, err := adc.PinForChannel(adsChannels[channel], lightFullScale, lightSampleRate, ads1x15.SaveEnergy)
	if err != nil {
		bus.Close()
		return nil, fmt.Errorf("light: channel %d: %w", channel, err)
	}
	log.Printf("light: ADS1115 at 0x%02X channel %d, %s", addr, channel, lightSampleRate)

	return newChannelLight(pin.ReadContinuous(), func() error {
		haltErr := pin.Halt()
		if err := bus.Close(); err != nil {
			return err
		}
		return haltErr
	}), nil
}

// ReadU16 drains whatever conversions arrived since the last call and
// keeps the newest.
func (l *ChannelLight) ReadU16() uint16 {
	for !l.closed {
		select {
		case s, ok := <-l.samples:
			if !ok {
				l.closed = true
				break
			}
			l.last = rawToU16(s.Raw)
		default:
			return l.last
		}
	}
	return l.last
}

func (l *ChannelLight) Close() error {
	if l.stop == nil {
		return nil
	}
	stop := l.stop
	l.stop = nil
	return stop()
}

// rawToU16 maps a signed 16-bit single-ended conversion onto 0..65535.
// Negative readings are noise around ground.
func rawToU16(raw int32) uint16 {
	if raw <= 0 {
		return 0
	}
	v := raw * 2
	if v > math.MaxUint16 {
		return math.MaxUint16
	}
	return uint16(v)
}

// MockLight sweeps slowly between dark and bright, following a cosine of
// the given period.
type MockLight struct {
	Period time.Duration
	Low    uint16
	High   uint16
	now    func() time.Time
	start  time.Time
}

func NewMockLight() *MockLight {
	return newMockLight(time.Now)
}

func newMockLight(now func() time.Time) *MockLight {
	return &MockLight{
		Period: 2 * time.Minute,
		Low:    2000,
		High:   20000,
		now:    now,
		start:  now(),
	}
}

func (m *MockLight) ReadU16() uint16 {
	phase := 2 * math.Pi * float64(m.now().Sub(m.start)) / float64(m.Period)
	mid := (float64(m.Low) + float64(m.High)) / 2
	amp := (float64(m.High) - float64(m.Low)) / 2
	return uint16(math.Round(mid - amp*math.Cos(phase)))
}

func (m *MockLight) Close() error { return nil }
