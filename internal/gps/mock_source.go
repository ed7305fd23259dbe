// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package gps

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// MockSource emits a synthetic receiver session: a few seconds of
// satellite acquisition, a short 2D fix and then a 3D fix while driving a
// circle. One GSA/GGA/GSV/RMC burst is produced per period, one line per
// Poll.
type MockSource struct {
	Period     time.Duration // time between bursts
	Acquire    time.Duration // how long the receiver has no fix
	TwoD       time.Duration // how long the 2D fix lasts after acquisition
	SpeedKnots float64
	TurnRate   float64 // degrees per second
	BaseAltM   float64

	now     func() time.Time
	start   time.Time
	next    time.Time
	pending []string
}

// NewMockSource creates a mock receiver that starts acquiring now.
func NewMockSource() *MockSource {
	return newMockSource(time.Now)
}

func newMockSource(now func() time.Time) *MockSource {
	t := now()
	return &MockSource{
		Period:     time.Second,
		Acquire:    8 * time.Second,
		TwoD:       3 * time.Second,
		SpeedKnots: 23,
		TurnRate:   6,
		BaseAltM:   1234,
		now:        now,
		start:      t,
		next:       t,
	}
}

func (m *MockSource) Poll() ([]byte, bool) {
	if len(m.pending) == 0 {
		t := m.now()
		if t.Before(m.next) {
			return nil, false
		}
		m.next = t.Add(m.Period)
		m.pending = m.burst(t)
	}
	line := m.pending[0]
	m.pending = m.pending[1:]
	return []byte(line), true
}

func (m *MockSource) Close() error { return nil }

func (m *MockSource) burst(t time.Time) []string {
	elapsed := t.Sub(m.start)
	secs := elapsed.Seconds()
	utc := t.UTC()
	hms := utc.Format("150405") + ".00"
	dmy := utc.Format("020106")

	fixType, ggaQuality, rmcStatus := "1", "0", "V"
	switch {
	case elapsed >= m.Acquire+m.TwoD:
		fixType, ggaQuality, rmcStatus = "3", "1", "A"
	case elapsed >= m.Acquire:
		fixType, ggaQuality, rmcStatus = "2", "1", "A"
	}

	inView := 9
	if elapsed < m.Acquire {
		inView = int(secs)
	}
	used := 0
	if fixType != "1" {
		used = inView - 2
	}

	course := math.Mod(secs*m.TurnRate, 360)
	alt := m.BaseAltM + 50*math.Sin(secs/20)

	return []string{
		Sentence(fmt.Sprintf("GPGSA,A,%s,%s,2.5,1.3,2.1", fixType, svList(used))),
		Sentence(fmt.Sprintf("GPGGA,%s,4807.038,N,01131.000,E,%s,%02d,0.9,%.1f,M,46.9,M,,",
			hms, ggaQuality, used, alt)),
		Sentence(gsv(inView)),
		Sentence(fmt.Sprintf("GPRMC,%s,%s,4807.038,N,01131.000,E,%05.1f,%05.1f,%s,003.1,W",
			hms, rmcStatus, m.SpeedKnots, course, dmy)),
	}
}

// svList renders the twelve satellite-ID slots of a GSA sentence.
func svList(used int) string {
	ids := make([]string, 12)
	for i := 0; i < used && i < len(ids); i++ {
		ids[i] = fmt.Sprintf("%02d", i+1)
	}
	return strings.Join(ids, ",")
}

// gsv renders a single-message GSV with up to four satellite blocks.
func gsv(inView int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "GPGSV,1,1,%02d", inView)
	for i := 0; i < inView && i < 4; i++ {
		fmt.Fprintf(&b, ",%02d,%02d,%03d,%02d", i+1, 20+10*i, 45+90*i, 35+i)
	}
	return b.String()
}

// Sentence wraps an NMEA payload (no '$', no checksum) into a full
// sentence with its XOR checksum.
func Sentence(payload string) string {
	var sum byte
	for i := 0; i < len(payload); i++ {
		sum ^= payload[i]
	}
	return fmt.Sprintf("$%s*%02X", payload, sum)
}
