// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package clock provides a wrapping millisecond tick counter and the
// deadline scheduler used by the refresh loop.
//
// Ticks wrap around every 2^32 ms (~49.7 days). Comparisons must go through
// Diff, which stays correct across the wrap as long as the two instants are
// less than 2^31 ms apart.
package clock

import "time"

// Ticks is a monotonic millisecond counter that wraps at 2^32.
type Ticks uint32

// Add returns t advanced by d. Sub-millisecond parts of d are dropped.
func (t Ticks) Add(d time.Duration) Ticks {
	return t + Ticks(uint32(d.Milliseconds()))
}

// Diff returns a-b in milliseconds, wrap-safe.
func Diff(a, b Ticks) int32 {
	return int32(a - b)
}

// Clock is a source of Ticks.
type Clock interface {
	Now() Ticks
}

// System is a Clock driven by the Go monotonic clock.
type System struct {
	start time.Time
}

// NewSystem returns a clock whose tick zero is the moment of the call.
func NewSystem() *System {
	return &System{start: time.Now()}
}

func (c *System) Now() Ticks {
	return Ticks(uint32(time.Since(c.start).Milliseconds()))
}

// Manual is a Clock that only moves when told to. Used by simulations and
// tests.
type Manual struct {
	T Ticks
}

func (m *Manual) Now() Ticks { return m.T }

// Advance moves the clock forward by d.
func (m *Manual) Advance(d time.Duration) {
	m.T = m.T.Add(d)
}
