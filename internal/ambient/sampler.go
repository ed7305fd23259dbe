// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package ambient

// Sampler accumulates raw ambient light readings between two screen
// refreshes. It is owned by the control loop and not safe for concurrent use.
type Sampler struct {
	sum   uint64
	count uint64
}

// Accumulate adds one raw ADC reading.
func (s *Sampler) Accumulate(sample uint16) {
	s.sum += uint64(sample)
	s.count++
}

// Count returns the number of readings since the last reset.
func (s *Sampler) Count() int {
	return int(s.count)
}

// AverageAndReset returns the mean of the accumulated readings and clears
// the accumulator. With no readings the average is 0.
func (s *Sampler) AverageAndReset() float64 {
	var avg float64
	if s.count > 0 {
		avg = float64(s.sum) / float64(s.count)
	}
	s.sum = 0
	s.count = 0
	return avg
}
