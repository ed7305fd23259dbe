// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package clock

import "time"

// Scheduler holds the next refresh deadline. A late firing is not made up:
// the following deadline is always one interval after the moment it fired.
type Scheduler struct {
	interval time.Duration
	deadline Ticks
}

// NewScheduler arms the first deadline one interval after now.
func NewScheduler(now Ticks, interval time.Duration) *Scheduler {
	s := &Scheduler{interval: interval}
	s.Rearm(now)
	return s
}

// Due reports whether now is past the deadline.
func (s *Scheduler) Due(now Ticks) bool {
	return Diff(now, s.deadline) > 0
}

// Rearm sets the next deadline to now + interval.
func (s *Scheduler) Rearm(now Ticks) {
	s.deadline = now.Add(s.interval)
}

// Deadline returns the currently armed deadline.
func (s *Scheduler) Deadline() Ticks {
	return s.deadline
}

func (s *Scheduler) Interval() time.Duration {
	return s.interval
}
