// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package gps

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"
)

// FileSource replays a recorded NMEA log, one line per interval, looping
// back to the start at the end of the file.
type FileSource struct {
	lines    []string
	interval time.Duration
	pos      int

	now  func() time.Time
	next time.Time
}

// OpenFile loads an NMEA log. Blank lines are skipped.
func OpenFile(path string, interval time.Duration) (*FileSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("gps: open replay file: %w", err)
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("gps: read replay file: %w", err)
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("gps: replay file %s has no sentences", path)
	}
	return newFileSource(lines, interval, time.Now), nil
}

func newFileSource(lines []string, interval time.Duration, now func() time.Time) *FileSource {
	return &FileSource{lines: lines, interval: interval, now: now, next: now()}
}

func (s *FileSource) Poll() ([]byte, bool) {
	t := s.now()
	if t.Before(s.next) {
		return nil, false
	}
	s.next = t.Add(s.interval)

	line := s.lines[s.pos]
	s.pos = (s.pos + 1) % len(s.lines)
	return []byte(line), true
}

func (s *FileSource) Close() error { return nil }
