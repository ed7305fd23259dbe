// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package gps

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"log"
	"sync"
	"sync/atomic"
)

// MaxLineLen caps a single line handed to the control loop.
const MaxLineLen = 256

// lineQueueLen is how many complete lines may wait for the loop.
const lineQueueLen = 32

// LineSource yields raw NMEA lines without their terminator.
// Poll must never block: when nothing is available it returns false.
type LineSource interface {
	Poll() ([]byte, bool)
	Close() error
}

// ReaderSource turns a blocking byte stream into a polled LineSource. A
// background goroutine reads lines into a bounded queue; when the queue is
// full the newest line is dropped.
type ReaderSource struct {
	name  string
	rc    io.ReadCloser
	lines chan []byte

	dropped atomic.Uint64

	closeOnce sync.Once
	done      chan struct{}
}

// NewReaderSource starts reading rc immediately.
func NewReaderSource(name string, rc io.ReadCloser) *ReaderSource {
	s := &ReaderSource{
		name:  name,
		rc:    rc,
		lines: make(chan []byte, lineQueueLen),
		done:  make(chan struct{}),
	}
	go s.readLoop()
	return s
}

func (s *ReaderSource) readLoop() {
	defer close(s.done)
	defer close(s.lines)

	reader := bufio.NewReaderSize(s.rc, MaxLineLen)
	for {
		line, err := reader.ReadSlice('\n')
		if errors.Is(err, bufio.ErrBufferFull) {
			// over-long line: hand over what we have, the rest follows
			// as a separate fragment and the decoder sorts it out
			err = nil
		}
		if len(line) > 0 {
			line = bytes.TrimRight(line, "\r\n")
			if len(line) > 0 {
				s.push(append([]byte(nil), line...))
			}
		}
		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrClosedPipe) {
				log.Printf("gps: %s read error: %v", s.name, err)
			}
			return
		}
	}
}

func (s *ReaderSource) push(line []byte) {
	select {
	case s.lines <- line:
	default:
		if n := s.dropped.Add(1); n == 1 || n%100 == 0 {
			log.Printf("gps: %s line queue full, %d lines dropped", s.name, n)
		}
	}
}

// Poll returns the next queued line, if any.
func (s *ReaderSource) Poll() ([]byte, bool) {
	select {
	case line, ok := <-s.lines:
		return line, ok
	default:
		return nil, false
	}
}

// Dropped is the number of lines lost to a full queue.
func (s *ReaderSource) Dropped() uint64 {
	return s.dropped.Load()
}

// Done is closed when the reader goroutine has stopped.
func (s *ReaderSource) Done() <-chan struct{} {
	return s.done
}

func (s *ReaderSource) Close() error {
	var err error
	s.closeOnce.Do(func() {
		err = s.rc.Close()
	})
	return err
}
