// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package gps

import (
	"fmt"
	"log"

	serial "github.com/jacobsa/go-serial/serial"
)

// OpenSerial opens the receiver UART (8N1) and returns it as a polled
// LineSource.
func OpenSerial(portName string, baud int) (*ReaderSource, error) {
	if portName == "" {
		return nil, fmt.Errorf("gps: serial port name is empty")
	}
	if baud <= 0 {
		return nil, fmt.Errorf("gps: invalid baud rate %d", baud)
	}

	opts := serial.OpenOptions{
		PortName:              portName,
		BaudRate:              uint(baud),
		DataBits:              8,
		StopBits:              1,
		MinimumReadSize:       1,
		ParityMode:            serial.PARITY_NONE,
		InterCharacterTimeout: 0,
	}

	port, err := serial.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("gps: open %s: %w", portName, err)
	}
	log.Printf("gps: serial port opened on %s at %d baud", portName, baud)

	return NewReaderSource(portName, port), nil
}
