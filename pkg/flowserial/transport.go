// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Flow Engineering

package flowserial

import (
	"time"

	"go.bug.st/serial"
)

// Transport is the byte-level link a Socket runs over.
//
// Receive must return within roughly maxWait even when no data arrives, so
// the socket's receive loop stays stoppable; an empty slice with a nil error
// means the wait timed out quietly.
type Transport interface {
	Send(data []byte) error
	Receive(maxWait time.Duration) ([]byte, error)
	Close() error
	IsOpen() bool
}

// SerialTransport implements Transport over a serial port (8N1).
type SerialTransport struct {
	port   serial.Port
	device string
	open   bool
}

// OpenSerial opens the serial device at the given baud rate.
func OpenSerial(device string, baudRate int) (*SerialTransport, error) {
	mode := &serial.Mode{
		BaudRate: baudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	port, err := serial.Open(device, mode)
	if err != nil {
		return nil, &ConnectionError{Kind: KindCouldNotOpen, Message: "could not open " + device, Err: err}
	}

	return &SerialTransport{port: port, device: device, open: true}, nil
}

// Send writes data to the port.
func (t *SerialTransport) Send(data []byte) error {
	if _, err := t.port.Write(data); err != nil {
		return &ConnectionError{Kind: KindWriteFailure, Message: "could not write to " + t.device, Err: err}
	}
	return nil
}

// Receive reads whatever bytes arrive within maxWait. A quiet line returns
// an empty slice and no error.
func (t *SerialTransport) Receive(maxWait time.Duration) ([]byte, error) {
	if err := t.port.SetReadTimeout(maxWait); err != nil {
		return nil, &ConnectionError{Kind: KindReadFailure, Message: "could not set read timeout on " + t.device, Err: err}
	}

	buf := make([]byte, 128)
	n, err := t.port.Read(buf)
	if err != nil {
		return nil, &ConnectionError{Kind: KindReadFailure, Message: "could not read from " + t.device, Err: err}
	}
	return buf[:n], nil
}

// Close closes the port.
func (t *SerialTransport) Close() error {
	if !t.open {
		return nil
	}
	t.open = false
	return t.port.Close()
}

// IsOpen reports whether the port is open.
func (t *SerialTransport) IsOpen() bool {
	return t.open
}
