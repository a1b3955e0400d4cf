// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Flow Engineering

package flowserial

import "time"

// Frame represents one decoded FlowSerial frame.
//
// For Read frames the payload is empty and Length carries the number of
// register bytes the peer requested. For Write and ReturnRequestedData frames
// Length equals len(Payload).
type Frame struct {
	instruction  byte
	startAddress byte
	length       byte
	payload      []byte
	checksum     uint16
	timestamp    time.Time
}

// Instruction returns the frame's operation selector.
func (f *Frame) Instruction() byte {
	return f.instruction
}

// StartAddress returns the first register address the frame refers to.
func (f *Frame) StartAddress() byte {
	return f.startAddress
}

// Length returns the frame's wire length field.
func (f *Frame) Length() byte {
	return f.length
}

// Payload returns the frame's payload bytes. Empty for Read frames.
func (f *Frame) Payload() []byte {
	return f.payload
}

// Checksum returns the 16-bit checksum received with the frame.
func (f *Frame) Checksum() uint16 {
	return f.checksum
}

// Timestamp returns the frame's decode timestamp.
func (f *Frame) Timestamp() time.Time {
	return f.timestamp
}
