// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Flow Engineering

package flowserial

import (
	"errors"
	"fmt"
	"time"
)

// Parser error categories. Feed wraps these with frame details; callers
// classify with errors.Is.
var (
	ErrChecksumMismatch   = errors.New("checksum mismatch")
	ErrUnknownInstruction = errors.New("unrecognized instruction")
)

// Parser implements the FlowSerial frame decoder state machine.
//
// Bytes are fed in one at a time. Payload accumulates in the frame under
// construction and is only handed out after the checksum verifies, so a
// corrupted frame never leaks partial data. The parser is not safe for
// concurrent use; Socket serializes access under its lock.
type Parser struct {
	state         int
	frame         *Frame
	argumentBytes int // address + length + payload bytes consumed so far
	checksum      uint16
	received      uint16
	noiseBytes    uint64
}

// NewParser creates a parser in the idle state.
func NewParser() *Parser {
	return &Parser{state: stateIdle}
}

// Reset returns the parser to idle, discarding any frame in progress.
func (p *Parser) Reset() {
	p.state = stateIdle
	p.frame = nil
	p.argumentBytes = 0
	p.checksum = 0
	p.received = 0
}

// NoiseBytes returns the number of bytes skipped while scanning for a start
// marker. Noise on a shared serial line is expected and never an error.
func (p *Parser) NoiseBytes() uint64 {
	return p.noiseBytes
}

// payloadBytes returns how many payload bytes follow the length field.
// Read frames carry no payload; their length field is the requested count.
func payloadBytes(instruction, length byte) int {
	if instruction == InstructionRead {
		return 0
	}
	return int(length)
}

// Feed processes a single byte through the state machine.
// It returns a completed frame exactly when that byte brought a frame to a
// valid checksum. A checksum mismatch or unrecognized instruction returns an
// error and resets the parser; the caller should count and carry on.
func (p *Parser) Feed(b byte) (*Frame, error) {
	switch p.state {
	case stateIdle:
		if b == StartByte {
			p.state = stateStartSeen
		} else {
			p.noiseBytes++
		}
		return nil, nil

	case stateStartSeen:
		switch b {
		case InstructionRead, InstructionWrite, InstructionReturnData:
			p.frame = &Frame{instruction: b}
			p.checksum = AccumulateChecksum(0, b)
			p.argumentBytes = 0
			p.state = stateInstructionSeen
			return nil, nil
		default:
			p.Reset()
			return nil, fmt.Errorf("%w 0x%02X", ErrUnknownInstruction, b)
		}

	case stateInstructionSeen:
		p.checksum = AccumulateChecksum(p.checksum, b)
		switch p.argumentBytes {
		case 0:
			p.frame.startAddress = b
		case 1:
			p.frame.length = b
			p.frame.payload = make([]byte, 0, payloadBytes(p.frame.instruction, b))
		default:
			p.frame.payload = append(p.frame.payload, b)
		}
		p.argumentBytes++
		if p.argumentBytes >= 2+payloadBytes(p.frame.instruction, p.frame.length) {
			p.state = stateArgumentsComplete
		}
		return nil, nil

	case stateArgumentsComplete:
		p.received = uint16(b)
		p.state = stateChecksumLow
		return nil, nil

	case stateChecksumLow:
		p.received |= uint16(b) << 8
		p.state = stateChecksumHigh
		// Evaluate immediately: checksumValid is momentary.
		if !VerifyChecksum(p.checksum, p.received) {
			err := fmt.Errorf("%w: computed 0x%04X, received 0x%04X", ErrChecksumMismatch, p.checksum, p.received)
			p.Reset()
			return nil, err
		}
		p.state = stateChecksumValid
		frame := p.frame
		frame.checksum = p.received
		frame.timestamp = time.Now()
		p.Reset()
		return frame, nil

	default:
		p.Reset()
		return nil, fmt.Errorf("invalid parser state: %d", p.state)
	}
}
