// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Flow Engineering

// Package flowserial implements the FlowSerial peer-to-peer register protocol.
//
// FlowSerial lets two devices connected by a byte-oriented link read and write
// each other's exposed register memory. Both ends run identical logic; either
// side may initiate a read or write at any time. This package provides the
// frame parser state machine, checksum validation, request encoding, and the
// Socket type that coordinates a background receiver with blocking reads.
package flowserial

import "time"

// Protocol framing
const (
	StartByte = 0xAA
)

// Instruction codes
const (
	InstructionRead       = 0x00 // peer requests bytes from our register
	InstructionWrite      = 0x01 // peer stores bytes into our register
	InstructionReturnData = 0x02 // peer answers a read we issued
)

// Buffer limits
const (
	BufferSize     = 256 // staging and returned-data buffer capacity
	MaxPayloadSize = 255 // one-byte length field on the wire
)

// Blocking read policy
const (
	ReadTimeout  = 500 * time.Millisecond
	ReadAttempts = 3
)

// receivePollInterval bounds how long the background receiver blocks on the
// transport, so socket teardown cannot hang on a quiet link.
const receivePollInterval = 100 * time.Millisecond

// Parser states (internal)
const (
	stateIdle = iota
	stateStartSeen
	stateInstructionSeen
	stateArgumentsComplete
	stateChecksumLow
	stateChecksumHigh
	stateChecksumValid
)
