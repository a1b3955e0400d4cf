// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Flow Engineering

package flowserial

import (
	"fmt"
	"time"
)

// Statistics tracks frame counts and error rates for one socket.
// Socket methods update it under the socket lock; Socket.Stats returns a
// snapshot safe to read without synchronization.
type Statistics struct {
	StartTime     time.Time
	LastFrameTime time.Time

	// Counters
	FramesReceived    uint64
	WritesApplied     uint64
	ReadsServed       uint64
	ResponsesReceived uint64
	ChecksumErrors    uint64
	InstructionErrors uint64
	RangeErrors       uint64
	NoiseBytes        uint64
	TransportErrors   uint64
	ReadRetries       uint64
	ReadTimeouts      uint64

	// Rates (calculated)
	FrameRate float64 // frames/sec
	ErrorRate float64 // errors/sec
}

// CalculateRates recomputes the frame and error rates since StartTime.
func (s *Statistics) CalculateRates() {
	elapsed := time.Since(s.StartTime).Seconds()
	if elapsed > 0 {
		s.FrameRate = float64(s.FramesReceived) / elapsed
		errorCount := s.ChecksumErrors + s.InstructionErrors + s.RangeErrors + s.TransportErrors
		s.ErrorRate = float64(errorCount) / elapsed
	}
}

// String returns a formatted statistics summary.
func (s *Statistics) String() string {
	s.CalculateRates()

	var validPercent float64
	if s.FramesReceived > 0 {
		validPercent = float64(s.WritesApplied+s.ReadsServed+s.ResponsesReceived) * 100.0 / float64(s.FramesReceived)
	}

	elapsed := time.Since(s.StartTime)

	result := fmt.Sprintf("=== Statistics (%.0f seconds) ===\n", elapsed.Seconds())
	result += fmt.Sprintf("Frames Received: %8d\n", s.FramesReceived)
	result += fmt.Sprintf("  Writes Applied:   %5d\n", s.WritesApplied)
	result += fmt.Sprintf("  Reads Served:     %5d\n", s.ReadsServed)
	result += fmt.Sprintf("  Responses:        %5d\n", s.ResponsesReceived)
	result += fmt.Sprintf("Applied:         %8.1f%%\n", validPercent)

	if s.ChecksumErrors > 0 {
		result += fmt.Sprintf("Checksum Errors: %8d\n", s.ChecksumErrors)
	}
	if s.InstructionErrors > 0 {
		result += fmt.Sprintf("Bad Instructions:%8d\n", s.InstructionErrors)
	}
	if s.RangeErrors > 0 {
		result += fmt.Sprintf("Range Errors:    %8d\n", s.RangeErrors)
	}
	if s.NoiseBytes > 0 {
		result += fmt.Sprintf("Noise Bytes:     %8d\n", s.NoiseBytes)
	}
	if s.TransportErrors > 0 {
		result += fmt.Sprintf("Transport Errors:%8d\n", s.TransportErrors)
	}
	if s.ReadRetries > 0 || s.ReadTimeouts > 0 {
		result += fmt.Sprintf("Read Retries:    %8d\n", s.ReadRetries)
		result += fmt.Sprintf("Read Timeouts:   %8d\n", s.ReadTimeouts)
	}

	result += fmt.Sprintf("Frame Rate:      %8.1f frames/sec\n", s.FrameRate)
	result += fmt.Sprintf("Error Rate:      %8.1f errors/sec\n", s.ErrorRate)
	result += "================================\n"

	return result
}

// Reset zeroes all counters and restarts the rate clock.
func (s *Statistics) Reset() {
	*s = Statistics{}
	now := time.Now()
	s.StartTime = now
	s.LastFrameTime = now
}
