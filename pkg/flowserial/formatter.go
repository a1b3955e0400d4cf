// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Flow Engineering

package flowserial

import (
	"fmt"
	"strings"
)

// FormatFrame formats a frame into a human-readable one-line summary plus a
// hex dump of any payload.
func FormatFrame(f *Frame) string {
	timestamp := f.Timestamp().Format("15:04:05.000")
	name := FormatInstruction(f.Instruction())

	result := fmt.Sprintf("[%s] %s (0x%02X) addr=0x%02X len=%d\n",
		timestamp, name, f.Instruction(), f.StartAddress(), f.Length())

	if len(f.Payload()) > 0 {
		result += "  payload: " + FormatHex(f.Payload()) + "\n"
	}

	return result
}

// FormatInstruction returns the human-readable name for an instruction code.
func FormatInstruction(instruction byte) string {
	switch instruction {
	case InstructionRead:
		return "READ"
	case InstructionWrite:
		return "WRITE"
	case InstructionReturnData:
		return "RETURN_REQUESTED_DATA"
	default:
		return "UNKNOWN"
	}
}

// FormatHex renders bytes as space-separated hex pairs, 16 per line.
func FormatHex(data []byte) string {
	var b strings.Builder
	for i, v := range data {
		if i > 0 {
			if i%16 == 0 {
				b.WriteString("\n           ")
			} else {
				b.WriteByte(' ')
			}
		}
		fmt.Fprintf(&b, "%02X", v)
	}
	return b.String()
}
