// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Flow Engineering

package flowserial

import (
	"strings"
	"testing"
)

func TestFormatInstruction(t *testing.T) {
	tests := []struct {
		instruction byte
		expected    string
	}{
		{InstructionRead, "READ"},
		{InstructionWrite, "WRITE"},
		{InstructionReturnData, "RETURN_REQUESTED_DATA"},
		{0x7F, "UNKNOWN"},
	}

	for _, tt := range tests {
		if got := FormatInstruction(tt.instruction); got != tt.expected {
			t.Errorf("FormatInstruction(0x%02X) = %q, want %q", tt.instruction, got, tt.expected)
		}
	}
}

func TestFormatFrame(t *testing.T) {
	p := NewParser()
	wire, err := EncodeWrite(0x04, []byte{0xDE, 0xAD})
	if err != nil {
		t.Fatalf("EncodeWrite failed: %v", err)
	}

	var frame *Frame
	for _, b := range wire {
		frame, _ = p.Feed(b)
	}
	if frame == nil {
		t.Fatal("frame not decoded")
	}

	out := FormatFrame(frame)
	for _, want := range []string{"WRITE", "addr=0x04", "len=2", "DE AD"} {
		if !strings.Contains(out, want) {
			t.Errorf("FormatFrame output missing %q:\n%s", want, out)
		}
	}
}

func TestFormatHexWraps(t *testing.T) {
	data := make([]byte, 20)
	out := FormatHex(data)
	if !strings.Contains(out, "\n") {
		t.Error("FormatHex should wrap after 16 bytes")
	}
}
