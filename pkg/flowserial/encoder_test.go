// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Flow Engineering

package flowserial

import (
	"bytes"
	"testing"
)

func TestEncodeReadRequest_WireFormat(t *testing.T) {
	frame, err := EncodeReadRequest(0x04, 2)
	if err != nil {
		t.Fatalf("EncodeReadRequest failed: %v", err)
	}

	// checksum = 0x00 + 0x04 + 0x02 = 0x0006, low byte first
	expected := []byte{StartByte, InstructionRead, 0x04, 0x02, 0x06, 0x00}
	if !bytes.Equal(frame, expected) {
		t.Errorf("wire bytes = % X, want % X", frame, expected)
	}
}

func TestEncodeWrite_WireFormat(t *testing.T) {
	frame, err := EncodeWrite(0x01, []byte{0x09, 0x09})
	if err != nil {
		t.Fatalf("EncodeWrite failed: %v", err)
	}

	// checksum = 0x01 + 0x01 + 0x02 + 0x09 + 0x09 = 0x0016
	expected := []byte{StartByte, InstructionWrite, 0x01, 0x02, 0x09, 0x09, 0x16, 0x00}
	if !bytes.Equal(frame, expected) {
		t.Errorf("wire bytes = % X, want % X", frame, expected)
	}
}

func TestEncodeChecksumHighByte(t *testing.T) {
	// 2 payload bytes of 0xFF push the sum past 0xFF so the high byte is used.
	payload := []byte{0xFF, 0xFF}
	frame, err := EncodeReturnData(0x00, payload)
	if err != nil {
		t.Fatalf("EncodeReturnData failed: %v", err)
	}

	// checksum = 0x02 + 0x00 + 0x02 + 0xFF + 0xFF = 0x0202
	low, high := frame[len(frame)-2], frame[len(frame)-1]
	if low != 0x02 || high != 0x02 {
		t.Errorf("checksum bytes = %02X %02X, want 02 02", low, high)
	}
}

func TestEncodeSizeLimits(t *testing.T) {
	big := make([]byte, MaxPayloadSize+1)

	if _, err := EncodeWrite(0, big); err == nil {
		t.Error("EncodeWrite should reject oversized payload")
	}
	if _, err := EncodeReturnData(0, big); err == nil {
		t.Error("EncodeReturnData should reject oversized payload")
	}
	if _, err := EncodeReadRequest(0, MaxPayloadSize+1); err == nil {
		t.Error("EncodeReadRequest should reject oversized count")
	}
	if _, err := EncodeReadRequest(0, -1); err == nil {
		t.Error("EncodeReadRequest should reject negative count")
	}

	max := make([]byte, MaxPayloadSize)
	if _, err := EncodeWrite(0, max); err != nil {
		t.Errorf("EncodeWrite should accept %d bytes: %v", MaxPayloadSize, err)
	}
}

func TestEncodeDecodeRoundtrip(t *testing.T) {
	tests := []struct {
		name        string
		encode      func() ([]byte, error)
		instruction byte
		address     byte
		length      byte
		payload     []byte
	}{
		{
			name:        "read request",
			encode:      func() ([]byte, error) { return EncodeReadRequest(0x10, 8) },
			instruction: InstructionRead,
			address:     0x10,
			length:      8,
			payload:     nil,
		},
		{
			name:        "write",
			encode:      func() ([]byte, error) { return EncodeWrite(0x20, []byte{1, 2, 3}) },
			instruction: InstructionWrite,
			address:     0x20,
			length:      3,
			payload:     []byte{1, 2, 3},
		},
		{
			name:        "return data",
			encode:      func() ([]byte, error) { return EncodeReturnData(0x00, []byte{7}) },
			instruction: InstructionReturnData,
			address:     0x00,
			length:      1,
			payload:     []byte{7},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wire, err := tt.encode()
			if err != nil {
				t.Fatalf("encode failed: %v", err)
			}

			p := NewParser()
			var decoded *Frame
			for i, b := range wire {
				frame, err := p.Feed(b)
				if err != nil {
					t.Fatalf("Feed(byte %d) failed: %v", i, err)
				}
				if frame != nil {
					if i != len(wire)-1 {
						t.Fatalf("frame completed at byte %d, want %d", i, len(wire)-1)
					}
					decoded = frame
				}
			}

			if decoded == nil {
				t.Fatal("no frame decoded")
			}
			if decoded.Instruction() != tt.instruction {
				t.Errorf("instruction = 0x%02X, want 0x%02X", decoded.Instruction(), tt.instruction)
			}
			if decoded.StartAddress() != tt.address {
				t.Errorf("start address = 0x%02X, want 0x%02X", decoded.StartAddress(), tt.address)
			}
			if decoded.Length() != tt.length {
				t.Errorf("length = %d, want %d", decoded.Length(), tt.length)
			}
			if !bytes.Equal(decoded.Payload(), tt.payload) {
				t.Errorf("payload = % X, want % X", decoded.Payload(), tt.payload)
			}
		})
	}
}
