// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Flow Engineering

package flowserial

import "fmt"

// encodeFrame serializes a frame to wire format:
// start marker, instruction, start address, length, payload, checksum
// (low byte first). The checksum covers instruction through payload.
func encodeFrame(instruction, startAddress, length byte, payload []byte) []byte {
	out := make([]byte, 0, 6+len(payload))
	out = append(out, StartByte, instruction, startAddress, length)
	out = append(out, payload...)

	sum := ChecksumOver(out[1:])
	out = append(out, byte(sum), byte(sum>>8))
	return out
}

// EncodeReadRequest builds a Read frame asking the peer for nBytes of its
// register starting at startAddress. The length field carries the requested
// count; no payload follows it.
func EncodeReadRequest(startAddress byte, nBytes int) ([]byte, error) {
	if nBytes < 0 || nBytes > MaxPayloadSize {
		return nil, fmt.Errorf("read request too large: %d bytes (max %d)", nBytes, MaxPayloadSize)
	}
	return encodeFrame(InstructionRead, startAddress, byte(nBytes), nil), nil
}

// EncodeWrite builds a Write frame storing data into the peer's register at
// startAddress.
func EncodeWrite(startAddress byte, data []byte) ([]byte, error) {
	if len(data) > MaxPayloadSize {
		return nil, fmt.Errorf("write payload too large: %d bytes (max %d)", len(data), MaxPayloadSize)
	}
	return encodeFrame(InstructionWrite, startAddress, byte(len(data)), data), nil
}

// EncodeReturnData builds a ReturnRequestedData frame answering a peer's
// read. startAddress echoes the address of the request being answered.
func EncodeReturnData(startAddress byte, data []byte) ([]byte, error) {
	if len(data) > MaxPayloadSize {
		return nil, fmt.Errorf("return payload too large: %d bytes (max %d)", len(data), MaxPayloadSize)
	}
	return encodeFrame(InstructionReturnData, startAddress, byte(len(data)), data), nil
}
