// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Flow Engineering

package flowserial

// AccumulateChecksum folds one byte into a running 16-bit frame checksum.
// The sum wraps modulo 65536. The checksum covers the instruction byte
// through the last payload byte; the start marker and the checksum bytes
// themselves are excluded.
func AccumulateChecksum(sum uint16, b byte) uint16 {
	return sum + uint16(b)
}

// ChecksumOver computes the checksum of a byte sequence from a zero seed.
func ChecksumOver(data []byte) uint16 {
	var sum uint16
	for _, b := range data {
		sum = AccumulateChecksum(sum, b)
	}
	return sum
}

// VerifyChecksum reports whether the locally accumulated sum matches the
// 16-bit value received on the wire.
func VerifyChecksum(sum, received uint16) bool {
	return sum == received
}
