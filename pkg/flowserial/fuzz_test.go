// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Flow Engineering

package flowserial

import (
	"bytes"
	"math/rand"
	"os"
	"strconv"
	"testing"
	"time"
)

// getFuzzRounds returns the number of fuzz rounds from FUZZ_ROUNDS env var, default 1000
func getFuzzRounds() int {
	if envRounds := os.Getenv("FUZZ_ROUNDS"); envRounds != "" {
		if rounds, err := strconv.Atoi(envRounds); err == nil && rounds > 0 {
			return rounds
		}
	}
	return 1000
}

// getFuzzSeed returns the seed from FUZZ_SEED env var, or generates one from current time
func getFuzzSeed() int64 {
	if envSeed := os.Getenv("FUZZ_SEED"); envSeed != "" {
		if seed, err := strconv.ParseInt(envSeed, 10, 64); err == nil {
			return seed
		}
	}
	return time.Now().UnixNano()
}

// newFuzzRng creates a new random number generator and logs the seed for reproducibility
func newFuzzRng(t *testing.T) *rand.Rand {
	seed := getFuzzSeed()
	t.Logf("Seed: %d (reproduce with FUZZ_SEED=%d)", seed, seed)
	return rand.New(rand.NewSource(seed))
}

// randomFrame builds a random valid frame and returns its wire bytes plus the
// fields it was built from.
func randomFrame(rng *rand.Rand) (wire []byte, instruction, address byte, payload []byte) {
	address = byte(rng.Intn(256))
	switch rng.Intn(3) {
	case 0:
		instruction = InstructionRead
		n := rng.Intn(MaxPayloadSize + 1)
		wire, _ = EncodeReadRequest(address, n)
	case 1:
		instruction = InstructionWrite
		payload = make([]byte, rng.Intn(65))
		rng.Read(payload)
		wire, _ = EncodeWrite(address, payload)
	default:
		instruction = InstructionReturnData
		payload = make([]byte, rng.Intn(65))
		rng.Read(payload)
		wire, _ = EncodeReturnData(address, payload)
	}
	return wire, instruction, address, payload
}

func TestFuzzRandomFramesRoundtrip(t *testing.T) {
	rng := newFuzzRng(t)
	rounds := getFuzzRounds()

	p := NewParser()
	for round := 0; round < rounds; round++ {
		wire, instruction, address, payload := randomFrame(rng)

		var decoded *Frame
		for _, b := range wire {
			frame, err := p.Feed(b)
			if err != nil {
				t.Fatalf("round %d: Feed failed: %v", round, err)
			}
			if frame != nil {
				decoded = frame
			}
		}

		if decoded == nil {
			t.Fatalf("round %d: frame not decoded", round)
		}
		if decoded.Instruction() != instruction || decoded.StartAddress() != address {
			t.Fatalf("round %d: header mismatch", round)
		}
		if !bytes.Equal(decoded.Payload(), payload) {
			t.Fatalf("round %d: payload mismatch", round)
		}
	}
}

func TestFuzzSingleByteCorruptionRejected(t *testing.T) {
	rng := newFuzzRng(t)
	rounds := getFuzzRounds()

	for round := 0; round < rounds; round++ {
		address := byte(rng.Intn(256))
		payload := make([]byte, 1+rng.Intn(64))
		rng.Read(payload)
		wire, err := EncodeWrite(address, payload)
		if err != nil {
			t.Fatalf("round %d: encode failed: %v", round, err)
		}

		// Corrupt one byte at a position that leaves framing intact: the
		// address, a payload byte, or a checksum byte. A single-byte change
		// always shifts the 16-bit sum, so rejection is deterministic.
		positions := make([]int, 0, len(wire))
		positions = append(positions, 2)
		for i := 4; i < len(wire); i++ {
			positions = append(positions, i)
		}
		pos := positions[rng.Intn(len(positions))]
		delta := byte(1 + rng.Intn(255))
		wire[pos] ^= delta

		p := NewParser()
		for _, b := range wire {
			frame, _ := p.Feed(b)
			if frame != nil {
				t.Fatalf("round %d: corrupted frame accepted (pos %d, delta 0x%02X)", round, pos, delta)
			}
		}
		if p.state != stateIdle {
			t.Fatalf("round %d: parser not idle after corruption", round)
		}
	}
}

func TestFuzzNoiseNeverPanicsAndRecovers(t *testing.T) {
	rng := newFuzzRng(t)
	rounds := getFuzzRounds()

	p := NewParser()
	flush := make([]byte, BufferSize+16)

	for round := 0; round < rounds; round++ {
		// Arbitrary junk, any byte value. May leave the parser mid-frame.
		junk := make([]byte, rng.Intn(128))
		rng.Read(junk)
		for _, b := range junk {
			_, _ = p.Feed(b)
		}

		// A run of zeroes longer than any possible in-flight frame drains the
		// parser back to idle: whatever was mid-frame completes or rejects
		// within that run, and zeroes in idle are noise, never a start marker.
		for _, b := range flush {
			_, _ = p.Feed(b)
		}
		if p.state != stateIdle {
			t.Fatalf("round %d: parser not idle after flush (state %d)", round, p.state)
		}

		// From idle, a valid frame must parse.
		wire, _, address, payload := randomFrame(rng)
		var decoded *Frame
		for _, b := range wire {
			frame, err := p.Feed(b)
			if err != nil {
				t.Fatalf("round %d: valid frame rejected: %v", round, err)
			}
			if frame != nil {
				decoded = frame
			}
		}
		if decoded == nil {
			t.Fatalf("round %d: valid frame not decoded after noise", round)
		}
		if decoded.StartAddress() != address || !bytes.Equal(decoded.Payload(), payload) {
			t.Fatalf("round %d: frame decoded incorrectly after noise", round)
		}
	}
}
