// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Flow Engineering

package flowserial

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// Socket is one end of a FlowSerial connection.
//
// The register slice is owned by the caller; the socket keeps a borrowed
// reference for its lifetime and never reallocates it. Application code may
// read and write the register directly at any time. A peer Write and a local
// store to the same byte race as ordinary memory (last writer wins); callers
// needing stronger guarantees must synchronize their own register access.
//
// Each socket runs exactly one background goroutine that drains the transport
// and feeds the frame parser. Close stops it before closing the transport.
type Socket struct {
	register  []byte
	transport Transport

	mu       sync.Mutex
	parser   *Parser
	inbox    [BufferSize]byte // latest unread ReturnRequestedData payload
	inboxLen int
	stats    Statistics

	respReady chan struct{}
	stop      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
	closeErr  error

	readTimeout  time.Duration
	readAttempts int
}

// NewSocket creates a socket over an already-open transport and starts its
// receive loop. The register slice is borrowed, not copied.
func NewSocket(register []byte, transport Transport) *Socket {
	s := &Socket{
		register:     register,
		transport:    transport,
		parser:       NewParser(),
		respReady:    make(chan struct{}, 1),
		stop:         make(chan struct{}),
		done:         make(chan struct{}),
		readTimeout:  ReadTimeout,
		readAttempts: ReadAttempts,
	}
	s.stats.Reset()
	go s.receiveLoop()
	return s
}

// OpenUSB opens a serial device and returns a socket running over it.
func OpenUSB(register []byte, device string, baudRate int) (*Socket, error) {
	transport, err := OpenSerial(device, baudRate)
	if err != nil {
		return nil, err
	}
	return NewSocket(register, transport), nil
}

// Register returns the socket's register slice. It is the same memory the
// protocol engine serves to the peer.
func (s *Socket) Register() []byte {
	return s.register
}

// Available returns the number of unread bytes from the most recent response.
func (s *Socket) Available() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inboxLen
}

// GetReturnedData copies up to Available() response bytes into buf, in
// arrival order, and returns the number copied. The data stays readable until
// cleared or overwritten by the next response.
func (s *Socket) GetReturnedData(buf []byte) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copy(buf, s.inbox[:s.inboxLen])
}

// ClearReturnedData discards any unread response bytes.
func (s *Socket) ClearReturnedData() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inboxLen = 0
}

// Stats returns a snapshot of the socket's protocol statistics.
func (s *Socket) Stats() Statistics {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.stats
	st.NoiseBytes = s.parser.NoiseBytes()
	return st
}

// SendReadRequest asks the peer for nBytes of its register starting at
// startAddress. The response arrives asynchronously in the returned-data
// buffer; use Read for the blocking retried form.
func (s *Socket) SendReadRequest(startAddress byte, nBytes int) error {
	frame, err := EncodeReadRequest(startAddress, nBytes)
	if err != nil {
		return err
	}
	return s.transport.Send(frame)
}

// WriteToPeer stores data into the peer's register at startAddress.
// Fire-and-forget: no acknowledgement exists at the protocol level, so
// delivery is not guaranteed. Callers needing confirmation should read the
// bytes back.
func (s *Socket) WriteToPeer(startAddress byte, data []byte) error {
	frame, err := EncodeWrite(startAddress, data)
	if err != nil {
		return err
	}
	return s.transport.Send(frame)
}

// Read fills buf from the peer's register starting at startAddress.
//
// Each attempt clears the returned-data buffer, issues a read request, and
// waits up to ReadTimeout for a response of exactly len(buf) bytes. A
// response of the wrong length counts as a failed attempt. After
// ReadAttempts failures Read returns a Timeout ConnectionError and buf is
// untouched; partial data is never copied out.
func (s *Socket) Read(startAddress byte, buf []byte) error {
	n := len(buf)
	if n > MaxPayloadSize {
		return fmt.Errorf("read too large: %d bytes (max %d)", n, MaxPayloadSize)
	}

	for attempt := 0; attempt < s.readAttempts; attempt++ {
		if attempt > 0 {
			s.mu.Lock()
			s.stats.ReadRetries++
			s.mu.Unlock()
		}

		s.ClearReturnedData()
		// Drop any stale signal from a previous attempt before arming a new one.
		select {
		case <-s.respReady:
		default:
		}

		if err := s.SendReadRequest(startAddress, n); err != nil {
			return err
		}

		timer := time.NewTimer(s.readTimeout)
	wait:
		for {
			select {
			case <-s.respReady:
				s.mu.Lock()
				if s.inboxLen == n {
					copy(buf, s.inbox[:n])
					s.mu.Unlock()
					timer.Stop()
					return nil
				}
				s.mu.Unlock()
				// Wrong length delivered: this attempt failed.
				break wait
			case <-timer.C:
				break wait
			}
		}
		timer.Stop()
	}

	s.mu.Lock()
	s.stats.ReadTimeouts++
	s.mu.Unlock()
	return &ConnectionError{
		Kind:    KindTimeout,
		Message: fmt.Sprintf("no response reading %d bytes at 0x%02X after %d attempts", n, startAddress, s.readAttempts),
	}
}

// Close stops the receive loop and closes the transport. Safe to call more
// than once.
func (s *Socket) Close() error {
	s.closeOnce.Do(func() {
		close(s.stop)
		<-s.done
		s.closeErr = s.transport.Close()
	})
	return s.closeErr
}

// receiveLoop continuously drains the transport into the parser. Receive is
// bounded by receivePollInterval so a stop request is honored promptly.
func (s *Socket) receiveLoop() {
	defer close(s.done)
	for {
		select {
		case <-s.stop:
			return
		default:
		}

		data, err := s.transport.Receive(receivePollInterval)
		if err != nil {
			s.mu.Lock()
			s.stats.TransportErrors++
			s.mu.Unlock()
			select {
			case <-s.stop:
				return
			case <-time.After(receivePollInterval):
			}
			continue
		}

		for _, b := range data {
			s.processByte(b)
		}
	}
}

// processByte feeds one byte to the parser and applies the effect of any
// frame it completes. Returns true exactly when a frame completed.
func (s *Socket) processByte(b byte) bool {
	s.mu.Lock()

	frame, err := s.parser.Feed(b)
	if err != nil {
		switch {
		case errors.Is(err, ErrChecksumMismatch):
			s.stats.ChecksumErrors++
		case errors.Is(err, ErrUnknownInstruction):
			s.stats.InstructionErrors++
		}
		s.mu.Unlock()
		return false
	}
	if frame == nil {
		s.mu.Unlock()
		return false
	}

	s.stats.FramesReceived++
	s.stats.LastFrameTime = frame.Timestamp()

	switch frame.Instruction() {
	case InstructionWrite:
		if s.inRange(frame.StartAddress(), len(frame.Payload())) {
			copy(s.register[frame.StartAddress():], frame.Payload())
			s.stats.WritesApplied++
		} else {
			s.stats.RangeErrors++
		}
		s.mu.Unlock()

	case InstructionRead:
		n := int(frame.Length())
		if !s.inRange(frame.StartAddress(), n) {
			s.stats.RangeErrors++
			s.mu.Unlock()
			return true
		}
		s.stats.ReadsServed++
		data := make([]byte, n)
		copy(data, s.register[frame.StartAddress():])
		s.mu.Unlock()

		// Send without holding the lock; the peer may be slow.
		resp, err := EncodeReturnData(frame.StartAddress(), data)
		if err == nil {
			err = s.transport.Send(resp)
		}
		if err != nil {
			s.mu.Lock()
			s.stats.TransportErrors++
			s.mu.Unlock()
		}

	case InstructionReturnData:
		// A new response overwrites whatever was unread.
		s.inboxLen = copy(s.inbox[:], frame.Payload())
		s.stats.ResponsesReceived++
		s.mu.Unlock()

		select {
		case s.respReady <- struct{}{}:
		default:
		}
	}

	return true
}

// inRange reports whether [startAddress, startAddress+n) fits the register.
func (s *Socket) inRange(startAddress byte, n int) bool {
	return int(startAddress)+n <= len(s.register)
}
