// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Flow Engineering

package flowserial

import (
	"errors"
	"fmt"
)

// ErrorKind classifies connection faults for programmatic handling.
type ErrorKind int

const (
	// KindCouldNotOpen means the transport could not be opened.
	KindCouldNotOpen ErrorKind = iota
	// KindReadFailure means a hard transport receive failure.
	KindReadFailure
	// KindWriteFailure means a hard transport send failure.
	KindWriteFailure
	// KindTimeout means a blocking read exhausted its retry budget.
	KindTimeout
)

// String returns the kind's human-readable name.
func (k ErrorKind) String() string {
	switch k {
	case KindCouldNotOpen:
		return "could not open"
	case KindReadFailure:
		return "read failure"
	case KindWriteFailure:
		return "write failure"
	case KindTimeout:
		return "timeout"
	default:
		return fmt.Sprintf("unknown kind %d", int(k))
	}
}

// ConnectionError is a connection fault tagged with its kind.
// Protocol-level noise (bad checksum, bad instruction, out-of-range access)
// is never surfaced as a ConnectionError; only transport faults and exhausted
// read retries are.
type ConnectionError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *ConnectionError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Kind.String()
	}
	if e.Err != nil {
		return fmt.Sprintf("flowserial: %s: %v", msg, e.Err)
	}
	return "flowserial: " + msg
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// Retryable reports whether the operation may reasonably be attempted again.
// Timeouts are transient; open and I/O faults need caller intervention.
func (e *ConnectionError) Retryable() bool {
	return e.Kind == KindTimeout
}

// IsTimeout reports whether err is a ConnectionError of kind Timeout.
func IsTimeout(err error) bool {
	var ce *ConnectionError
	return errors.As(err, &ce) && ce.Kind == KindTimeout
}

// KindOf returns the error's kind and true if err is a ConnectionError.
func KindOf(err error) (ErrorKind, bool) {
	var ce *ConnectionError
	if errors.As(err, &ce) {
		return ce.Kind, true
	}
	return 0, false
}
