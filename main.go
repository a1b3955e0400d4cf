// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Flow Engineering
//
// flowserial - FlowSerial register protocol tool
//
// A CLI tool for talking to FlowSerial peers over a serial link or a
// WebSocket bridge: read and write peer registers, monitor frame traffic,
// and capture it for offline analysis.

package main

import (
	"os"

	"github.com/flow-engineering/flowserial/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
