// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Flow Engineering

package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/flow-engineering/flowserial/pkg/flowserial"
)

var monitorStatsInterval int

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Display decoded frame traffic in human-readable format",
	Long: `Continuously decode and display FlowSerial frames as they arrive.

Each frame is shown with timestamp, instruction, start address, length and a
payload hex dump. Checksum failures and unrecognized instructions are
reported inline, and a statistics summary is printed periodically.

This command is purely passive: it never answers peer reads, so it is safe
to attach to a live link between two peers.

Supports both serial and WebSocket connections.`,
	RunE: runMonitor,
}

func init() {
	rootCmd.AddCommand(monitorCmd)
	monitorCmd.Flags().IntVar(&monitorStatsInterval, "stats-interval", 30, "Statistics summary interval in seconds (0 to disable)")
}

func runMonitor(cmd *cobra.Command, args []string) error {
	transport, connInfo, err := OpenTransport()
	if err != nil {
		return err
	}
	defer transport.Close()

	fmt.Printf("FlowSerial - Frame Monitor\n")
	fmt.Printf("Connection: %s\n", connInfo)
	fmt.Printf("Press Ctrl+C to exit\n\n")

	parser := flowserial.NewParser()
	var stats flowserial.Statistics
	stats.Reset()

	var nextSummary time.Time
	if monitorStatsInterval > 0 {
		nextSummary = time.Now().Add(time.Duration(monitorStatsInterval) * time.Second)
	}

	for {
		data, err := transport.Receive(200 * time.Millisecond)
		if err != nil {
			fmt.Printf("[ERROR] %v\n", err)
			stats.TransportErrors++
			if !transport.IsOpen() {
				return nil
			}
			continue
		}

		for _, b := range data {
			frame, err := parser.Feed(b)
			if err != nil {
				switch {
				case errors.Is(err, flowserial.ErrChecksumMismatch):
					stats.ChecksumErrors++
				case errors.Is(err, flowserial.ErrUnknownInstruction):
					stats.InstructionErrors++
				}
				fmt.Printf("[ERROR] %v\n", err)
				continue
			}
			if frame != nil {
				stats.FramesReceived++
				stats.LastFrameTime = frame.Timestamp()
				fmt.Print(flowserial.FormatFrame(frame))
			}
		}
		stats.NoiseBytes = parser.NoiseBytes()

		if monitorStatsInterval > 0 && time.Now().After(nextSummary) {
			fmt.Print(stats.String())
			nextSummary = time.Now().Add(time.Duration(monitorStatsInterval) * time.Second)
		}
	}
}
