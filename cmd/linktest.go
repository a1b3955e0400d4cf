// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Flow Engineering

package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/flow-engineering/flowserial/pkg/flowserial"
)

var linkTestTimeout int

var linkTestCmd = &cobra.Command{
	Use:   "linktest",
	Short: "Test connection by waiting for a valid FlowSerial frame",
	Long: `Wait for a valid FlowSerial frame on the connection until timeout.

This command connects to a serial port or WebSocket and waits for any frame
that passes checksum validation. Noise and corrupt frames are skipped and
counted while waiting.

Exit codes:
  0 - Frame received before timeout
  1 - Timeout reached without receiving a valid frame
  2 - Connection error

Useful for verifying wiring and baud rate against a live peer.`,
	RunE: runLinkTest,
}

func init() {
	rootCmd.AddCommand(linkTestCmd)
	linkTestCmd.Flags().IntVar(&linkTestTimeout, "timeout", 10, "Timeout in seconds to wait for a frame")
}

func runLinkTest(cmd *cobra.Command, args []string) error {
	transport, connInfo, err := OpenTransport()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Connection error: %v\n", err)
		os.Exit(2)
	}
	defer transport.Close()

	fmt.Printf("FlowSerial - Link Test\n")
	fmt.Printf("Connection: %s\n", connInfo)
	fmt.Printf("Timeout: %d seconds\n", linkTestTimeout)
	fmt.Printf("Waiting for valid FlowSerial frame...\n\n")

	parser := flowserial.NewParser()

	frameChan := make(chan *flowserial.Frame, 1)
	errChan := make(chan error, 1)

	// Reader goroutine
	go func() {
		invalidFrames := 0
		for {
			data, err := transport.Receive(200 * time.Millisecond)
			if err != nil {
				errChan <- err
				return
			}

			for _, b := range data {
				frame, decodeErr := parser.Feed(b)
				if decodeErr != nil {
					invalidFrames++
					continue
				}
				if frame != nil {
					if invalidFrames > 0 || parser.NoiseBytes() > 0 {
						fmt.Printf("(skipped %d noise bytes, %d corrupt frames before sync)\n",
							parser.NoiseBytes(), invalidFrames)
					}
					frameChan <- frame
					return
				}
			}
		}
	}()

	select {
	case frame := <-frameChan:
		fmt.Printf("SUCCESS: Received valid frame\n")
		fmt.Printf("  Instruction: %s (0x%02X)\n", flowserial.FormatInstruction(frame.Instruction()), frame.Instruction())
		fmt.Printf("  Address: 0x%02X\n", frame.StartAddress())
		fmt.Printf("  Length: %d bytes\n", frame.Length())
		fmt.Printf("  Checksum: 0x%04X\n", frame.Checksum())
		os.Exit(0)

	case err := <-errChan:
		fmt.Fprintf(os.Stderr, "Read error: %v\n", err)
		os.Exit(2)

	case <-time.After(time.Duration(linkTestTimeout) * time.Second):
		fmt.Fprintf(os.Stderr, "TIMEOUT: No valid frame received within %d seconds\n", linkTestTimeout)
		os.Exit(1)
	}

	return nil
}
