// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Flow Engineering

package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/spf13/cobra"

	"github.com/flow-engineering/flowserial/pkg/flowserial"
)

var (
	captureOutput   string
	captureCount    int
	captureDuration int
)

// frameRecord is the on-disk representation of one captured frame.
// Integer keys keep the stream compact for long captures.
type frameRecord struct {
	Timestamp    time.Time `cbor:"1,keyasint"`
	Instruction  uint8     `cbor:"2,keyasint"`
	StartAddress uint8     `cbor:"3,keyasint"`
	Length       uint8     `cbor:"4,keyasint"`
	Payload      []byte    `cbor:"5,keyasint,omitempty"`
	Checksum     uint16    `cbor:"6,keyasint"`
}

var captureCmd = &cobra.Command{
	Use:   "capture",
	Short: "Capture decoded frames to a CBOR stream file",
	Long: `Capture valid FlowSerial frames to a file as a stream of CBOR records.

Each record holds the frame's timestamp, instruction, start address, length,
payload and checksum. Corrupt frames are counted but not recorded. The
capture stops on Ctrl+C, or earlier if --count or --duration is reached.

The output is a plain concatenation of CBOR maps, readable with any
streaming CBOR decoder.`,
	RunE: runCapture,
}

func init() {
	rootCmd.AddCommand(captureCmd)
	captureCmd.Flags().StringVarP(&captureOutput, "output", "o", "", "Output file (required)")
	captureCmd.Flags().IntVar(&captureCount, "count", 0, "Stop after this many frames (0 = unlimited)")
	captureCmd.Flags().IntVar(&captureDuration, "duration", 0, "Stop after this many seconds (0 = unlimited)")
	captureCmd.MarkFlagRequired("output")
}

func runCapture(cmd *cobra.Command, args []string) error {
	transport, connInfo, err := OpenTransport()
	if err != nil {
		return err
	}
	defer transport.Close()

	file, err := os.Create(captureOutput)
	if err != nil {
		return fmt.Errorf("could not create %s: %v", captureOutput, err)
	}
	defer file.Close()

	fmt.Printf("FlowSerial - Frame Capture\n")
	fmt.Printf("Connection: %s\n", connInfo)
	fmt.Printf("Output: %s\n", captureOutput)
	fmt.Printf("Press Ctrl+C to stop\n\n")

	encoder := cbor.NewEncoder(file)
	parser := flowserial.NewParser()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(interrupt)

	var deadline time.Time
	if captureDuration > 0 {
		deadline = time.Now().Add(time.Duration(captureDuration) * time.Second)
	}

	recorded := 0
	corrupt := 0
	for {
		select {
		case <-interrupt:
			fmt.Printf("\nCapture stopped: %d frames recorded, %d corrupt frames skipped\n", recorded, corrupt)
			return nil
		default:
		}
		if captureDuration > 0 && time.Now().After(deadline) {
			fmt.Printf("\nDuration reached: %d frames recorded, %d corrupt frames skipped\n", recorded, corrupt)
			return nil
		}

		data, err := transport.Receive(200 * time.Millisecond)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Read error: %v\n", err)
			if !transport.IsOpen() {
				return nil
			}
			continue
		}

		for _, b := range data {
			frame, decodeErr := parser.Feed(b)
			if decodeErr != nil {
				corrupt++
				continue
			}
			if frame == nil {
				continue
			}

			record := frameRecord{
				Timestamp:    frame.Timestamp(),
				Instruction:  frame.Instruction(),
				StartAddress: frame.StartAddress(),
				Length:       frame.Length(),
				Payload:      frame.Payload(),
				Checksum:     frame.Checksum(),
			}
			if err := encoder.Encode(record); err != nil {
				return fmt.Errorf("could not write record: %v", err)
			}
			recorded++

			if captureCount > 0 && recorded >= captureCount {
				fmt.Printf("Count reached: %d frames recorded, %d corrupt frames skipped\n", recorded, corrupt)
				return nil
			}
		}
	}
}
