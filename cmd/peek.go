// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Flow Engineering

package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/flow-engineering/flowserial/pkg/flowserial"
)

var peekCmd = &cobra.Command{
	Use:   "peek ADDRESS LENGTH",
	Short: "Read bytes from the peer's register",
	Long: `Read LENGTH bytes from the peer's register starting at ADDRESS.

ADDRESS accepts decimal or 0x-prefixed hex. The read is retried up to three
times with a 500 ms timeout per attempt before giving up.

Example:
  flowserial peek --port /dev/ttyUSB0 0x10 8`,
	Args: cobra.ExactArgs(2),
	RunE: runPeek,
}

func init() {
	rootCmd.AddCommand(peekCmd)
}

// parseAddress parses a register address in decimal or 0x-prefixed hex.
func parseAddress(arg string) (byte, error) {
	value, err := strconv.ParseUint(arg, 0, 8)
	if err != nil {
		return 0, fmt.Errorf("invalid address %q: %v", arg, err)
	}
	return byte(value), nil
}

func runPeek(cmd *cobra.Command, args []string) error {
	address, err := parseAddress(args[0])
	if err != nil {
		return err
	}
	length, err := strconv.Atoi(args[1])
	if err != nil || length <= 0 || length > flowserial.MaxPayloadSize {
		return fmt.Errorf("invalid length %q (1-%d)", args[1], flowserial.MaxPayloadSize)
	}

	socket, connInfo, err := OpenSocket()
	if err != nil {
		return err
	}
	defer socket.Close()

	fmt.Printf("Connection: %s\n", connInfo)
	fmt.Printf("Reading %d bytes at 0x%02X...\n", length, address)

	buf := make([]byte, length)
	if err := socket.Read(address, buf); err != nil {
		return err
	}

	fmt.Printf("  0x%02X: %s\n", address, flowserial.FormatHex(buf))
	return nil
}
