// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Flow Engineering

package cmd

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/flow-engineering/flowserial/pkg/flowserial"
)

var pokeVerify bool

var pokeCmd = &cobra.Command{
	Use:   "poke ADDRESS BYTE [BYTE...]",
	Short: "Write bytes into the peer's register",
	Long: `Write one or more bytes into the peer's register starting at ADDRESS.

ADDRESS and BYTE values accept decimal or 0x-prefixed hex. The write itself
is fire-and-forget; use --verify to read the bytes back afterwards and
confirm they were stored.

Example:
  flowserial poke --port /dev/ttyUSB0 0x10 0xDE 0xAD --verify`,
	Args: cobra.MinimumNArgs(2),
	RunE: runPoke,
}

func init() {
	rootCmd.AddCommand(pokeCmd)
	pokeCmd.Flags().BoolVar(&pokeVerify, "verify", false, "Read the bytes back after writing")
}

func runPoke(cmd *cobra.Command, args []string) error {
	address, err := parseAddress(args[0])
	if err != nil {
		return err
	}

	data := make([]byte, 0, len(args)-1)
	for _, arg := range args[1:] {
		value, err := strconv.ParseUint(arg, 0, 8)
		if err != nil {
			return fmt.Errorf("invalid byte %q: %v", arg, err)
		}
		data = append(data, byte(value))
	}

	socket, connInfo, err := OpenSocket()
	if err != nil {
		return err
	}
	defer socket.Close()

	fmt.Printf("Connection: %s\n", connInfo)
	fmt.Printf("Writing %d bytes at 0x%02X: %s\n", len(data), address, flowserial.FormatHex(data))

	if err := socket.WriteToPeer(address, data); err != nil {
		return err
	}

	if !pokeVerify {
		fmt.Printf("Write sent (no acknowledgement at protocol level)\n")
		return nil
	}

	readBack := make([]byte, len(data))
	if err := socket.Read(address, readBack); err != nil {
		return fmt.Errorf("verify read failed: %w", err)
	}
	if !bytes.Equal(readBack, data) {
		return fmt.Errorf("verify mismatch: wrote %s, read back %s",
			flowserial.FormatHex(data), flowserial.FormatHex(readBack))
	}

	fmt.Printf("Verified: peer register matches\n")
	return nil
}
