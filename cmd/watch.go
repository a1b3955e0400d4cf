// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Flow Engineering

package cmd

import (
	"fmt"
	"strconv"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/flow-engineering/flowserial/pkg/flowserial"
)

var watchInterval int

var watchCmd = &cobra.Command{
	Use:   "watch ADDRESS LENGTH",
	Short: "Live view of a peer register range",
	Long: `Continuously poll a range of the peer's register and display it live.

The range is re-read at a fixed interval; bytes that changed since the
previous poll are highlighted. Read timeouts are tracked and shown alongside
the socket's protocol statistics.

Example:
  flowserial watch --port /dev/ttyUSB0 0x00 16`,
	Args: cobra.ExactArgs(2),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().IntVar(&watchInterval, "interval", 500, "Poll interval in milliseconds")
}

func runWatch(cmd *cobra.Command, args []string) error {
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

	interval := time.Duration(watchInterval) * time.Millisecond
	m := initialWatchModel(address, length, connInfo, interval)
	p := tea.NewProgram(m)

	// Poll goroutine: reads the peer range and feeds results to the TUI.
	stop := make(chan struct{})
	go func() {
		buf := make([]byte, length)
		for {
			select {
			case <-stop:
				return
			default:
			}

			start := time.Now()
			err := socket.Read(address, buf)
			elapsed := time.Since(start)

			if err != nil {
				p.Send(watchReadErrorMsg{err: err, stats: socket.Stats()})
			} else {
				data := append([]byte(nil), buf...)
				p.Send(watchDataMsg{data: data, elapsed: elapsed, stats: socket.Stats()})
			}

			select {
			case <-stop:
				return
			case <-time.After(interval):
			}
		}
	}()

	_, runErr := p.Run()
	close(stop)
	return runErr
}
