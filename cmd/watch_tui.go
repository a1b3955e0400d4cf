// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Flow Engineering

package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/flow-engineering/flowserial/pkg/flowserial"
)

// Event log entry
type watchEvent struct {
	timestamp time.Time
	message   string
	isError   bool
}

// Messages
type watchDataMsg struct {
	data    []byte
	elapsed time.Duration
	stats   flowserial.Statistics
}
type watchReadErrorMsg struct {
	err   error
	stats flowserial.Statistics
}

// TUI model
type watchModel struct {
	address  byte
	length   int
	connInfo string
	interval time.Duration

	spin      spinner.Model
	data      []byte
	changed   []bool
	haveData  bool
	reads     uint64
	failures  uint64
	lastRead  time.Time
	lastTook  time.Duration
	stats     flowserial.Statistics
	events    []watchEvent
	maxEvents int
	width     int
	height    int
	quitting  bool
}

func initialWatchModel(address byte, length int, connInfo string, interval time.Duration) watchModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))

	return watchModel{
		address:   address,
		length:    length,
		connInfo:  connInfo,
		interval:  interval,
		spin:      s,
		changed:   make([]bool, length),
		events:    make([]watchEvent, 0),
		maxEvents: 100,
		width:     80,
		height:    24,
	}
}

func (m watchModel) Init() tea.Cmd {
	return tea.Batch(
		m.spin.Tick,
		tea.EnterAltScreen,
	)
}

func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case watchDataMsg:
		m.reads++
		m.lastRead = time.Now()
		m.lastTook = msg.elapsed
		m.stats = msg.stats

		changed := make([]bool, m.length)
		changes := 0
		if m.haveData {
			for i := range msg.data {
				if msg.data[i] != m.data[i] {
					changed[i] = true
					changes++
				}
			}
		}
		m.data = msg.data
		m.changed = changed
		m.haveData = true

		if changes > 0 {
			m.addEvent(fmt.Sprintf("%d byte(s) changed", changes), false)
		}

	case watchReadErrorMsg:
		m.failures++
		m.stats = msg.stats
		m.addEvent(fmt.Sprintf("read failed: %v", msg.err), true)
	}

	return m, nil
}

func (m *watchModel) addEvent(message string, isError bool) {
	m.events = append(m.events, watchEvent{
		timestamp: time.Now(),
		message:   message,
		isError:   isError,
	})
	if len(m.events) > m.maxEvents {
		m.events = m.events[len(m.events)-m.maxEvents:]
	}
}

func (m watchModel) View() string {
	if m.quitting {
		return "Shutting down...\n"
	}

	// Styles
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("12")).
		Background(lipgloss.Color("235")).
		Padding(0, 1)

	headerStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))

	labelStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("12")).
		Bold(true)

	valueStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("10"))

	changedStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("0")).
		Background(lipgloss.Color("11")).
		Bold(true)

	errorStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("9")).
		Bold(true)

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)

	var s strings.Builder
	s.WriteString(titleStyle.Render("FLOWSERIAL - REGISTER WATCH"))
	s.WriteString("\n")
	s.WriteString(headerStyle.Render(fmt.Sprintf("%s | Range: 0x%02X + %d bytes every %v | Press 'q' to quit",
		m.connInfo, m.address, m.length, m.interval)))
	s.WriteString("\n\n")

	// Register grid
	if !m.haveData {
		s.WriteString(fmt.Sprintf("%s Waiting for first read...", m.spin.View()))
		s.WriteString("\n\n")
	} else {
		grid := strings.Builder{}
		for row := 0; row < m.length; row += 16 {
			grid.WriteString(labelStyle.Render(fmt.Sprintf("0x%02X:", int(m.address)+row)))
			for i := row; i < row+16 && i < m.length; i++ {
				cell := fmt.Sprintf("%02X", m.data[i])
				if m.changed[i] {
					grid.WriteString(" " + changedStyle.Render(cell))
				} else {
					grid.WriteString(" " + valueStyle.Render(cell))
				}
			}
			grid.WriteString("\n")
		}
		s.WriteString(boxStyle.Render(strings.TrimRight(grid.String(), "\n")))
		s.WriteString("\n\n")
	}

	// Status
	statusContent := strings.Builder{}
	statusContent.WriteString(fmt.Sprintf("%s %s   %s %s",
		labelStyle.Render("Reads:"), valueStyle.Render(fmt.Sprintf("%d", m.reads)),
		labelStyle.Render("Failures:"), func() string {
			if m.failures > 0 {
				return errorStyle.Render(fmt.Sprintf("%d", m.failures))
			}
			return valueStyle.Render("0")
		}(),
	))
	if m.haveData {
		statusContent.WriteString(fmt.Sprintf("   %s %s (%v)",
			labelStyle.Render("Last:"), valueStyle.Render(m.lastRead.Format("15:04:05.000")), m.lastTook.Round(time.Millisecond)))
	}
	statusContent.WriteString("\n")
	statusContent.WriteString(fmt.Sprintf("%s %s   %s %s   %s %s",
		labelStyle.Render("Frames:"), valueStyle.Render(fmt.Sprintf("%d", m.stats.FramesReceived)),
		labelStyle.Render("Checksum Errors:"), fmt.Sprintf("%d", m.stats.ChecksumErrors),
		labelStyle.Render("Retries:"), fmt.Sprintf("%d", m.stats.ReadRetries),
	))
	s.WriteString(boxStyle.Render(statusContent.String()))
	s.WriteString("\n\n")

	// Event log
	s.WriteString(labelStyle.Render("Recent Events:"))
	s.WriteString("\n")

	logHeight := m.height - 14 - (m.length+15)/16
	if logHeight < 5 {
		logHeight = 5
	}

	logContent := strings.Builder{}
	startIdx := len(m.events) - logHeight
	if startIdx < 0 {
		startIdx = 0
	}

	if len(m.events) == 0 {
		logContent.WriteString(headerStyle.Render("  (no events yet)"))
	} else {
		for i := startIdx; i < len(m.events); i++ {
			entry := m.events[i]
			timestamp := entry.timestamp.Format("15:04:05.000")
			if entry.isError {
				logContent.WriteString(fmt.Sprintf("%s %s\n",
					headerStyle.Render(timestamp),
					errorStyle.Render("✗ "+entry.message),
				))
			} else {
				logContent.WriteString(fmt.Sprintf("%s %s\n",
					headerStyle.Render(timestamp),
					valueStyle.Render("• "+entry.message),
				))
			}
		}
	}

	s.WriteString(boxStyle.Width(m.width - 4).Render(strings.TrimRight(logContent.String(), "\n")))

	return s.String()
}
