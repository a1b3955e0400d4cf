// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Flow Engineering

package cmd

import (
	"bufio"
	"context"
	"crypto/tls"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/term"

	"github.com/flow-engineering/flowserial/pkg/flowserial"
)

// wsTransport adapts a WebSocket connection to flowserial.Transport.
// A dedicated reader goroutine pumps binary messages into a channel so that
// Receive can poll with a bounded wait without tripping gorilla's read
// deadline handling.
type wsTransport struct {
	conn *websocket.Conn
	rx   chan []byte
	done chan struct{}
}

func newWSTransport(conn *websocket.Conn) *wsTransport {
	w := &wsTransport{
		conn: conn,
		rx:   make(chan []byte, 16),
		done: make(chan struct{}),
	}
	go w.readLoop()
	return w
}

func (w *wsTransport) readLoop() {
	defer close(w.done)
	for {
		messageType, data, err := w.conn.ReadMessage()
		if err != nil {
			return
		}
		// Only binary messages carry FlowSerial frames.
		if messageType != websocket.BinaryMessage {
			continue
		}
		select {
		case w.rx <- data:
		case <-w.done:
			return
		}
	}
}

func (w *wsTransport) Send(data []byte) error {
	if err := w.conn.WriteMessage(websocket.BinaryMessage, data); err != nil {
		return &flowserial.ConnectionError{Kind: flowserial.KindWriteFailure, Message: "websocket write failed", Err: err}
	}
	return nil
}

func (w *wsTransport) Receive(maxWait time.Duration) ([]byte, error) {
	select {
	case data := <-w.rx:
		return data, nil
	case <-w.done:
		return nil, &flowserial.ConnectionError{Kind: flowserial.KindReadFailure, Message: "websocket connection closed"}
	case <-time.After(maxWait):
		return nil, nil
	}
}

func (w *wsTransport) Close() error {
	return w.conn.Close()
}

func (w *wsTransport) IsOpen() bool {
	select {
	case <-w.done:
		return false
	default:
		return true
	}
}

// openWebSocketTransport opens a WebSocket connection with HTTP Basic auth
func openWebSocketTransport(wsRawURL, username, password string, skipSSLVerify bool) (flowserial.Transport, error) {
	u, err := url.Parse(wsRawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %v", err)
	}

	switch u.Scheme {
	case "ws", "wss":
		// OK
	default:
		return nil, fmt.Errorf("unsupported URL scheme: %s (use ws:// or wss://)", u.Scheme)
	}

	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}

	if u.Scheme == "wss" {
		dialer.TLSClientConfig = &tls.Config{
			InsecureSkipVerify: skipSSLVerify,
		}
	}

	headers := http.Header{}
	if username != "" && password != "" {
		credentials := base64.StdEncoding.EncodeToString([]byte(username + ":" + password))
		headers.Set("Authorization", "Basic "+credentials)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	conn, resp, err := dialer.DialContext(ctx, wsRawURL, headers)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("WebSocket connection failed (HTTP %d): %v", resp.StatusCode, err)
		}
		return nil, fmt.Errorf("WebSocket connection failed: %v", err)
	}

	return newWSTransport(conn), nil
}

// GetPassword retrieves password from environment or prompts user
func GetPassword() (string, error) {
	// First check environment variable
	if pw := os.Getenv("FLOWSERIAL_PASSWORD"); pw != "" {
		return pw, nil
	}

	// Prompt user for password (hide input)
	fmt.Fprint(os.Stderr, "Password: ")

	// Read password without echo
	passwordBytes, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		// Fallback to regular input if terminal functions fail
		reader := bufio.NewReader(os.Stdin)
		password, err := reader.ReadString('\n')
		if err != nil {
			return "", fmt.Errorf("failed to read password: %v", err)
		}
		fmt.Fprintln(os.Stderr) // newline after password
		return strings.TrimSpace(password), nil
	}

	fmt.Fprintln(os.Stderr) // newline after password
	return string(passwordBytes), nil
}

// OpenTransport opens either a serial or WebSocket transport based on flags
func OpenTransport() (flowserial.Transport, string, error) {
	if wsURL != "" {
		// WebSocket mode
		password := ""
		if wsUsername != "" {
			var err error
			password, err = GetPassword()
			if err != nil {
				return nil, "", err
			}
		}

		transport, err := openWebSocketTransport(wsURL, wsUsername, password, wsNoSSLVerify)
		if err != nil {
			return nil, "", err
		}

		return transport, fmt.Sprintf("WebSocket: %s", wsURL), nil
	}

	if portName != "" {
		// Serial mode
		transport, err := flowserial.OpenSerial(portName, baudRate)
		if err != nil {
			return nil, "", err
		}

		return transport, fmt.Sprintf("Serial: %s @ %d baud", portName, baudRate), nil
	}

	return nil, "", fmt.Errorf("either --port or --url must be specified")
}

// OpenSocket opens a transport and wraps it in a socket exposing a local
// register of --register-size bytes to the peer.
func OpenSocket() (*flowserial.Socket, string, error) {
	transport, info, err := OpenTransport()
	if err != nil {
		return nil, "", err
	}
	register := make([]byte, registerSize)
	return flowserial.NewSocket(register, transport), info, nil
}
