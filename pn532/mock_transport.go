// go-tagstation
// Copyright (c) 2025 The Zaparoo Project Contributors.
// SPDX-License-Identifier: LGPL-3.0-or-later
//
// This file is part of go-tagstation.
//
// go-tagstation is free software; you can redistribute it and/or
// modify it under the terms of the GNU Lesser General Public
// License as published by the Free Software Foundation; either
// version 3 of the License, or (at your option) any later version.
//
// go-tagstation is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with go-tagstation; if not, write to the Free Software Foundation,
// Inc., 51 Franklin Street, Fifth Floor, Boston, MA  02110-1301, USA.

package pn532

import (
	"context"
	"errors"
	"sync"
	"time"
)

// MockTransport is a scriptable Transport for tests. Responses can be fixed
// per command or produced by a handler such as the PN532 simulator in
// internal/testing.
type MockTransport struct {
	responses map[byte][]byte
	errs      map[byte]error
	calls     map[byte]int
	handler   func(cmd byte, args []byte) ([]byte, error)
	history   []byte
	delay     time.Duration
	timeout   time.Duration
	mu        sync.Mutex
	closed    bool
}

// NewMockTransport creates an empty mock transport
func NewMockTransport() *MockTransport {
	return &MockTransport{
		responses: make(map[byte][]byte),
		errs:      make(map[byte]error),
		calls:     make(map[byte]int),
		timeout:   time.Second,
	}
}

// SendCommand records the call and answers from the configured error,
// fixed response or handler, in that order
func (m *MockTransport) SendCommand(ctx context.Context, cmd byte, args []byte) ([]byte, error) {
	m.mu.Lock()
	m.calls[cmd]++
	m.history = append(m.history, cmd)
	closed, delay := m.closed, m.delay
	err, hasErr := m.errs[cmd]
	resp, hasResp := m.responses[cmd]
	handler := m.handler
	m.mu.Unlock()

	if closed {
		return nil, ErrTransportRead
	}
	if delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}

	switch {
	case hasErr:
		return nil, err
	case hasResp:
		return append([]byte(nil), resp...), nil
	case handler != nil:
		return handler(cmd, append([]byte(nil), args...))
	default:
		return nil, errors.New("mock: no response configured")
	}
}

// SetResponse configures a fixed response for cmd
func (m *MockTransport) SetResponse(cmd byte, resp []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[cmd] = resp
	delete(m.errs, cmd)
}

// SetError makes every call of cmd fail with err
func (m *MockTransport) SetError(cmd byte, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errs[cmd] = err
}

// ClearError removes a configured error for cmd
func (m *MockTransport) ClearError(cmd byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.errs, cmd)
}

// SetHandler answers every command without a fixed response or error
func (m *MockTransport) SetHandler(fn func(cmd byte, args []byte) ([]byte, error)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handler = fn
}

// SetDelay delays every response
func (m *MockTransport) SetDelay(delay time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delay = delay
}

// GetCallCount returns how many times cmd was sent
func (m *MockTransport) GetCallCount(cmd byte) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[cmd]
}

// History returns the command bytes in the order they were sent
func (m *MockTransport) History() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]byte(nil), m.history...)
}

// Reset forgets recorded calls
func (m *MockTransport) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = make(map[byte]int)
	m.history = nil
}

// SetTimeout stores the timeout
func (m *MockTransport) SetTimeout(timeout time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.timeout = timeout
	return nil
}

// Close marks the transport as closed
func (m *MockTransport) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// IsConnected returns false after Close
func (m *MockTransport) IsConnected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return !m.closed
}

// Type returns TransportMock
func (*MockTransport) Type() TransportType {
	return TransportMock
}

var _ Transport = (*MockTransport)(nil)
