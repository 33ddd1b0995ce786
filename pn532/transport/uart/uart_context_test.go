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

package uart

import (
	"context"
	"errors"
	"testing"
	"time"
)

// TestUARTContextCancellation tests that a cancelled context stops the
// command before anything is written
func TestUARTContextCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	transport, p := newTestTransport(t)

	start := time.Now()
	_, err := transport.SendCommand(ctx, 0x02, nil)
	elapsed := time.Since(start)

	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled error, got: %v", err)
	}
	if elapsed > 10*time.Millisecond {
		t.Errorf("Operation took too long: %v, expected < 10ms for immediate cancellation", elapsed)
	}
	if p.written.Len() != 0 {
		t.Errorf("Expected nothing written, got %X", p.written.Bytes())
	}
}

// TestUARTContextDeadline tests that a context deadline shorter than the
// transport timeout bounds the wait for a response
func TestUARTContextDeadline(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	transport, _ := newTestTransport(t)
	if err := transport.SetTimeout(5 * time.Second); err != nil {
		t.Fatal(err)
	}

	start := time.Now()
	_, err := transport.SendCommand(ctx, 0x02, nil)
	elapsed := time.Since(start)

	if err == nil {
		t.Error("Expected timeout error, got nil")
	}
	if elapsed < 40*time.Millisecond || elapsed > 500*time.Millisecond {
		t.Errorf("Operation timing unexpected: %v, expected about 50ms", elapsed)
	}
}
