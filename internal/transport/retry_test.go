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

package transport

import (
	"errors"
	"testing"
	"time"

	"github.com/ZaparooProject/go-tagstation/pn532"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepeat(t *testing.T) {
	t.Parallel()

	t.Run("SucceedsAfterRetries", func(t *testing.T) {
		t.Parallel()
		calls, nacks := 0, 0
		got, err := Repeat(AttemptConfig{
			MaxAttempts: 3,
			BeforeNext:  func() error { nacks++; return nil },
		}, func() (int, bool, error) {
			calls++
			return calls, calls < 3, nil
		})
		require.NoError(t, err)
		assert.Equal(t, 3, got)
		assert.Equal(t, 2, nacks)
	})

	t.Run("Exhausted", func(t *testing.T) {
		t.Parallel()
		calls := 0
		_, err := Repeat(AttemptConfig{MaxAttempts: 2, Op: "receive", Port: "test"}, func() (int, bool, error) {
			calls++
			return 0, true, nil
		})
		require.ErrorIs(t, err, pn532.ErrCommunicationFailed)
		assert.Equal(t, 2, calls)
	})

	t.Run("PermanentErrorStops", func(t *testing.T) {
		t.Parallel()
		boom := errors.New("boom")
		calls := 0
		_, err := Repeat(AttemptConfig{MaxAttempts: 5}, func() (int, bool, error) {
			calls++
			return 0, false, boom
		})
		require.ErrorIs(t, err, boom)
		assert.Equal(t, 1, calls)
	})
}

func TestUntil(t *testing.T) {
	t.Parallel()

	t.Run("Ready", func(t *testing.T) {
		t.Parallel()
		n := 0
		got, err := Until(time.Second, func() (string, bool, error) {
			n++
			return "ready", n < 3, nil
		})
		require.NoError(t, err)
		assert.Equal(t, "ready", got)
	})

	t.Run("Timeout", func(t *testing.T) {
		t.Parallel()
		_, err := Until(5*time.Millisecond, func() (int, bool, error) {
			return 0, true, nil
		})
		require.ErrorIs(t, err, pn532.ErrTransportTimeout)
	})
}
