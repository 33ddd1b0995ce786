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

// Package transport provides helpers shared by the PN532 transports
package transport

import (
	"time"

	"github.com/ZaparooProject/go-tagstation/pn532"
)

// Attempt is one try of a bounded operation.
// Returns: data, again, error
//   - data: the result when done
//   - again: true if the operation should be attempted again
//   - error: a permanent failure that stops further attempts
type Attempt[T any] func() (T, bool, error)

// AttemptConfig bounds how often an Attempt is repeated
type AttemptConfig struct {
	// BeforeNext runs between attempts, e.g. to send a NACK
	BeforeNext  func() error
	Op          string
	Port        string
	MaxAttempts int
	Delay       time.Duration
}

// Repeat runs op until it reports completion, fails permanently, or
// MaxAttempts is used up.
func Repeat[T any](config AttemptConfig, op Attempt[T]) (T, error) {
	var zero T

	for attempt := 1; attempt <= config.MaxAttempts; attempt++ {
		result, again, err := op()
		if err != nil {
			return zero, err
		}
		if !again {
			return result, nil
		}
		if attempt == config.MaxAttempts {
			break
		}

		if config.BeforeNext != nil {
			if err := config.BeforeNext(); err != nil {
				return zero, err
			}
		}
		if config.Delay > 0 {
			time.Sleep(config.Delay)
		}
	}

	return zero, pn532.NewTransportError(config.Op, config.Port, pn532.ErrCommunicationFailed, pn532.ErrorTypeTransient)
}

// Until runs op every millisecond until it reports completion, fails
// permanently, or timeout elapses. Used for PN532 ready polling.
func Until[T any](timeout time.Duration, op Attempt[T]) (T, error) {
	var zero T
	deadline := time.Now().Add(timeout)

	for {
		result, again, err := op()
		if err != nil {
			return zero, err
		}
		if !again {
			return result, nil
		}
		if !time.Now().Before(deadline) {
			return zero, pn532.NewTimeoutError("until", "")
		}
		time.Sleep(time.Millisecond)
	}
}
