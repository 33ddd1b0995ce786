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

package tagstation

import (
	"time"

	"periph.io/x/conn/v3/gpio"
)

// InputSample is one reading of the encoder and button lines
type InputSample struct {
	Clock  gpio.Level
	Data   gpio.Level
	Button gpio.Level
}

// Inputs is sampled once per control loop iteration
type Inputs interface {
	Sample() InputSample
}

// Encoder turns rotary encoder line levels into steps. Only the rising
// clock edge counts, so one detent yields one step.
type Encoder struct {
	previousClock gpio.Level
}

// NewEncoder creates an encoder whose clock line currently reads initial
func NewEncoder(initial gpio.Level) *Encoder {
	return &Encoder{previousClock: initial}
}

// Update feeds one sample. ok is true when a step happened; data equal to
// clock at the edge is Clockwise. The previous level is always updated.
func (e *Encoder) Update(clock, data gpio.Level) (dir Direction, ok bool) {
	edge := clock != e.previousClock && clock == gpio.High
	e.previousClock = clock
	if !edge {
		return 0, false
	}
	if data != clock {
		return CounterClockwise, true
	}
	return Clockwise, true
}

// Button is an active-low push button with a time threshold debounce.
// While held it fires again every time the threshold has elapsed since the
// last accepted assertion.
type Button struct {
	lastAccepted time.Time
	threshold    time.Duration
}

// NewButton creates a button that accepts assertions more than threshold apart
func NewButton(threshold time.Duration) *Button {
	return &Button{threshold: threshold}
}

// Update feeds one sample taken at now and reports whether it fires
func (b *Button) Update(level gpio.Level, now time.Time) bool {
	if level != gpio.Low {
		return false
	}
	if !b.lastAccepted.IsZero() && now.Sub(b.lastAccepted) <= b.threshold {
		return false
	}
	b.lastAccepted = now
	return true
}
