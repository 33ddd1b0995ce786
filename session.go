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

// Mode is the station's operating mode
type Mode int

const (
	// ModeReadAndSend reads the identifier from a tag and looks it up
	ModeReadAndSend Mode = iota
	// ModeWrite writes the pending counter to a tag
	ModeWrite
)

func (m Mode) String() string {
	switch m {
	case ModeWrite:
		return "write"
	case ModeReadAndSend:
		return "read-and-send"
	default:
		return "unknown"
	}
}

// Direction is one encoder step
type Direction int

const (
	Clockwise        Direction = 1
	CounterClockwise Direction = -1
)

// Session is the station's in-memory state for one power-on lifetime.
// It is owned by the Station and never copied.
type Session struct {
	lastTag string
	Counter int
	Mode    Mode
}

// NewSession returns a session in ReadAndSend mode with a zero counter
func NewSession() *Session {
	return &Session{Mode: ModeReadAndSend}
}

// ApplyStep moves the counter by one in dir. There is no clamping.
func (s *Session) ApplyStep(dir Direction) {
	s.Counter += int(dir)
}

// ToggleMode flips between Write and ReadAndSend and returns the new mode.
// The counter is kept.
func (s *Session) ToggleMode() Mode {
	if s.Mode == ModeWrite {
		s.Mode = ModeReadAndSend
	} else {
		s.Mode = ModeWrite
	}
	return s.Mode
}

// ShouldProcess reports whether a tag with this identity needs a cycle
func (s *Session) ShouldProcess(uid string) bool {
	return s.lastTag == "" || s.lastTag != uid
}

// Remember suppresses further cycles for uid until Forget
func (s *Session) Remember(uid string) {
	s.lastTag = uid
}

// Forget clears the last processed tag
func (s *Session) Forget() {
	s.lastTag = ""
}

// LastTag returns the remembered tag identity, or "" when none
func (s *Session) LastTag() string {
	return s.lastTag
}
