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

import "strconv"

// Display is a small text surface. Coordinates are the top-left corner of
// the text in pixels.
type Display interface {
	Clear()
	DrawText(x, y int, text string)
	Flush() error
}

// View text
const (
	TextIdlePrompt   = "Scan RFID Card to"
	TextIdleAction   = "get started!"
	TextCounterLabel = "ID to write:"
	TextSaved        = "ID Saved!"
	TextSending      = "Sending request..."
	TextSent         = "ID Sent!"
	TextNamePrefix   = "Name: "
	TextUnknownName  = "?"
	TextHTTPError    = "HTTP Error!"
)

type textLine struct {
	text string
	x, y int
}

// Presenter renders the station views. Every view clears the display,
// draws all of its lines and flushes.
type Presenter struct {
	display Display
}

// NewPresenter creates a presenter for display
func NewPresenter(display Display) *Presenter {
	return &Presenter{display: display}
}

// Idle shows the scan prompt
func (p *Presenter) Idle() error {
	return p.render(
		textLine{x: 4, y: 3, text: TextIdlePrompt},
		textLine{x: 22, y: 17, text: TextIdleAction},
	)
}

// Counter shows the value that will be written
func (p *Presenter) Counter(value int) error {
	return p.render(
		textLine{x: 5, y: 3, text: TextCounterLabel},
		textLine{x: 6, y: 17, text: strconv.Itoa(value)},
	)
}

// Saved confirms a successful write
func (p *Presenter) Saved() error {
	return p.render(textLine{x: 32, y: 10, text: TextSaved})
}

// Sending is shown while a lookup is in flight
func (p *Presenter) Sending() error {
	return p.render(textLine{x: 1, y: 10, text: TextSending})
}

// Outcome shows the looked up name, or "?" when there is none
func (p *Presenter) Outcome(name *string) error {
	shown := TextUnknownName
	if name != nil {
		shown = *name
	}
	return p.render(
		textLine{x: 5, y: 3, text: TextSent},
		textLine{x: 6, y: 17, text: TextNamePrefix + shown},
	)
}

// HTTPError reports a lookup that got no HTTP response
func (p *Presenter) HTTPError() error {
	return p.render(textLine{x: 25, y: 10, text: TextHTTPError})
}

// ModeView shows the default view of mode
func (p *Presenter) ModeView(mode Mode, counter int) error {
	if mode == ModeWrite {
		return p.Counter(counter)
	}
	return p.Idle()
}

func (p *Presenter) render(lines ...textLine) error {
	p.display.Clear()
	for _, l := range lines {
		p.display.DrawText(l.x, l.y, l.text)
	}
	return p.display.Flush()
}
