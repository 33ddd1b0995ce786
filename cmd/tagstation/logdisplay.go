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

package main

import (
	"strings"

	"github.com/rs/zerolog/log"
)

// logDisplay stands in for the OLED when none is attached
type logDisplay struct {
	lines []string
}

func (d *logDisplay) Clear() {
	d.lines = d.lines[:0]
}

func (d *logDisplay) DrawText(_, _ int, text string) {
	d.lines = append(d.lines, text)
}

func (d *logDisplay) Flush() error {
	log.Info().Str("view", strings.Join(d.lines, " | ")).Msg("display")
	return nil
}
