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

// Package frame encodes and decodes PN532 normal information frames.
package frame

// Frame direction identifiers (TFI)
const (
	HostToPn532 = 0xD4
	Pn532ToHost = 0xD5
	// ErrorFrameTFI marks a syntax error frame sent by the PN532
	ErrorFrameTFI = 0x7F
)

// Frame markers
const (
	Preamble   = 0x00
	StartCode1 = 0x00
	StartCode2 = 0xFF
	Postamble  = 0x00
)

// Frame size limits
const (
	// MaxDataLength is the largest TFI+PD payload a normal frame can carry
	MaxDataLength = 255
	// Overhead is preamble(1) + start code(2) + LEN + LCS + DCS + postamble
	Overhead = 7
)

// ACK and NACK frames used for flow control
var (
	AckFrame  = []byte{0x00, 0x00, 0xFF, 0x00, 0xFF, 0x00}
	NackFrame = []byte{0x00, 0x00, 0xFF, 0xFF, 0x00, 0x00}
)
