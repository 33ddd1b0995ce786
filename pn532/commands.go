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

// PN532 command codes
const (
	cmdGetFirmwareVersion  = 0x02
	cmdSamConfiguration    = 0x14
	cmdRFConfiguration     = 0x32
	cmdInDataExchange      = 0x40
	cmdInListPassiveTarget = 0x4A
	cmdInRelease           = 0x52
)

// Command parameters
const (
	samModeNormal  = 0x01
	samTimeout     = 0x14 // 50ms units, only used in virtual card mode
	samUseIRQ      = 0x01
	rfItemRetries  = 0x05
	rfRetryATR     = 0xFF
	rfRetryPSL     = 0x01
	brTy106TypeA   = 0x00
	releaseAll     = 0x00
	defaultTarget  = 0x01
	statusCodeMask = 0x3F
)

// PN532 error status codes returned in InDataExchange and InRelease responses
const (
	statusTimeout       = 0x01
	statusMIFAREAuth    = 0x14
	statusWrongContext  = 0x27
	statusTargetRelease = 0x29
)
