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

	"github.com/ZaparooProject/go-tagstation/pn532"
)

// DefaultServerBase is the lookup service base URL. Override it at build
// time with -ldflags "-X github.com/ZaparooProject/go-tagstation.DefaultServerBase=http://host:port".
var DefaultServerBase = "http://192.168.1.10:5000"

// Config holds the station's compiled-in settings
type Config struct {
	// ServerBase is prepended to LookupPath for every lookup
	ServerBase string
	// LookupPath is the lookup endpoint, queried with ?id=<identifier>
	LookupPath string
	// Key is the Key A material used for every tag
	Key []byte
	// ButtonThreshold is the minimum time between accepted button assertions
	ButtonThreshold time.Duration
	// HTTPTimeout bounds a single lookup
	HTTPTimeout time.Duration
	// LinkPollInterval is how often WaitForLink checks the network link
	LinkPollInterval time.Duration
	// LoopDelay is the pause between control loop iterations
	LoopDelay time.Duration
	// Block is the tag block holding the identifier
	Block uint8
}

// DefaultConfig returns the station defaults
func DefaultConfig() *Config {
	return &Config{
		ServerBase:       DefaultServerBase,
		LookupPath:       "/getclothes",
		Key:              pn532.DefaultKey(),
		ButtonThreshold:  50 * time.Millisecond,
		HTTPTimeout:      5 * time.Second,
		LinkPollInterval: 500 * time.Millisecond,
		LoopDelay:        time.Millisecond,
		Block:            2,
	}
}
