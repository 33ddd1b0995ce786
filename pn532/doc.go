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

/*
Package pn532 drives a PN532 contactless transceiver for the tagging station.

It covers exactly what the station needs from the reader: bring-up, polling
for a single ISO14443A target, MIFARE Classic authentication with a caller
supplied key, 16-byte block read and write, and releasing the target so the
next poll starts from a clean crypto state.

Basic Usage:

	transport, err := i2c.New("/dev/i2c-1")
	if err != nil {
	    log.Fatal(err)
	}

	device, err := pn532.New(transport, pn532.WithTimeout(500*time.Millisecond))
	if err != nil {
	    log.Fatal(err)
	}
	if err := device.Init(ctx); err != nil {
	    log.Fatal(err)
	}

	tag, err := device.DetectTag(ctx)
	if errors.Is(err, pn532.ErrNoTagDetected) {
	    return
	}

	defer func() { _ = device.Release(ctx) }()
	if err := device.Authenticate(ctx, tag, 2, pn532.MIFAREKeyA, pn532.DefaultKey()); err != nil {
	    return err
	}
	block, err := device.ReadBlock(ctx, 2)

Thread Safety:

Device is not thread-safe. The station drives it from a single goroutine.
*/
package pn532
