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
Package tagstation drives an RFID tagging station: a rotary encoder and a
push button for numeric entry, a PN532 reader, a small status display and
an HTTP lookup service.

The station has two modes. In Write mode the encoder composes a number that
is written as ASCII decimal into block 2 of the next MIFARE Classic tag
presented. In ReadAndSend mode the number is read back from a presented tag
and resolved to an item name with GET <server>/getclothes?id=<number>.

Everything runs on the caller's goroutine:

	device, err := pn532.New(transport)
	if err != nil {
	    return err
	}
	if err := device.Init(ctx); err != nil {
	    return err
	}

	station, err := tagstation.New(device, panel, display)
	if err != nil {
	    return err
	}
	if err := station.Start(); err != nil {
	    return err
	}
	return station.Run(ctx)

Run returns only when ctx is cancelled. A tag or network call already in
progress finishes before Run notices.
*/
package tagstation
