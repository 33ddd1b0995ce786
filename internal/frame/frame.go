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

package frame

import (
	"bytes"
	"errors"
	"fmt"
)

// Decoding errors
var (
	ErrTooLarge        = errors.New("frame data too large")
	ErrIncomplete      = errors.New("incomplete frame")
	ErrNoStartCode     = errors.New("frame start code not found")
	ErrLengthChecksum  = errors.New("frame length checksum mismatch")
	ErrDataChecksum    = errors.New("frame data checksum mismatch")
	ErrWrongDirection  = errors.New("frame not addressed to host")
	ErrErrorFrame      = errors.New("PN532 reported an application level error")
)

// CalculateChecksum returns the 8-bit sum of data
func CalculateChecksum(data []byte) byte {
	var sum byte
	for _, b := range data {
		sum += b
	}
	return sum
}

// ValidateChecksum reports whether data fails the zero-sum check.
// A true result means the frame should be NACKed.
func ValidateChecksum(data []byte) bool {
	return CalculateChecksum(data) != 0
}

// CalculateLengthChecksum returns LCS such that LEN + LCS == 0 (mod 256)
func CalculateLengthChecksum(length byte) byte {
	return ^length + 1
}

// CalculateDataChecksum returns DCS such that TFI + PD0..PDn + DCS == 0 (mod 256)
func CalculateDataChecksum(tfi byte, data []byte) byte {
	return ^(tfi + CalculateChecksum(data)) + 1
}

// Encode builds a host-to-PN532 frame carrying cmd followed by args.
func Encode(cmd byte, args []byte) ([]byte, error) {
	dataLen := 2 + len(args) // TFI + cmd + args
	if dataLen > MaxDataLength {
		return nil, fmt.Errorf("%w: %d bytes", ErrTooLarge, dataLen)
	}

	frm := make([]byte, 0, dataLen+Overhead)
	frm = append(frm, Preamble, StartCode1, StartCode2,
		byte(dataLen), CalculateLengthChecksum(byte(dataLen)),
		HostToPn532, cmd)
	frm = append(frm, args...)

	dcs := CalculateDataChecksum(HostToPn532, append([]byte{cmd}, args...))
	frm = append(frm, dcs, Postamble)
	return frm, nil
}

// IsAck reports whether buf contains an ACK frame
func IsAck(buf []byte) bool {
	return bytes.Contains(buf, AckFrame)
}

// Decode extracts the response payload from a PN532-to-host frame found in buf.
// The returned slice starts with the response code (command + 1) and is a copy.
// ErrIncomplete is returned when buf holds the start of a frame but not all of it,
// so stream transports can read more and try again.
func Decode(buf []byte) ([]byte, error) {
	off := findStart(buf)
	if off < 0 {
		return nil, ErrNoStartCode
	}

	// off points at LEN
	if len(buf) < off+2 {
		return nil, ErrIncomplete
	}
	length, lcs := buf[off], buf[off+1]
	if length+lcs != 0 {
		return nil, ErrLengthChecksum
	}
	if length == 0 {
		// ACK frames carry no data
		return nil, ErrIncomplete
	}

	start := off + 2
	end := start + int(length) // DCS index
	if len(buf) <= end {
		return nil, ErrIncomplete
	}

	if ValidateChecksum(buf[start : end+1]) {
		return nil, ErrDataChecksum
	}

	switch buf[start] {
	case Pn532ToHost:
	case ErrorFrameTFI:
		return nil, ErrErrorFrame
	default:
		return nil, fmt.Errorf("%w: TFI %02X", ErrWrongDirection, buf[start])
	}

	payload := make([]byte, int(length)-1)
	copy(payload, buf[start+1:end])
	return payload, nil
}

// findStart returns the index of the LEN byte following a 00 FF start code
// that does not belong to an ACK frame, or -1.
func findStart(buf []byte) int {
	for i := 0; i+1 < len(buf); i++ {
		if buf[i] != StartCode1 || buf[i+1] != StartCode2 {
			continue
		}
		if i+3 < len(buf) && buf[i+2] == 0x00 && buf[i+3] == 0xFF {
			// ACK, keep looking
			i += 3
			continue
		}
		return i + 2
	}
	return -1
}
