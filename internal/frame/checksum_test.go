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

import "testing"

func TestCalculateChecksum(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		data []byte
		want byte
	}{
		{name: "empty data", data: []byte{}, want: 0},
		{name: "single byte", data: []byte{0x42}, want: 0x42},
		{name: "overflow wraps", data: []byte{0xFF, 0x01}, want: 0x00},
		{
			name: "real frame data",
			data: []byte{0xD4, 0x03, 0x32, 0x01, 0x00, 0x6B, 0x02, 0x4A, 0x65, 0x6C, 0x6C, 0x6F},
			want: 0x6D,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := CalculateChecksum(tt.data); got != tt.want {
				t.Errorf("CalculateChecksum() = %#02x, want %#02x", got, tt.want)
			}
		})
	}
}

func TestValidateChecksum(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		data     []byte
		wantNack bool
	}{
		{name: "zero sum", data: []byte{0x10, 0xF0}, wantNack: false},
		{name: "non zero sum", data: []byte{0x10, 0x20}, wantNack: true},
		{name: "GetFirmwareVersion with DCS", data: []byte{0xD4, 0x02, 0x2A}, wantNack: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := ValidateChecksum(tt.data); got != tt.wantNack {
				t.Errorf("ValidateChecksum() = %v, want %v", got, tt.wantNack)
			}
		})
	}
}

func TestCalculateDataChecksum(t *testing.T) {
	t.Parallel()
	if got := CalculateDataChecksum(HostToPn532, []byte{0x02}); got != 0x2A {
		t.Errorf("CalculateDataChecksum() = %#02x, want 0x2a", got)
	}
	if got := CalculateDataChecksum(HostToPn532, nil); got != 0x2C {
		t.Errorf("CalculateDataChecksum(empty) = %#02x, want 0x2c", got)
	}
}

// Every LEN plus its LCS must sum to zero
func TestLengthChecksumProperty(t *testing.T) {
	t.Parallel()
	for i := 0; i < 256; i++ {
		length := byte(i)
		if sum := length + CalculateLengthChecksum(length); sum != 0 {
			t.Errorf("length=%d: LEN+LCS = %d, want 0", length, sum)
		}
	}
}
