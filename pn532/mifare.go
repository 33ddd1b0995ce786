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

import (
	"context"
	"errors"
	"fmt"
)

// MIFARE commands
const (
	mifareCmdAuth  = 0x60
	mifareCmdRead  = 0x30
	mifareCmdWrite = 0xA0
)

// MIFARE memory structure
const (
	// MIFAREBlockSize is the size of one MIFARE Classic data block
	MIFAREBlockSize         = 16
	mifareSectorSize        = 4 // blocks per sector in the 1K layout
	mifareManufacturerBlock = 0
	mifareKeySize           = 6
)

// Key types
const (
	MIFAREKeyA = 0x00
	MIFAREKeyB = 0x01
)

// MIFARE Classic tags ship with every key set to FF FF FF FF FF FF
var defaultKeyTemplate = [mifareKeySize]byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}

// DefaultKey returns a copy of the factory transport key
func DefaultKey() []byte {
	key := defaultKeyTemplate
	return key[:]
}

// IsSectorTrailer reports whether block holds keys and access bits
func IsSectorTrailer(block uint8) bool {
	return block%mifareSectorSize == mifareSectorSize-1
}

// Authenticate authenticates the sector holding block on the selected tag
func (d *Device) Authenticate(ctx context.Context, tag *DetectedTag, block uint8, keyType byte, key []byte) error {
	if tag == nil || len(tag.UIDBytes) < 4 {
		return fmt.Errorf("%w: tag with a UID of at least 4 bytes required", ErrInvalidParameter)
	}
	if len(key) != mifareKeySize {
		return fmt.Errorf("%w: MIFARE key must be %d bytes", ErrInvalidParameter, mifareKeySize)
	}
	if keyType != MIFAREKeyA && keyType != MIFAREKeyB {
		return fmt.Errorf("%w: key type 0x%02X (must be 0x00 for Key A or 0x01 for Key B)",
			ErrInvalidParameter, keyType)
	}

	// Key first, then the UID's last four bytes (the cascade tail for 7-byte UIDs)
	cmd := make([]byte, 0, 2+mifareKeySize+4)
	cmd = append(cmd, mifareCmdAuth+keyType, block)
	cmd = append(cmd, key...)
	cmd = append(cmd, tag.UIDBytes[len(tag.UIDBytes)-4:]...)
	defer clear(cmd)

	if _, err := d.SendDataExchange(ctx, cmd); err != nil {
		d.lastAuthSector = -1
		if errors.Is(err, ErrAuthFailed) {
			return fmt.Errorf("block %d: %w", block, err)
		}
		return fmt.Errorf("authentication failed: %w", err)
	}

	d.lastAuthSector = int(block / mifareSectorSize)
	return nil
}

// ReadBlock reads a 16-byte block from the authenticated sector
func (d *Device) ReadBlock(ctx context.Context, block uint8) ([]byte, error) {
	if err := d.requireAuth(block); err != nil {
		return nil, err
	}

	data, err := d.SendDataExchange(ctx, []byte{mifareCmdRead, block})
	if err != nil {
		return nil, fmt.Errorf("failed to read block %d: %w", block, err)
	}
	if len(data) < MIFAREBlockSize {
		return nil, fmt.Errorf("%w: read returned %d bytes", ErrInvalidResponse, len(data))
	}

	return data[:MIFAREBlockSize], nil
}

// WriteBlock writes exactly 16 bytes to a block of the authenticated sector
func (d *Device) WriteBlock(ctx context.Context, block uint8, data []byte) error {
	if len(data) != MIFAREBlockSize {
		return fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidParameter, MIFAREBlockSize, len(data))
	}
	if block == mifareManufacturerBlock {
		return fmt.Errorf("%w: cannot write to manufacturer block", ErrInvalidParameter)
	}
	if IsSectorTrailer(block) {
		return fmt.Errorf("%w: refusing to overwrite sector trailer %d", ErrInvalidParameter, block)
	}
	if err := d.requireAuth(block); err != nil {
		return err
	}

	cmd := make([]byte, 0, 2+MIFAREBlockSize)
	cmd = append(cmd, mifareCmdWrite, block)
	cmd = append(cmd, data...)

	if _, err := d.SendDataExchange(ctx, cmd); err != nil {
		return fmt.Errorf("failed to write block %d: %w", block, err)
	}
	return nil
}

func (d *Device) requireAuth(block uint8) error {
	sector := int(block / mifareSectorSize)
	if d.lastAuthSector != sector {
		return fmt.Errorf("%w: sector %d (block %d)", ErrNotAuthenticated, sector, block)
	}
	return nil
}
