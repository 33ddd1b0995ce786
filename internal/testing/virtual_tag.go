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

package testing

import (
	"encoding/hex"
	"errors"
	"strings"
)

// Tag families the simulator knows about
const (
	TagTypeMIFARE1K = "MIFARE1K"
	TagTypeNTAG213  = "NTAG213"
)

const (
	blockSize      = 16
	sectorSize     = 4
	mifare1KBlocks = 64
	keySize        = 6
)

var (
	errBlockRange = errors.New("block out of range")
	errReadOnly   = errors.New("block is read only")
)

// VirtualTag is a simulated MIFARE Classic 1K tag. Every sector uses the
// factory transport key for both Key A and Key B.
type VirtualTag struct {
	Type    string
	UID     []byte
	Memory  [][]byte
	Present bool
}

// NewVirtualMIFARE1K creates a blank MIFARE Classic 1K tag
func NewVirtualMIFARE1K(uid []byte) *VirtualTag {
	if uid == nil {
		uid = TestMIFARE1KUID
	}

	tag := &VirtualTag{
		Type:    TagTypeMIFARE1K,
		UID:     append([]byte(nil), uid...),
		Memory:  make([][]byte, mifare1KBlocks),
		Present: true,
	}
	tag.initMIFARE1KMemory()
	return tag
}

// NewVirtualNTAG213 creates a tag that is detected but cannot be
// authenticated with MIFARE Classic commands
func NewVirtualNTAG213(uid []byte) *VirtualTag {
	if uid == nil {
		uid = TestNTAG213UID
	}
	return &VirtualTag{
		Type:    TagTypeNTAG213,
		UID:     append([]byte(nil), uid...),
		Present: true,
	}
}

func (v *VirtualTag) initMIFARE1KMemory() {
	for i := range v.Memory {
		v.Memory[i] = make([]byte, blockSize)
	}

	// Manufacturer block: UID, BCC, SAK, ATQA
	copy(v.Memory[0], v.UID)
	var bcc byte
	for _, b := range v.UID {
		bcc ^= b
	}
	v.Memory[0][len(v.UID)] = bcc
	v.Memory[0][len(v.UID)+1] = 0x08
	v.Memory[0][len(v.UID)+2] = 0x04

	for sector := 0; sector < mifare1KBlocks/sectorSize; sector++ {
		trailer := v.Memory[sector*sectorSize+sectorSize-1]
		for i := 0; i < keySize; i++ {
			trailer[i] = 0xFF
			trailer[10+i] = 0xFF
		}
		// Transport configuration access bits
		copy(trailer[6:10], []byte{0xFF, 0x07, 0x80, 0x69})
	}
}

// UIDString returns the UID as upper-case hex
func (v *VirtualTag) UIDString() string {
	return strings.ToUpper(hex.EncodeToString(v.UID))
}

// CheckKey reports whether key opens the sector holding block
func (v *VirtualTag) CheckKey(block int, keyType byte, key []byte) bool {
	if v.Type != TagTypeMIFARE1K || block < 0 || block >= len(v.Memory) || len(key) != keySize {
		return false
	}
	trailer := v.Memory[(block/sectorSize)*sectorSize+sectorSize-1]
	stored := trailer[:keySize]
	if keyType == 0x01 {
		stored = trailer[10 : 10+keySize]
	}
	for i := range stored {
		if stored[i] != key[i] {
			return false
		}
	}
	return true
}

// ReadBlock returns a copy of a block
func (v *VirtualTag) ReadBlock(block int) ([]byte, error) {
	if block < 0 || block >= len(v.Memory) {
		return nil, errBlockRange
	}
	return append([]byte(nil), v.Memory[block]...), nil
}

// WriteBlock stores 16 bytes into a data block
func (v *VirtualTag) WriteBlock(block int, data []byte) error {
	if block < 0 || block >= len(v.Memory) || len(data) != blockSize {
		return errBlockRange
	}
	if block == 0 {
		return errReadOnly
	}
	copy(v.Memory[block], data)
	return nil
}

// SetBlockText overwrites a block with text, zero padded
func (v *VirtualTag) SetBlockText(block int, text string) {
	buf := make([]byte, blockSize)
	copy(buf, text)
	copy(v.Memory[block], buf)
}

// Remove simulates taking the tag out of the field
func (v *VirtualTag) Remove() {
	v.Present = false
}

// Insert simulates putting the tag back into the field
func (v *VirtualTag) Insert() {
	v.Present = true
}
