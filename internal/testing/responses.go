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

// Response payloads as returned by Transport.SendCommand: the response code
// first, TFI already stripped.

// BuildFirmwareVersionResponse creates a GetFirmwareVersion response
func BuildFirmwareVersionResponse() []byte {
	// PN532 (IC 0x32) version 1.6, ISO14443A/B + ISO18092 support
	return []byte{0x03, 0x32, 0x01, 0x06, 0x07}
}

// BuildSAMConfigurationResponse creates a SAMConfiguration response
func BuildSAMConfigurationResponse() []byte {
	return []byte{0x15}
}

// BuildRFConfigurationResponse creates an RFConfiguration response
func BuildRFConfigurationResponse() []byte {
	return []byte{0x33}
}

// BuildTagDetectionResponse creates an InListPassiveTarget response for one target
func BuildTagDetectionResponse(tagType string, uid []byte) []byte {
	switch tagType {
	case TagTypeNTAG213:
		return buildDetectionResponse(uid, 0x44, 0x00)
	case TagTypeMIFARE1K:
		return buildDetectionResponse(uid, 0x04, 0x08)
	default:
		return buildDetectionResponse(uid, 0x04, 0x00)
	}
}

// BuildNoTagResponse creates an empty InListPassiveTarget response
func BuildNoTagResponse() []byte {
	return []byte{0x4B, 0x00}
}

// BuildDataExchangeResponse creates a successful InDataExchange response
func BuildDataExchangeResponse(data []byte) []byte {
	response := []byte{0x41, 0x00}
	return append(response, data...)
}

// BuildReleaseResponse creates an InRelease response
func BuildReleaseResponse() []byte {
	return []byte{0x53, 0x00}
}

// BuildErrorResponse creates a response carrying a PN532 error status
func BuildErrorResponse(cmd, status byte) []byte {
	return []byte{cmd + 1, status}
}

func buildDetectionResponse(uid []byte, atqa, sak byte) []byte {
	// NbTg=1, Tg=1, SENS_RES, SEL_RES, NFCIDLength, NFCID
	response := []byte{0x4B, 0x01, 0x01, 0x00, atqa, sak, byte(len(uid))}
	return append(response, uid...)
}

// Common UIDs for testing
var (
	// TestNTAG213UID is a sample NTAG213 UID
	TestNTAG213UID = []byte{0x04, 0xAB, 0xCD, 0xEF, 0x12, 0x34, 0x56}

	// TestMIFARE1KUID is a sample MIFARE Classic 1K UID
	TestMIFARE1KUID = []byte{0x12, 0x34, 0x56, 0x78}

	// TestMIFARE1KUIDAlt is a second MIFARE Classic 1K UID
	TestMIFARE1KUIDAlt = []byte{0xDE, 0xAD, 0xBE, 0xEF}
)

// Command bytes for reference
const (
	CmdGetFirmwareVersion  = 0x02
	CmdSAMConfiguration    = 0x14
	CmdRFConfiguration     = 0x32
	CmdInDataExchange      = 0x40
	CmdInListPassiveTarget = 0x4A
	CmdInRelease           = 0x52
)

// PN532 status bytes used by the simulator
const (
	StatusOK            = 0x00
	StatusTimeout       = 0x01
	StatusMIFAREAuth    = 0x14
	StatusWrongContext  = 0x27
	StatusTargetRelease = 0x29
)
