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
	"fmt"
	"sync"
)

// MIFARE Classic commands carried inside InDataExchange
const (
	MIFAREAuthA = 0x60
	MIFAREAuthB = 0x61
	MIFARERead  = 0x30
	MIFAREWrite = 0xA0
)

// Simulator answers PN532 commands the way a real chip with one antenna
// would. A tag left in the field after InRelease is detected again by the
// next InListPassiveTarget.
//
// Plug it into a mock transport with SetHandler(sim.Exchange).
type Simulator struct {
	tag        *VirtualTag
	failures   map[byte]byte
	calls      map[byte]int
	mu         sync.Mutex
	authSector int
	selected   bool
}

// NewSimulator creates a simulator with an empty field
func NewSimulator() *Simulator {
	return &Simulator{
		failures:   make(map[byte]byte),
		calls:      make(map[byte]int),
		authSector: -1,
	}
}

// Place puts tag into the field, replacing any previous tag
func (s *Simulator) Place(tag *VirtualTag) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tag.Insert()
	s.tag = tag
	s.selected = false
	s.authSector = -1
}

// Remove empties the field
func (s *Simulator) Remove() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tag != nil {
		s.tag.Remove()
	}
	s.tag = nil
	s.selected = false
	s.authSector = -1
}

// Tag returns the tag currently in the field
func (s *Simulator) Tag() *VirtualTag {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tag
}

// FailMIFARE makes every MIFARE command op (auth, read or write) answer
// with the given PN532 status
func (s *Simulator) FailMIFARE(op, status byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if op == MIFAREAuthB {
		op = MIFAREAuthA
	}
	s.failures[op] = status
}

// ClearFailures removes every injected failure
func (s *Simulator) ClearFailures() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = make(map[byte]byte)
}

// CallCount returns how many times a PN532 command or, for InDataExchange
// payloads, a MIFARE command was handled
func (s *Simulator) CallCount(cmd byte) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[cmd]
}

// Exchange handles one PN532 command and returns the response payload
func (s *Simulator) Exchange(cmd byte, args []byte) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls[cmd]++

	switch cmd {
	case CmdGetFirmwareVersion:
		return BuildFirmwareVersionResponse(), nil
	case CmdSAMConfiguration:
		return BuildSAMConfigurationResponse(), nil
	case CmdRFConfiguration:
		return BuildRFConfigurationResponse(), nil
	case CmdInListPassiveTarget:
		return s.listPassiveTarget(), nil
	case CmdInDataExchange:
		return s.dataExchange(args), nil
	case CmdInRelease:
		s.selected = false
		s.authSector = -1
		return BuildReleaseResponse(), nil
	default:
		return nil, fmt.Errorf("simulator: unsupported command 0x%02X", cmd)
	}
}

func (s *Simulator) listPassiveTarget() []byte {
	if s.tag == nil || !s.tag.Present {
		s.selected = false
		return BuildNoTagResponse()
	}
	s.selected = true
	s.authSector = -1
	return BuildTagDetectionResponse(s.tag.Type, s.tag.UID)
}

func (s *Simulator) dataExchange(args []byte) []byte {
	if len(args) < 2 {
		return BuildErrorResponse(CmdInDataExchange, StatusWrongContext)
	}
	if !s.selected || s.tag == nil {
		return BuildErrorResponse(CmdInDataExchange, StatusWrongContext)
	}
	if !s.tag.Present {
		return BuildErrorResponse(CmdInDataExchange, StatusTimeout)
	}

	data := args[1:]
	op := data[0]
	if op == MIFAREAuthB {
		op = MIFAREAuthA
	}
	s.calls[op]++
	if status, ok := s.failures[op]; ok {
		if op == MIFAREAuthA {
			s.authSector = -1
		}
		return BuildErrorResponse(CmdInDataExchange, status)
	}

	switch op {
	case MIFAREAuthA:
		return s.authenticate(data)
	case MIFARERead:
		return s.read(data)
	case MIFAREWrite:
		return s.write(data)
	default:
		return BuildErrorResponse(CmdInDataExchange, StatusWrongContext)
	}
}

// data: [0x60|0x61, block, key(6), uid(4)]
func (s *Simulator) authenticate(data []byte) []byte {
	if len(data) != 2+keySize+4 {
		return BuildErrorResponse(CmdInDataExchange, StatusMIFAREAuth)
	}
	block := int(data[1])
	uid := s.tag.UID[len(s.tag.UID)-4:]
	for i, b := range data[2+keySize:] {
		if uid[i] != b {
			s.authSector = -1
			return BuildErrorResponse(CmdInDataExchange, StatusMIFAREAuth)
		}
	}
	if !s.tag.CheckKey(block, data[0]-MIFAREAuthA, data[2:2+keySize]) {
		s.authSector = -1
		return BuildErrorResponse(CmdInDataExchange, StatusMIFAREAuth)
	}
	s.authSector = block / sectorSize
	return BuildDataExchangeResponse(nil)
}

func (s *Simulator) read(data []byte) []byte {
	if len(data) != 2 || int(data[1])/sectorSize != s.authSector {
		return BuildErrorResponse(CmdInDataExchange, StatusMIFAREAuth)
	}
	block, err := s.tag.ReadBlock(int(data[1]))
	if err != nil {
		return BuildErrorResponse(CmdInDataExchange, StatusWrongContext)
	}
	return BuildDataExchangeResponse(block)
}

func (s *Simulator) write(data []byte) []byte {
	if len(data) != 2+blockSize || int(data[1])/sectorSize != s.authSector {
		return BuildErrorResponse(CmdInDataExchange, StatusMIFAREAuth)
	}
	if err := s.tag.WriteBlock(int(data[1]), data[2:]); err != nil {
		return BuildErrorResponse(CmdInDataExchange, StatusWrongContext)
	}
	return BuildDataExchangeResponse(nil)
}
