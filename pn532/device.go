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
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// DeviceConfig contains configuration options for the Device
type DeviceConfig struct {
	// Timeout is the default timeout for a single command exchange
	Timeout time.Duration
	// PassiveActivationRetries bounds how long InListPassiveTarget searches
	// for a target. 0xFF means forever, which would block the caller.
	PassiveActivationRetries byte
}

// DefaultDeviceConfig returns default device configuration
func DefaultDeviceConfig() *DeviceConfig {
	return &DeviceConfig{
		Timeout:                  500 * time.Millisecond,
		PassiveActivationRetries: 0x01,
	}
}

// FirmwareVersion is the answer to GetFirmwareVersion
type FirmwareVersion struct {
	Version  string
	IC       byte
	Support  byte
	Revision byte
}

// TagType identifies the family of a detected target
type TagType string

const (
	TagTypeMIFARE1K TagType = "MIFARE Classic 1K"
	TagTypeMIFARE4K TagType = "MIFARE Classic 4K"
	TagTypeNTAG     TagType = "NTAG"
	TagTypeUnknown  TagType = "Unknown"
)

// DetectedTag describes the target found by the last poll
type DetectedTag struct {
	DetectedAt   time.Time
	UID          string // canonical upper-case hex, no separators
	Type         TagType
	UIDBytes     []byte
	ATQ          []byte
	SAK          byte
	TargetNumber byte
}

// Device represents a PN532 NFC reader device
//
// Thread Safety: Device is NOT thread-safe. All methods must be called from
// a single goroutine.
type Device struct {
	transport      Transport
	config         *DeviceConfig
	current        *DetectedTag
	lastAuthSector int
}

// New creates a new PN532 device with the given transport
func New(transport Transport, opts ...Option) (*Device, error) {
	device := &Device{
		transport:      transport,
		config:         DefaultDeviceConfig(),
		lastAuthSector: -1,
	}

	for _, opt := range opts {
		if err := opt(device); err != nil {
			return nil, err
		}
	}

	return device, nil
}

// Transport returns the underlying transport
func (d *Device) Transport() Transport {
	return d.transport
}

// SetTimeout sets the default timeout for operations
func (d *Device) SetTimeout(timeout time.Duration) error {
	if timeout <= 0 {
		return fmt.Errorf("%w: timeout must be positive", ErrInvalidParameter)
	}
	d.config.Timeout = timeout
	if err := d.transport.SetTimeout(timeout); err != nil {
		return fmt.Errorf("failed to set timeout on transport: %w", err)
	}
	return nil
}

// Init checks the firmware, puts the SAM in normal mode and bounds passive
// activation retries so DetectTag returns promptly when the field is empty.
func (d *Device) Init(ctx context.Context) error {
	if _, err := d.GetFirmwareVersion(ctx); err != nil {
		return err
	}

	resp, err := d.transport.SendCommand(ctx, cmdSamConfiguration, []byte{samModeNormal, samTimeout, samUseIRQ})
	if err != nil {
		return fmt.Errorf("SAM configuration failed: %w", err)
	}
	if len(resp) < 1 || resp[0] != cmdSamConfiguration+1 {
		return fmt.Errorf("%w: unexpected SAM configuration response %X", ErrInvalidResponse, resp)
	}

	args := []byte{rfItemRetries, rfRetryATR, rfRetryPSL, d.config.PassiveActivationRetries}
	resp, err = d.transport.SendCommand(ctx, cmdRFConfiguration, args)
	if err != nil {
		return fmt.Errorf("RF configuration failed: %w", err)
	}
	if len(resp) < 1 || resp[0] != cmdRFConfiguration+1 {
		return fmt.Errorf("%w: unexpected RF configuration response %X", ErrInvalidResponse, resp)
	}

	debugln("PN532 initialised")
	return nil
}

// GetFirmwareVersion queries the chip's firmware identity
func (d *Device) GetFirmwareVersion(ctx context.Context) (*FirmwareVersion, error) {
	resp, err := d.transport.SendCommand(ctx, cmdGetFirmwareVersion, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get firmware version: %w", err)
	}
	if len(resp) < 5 || resp[0] != cmdGetFirmwareVersion+1 {
		return nil, fmt.Errorf("%w: firmware version response %X", ErrInvalidResponse, resp)
	}

	return &FirmwareVersion{
		IC:       resp[1],
		Version:  fmt.Sprintf("%d.%d", resp[2], resp[3]),
		Revision: resp[3],
		Support:  resp[4],
	}, nil
}

// DetectTag polls once for a single 106 kbps type A target.
// Returns ErrNoTagDetected when the field is empty.
func (d *Device) DetectTag(ctx context.Context) (*DetectedTag, error) {
	d.current = nil
	d.lastAuthSector = -1

	resp, err := d.transport.SendCommand(ctx, cmdInListPassiveTarget, []byte{0x01, brTy106TypeA})
	if err != nil {
		return nil, fmt.Errorf("tag detection failed: %w", err)
	}

	tag, err := parsePassiveTarget(resp)
	if err != nil {
		return nil, err
	}

	d.current = tag
	debugf("detected %s tag %s", tag.Type, tag.UID)
	return tag, nil
}

// parsePassiveTarget decodes an InListPassiveTarget response:
// [0x4B, NbTg, Tg, SENS_RES(2), SEL_RES, NFCIDLength, NFCID...]
func parsePassiveTarget(resp []byte) (*DetectedTag, error) {
	if len(resp) < 2 || resp[0] != cmdInListPassiveTarget+1 {
		return nil, fmt.Errorf("%w: InListPassiveTarget response %X", ErrInvalidResponse, resp)
	}
	if resp[1] == 0 {
		return nil, ErrNoTagDetected
	}
	if len(resp) < 7 {
		return nil, fmt.Errorf("%w: target data too short (%d bytes)", ErrInvalidResponse, len(resp))
	}

	uidLen := int(resp[6])
	if uidLen == 0 || len(resp) < 7+uidLen {
		return nil, fmt.Errorf("%w: UID length %d exceeds response", ErrInvalidResponse, uidLen)
	}

	uid := make([]byte, uidLen)
	copy(uid, resp[7:7+uidLen])

	tag := &DetectedTag{
		TargetNumber: resp[2],
		ATQ:          []byte{resp[3], resp[4]},
		SAK:          resp[5],
		UIDBytes:     uid,
		UID:          strings.ToUpper(hex.EncodeToString(uid)),
		DetectedAt:   time.Now(),
	}
	tag.Type = identifyTagType(tag.SAK)
	return tag, nil
}

func identifyTagType(sak byte) TagType {
	switch sak {
	case 0x08, 0x88:
		return TagTypeMIFARE1K
	case 0x18:
		return TagTypeMIFARE4K
	case 0x00:
		return TagTypeNTAG
	default:
		return TagTypeUnknown
	}
}

// SendDataExchange sends data to the selected target with InDataExchange and
// returns the target's answer with the status byte stripped.
func (d *Device) SendDataExchange(ctx context.Context, data []byte) ([]byte, error) {
	args := make([]byte, 0, len(data)+1)
	args = append(args, defaultTarget)
	args = append(args, data...)

	resp, err := d.transport.SendCommand(ctx, cmdInDataExchange, args)
	if err != nil {
		return nil, fmt.Errorf("data exchange failed: %w", err)
	}
	if len(resp) < 2 || resp[0] != cmdInDataExchange+1 {
		return nil, fmt.Errorf("%w: InDataExchange response %X", ErrInvalidResponse, resp)
	}
	if status := resp[1] & statusCodeMask; status != 0 {
		return nil, &StatusError{Command: cmdInDataExchange, Status: status}
	}

	return resp[2:], nil
}

// Release halts communication with every selected target and drops the
// MIFARE crypto session. Safe to call when no target is selected.
func (d *Device) Release(ctx context.Context) error {
	d.current = nil
	d.lastAuthSector = -1

	resp, err := d.transport.SendCommand(ctx, cmdInRelease, []byte{releaseAll})
	if err != nil {
		return fmt.Errorf("release failed: %w", err)
	}
	if len(resp) < 2 || resp[0] != cmdInRelease+1 {
		return fmt.Errorf("%w: InRelease response %X", ErrInvalidResponse, resp)
	}
	if status := resp[1] & statusCodeMask; status != 0 && status != statusTargetRelease {
		return &StatusError{Command: cmdInRelease, Status: status}
	}
	return nil
}

// Close closes the device connection
func (d *Device) Close() error {
	if d.transport != nil {
		if err := d.transport.Close(); err != nil {
			return fmt.Errorf("failed to close transport: %w", err)
		}
	}
	return nil
}
