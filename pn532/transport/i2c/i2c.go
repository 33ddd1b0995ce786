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

// Package i2c provides I2C transport implementation for PN532
package i2c

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ZaparooProject/go-tagstation/internal/frame"
	"github.com/ZaparooProject/go-tagstation/internal/transport"
	"github.com/ZaparooProject/go-tagstation/pn532"
	"github.com/rs/zerolog/log"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"
)

const (
	// Address is the PN532's 7-bit I2C address (0x48/0x49 on the wire)
	Address = 0x24

	pn532Ready = 0x01

	// Max clock frequency (400 kHz).
	maxClockFreq = 400 * physic.KiloHertz

	// Every I2C read starts with the ready byte
	ackReadSize      = 1 + 6
	responseReadSize = 1 + frame.Overhead + frame.MaxDataLength

	maxReceiveAttempts = 3
	defaultTimeout     = 100 * time.Millisecond
)

// Transport implements the pn532.Transport interface for I2C communication
type Transport struct {
	bus     i2c.Bus
	closer  i2c.BusCloser
	dev     *i2c.Dev
	busName string
	timeout time.Duration
}

// Open initialises the host drivers, opens the named bus and returns a
// transport that owns it
func Open(busName string) (*Transport, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize periph host: %w", err)
	}

	bus, err := i2creg.Open(busName)
	if err != nil {
		return nil, fmt.Errorf("failed to open I2C bus %s: %w", busName, err)
	}

	// Ignore error, continue with default speed
	_ = bus.SetSpeed(maxClockFreq)

	t := New(bus, busName)
	t.closer = bus
	return t, nil
}

// New creates a transport on an already open bus. The bus is not closed by
// Close, so it can be shared with other devices such as a display.
func New(bus i2c.Bus, busName string) *Transport {
	return &Transport{
		bus:     bus,
		dev:     &i2c.Dev{Addr: Address, Bus: bus},
		busName: busName,
		timeout: defaultTimeout,
	}
}

// Bus returns the underlying bus
func (t *Transport) Bus() i2c.Bus {
	return t.bus
}

// SendCommand sends a command to the PN532 and waits for its response
func (t *Transport) SendCommand(ctx context.Context, cmd byte, args []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if t.dev == nil {
		return nil, pn532.NewTransportError("SendCommand", t.busName, pn532.ErrTransportWrite, pn532.ErrorTypePermanent)
	}

	deadline := pn532.Deadline(ctx, t.timeout)

	if err := t.sendFrame(cmd, args); err != nil {
		return nil, err
	}
	if err := t.waitAck(deadline); err != nil {
		return nil, err
	}
	return t.receiveFrame(deadline)
}

// SetTimeout sets the read timeout for the transport
func (t *Transport) SetTimeout(timeout time.Duration) error {
	t.timeout = timeout
	return nil
}

// Close releases the bus if the transport opened it
func (t *Transport) Close() error {
	dev, closer := t.dev, t.closer
	t.dev = nil
	t.closer = nil
	if dev == nil || closer == nil {
		return nil
	}
	if err := closer.Close(); err != nil {
		return fmt.Errorf("failed to close I2C bus %s: %w", t.busName, err)
	}
	return nil
}

// IsConnected returns true if the transport is connected
func (t *Transport) IsConnected() bool {
	return t.dev != nil
}

// Type returns the transport type
func (*Transport) Type() pn532.TransportType {
	return pn532.TransportI2C
}

// sendFrame sends a frame to the PN532 via I2C
func (t *Transport) sendFrame(cmd byte, args []byte) error {
	frm, err := frame.Encode(cmd, args)
	if err != nil {
		return pn532.NewTransportError("sendFrame", t.busName,
			fmt.Errorf("%w: %w", pn532.ErrDataTooLarge, err), pn532.ErrorTypePermanent)
	}

	if err := t.dev.Tx(frm, nil); err != nil {
		return pn532.NewTransportError("sendFrame", t.busName,
			fmt.Errorf("%w: %w", pn532.ErrTransportWrite, err), pn532.ErrorTypeTransient)
	}
	return nil
}

// waitReady polls the status byte until the PN532 has data for us
func (t *Transport) waitReady(deadline time.Time) error {
	ready := make([]byte, 1)
	_, err := transport.Until(time.Until(deadline), func() (struct{}, bool, error) {
		if err := t.dev.Tx(nil, ready); err != nil {
			return struct{}{}, false, pn532.NewTransportError("waitReady", t.busName,
				fmt.Errorf("%w: %w", pn532.ErrTransportRead, err), pn532.ErrorTypeTransient)
		}
		return struct{}{}, ready[0] != pn532Ready, nil
	})
	if errors.Is(err, pn532.ErrTransportTimeout) {
		return pn532.NewNotReadyError("waitReady", t.busName)
	}
	return err
}

// waitAck waits for an ACK frame from the PN532
func (t *Transport) waitAck(deadline time.Time) error {
	if err := t.waitReady(deadline); err != nil {
		return pn532.NewNoACKError("waitAck", t.busName)
	}

	buf := make([]byte, ackReadSize)
	if err := t.dev.Tx(nil, buf); err != nil {
		return pn532.NewTransportError("waitAck", t.busName,
			fmt.Errorf("%w: %w", pn532.ErrTransportRead, err), pn532.ErrorTypeTransient)
	}
	if !frame.IsAck(buf[1:]) {
		return pn532.NewNoACKError("waitAck", t.busName)
	}
	return nil
}

// sendNack asks the PN532 to send its last response again
func (t *Transport) sendNack() error {
	if err := t.dev.Tx(frame.NackFrame, nil); err != nil {
		return pn532.NewTransportError("sendNack", t.busName,
			fmt.Errorf("%w: %w", pn532.ErrTransportWrite, err), pn532.ErrorTypeTransient)
	}
	return nil
}

// receiveFrame reads a response frame, NACKing corrupted ones
func (t *Transport) receiveFrame(deadline time.Time) ([]byte, error) {
	return transport.Repeat(transport.AttemptConfig{
		Op:          "receiveFrame",
		Port:        t.busName,
		MaxAttempts: maxReceiveAttempts,
		BeforeNext:  t.sendNack,
	}, func() ([]byte, bool, error) {
		return t.receiveFrameAttempt(deadline)
	})
}

// receiveFrameAttempt performs a single frame receive attempt
func (t *Transport) receiveFrameAttempt(deadline time.Time) (data []byte, again bool, err error) {
	if err := t.waitReady(deadline); err != nil {
		if errors.Is(err, pn532.ErrNotReady) {
			return nil, false, pn532.NewTimeoutError("receiveFrame", t.busName)
		}
		return nil, false, err
	}

	buf := make([]byte, responseReadSize)
	if err := t.dev.Tx(nil, buf); err != nil {
		return nil, false, pn532.NewTransportError("receiveFrame", t.busName,
			fmt.Errorf("%w: %w", pn532.ErrTransportRead, err), pn532.ErrorTypeTransient)
	}

	payload, err := frame.Decode(buf[1:])
	switch {
	case err == nil:
		return payload, false, nil
	case errors.Is(err, frame.ErrErrorFrame):
		return nil, false, pn532.NewTransportError("receiveFrame", t.busName,
			fmt.Errorf("%w: %w", pn532.ErrInvalidResponse, err), pn532.ErrorTypePermanent)
	default:
		log.Debug().Err(err).Str("bus", t.busName).Msg("I2C frame rejected")
		return nil, true, nil
	}
}

// Ensure Transport implements pn532.Transport
var _ pn532.Transport = (*Transport)(nil)
