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

// Package uart provides the high speed UART (HSU) transport for PN532
package uart

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/ZaparooProject/go-tagstation/internal/frame"
	"github.com/ZaparooProject/go-tagstation/internal/transport"
	"github.com/ZaparooProject/go-tagstation/pn532"
	"github.com/rs/zerolog/log"
	"go.bug.st/serial"
)

const (
	// BaudRate is the PN532's default HSU speed
	BaudRate = 115200

	readChunkSize      = 64
	portReadTimeout    = 10 * time.Millisecond
	defaultTimeout     = 100 * time.Millisecond
	maxReceiveAttempts = 3
)

// The PN532 sleeps after power on; a long preamble of 0x55 wakes the HSU
var wakeupPreamble = []byte{
	0x55, 0x55, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
}

// port is the part of serial.Port the transport uses
type port interface {
	io.ReadWriteCloser
	SetReadTimeout(t time.Duration) error
	ResetInputBuffer() error
}

// Transport implements the pn532.Transport interface for UART communication
type Transport struct {
	port     port
	portName string
	timeout  time.Duration
	awake    bool
}

// New opens portName at 115200 8N1
func New(portName string) (*Transport, error) {
	p, err := serial.Open(portName, &serial.Mode{
		BaudRate: BaudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", portName, err)
	}

	t, err := newTransport(p, portName)
	if err != nil {
		_ = p.Close()
		return nil, err
	}
	return t, nil
}

func newTransport(p port, portName string) (*Transport, error) {
	if err := p.SetReadTimeout(portReadTimeout); err != nil {
		return nil, fmt.Errorf("failed to set read timeout: %w", err)
	}
	return &Transport{
		port:     p,
		portName: portName,
		timeout:  defaultTimeout,
	}, nil
}

// SendCommand sends a command to the PN532 and waits for its response
func (t *Transport) SendCommand(ctx context.Context, cmd byte, args []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if t.port == nil {
		return nil, pn532.NewTransportError("SendCommand", t.portName, pn532.ErrTransportWrite, pn532.ErrorTypePermanent)
	}

	deadline := pn532.Deadline(ctx, t.timeout)

	if err := t.sendFrame(cmd, args); err != nil {
		return nil, err
	}

	acked := false
	return transport.Repeat(transport.AttemptConfig{
		Op:          "receiveFrame",
		Port:        t.portName,
		MaxAttempts: maxReceiveAttempts,
		BeforeNext:  t.sendNack,
	}, func() ([]byte, bool, error) {
		return t.receiveFrameAttempt(deadline, &acked)
	})
}

// SetTimeout sets the per command timeout
func (t *Transport) SetTimeout(timeout time.Duration) error {
	t.timeout = timeout
	return nil
}

// Close closes the serial port
func (t *Transport) Close() error {
	if t.port == nil {
		return nil
	}
	p := t.port
	t.port = nil
	t.awake = false
	if err := p.Close(); err != nil {
		return fmt.Errorf("failed to close serial port %s: %w", t.portName, err)
	}
	return nil
}

// IsConnected returns true if the port is open
func (t *Transport) IsConnected() bool {
	return t.port != nil
}

// Type returns the transport type
func (*Transport) Type() pn532.TransportType {
	return pn532.TransportUART
}

func (t *Transport) sendFrame(cmd byte, args []byte) error {
	frm, err := frame.Encode(cmd, args)
	if err != nil {
		return pn532.NewTransportError("sendFrame", t.portName,
			fmt.Errorf("%w: %w", pn532.ErrDataTooLarge, err), pn532.ErrorTypePermanent)
	}

	if !t.awake {
		frm = append(append([]byte(nil), wakeupPreamble...), frm...)
	}

	if err := t.port.ResetInputBuffer(); err != nil {
		return pn532.NewTransportError("sendFrame", t.portName,
			fmt.Errorf("%w: %w", pn532.ErrTransportWrite, err), pn532.ErrorTypeTransient)
	}
	if err := t.write(frm); err != nil {
		return err
	}
	t.awake = true
	return nil
}

func (t *Transport) sendNack() error {
	return t.write(frame.NackFrame)
}

func (t *Transport) write(data []byte) error {
	if _, err := t.port.Write(data); err != nil {
		return pn532.NewTransportError("write", t.portName,
			fmt.Errorf("%w: %w", pn532.ErrTransportWrite, err), pn532.ErrorTypeTransient)
	}
	return nil
}

// receiveFrameAttempt reads until an ACK and a complete response frame have
// arrived. A corrupted frame asks for another attempt after a NACK; the
// resent frame is not preceded by another ACK.
func (t *Transport) receiveFrameAttempt(deadline time.Time, acked *bool) (data []byte, again bool, err error) {
	var buf bytes.Buffer
	chunk := make([]byte, readChunkSize)

	for {
		if !*acked && frame.IsAck(buf.Bytes()) {
			*acked = true
		}
		if *acked {
			payload, decodeErr := frame.Decode(buf.Bytes())
			switch {
			case decodeErr == nil:
				return payload, false, nil
			case errors.Is(decodeErr, frame.ErrErrorFrame):
				return nil, false, pn532.NewTransportError("receiveFrame", t.portName,
					fmt.Errorf("%w: %w", pn532.ErrInvalidResponse, decodeErr), pn532.ErrorTypePermanent)
			case errors.Is(decodeErr, frame.ErrIncomplete), errors.Is(decodeErr, frame.ErrNoStartCode):
			default:
				log.Debug().Err(decodeErr).Str("port", t.portName).Msg("UART frame rejected")
				return nil, true, nil
			}
		}

		if !time.Now().Before(deadline) {
			if !*acked {
				return nil, false, pn532.NewNoACKError("receiveFrame", t.portName)
			}
			return nil, false, pn532.NewTimeoutError("receiveFrame", t.portName)
		}

		n, readErr := t.port.Read(chunk)
		if readErr != nil {
			return nil, false, pn532.NewTransportError("receiveFrame", t.portName,
				fmt.Errorf("%w: %w", pn532.ErrTransportRead, readErr), pn532.ErrorTypeTransient)
		}
		buf.Write(chunk[:n])
	}
}

// Ensure Transport implements pn532.Transport
var _ pn532.Transport = (*Transport)(nil)
