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
	"errors"
	"fmt"
)

// Transport errors
var (
	ErrTransportTimeout    = errors.New("transport timeout")
	ErrTransportRead       = errors.New("transport read failed")
	ErrTransportWrite      = errors.New("transport write failed")
	ErrCommunicationFailed = errors.New("communication failed")
	ErrNoACK               = errors.New("no ACK received")
	ErrFrameCorrupted      = errors.New("frame corrupted")
	ErrNotReady            = errors.New("device not ready")
	ErrDataTooLarge        = errors.New("data too large")
)

// Device and tag errors
var (
	ErrNoTagDetected    = errors.New("no tag detected")
	ErrInvalidParameter = errors.New("invalid parameter")
	ErrInvalidResponse  = errors.New("invalid response")
	ErrAuthFailed       = errors.New("MIFARE authentication failed")
	ErrNotAuthenticated = errors.New("sector not authenticated")
	ErrTagTimeout       = errors.New("tag did not answer")
)

// ErrorType classifies transport errors
type ErrorType int

const (
	// ErrorTypePermanent errors will not go away by trying again
	ErrorTypePermanent ErrorType = iota
	// ErrorTypeTransient errors may clear on the next attempt
	ErrorTypeTransient
	// ErrorTypeTimeout errors are deadlines expiring
	ErrorTypeTimeout
)

// TransportError describes a failure talking to the PN532
type TransportError struct {
	Err       error
	Op        string
	Port      string
	Type      ErrorType
	Retryable bool
}

func (e *TransportError) Error() string {
	if e.Port == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s on %s: %v", e.Op, e.Port, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// NewTransportError creates a TransportError; transient and timeout errors are retryable
func NewTransportError(op, port string, err error, errType ErrorType) *TransportError {
	return &TransportError{
		Op:        op,
		Port:      port,
		Err:       err,
		Type:      errType,
		Retryable: errType != ErrorTypePermanent,
	}
}

// NewTimeoutError creates a timeout error
func NewTimeoutError(op, port string) *TransportError {
	return NewTransportError(op, port, ErrTransportTimeout, ErrorTypeTimeout)
}

// NewNoACKError creates an error for a command the PN532 never acknowledged
func NewNoACKError(op, port string) *TransportError {
	return NewTransportError(op, port, ErrNoACK, ErrorTypeTransient)
}

// NewFrameCorruptedError creates an error for an undecodable frame
func NewFrameCorruptedError(op, port string, cause error) *TransportError {
	return NewTransportError(op, port, fmt.Errorf("%w: %w", ErrFrameCorrupted, cause), ErrorTypeTransient)
}

// NewNotReadyError creates an error for a PN532 that did not raise its ready flag
func NewNotReadyError(op, port string) *TransportError {
	return NewTransportError(op, port, ErrNotReady, ErrorTypeTransient)
}

// IsRetryable reports whether err is worth another attempt
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var te *TransportError
	if errors.As(err, &te) {
		return te.Retryable
	}

	switch {
	case errors.Is(err, ErrTransportTimeout),
		errors.Is(err, ErrTransportRead),
		errors.Is(err, ErrTransportWrite),
		errors.Is(err, ErrCommunicationFailed),
		errors.Is(err, ErrNoACK),
		errors.Is(err, ErrFrameCorrupted):
		return true
	default:
		return false
	}
}

// StatusError carries a non-zero PN532 status byte from a target command
type StatusError struct {
	Command byte
	Status  byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("PN532 command %02X failed with status %02X", e.Command, e.Status)
}

// Is maps well known status codes onto the package sentinels
func (e *StatusError) Is(target error) bool {
	switch e.Status {
	case statusMIFAREAuth:
		return target == ErrAuthFailed
	case statusTimeout:
		return target == ErrTagTimeout
	default:
		return false
	}
}
