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

// Package controls samples the station's rotary encoder and push button
// over GPIO.
package controls

import (
	"errors"
	"fmt"

	tagstation "github.com/ZaparooProject/go-tagstation"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

// Panel is an encoder with clock and data lines plus an active-low button
type Panel struct {
	clk gpio.PinIn
	dt  gpio.PinIn
	sw  gpio.PinIn
}

// Open initialises the host drivers and opens the named pins, e.g. "GPIO17"
func Open(clk, dt, sw string) (*Panel, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize periph host: %w", err)
	}

	pins := make([]gpio.PinIn, 0, 3)
	for _, name := range []string{clk, dt, sw} {
		pin := gpioreg.ByName(name)
		if pin == nil {
			return nil, fmt.Errorf("GPIO pin %q not found", name)
		}
		pins = append(pins, pin)
	}
	return New(pins[0], pins[1], pins[2])
}

// New configures the pins as inputs. The encoder lines are left floating
// since encoder boards carry their own pull-ups; the button is pulled up.
func New(clk, dt, sw gpio.PinIn) (*Panel, error) {
	if clk == nil || dt == nil || sw == nil {
		return nil, errors.New("clock, data and button pins are required")
	}
	if err := clk.In(gpio.PullNoChange, gpio.NoEdge); err != nil {
		return nil, fmt.Errorf("failed to configure encoder clock %s: %w", clk, err)
	}
	if err := dt.In(gpio.PullNoChange, gpio.NoEdge); err != nil {
		return nil, fmt.Errorf("failed to configure encoder data %s: %w", dt, err)
	}
	if err := sw.In(gpio.PullUp, gpio.NoEdge); err != nil {
		return nil, fmt.Errorf("failed to configure button %s: %w", sw, err)
	}
	return &Panel{clk: clk, dt: dt, sw: sw}, nil
}

// Sample reads all three lines
func (p *Panel) Sample() tagstation.InputSample {
	return tagstation.InputSample{
		Clock:  p.clk.Read(),
		Data:   p.dt.Read(),
		Button: p.sw.Read(),
	}
}

// Halt stops using the pins
func (p *Panel) Halt() error {
	var errs []error
	for _, pin := range []gpio.PinIn{p.clk, p.dt, p.sw} {
		if err := pin.Halt(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

var _ tagstation.Inputs = (*Panel)(nil)
