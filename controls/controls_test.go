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

package controls

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
)

func TestNew(t *testing.T) {
	t.Parallel()

	clk := &gpiotest.Pin{N: "CLK", Num: 17}
	dt := &gpiotest.Pin{N: "DT", Num: 27}
	sw := &gpiotest.Pin{N: "SW", Num: 22}

	panel, err := New(clk, dt, sw)
	require.NoError(t, err)
	assert.Equal(t, gpio.PullUp, sw.P, "button must be pulled up")
	assert.Equal(t, gpio.PullNoChange, clk.P)
	assert.Equal(t, gpio.PullNoChange, dt.P)

	// Released button reads high
	assert.Equal(t, gpio.High, panel.Sample().Button)
}

func TestNew_MissingPin(t *testing.T) {
	t.Parallel()

	_, err := New(&gpiotest.Pin{N: "CLK"}, nil, &gpiotest.Pin{N: "SW"})
	require.Error(t, err)
}

func TestPanel_Sample(t *testing.T) {
	t.Parallel()

	clk := &gpiotest.Pin{N: "CLK"}
	dt := &gpiotest.Pin{N: "DT"}
	sw := &gpiotest.Pin{N: "SW"}
	panel, err := New(clk, dt, sw)
	require.NoError(t, err)

	clk.L = gpio.High
	dt.L = gpio.Low
	sw.L = gpio.Low

	sample := panel.Sample()
	assert.Equal(t, gpio.High, sample.Clock)
	assert.Equal(t, gpio.Low, sample.Data)
	assert.Equal(t, gpio.Low, sample.Button)

	require.NoError(t, panel.Halt())
}
