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

// Package ssd1306 renders station views on a 128x32 SSD1306 OLED
package ssd1306

import (
	"fmt"
	"image"

	tagstation "github.com/ZaparooProject/go-tagstation"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/devices/v3/ssd1306/image1bit"
)

// Panel size
const (
	Width  = 128
	Height = 32
)

// drawer is the part of *ssd1306.Dev the display uses
type drawer interface {
	Draw(r image.Rectangle, src image.Image, sp image.Point) error
	Halt() error
}

// Display buffers a frame in memory and sends it on Flush
type Display struct {
	dev  drawer
	img  *image1bit.VerticalLSB
	face font.Face
}

// New opens the SSD1306 at its default address 0x3C on bus
func New(bus i2c.Bus) (*Display, error) {
	dev, err := ssd1306.NewI2C(bus, &ssd1306.Opts{W: Width, H: Height})
	if err != nil {
		return nil, fmt.Errorf("failed to open SSD1306: %w", err)
	}
	return newDisplay(dev), nil
}

func newDisplay(dev drawer) *Display {
	return &Display{
		dev:  dev,
		img:  image1bit.NewVerticalLSB(image.Rect(0, 0, Width, Height)),
		face: basicfont.Face7x13,
	}
}

// Clear blanks the frame buffer
func (d *Display) Clear() {
	clear(d.img.Pix)
}

// DrawText draws text with its top-left corner at x, y. Text running past
// the right edge is clipped.
func (d *Display) DrawText(x, y int, text string) {
	drawer := font.Drawer{
		Dst:  d.img,
		Src:  image.NewUniform(image1bit.On),
		Face: d.face,
		Dot:  fixed.P(x, y+d.face.Metrics().Ascent.Ceil()),
	}
	drawer.DrawString(text)
}

// Flush sends the frame buffer to the panel
func (d *Display) Flush() error {
	if err := d.dev.Draw(d.img.Bounds(), d.img, image.Point{}); err != nil {
		return fmt.Errorf("failed to draw frame: %w", err)
	}
	return nil
}

// Halt blanks the panel
func (d *Display) Halt() error {
	if err := d.dev.Halt(); err != nil {
		return fmt.Errorf("failed to halt display: %w", err)
	}
	return nil
}

var _ tagstation.Display = (*Display)(nil)
