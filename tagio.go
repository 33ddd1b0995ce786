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

package tagstation

import (
	"context"
	"fmt"
	"strconv"

	"github.com/ZaparooProject/go-tagstation/pn532"
	"github.com/rs/zerolog/log"
)

// Transceiver is the contactless reader. *pn532.Device implements it.
type Transceiver interface {
	DetectTag(ctx context.Context) (*pn532.DetectedTag, error)
	Authenticate(ctx context.Context, tag *pn532.DetectedTag, block uint8, keyType byte, key []byte) error
	ReadBlock(ctx context.Context, block uint8) ([]byte, error)
	WriteBlock(ctx context.Context, block uint8, data []byte) error
	Release(ctx context.Context) error
}

// TagIO reads and writes the identifier block of a MIFARE Classic tag
type TagIO struct {
	reader Transceiver
	key    []byte
	block  uint8
}

// NewTagIO creates a TagIO for block, authenticating with Key A key
func NewTagIO(reader Transceiver, block uint8, key []byte) *TagIO {
	return &TagIO{
		reader: reader,
		block:  block,
		key:    append([]byte(nil), key...),
	}
}

// Detect polls for a tag. Returns pn532.ErrNoTagDetected when the field is empty.
func (t *TagIO) Detect(ctx context.Context) (*pn532.DetectedTag, error) {
	tag, err := t.reader.DetectTag(ctx)
	if err != nil {
		return nil, fmt.Errorf("detect tag: %w", err)
	}
	return tag, nil
}

// WriteValue writes value as ASCII decimal into the identifier block.
// The tag is released afterwards whatever the outcome.
func (t *TagIO) WriteValue(ctx context.Context, tag *pn532.DetectedTag, value int) error {
	defer t.release(ctx, tag)

	if err := t.authenticate(ctx, tag); err != nil {
		return err
	}

	payload, truncated := EncodeValue(value)
	if truncated {
		log.Warn().Int("value", value).Str("uid", tag.UID).
			Msg("identifier does not fit in one block, writing the first 16 digits")
	}

	if err := t.reader.WriteBlock(ctx, t.block, payload); err != nil {
		return fmt.Errorf("%w: block %d: %w", ErrWriteFailed, t.block, err)
	}
	return nil
}

// ReadValue reads the identifier block and returns the identifier string.
// The tag is released afterwards whatever the outcome.
func (t *TagIO) ReadValue(ctx context.Context, tag *pn532.DetectedTag) (string, error) {
	defer t.release(ctx, tag)

	if err := t.authenticate(ctx, tag); err != nil {
		return "", err
	}

	data, err := t.reader.ReadBlock(ctx, t.block)
	if err != nil {
		return "", fmt.Errorf("%w: block %d: %w", ErrReadFailed, t.block, err)
	}
	return DecodeValue(data), nil
}

func (t *TagIO) authenticate(ctx context.Context, tag *pn532.DetectedTag) error {
	if err := t.reader.Authenticate(ctx, tag, t.block, pn532.MIFAREKeyA, t.key); err != nil {
		return fmt.Errorf("%w: block %d: %w", ErrAuthFailed, t.block, err)
	}
	return nil
}

// release halts the tag and drops the crypto session
func (t *TagIO) release(ctx context.Context, tag *pn532.DetectedTag) {
	if err := t.reader.Release(ctx); err != nil {
		log.Warn().Err(err).Str("uid", tag.UID).Msg("failed to release tag")
	}
}

// EncodeValue returns the 16-byte block for value: its ASCII decimal form
// followed by zeros. truncated is set when the digits did not fit.
func EncodeValue(value int) (block []byte, truncated bool) {
	digits := strconv.Itoa(value)
	block = make([]byte, pn532.MIFAREBlockSize)
	n := copy(block, digits)
	return block, n < len(digits)
}

// DecodeValue returns the leading printable ASCII run of block. Anything
// after the first NUL, whitespace or control byte is ignored.
func DecodeValue(block []byte) string {
	end := 0
	for end < len(block) {
		b := block[end]
		if b <= ' ' || b > '~' {
			break
		}
		end++
	}
	return string(block[:end])
}
