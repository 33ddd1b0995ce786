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

import "errors"

// Tag cycle errors. All of them end the current tag presentation only.
var (
	ErrAuthFailed        = errors.New("tag authentication failed")
	ErrReadFailed        = errors.New("tag read failed")
	ErrWriteFailed       = errors.New("tag write failed")
	ErrMalformedResponse = errors.New("malformed lookup response")
	ErrLookupFailed      = errors.New("lookup request failed")
)
