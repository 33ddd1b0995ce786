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
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Option is a functional option for configuring a Station
type Option func(*Station) error

// WithConfig replaces the default configuration
func WithConfig(cfg *Config) Option {
	return func(s *Station) error {
		if cfg == nil {
			return errors.New("config must not be nil")
		}
		if len(cfg.Key) != 6 {
			return fmt.Errorf("key must be 6 bytes, got %d", len(cfg.Key))
		}
		s.cfg = cfg
		return nil
	}
}

// WithClock sets the time source used for button debouncing
func WithClock(now func() time.Time) Option {
	return func(s *Station) error {
		if now == nil {
			return errors.New("clock must not be nil")
		}
		s.now = now
		return nil
	}
}

// WithHTTPClient sets the client used for lookups. Its Timeout is left as is.
func WithHTTPClient(client *http.Client) Option {
	return func(s *Station) error {
		if client == nil {
			return errors.New("HTTP client must not be nil")
		}
		s.httpClient = client
		return nil
	}
}

// WithLink sets the network link checked before every lookup
func WithLink(link Link) Option {
	return func(s *Station) error {
		if link == nil {
			return errors.New("link must not be nil")
		}
		s.link = link
		return nil
	}
}
