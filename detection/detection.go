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

// Package detection finds USB serial ports that may carry a PN532 reader.
package detection

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
	"go.bug.st/serial/enumerator"
)

// ErrNoDevicesFound is returned when no port answered a probe.
var ErrNoDevicesFound = errors.New("no PN532 devices found")

// Port describes a USB serial port candidate.
type Port struct {
	Path    string
	VIDPID  string
	Product string
	Serial  string
}

// Options controls which ports are considered.
type Options struct {
	// Blocklist holds VID:PID pairs that must never be probed.
	Blocklist []string
	// IgnorePaths holds device paths to skip, e.g. a port already in use.
	IgnorePaths []string
}

// DefaultOptions returns options with the default blocklist and no ignored paths.
func DefaultOptions() Options {
	return Options{Blocklist: DefaultBlocklist()}
}

// knownBridges are USB-serial chips commonly found on PN532 boards.
var knownBridges = map[string]bool{
	"1A86:7523": true, // CH340
	"10C4:EA60": true, // CP210x
	"0403:6001": true, // FT232R
	"067B:2303": true, // PL2303
}

type lister func() ([]*enumerator.PortDetails, error)

// SerialPorts lists USB serial ports, most likely PN532 bridges first.
func SerialPorts(opts Options) ([]Port, error) {
	return serialPorts(enumerator.GetDetailedPortsList, opts)
}

func serialPorts(list lister, opts Options) ([]Port, error) {
	details, err := list()
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate serial ports: %w", err)
	}

	ports := make([]Port, 0, len(details))
	for _, d := range details {
		if d == nil || !d.IsUSB {
			continue
		}
		vidpid := strings.ToUpper(d.VID + ":" + d.PID)
		if IsBlocked(vidpid, opts.Blocklist) {
			log.Debug().Str("port", d.Name).Str("usb", vidpid).Msg("skipping blocked device")
			continue
		}
		if IsPathIgnored(d.Name, opts.IgnorePaths) {
			log.Debug().Str("port", d.Name).Msg("skipping ignored path")
			continue
		}
		ports = append(ports, Port{
			Path:    d.Name,
			VIDPID:  vidpid,
			Product: d.Product,
			Serial:  d.SerialNumber,
		})
	}

	sort.SliceStable(ports, func(i, j int) bool {
		return knownBridges[ports[i].VIDPID] && !knownBridges[ports[j].VIDPID]
	})
	return ports, nil
}

// Probe calls connect on each port in order and returns the first success.
// The errors of every failed attempt are joined with ErrNoDevicesFound.
func Probe[T any](
	ctx context.Context,
	ports []Port,
	connect func(ctx context.Context, path string) (T, error),
) (T, Port, error) {
	var zero T
	errs := []error{ErrNoDevicesFound}
	for _, port := range ports {
		if err := ctx.Err(); err != nil {
			return zero, Port{}, err
		}
		device, err := connect(ctx, port.Path)
		if err == nil {
			return device, port, nil
		}
		log.Debug().Err(err).Str("port", port.Path).Msg("probe failed")
		errs = append(errs, fmt.Errorf("%s: %w", port.Path, err))
	}
	return zero, Port{}, errors.Join(errs...)
}

// DefaultBlocklist returns USB devices that should not be probed.
// Format: VID:PID in hexadecimal (case-insensitive).
func DefaultBlocklist() []string {
	return []string{
		"2341:0043", // Arduino Uno, resets on open
		"2341:0001", // Arduino Uno (older revision)
	}
}

// IsBlocked checks if a USB device is in the blocklist.
func IsBlocked(vidpid string, blocklist []string) bool {
	vidpid = strings.ToUpper(strings.TrimSpace(vidpid))
	for _, blocked := range blocklist {
		if vidpid == strings.ToUpper(strings.TrimSpace(blocked)) {
			return true
		}
	}
	return false
}

// IsPathIgnored checks if a device path should be ignored.
// Supports exact path matching and normalized path comparison.
func IsPathIgnored(devicePath string, ignorePaths []string) bool {
	if devicePath == "" || len(ignorePaths) == 0 {
		return false
	}

	normalizedDevice := normalizedPath(devicePath)
	for _, ignorePath := range ignorePaths {
		if ignorePath == "" {
			continue
		}
		if devicePath == ignorePath || normalizedDevice == normalizedPath(ignorePath) {
			return true
		}
	}
	return false
}

// normalizedPath cleans a path and lowercases it for COM port names
func normalizedPath(path string) string {
	return strings.ToLower(filepath.Clean(path))
}
