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

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	tagstation "github.com/ZaparooProject/go-tagstation"
	"github.com/ZaparooProject/go-tagstation/controls"
	"github.com/ZaparooProject/go-tagstation/detection"
	"github.com/ZaparooProject/go-tagstation/display/ssd1306"
	"github.com/ZaparooProject/go-tagstation/pn532"
	"github.com/ZaparooProject/go-tagstation/pn532/transport/i2c"
	"github.com/ZaparooProject/go-tagstation/pn532/transport/uart"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	periphi2c "periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

type config struct {
	readerPath *string
	ignore     *string
	displayBus *string
	clkPin     *string
	dtPin      *string
	swPin      *string
	iface      *string
	timeout    *time.Duration
	debug      *bool
}

func parseFlags() *config {
	cfg := &config{
		readerPath: flag.String("reader", "",
			"PN532 location: a serial port (e.g. /dev/ttyUSB0) or an I2C bus (e.g. /dev/i2c-1). "+
				"Leave empty to search USB serial ports."),
		ignore: flag.String("ignore", "", "Comma separated serial ports to skip when searching"),
		displayBus: flag.String("display", "/dev/i2c-1",
			"I2C bus of the SSD1306 display. Leave empty to log views instead."),
		clkPin:  flag.String("clk", "GPIO17", "Rotary encoder clock pin"),
		dtPin:   flag.String("dt", "GPIO27", "Rotary encoder data pin"),
		swPin:   flag.String("sw", "GPIO22", "Push button pin (active low)"),
		iface:   flag.String("iface", "", "Network interface to wait for. Leave empty for any."),
		timeout: flag.Duration("timeout", 500*time.Millisecond, "PN532 command timeout"),
		debug:   flag.Bool("debug", false, "Enable debug output"),
	}
	flag.Parse()
	return cfg
}

func setupLogging(debug bool) {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
}

// buses opens each I2C bus once so the reader and the display can share one
type buses map[string]periphi2c.BusCloser

func (b buses) open(name string) (periphi2c.BusCloser, error) {
	if bus, ok := b[name]; ok {
		return bus, nil
	}
	bus, err := i2creg.Open(name)
	if err != nil {
		return nil, fmt.Errorf("failed to open I2C bus %s: %w", name, err)
	}
	b[name] = bus
	return bus, nil
}

func (b buses) closeAll() {
	for name, bus := range b {
		if err := bus.Close(); err != nil {
			log.Warn().Err(err).Str("bus", name).Msg("failed to close I2C bus")
		}
	}
}

// newTransport creates a transport from a device path
func newTransport(path string, open buses) (pn532.Transport, error) {
	if path == "" {
		return nil, errors.New("empty reader path")
	}

	if strings.Contains(strings.ToLower(path), "i2c") {
		bus, err := open.open(path)
		if err != nil {
			return nil, err
		}
		return i2c.New(bus, path), nil
	}

	transport, err := uart.New(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create UART transport: %w", err)
	}
	return transport, nil
}

func newDisplay(busName string, open buses) (tagstation.Display, error) {
	if busName == "" {
		log.Info().Msg("no display bus given, logging views")
		return &logDisplay{}, nil
	}
	bus, err := open.open(busName)
	if err != nil {
		return nil, err
	}
	return ssd1306.New(bus)
}

func openReader(ctx context.Context, path string, timeout time.Duration, open buses) (*pn532.Device, error) {
	transport, err := newTransport(path, open)
	if err != nil {
		return nil, err
	}

	device, err := pn532.New(transport, pn532.WithTimeout(timeout))
	if err != nil {
		_ = transport.Close()
		return nil, fmt.Errorf("failed to create PN532 device: %w", err)
	}

	if err := device.Init(ctx); err != nil {
		_ = device.Close()
		return nil, fmt.Errorf("failed to initialize PN532: %w", err)
	}
	return device, nil
}

func connectReader(ctx context.Context, cfg *config, open buses) (*pn532.Device, error) {
	var (
		device *pn532.Device
		err    error
	)
	if *cfg.readerPath != "" {
		device, err = openReader(ctx, *cfg.readerPath, *cfg.timeout, open)
	} else {
		device, err = searchReader(ctx, cfg, open)
	}
	if err != nil {
		return nil, err
	}

	if version, err := device.GetFirmwareVersion(ctx); err == nil {
		log.Info().Str("version", version.Version).Uint8("ic", version.IC).
			Str("transport", string(device.Transport().Type())).Msg("PN532 ready")
	}
	return device, nil
}

func searchReader(ctx context.Context, cfg *config, open buses) (*pn532.Device, error) {
	opts := detection.DefaultOptions()
	if *cfg.ignore != "" {
		opts.IgnorePaths = strings.Split(*cfg.ignore, ",")
	}
	ports, err := detection.SerialPorts(opts)
	if err != nil {
		return nil, err
	}
	device, port, err := detection.Probe(ctx, ports, func(ctx context.Context, path string) (*pn532.Device, error) {
		return openReader(ctx, path, *cfg.timeout, open)
	})
	if err != nil {
		return nil, err
	}
	log.Info().Str("port", port.Path).Str("usb", port.VIDPID).Msg("found PN532")
	return device, nil
}

func run() error {
	cfg := parseFlags()
	setupLogging(*cfg.debug)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if _, err := host.Init(); err != nil {
		return fmt.Errorf("failed to initialize periph host: %w", err)
	}
	open := buses{}
	defer open.closeAll()

	device, err := connectReader(ctx, cfg, open)
	if err != nil {
		return err
	}
	defer func() {
		if err := device.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close reader")
		}
	}()

	display, err := newDisplay(*cfg.displayBus, open)
	if err != nil {
		return err
	}

	panel, err := controls.Open(*cfg.clkPin, *cfg.dtPin, *cfg.swPin)
	if err != nil {
		return err
	}
	defer func() {
		if err := panel.Halt(); err != nil {
			log.Warn().Err(err).Msg("failed to release GPIO pins")
		}
	}()

	link := tagstation.InterfaceLink{Name: *cfg.iface}
	station, err := tagstation.New(device, panel, display, tagstation.WithLink(link))
	if err != nil {
		return err
	}
	if err := station.Start(); err != nil {
		return err
	}

	if err := tagstation.WaitForLink(ctx, link, tagstation.DefaultConfig().LinkPollInterval); err != nil {
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	}

	log.Info().Str("server", tagstation.DefaultServerBase).Msg("ready, scan a tag")
	if err := station.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	log.Info().Msg("shutting down")
	return nil
}

func main() {
	if err := run(); err != nil {
		log.Error().Err(err).Msg("tagstation failed")
		os.Exit(1)
	}
}
