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
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ZaparooProject/go-tagstation/pn532"
	"github.com/rs/zerolog/log"
)

// Station is the control loop. It owns the session and is not safe for
// concurrent use; Step and Run must be called from one goroutine.
type Station struct {
	cfg        *Config
	session    *Session
	encoder    *Encoder
	button     *Button
	inputs     Inputs
	tags       *TagIO
	lookup     *LookupClient
	link       Link
	presenter  *Presenter
	httpClient *http.Client
	now        func() time.Time
}

// New creates a station. The encoder's previous clock level is taken from
// one initial sample of inputs.
func New(reader Transceiver, inputs Inputs, display Display, opts ...Option) (*Station, error) {
	if reader == nil || inputs == nil || display == nil {
		return nil, errors.New("reader, inputs and display are required")
	}

	s := &Station{
		cfg:     DefaultConfig(),
		session: NewSession(),
		inputs:  inputs,
		link:    InterfaceLink{},
		now:     time.Now,
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	if s.httpClient == nil {
		s.httpClient = &http.Client{Timeout: s.cfg.HTTPTimeout}
	}
	lookup, err := NewLookupClient(s.cfg.ServerBase, s.cfg.LookupPath, s.httpClient)
	if err != nil {
		return nil, err
	}

	s.lookup = lookup
	s.tags = NewTagIO(reader, s.cfg.Block, s.cfg.Key)
	s.presenter = NewPresenter(display)
	s.encoder = NewEncoder(inputs.Sample().Clock)
	s.button = NewButton(s.cfg.ButtonThreshold)
	return s, nil
}

// Session returns the station's session
func (s *Station) Session() *Session {
	return s.session
}

// Start renders the current mode's default view
func (s *Station) Start() error {
	if err := s.presenter.ModeView(s.session.Mode, s.session.Counter); err != nil {
		return fmt.Errorf("failed to render initial view: %w", err)
	}
	return nil
}

// Run calls Step until ctx is cancelled. Cancellation is only observed
// between iterations.
func (s *Station) Run(ctx context.Context) error {
	log.Info().Stringer("mode", s.session.Mode).Msg("station running")
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		s.Step(ctx)

		if s.cfg.LoopDelay > 0 {
			timer := time.NewTimer(s.cfg.LoopDelay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}
	}
}

// Step runs one loop iteration: inputs first, then at most one tag cycle.
// Tag and network calls are not cancelled by ctx once started.
func (s *Station) Step(ctx context.Context) {
	ctx = context.WithoutCancel(ctx)

	s.handleInputs(s.inputs.Sample())
	s.handleTag(ctx)
}

func (s *Station) handleInputs(sample InputSample) {
	if dir, ok := s.encoder.Update(sample.Clock, sample.Data); ok && s.session.Mode == ModeWrite {
		s.session.ApplyStep(dir)
		log.Debug().Int("counter", s.session.Counter).Msg("counter changed")
		s.show(s.presenter.Counter(s.session.Counter))
	}

	if s.button.Update(sample.Button, s.now()) {
		mode := s.session.ToggleMode()
		log.Info().Stringer("mode", mode).Msg("mode toggled")
		s.show(s.presenter.ModeView(mode, s.session.Counter))
	}
}

func (s *Station) handleTag(ctx context.Context) {
	tag, err := s.tags.Detect(ctx)
	switch {
	case errors.Is(err, pn532.ErrNoTagDetected):
		s.session.Forget()
		return
	case err != nil:
		log.Warn().Err(err).Msg("tag poll failed")
		return
	}

	if !s.session.ShouldProcess(tag.UID) {
		// Still in the field since it was read and sent
		s.tags.release(ctx, tag)
		return
	}
	s.session.Forget()

	log.Info().Str("uid", tag.UID).Str("type", string(tag.Type)).
		Stringer("mode", s.session.Mode).Msg("new tag detected")

	if s.session.Mode == ModeWrite {
		s.writeCycle(ctx, tag)
		return
	}
	s.readCycle(ctx, tag)
}

func (s *Station) writeCycle(ctx context.Context, tag *pn532.DetectedTag) {
	if err := s.tags.WriteValue(ctx, tag, s.session.Counter); err != nil {
		log.Warn().Err(err).Str("uid", tag.UID).Msg("write cycle aborted")
		return
	}
	log.Info().Str("uid", tag.UID).Int("value", s.session.Counter).Msg("identifier written")
	s.show(s.presenter.Saved())
}

func (s *Station) readCycle(ctx context.Context, tag *pn532.DetectedTag) {
	id, err := s.tags.ReadValue(ctx, tag)
	if err != nil {
		log.Warn().Err(err).Str("uid", tag.UID).Msg("read cycle aborted")
		return
	}
	log.Info().Str("uid", tag.UID).Str("id", id).Msg("identifier read")

	if !s.link.Up() {
		log.Warn().Str("id", id).Msg("network link down, lookup skipped")
		return
	}

	s.show(s.presenter.Sending())

	result, err := s.lookup.Lookup(ctx, id)
	if !result.OK() {
		log.Warn().Err(err).Str("id", id).Msg("lookup failed")
		s.show(s.presenter.HTTPError())
		return
	}
	if err != nil {
		log.Warn().Err(err).Int("status", result.Status).Str("id", id).Msg("lookup response unusable")
	} else {
		log.Info().Int("status", result.Status).Str("id", id).Str("name", *result.Name).Msg("lookup done")
	}

	s.show(s.presenter.Outcome(result.Name))
	s.session.Remember(tag.UID)
}

func (*Station) show(err error) {
	if err != nil {
		log.Error().Err(err).Msg("display update failed")
	}
}
