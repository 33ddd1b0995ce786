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
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	testutil "github.com/ZaparooProject/go-tagstation/internal/testing"
	"github.com/ZaparooProject/go-tagstation/pn532"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/gpio"
)

// idleSample is the resting state: clock low, button released
var idleSample = InputSample{Clock: gpio.Low, Data: gpio.Low, Button: gpio.High}

// scriptedInputs returns queued samples, then idleSample forever
type scriptedInputs struct {
	samples []InputSample
}

func (s *scriptedInputs) Sample() InputSample {
	if len(s.samples) == 0 {
		return idleSample
	}
	next := s.samples[0]
	s.samples = s.samples[1:]
	return next
}

func (s *scriptedInputs) push(samples ...InputSample) {
	s.samples = append(s.samples, samples...)
}

// recordingDisplay keeps every flushed frame as its list of lines
type recordingDisplay struct {
	flushErr error
	current  []string
	frames   [][]string
	clears   int
}

func (d *recordingDisplay) Clear() {
	d.clears++
	d.current = nil
}

func (d *recordingDisplay) DrawText(_, _ int, text string) {
	d.current = append(d.current, text)
}

func (d *recordingDisplay) Flush() error {
	d.frames = append(d.frames, d.current)
	return d.flushErr
}

func (d *recordingDisplay) last() []string {
	if len(d.frames) == 0 {
		return nil
	}
	return d.frames[len(d.frames)-1]
}

type fakeClock struct {
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) advance(d time.Duration) {
	c.now = c.now.Add(d)
}

type stubLink struct {
	down atomic.Bool
}

func (l *stubLink) Up() bool {
	return !l.down.Load()
}

// lookupServer answers every request with body and records the ids asked for
type lookupServer struct {
	*httptest.Server
	ids  []string
	body string
	mu   sync.Mutex
}

func newLookupServer(t *testing.T, body string) *lookupServer {
	t.Helper()

	ls := &lookupServer{body: body}
	ls.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ls.mu.Lock()
		ls.ids = append(ls.ids, r.URL.Query().Get("id"))
		ls.mu.Unlock()

		if r.URL.Path != "/getclothes" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(ls.body))
	}))
	t.Cleanup(ls.Close)
	return ls
}

func (ls *lookupServer) requests() []string {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	return append([]string(nil), ls.ids...)
}

// testHTTPClient does not keep idle connections so no goroutines outlive a test
func testHTTPClient() *http.Client {
	return &http.Client{
		Timeout:   5 * time.Second,
		Transport: &http.Transport{DisableKeepAlives: true},
	}
}

type harness struct {
	station *Station
	sim     *testutil.Simulator
	mock    *pn532.MockTransport
	inputs  *scriptedInputs
	display *recordingDisplay
	clock   *fakeClock
	link    *stubLink
	server  *lookupServer
}

func newHarness(t *testing.T, body string) *harness {
	t.Helper()

	sim := testutil.NewSimulator()
	mock := pn532.NewMockTransport()
	mock.SetHandler(sim.Exchange)
	device, err := pn532.New(mock)
	require.NoError(t, err)

	h := &harness{
		sim:     sim,
		mock:    mock,
		inputs:  &scriptedInputs{},
		display: &recordingDisplay{},
		clock:   newFakeClock(),
		link:    &stubLink{},
		server:  newLookupServer(t, body),
	}

	cfg := DefaultConfig()
	cfg.ServerBase = h.server.URL
	cfg.LoopDelay = 0

	h.station, err = New(device, h.inputs, h.display,
		WithConfig(cfg),
		WithClock(h.clock.Now),
		WithHTTPClient(testHTTPClient()),
		WithLink(h.link),
	)
	require.NoError(t, err)
	require.NoError(t, h.station.Start())
	return h
}

// step runs one iteration and moves the clock past the button threshold
func (h *harness) step(t *testing.T, samples ...InputSample) {
	t.Helper()
	for _, sample := range samples {
		h.inputs.push(sample)
		h.station.Step(context.Background())
		h.clock.advance(10 * time.Millisecond)
	}
	if len(samples) == 0 {
		h.station.Step(context.Background())
		h.clock.advance(10 * time.Millisecond)
	}
}

// press toggles the mode once: one asserted sample, then release well past the threshold
func (h *harness) press(t *testing.T) {
	t.Helper()
	h.clock.advance(100 * time.Millisecond)
	h.step(t, InputSample{Clock: gpio.Low, Data: gpio.Low, Button: gpio.Low}, idleSample)
}

// turn applies n detents; positive is clockwise
func (h *harness) turn(t *testing.T, n int) {
	t.Helper()
	data := gpio.High
	if n < 0 {
		data = gpio.Low
		n = -n
	}
	for i := 0; i < n; i++ {
		h.step(t, InputSample{Clock: gpio.High, Data: data, Button: gpio.High}, idleSample)
	}
}
