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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPresenter_Views(t *testing.T) {
	t.Parallel()

	tests := []struct {
		render func(*Presenter) error
		name   string
		want   []string
	}{
		{name: "Idle", render: (*Presenter).Idle, want: []string{"Scan RFID Card to", "get started!"}},
		{name: "Counter", render: func(p *Presenter) error { return p.Counter(-3) }, want: []string{"ID to write:", "-3"}},
		{name: "Saved", render: (*Presenter).Saved, want: []string{"ID Saved!"}},
		{name: "Sending", render: (*Presenter).Sending, want: []string{"Sending request..."}},
		{
			name:   "Outcome",
			render: func(p *Presenter) error { return p.Outcome(ptr("Blue Jacket")) },
			want:   []string{"ID Sent!", "Name: Blue Jacket"},
		},
		{
			name:   "Outcome_Without_Name",
			render: func(p *Presenter) error { return p.Outcome(nil) },
			want:   []string{"ID Sent!", "Name: ?"},
		},
		{name: "HTTP_Error", render: (*Presenter).HTTPError, want: []string{"HTTP Error!"}},
		{
			name:   "Write_Mode_View",
			render: func(p *Presenter) error { return p.ModeView(ModeWrite, 5) },
			want:   []string{"ID to write:", "5"},
		},
		{
			name:   "Read_Mode_View",
			render: func(p *Presenter) error { return p.ModeView(ModeReadAndSend, 5) },
			want:   []string{"Scan RFID Card to", "get started!"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			display := &recordingDisplay{}
			require.NoError(t, tt.render(NewPresenter(display)))
			assert.Equal(t, 1, display.clears)
			require.Len(t, display.frames, 1)
			assert.Equal(t, tt.want, display.last())
		})
	}
}

// Every view is a full redraw; nothing from the previous frame survives
func TestPresenter_FullRedraw(t *testing.T) {
	t.Parallel()

	display := &recordingDisplay{}
	p := NewPresenter(display)
	require.NoError(t, p.Idle())
	require.NoError(t, p.Saved())
	assert.Equal(t, 2, display.clears)
	assert.Equal(t, []string{"ID Saved!"}, display.last())
}

func TestPresenter_FlushError(t *testing.T) {
	t.Parallel()

	display := &recordingDisplay{flushErr: errors.New("i2c: nack")}
	require.Error(t, NewPresenter(display).Idle())
}
