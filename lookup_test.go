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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLookupClient(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		base    string
		wantURL string
		wantErr bool
	}{
		{name: "Host_And_Port", base: "http://192.168.1.10:5000", wantURL: "http://192.168.1.10:5000/getclothes?id=42"},
		{name: "Trailing_Slash", base: "http://example.com/", wantURL: "http://example.com/getclothes?id=42"},
		{name: "Base_Path", base: "http://example.com/api", wantURL: "http://example.com/api/getclothes?id=42"},
		{name: "No_Scheme", base: "192.168.1.10", wantErr: true},
		{name: "Empty", base: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c, err := NewLookupClient(tt.base, "/getclothes", testHTTPClient())
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantURL, c.URL("42"))
		})
	}
}

func TestLookupClient_Lookup(t *testing.T) {
	t.Parallel()

	tests := []struct {
		wantErr    error
		wantName   *string
		name       string
		body       string
		status     int
		wantStatus int
	}{
		{
			name:       "Name_Found",
			status:     http.StatusOK,
			body:       `[{"name":"Blue Jacket","id":42}]`,
			wantStatus: http.StatusOK,
			wantName:   ptr("Blue Jacket"),
		},
		{
			name:       "First_Element_Only",
			status:     http.StatusOK,
			body:       `[{"name":"Scarf"},{"name":"Hat"}]`,
			wantStatus: http.StatusOK,
			wantName:   ptr("Scarf"),
		},
		{
			name:       "Empty_Array",
			status:     http.StatusOK,
			body:       `[]`,
			wantStatus: http.StatusOK,
			wantErr:    ErrMalformedResponse,
		},
		{
			name:       "Missing_Name",
			status:     http.StatusOK,
			body:       `[{"id":42}]`,
			wantStatus: http.StatusOK,
			wantErr:    ErrMalformedResponse,
		},
		{
			name:       "Name_Not_String",
			status:     http.StatusOK,
			body:       `[{"name":7}]`,
			wantStatus: http.StatusOK,
			wantErr:    ErrMalformedResponse,
		},
		{
			name:       "Invalid_JSON",
			status:     http.StatusOK,
			body:       `[{"name":`,
			wantStatus: http.StatusOK,
			wantErr:    ErrMalformedResponse,
		},
		{
			name:       "Server_Error_Still_Parsed",
			status:     http.StatusInternalServerError,
			body:       `[{"name":"Coat"}]`,
			wantStatus: http.StatusInternalServerError,
			wantName:   ptr("Coat"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodGet, r.Method)
				assert.Equal(t, "/getclothes", r.URL.Path)
				assert.Equal(t, "42", r.URL.Query().Get("id"))
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			c, err := NewLookupClient(server.URL, "/getclothes", testHTTPClient())
			require.NoError(t, err)

			result, err := c.Lookup(context.Background(), "42")
			assert.Equal(t, tt.wantStatus, result.Status)
			assert.True(t, result.OK())
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, result.Name)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, result.Name)
			assert.Equal(t, *tt.wantName, *result.Name)
		})
	}
}

func TestLookupClient_TransportFailure(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	c, err := NewLookupClient(url, "/getclothes", testHTTPClient())
	require.NoError(t, err)

	result, err := c.Lookup(context.Background(), "42")
	require.ErrorIs(t, err, ErrLookupFailed)
	assert.Equal(t, StatusTransportFailure, result.Status)
	assert.False(t, result.OK())
	assert.Nil(t, result.Name)
}

func TestLookupClient_Timeout(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	client := testHTTPClient()
	client.Timeout = 50 * time.Millisecond
	c, err := NewLookupClient(server.URL, "/getclothes", client)
	require.NoError(t, err)

	result, err := c.Lookup(context.Background(), "42")
	require.ErrorIs(t, err, ErrLookupFailed)
	assert.Equal(t, StatusTransportFailure, result.Status)
}

type funcLink func() bool

func (f funcLink) Up() bool { return f() }

func TestWaitForLink(t *testing.T) {
	t.Parallel()

	t.Run("Comes_Up", func(t *testing.T) {
		t.Parallel()
		checks := 0
		link := funcLink(func() bool {
			checks++
			return checks >= 3
		})
		require.NoError(t, WaitForLink(context.Background(), link, time.Millisecond))
		assert.Equal(t, 3, checks)
	})

	t.Run("Already_Up", func(t *testing.T) {
		t.Parallel()
		require.NoError(t, WaitForLink(context.Background(), funcLink(func() bool { return true }), time.Hour))
	})

	t.Run("Cancelled", func(t *testing.T) {
		t.Parallel()
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		err := WaitForLink(ctx, funcLink(func() bool { return false }), time.Millisecond)
		require.ErrorIs(t, err, context.DeadlineExceeded)
	})
}

func TestInterfaceLink_Unknown(t *testing.T) {
	t.Parallel()
	assert.False(t, InterfaceLink{Name: "does-not-exist0"}.Up())
}

func ptr[T any](v T) *T {
	return &v
}
