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
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/tidwall/gjson"
)

// StatusTransportFailure is the LookupResult status when no HTTP response arrived
const StatusTransportFailure = -1

const maxResponseSize = 64 << 10

// LookupResult is the outcome of one lookup. Name is nil when the
// response carried no usable name.
type LookupResult struct {
	Name   *string
	Status int
}

// OK reports whether an HTTP response was received, whatever its code
func (r LookupResult) OK() bool {
	return r.Status > 0
}

// LookupClient resolves identifiers to item names over HTTP
type LookupClient struct {
	client   *http.Client
	endpoint *url.URL
}

// NewLookupClient creates a client for <base><path>?id=<identifier>
func NewLookupClient(base, path string, client *http.Client) (*LookupClient, error) {
	endpoint, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("invalid server base %q: %w", base, err)
	}
	if endpoint.Scheme == "" || endpoint.Host == "" {
		return nil, fmt.Errorf("invalid server base %q: scheme and host required", base)
	}
	return &LookupClient{
		client:   client,
		endpoint: endpoint.JoinPath(path),
	}, nil
}

// URL returns the request URL for id
func (c *LookupClient) URL(id string) string {
	u := *c.endpoint
	q := u.Query()
	q.Set("id", id)
	u.RawQuery = q.Encode()
	return u.String()
}

// Lookup issues GET for id and extracts the name of the first element of
// the returned JSON array. A transport failure yields status -1 and the
// body is never parsed. A response without a string name yields
// ErrMalformedResponse alongside the status.
func (c *LookupClient) Lookup(ctx context.Context, id string) (LookupResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL(id), http.NoBody)
	if err != nil {
		return LookupResult{Status: StatusTransportFailure}, fmt.Errorf("%w: %w", ErrLookupFailed, err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return LookupResult{Status: StatusTransportFailure}, fmt.Errorf("%w: %w", ErrLookupFailed, err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			log.Debug().Err(closeErr).Msg("failed to close lookup response body")
		}
	}()

	result := LookupResult{Status: resp.StatusCode}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return result, fmt.Errorf("%w: reading body: %w", ErrMalformedResponse, err)
	}
	log.Debug().Int("status", resp.StatusCode).Bytes("body", body).Msg("lookup response")

	if !gjson.ValidBytes(body) {
		return result, fmt.Errorf("%w: body is not JSON", ErrMalformedResponse)
	}
	name := gjson.GetBytes(body, "0.name")
	if name.Type != gjson.String {
		return result, fmt.Errorf("%w: no string name in first element", ErrMalformedResponse)
	}

	value := name.String()
	result.Name = &value
	return result, nil
}

// Link reports whether the network is usable
type Link interface {
	Up() bool
}

// InterfaceLink checks a network interface for an up state and an address.
// An empty Name accepts any non-loopback interface.
type InterfaceLink struct {
	Name string
}

// Up reports whether the interface is up and has an address
func (l InterfaceLink) Up() bool {
	if l.Name != "" {
		iface, err := net.InterfaceByName(l.Name)
		if err != nil {
			return false
		}
		return interfaceUsable(iface)
	}

	ifaces, err := net.Interfaces()
	if err != nil {
		return false
	}
	for i := range ifaces {
		if ifaces[i].Flags&net.FlagLoopback == 0 && interfaceUsable(&ifaces[i]) {
			return true
		}
	}
	return false
}

func interfaceUsable(iface *net.Interface) bool {
	if iface.Flags&net.FlagUp == 0 {
		return false
	}
	addrs, err := iface.Addrs()
	return err == nil && len(addrs) > 0
}

// WaitForLink blocks until link is up, checking every interval
func WaitForLink(ctx context.Context, link Link, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for attempt := 1; !link.Up(); attempt++ {
		if attempt == 1 {
			log.Info().Msg("waiting for network link")
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("waiting for network link: %w", ctx.Err())
		case <-ticker.C:
		}
	}
	log.Info().Msg("network link up")
	return nil
}
