// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package source

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/nixek/fetcher"
)

// Mux dispatches URLs to the [fetcher.Source] registered for their scheme.
type Mux struct {
	mu      sync.RWMutex
	sources map[string]fetcher.Source
}

// NewMux creates an empty [Mux].
func NewMux() *Mux {
	return &Mux{sources: map[string]fetcher.Source{}}
}

// Default returns a [Mux] with http and https served by an [HTTP] source created with
// opts, and file served by a [File] source.
func Default(opts ...Option) *Mux {
	m := NewMux()
	m.Register(NewHTTP(opts...), "http", "https")
	m.Register(NewFile(), "file")
	return m
}

// Register serves scheme and schemes by s. Registering a scheme twice panics.
func (m *Mux) Register(s fetcher.Source, scheme string, schemes ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, sc := range append(schemes, scheme) {
		sc = strings.ToLower(sc)
		if _, ok := m.sources[sc]; ok {
			panic("attempt to reregister scheme: " + sc)
		}
		m.sources[sc] = s
	}
}

// Open opens rawURL with the source registered for its scheme. A malformed URL or an
// unknown scheme is a [fetcher.ErrConfiguration].
func (m *Mux) Open(ctx context.Context, rawURL string) (*fetcher.Payload, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, &fetcher.Error{Kind: fetcher.ErrConfiguration, Path: rawURL, Err: err}
	}

	m.mu.RLock()
	s, ok := m.sources[strings.ToLower(u.Scheme)]
	m.mu.RUnlock()
	if !ok {
		return nil, &fetcher.Error{Kind: fetcher.ErrConfiguration, Path: rawURL, Err: fmt.Errorf("no source registered for scheme %q", u.Scheme)}
	}
	return s.Open(ctx, rawURL)
}
