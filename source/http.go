// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package source

import (
	"context"
	"fmt"
	"io"
	nethttp "net/http"

	"github.com/nixek/fetcher"
)

// HTTP opens http and https URLs with a single GET request.
type HTTP struct {
	client    *nethttp.Client
	headers   nethttp.Header
	userAgent string
}

// Option configures an [HTTP] source.
type Option func(*HTTP)

// WithClient sets the HTTP client used for requests.
func WithClient(client *nethttp.Client) Option {
	return func(h *HTTP) {
		h.client = client
	}
}

// WithHeader sets a single header on each request.
func WithHeader(key, value string) Option {
	return func(h *HTTP) {
		if h.headers == nil {
			h.headers = make(nethttp.Header)
		}
		h.headers.Set(key, value)
	}
}

// WithUserAgent sets the User-Agent header of each request.
func WithUserAgent(ua string) Option {
	return func(h *HTTP) {
		h.userAgent = ua
	}
}

// NewHTTP creates an [HTTP] source.
func NewHTTP(opts ...Option) *HTTP {
	h := &HTTP{client: nethttp.DefaultClient}
	for _, opt := range opts {
		opt(h)
	}
	if h.client == nil {
		h.client = nethttp.DefaultClient
	}
	return h
}

// Open sends a GET request for rawURL. The payload is neither decoded by the transport
// nor inspected; the Content-Type header is passed on as declared. A response status
// other than 2xx is reported as [fetcher.ErrTransfer].
func (h *HTTP) Open(ctx context.Context, rawURL string) (*fetcher.Payload, error) {
	req, err := nethttp.NewRequestWithContext(ctx, nethttp.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &fetcher.Error{Kind: fetcher.ErrConfiguration, Path: rawURL, Err: err}
	}
	for key, values := range h.headers {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}
	if h.userAgent != "" {
		req.Header.Set("User-Agent", h.userAgent)
	}
	// the payload must reach the codec selector as served
	req.Header.Set("Accept-Encoding", "identity")

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, &fetcher.Error{Kind: fetcher.ErrTransfer, Path: rawURL, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		_ = resp.Body.Close()
		return nil, &fetcher.Error{Kind: fetcher.ErrTransfer, Path: rawURL, Err: fmt.Errorf("unexpected status: %s", resp.Status)}
	}

	return &fetcher.Payload{
		Body:        resp.Body,
		ContentType: resp.Header.Get("Content-Type"),
		Size:        resp.ContentLength,
	}, nil
}
