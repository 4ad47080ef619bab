// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package source_test

import (
	"context"
	"errors"
	"io"
	nethttp "net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nixek/fetcher"
	"github.com/nixek/fetcher/source"
)

func TestHTTPOpen(t *testing.T) {
	data := []byte("payload bytes")
	var got nethttp.Header
	server := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		got = r.Header.Clone()
		w.Header().Set("Content-Type", "application/x-gzip")
		_, _ = w.Write(data)
	}))
	t.Cleanup(server.Close)

	src := source.NewHTTP(
		source.WithHeader("X-Token", "secret"),
		source.WithUserAgent("fetcher-test/1.0"),
	)
	p, err := src.Open(context.Background(), server.URL+"/archive.tar.gz")
	require.NoError(t, err)
	defer p.Body.Close()

	body, err := io.ReadAll(p.Body)
	require.NoError(t, err)
	assert.Equal(t, data, body)
	assert.Equal(t, "application/x-gzip", p.ContentType)
	assert.Equal(t, int64(len(data)), p.Size)

	assert.Equal(t, "secret", got.Get("X-Token"))
	assert.Equal(t, "fetcher-test/1.0", got.Get("User-Agent"))
	assert.Equal(t, "identity", got.Get("Accept-Encoding"))
}

func TestHTTPOpenContentTypeVerbatim(t *testing.T) {
	server := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		w.Header().Set("Content-Type", "application/gzip; charset=binary")
		_, _ = w.Write([]byte("x"))
	}))
	t.Cleanup(server.Close)

	p, err := source.NewHTTP().Open(context.Background(), server.URL)
	require.NoError(t, err)
	defer p.Body.Close()
	assert.Equal(t, "application/gzip; charset=binary", p.ContentType)
}

func TestHTTPOpenNoContentType(t *testing.T) {
	server := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		// suppress content sniffing of the server
		w.Header()["Content-Type"] = nil
		_, _ = w.Write([]byte("plain"))
	}))
	t.Cleanup(server.Close)

	p, err := source.NewHTTP().Open(context.Background(), server.URL)
	require.NoError(t, err)
	defer p.Body.Close()
	assert.Empty(t, p.ContentType)
}

func TestHTTPOpenStatus(t *testing.T) {
	tests := []struct {
		name   string
		status int
	}{
		{name: "not found", status: nethttp.StatusNotFound},
		{name: "server error", status: nethttp.StatusInternalServerError},
		{name: "forbidden", status: nethttp.StatusForbidden},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
				nethttp.Error(w, "nope", tc.status)
			}))
			t.Cleanup(server.Close)

			_, err := source.NewHTTP().Open(context.Background(), server.URL)
			require.Error(t, err)
			assert.True(t, errors.Is(err, fetcher.ErrTransfer), "got %v", err)
			assert.Contains(t, err.Error(), nethttp.StatusText(tc.status))
		})
	}
}

func TestHTTPOpenUnreachable(t *testing.T) {
	server := httptest.NewServer(nethttp.NotFoundHandler())
	url := server.URL
	server.Close()

	_, err := source.NewHTTP().Open(context.Background(), url)
	require.Error(t, err)
	assert.ErrorIs(t, err, fetcher.ErrTransfer)
}

func TestHTTPOpenMalformedURL(t *testing.T) {
	_, err := source.NewHTTP().Open(context.Background(), "http://[::1")
	require.Error(t, err)
	assert.ErrorIs(t, err, fetcher.ErrConfiguration)
}

func TestHTTPWithClient(t *testing.T) {
	server := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		_, _ = w.Write([]byte("ok"))
	}))
	t.Cleanup(server.Close)

	p, err := source.NewHTTP(source.WithClient(server.Client())).Open(context.Background(), server.URL)
	require.NoError(t, err)
	defer p.Body.Close()
	body, err := io.ReadAll(p.Body)
	require.NoError(t, err)
	assert.Equal(t, "ok", string(body))

	// a nil client falls back to the default client
	p, err = source.NewHTTP(source.WithClient(nil)).Open(context.Background(), server.URL)
	require.NoError(t, err)
	p.Body.Close()
}
