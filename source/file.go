// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package source

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/nixek/fetcher"
)

// File opens file URLs from the local filesystem. It never declares a content type.
type File struct{}

// NewFile creates a [File] source.
func NewFile() *File {
	return &File{}
}

// Open opens the file rawURL points to. Only local paths are accepted, a host other
// than "localhost" is a [fetcher.ErrConfiguration].
func (f *File) Open(ctx context.Context, rawURL string) (*fetcher.Payload, error) {
	if err := ctx.Err(); err != nil {
		return nil, &fetcher.Error{Kind: fetcher.ErrTransfer, Path: rawURL, Err: err}
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, &fetcher.Error{Kind: fetcher.ErrConfiguration, Path: rawURL, Err: err}
	}
	if u.Scheme != "file" {
		return nil, &fetcher.Error{Kind: fetcher.ErrConfiguration, Path: rawURL, Err: fmt.Errorf("not a file url")}
	}
	if u.Host != "" && u.Host != "localhost" {
		return nil, &fetcher.Error{Kind: fetcher.ErrConfiguration, Path: rawURL, Err: fmt.Errorf("remote host %q not supported", u.Host)}
	}
	if u.Path == "" {
		return nil, &fetcher.Error{Kind: fetcher.ErrConfiguration, Path: rawURL, Err: fmt.Errorf("no path given")}
	}

	fh, err := os.Open(filepath.FromSlash(u.Path))
	if err != nil {
		return nil, &fetcher.Error{Kind: fetcher.ErrTransfer, Path: rawURL, Err: err}
	}
	stat, err := fh.Stat()
	if err != nil {
		fh.Close()
		return nil, &fetcher.Error{Kind: fetcher.ErrTransfer, Path: rawURL, Err: err}
	}
	if stat.IsDir() {
		fh.Close()
		return nil, &fetcher.Error{Kind: fetcher.ErrTransfer, Path: rawURL, Err: fmt.Errorf("is a directory")}
	}

	return &fetcher.Payload{Body: fh, Size: stat.Size()}, nil
}
