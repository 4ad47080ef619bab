// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package fetcher

import (
	"io"

	"github.com/klauspost/compress/gzip"
)

// codecNameGZip is the name of the gzip codec.
const codecNameGZip = "gzip"

// contentTypesGZip are the declared content types of gzip compressed tarballs.
var contentTypesGZip = []string{
	"application/x-gzip",
	"application/gzip",
	"application/x-gtar",
	"application/x-tgz",
}

// magicBytesGZip are the magic bytes for gzip compressed files.
var magicBytesGZip = [][]byte{
	{0x1f, 0x8b},
}

// decompressGZipStream returns an io.ReadCloser that decompresses src with gzip algorithm.
// Only the first gzip member is read; bytes after it are left unread.
func decompressGZipStream(src io.Reader) (io.ReadCloser, error) {
	zr, err := gzip.NewReader(src)
	if err != nil {
		return nil, err
	}
	zr.Multistream(false)
	return zr, nil
}
