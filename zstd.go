// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package fetcher

import (
	"io"

	"github.com/klauspost/compress/zstd"
)

const codecNameZstd = "zstd"

var contentTypesZstd = []string{
	"application/zstd",
	"application/x-zstd",
}

var magicBytesZstd = [][]byte{
	{0x28, 0xb5, 0x2f, 0xfd},
}

// decompressZstdStream returns an io.ReadCloser that decompresses src with zstd algorithm.
func decompressZstdStream(src io.Reader) (io.ReadCloser, error) {
	dec, err := zstd.NewReader(src)
	if err != nil {
		return nil, err
	}
	return dec.IOReadCloser(), nil
}
