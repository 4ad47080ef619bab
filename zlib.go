// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package fetcher

import (
	"io"

	"github.com/klauspost/compress/zlib"
)

const codecNameZlib = "zlib"

var contentTypesZlib = []string{
	"application/zlib",
}

var magicBytesZlib = [][]byte{
	{0x78, 0x01},
	{0x78, 0x5e},
	{0x78, 0x9c},
	{0x78, 0xda},
}

// decompressZlibStream returns an io.ReadCloser that decompresses src with zlib algorithm.
func decompressZlibStream(src io.Reader) (io.ReadCloser, error) {
	return zlib.NewReader(src)
}
