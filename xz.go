// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package fetcher

import (
	"io"

	"github.com/ulikunitz/xz"
)

const codecNameXz = "xz"

var contentTypesXz = []string{
	"application/x-xz",
}

var magicBytesXz = [][]byte{
	{0xFD, 0x37, 0x7A, 0x58, 0x5A, 0x00},
}

// decompressXzStream returns an io.ReadCloser that decompresses src with xz algorithm.
func decompressXzStream(src io.Reader) (io.ReadCloser, error) {
	r, err := xz.NewReader(src)
	if err != nil {
		return nil, err
	}
	return io.NopCloser(r), nil
}
