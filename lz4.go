// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package fetcher

import (
	"io"

	"github.com/pierrec/lz4/v4"
)

const codecNameLZ4 = "lz4"

var contentTypesLZ4 = []string{
	"application/x-lz4",
}

var magicBytesLZ4 = [][]byte{
	{0x04, 0x22, 0x4D, 0x18},
}

// decompressLZ4Stream returns an io.ReadCloser that decompresses src with the lz4 frame format.
func decompressLZ4Stream(src io.Reader) (io.ReadCloser, error) {
	return io.NopCloser(lz4.NewReader(src)), nil
}
