// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package fetcher

import (
	"io"

	"github.com/klauspost/compress/snappy"
)

const codecNameSnappy = "snappy"

var contentTypesSnappy = []string{
	"application/x-snappy-framed",
}

var magicBytesSnappy = [][]byte{
	append([]byte{0xff, 0x06, 0x00, 0x00}, []byte("sNaPpY")...),
}

// decompressSnappyStream returns an io.ReadCloser that decompresses the snappy framing format.
func decompressSnappyStream(src io.Reader) (io.ReadCloser, error) {
	return io.NopCloser(snappy.NewReader(src)), nil
}
