// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package fetcher

import (
	"compress/bzip2"
	"io"
)

const codecNameBzip2 = "bzip2"

var contentTypesBzip2 = []string{
	"application/x-bzip2",
}

var magicBytesBzip2 = [][]byte{
	[]byte("BZh1"),
	[]byte("BZh2"),
	[]byte("BZh3"),
	[]byte("BZh4"),
	[]byte("BZh5"),
	[]byte("BZh6"),
	[]byte("BZh7"),
	[]byte("BZh8"),
	[]byte("BZh9"),
}

// decompressBzip2Stream returns an io.ReadCloser that decompresses src with bzip2 algorithm.
func decompressBzip2Stream(src io.Reader) (io.ReadCloser, error) {
	return io.NopCloser(bzip2.NewReader(src)), nil
}
