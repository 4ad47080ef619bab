// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package fetcher

import (
	"io"

	"github.com/andybalholm/brotli"
)

const codecNameBrotli = "brotli"

// brotli streams have no magic bytes, so they are only selected by content type.
var contentTypesBrotli = []string{
	"application/x-brotli",
}

// decompressBrotliStream returns an io.ReadCloser that decompresses src with brotli algorithm.
func decompressBrotliStream(src io.Reader) (io.ReadCloser, error) {
	return io.NopCloser(brotli.NewReader(src)), nil
}
