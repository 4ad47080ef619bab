// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package fetcher

import (
	"fmt"
	"io"
	"slices"
)

// codecNameNone is the name of the identity codec.
const codecNameNone = "none"

// decompressionFunc wraps a compressed stream into a decompressing one.
type decompressionFunc func(io.Reader) (io.ReadCloser, error)

// codec describes a decompression transform and how it is selected.
type codec struct {
	Name         string
	ContentTypes []string
	MagicBytes   [][]byte
	Decompress   decompressionFunc

	// Extended codecs are only selected if [Config.ExtendedCodecs] is enabled.
	Extended bool
}

// contentTypesTar are the declared content types of uncompressed tarballs. The empty
// string stands for a source that did not declare a content type.
var contentTypesTar = []string{
	"application/tar",
	"application/x-tar",
	"",
}

// identityCodec passes the stream through unchanged.
var identityCodec = codec{
	Name:         codecNameNone,
	ContentTypes: contentTypesTar,
	Decompress: func(src io.Reader) (io.ReadCloser, error) {
		return io.NopCloser(src), nil
	},
}

// availableCodecs is the ordered collection of decompression codecs.
var availableCodecs = []codec{
	{
		Name:         codecNameGZip,
		ContentTypes: contentTypesGZip,
		MagicBytes:   magicBytesGZip,
		Decompress:   decompressGZipStream,
	},
	{
		Name:         codecNameZstd,
		ContentTypes: contentTypesZstd,
		MagicBytes:   magicBytesZstd,
		Decompress:   decompressZstdStream,
		Extended:     true,
	},
	{
		Name:         codecNameXz,
		ContentTypes: contentTypesXz,
		MagicBytes:   magicBytesXz,
		Decompress:   decompressXzStream,
		Extended:     true,
	},
	{
		Name:         codecNameBzip2,
		ContentTypes: contentTypesBzip2,
		MagicBytes:   magicBytesBzip2,
		Decompress:   decompressBzip2Stream,
		Extended:     true,
	},
	{
		Name:         codecNameLZ4,
		ContentTypes: contentTypesLZ4,
		MagicBytes:   magicBytesLZ4,
		Decompress:   decompressLZ4Stream,
		Extended:     true,
	},
	{
		Name:         codecNameBrotli,
		ContentTypes: contentTypesBrotli,
		Decompress:   decompressBrotliStream,
		Extended:     true,
	},
	{
		Name:         codecNameSnappy,
		ContentTypes: contentTypesSnappy,
		MagicBytes:   magicBytesSnappy,
		Decompress:   decompressSnappyStream,
		Extended:     true,
	},
	{
		Name:         codecNameZlib,
		ContentTypes: contentTypesZlib,
		MagicBytes:   magicBytesZlib,
		Decompress:   decompressZlibStream,
		Extended:     true,
	},
}

// maxHeaderLength is the number of bytes needed to sniff any codec or a tar header.
var maxHeaderLength int

// init calculates the maximum header length
func init() {
	for _, mb := range magicBytesTar {
		if needs := offsetTar + len(mb); needs > maxHeaderLength {
			maxHeaderLength = needs
		}
	}
	for _, c := range availableCodecs {
		for _, mb := range c.MagicBytes {
			if len(mb) > maxHeaderLength {
				maxHeaderLength = len(mb)
			}
		}
	}
}

// enabledCodecs returns the codecs usable with cfg.
func enabledCodecs(cfg *Config) []codec {
	codecs := make([]codec, 0, len(availableCodecs))
	for _, c := range availableCodecs {
		if c.Extended && !cfg.ExtendedCodecs() {
			continue
		}
		codecs = append(codecs, c)
	}
	return codecs
}

// selectCodec returns the codec for the declared contentType. The match is exact and
// case-sensitive. An unknown content type results in an [ErrUnsupportedFormat] error.
func selectCodec(contentType string, cfg *Config) (codec, error) {
	if slices.Contains(identityCodec.ContentTypes, contentType) {
		return identityCodec, nil
	}
	for _, c := range enabledCodecs(cfg) {
		if slices.Contains(c.ContentTypes, contentType) {
			return c, nil
		}
	}
	return codec{}, &Error{
		Kind: ErrUnsupportedFormat,
		Path: contentType,
		Err:  fmt.Errorf("no codec for content type %q", contentType),
	}
}

// sniffCodec selects the codec by the magic bytes in header. Plain tar and unknown
// headers select the identity codec.
func sniffCodec(header []byte, cfg *Config) codec {
	for _, c := range enabledCodecs(cfg) {
		if matchesMagicBytes(header, 0, c.MagicBytes) {
			return c
		}
	}
	return identityCodec
}

// Decompress selects a codec from the declared contentType and wraps src with it. The
// returned name identifies the selected codec. The caller must close the returned reader,
// which does not close src.
//
// If the content type is empty and [Config.SniffContentType] is enabled, the codec is
// chosen by the magic bytes of the payload instead.
func Decompress(contentType string, src io.Reader, cfg *Config) (io.ReadCloser, string, error) {
	if cfg == nil {
		cfg = NewConfig()
	}

	var (
		selected codec
		err      error
	)
	if contentType == "" && cfg.SniffContentType() {
		hr, err := newHeaderReader(src, maxHeaderLength)
		if err != nil {
			return nil, "", newError(ErrTransfer, "", err)
		}
		src = hr
		selected = sniffCodec(hr.PeekHeader(), cfg)
		cfg.Logger().Debug("sniffed codec", "codec", selected.Name)
		if selected.Name == codecNameNone && !isTar(hr.PeekHeader()) {
			cfg.Logger().Warn("payload is neither compressed nor a tar archive")
		}
	} else if selected, err = selectCodec(contentType, cfg); err != nil {
		return nil, "", err
	}

	rc, err := selected.Decompress(src)
	if err != nil {
		return nil, "", newError(ErrExtraction, selected.Name, fmt.Errorf("cannot start decompression: %w", err))
	}
	return rc, selected.Name, nil
}
