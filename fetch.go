// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package fetcher

//go:generate mockgen -destination=internal/mocks/source.go -package=mocks github.com/nixek/fetcher Source

import (
	"context"
	"fmt"
	"io"

	"github.com/opencontainers/go-digest"
)

// Payload is an opened byte stream of a [Source].
type Payload struct {
	// Body is the raw payload. It is closed by [Fetch].
	Body io.ReadCloser

	// ContentType is the declared content type, empty if the source declared none.
	ContentType string

	// Size is the announced size of the payload, -1 if unknown.
	Size int64
}

// Source opens a URL as a sequential byte stream.
type Source interface {
	Open(ctx context.Context, rawURL string) (*Payload, error)
}

// Request describes a single fetch.
type Request struct {
	// URL is the location of the payload.
	URL string

	// Output is a file path if Unpack is false, otherwise a directory path.
	Output string

	// Unpack extracts the payload as archive instead of writing it verbatim.
	Unpack bool
}

// Fetch opens req.URL with s and either writes the payload byte for byte to req.Output
// or extracts it as tar archive into the directory req.Output (see [UnpackArchive]).
// The output is either fully populated or the returned error is not nil. With
// [WithStaging] a failed fetch leaves no output behind.
func Fetch(ctx context.Context, s Source, t Target, req Request, cfg *Config) error {
	if cfg == nil {
		cfg = NewConfig()
	}
	td := &TelemetryData{}
	defer cfg.TelemetryHook()(ctx, td)
	defer captureExtractionDuration(td, now())

	if err := fetch(ctx, s, t, req, cfg, td); err != nil {
		td.LastExtractionError = err
		cfg.Logger().Error("fetch failed", "url", req.URL, "error", err)
		return err
	}
	return nil
}

func fetch(ctx context.Context, s Source, t Target, req Request, cfg *Config, td *TelemetryData) error {
	switch {
	case s == nil:
		return &Error{Kind: ErrConfiguration, Err: fmt.Errorf("no source given")}
	case len(req.URL) == 0:
		return &Error{Kind: ErrConfiguration, Err: fmt.Errorf("no url given")}
	case len(req.Output) == 0:
		return &Error{Kind: ErrConfiguration, Err: fmt.Errorf("no output path given")}
	}
	if t == nil {
		t = NewDisk()
	}

	cfg.Logger().Info("fetch", "url", req.URL, "output", req.Output, "unpack", req.Unpack)
	p, err := s.Open(ctx, req.URL)
	if err != nil {
		return newError(ErrTransfer, req.URL, err)
	}
	body := p.Body
	if cfg.ReadAhead() > 0 {
		body = newReadAheadReader(ctx, body, cfg.ReadAhead())
	}
	defer body.Close()

	td.ContentType = p.ContentType
	if cfg.MaxInputSize() >= 0 && p.Size > cfg.MaxInputSize() {
		return &Error{Kind: ErrTransfer, Path: req.URL, Err: ErrMaxInputSizeExceeded}
	}

	// every byte of the payload passes the limit and the digest
	limited := newLimitErrorReader(body, cfg.MaxInputSize())
	digester := digest.Canonical.Digester()
	in := io.TeeReader(&transferReader{ctx: ctx, r: limited, url: req.URL}, digester.Hash())

	output := req.Output
	var st *staging
	if cfg.Staging() {
		if st, err = newStaging(t, req.Output, req.Unpack, cfg); err != nil {
			return err
		}
		output = st.path
	}

	err = write(ctx, t, output, p.ContentType, in, req.Unpack, cfg, td)
	if err == nil {
		// consume what the archive reader left, so size and digest cover the payload
		if _, cerr := io.Copy(io.Discard, in); cerr != nil {
			err = newError(ErrTransfer, req.URL, cerr)
		}
	}
	td.InputSize = limited.ReadBytes()

	if err != nil {
		if st != nil {
			if derr := st.discard(); derr != nil {
				cfg.Logger().Warn("cannot remove staged output", "path", st.dir, "error", derr)
			}
		}
		return err
	}

	td.Digest = digester.Digest()
	if st != nil {
		if err := st.commit(); err != nil {
			_ = st.discard()
			return err
		}
	}
	cfg.Logger().Info("fetch finished", "output", req.Output, "digest", td.Digest, "size", td.InputSize)
	return nil
}

// write branches to the verbatim writer or the extraction.
func write(ctx context.Context, t Target, output string, contentType string, in io.Reader, unpack bool, cfg *Config, td *TelemetryData) error {
	if !unpack {
		td.ExtractedType = fileExtensionFile
		n, err := WriteFile(ctx, in, output, t, cfg)
		td.ExtractionSize = n
		if err == nil {
			td.ExtractedFiles = 1
		}
		return err
	}
	td.ExtractedType = fileExtensionTar
	return unpackArchive(ctx, t, output, contentType, in, cfg, td)
}

// transferReader tags errors of the payload as [ErrTransfer], so they are not reported
// as extraction or write failures.
type transferReader struct {
	ctx context.Context
	r   io.Reader
	url string
}

func (tr *transferReader) Read(p []byte) (int, error) {
	if err := tr.ctx.Err(); err != nil {
		return 0, &Error{Kind: ErrTransfer, Path: tr.url, Err: err}
	}
	n, err := tr.r.Read(p)
	if err != nil && err != io.EOF {
		return n, newError(ErrTransfer, tr.url, err)
	}
	return n, err
}
