// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package fetcher

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
)

// fileExtensionFile is the output type reported in telemetry for verbatim writes
const fileExtensionFile = "file"

// WriteFile copies src byte for byte to the file dst and returns the number of bytes
// written. Missing parent directories are created if [Config.CreateDestination] is
// enabled. Every failure is reported as [ErrWrite].
func WriteFile(ctx context.Context, src io.Reader, dst string, t Target, cfg *Config) (int64, error) {
	if cfg == nil {
		cfg = NewConfig()
	}
	if len(dst) == 0 {
		return 0, &Error{Kind: ErrConfiguration, Err: fmt.Errorf("no output path given")}
	}

	if cfg.CreateDestination() {
		if err := t.CreateDir(filepath.Dir(dst), cfg.CustomCreateDirMode()); err != nil {
			return 0, &Error{Kind: ErrWrite, Path: dst, Err: err}
		}
	}

	n, err := t.CreateFile(dst, &contextReader{ctx: ctx, r: src}, cfg.CustomWriteFileMode(), cfg.Overwrite(), cfg.MaxExtractionSize())
	if err != nil {
		return n, newError(ErrWrite, dst, err)
	}
	cfg.Logger().Info("wrote file", "path", dst, "size", n)
	return n, nil
}

// contextReader stops reading once ctx is done.
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
