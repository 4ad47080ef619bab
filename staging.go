// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package fetcher

import (
	"fmt"
	"os"
	"path/filepath"
)

// staging is an output written next to its final path and renamed onto it after success.
type staging struct {
	t      Target
	dir    string // staging directory
	output string // final output path
	path   string // path the fetch writes to
}

// newStaging creates a staging directory next to output. If unpack is true, the
// archive is extracted into the staging directory itself, otherwise the payload is
// written to a file inside of it.
func newStaging(t Target, output string, unpack bool, cfg *Config) (*staging, error) {
	abs, err := filepath.Abs(output)
	if err != nil {
		return nil, &Error{Kind: ErrConfiguration, Path: output, Err: err}
	}
	if _, err := t.Lstat(abs); err == nil {
		return nil, &Error{Kind: ErrConfiguration, Path: output, Err: fmt.Errorf("output already exists")}
	}

	parent := filepath.Dir(abs)
	if cfg.CreateDestination() {
		if err := t.CreateDir(parent, cfg.CustomCreateDirMode()); err != nil {
			return nil, &Error{Kind: ErrDirectoryCreation, Path: parent, Err: err}
		}
	}

	dir, err := os.MkdirTemp(parent, fmt.Sprintf(".%s.staging-*", filepath.Base(abs)))
	if err != nil {
		return nil, &Error{Kind: ErrDirectoryCreation, Path: parent, Err: err}
	}

	s := &staging{t: t, dir: dir, output: abs, path: dir}
	if unpack {
		// MkdirTemp creates 0700, the staged root becomes the output directory
		if err := t.Chmod(dir, cfg.CustomCreateDirMode()); err != nil {
			_ = s.discard()
			return nil, &Error{Kind: ErrDirectoryCreation, Path: dir, Err: err}
		}
	} else {
		s.path = filepath.Join(dir, filepath.Base(abs))
	}
	cfg.Logger().Debug("staging output", "staging", s.path, "output", abs)
	return s, nil
}

// commit renames the staged output onto the final path and removes the staging directory.
func (s *staging) commit() error {
	if err := s.t.Rename(s.path, s.output); err != nil {
		return &Error{Kind: ErrWrite, Path: s.output, Err: fmt.Errorf("cannot move staged output: %w", err)}
	}
	if s.path != s.dir {
		return s.t.RemoveAll(s.dir)
	}
	return nil
}

// discard removes everything that was staged.
func (s *staging) discard() error {
	return s.t.RemoveAll(s.dir)
}
