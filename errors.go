// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package fetcher

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by [Fetch] and [Unpack] matches exactly one of them
// with [errors.Is].
var (
	// ErrConfiguration is returned when a required input is missing or malformed.
	ErrConfiguration = errors.New("configuration error")

	// ErrTransfer is returned when the Source failed or answered with a non-success status.
	ErrTransfer = errors.New("transfer failed")

	// ErrUnsupportedFormat is returned when the declared content type has no codec.
	ErrUnsupportedFormat = errors.New("unsupported format")

	// ErrDirectoryCreation is returned when a directory could not be created.
	ErrDirectoryCreation = errors.New("directory creation failed")

	// ErrExtraction is returned when an archive entry could not be placed.
	ErrExtraction = errors.New("extraction failed")

	// ErrWrite is returned when the verbatim payload could not be written.
	ErrWrite = errors.New("write failed")
)

// Limit errors. They are wrapped into one of the kinds above.
var (
	// ErrMaxFilesExceeded indicates that the maximum number of entries is exceeded.
	ErrMaxFilesExceeded = errors.New("maximum entries exceeded")

	// ErrMaxExtractionSizeExceeded indicates that the maximum size of extracted content is exceeded.
	ErrMaxExtractionSizeExceeded = errors.New("maximum extraction size exceeded")

	// ErrMaxInputSizeExceeded indicates that the maximum input size is exceeded.
	ErrMaxInputSizeExceeded = errors.New("maximum input size exceeded")
)

// Error is the tagged error type of the fetcher. It carries the error kind, the path the
// failure relates to (archive entry, output path, URL or content type) and the cause.
type Error struct {
	// Kind is one of the Err* kind sentinels.
	Kind error

	// Path is the subject of the failure, may be empty.
	Path string

	// Err is the underlying cause, may be nil.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	switch {
	case e.Path != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Path, e.Err)
	case e.Path != "":
		return fmt.Sprintf("%s: %s", e.Kind, e.Path)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	default:
		return e.Kind.Error()
	}
}

// Unwrap returns the kind and the cause, so that [errors.Is] matches both.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// newError creates a tagged error. If err already is an *Error, it is returned as is, so
// the innermost classification wins.
func newError(kind error, path string, err error) error {
	var fe *Error
	if errors.As(err, &fe) {
		return err
	}
	return &Error{Kind: kind, Path: path, Err: err}
}
