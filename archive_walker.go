// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package fetcher

import (
	"io"
	"io/fs"
	"time"
)

// EntryType classifies an archive entry for the extraction.
type EntryType int

const (
	// EntryOther is any entry that is neither a regular file nor a directory,
	// e.g. symlinks, hard links, FIFOs and devices.
	EntryOther EntryType = iota

	// EntryRegular is a regular file with content.
	EntryRegular

	// EntryDirectory is a directory.
	EntryDirectory
)

// String returns the name of the entry type.
func (e EntryType) String() string {
	switch e {
	case EntryRegular:
		return "file"
	case EntryDirectory:
		return "directory"
	default:
		return "other"
	}
}

// archiveWalker is a forward-only iterator over the entries of an archive.
// Next returns io.EOF after the last entry.
type archiveWalker interface {
	Type() string
	Next() (archiveEntry, error)
}

// archiveEntry is an interface that represents a single entry in an archive.
// The content returned by Open is only valid until the next call of Next.
type archiveEntry interface {
	AccessTime() time.Time
	Devmajor() int64
	Devminor() int64
	Gid() int
	Kind() EntryType
	IsSymlink() bool
	IsHardlink() bool
	IsIgnored() bool
	Linkname() string
	Mode() fs.FileMode
	ModTime() time.Time
	Name() string
	Open() (io.ReadCloser, error)
	Size() int64
	Uid() int
}
