// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package fetcher

import (
	"archive/tar"
	"io"
	"io/fs"
	"time"
)

// fileExtensionTar is the archive type reported in telemetry
const fileExtensionTar = "tar"

// offsetTar is the offset where the magic bytes are located in the file
const offsetTar = 257

// magicBytesTar are the magic bytes for tar files
var magicBytesTar = [][]byte{
	[]byte("ustar\x00tar\x00"),
	[]byte("ustar\x00"),
	[]byte("ustar  \x00"),
}

// isTar checks if the header matches the magic bytes for tar files
func isTar(data []byte) bool {
	return matchesMagicBytes(data, offsetTar, magicBytesTar)
}

// tarWalker is a walker for tar files
type tarWalker struct {
	tr *tar.Reader
}

// newTarWalker returns a walker over the tar stream in src
func newTarWalker(src io.Reader) *tarWalker {
	return &tarWalker{tr: tar.NewReader(src)}
}

// Type returns the archive type
func (t *tarWalker) Type() string {
	return fileExtensionTar
}

// Next returns the next entry in the tar archive
func (t *tarWalker) Next() (archiveEntry, error) {
	hdr, err := t.tr.Next()
	if err != nil {
		return nil, err
	}
	return &tarEntry{hdr, t.tr}, nil
}

// tarEntry is an entry in a tar archive
type tarEntry struct {
	hdr *tar.Header
	tr  *tar.Reader
}

// AccessTime returns the access time of the entry, falling back to the modification time
func (t *tarEntry) AccessTime() time.Time {
	if t.hdr.AccessTime.IsZero() {
		return t.hdr.ModTime
	}
	return t.hdr.AccessTime
}

// Devmajor returns the major device number
func (t *tarEntry) Devmajor() int64 {
	return t.hdr.Devmajor
}

// Devminor returns the minor device number
func (t *tarEntry) Devminor() int64 {
	return t.hdr.Devminor
}

// Gid returns the group id of the entry
func (t *tarEntry) Gid() int {
	return t.hdr.Gid
}

// Kind returns the classification of the entry
func (t *tarEntry) Kind() EntryType {
	switch t.hdr.Typeflag {
	case tar.TypeReg, tar.TypeCont, tar.TypeGNUSparse:
		return EntryRegular
	case tar.TypeDir:
		return EntryDirectory
	default:
		return EntryOther
	}
}

// IsSymlink returns true if the entry is a symlink
func (t *tarEntry) IsSymlink() bool {
	return t.hdr.Typeflag == tar.TypeSymlink
}

// IsHardlink returns true if the entry is a hard link
func (t *tarEntry) IsHardlink() bool {
	return t.hdr.Typeflag == tar.TypeLink
}

// IsIgnored returns true for entries that carry archive metadata only, e.g. the
// `pax_global_header` written by git archive.
func (t *tarEntry) IsIgnored() bool {
	return t.hdr.Typeflag == tar.TypeXGlobalHeader
}

// Linkname returns the linkname of the entry
func (t *tarEntry) Linkname() string {
	return t.hdr.Linkname
}

// Mode returns the mode of the entry
func (t *tarEntry) Mode() fs.FileMode {
	return t.hdr.FileInfo().Mode()
}

// ModTime returns the modification time of the entry
func (t *tarEntry) ModTime() time.Time {
	return t.hdr.ModTime
}

// Name returns the name of the entry
func (t *tarEntry) Name() string {
	return t.hdr.Name
}

// Open returns a reader for the entry
func (t *tarEntry) Open() (io.ReadCloser, error) {
	return io.NopCloser(t.tr), nil
}

// Size returns the size of the entry
func (t *tarEntry) Size() int64 {
	return t.hdr.Size
}

// Uid returns the user id of the entry
func (t *tarEntry) Uid() int {
	return t.hdr.Uid
}
