// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package fetcher_test

import (
	"archive/tar"
	"bytes"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"testing"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/dsnet/compress/bzip2"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/snappy"
	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/ulikunitz/xz"
)

// isWindows is true if the tests run on windows
var isWindows = runtime.GOOS == "windows"

// baseTime is the modification time of all generated entries
var baseTime = time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)

// archiveContent describes a single tar entry
type archiveContent struct {
	Name     string
	Content  []byte
	Linkname string
	Mode     fs.FileMode
	Typeflag byte
	ModTime  time.Time
}

// file is a regular file entry with 0644 permissions
func file(name, content string) archiveContent {
	return archiveContent{Name: name, Content: []byte(content), Mode: 0644, Typeflag: tar.TypeReg}
}

// dir is a directory entry with 0755 permissions
func dir(name string) archiveContent {
	return archiveContent{Name: name, Mode: 0755, Typeflag: tar.TypeDir}
}

// symlink is a symlink entry pointing to target
func symlink(name, target string) archiveContent {
	return archiveContent{Name: name, Linkname: target, Mode: 0777, Typeflag: tar.TypeSymlink}
}

// packTar creates an uncompressed tar archive from contents, in the given order.
func packTar(t testing.TB, contents []archiveContent) []byte {
	t.Helper()
	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)
	for _, c := range contents {
		if c.Typeflag == tar.TypeXGlobalHeader {
			hdr := &tar.Header{Typeflag: tar.TypeXGlobalHeader, Name: c.Name, PAXRecords: map[string]string{"comment": "global"}}
			if err := tw.WriteHeader(hdr); err != nil {
				t.Fatalf("error writing global header: %v", err)
			}
			continue
		}
		modTime := c.ModTime
		if modTime.IsZero() {
			modTime = baseTime
		}
		hdr := &tar.Header{
			Name:     c.Name,
			Linkname: c.Linkname,
			Mode:     int64(c.Mode.Perm()),
			Typeflag: c.Typeflag,
			ModTime:  modTime,
			Size:     int64(len(c.Content)),
			Format:   tar.FormatPAX,
		}
		if c.Typeflag != tar.TypeReg {
			hdr.Size = 0
		}
		if err := tw.WriteHeader(hdr); err != nil {
			t.Fatalf("error writing tar header %s: %v", c.Name, err)
		}
		if hdr.Size > 0 {
			if _, err := tw.Write(c.Content); err != nil {
				t.Fatalf("error writing tar content %s: %v", c.Name, err)
			}
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatalf("error closing tar writer: %v", err)
	}
	return buf.Bytes()
}

// compressor wraps w into a compressing writer
type compressor func(w io.Writer) (io.WriteCloser, error)

var (
	compressGzip = func(w io.Writer) (io.WriteCloser, error) { return gzip.NewWriter(w), nil }
	compressZstd = func(w io.Writer) (io.WriteCloser, error) { return zstd.NewWriter(w) }
	compressXz   = func(w io.Writer) (io.WriteCloser, error) { return xz.NewWriter(w) }
	compressLZ4  = func(w io.Writer) (io.WriteCloser, error) { return lz4.NewWriter(w), nil }
	compressBr   = func(w io.Writer) (io.WriteCloser, error) { return brotli.NewWriter(w), nil }
	compressSnpy = func(w io.Writer) (io.WriteCloser, error) { return snappy.NewBufferedWriter(w), nil }
	compressZlib = func(w io.Writer) (io.WriteCloser, error) { return zlib.NewWriter(w), nil }
	compressBz2  = func(w io.Writer) (io.WriteCloser, error) {
		return bzip2.NewWriter(w, &bzip2.WriterConfig{Level: bzip2.DefaultCompression})
	}
)

// compress compresses data with c.
func compress(t testing.TB, c compressor, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w, err := c(&buf)
	if err != nil {
		t.Fatalf("error creating compressor: %v", err)
	}
	if _, err := w.Write(data); err != nil {
		t.Fatalf("error compressing: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("error closing compressor: %v", err)
	}
	return buf.Bytes()
}

// scenarioArchive is the two file archive with a top-level directory
func scenarioArchive() []archiveContent {
	return []archiveContent{
		dir("pkg-1.0/"),
		file("pkg-1.0/README.md", "# pkg\n"),
		dir("pkg-1.0/src/"),
		file("pkg-1.0/src/main.x", "main = 1\n"),
	}
}

// treeEntry is a single filesystem object below a root
type treeEntry struct {
	Path    string
	Mode    fs.FileMode
	Content string
	ModTime time.Time
}

// readTree lists everything below root, sorted by path. The root itself is not listed.
func readTree(t testing.TB, root string) []treeEntry {
	t.Helper()
	var entries []treeEntry
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == root {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		info, err := os.Lstat(path)
		if err != nil {
			return err
		}
		e := treeEntry{Path: filepath.ToSlash(rel), Mode: info.Mode()}
		switch {
		case info.Mode().IsRegular():
			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			e.Content = string(data)
			e.ModTime = info.ModTime()
		case info.Mode()&fs.ModeSymlink != 0:
			target, err := os.Readlink(path)
			if err != nil {
				return err
			}
			e.Content = target
		default:
			e.ModTime = info.ModTime()
		}
		entries = append(entries, e)
		return nil
	})
	if err != nil {
		t.Fatalf("error reading tree %s: %v", root, err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Path < entries[j].Path })
	return entries
}

// treeNames returns the paths of readTree.
func treeNames(t testing.TB, root string) []string {
	t.Helper()
	var names []string
	for _, e := range readTree(t, root) {
		names = append(names, e.Path)
	}
	return names
}
