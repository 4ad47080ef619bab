// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package fetcher

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// Unpack reads the uncompressed tar stream from src and extracts it to dst.
//
// Every entry path is passed through [NormalizePath] with [Config.StripComponents].
// Entries that normalize to nothing or contain a parent directory reference are
// skipped. Files, symlinks and other entries are written immediately; the metadata of
// directory entries is applied after the last entry, in the order the directories
// appeared in the archive.
func Unpack(ctx context.Context, src io.Reader, dst string, t Target, cfg *Config) error {
	if cfg == nil {
		cfg = NewConfig()
	}
	td := &TelemetryData{ExtractedType: fileExtensionTar}
	defer cfg.TelemetryHook()(ctx, td)
	defer captureExtractionDuration(td, now())

	if err := unpack(ctx, t, dst, newTarWalker(src), cfg, td); err != nil {
		td.LastExtractionError = err
		return err
	}
	return nil
}

// UnpackArchive selects the codec for contentType (see [Decompress]) and extracts the
// decompressed tar stream from src to dst (see [Unpack]).
func UnpackArchive(ctx context.Context, contentType string, src io.Reader, dst string, t Target, cfg *Config) error {
	if cfg == nil {
		cfg = NewConfig()
	}
	td := &TelemetryData{ExtractedType: fileExtensionTar, ContentType: contentType}
	defer cfg.TelemetryHook()(ctx, td)
	defer captureExtractionDuration(td, now())

	if err := unpackArchive(ctx, t, dst, contentType, src, cfg, td); err != nil {
		td.LastExtractionError = err
		return err
	}
	return nil
}

// unpackArchive decompresses src according to contentType and extracts the archive.
// After the archive is extracted, the rest of the decompressed stream is consumed, so
// that codec checksums are verified.
func unpackArchive(ctx context.Context, t Target, dst string, contentType string, src io.Reader, cfg *Config, td *TelemetryData) error {
	decompressed, codecName, err := Decompress(contentType, src, cfg)
	if err != nil {
		return err
	}
	defer decompressed.Close()
	td.Codec = codecName
	cfg.Logger().Debug("selected codec", "content-type", contentType, "codec", codecName)

	if err := unpack(ctx, t, dst, newTarWalker(decompressed), cfg, td); err != nil {
		return err
	}

	if _, err := io.Copy(io.Discard, decompressed); err != nil {
		return newError(ErrExtraction, "", fmt.Errorf("cannot read archive trailer: %w", err))
	}
	return nil
}

// deferredDir is a directory entry whose metadata is applied after all entries are placed.
type deferredDir struct {
	entry archiveEntry
	path  string
}

// pendingDirs is the ordered collection of deferred directories of one extraction pass.
type pendingDirs struct {
	dirs  []deferredDir
	index map[string]int
}

// add records the directory at path. A directory seen again keeps its first position
// but takes the metadata of the latest entry.
func (p *pendingDirs) add(ae archiveEntry, path string) {
	if p.index == nil {
		p.index = make(map[string]int)
	}
	if i, ok := p.index[path]; ok {
		p.dirs[i].entry = ae
		return
	}
	p.index[path] = len(p.dirs)
	p.dirs = append(p.dirs, deferredDir{entry: ae, path: path})
}

// unpack checks ctx for cancellation, while it reads the entries from src and extracts them to dst.
func unpack(ctx context.Context, t Target, dst string, src archiveWalker, cfg *Config, td *TelemetryData) error {
	root, err := prepareDestination(t, dst, cfg)
	if err != nil {
		return err
	}

	cfg.Logger().Info("start extraction", "type", src.Type(), "destination", root, "strip", cfg.StripComponents())

	x := &extraction{
		t:    t,
		root: root,
		cfg:  cfg,
		td:   td,
	}

	for {
		// check if context is canceled
		if err := ctx.Err(); err != nil {
			return newError(ErrExtraction, "", err)
		}

		ae, err := src.Next()
		switch {

		// if no more entries are found, apply the deferred directory metadata
		case err == io.EOF:
			return x.finish()

		case err != nil:
			return newError(ErrExtraction, "", fmt.Errorf("error reading archive: %w", err))
		}

		if err := x.entry(ae); err != nil {
			return err
		}
	}
}

// prepareDestination creates dst if needed and returns it canonicalized.
func prepareDestination(t Target, dst string, cfg *Config) (string, error) {
	if len(dst) == 0 {
		return "", &Error{Kind: ErrConfiguration, Err: fmt.Errorf("no destination given")}
	}

	abs, err := filepath.Abs(dst)
	if err != nil {
		return "", &Error{Kind: ErrDirectoryCreation, Path: dst, Err: err}
	}

	if _, err := t.Lstat(abs); os.IsNotExist(err) {
		if !cfg.CreateDestination() {
			return "", &Error{Kind: ErrDirectoryCreation, Path: dst, Err: fmt.Errorf("destination does not exist")}
		}
		if err := t.CreateDir(abs, cfg.CustomCreateDirMode()); err != nil {
			return "", &Error{Kind: ErrDirectoryCreation, Path: dst, Err: err}
		}
		cfg.Logger().Info("created destination directory", "path", abs)
	}

	root, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", &Error{Kind: ErrDirectoryCreation, Path: dst, Err: err}
	}
	stat, err := t.Lstat(root)
	if err != nil {
		return "", &Error{Kind: ErrDirectoryCreation, Path: dst, Err: err}
	}
	if !stat.IsDir() {
		return "", &Error{Kind: ErrDirectoryCreation, Path: dst, Err: fmt.Errorf("destination is not a directory")}
	}
	return root, nil
}

// extraction holds the state of a single extraction pass.
type extraction struct {
	t    Target
	root string
	cfg  *Config
	td   *TelemetryData

	pending        pendingDirs
	objectCounter  int64
	extractedBytes int64
}

// entry places a single archive entry.
func (x *extraction) entry(ae archiveEntry) error {
	// tar specific: global pax headers carry no file
	if ae.IsIgnored() {
		x.cfg.Logger().Debug("skip archive metadata", "name", ae.Name())
		return nil
	}

	rel, ok := NormalizePath(ae.Name(), x.cfg.StripComponents())
	if !ok {
		x.cfg.Logger().Debug("skip entry", "name", ae.Name())
		x.td.SkippedEntries++
		return nil
	}

	x.objectCounter++
	if err := x.cfg.CheckMaxFiles(x.objectCounter); err != nil {
		return &Error{Kind: ErrExtraction, Path: ae.Name(), Err: err}
	}

	x.cfg.Logger().Debug("extract", "name", ae.Name(), "path", rel, "kind", ae.Kind())
	switch ae.Kind() {
	case EntryDirectory:
		return x.directory(ae, rel)
	case EntryRegular:
		return x.file(ae, rel)
	default:
		return x.other(ae, rel)
	}
}

// directory creates the directory and defers its metadata.
func (x *extraction) directory(ae archiveEntry, rel string) error {
	path, err := secureDirPath(x.root, rel)
	if err != nil {
		return &Error{Kind: ErrExtraction, Path: ae.Name(), Err: err}
	}
	if err := x.t.CreateDir(path, x.cfg.CustomCreateDirMode()); err != nil {
		return &Error{Kind: ErrDirectoryCreation, Path: ae.Name(), Err: err}
	}
	x.pending.add(ae, path)
	x.td.ExtractedDirs++
	return nil
}

// file writes a regular file together with its metadata.
func (x *extraction) file(ae archiveEntry, rel string) error {
	path, err := x.placePath(ae, rel)
	if err != nil {
		return err
	}

	if err := x.cfg.CheckExtractionSize(x.extractedBytes + ae.Size()); err != nil {
		return &Error{Kind: ErrExtraction, Path: ae.Name(), Err: err}
	}
	remaining := int64(-1)
	if x.cfg.MaxExtractionSize() >= 0 {
		remaining = x.cfg.MaxExtractionSize() - x.extractedBytes
	}

	fin, err := ae.Open()
	if err != nil {
		return &Error{Kind: ErrExtraction, Path: ae.Name(), Err: fmt.Errorf("failed to open file: %w", err)}
	}
	defer fin.Close()

	n, err := x.t.CreateFile(path, fin, ae.Mode(), x.cfg.Overwrite(), remaining)
	x.extractedBytes += n
	x.td.ExtractionSize = x.extractedBytes
	if err != nil {
		return newError(ErrExtraction, ae.Name(), err)
	}

	if err := applyMetadata(x.t, path, ae, x.cfg); err != nil {
		return &Error{Kind: ErrExtraction, Path: ae.Name(), Err: err}
	}
	x.td.ExtractedFiles++
	return nil
}

// other places symlinks, hard links, FIFOs and devices.
func (x *extraction) other(ae archiveEntry, rel string) error {
	path, err := x.placePath(ae, rel)
	if err != nil {
		return err
	}

	switch {
	case ae.IsSymlink():
		if x.cfg.DenySymlinkExtraction() {
			return &Error{Kind: ErrExtraction, Path: ae.Name(), Err: fmt.Errorf("symlinks are not allowed")}
		}
		if err := x.t.CreateSymlink(ae.Linkname(), path, x.cfg.Overwrite()); err != nil {
			return &Error{Kind: ErrExtraction, Path: ae.Name(), Err: err}
		}
		if !x.cfg.DropFileAttributes() {
			if err := x.t.Lchtimes(path, ae.AccessTime(), ae.ModTime()); err != nil {
				return &Error{Kind: ErrExtraction, Path: ae.Name(), Err: err}
			}
		}
		x.td.ExtractedSymlinks++
		return nil

	case ae.IsHardlink():
		linkRel, ok := NormalizePath(ae.Linkname(), x.cfg.StripComponents())
		if !ok {
			return &Error{Kind: ErrExtraction, Path: ae.Name(), Err: fmt.Errorf("hard link target outside destination: %s", ae.Linkname())}
		}
		oldname, err := secureDirPath(x.root, linkRel)
		if err != nil {
			return &Error{Kind: ErrExtraction, Path: ae.Name(), Err: err}
		}
		if err := x.t.CreateHardlink(oldname, path, x.cfg.Overwrite()); err != nil {
			return &Error{Kind: ErrExtraction, Path: ae.Name(), Err: err}
		}
		x.td.ExtractedOthers++
		return nil

	case ae.Mode()&(fs.ModeNamedPipe|fs.ModeDevice) != 0:
		if err := x.t.CreateNode(path, ae.Mode(), ae.Devmajor(), ae.Devminor(), x.cfg.Overwrite()); err != nil {
			return &Error{Kind: ErrExtraction, Path: ae.Name(), Err: err}
		}
		if err := applyMetadata(x.t, path, ae, x.cfg); err != nil {
			return &Error{Kind: ErrExtraction, Path: ae.Name(), Err: err}
		}
		x.td.ExtractedOthers++
		return nil

	default:
		return &Error{Kind: ErrExtraction, Path: ae.Name(), Err: fmt.Errorf("unsupported entry type (%s)", ae.Mode().Type())}
	}
}

// placePath resolves rel under the root and creates its parent directories.
func (x *extraction) placePath(ae archiveEntry, rel string) (string, error) {
	path, err := securePath(x.root, rel)
	if err != nil {
		return "", &Error{Kind: ErrExtraction, Path: ae.Name(), Err: err}
	}
	if err := x.t.CreateDir(filepath.Dir(path), x.cfg.CustomCreateDirMode()); err != nil {
		return "", &Error{Kind: ErrDirectoryCreation, Path: ae.Name(), Err: err}
	}
	return path, nil
}

// finish applies the metadata of all deferred directories in the order they were
// encountered.
func (x *extraction) finish() error {
	for _, d := range x.pending.dirs {
		if err := applyMetadata(x.t, d.path, d.entry, x.cfg); err != nil {
			return &Error{Kind: ErrExtraction, Path: d.entry.Name(), Err: fmt.Errorf("cannot apply directory metadata: %w", err)}
		}
	}
	x.cfg.Logger().Info("extraction finished",
		"dirs", x.td.ExtractedDirs,
		"files", x.td.ExtractedFiles,
		"symlinks", x.td.ExtractedSymlinks,
		"skipped", x.td.SkippedEntries,
	)
	return nil
}

// applyMetadata sets owner, permissions and timestamps of path from ae. The owner is
// set first, since changing it clears the setuid and setgid bits.
func applyMetadata(t Target, path string, ae archiveEntry, cfg *Config) error {
	if cfg.DropFileAttributes() {
		return nil
	}

	mode := ae.Mode().Perm()
	if cfg.PreserveOwner() {
		if err := t.Chown(path, ae.Uid(), ae.Gid()); err != nil {
			return fmt.Errorf("failed to change owner: %w", err)
		}
		mode |= ae.Mode() & (fs.ModeSetuid | fs.ModeSetgid | fs.ModeSticky)
	}

	if err := t.Chmod(path, mode); err != nil {
		return fmt.Errorf("failed to change permissions: %w", err)
	}
	if err := t.Chtimes(path, ae.AccessTime(), ae.ModTime()); err != nil {
		return fmt.Errorf("failed to change times: %w", err)
	}
	return nil
}
