// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package fetcher

import (
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"time"

	securejoin "github.com/cyphar/filepath-securejoin"
)

// Target specifies all function that are needed to be implemented to place the payload
// and the contents of an archive.
type Target interface {
	// CreateFile creates a file at the specified path with src as content. The mode parameter is the file mode that
	// should be set on the file. If the file already exists and overwrite is false, an error should be returned. An
	// existing symlink at path is replaced, never followed. The size of the file should not exceed maxSize. The number
	// of bytes written is returned, also along with an error. If maxSize < 0, the file size is not limited.
	CreateFile(path string, src io.Reader, mode fs.FileMode, overwrite bool, maxSize int64) (int64, error)

	// CreateDir creates the directory at path and all missing ancestors with the specified mode. If the directory
	// already exists, nothing is done.
	CreateDir(path string, mode fs.FileMode) error

	// CreateSymlink creates a symbolic link from newname to oldname. If newname already exists and overwrite is false,
	// the function returns an error.
	CreateSymlink(oldname string, newname string, overwrite bool) error

	// CreateHardlink creates newname as a hard link to the oldname file. If newname already exists and overwrite
	// is false, the function returns an error.
	CreateHardlink(oldname string, newname string, overwrite bool) error

	// CreateNode creates a FIFO or device node. The type is taken from mode, major and minor are only used
	// for devices.
	CreateNode(path string, mode fs.FileMode, major, minor int64, overwrite bool) error

	// Lstat see docs for os.Lstat.
	Lstat(path string) (fs.FileInfo, error)

	// Chmod see docs for os.Chmod.
	Chmod(name string, mode fs.FileMode) error

	// Chtimes see docs for os.Chtimes.
	Chtimes(name string, atime, mtime time.Time) error

	// Lchtimes changes the times of a symlink itself instead of its target.
	Lchtimes(name string, atime, mtime time.Time) error

	// Chown changes the numeric uid and gid of the named file without following symlinks.
	Chown(name string, uid, gid int) error

	// Rename see docs for os.Rename.
	Rename(oldpath, newpath string) error

	// RemoveAll see docs for os.RemoveAll.
	RemoveAll(path string) error
}

// securePath joins the relative, slash separated path rel to root. Symlinks in the
// parent directories are resolved as if root was the filesystem root, so the result
// never escapes root. The final element is not resolved, so an existing symlink at
// that location can be replaced instead of followed.
func securePath(root string, rel string) (string, error) {
	native := filepath.FromSlash(rel)
	if !filepath.IsLocal(native) {
		return "", fmt.Errorf("path traversal detected: %s", rel)
	}

	dir, err := securejoin.SecureJoin(root, filepath.Dir(native))
	if err != nil {
		return "", fmt.Errorf("cannot resolve %s: %w", rel, err)
	}
	p := filepath.Join(dir, filepath.Base(native))

	return p, checkWithinRoot(root, p)
}

// secureDirPath joins rel to root like securePath, but also resolves the final element,
// because directories are entered and their metadata is changed through the path.
func secureDirPath(root string, rel string) (string, error) {
	native := filepath.FromSlash(rel)
	if !filepath.IsLocal(native) {
		return "", fmt.Errorf("path traversal detected: %s", rel)
	}

	p, err := securejoin.SecureJoin(root, native)
	if err != nil {
		return "", fmt.Errorf("cannot resolve %s: %w", rel, err)
	}

	return p, checkWithinRoot(root, p)
}

// checkWithinRoot returns an error if p does not lie underneath root.
func checkWithinRoot(root string, p string) error {
	r, err := filepath.Rel(root, p)
	if err != nil {
		return fmt.Errorf("failed to get relative path: %w", err)
	}
	if r == "." || !filepath.IsLocal(r) {
		return fmt.Errorf("path traversal detected: %s", p)
	}
	return nil
}
