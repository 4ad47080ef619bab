// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package fetcher

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"
)

// Disk is the struct type that holds all information for interacting with the filesystem
type Disk struct{}

// NewDisk creates a new Disk target
func NewDisk() *Disk {
	return &Disk{}
}

// CreateDir creates a directory at the specified path with the specified mode. If the directory
// already exists, nothing is done.
func (d *Disk) CreateDir(path string, mode fs.FileMode) error {
	if err := os.MkdirAll(path, mode.Perm()); err != nil {
		return fmt.Errorf("failed to create directory (%w)", err)
	}
	return nil
}

// CreateFile creates a file at the specified path with src as content.
// The mode parameter is the file mode that should be set on the file. If the file already exists and
// overwrite is false, an error is returned. An existing file or symlink is removed before the file is
// created, so a symlink is never followed. If maxSize < 0, the file size is not limited.
func (d *Disk) CreateFile(path string, src io.Reader, mode fs.FileMode, overwrite bool, maxSize int64) (int64, error) {
	if err := prepareOverwrite(path, overwrite); err != nil {
		return 0, err
	}

	// create dst file
	dstFile, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, mode.Perm())
	if err != nil {
		return 0, fmt.Errorf("failed to create file: %w", err)
	}

	// write data to file
	writer := limitWriter(dstFile, maxSize)
	n, err := io.Copy(writer, src)
	if err != nil {
		dstFile.Close()
		return n, fmt.Errorf("failed to write file: %w", err)
	}

	if err := dstFile.Close(); err != nil {
		return n, fmt.Errorf("failed to close file: %w", err)
	}
	return n, nil
}

// CreateSymlink creates a symbolic link from newname to oldname. If
// newname already exists and overwrite is false, an error is returned.
func (d *Disk) CreateSymlink(oldname string, newname string, overwrite bool) error {
	if err := prepareOverwrite(newname, overwrite); err != nil {
		return err
	}
	if err := os.Symlink(oldname, newname); err != nil {
		return fmt.Errorf("failed to create symlink: %w", err)
	}
	return nil
}

// CreateHardlink creates newname as a hard link to oldname. If
// newname already exists and overwrite is false, an error is returned.
func (d *Disk) CreateHardlink(oldname string, newname string, overwrite bool) error {
	if err := prepareOverwrite(newname, overwrite); err != nil {
		return err
	}
	if err := os.Link(oldname, newname); err != nil {
		return fmt.Errorf("failed to create hard link: %w", err)
	}
	return nil
}

// CreateNode creates a FIFO or a device node at path.
func (d *Disk) CreateNode(path string, mode fs.FileMode, major, minor int64, overwrite bool) error {
	if err := prepareOverwrite(path, overwrite); err != nil {
		return err
	}
	return mknod(path, mode, major, minor)
}

// Lstat returns the FileInfo structure describing the named file.
// If there is an error, it will be of type *PathError.
func (d *Disk) Lstat(name string) (fs.FileInfo, error) {
	return os.Lstat(name)
}

// Chmod changes the mode of the named file to mode.
func (d *Disk) Chmod(name string, mode fs.FileMode) error {
	return os.Chmod(name, mode)
}

// Chtimes changes the access and modification times of the named file.
func (d *Disk) Chtimes(name string, atime, mtime time.Time) error {
	return os.Chtimes(name, atime, mtime)
}

// Lchtimes changes the access and modification times of the named file.
// It is a no-op on platforms that cannot change symlink timestamps.
func (d *Disk) Lchtimes(name string, atime, mtime time.Time) error {
	if canMaintainSymlinkTimestamps {
		return lchtimes(name, atime, mtime)
	}
	return nil
}

// Rename renames oldpath to newpath.
func (d *Disk) Rename(oldpath, newpath string) error {
	return os.Rename(oldpath, newpath)
}

// RemoveAll removes path and any children it contains.
func (d *Disk) RemoveAll(path string) error {
	return os.RemoveAll(path)
}

// prepareOverwrite checks if something exists at path and removes it if overwrite is
// enabled. Directories are never removed.
func prepareOverwrite(path string, overwrite bool) error {
	stat, err := os.Lstat(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("invalid path: %w", err)
	}
	if !overwrite {
		return fmt.Errorf("file already exists")
	}
	if stat.IsDir() {
		return fmt.Errorf("cannot overwrite directory")
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("failed to overwrite file: %w", err)
	}
	return nil
}
