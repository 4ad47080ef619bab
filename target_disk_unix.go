// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

//go:build unix

package fetcher

import (
	"fmt"
	"io/fs"
	"os"
	"time"

	"golang.org/x/sys/unix"
)

// Chown changes the numeric uid and gid of the named file.
func (d *Disk) Chown(name string, uid, gid int) error {
	if err := os.Lchown(name, uid, gid); err != nil {
		return fmt.Errorf("chown failed: %w", err)
	}
	return nil
}

// mknod creates a FIFO, character or block device at path.
func mknod(path string, mode fs.FileMode, major, minor int64) error {
	perm := uint32(mode.Perm())
	switch {
	case mode&fs.ModeNamedPipe != 0:
		if err := unix.Mkfifo(path, perm); err != nil {
			return fmt.Errorf("failed to create fifo: %w", err)
		}
	case mode&fs.ModeCharDevice != 0:
		dev := unix.Mkdev(uint32(major), uint32(minor))
		if err := unix.Mknod(path, unix.S_IFCHR|perm, int(dev)); err != nil {
			return fmt.Errorf("failed to create character device: %w", err)
		}
	case mode&fs.ModeDevice != 0:
		dev := unix.Mkdev(uint32(major), uint32(minor))
		if err := unix.Mknod(path, unix.S_IFBLK|perm, int(dev)); err != nil {
			return fmt.Errorf("failed to create block device: %w", err)
		}
	default:
		return fmt.Errorf("unsupported file type (%s)", mode.Type())
	}
	return nil
}

// lchtimes modifies the access and modified timestamps on a target path
// without following a symlink.
func lchtimes(path string, atime, mtime time.Time) error {
	return unix.Lutimes(path, []unix.Timeval{
		unixTimeval(atime),
		unixTimeval(mtime),
	})
}

// unixTimeval converts a time.Time to a unix.Timeval. Note that it always rounds
// up to the nearest microsecond, so even one nanosecond past the previous nanosecond
// will be rounded up to the next microsecond.
// See the implementation of unix.NsecToTimeval for details on how this happens.
func unixTimeval(t time.Time) unix.Timeval {
	return unix.NsecToTimeval(t.UnixNano())
}

// canMaintainSymlinkTimestamps determines whether is is possible to change
// timestamps on symlinks for the the current platform.
const canMaintainSymlinkTimestamps = true
