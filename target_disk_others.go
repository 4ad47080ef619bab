// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

//go:build !unix

package fetcher

import (
	"fmt"
	"io/fs"
	"runtime"
	"time"
)

// Chown changes the numeric uid and gid of the named file.
func (d *Disk) Chown(name string, uid, gid int) error {
	return fmt.Errorf("Chown is not supported on this platform (%s)", runtime.GOOS)
}

// mknod is not supported on this platform.
func mknod(_ string, mode fs.FileMode, _, _ int64) error {
	return fmt.Errorf("cannot create %s on this platform (%s)", mode.Type(), runtime.GOOS)
}

// lchtimes modifies the access and modified timestamps on a target path
// This capability is only available on unix as of now.
func lchtimes(_ string, _, _ time.Time) error {
	return fmt.Errorf("Lchtimes is not supported on this platform (%s)", runtime.GOOS)
}

// canMaintainSymlinkTimestamps determines whether is is possible to change
// timestamps on symlinks for the the current platform.
const canMaintainSymlinkTimestamps = false
