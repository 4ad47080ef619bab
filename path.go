// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package fetcher

import (
	"path"
	"runtime"
	"strings"
)

// NormalizePath sanitizes the archive path name and removes the first strip segments.
//
// Empty and current directory segments are dropped. If any segment is a parent
// directory reference, the entry is rejected as a whole, regardless of its position.
// The second return value is false if the entry must be skipped: it was rejected or
// nothing remains after stripping. Otherwise the result is a non-empty, slash separated
// relative path without traversal segments.
//
// NormalizePath does not access the filesystem.
func NormalizePath(name string, strip int) (string, bool) {
	if strip < 0 {
		strip = 0
	}

	segments := make([]string, 0, strings.Count(name, "/")+1)
	for _, s := range strings.Split(name, "/") {
		switch s {
		case "", ".":
			continue
		case "..":
			return "", false
		}
		if !validSegment(s) {
			return "", false
		}
		segments = append(segments, s)
	}

	if len(segments) <= strip {
		return "", false
	}
	return path.Join(segments[strip:]...), true
}

// validSegment reports whether s can be used as a single path element on this platform.
func validSegment(s string) bool {
	if strings.ContainsRune(s, 0) {
		return false
	}
	if runtime.GOOS == "windows" {
		// a backslash or drive letter would be interpreted as a separator or volume
		return !strings.ContainsAny(s, `\:`)
	}
	return true
}
