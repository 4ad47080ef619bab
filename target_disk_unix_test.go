// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

//go:build unix

package fetcher

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/sys/unix"
)

func TestUnixTimeval(t *testing.T) {
	tests := []struct {
		input time.Time
		want  unix.Timeval
	}{
		{
			time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC),
			unix.Timeval{Sec: 0, Usec: 0},
		},
		{
			// Note: the single nanosecond is rounded up to the next microsecond.
			time.Date(1970, 1, 1, 0, 0, 0, 1, time.UTC),
			unix.Timeval{Sec: 0, Usec: 1},
		},
		{
			// Note: exactly 1 microsecond is not rounded up.
			time.Date(1970, 1, 1, 0, 0, 0, 1000, time.UTC),
			unix.Timeval{Sec: 0, Usec: 1},
		},
		{
			// Note: exactly 1 nanosecond past the microsecond is rounded up.
			time.Date(1970, 1, 1, 0, 0, 0, 1001, time.UTC),
			unix.Timeval{Sec: 0, Usec: 2},
		},
		{
			time.Date(2021, 1, 1, 0, 0, 1, 2000, time.UTC),
			unix.Timeval{Sec: 1609459201, Usec: 2},
		},
	}

	for _, test := range tests {
		t.Run(test.input.String(), func(t *testing.T) {
			got := unixTimeval(test.input)
			if got != test.want {
				t.Errorf("unixTimeval(%v) = %v; want %v", test.input, got, test.want)
			}
		})
	}
}

func TestMknod(t *testing.T) {
	tests := []struct {
		name    string
		mode    fs.FileMode
		wantErr bool
	}{
		{name: "fifo", mode: fs.ModeNamedPipe | 0644},
		{name: "regular file", mode: 0644, wantErr: true},
		{name: "socket", mode: fs.ModeSocket | 0644, wantErr: true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "node")
			err := mknod(path, test.mode, 0, 0)
			if (err != nil) != test.wantErr {
				t.Fatalf("mknod() error = %v, wantErr %v", err, test.wantErr)
			}
			if test.wantErr {
				return
			}
			stat, err := os.Lstat(path)
			if err != nil {
				t.Fatal(err)
			}
			if stat.Mode().Type() != fs.ModeNamedPipe {
				t.Errorf("type = %v, want %v", stat.Mode().Type(), fs.ModeNamedPipe)
			}
		})
	}
}

func TestLchtimes(t *testing.T) {
	root := t.TempDir()
	target := filepath.Join(root, "target")
	link := filepath.Join(root, "link")
	if err := os.WriteFile(target, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink("target", link); err != nil {
		t.Fatal(err)
	}
	before, err := os.Stat(target)
	if err != nil {
		t.Fatal(err)
	}

	mtime := time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)
	if err := lchtimes(link, mtime, mtime); err != nil {
		t.Fatalf("lchtimes() error = %v", err)
	}

	stat, err := os.Lstat(link)
	if err != nil {
		t.Fatal(err)
	}
	if !stat.ModTime().Equal(mtime) {
		t.Errorf("symlink mtime = %v, want %v", stat.ModTime(), mtime)
	}
	after, err := os.Stat(target)
	if err != nil {
		t.Fatal(err)
	}
	if !after.ModTime().Equal(before.ModTime()) {
		t.Errorf("target mtime changed to %v", after.ModTime())
	}
}
