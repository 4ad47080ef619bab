// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"io"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nixek/fetcher"
)

func parse(t *testing.T, args ...string) *CLI {
	t.Helper()
	var cli CLI
	parser, err := kong.New(&cli, kong.Vars{"version": "test"}, kong.Exit(func(int) { t.Fatal("unexpected exit") }))
	require.NoError(t, err)
	_, err = parser.Parse(args)
	require.NoError(t, err)
	return &cli
}

func TestParseUnpack(t *testing.T) {
	for _, s := range []string{"false", "FALSE", "False", "0", "no", "n"} {
		assert.False(t, ParseUnpack(s), s)
	}
	for _, s := range []string{"true", "1", "yes", "NO", "N", "fAlse", "", "anything"} {
		assert.True(t, ParseUnpack(s), s)
	}
}

func TestCLIEnvironment(t *testing.T) {
	t.Setenv("nixek_fetcher_url", "https://example.com/src.tar.gz")
	t.Setenv("nixek_fetcher_unpack", "1")
	t.Setenv("out", "/tmp/out")

	cli := parse(t)
	assert.Equal(t, "https://example.com/src.tar.gz", cli.URL)
	assert.True(t, bool(cli.Unpack))
	assert.Equal(t, "/tmp/out", cli.Out)
	assert.Equal(t, 1, cli.StripComponents)
	assert.Equal(t, int64(-1), cli.MaxInputSize)
}

func TestCLIUnpackEnvironment(t *testing.T) {
	tests := []struct {
		name  string
		value *string
		want  bool
	}{
		{name: "absent", value: nil, want: false},
		{name: "false", value: ptr("false"), want: false},
		{name: "n", value: ptr("n"), want: false},
		{name: "true", value: ptr("true"), want: true},
		{name: "upper NO", value: ptr("NO"), want: true},
		{name: "empty", value: ptr(""), want: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("nixek_fetcher_unpack", "")
			os.Unsetenv("nixek_fetcher_unpack")
			if tc.value != nil {
				t.Setenv("nixek_fetcher_unpack", *tc.value)
			}
			cli := parse(t)
			assert.Equal(t, tc.want, bool(cli.Unpack))
		})
	}
}

func TestCLIFlags(t *testing.T) {
	cli := parse(t,
		"--url=file:///src.tar", "--unpack=no", "--out=/dst",
		"--strip-components=0", "--max-files=10", "--staging", "--header=X-A=b",
		"--timeout=5s", "-v",
	)
	assert.Equal(t, "file:///src.tar", cli.URL)
	assert.False(t, bool(cli.Unpack))
	assert.Equal(t, 0, cli.StripComponents)
	assert.Equal(t, int64(10), cli.MaxFiles)
	assert.True(t, cli.Staging)
	assert.Equal(t, map[string]string{"X-A": "b"}, cli.Header)
	assert.Equal(t, "5s", cli.Timeout.String())
	assert.True(t, cli.Verbose)
}

func TestExecuteMissingParameters(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	err := (&CLI{Out: t.TempDir()}).Execute(context.Background(), logger, nil, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, fetcher.ErrConfiguration)

	err = (&CLI{URL: "file:///x"}).Execute(context.Background(), logger, nil, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, fetcher.ErrConfiguration)
}

func TestExecuteFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.tar.gz")
	require.NoError(t, os.WriteFile(src, gzipTar(t, map[string]string{
		"pkg-1.0/README":     "readme",
		"pkg-1.0/src/main.c": "int main;",
	}), 0644))
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	fileURL := (&url.URL{Scheme: "file", Path: filepath.ToSlash(src)}).String()

	// verbatim
	out := filepath.Join(dir, "copy")
	cli := &CLI{URL: fileURL, Out: out, StripComponents: 1, MaxInputSize: -1, MaxFiles: -1, MaxExtractionSize: -1}
	require.NoError(t, cli.Execute(context.Background(), logger, nil, nil))
	want, err := os.ReadFile(src)
	require.NoError(t, err)
	got, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	// unpack, the file source declares no content type so sniffing selects gzip
	tree := filepath.Join(dir, "tree")
	cli = &CLI{URL: fileURL, Out: tree, Unpack: true, Sniff: true, StripComponents: 1, MaxInputSize: -1, MaxFiles: -1, MaxExtractionSize: -1, Telemetry: true}
	require.NoError(t, cli.Execute(context.Background(), logger, nil, nil))
	data, err := os.ReadFile(filepath.Join(tree, "src", "main.c"))
	require.NoError(t, err)
	assert.Equal(t, "int main;", string(data))
	assert.FileExists(t, filepath.Join(tree, "README"))
}

func gzipTar(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	tw := tar.NewWriter(zw)
	for name, content := range files {
		require.NoError(t, tw.WriteHeader(&tar.Header{Name: name, Mode: 0644, Size: int64(len(content)), Typeflag: tar.TypeReg}))
		_, err := tw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, tw.Close())
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func ptr(s string) *string {
	return &s
}
