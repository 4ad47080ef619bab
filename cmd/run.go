// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/alecthomas/kong"
	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"

	"github.com/nixek/fetcher"
	"github.com/nixek/fetcher/source"
)

// CLI are the cli parameters for the fetcher binary. The build step passes url, unpack
// and out through the environment.
type CLI struct {
	URL               string            `name:"url" env:"nixek_fetcher_url" help:"Source URL (http, https or file)."`
	Unpack            UnpackFlag        `name:"unpack" env:"nixek_fetcher_unpack" placeholder:"BOOL" help:"Extract the payload as tar archive. (false, FALSE, False, 0, no, n disable it)"`
	Out               string            `name:"out" env:"out" help:"Output file, or output directory when unpacking."`
	StripComponents   int               `optional:"" default:"1" help:"Leading path segments removed from every archive entry."`
	MaxInputSize      int64             `optional:"" default:"-1" help:"Maximum payload size in bytes. (disable check: -1)"`
	MaxFiles          int64             `optional:"" default:"-1" help:"Maximum archive entries that are extracted. (disable check: -1)"`
	MaxExtractionSize int64             `optional:"" default:"-1" help:"Maximum extracted size in bytes. (disable check: -1)"`
	ExtendedCodecs    bool              `optional:"" help:"Accept zstd, xz, bzip2, lz4, brotli, snappy and zlib content types."`
	Sniff             bool              `optional:"" help:"Select the codec by magic bytes if no content type is declared."`
	Staging           bool              `optional:"" help:"Write to a staging path and move it onto the output after success."`
	ReadAhead         int               `optional:"" default:"0" help:"Payload chunks read ahead of the extraction. (disable: 0)"`
	Timeout           time.Duration     `optional:"" default:"0s" help:"Maximum time the fetch may take. (disable: 0s)"`
	UserAgent         string            `optional:"" default:"nixek-fetcher" help:"User-Agent of http requests."`
	Header            map[string]string `optional:"" help:"Additional http request header (key=value)."`
	Verbose           bool              `short:"v" optional:"" help:"Verbose logging."`
	Telemetry         bool              `short:"T" optional:"" help:"Print telemetry data to log after the fetch."`
	Version           kong.VersionFlag  `short:"V" optional:"" help:"Print release version information."`
}

// Run the entrypoint into the fetcher as a cli tool
func Run(version, commit, date string) {
	var cli CLI
	kong.Parse(&cli,
		kong.Description("Fetch a URL into a file, or unpack it into a directory"),
		kong.UsageOnError(),
		kong.Vars{
			"version": fmt.Sprintf("%s (%s), commit %s, built at %s", filepath.Base(os.Args[0]), version, commit, date),
		},
	)

	logger := cli.Logger()
	if err := cli.Execute(context.Background(), logger, nil, nil); err != nil {
		logger.Error("fetch failed", "error", err)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Logger creates the stderr logger, at debug level with --verbose.
func (c *CLI) Logger() *slog.Logger {
	logLevel := slog.LevelError
	if c.Verbose {
		logLevel = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))
}

// Config translates the cli parameters into a [fetcher.Config].
func (c *CLI) Config(logger *slog.Logger) *fetcher.Config {
	telemetryToLog := func(ctx context.Context, td *fetcher.TelemetryData) {
		if !c.Telemetry {
			return
		}
		logger.Info("fetch finished",
			"input", humanize.Bytes(uint64(max(td.InputSize, 0))),
			"extracted", humanize.Bytes(uint64(max(td.ExtractionSize, 0))),
			"duration", td.ExtractionDuration,
			"telemetry", td,
		)
	}

	return fetcher.NewConfig(
		fetcher.WithExtendedCodecs(c.ExtendedCodecs),
		fetcher.WithLogger(logger),
		fetcher.WithMaxExtractionSize(c.MaxExtractionSize),
		fetcher.WithMaxFiles(c.MaxFiles),
		fetcher.WithMaxInputSize(c.MaxInputSize),
		fetcher.WithReadAhead(c.ReadAhead),
		fetcher.WithSniffContentType(c.Sniff),
		fetcher.WithStaging(c.Staging),
		fetcher.WithStripComponents(c.StripComponents),
		fetcher.WithTelemetryHook(telemetryToLog),
	)
}

// Execute validates the parameters and runs the fetch. A nil src serves http, https
// and file URLs, a nil t writes to the local disk.
func (c *CLI) Execute(ctx context.Context, logger *slog.Logger, src fetcher.Source, t fetcher.Target) error {
	if c.URL == "" {
		return errors.Wrap(&fetcher.Error{Kind: fetcher.ErrConfiguration, Err: fmt.Errorf("nixek_fetcher_url is not set")}, "invalid parameters")
	}
	if c.Out == "" {
		return errors.Wrap(&fetcher.Error{Kind: fetcher.ErrConfiguration, Err: fmt.Errorf("out is not set")}, "invalid parameters")
	}

	if src == nil {
		opts := []source.Option{source.WithUserAgent(c.UserAgent)}
		for key, value := range c.Header {
			opts = append(opts, source.WithHeader(key, value))
		}
		src = source.Default(opts...)
	}
	if t == nil {
		t = fetcher.NewDisk()
	}

	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	req := fetcher.Request{URL: c.URL, Output: c.Out, Unpack: bool(c.Unpack)}
	if err := fetcher.Fetch(ctx, src, t, req, c.Config(logger)); err != nil {
		return errors.Wrapf(err, "fetching %s", c.URL)
	}
	return nil
}
