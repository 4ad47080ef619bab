// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package fetcher

import (
	"context"
	"io"
	"io/fs"
	"log/slog"
)

// ConfigOption is a function pointer to implement the option pattern
type ConfigOption func(*Config)

// Config provides a configuration struct and options to adjust the configuration.
//
// The configuration struct holds all configuration options for the fetch and the
// extraction process. The configuration options can be adjusted using the option
// pattern style.
type Config struct {
	// createDestination creates the destination directory with all missing ancestors
	createDestination bool

	// customCreateDirMode is the file mode for created directories, that are not defined in the archive (respecting umask)
	customCreateDirMode fs.FileMode

	// customWriteFileMode is the file mode of the verbatim written output (respecting umask)
	customWriteFileMode fs.FileMode

	// denySymlinkExtraction offers the option to enable/disable the extraction of symlinks
	denySymlinkExtraction bool

	// dropFileAttributes is a flag drop the file attributes of the extracted files
	dropFileAttributes bool

	// extendedCodecs enables codecs beyond gzip and plain tar
	extendedCodecs bool

	// logger stream for the fetch
	logger logger

	// maxExtractionSize is the maximum size of all extracted files.
	// Set value to -1 to disable the check.
	maxExtractionSize int64

	// maxFiles is the maximum of entries (including folder and symlinks) in an archive.
	// Set value to -1 to disable the check.
	maxFiles int64

	// maxInputSize is the maximum size of the payload.
	// Set value to -1 to disable the check.
	maxInputSize int64

	// overwrite replaces existing files in the destination
	overwrite bool

	// preserveOwner is a flag to preserve the owner of the extracted files
	preserveOwner bool

	// readAhead is the number of chunks buffered ahead of the consumer (0 disables)
	readAhead int

	// sniffContentType selects a codec by magic bytes if no content type is declared
	sniffContentType bool

	// staging writes into a sibling staging path and renames it onto the output on success
	staging bool

	// stripComponents is the number of leading path segments removed from every entry
	stripComponents int

	// telemetryHook is a function to consume telemetry data after a finished fetch
	telemetryHook TelemetryHook
}

// CheckMaxFiles checks if counter exceeds the configured maximum. If the maximum is exceeded,
// a [ErrMaxFilesExceeded] error is returned.
func (c *Config) CheckMaxFiles(counter int64) error {
	if c.maxFiles == -1 {
		return nil
	}
	if counter > c.maxFiles {
		return ErrMaxFilesExceeded
	}
	return nil
}

// CheckExtractionSize checks if fileSize exceeds configured maximum. If the maximum is exceeded,
// a [ErrMaxExtractionSizeExceeded] error is returned.
func (c *Config) CheckExtractionSize(fileSize int64) error {
	if c.maxExtractionSize == -1 {
		return nil
	}
	if fileSize > c.maxExtractionSize {
		return ErrMaxExtractionSizeExceeded
	}
	return nil
}

// CreateDestination returns true if the destination directory should be
// created if it does not exist.
func (c *Config) CreateDestination() bool {
	return c.createDestination
}

// CustomCreateDirMode returns the file mode for created directories,
// that are not defined in the archive. (respecting umask)
func (c *Config) CustomCreateDirMode() fs.FileMode {
	return c.customCreateDirMode
}

// CustomWriteFileMode returns the file mode of the verbatim written output.
// (respecting umask)
func (c *Config) CustomWriteFileMode() fs.FileMode {
	return c.customWriteFileMode
}

// DenySymlinkExtraction returns true if symlinks are NOT allowed.
func (c *Config) DenySymlinkExtraction() bool {
	return c.denySymlinkExtraction
}

// DropFileAttributes returns true if the file attributes should be dropped.
func (c *Config) DropFileAttributes() bool {
	return c.dropFileAttributes
}

// ExtendedCodecs returns true if zstd, xz, bzip2, lz4, brotli and snappy content types
// are accepted in addition to gzip and plain tar.
func (c *Config) ExtendedCodecs() bool {
	return c.extendedCodecs
}

// Logger returns the logger.
func (c *Config) Logger() logger {
	return c.logger
}

// MaxExtractionSize returns the maximum size over all extracted files.
func (c *Config) MaxExtractionSize() int64 {
	return c.maxExtractionSize
}

// MaxFiles returns the maximum of entries (including folder and symlinks) in an archive.
func (c *Config) MaxFiles() int64 {
	return c.maxFiles
}

// MaxInputSize returns the maximum size of the payload.
func (c *Config) MaxInputSize() int64 {
	return c.maxInputSize
}

// Overwrite returns true if files should be overwritten in the destination.
func (c *Config) Overwrite() bool {
	return c.overwrite
}

// PreserveOwner returns true if the owner of the extracted files should
// be preserved. This option is only available on Unix systems requiring
// root privileges.
func (c *Config) PreserveOwner() bool {
	return c.preserveOwner
}

// ReadAhead returns the number of payload chunks that are read ahead of the consumer.
func (c *Config) ReadAhead() int {
	return c.readAhead
}

// SniffContentType returns true if the codec is selected by magic bytes when the
// source did not declare a content type.
func (c *Config) SniffContentType() bool {
	return c.sniffContentType
}

// Staging returns true if the output is written to a staging path first.
func (c *Config) Staging() bool {
	return c.staging
}

// StripComponents returns the number of leading path segments removed from every entry.
func (c *Config) StripComponents() int {
	return c.stripComponents
}

// TelemetryHook returns the telemetry hook.
func (c *Config) TelemetryHook() TelemetryHook {
	if c.telemetryHook == nil {
		return defaultTelemetryHook
	}
	return c.telemetryHook
}

const (
	defaultCreateDestination     = true // create destination directory
	defaultCustomCreateDirMode   = 0755 // default directory permissions rwxr-xr-x
	defaultCustomWriteFileMode   = 0644 // default output file permissions rw-r--r--
	defaultDenySymlinkExtraction = false
	defaultDropFileAttributes    = false
	defaultExtendedCodecs        = false // gzip and plain tar only
	defaultMaxFiles              = -1
	defaultMaxExtractionSize     = -1
	defaultMaxInputSize          = -1
	defaultOverwrite             = true // later archive entries win
	defaultPreserveOwner         = false
	defaultReadAhead             = 0
	defaultSniffContentType      = false // trust the declared content type
	defaultStaging               = false
	defaultStripComponents       = 1
)

var (
	// slog to discard
	defaultLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
	// no operation telemetry hook
	defaultTelemetryHook = func(ctx context.Context, d *TelemetryData) {
		// noop
	}
)

// NewConfig is a generator option that takes opts as adjustments of the
// default configuration in an option pattern style.
func NewConfig(opts ...ConfigOption) *Config {
	config := &Config{
		createDestination:     defaultCreateDestination,
		customCreateDirMode:   defaultCustomCreateDirMode,
		customWriteFileMode:   defaultCustomWriteFileMode,
		denySymlinkExtraction: defaultDenySymlinkExtraction,
		dropFileAttributes:    defaultDropFileAttributes,
		extendedCodecs:        defaultExtendedCodecs,
		logger:                defaultLogger,
		maxFiles:              defaultMaxFiles,
		maxExtractionSize:     defaultMaxExtractionSize,
		maxInputSize:          defaultMaxInputSize,
		overwrite:             defaultOverwrite,
		preserveOwner:         defaultPreserveOwner,
		readAhead:             defaultReadAhead,
		sniffContentType:      defaultSniffContentType,
		staging:               defaultStaging,
		stripComponents:       defaultStripComponents,
		telemetryHook:         defaultTelemetryHook,
	}

	for _, opt := range opts {
		opt(config)
	}

	return config
}

// WithCreateDestination options pattern function to create
// destination directory if it does not exist.
func WithCreateDestination(create bool) ConfigOption {
	return func(c *Config) {
		c.createDestination = create
	}
}

// WithCustomCreateDirMode options pattern function to set the file mode
// for created directories, that are not defined in the archive. (respecting umask)
func WithCustomCreateDirMode(mode fs.FileMode) ConfigOption {
	return func(c *Config) {
		c.customCreateDirMode = mode
	}
}

// WithCustomWriteFileMode options pattern function to set the file mode of the
// verbatim written output. (respecting umask)
func WithCustomWriteFileMode(mode fs.FileMode) ConfigOption {
	return func(c *Config) {
		c.customWriteFileMode = mode
	}
}

// WithDenySymlinkExtraction options pattern function to deny symlink extraction.
func WithDenySymlinkExtraction(deny bool) ConfigOption {
	return func(c *Config) {
		c.denySymlinkExtraction = deny
	}
}

// WithDropFileAttributes options pattern function to drop the
// file attributes of the extracted files.
func WithDropFileAttributes(drop bool) ConfigOption {
	return func(c *Config) {
		c.dropFileAttributes = drop
	}
}

// WithExtendedCodecs options pattern function to accept zstd, xz, bzip2, lz4, brotli
// and snappy content types.
func WithExtendedCodecs(enable bool) ConfigOption {
	return func(c *Config) {
		c.extendedCodecs = enable
	}
}

// WithLogger options pattern function to set a custom logger.
func WithLogger(logger logger) ConfigOption {
	return func(c *Config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMaxExtractionSize options pattern function to set maximum size over all
// extracted files. (-1 to disable check)
func WithMaxExtractionSize(maxExtractionSize int64) ConfigOption {
	return func(c *Config) {
		c.maxExtractionSize = maxExtractionSize
	}
}

// WithMaxFiles options pattern function to set maximum number of extracted files,
// directories and symlinks during the extraction. (-1 to disable check)
func WithMaxFiles(maxFiles int64) ConfigOption {
	return func(c *Config) {
		c.maxFiles = maxFiles
	}
}

// WithMaxInputSize options pattern function to set the maximum payload size. (-1 to disable check)
func WithMaxInputSize(maxInputSize int64) ConfigOption {
	return func(c *Config) {
		c.maxInputSize = maxInputSize
	}
}

// WithOverwrite options pattern function specify if files should be overwritten in the destination.
func WithOverwrite(enable bool) ConfigOption {
	return func(c *Config) {
		c.overwrite = enable
	}
}

// WithPreserveOwner options pattern function to preserve the owner of
// the extracted files. This option is only available on Unix systems
// requiring root privileges.
func WithPreserveOwner(preserve bool) ConfigOption {
	return func(c *Config) {
		c.preserveOwner = preserve
	}
}

// WithReadAhead options pattern function to read up to chunks payload chunks ahead of
// the extraction in a separate goroutine. (0 to disable)
func WithReadAhead(chunks int) ConfigOption {
	return func(c *Config) {
		if chunks < 0 {
			chunks = 0
		}
		c.readAhead = chunks
	}
}

// WithSniffContentType options pattern function to select the codec by magic bytes if
// the source does not declare a content type.
func WithSniffContentType(sniff bool) ConfigOption {
	return func(c *Config) {
		c.sniffContentType = sniff
	}
}

// WithStaging options pattern function to write the output to a staging path, which is
// renamed onto the output path after success.
func WithStaging(enable bool) ConfigOption {
	return func(c *Config) {
		c.staging = enable
	}
}

// WithStripComponents options pattern function to set the number of leading path
// segments that are removed from every archive entry.
func WithStripComponents(n int) ConfigOption {
	return func(c *Config) {
		if n < 0 {
			n = 0
		}
		c.stripComponents = n
	}
}

// WithTelemetryHook options pattern function to set a [TelemetryHook], which is called after the fetch.
func WithTelemetryHook(hook TelemetryHook) ConfigOption {
	return func(c *Config) {
		c.telemetryHook = hook
	}
}
