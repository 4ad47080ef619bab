// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package fetcher

import (
	"context"
	"encoding/json"
	"time"

	"github.com/opencontainers/go-digest"
)

// TelemetryData holds all telemetry data of a fetch.
type TelemetryData struct {
	// Codec is the name of the selected decompression codec, empty if not unpacked
	Codec string `json:"codec"`

	// ContentType is the content type declared by the source
	ContentType string `json:"content_type"`

	// Digest is the sha256 digest of the payload as received from the source
	Digest digest.Digest `json:"digest"`

	// ExtractedDirs is the number of extracted directories
	ExtractedDirs int64 `json:"extracted_dirs"`

	// ExtractedFiles is the number of extracted files
	ExtractedFiles int64 `json:"extracted_files"`

	// ExtractedOthers is the number of extracted hard links, FIFOs and devices
	ExtractedOthers int64 `json:"extracted_others"`

	// ExtractedSymlinks is the number of extracted symlinks
	ExtractedSymlinks int64 `json:"extracted_symlinks"`

	// ExtractedType is the type of the output, "tar" or "file"
	ExtractedType string `json:"extracted_type"`

	// ExtractionDuration is the time the whole fetch took
	ExtractionDuration time.Duration `json:"extraction_duration"`

	// ExtractionSize is the size of the written files
	ExtractionSize int64 `json:"extraction_size"`

	// InputSize is the size of the payload
	InputSize int64 `json:"input_size"`

	// LastExtractionError is the error that aborted the fetch
	LastExtractionError error `json:"last_extraction_error"`

	// SkippedEntries is the number of archive entries dropped by path normalization
	SkippedEntries int64 `json:"skipped_entries"`
}

// String returns a string representation of [TelemetryData].
func (m TelemetryData) String() string {
	b, _ := json.Marshal(m)
	return string(b)
}

// MarshalJSON implements the [encoding/json.Marshaler] interface.
func (m TelemetryData) MarshalJSON() ([]byte, error) {
	var lastError string
	if m.LastExtractionError != nil {
		lastError = m.LastExtractionError.Error()
	}

	type Alias TelemetryData
	return json.Marshal(&struct {
		LastExtractionError string `json:"last_extraction_error"`
		*Alias
	}{
		LastExtractionError: lastError,
		Alias:               (*Alias)(&m),
	})
}

// TelemetryHook is a function type that performs operations on [TelemetryData]
// after a fetch has finished which can be used to submit the [TelemetryData]
// to a telemetry service, for example.
type TelemetryHook func(context.Context, *TelemetryData)

// captureExtractionDuration captures the duration of the fetch
func captureExtractionDuration(td *TelemetryData, start time.Time) {
	td.ExtractionDuration = now().Sub(start)
}

// now is a function point that returns time.Now to the caller.
var now = time.Now
