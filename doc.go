// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

// Package fetcher retrieves a payload from a [Source] and either writes it verbatim to an
// output file or unpacks it as a tar archive into an output directory.
//
// Unpacking strips a configurable number of leading path components from every entry
// (one by default, mirroring the "fetch tarball" convention of build systems), drops
// entries that would escape the destination and applies directory metadata only after all
// other entries have been placed.
//
// Configuration is done using the [Config], which is built in an option pattern style.
// Telemetry data is collected during the fetch and handed to the configured
// [TelemetryHook].
package fetcher
