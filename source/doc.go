// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

// Package source provides [fetcher.Source] implementations for http, https and file URLs.
package source
