// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package cmd

import "github.com/alecthomas/kong"

// falseValues are the spellings that disable unpacking. Any other value enables it.
var falseValues = map[string]struct{}{
	"false": {},
	"FALSE": {},
	"False": {},
	"0":     {},
	"no":    {},
	"n":     {},
}

// ParseUnpack reports whether s enables unpacking. Matching is case sensitive, so
// "NO" enables unpacking.
func ParseUnpack(s string) bool {
	_, disabled := falseValues[s]
	return !disabled
}

// UnpackFlag is a boolean that follows [ParseUnpack] instead of strconv.ParseBool. It
// stays false if neither the flag nor its environment variable is present.
type UnpackFlag bool

// Decode implements kong.MapperValue.
func (u *UnpackFlag) Decode(ctx *kong.DecodeContext) error {
	var s string
	if err := ctx.Scan.PopValueInto("unpack", &s); err != nil {
		return err
	}
	*u = UnpackFlag(ParseUnpack(s))
	return nil
}
