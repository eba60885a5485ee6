// Copyright 2021 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package log

// Format is the format of the logs.
type Format uint8

const (
	// FormatConsole is the console format, with colours.
	FormatConsole Format = iota
	// FormatPlain is the console format without colours.
	FormatPlain
)

func (f Format) String() string {
	switch f {
	case FormatConsole:
		return "console"
	case FormatPlain:
		return "plain"
	default:
		return "unknown"
	}
}
