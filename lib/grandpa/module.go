// Copyright 2021 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package grandpa

import (
	"github.com/ChainSafe/grandpa-accountability/internal/log"
)

// ModuleName prefixes the storage keys of the module.
const ModuleName = "GrandpaFinality"

const (
	// DefaultChallengeSessionLength is the number of blocks a challenge
	// session can be answered in.
	DefaultChallengeSessionLength uint32 = 10
	// DefaultMaxAncestryHeaders is the default limit of headers in an ancestry proof.
	DefaultMaxAncestryHeaders = 1024
)

var logger = log.NewFromGlobal(log.AddContext("pkg", "grandpa"))

// Config is the GRANDPA module configuration.
type Config struct {
	ChallengeSessionLength uint32 `validate:"gt=0"`
	MaxAncestryHeaders     int    `validate:"gt=0"`
}

// DefaultConfig returns the default module configuration.
func DefaultConfig() Config {
	return Config{
		ChallengeSessionLength: DefaultChallengeSessionLength,
		MaxAncestryHeaders:     DefaultMaxAncestryHeaders,
	}
}

// Module is the GRANDPA accountability module. It holds no state of its
// own: every call reads and writes the storage handle it is given.
type Module struct {
	cfg      Config
	offences *offenceReporter
}

// NewModule returns a module reporting offences to the slasher given.
func NewModule(cfg Config, slasher Slasher) *Module {
	if cfg.ChallengeSessionLength == 0 {
		cfg.ChallengeSessionLength = DefaultChallengeSessionLength
	}
	if cfg.MaxAncestryHeaders <= 0 {
		cfg.MaxAncestryHeaders = DefaultMaxAncestryHeaders
	}

	return &Module{
		cfg:      cfg,
		offences: newOffenceReporter(slasher),
	}
}
