// Copyright 2021 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package genesis

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ChainSafe/gossamer/lib/common"
	"github.com/ChainSafe/gossamer/pkg/scale"
	"github.com/go-playground/validator/v10"

	"github.com/ChainSafe/grandpa-accountability/dot/state"
	"github.com/ChainSafe/grandpa-accountability/dot/types"
	"github.com/ChainSafe/grandpa-accountability/lib/grandpa"
)

// ErrDuplicateAuthority is returned when an authority appears twice in the genesis set.
var ErrDuplicateAuthority = errors.New("duplicate genesis authority")

// NewGenesisFromJSON parses and validates a genesis JSON file
func NewGenesisFromJSON(file string) (*Genesis, error) {
	data, err := os.ReadFile(filepath.Clean(file))
	if err != nil {
		return nil, fmt.Errorf("reading genesis file: %w", err)
	}

	g := new(Genesis)
	err = json.Unmarshal(data, g)
	if err != nil {
		return nil, fmt.Errorf("decoding genesis json: %w", err)
	}

	err = g.Validate()
	if err != nil {
		return nil, err
	}
	return g, nil
}

// NewDevGenesis returns a development genesis over the given authorities.
func NewDevGenesis(authorities types.AuthorityList) *Genesis {
	g := &Genesis{
		Name:      "Development",
		ID:        "dev",
		ChainType: "Development",
	}
	for _, authority := range authorities {
		g.Genesis.Runtime.Grandpa.Authorities = append(g.Genesis.Runtime.Grandpa.Authorities,
			AuthorityFields{ID: authority.ID, Weight: authority.Weight})
	}
	return g
}

// Validate checks required fields and that no authority is listed twice.
func (g *Genesis) Validate() error {
	err := validator.New().Struct(g)
	if err != nil {
		return fmt.Errorf("validating genesis: %w", err)
	}

	seen := make(map[types.AuthorityID]struct{}, len(g.Genesis.Runtime.Grandpa.Authorities))
	for _, authority := range g.Genesis.Runtime.Grandpa.Authorities {
		if _, has := seen[authority.ID]; has {
			return fmt.Errorf("%w: %s", ErrDuplicateAuthority, authority.ID)
		}
		seen[authority.ID] = struct{}{}
	}
	return nil
}

// WriteJSON writes the genesis as indented JSON to the file given.
func (g *Genesis) WriteJSON(file string) error {
	data, err := json.MarshalIndent(g, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding genesis json: %w", err)
	}

	err = os.WriteFile(filepath.Clean(file), data, 0o600)
	if err != nil {
		return fmt.Errorf("writing genesis file: %w", err)
	}
	return nil
}

// Header returns the genesis block header. Its state root commits to the
// SCALE encoded genesis authority list.
func (g *Genesis) Header() (types.Header, error) {
	encoded, err := scale.Marshal(g.Authorities())
	if err != nil {
		return types.Header{}, fmt.Errorf("encoding genesis authorities: %w", err)
	}

	stateRoot, err := common.Blake2bHash(encoded)
	if err != nil {
		return types.Header{}, fmt.Errorf("hashing genesis authorities: %w", err)
	}

	extrinsicsRoot, err := types.ExtrinsicsRoot(nil)
	if err != nil {
		return types.Header{}, fmt.Errorf("computing extrinsics root: %w", err)
	}

	return types.Header{
		StateRoot:      stateRoot,
		ExtrinsicsRoot: extrinsicsRoot,
	}, nil
}

// InitialiseState stores the genesis header and GRANDPA authority set in
// the state service given.
func InitialiseState(service *state.Service, g *Genesis) (header types.Header, err error) {
	header, err = g.Header()
	if err != nil {
		return header, err
	}

	authorities := g.Authorities()
	err = service.Initialise(header, func(s state.Storage) error {
		return grandpa.InitialiseGenesis(s, authorities)
	})
	if err != nil {
		return header, err
	}
	return header, nil
}
