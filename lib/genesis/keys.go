// Copyright 2022 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package genesis

import (
	"fmt"

	"github.com/ChainSafe/gossamer/lib/common"
	"github.com/ChainSafe/gossamer/lib/crypto/ed25519"

	"github.com/ChainSafe/grandpa-accountability/dot/types"
)

// DevAuthorityNames are the development authorities, in genesis order.
var DevAuthorityNames = []string{"alice", "bob", "charlie", "dave"}

// DevKeypair derives the development ed25519 keypair for the name given.
// The seed is the blake2b hash of the name, so keys are insecure and
// only meant for local chains.
func DevKeypair(name string) (*ed25519.Keypair, error) {
	seed, err := common.Blake2bHash([]byte(name))
	if err != nil {
		return nil, fmt.Errorf("hashing seed: %w", err)
	}
	return ed25519.NewKeypairFromSeed(seed[:])
}

// DevAuthorities returns the development authority list with weight 1 each.
func DevAuthorities() (types.AuthorityList, error) {
	authorities := make(types.AuthorityList, len(DevAuthorityNames))
	for i, name := range DevAuthorityNames {
		keypair, err := DevKeypair(name)
		if err != nil {
			return nil, fmt.Errorf("deriving %s keypair: %w", name, err)
		}
		authorities[i] = types.Authority{
			ID:     types.NewAuthorityID(keypair.Public().(*ed25519.PublicKey)),
			Weight: 1,
		}
	}
	return authorities, nil
}
