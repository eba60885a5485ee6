// Copyright 2021 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package core

import (
	"bytes"
	"testing"

	"github.com/ChainSafe/gossamer/lib/common"
	"github.com/ChainSafe/gossamer/lib/crypto/ed25519"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ChainSafe/grandpa-accountability/dot/state"
	"github.com/ChainSafe/grandpa-accountability/dot/types"
	"github.com/ChainSafe/grandpa-accountability/internal/database"
	"github.com/ChainSafe/grandpa-accountability/lib/grandpa"
)

func newTestKeypair(t *testing.T, seed byte) *ed25519.Keypair {
	t.Helper()
	keypair, err := ed25519.NewKeypairFromSeed(bytes.Repeat([]byte{seed}, 32))
	require.NoError(t, err)
	return keypair
}

func authorityID(keypair *ed25519.Keypair) types.AuthorityID {
	return types.NewAuthorityID(keypair.Public().(*ed25519.PublicKey))
}

// newTestService returns an in memory state initialised with a genesis
// authority set of the keypairs given.
func newTestService(t *testing.T, keypairs ...*ed25519.Keypair) (*state.Service, types.Header) {
	t.Helper()

	svc, err := state.NewService(state.Config{Backend: database.Pebble, InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, svc.Close())
	})

	authorities := make(types.AuthorityList, len(keypairs))
	for i, keypair := range keypairs {
		authorities[i] = types.Authority{ID: authorityID(keypair), Weight: 1}
	}

	genesis := types.Header{StateRoot: common.Hash{0x99}}
	err = svc.Initialise(genesis, func(s state.Storage) error {
		return grandpa.InitialiseGenesis(s, authorities)
	})
	require.NoError(t, err)

	return svc, genesis
}

// newEquivocationReport returns a report of two precommits of the
// keypair in round 1 of set 0.
func newEquivocationReport(t *testing.T, keypair *ed25519.Keypair, first, second common.Hash) types.Extrinsic {
	t.Helper()

	votes := make([]types.VoteSignature[types.Precommit], 2)
	for i, hash := range []common.Hash{first, second} {
		precommit := types.NewPrecommit(hash, 1)
		signature, err := grandpa.SignVote(keypair, precommit, 1, 0)
		require.NoError(t, err)
		votes[i] = types.VoteSignature[types.Precommit]{Vote: precommit, Signature: signature}
	}

	proof := types.PrecommitEquivocationProof{
		SetID: 0,
		Equivocation: types.Equivocation[types.Precommit]{
			RoundNumber: 1,
			Identity:    authorityID(keypair),
			First:       votes[0],
			Second:      votes[1],
		},
	}

	extrinsic, err := types.NewExtrinsic(nil, grandpa.ReportPrecommitEquivocationCall, proof)
	require.NoError(t, err)
	return extrinsic
}
