// Copyright 2021 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package grandpa

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
)

type testAuthority struct {
	keypair *ed25519.Keypair
	id      types.AuthorityID
}

// newTestAuthorities returns authorities with deterministic keys,
// sorted by authority id.
func newTestAuthorities(t *testing.T, n int) []testAuthority {
	t.Helper()

	authorities := make([]testAuthority, n)
	for i := range authorities {
		seed := bytes.Repeat([]byte{byte(i + 1)}, 32)
		keypair, err := ed25519.NewKeypairFromSeed(seed)
		require.NoError(t, err)
		authorities[i] = testAuthority{
			keypair: keypair,
			id:      types.NewAuthorityID(keypair.Public().(*ed25519.PublicKey)),
		}
	}

	for i := 1; i < len(authorities); i++ {
		for j := i; j > 0 && authorities[j].id.Compare(authorities[j-1].id) < 0; j-- {
			authorities[j], authorities[j-1] = authorities[j-1], authorities[j]
		}
	}
	return authorities
}

func authorityList(authorities ...testAuthority) types.AuthorityList {
	list := make(types.AuthorityList, len(authorities))
	for i, authority := range authorities {
		list[i] = types.Authority{ID: authority.id, Weight: 1}
	}
	return list
}

func authorityIDs(authorities ...testAuthority) []types.AuthorityID {
	ids := make([]types.AuthorityID, len(authorities))
	for i, authority := range authorities {
		ids[i] = authority.id
	}
	return ids
}

func newTestStorage(t *testing.T) state.Storage {
	t.Helper()

	db, err := database.NewPebble("memory", true)
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, db.Close())
	})

	return database.NewTable(db, "storage")
}

// newTestState returns a storage initialised with the genesis authorities
// given, executing block 1.
func newTestState(t *testing.T, genesis types.AuthorityList) state.Storage {
	t.Helper()

	s := newTestStorage(t)
	err := InitialiseGenesis(s, genesis)
	require.NoError(t, err)
	err = state.InitializeBlock(s, 1, common.Hash{})
	require.NoError(t, err)
	return s
}

func initializeBlock(t *testing.T, s state.Storage, number uint32) {
	t.Helper()
	err := state.InitializeBlock(s, number, common.Hash{byte(number)})
	require.NoError(t, err)
}

// buildChain returns n headers on top of the parent given. The salt
// distinguishes forks.
func buildChain(parent types.Header, n int, salt byte) []types.Header {
	headers := make([]types.Header, n)
	for i := range headers {
		header := types.Header{
			ParentHash: parent.Hash(),
			Number:     parent.Number + 1,
			StateRoot:  common.Hash{salt},
		}
		headers[i] = header
		parent = header
	}
	return headers
}

func signPrecommit(t *testing.T, authority testAuthority, block types.BlockID,
	round, setID uint64) types.SignedPrecommit {
	t.Helper()

	precommit := types.NewPrecommit(block.Hash, block.Number)
	signature, err := SignVote(authority.keypair, precommit, round, setID)
	require.NoError(t, err)

	return types.SignedPrecommit{
		Precommit: precommit,
		Signature: signature,
		ID:        authority.id,
	}
}

func challengedPrecommit(t *testing.T, authority testAuthority, block types.BlockID,
	round, setID uint64) types.ChallengedVote[types.Precommit] {
	t.Helper()
	signed := signPrecommit(t, authority, block, round, setID)
	return types.ChallengedVote[types.Precommit]{
		Vote:      signed.Precommit,
		Authority: signed.ID,
		Signature: signed.Signature,
	}
}

func challengedPrevote(t *testing.T, authority testAuthority, block types.BlockID,
	round, setID uint64) types.ChallengedVote[types.Prevote] {
	t.Helper()

	prevote := types.NewPrevote(block.Hash, block.Number)
	signature, err := SignVote(authority.keypair, prevote, round, setID)
	require.NoError(t, err)

	return types.ChallengedVote[types.Prevote]{
		Vote:      prevote,
		Authority: authority.id,
		Signature: signature,
	}
}

// finalityProof returns the proof of the block finalized by the precommits
// of the authorities given.
func finalityProof(t *testing.T, headers []types.Header, block types.BlockID, round, setID uint64,
	signers ...testAuthority) types.FinalizedBlockProof {
	t.Helper()

	precommits := make([]types.SignedPrecommit, len(signers))
	for i, signer := range signers {
		precommits[i] = signPrecommit(t, signer, block, round, setID)
	}

	return types.FinalizedBlockProof{
		Headers: headers,
		Commit: types.Commit{
			TargetHash:   block.Hash,
			TargetNumber: block.Number,
			Precommits:   precommits,
		},
		Round: round,
		SetID: setID,
	}
}

func moduleEvents(t *testing.T, s state.Storage) []any {
	t.Helper()

	records, err := state.Events(s)
	require.NoError(t, err)
	events, err := ModuleEvents(records)
	require.NoError(t, err)

	values := make([]any, len(events))
	for i, event := range events {
		values[i] = event
	}
	return values
}
