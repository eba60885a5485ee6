// Copyright 2021 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package grandpa

import (
	"testing"

	"github.com/ChainSafe/gossamer/lib/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ChainSafe/grandpa-accountability/dot/types"
	finality "github.com/ChainSafe/grandpa-accountability/pkg/finality-grandpa"
)

func Test_AncestryChain(t *testing.T) {
	t.Parallel()

	genesis := types.Header{}
	main := buildChain(genesis, 3, 1)
	fork := buildChain(main[0], 2, 2)
	chain := NewAncestryChain(append(append([]types.Header{}, main...), fork...))

	ancestry, err := chain.Ancestry(genesis.Hash(), main[2].Hash())
	require.NoError(t, err)
	assert.Equal(t, []common.Hash{main[1].Hash(), main[0].Hash()}, ancestry)

	ancestry, err = chain.Ancestry(main[0].Hash(), fork[1].Hash())
	require.NoError(t, err)
	assert.Equal(t, []common.Hash{fork[0].Hash()}, ancestry)

	_, err = chain.Ancestry(main[1].Hash(), fork[1].Hash())
	assert.ErrorIs(t, err, finality.ErrNotDescendant)

	assert.True(t, chain.Contains(fork[0].Hash()))
	assert.False(t, chain.Contains(genesis.Hash()))
	assert.True(t, chain.IsEqualOrDescendantOf(genesis.Hash(), fork[1].Hash()))
	assert.True(t, chain.IsEqualOrDescendantOf(main[1].Hash(), main[1].Hash()))
	assert.False(t, chain.IsEqualOrDescendantOf(main[2].Hash(), main[1].Hash()))
}

func Test_Module_validateCommit(t *testing.T) {
	t.Parallel()

	auths := newTestAuthorities(t, 3)
	voters, err := voterSet(authorityList(auths...))
	require.NoError(t, err)

	genesis := types.Header{}
	main := buildChain(genesis, 3, 1)
	fork := buildChain(genesis, 2, 2)
	allHeaders := append(append([]types.Header{}, main...), fork...)

	commitFor := func(target types.BlockID, votes ...types.BlockID) types.Commit {
		precommits := make([]types.SignedPrecommit, len(votes))
		for i, vote := range votes {
			precommits[i] = types.SignedPrecommit{
				Precommit: types.NewPrecommit(vote.Hash, vote.Number),
				ID:        auths[i].id,
			}
		}
		return types.Commit{TargetHash: target.Hash, TargetNumber: target.Number, Precommits: precommits}
	}

	block1 := main[0].BlockID()
	block3 := main[2].BlockID()

	testCases := map[string]struct {
		maxHeaders  int
		headers     []types.Header
		commit      types.Commit
		ghost       *types.BlockID
		errSentinel error
	}{
		"single_block_supermajority": {
			headers: main[:1],
			commit:  commitFor(block1, block1, block1),
			ghost:   &block1,
		},
		"single_block_below_supermajority": {
			headers: main[:1],
			commit:  commitFor(block1, block1),
		},
		"ghost_is_common_ancestor": {
			headers: main,
			commit:  commitFor(block3, block1, block3, main[1].BlockID()),
			ghost:   &block1,
		},
		"target_header_missing": {
			headers:     main[:2],
			commit:      commitFor(block3, block3, block3),
			errSentinel: ErrInvalidAncestry,
		},
		"target_on_other_fork": {
			headers:     allHeaders,
			commit:      commitFor(block3, block1, fork[1].BlockID()),
			errSentinel: ErrInvalidAncestry,
		},
		"number_inconsistent": {
			headers: main,
			commit: commitFor(block3, block1,
				types.BlockID{Hash: block3.Hash, Number: 7}),
			errSentinel: ErrInvalidAncestry,
		},
		"too_many_headers": {
			maxHeaders:  4,
			headers:     allHeaders,
			commit:      commitFor(block1, block1, block1),
			errSentinel: ErrAncestryTooLarge,
		},
	}

	for name, testCase := range testCases {
		testCase := testCase
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			cfg := DefaultConfig()
			if testCase.maxHeaders > 0 {
				cfg.MaxAncestryHeaders = testCase.maxHeaders
			}
			m := NewModule(cfg, nil)

			ghost, err := m.validateCommit(testCase.headers, testCase.commit, voters)
			assert.ErrorIs(t, err, testCase.errSentinel)
			assert.Equal(t, testCase.ghost, ghost)
		})
	}
}

func Test_voterSet(t *testing.T) {
	t.Parallel()

	auths := newTestAuthorities(t, 3)
	voters, err := voterSet(types.AuthorityList{
		{ID: auths[0].id, Weight: 1},
		{ID: auths[1].id, Weight: 2},
		{ID: auths[2].id, Weight: 3},
	})
	require.NoError(t, err)
	assert.Equal(t, finality.VoterWeight(6), voters.TotalWeight())
	assert.Equal(t, finality.VoterWeight(5), voters.Threshold())

	_, err = voterSet(nil)
	assert.ErrorIs(t, err, ErrUnknownSetID)
}
