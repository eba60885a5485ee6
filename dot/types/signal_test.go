// Copyright 2021 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package types

import (
	"testing"

	"github.com/ChainSafe/gossamer/lib/common"
	"github.com/ChainSafe/gossamer/pkg/scale"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHeader(parent common.Hash, number uint32) Header {
	return Header{
		ParentHash: parent,
		Number:     number,
		StateRoot:  common.Hash{0x01},
		Digest: Digest{
			{Kind: PreRuntimeDigestKind, EngineID: ConsensusEngineID{'B', 'A', 'B', 'E'}, Data: []byte{byte(number)}},
		},
	}
}

func newTestAuthorities() AuthorityList {
	return AuthorityList{
		{ID: AuthorityID{0xa}, Weight: 1},
		{ID: AuthorityID{0xb}, Weight: 2},
	}
}

func newTestPrecommitChallenge() PrecommitChallenge {
	first := newTestHeader(common.Hash{0xff}, 10)
	second := newTestHeader(first.Hash(), 11)
	previous := common.Hash{0xde, 0xad}

	return PrecommitChallenge{
		FinalizedBlock: second.BlockID(),
		FinalizedBlockProof: FinalizedBlockProof{
			Headers: []Header{first, second},
			Commit: Commit{
				TargetHash:   second.Hash(),
				TargetNumber: 11,
				Precommits: []SignedPrecommit{{
					Precommit: NewPrecommit(second.Hash(), 11),
					Signature: AuthoritySignature{0x1},
					ID:        AuthorityID{0xa},
				}},
			},
			Round: 4,
			SetID: 1,
		},
		RejectingSet: RejectingVoteSet[Precommit]{
			Headers: []Header{first},
			Votes: []ChallengedVote[Precommit]{{
				Vote:      NewPrecommit(first.Hash(), 10),
				Authority: AuthorityID{0xb},
				Signature: AuthoritySignature{0x2},
			}},
			Round: 5,
			SetID: 1,
		},
		PreviousChallenge: &previous,
	}
}

func Test_Signal_RoundTrip(t *testing.T) {
	t.Parallel()

	precommitChallenge := newTestPrecommitChallenge()
	prevoteChallenge := PrevoteChallenge{
		FinalizedBlock:      precommitChallenge.FinalizedBlock,
		FinalizedBlockProof: precommitChallenge.FinalizedBlockProof,
		RejectingSet: RejectingVoteSet[Prevote]{
			Headers: precommitChallenge.RejectingSet.Headers,
			Votes: []ChallengedVote[Prevote]{{
				Vote:      NewPrevote(common.Hash{0x3}, 10),
				Authority: AuthorityID{0xa},
				Signature: AuthoritySignature{0x4},
			}},
			Round: 5,
			SetID: 1,
		},
	}

	testCases := map[string]scale.VaryingDataTypeValue{
		"authorities_change": AuthoritiesChangeSignal{
			Change: ScheduledChange{NextAuthorities: newTestAuthorities(), Delay: 5},
		},
		"forced_authorities_change": ForcedAuthoritiesChangeSignal{
			Median: 3,
			Change: ScheduledChange{NextAuthorities: newTestAuthorities(), Delay: 0},
		},
		"prevote_challenge":   PrevoteChallengeSignal{Challenge: prevoteChallenge},
		"precommit_challenge": PrecommitChallengeSignal{Challenge: precommitChallenge},
	}

	for name, value := range testCases {
		value := value
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			item, err := NewSignalDigest(value)
			require.NoError(t, err)
			assert.Equal(t, ConsensusDigestKind, item.Kind)
			assert.Equal(t, GrandpaEngineID, item.EngineID)

			digest := Digest{
				{Kind: PreRuntimeDigestKind, EngineID: GrandpaEngineID, Data: []byte{1}},
				item,
			}
			decoded := SignalFromDigest(digest)

			diff := cmp.Diff(value, decoded, cmpopts.EquateEmpty())
			assert.Empty(t, diff)
		})
	}
}

func Test_SignalFromDigest_Absent(t *testing.T) {
	t.Parallel()

	item, err := NewSignalDigest(AuthoritiesChangeSignal{
		Change: ScheduledChange{NextAuthorities: newTestAuthorities(), Delay: 1},
	})
	require.NoError(t, err)

	otherEngine := item
	otherEngine.EngineID = ConsensusEngineID{'B', 'A', 'B', 'E'}

	testCases := map[string]Digest{
		"empty":        nil,
		"other_engine": {otherEngine},
		"seal_kind":    {{Kind: SealDigestKind, EngineID: GrandpaEngineID, Data: item.Data}},
		"malformed":    {{Kind: ConsensusDigestKind, EngineID: GrandpaEngineID, Data: []byte{9, 9}}},
		"malformed_first_matching_entry": {
			{Kind: ConsensusDigestKind, EngineID: GrandpaEngineID, Data: []byte{0}},
			item,
		},
	}

	for name, digest := range testCases {
		digest := digest
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			assert.Nil(t, SignalFromDigest(digest))
			assert.Nil(t, PendingChangeFromDigest(digest))
			assert.Nil(t, ForcedChangeFromDigest(digest))
			assert.Nil(t, PrevoteChallengeFromDigest(digest))
			assert.Nil(t, PrecommitChallengeFromDigest(digest))
		})
	}
}

func Test_SignalFromDigest_Helpers(t *testing.T) {
	t.Parallel()

	change := ScheduledChange{NextAuthorities: newTestAuthorities(), Delay: 7}

	scheduled, err := NewSignalDigest(AuthoritiesChangeSignal{Change: change})
	require.NoError(t, err)
	pending := PendingChangeFromDigest(Digest{scheduled})
	require.NotNil(t, pending)
	assert.Equal(t, change, *pending)
	assert.Nil(t, ForcedChangeFromDigest(Digest{scheduled}))

	forced, err := NewSignalDigest(ForcedAuthoritiesChangeSignal{Median: 2, Change: change})
	require.NoError(t, err)
	forcedChange := ForcedChangeFromDigest(Digest{forced})
	require.NotNil(t, forcedChange)
	assert.Equal(t, uint32(2), forcedChange.Median)
	assert.Nil(t, PendingChangeFromDigest(Digest{forced}))

	challenge := newTestPrecommitChallenge()
	signalled, err := NewSignalDigest(PrecommitChallengeSignal{Challenge: challenge})
	require.NoError(t, err)
	decoded := PrecommitChallengeFromDigest(Digest{signalled})
	require.NotNil(t, decoded)
	assert.Equal(t, challenge.FinalizedBlock, decoded.FinalizedBlock)
	assert.Nil(t, PrevoteChallengeFromDigest(Digest{signalled}))
}

func Test_NewSignalDigest_Encoding(t *testing.T) {
	t.Parallel()

	item, err := NewSignalDigest(AuthoritiesChangeSignal{
		Change: ScheduledChange{
			NextAuthorities: AuthorityList{{ID: AuthorityID{0xa}, Weight: 1}},
			Delay:           5,
		},
	})
	require.NoError(t, err)

	expected := []byte{0}             // variant index
	expected = append(expected, 1<<2) // one authority, compact encoded
	expected = append(expected, 0xa)  // authority id
	expected = append(expected, make([]byte, 31)...)
	expected = append(expected, 1, 0, 0, 0, 0, 0, 0, 0) // weight
	expected = append(expected, 5, 0, 0, 0)             // delay
	assert.Equal(t, expected, item.Data)
}
