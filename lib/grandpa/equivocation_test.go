// Copyright 2021 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package grandpa

import (
	"errors"
	"testing"

	"github.com/ChainSafe/gossamer/lib/common"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slices"

	"github.com/ChainSafe/grandpa-accountability/dot/types"
)

func newPrevoteEquivocation(t *testing.T, signer testAuthority, first, second types.Prevote,
	round, setID uint64) types.PrevoteEquivocationProof {
	t.Helper()

	firstSignature, err := SignVote(signer.keypair, first, round, setID)
	require.NoError(t, err)
	secondSignature, err := SignVote(signer.keypair, second, round, setID)
	require.NoError(t, err)

	return types.PrevoteEquivocationProof{
		SetID: setID,
		Equivocation: types.Equivocation[types.Prevote]{
			RoundNumber: round,
			Identity:    signer.id,
			First:       types.VoteSignature[types.Prevote]{Vote: first, Signature: firstSignature},
			Second:      types.VoteSignature[types.Prevote]{Vote: second, Signature: secondSignature},
		},
	}
}

func newPrecommitEquivocation(t *testing.T, signer testAuthority, first, second types.Precommit,
	round, setID uint64) types.PrecommitEquivocationProof {
	t.Helper()

	firstSignature, err := SignVote(signer.keypair, first, round, setID)
	require.NoError(t, err)
	secondSignature, err := SignVote(signer.keypair, second, round, setID)
	require.NoError(t, err)

	return types.PrecommitEquivocationProof{
		SetID: setID,
		Equivocation: types.Equivocation[types.Precommit]{
			RoundNumber: round,
			Identity:    signer.id,
			First:       types.VoteSignature[types.Precommit]{Vote: first, Signature: firstSignature},
			Second:      types.VoteSignature[types.Precommit]{Vote: second, Signature: secondSignature},
		},
	}
}

func Test_Module_ReportPrevoteEquivocation(t *testing.T) {
	t.Parallel()

	auths := newTestAuthorities(t, 3)
	voteA := types.NewPrevote(common.Hash{0xa}, 5)
	voteB := types.NewPrevote(common.Hash{0xb}, 5)
	valid := newPrevoteEquivocation(t, auths[0], voteA, voteB, 2, 0)
	identical := newPrevoteEquivocation(t, auths[0], voteA, voteA, 2, 0)

	var outsider testAuthority
	for _, authority := range newTestAuthorities(t, 4) {
		if !slices.Contains(authorityIDs(auths...), authority.id) {
			outsider = authority
		}
	}
	notAuthority := newPrevoteEquivocation(t, outsider, voteA, voteB, 2, 0)
	unknownSet := newPrevoteEquivocation(t, auths[0], voteA, voteB, 2, 7)

	testCases := map[string]struct {
		proof       func() types.PrevoteEquivocationProof
		errSentinel error
		offence     *Offence
	}{
		"valid": {
			proof: func() types.PrevoteEquivocationProof { return valid },
			offence: &Offence{
				Kind:      PrevoteEquivocation,
				SetID:     0,
				Round:     2,
				Offenders: []types.AuthorityID{auths[0].id},
			},
		},
		"identical_votes": {
			proof:       func() types.PrevoteEquivocationProof { return identical },
			errSentinel: ErrIdenticalVotes,
		},
		"identical_votes_with_garbage_signatures": {
			proof: func() types.PrevoteEquivocationProof {
				proof := valid
				proof.Equivocation.Second = proof.Equivocation.First
				proof.Equivocation.Second.Signature = types.AuthoritySignature{1}
				return proof
			},
			errSentinel: ErrIdenticalVotes,
		},
		"first_signature_flipped": {
			proof: func() types.PrevoteEquivocationProof {
				proof := valid
				proof.Equivocation.First.Signature[0] ^= 0xff
				return proof
			},
			errSentinel: ErrBadSignature,
		},
		"second_signature_flipped": {
			proof: func() types.PrevoteEquivocationProof {
				proof := valid
				proof.Equivocation.Second.Signature[63] ^= 0x01
				return proof
			},
			errSentinel: ErrBadSignature,
		},
		"identity_swapped": {
			proof: func() types.PrevoteEquivocationProof {
				proof := valid
				proof.Equivocation.Identity = auths[1].id
				return proof
			},
			errSentinel: ErrBadSignature,
		},
		"other_round": {
			proof: func() types.PrevoteEquivocationProof {
				proof := valid
				proof.Equivocation.RoundNumber = 3
				return proof
			},
			errSentinel: ErrBadSignature,
		},
		"other_set": {
			proof: func() types.PrevoteEquivocationProof {
				proof := valid
				proof.SetID = 1
				return proof
			},
			errSentinel: ErrUnknownSetID,
		},
		"unknown_set": {
			proof:       func() types.PrevoteEquivocationProof { return unknownSet },
			errSentinel: ErrUnknownSetID,
		},
		"not_an_authority": {
			proof:       func() types.PrevoteEquivocationProof { return notAuthority },
			errSentinel: ErrNotAuthority,
		},
	}

	for name, testCase := range testCases {
		testCase := testCase
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			ctrl := gomock.NewController(t)

			slasher := NewMockSlasher(ctrl)
			if testCase.offence != nil {
				slasher.EXPECT().ReportOffence(*testCase.offence).Return(nil)
			}

			s := newTestState(t, authorityList(auths...))
			m := NewModule(DefaultConfig(), slasher)

			err := m.ReportPrevoteEquivocation(s, testCase.proof())
			assert.ErrorIs(t, err, testCase.errSentinel)
		})
	}
}

func Test_Module_ReportPrecommitEquivocation(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)

	auths := newTestAuthorities(t, 3)
	s := newTestState(t, authorityList(auths...))

	slasher := NewMockSlasher(ctrl)
	slasher.EXPECT().ReportOffence(Offence{
		Kind:      PrecommitEquivocation,
		SetID:     0,
		Round:     4,
		Offenders: []types.AuthorityID{auths[2].id},
	}).Return(nil)
	m := NewModule(DefaultConfig(), slasher)

	first := types.NewPrecommit(common.Hash{1}, 3)
	second := types.NewPrecommit(common.Hash{2}, 4)
	proof := newPrecommitEquivocation(t, auths[2], first, second, 4, 0)

	err := m.ReportPrecommitEquivocation(s, proof)
	require.NoError(t, err)

	assert.Equal(t, []any{
		EquivocationReportedEvent{
			Stage:    types.PrecommitStage,
			SetID:    0,
			Round:    4,
			Offender: auths[2].id,
		},
	}, moduleEvents(t, s))

	// reported once per round
	err = m.ReportPrecommitEquivocation(s, proof)
	require.NoError(t, err)

	// a prevote signature does not prove a precommit equivocation
	prevoteSignature, err := SignVote(auths[2].keypair, types.NewPrevote(common.Hash{1}, 3), 4, 0)
	require.NoError(t, err)
	proof.Equivocation.First.Signature = prevoteSignature
	err = m.ReportPrecommitEquivocation(s, proof)
	assert.ErrorIs(t, err, ErrBadSignature)

	// signatures of set 0 do not prove an equivocation in set 1
	err = setAuthorities.Insert(s, 1, authorityList(auths...))
	require.NoError(t, err)
	proof = newPrecommitEquivocation(t, auths[2], first, second, 5, 0)
	proof.SetID = 1
	err = m.ReportPrecommitEquivocation(s, proof)
	assert.ErrorIs(t, err, ErrBadSignature)
}

func Test_Module_ReportPrecommitEquivocation_slasherError(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)

	auths := newTestAuthorities(t, 3)
	s := newTestState(t, authorityList(auths...))

	errTest := errors.New("test error")
	slasher := NewMockSlasher(ctrl)
	slasher.EXPECT().ReportOffence(gomock.Any()).Return(errTest)
	m := NewModule(DefaultConfig(), slasher)

	proof := newPrecommitEquivocation(t, auths[0],
		types.NewPrecommit(common.Hash{1}, 3), types.NewPrecommit(common.Hash{2}, 3), 1, 0)

	err := m.ReportPrecommitEquivocation(s, proof)
	assert.ErrorIs(t, err, errTest)
	assert.EqualError(t, err, "reporting precommit equivocation: reporting offence: test error")
}
