// Copyright 2021 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package grandpa

import (
	"fmt"

	"github.com/ChainSafe/grandpa-accountability/dot/state"
	"github.com/ChainSafe/grandpa-accountability/dot/types"
)

// ReportPrevoteEquivocation reports an authority which cast two different
// prevotes in the same round.
func (m *Module) ReportPrevoteEquivocation(s state.Storage, proof types.PrevoteEquivocationProof) error {
	return reportEquivocation(m, s, PrevoteEquivocation, proof)
}

// ReportPrecommitEquivocation reports an authority which cast two different
// precommits in the same round.
func (m *Module) ReportPrecommitEquivocation(s state.Storage, proof types.PrecommitEquivocationProof) error {
	return reportEquivocation(m, s, PrecommitEquivocation, proof)
}

func reportEquivocation[V types.Vote](m *Module, s state.Storage, kind OffenceKind,
	proof types.EquivocationProof[V]) error {
	equivocation := proof.Equivocation
	if equivocation.First.Vote == equivocation.Second.Vote {
		return ErrIdenticalVotes
	}

	voters, err := m.setVoters(s, proof.SetID)
	if err != nil {
		return err
	}
	if !voters.Contains(equivocation.Identity) {
		return fmt.Errorf("%w: %s in set %d", ErrNotAuthority, equivocation.Identity, proof.SetID)
	}

	for _, signed := range []types.VoteSignature[V]{equivocation.First, equivocation.Second} {
		err = CheckVoteSignature(equivocation.Identity, signed.Vote, signed.Signature,
			equivocation.RoundNumber, proof.SetID)
		if err != nil {
			return err
		}
	}

	reported, err := m.offences.report(s, kind, proof.SetID, equivocation.RoundNumber,
		[]types.AuthorityID{equivocation.Identity})
	if err != nil {
		return fmt.Errorf("reporting %s: %w", kind, err)
	}
	if len(reported) == 0 {
		return nil
	}

	return depositEvent(s, EquivocationReportedEvent{
		Stage:    types.StageOf[V](),
		SetID:    proof.SetID,
		Round:    equivocation.RoundNumber,
		Offender: equivocation.Identity,
	})
}
