// Copyright 2021 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package types

import (
	"fmt"

	"github.com/ChainSafe/gossamer/lib/common"

	grandpa "github.com/ChainSafe/grandpa-accountability/pkg/finality-grandpa"
)

// BlockID is a block hash and number pair.
type BlockID = grandpa.HashNumber[common.Hash, uint32]

type (
	// Prevote is a GRANDPA prevote for a block and its ancestors.
	Prevote = grandpa.Prevote[common.Hash, uint32]
	// Precommit is a GRANDPA precommit for a block and its ancestors.
	Precommit = grandpa.Precommit[common.Hash, uint32]
	// SignedPrecommit is a precommit signed by an authority.
	SignedPrecommit = grandpa.SignedPrecommit[common.Hash, uint32, AuthoritySignature, AuthorityID]
	// SignedPrevote is a prevote signed by an authority.
	SignedPrevote = grandpa.SignedPrevote[common.Hash, uint32, AuthoritySignature, AuthorityID]
	// Commit is an aggregate of precommits claiming the finalization of its target.
	Commit = grandpa.Commit[common.Hash, uint32, AuthoritySignature, AuthorityID]
	// VoterSet is the weighted authority set used for supermajority computations.
	VoterSet = grandpa.VoterSet[AuthorityID]
)

// NewPrevote returns a prevote for the block given.
func NewPrevote(hash common.Hash, number uint32) Prevote {
	return Prevote{TargetHash: hash, TargetNumber: number}
}

// NewPrecommit returns a precommit for the block given.
func NewPrecommit(hash common.Hash, number uint32) Precommit {
	return Precommit{TargetHash: hash, TargetNumber: number}
}

// Vote is a prevote or a precommit.
type Vote interface {
	Prevote | Precommit
}

// VoteTarget returns the block targeted by a vote.
func VoteTarget[V Vote](vote V) BlockID {
	switch vote := any(vote).(type) {
	case Prevote:
		return BlockID{Hash: vote.TargetHash, Number: vote.TargetNumber}
	case Precommit:
		return BlockID{Hash: vote.TargetHash, Number: vote.TargetNumber}
	default:
		panic(fmt.Sprintf("unsupported vote type %T", vote))
	}
}

// VoteStage is the stage of a vote, prefixing its localized payload.
type VoteStage byte

const (
	// PrevoteStage is the prevote stage
	PrevoteStage VoteStage = iota
	// PrecommitStage is the precommit stage
	PrecommitStage
	// PrimaryProposalStage is the primary proposal stage
	PrimaryProposalStage
)

func (s VoteStage) String() string {
	switch s {
	case PrevoteStage:
		return "prevote"
	case PrecommitStage:
		return "precommit"
	case PrimaryProposalStage:
		return "primary proposal"
	default:
		return "unknown"
	}
}

// StageOf returns the stage of the vote type.
func StageOf[V Vote]() VoteStage {
	var vote V
	if _, ok := any(vote).(Precommit); ok {
		return PrecommitStage
	}
	return PrevoteStage
}

// VoteMessage is the vote part of a localized payload.
type VoteMessage struct {
	Hash   common.Hash
	Number uint32
}

// FullVote is the structure whose SCALE encoding is signed by authorities.
type FullVote struct {
	Stage VoteStage
	Vote  VoteMessage
	Round uint64
	SetID uint64
}

// VoteSignature is a vote with its signature.
type VoteSignature[V Vote] struct {
	Vote      V
	Signature AuthoritySignature
}

// Equivocation is two different votes cast by the same authority in a round.
type Equivocation[V Vote] struct {
	RoundNumber uint64
	Identity    AuthorityID
	First       VoteSignature[V]
	Second      VoteSignature[V]
}

// EquivocationProof is an equivocation scoped to an authority set.
type EquivocationProof[V Vote] struct {
	SetID        uint64
	Equivocation Equivocation[V]
}

type (
	// PrevoteEquivocationProof proves two conflicting prevotes.
	PrevoteEquivocationProof = EquivocationProof[Prevote]
	// PrecommitEquivocationProof proves two conflicting precommits.
	PrecommitEquivocationProof = EquivocationProof[Precommit]
)

// ChallengedVote is a signed vote offered in a rejecting set.
type ChallengedVote[V Vote] struct {
	Vote      V
	Authority AuthorityID
	Signature AuthoritySignature
}

// RejectingVoteSet is a set of votes disputing a finalization, together with
// the headers linking the vote targets.
type RejectingVoteSet[V Vote] struct {
	Headers []Header
	Votes   []ChallengedVote[V]
	Round   uint64
	SetID   uint64
}

// Commit reconstructs a commit for the target given out of the votes.
func (rs RejectingVoteSet[V]) Commit(target BlockID) Commit {
	precommits := make([]SignedPrecommit, len(rs.Votes))
	for i, challenged := range rs.Votes {
		voteTarget := VoteTarget(challenged.Vote)
		precommits[i] = SignedPrecommit{
			Precommit: NewPrecommit(voteTarget.Hash, voteTarget.Number),
			Signature: challenged.Signature,
			ID:        challenged.Authority,
		}
	}
	return Commit{
		TargetHash:   target.Hash,
		TargetNumber: target.Number,
		Precommits:   precommits,
	}
}

// FinalizedBlockProof is a commit with the headers linking its precommit targets.
type FinalizedBlockProof struct {
	Headers []Header
	Commit  Commit
	Round   uint64
	SetID   uint64
}

// Challenge disputes the finalization of a block proven by a commit.
type Challenge[V Vote] struct {
	FinalizedBlock      BlockID
	FinalizedBlockProof FinalizedBlockProof
	RejectingSet        RejectingVoteSet[V]
	PreviousChallenge   *common.Hash
}

// Hash returns the blake2b hash of the SCALE encoded challenge.
func (c Challenge[V]) Hash() (common.Hash, error) {
	return scaleHash(c)
}

type (
	// PrevoteChallenge disputes a finalization with a set of prevotes.
	PrevoteChallenge = Challenge[Prevote]
	// PrecommitChallenge disputes a finalization with a set of precommits.
	PrecommitChallenge = Challenge[Precommit]
)

// ScheduledChange is a scheduled change of the authority set.
type ScheduledChange struct {
	NextAuthorities AuthorityList
	Delay           uint32
}
