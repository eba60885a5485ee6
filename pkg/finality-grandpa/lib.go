// Copyright 2023 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package grandpa

import (
	"errors"
)

var (
	// ErrNotDescendant is returned when a vote target cannot be linked
	// to the round base through the chain.
	ErrNotDescendant = errors.New("block is not a descendant of base")
	// ErrInconsistentNumber is returned when the claimed number of a vote
	// target does not match its depth over the round base.
	ErrInconsistentNumber = errors.New("block number inconsistent with ancestry")
)

// HashNumber contains a block hash and block number
type HashNumber[Hash, Number any] struct {
	Hash   Hash
	Number Number
}

type targetHashTargetNumber[Hash, Number any] struct {
	TargetHash   Hash
	TargetNumber Number
}

// Prevote is a prevote for a block and its ancestors.
type Prevote[Hash, Number any] targetHashTargetNumber[Hash, Number]

// Precommit is a precommit for a block and its ancestors.
type Precommit[Hash, Number any] targetHashTargetNumber[Hash, Number]

// Chain context necessary for implementation of the finality gadget.
type Chain[Hash, Number comparable] interface {
	// Get the ancestry of a block up to but not including the base hash.
	// Should be in reverse order from `block`'s parent.
	//
	// If the block is not a descendent of `base`, returns an error.
	Ancestry(base, block Hash) ([]Hash, error)
	// Returns true if `block` is a descendent of or equal to the given `base`.
	IsEqualOrDescendantOf(base, block Hash) bool
}

// Identity is a voter identity. Identities are totally ordered,
// Compare returning a negative number, zero or a positive number
// when the receiver sorts before, equal to or after other.
type Identity[ID any] interface {
	comparable
	Compare(other ID) int
}

// VoteSignature is a vote together with the signature over it.
type VoteSignature[Vote, Signature any] struct {
	Vote      Vote
	Signature Signature
}

// Equivocation is an equivocation (double-vote) in a given round.
type Equivocation[ID, Vote, Signature any] struct {
	// The round number equivocated in.
	RoundNumber uint64
	// The identity of the equivocator.
	Identity ID
	// The first vote in the equivocation.
	First VoteSignature[Vote, Signature]
	// The second vote in the equivocation.
	Second VoteSignature[Vote, Signature]
}

// SignedPrevote is a signed prevote message.
type SignedPrevote[Hash, Number, Signature, ID any] struct {
	// The prevote message which has been signed.
	Prevote Prevote[Hash, Number]
	// The signature on the message.
	Signature Signature
	// The ID of the signer.
	ID ID
}

// SignedPrecommit is a signed precommit message.
type SignedPrecommit[Hash, Number, Signature, ID any] struct {
	// The precommit message which has been signed.
	Precommit Precommit[Hash, Number]
	// The signature on the message.
	Signature Signature
	// The ID of the signer.
	ID ID
}

// Commit is a commit message which is an aggregate of precommits.
type Commit[Hash, Number, Signature, ID any] struct {
	// The target block's hash.
	TargetHash Hash
	// The target block's number.
	TargetNumber Number
	// Precommits for target block or any block after it that justify this commit.
	Precommits []SignedPrecommit[Hash, Number, Signature, ID]
}

// Target returns the target block of the commit.
func (c Commit[Hash, Number, Signature, ID]) Target() HashNumber[Hash, Number] {
	return HashNumber[Hash, Number]{Hash: c.TargetHash, Number: c.TargetNumber}
}
