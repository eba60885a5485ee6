// Copyright 2023 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package grandpa

import (
	"github.com/tidwall/btree"
	"golang.org/x/exp/constraints"
)

// CommitValidationResult is type returned from `ValidateCommit` with information
// about the validation result.
type CommitValidationResult[Hash, Number any, ID Identity[ID]] struct {
	valid                   bool
	ghost                   *HashNumber[Hash, Number]
	equivocators            []ID
	numPrecommits           uint
	numDuplicatedPrecommits uint
	numEquivocations        uint
	numInvalidVoters        uint
}

// Valid returns `true` if the commit is valid, which implies that the target
// block in the commit is finalized.
func (cvr CommitValidationResult[Hash, Number, ID]) Valid() bool {
	return cvr.valid
}

// Ghost returns the block supported by a supermajority of the precommits,
// or nil if there is none.
func (cvr CommitValidationResult[Hash, Number, ID]) Ghost() *HashNumber[Hash, Number] {
	return cvr.ghost
}

// Equivocators returns the voters that cast two different precommits,
// in ascending order.
func (cvr CommitValidationResult[Hash, Number, ID]) Equivocators() []ID {
	return cvr.equivocators
}

// NumPrecommits returns the number of precommits in the commit.
func (cvr CommitValidationResult[Hash, Number, ID]) NumPrecommits() uint {
	return cvr.numPrecommits
}

// NumDuplicatedPrecommits returns the number of duplicate precommits in the commit.
func (cvr CommitValidationResult[Hash, Number, ID]) NumDuplicatedPrecommits() uint {
	return cvr.numDuplicatedPrecommits
}

// NumEquivocations returns the number of equivocated precommits in the commit.
func (cvr CommitValidationResult[Hash, Number, ID]) NumEquivocations() uint {
	return cvr.numEquivocations
}

// NumInvalidVoters returns the number of invalid voters in the commit, i.e. votes from
// identities that are not part of the voter set.
func (cvr CommitValidationResult[Hash, Number, ID]) NumInvalidVoters() uint {
	return cvr.numInvalidVoters
}

// ValidateCommit validates a GRANDPA commit message.
//
// For a commit to be valid the round ghost is calculated using the precommits
// in the commit message, making sure that it exists and that it is the same
// as the commit target. The precommit with the lowest block number is used as
// the round base, and every precommit target must be linked to it through the
// chain, otherwise an error wrapping ErrNotDescendant or ErrInconsistentNumber
// is returned.
//
// Signatures on precommits are assumed to have been checked.
//
// Duplicate votes or votes from voters not in the voter-set are ignored.
// A voter casting two different precommits counts towards every block; a
// voter casting more than two makes the commit invalid.
func ValidateCommit[
	Hash comparable,
	Number constraints.Unsigned,
	Signature any,
	ID Identity[ID],
](
	commit Commit[Hash, Number, Signature, ID],
	voters VoterSet[ID],
	chain Chain[Hash, Number],
) (CommitValidationResult[Hash, Number, ID], error) {
	validationResult := CommitValidationResult[Hash, Number, ID]{
		numPrecommits: uint(len(commit.Precommits)),
	}

	// filter any precommits by voters that are not part of the set
	var validPrecommits []SignedPrecommit[Hash, Number, Signature, ID]
	for _, signed := range commit.Precommits {
		if !voters.Contains(signed.ID) {
			validationResult.numInvalidVoters++
			continue
		}
		validPrecommits = append(validPrecommits, signed)
	}

	if len(validPrecommits) == 0 {
		return validationResult, nil
	}

	// the base of the round should be the lowest block for which we can find a
	// precommit (any vote would only have been accepted if it was targeting a
	// block higher or equal to the round base)
	base := HashNumber[Hash, Number]{
		Hash:   validPrecommits[0].Precommit.TargetHash,
		Number: validPrecommits[0].Precommit.TargetNumber,
	}
	for _, signed := range validPrecommits[1:] {
		if signed.Precommit.TargetNumber < base.Number {
			base.Hash = signed.Precommit.TargetHash
			base.Number = signed.Precommit.TargetNumber
		}
	}

	graph := newVoteGraph[Hash, Number, ID](base, chain)
	votes := make(map[ID][]Precommit[Hash, Number], len(validPrecommits))
	equivocated := btree.NewBTreeG(func(a, b ID) bool {
		return a.Compare(b) < 0
	})
	tooManyVotes := false

	for _, signed := range validPrecommits {
		previous := votes[signed.ID]
		duplicated := false
		for _, vote := range previous {
			if vote == signed.Precommit {
				duplicated = true
				break
			}
		}
		if duplicated {
			validationResult.numDuplicatedPrecommits++
			continue
		}

		err := graph.insert(HashNumber[Hash, Number]{
			Hash:   signed.Precommit.TargetHash,
			Number: signed.Precommit.TargetNumber,
		}, signed.ID)
		if err != nil {
			return CommitValidationResult[Hash, Number, ID]{}, err
		}

		votes[signed.ID] = append(previous, signed.Precommit)
		if len(previous) == 0 {
			continue
		}

		validationResult.numEquivocations++
		// allow only one equivocation per voter, as extras are redundant.
		if _, has := equivocated.Get(signed.ID); has {
			tooManyVotes = true
			continue
		}
		equivocated.Set(signed.ID)
	}

	equivocators := make(map[ID]struct{}, equivocated.Len())
	equivocated.Scan(func(id ID) bool {
		equivocators[id] = struct{}{}
		validationResult.equivocators = append(validationResult.equivocators, id)
		return true
	})

	if tooManyVotes {
		return validationResult, nil
	}

	// for the commit to be valid, then a precommit ghost must be found for the
	// round and it must be equal to the commit target
	validationResult.ghost = graph.ghost(voters, equivocators)
	if validationResult.ghost != nil && *validationResult.ghost == commit.Target() {
		validationResult.valid = true
	}

	return validationResult, nil
}
