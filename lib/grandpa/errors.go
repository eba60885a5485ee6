// Copyright 2021 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package grandpa

import (
	"errors"
)

var (
	// ErrChangeAlreadyPending is returned when scheduling a change while
	// another one is pending.
	ErrChangeAlreadyPending = errors.New("attempt to signal GRANDPA change with one already pending")
	// ErrForcedTooSoon is returned when scheduling a forced change before the
	// cooldown of the previous forced change elapsed.
	ErrForcedTooSoon = errors.New("cannot signal forced change so soon after last")

	// ErrBadSignature is returned when a vote signature does not verify
	// against its localized payload.
	ErrBadSignature = errors.New("bad signature")
	// ErrIdenticalVotes is returned when an equivocation proof holds the same
	// vote twice.
	ErrIdenticalVotes = errors.New("votes are the same")

	// ErrInvalidAncestry is returned when the votes of a commit cannot be linked
	// to a common base through the headers supplied with it.
	ErrInvalidAncestry = errors.New("invalid ancestry")
	// ErrAncestryTooLarge is returned when more headers are supplied than the
	// module accepts in a single proof.
	ErrAncestryTooLarge = errors.New("ancestry too large")

	// ErrInvalidFinalityProof is returned when the finality proof of a challenge
	// does not finalize the block it claims.
	ErrInvalidFinalityProof = errors.New("invalid proof of finalized block")
	// ErrChallengeDoesNotRefute is returned when the rejecting set of a challenge
	// supports the block it disputes.
	ErrChallengeDoesNotRefute = errors.New("challenge does not refute finalized block")
	// ErrNoSuchChallenge is returned when answering a challenge that is not pending.
	ErrNoSuchChallenge = errors.New("no such challenge")
	// ErrDuplicateChallenge is returned when a session already disputes the same
	// block in the same round.
	ErrDuplicateChallenge = errors.New("challenge already pending")

	// ErrNotAuthority is returned when a vote is cast by an identity which is
	// not an authority of the set it is cast in.
	ErrNotAuthority = errors.New("not an authority of the set")

	// ErrBadOrigin is returned when a call is dispatched with an origin it
	// does not accept.
	ErrBadOrigin = errors.New("bad origin")
	// ErrUnknownCall is returned when dispatching a call index which is not
	// in the call table.
	ErrUnknownCall = errors.New("unknown call")
	// ErrInherentCall is returned when submitting a call which only the block
	// producer can include in a block.
	ErrInherentCall = errors.New("inherent call")
	// ErrUnknownSetID is returned when a proof refers to an authority set
	// whose authorities are not stored.
	ErrUnknownSetID = errors.New("unknown authority set id")
)
