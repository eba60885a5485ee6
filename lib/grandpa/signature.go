// Copyright 2021 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package grandpa

import (
	"fmt"

	"github.com/ChainSafe/gossamer/lib/crypto/ed25519"
	"github.com/ChainSafe/gossamer/pkg/scale"

	"github.com/ChainSafe/grandpa-accountability/dot/types"
)

// LocalizedPayload returns the message an authority signs for the vote
// in the round and authority set given.
func LocalizedPayload[V types.Vote](vote V, round, setID uint64) ([]byte, error) {
	target := types.VoteTarget(vote)
	return scale.Marshal(types.FullVote{
		Stage: types.StageOf[V](),
		Vote: types.VoteMessage{
			Hash:   target.Hash,
			Number: target.Number,
		},
		Round: round,
		SetID: setID,
	})
}

// SignVote signs the localized payload of the vote.
func SignVote[V types.Vote](keypair *ed25519.Keypair, vote V, round, setID uint64) (
	signature types.AuthoritySignature, err error) {
	msg, err := LocalizedPayload(vote, round, setID)
	if err != nil {
		return signature, fmt.Errorf("encoding localized payload: %w", err)
	}

	sig, err := keypair.Sign(msg)
	if err != nil {
		return signature, fmt.Errorf("signing vote: %w", err)
	}

	copy(signature[:], sig)
	return signature, nil
}

// CheckVoteSignature verifies the signature of the vote by the authority
// for the round and authority set given. It returns an error wrapping
// ErrBadSignature if the signature is not valid.
func CheckVoteSignature[V types.Vote](id types.AuthorityID, vote V,
	signature types.AuthoritySignature, round, setID uint64) error {
	pk, err := id.PublicKey()
	if err != nil {
		return fmt.Errorf("%w: decoding public key %s: %s", ErrBadSignature, id, err)
	}

	msg, err := LocalizedPayload(vote, round, setID)
	if err != nil {
		return fmt.Errorf("encoding localized payload: %w", err)
	}

	ok, err := pk.Verify(msg, signature[:])
	if err != nil {
		return fmt.Errorf("%w: %s", ErrBadSignature, err)
	}

	if !ok {
		return fmt.Errorf("%w: by authority %s in round %d of set %d",
			ErrBadSignature, id, round, setID)
	}

	return nil
}
