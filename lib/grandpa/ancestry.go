// Copyright 2021 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package grandpa

import (
	"fmt"

	"github.com/ChainSafe/gossamer/lib/common"

	"github.com/ChainSafe/grandpa-accountability/dot/types"
	finality "github.com/ChainSafe/grandpa-accountability/pkg/finality-grandpa"
)

var _ finality.Chain[common.Hash, uint32] = (*AncestryChain)(nil)

// AncestryChain is the chain formed by a set of headers, used to link
// vote targets to each other.
type AncestryChain struct {
	headers map[common.Hash]types.Header
}

// NewAncestryChain returns the chain formed by the headers given.
func NewAncestryChain(headers []types.Header) *AncestryChain {
	chain := &AncestryChain{
		headers: make(map[common.Hash]types.Header, len(headers)),
	}
	for _, header := range headers {
		chain.headers[header.Hash()] = header
	}
	return chain
}

// Contains returns true if the header of the block is in the chain.
func (ac *AncestryChain) Contains(hash common.Hash) bool {
	_, ok := ac.headers[hash]
	return ok
}

// Ancestry returns the ancestors of the block down to but excluding the base,
// starting from the parent of the block.
func (ac *AncestryChain) Ancestry(base, block common.Hash) ([]common.Hash, error) {
	var ancestry []common.Hash
	current := block
	for {
		header, ok := ac.headers[current]
		if !ok || len(ancestry) > len(ac.headers) {
			return nil, fmt.Errorf("%w: %s does not link to %s",
				finality.ErrNotDescendant, block, base)
		}

		if header.ParentHash == base {
			return ancestry, nil
		}

		ancestry = append(ancestry, header.ParentHash)
		current = header.ParentHash
	}
}

// IsEqualOrDescendantOf returns true if the block is the base or links to it.
func (ac *AncestryChain) IsEqualOrDescendantOf(base, block common.Hash) bool {
	if base == block {
		return true
	}
	_, err := ac.Ancestry(base, block)
	return err == nil
}

// voterSet returns the voter set of the authorities given.
func voterSet(list types.AuthorityList) (*types.VoterSet, error) {
	weights := make([]finality.IDWeight[types.AuthorityID], len(list))
	for i, authority := range list {
		weights[i] = finality.IDWeight[types.AuthorityID]{
			ID:     authority.ID,
			Weight: finality.VoterWeight(authority.Weight),
		}
	}

	voters := finality.NewVoterSet(weights)
	if voters == nil {
		return nil, fmt.Errorf("%w: authority set of %d authorities is not a valid voter set",
			ErrUnknownSetID, len(list))
	}
	return voters, nil
}

// validateCommit validates the commit against the voters, linking its
// precommits with the headers given. Every precommit target must be
// one of the headers.
func (m *Module) validateCommit(headers []types.Header, commit types.Commit,
	voters *types.VoterSet) (*types.BlockID, error) {
	if len(headers) > m.cfg.MaxAncestryHeaders {
		return nil, fmt.Errorf("%w: %d headers exceed limit of %d",
			ErrAncestryTooLarge, len(headers), m.cfg.MaxAncestryHeaders)
	}

	chain := NewAncestryChain(headers)
	for _, precommit := range commit.Precommits {
		if !chain.Contains(precommit.Precommit.TargetHash) {
			return nil, fmt.Errorf("%w: header of vote target %s not provided",
				ErrInvalidAncestry, precommit.Precommit.TargetHash)
		}
	}

	result, err := finality.ValidateCommit[common.Hash, uint32](commit, *voters, chain)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidAncestry, err)
	}

	logger.Tracef("validated commit for %s (%d): %d precommits, %d duplicated, %d equivocations, %d invalid voters",
		commit.TargetHash, commit.TargetNumber, result.NumPrecommits(), result.NumDuplicatedPrecommits(),
		result.NumEquivocations(), result.NumInvalidVoters())

	return result.Ghost(), nil
}
