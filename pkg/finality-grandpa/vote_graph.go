// Copyright 2023 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package grandpa

import (
	"fmt"

	"golang.org/x/exp/constraints"
)

type voteNode[Hash comparable, Number any, ID comparable] struct {
	number   Number
	children []Hash
	voters   map[ID]struct{}
}

// voteGraph accumulates votes onto a tree of blocks rooted at a base
// block. A vote for a block counts for the block and every ancestor of
// it down to the base.
type voteGraph[Hash comparable, Number constraints.Unsigned, ID Identity[ID]] struct {
	base  HashNumber[Hash, Number]
	nodes map[Hash]*voteNode[Hash, Number, ID]
	chain Chain[Hash, Number]
}

func newVoteGraph[Hash comparable, Number constraints.Unsigned, ID Identity[ID]](
	base HashNumber[Hash, Number], chain Chain[Hash, Number]) *voteGraph[Hash, Number, ID] {
	nodes := map[Hash]*voteNode[Hash, Number, ID]{
		base.Hash: {
			number: base.Number,
			voters: make(map[ID]struct{}),
		},
	}
	return &voteGraph[Hash, Number, ID]{
		base:  base,
		nodes: nodes,
		chain: chain,
	}
}

// insert adds the vote of voter for target to the graph.
func (vg *voteGraph[Hash, Number, ID]) insert(target HashNumber[Hash, Number], voter ID) error {
	if target.Hash == vg.base.Hash {
		if target.Number != vg.base.Number {
			return fmt.Errorf("%w: base claimed at %d and %d",
				ErrInconsistentNumber, vg.base.Number, target.Number)
		}
		vg.nodes[target.Hash].voters[voter] = struct{}{}
		return nil
	}

	if target.Number <= vg.base.Number {
		return fmt.Errorf("%w: target number %d not above base number %d",
			ErrNotDescendant, target.Number, vg.base.Number)
	}

	ancestry, err := vg.chain.Ancestry(vg.base.Hash, target.Hash)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrNotDescendant, err)
	}

	if uint64(target.Number-vg.base.Number) != uint64(len(ancestry))+1 {
		return fmt.Errorf("%w: target number %d with %d ancestors over base number %d",
			ErrInconsistentNumber, target.Number, len(ancestry), vg.base.Number)
	}

	// path from the target down to the base, excluding the base
	path := make([]Hash, 0, len(ancestry)+1)
	path = append(path, target.Hash)
	path = append(path, ancestry...)

	parent := vg.base.Hash
	for i := len(path) - 1; i >= 0; i-- {
		hash := path[i]
		node, ok := vg.nodes[hash]
		if !ok {
			node = &voteNode[Hash, Number, ID]{
				number: target.Number - Number(i),
				voters: make(map[ID]struct{}),
			}
			vg.nodes[hash] = node
			parentNode := vg.nodes[parent]
			parentNode.children = append(parentNode.children, hash)
		}
		node.voters[voter] = struct{}{}
		parent = hash
	}
	vg.nodes[vg.base.Hash].voters[voter] = struct{}{}

	return nil
}

// weight returns the weight of the voters supporting the node. Equivocators
// support every node.
func (vg *voteGraph[Hash, Number, ID]) weight(node *voteNode[Hash, Number, ID],
	voters VoterSet[ID], equivocators map[ID]struct{}, equivocatorsWeight VoterWeight) VoterWeight {
	weight := equivocatorsWeight
	for voter := range node.voters {
		if _, equivocated := equivocators[voter]; equivocated {
			continue
		}
		info := voters.Get(voter)
		if info == nil {
			continue
		}
		weight += info.Weight()
	}
	return weight
}

// ghost returns the highest block supported by a supermajority, descending
// from the base while exactly one child reaches the threshold. It returns
// nil if the base itself is not supported by a supermajority.
func (vg *voteGraph[Hash, Number, ID]) ghost(voters VoterSet[ID],
	equivocators map[ID]struct{}) *HashNumber[Hash, Number] {
	var equivocatorsWeight VoterWeight
	for voter := range equivocators {
		if info := voters.Get(voter); info != nil {
			equivocatorsWeight += info.Weight()
		}
	}

	threshold := voters.Threshold()
	current := vg.base.Hash
	if vg.weight(vg.nodes[current], voters, equivocators, equivocatorsWeight) < threshold {
		return nil
	}

	for {
		var heavyChildren []Hash
		for _, child := range vg.nodes[current].children {
			weight := vg.weight(vg.nodes[child], voters, equivocators, equivocatorsWeight)
			if weight >= threshold {
				heavyChildren = append(heavyChildren, child)
			}
		}
		if len(heavyChildren) != 1 {
			break
		}
		current = heavyChildren[0]
	}

	return &HashNumber[Hash, Number]{
		Hash:   current,
		Number: vg.nodes[current].number,
	}
}
