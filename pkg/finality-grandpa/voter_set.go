// Copyright 2023 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package grandpa

import (
	"errors"
	"math"

	"github.com/tidwall/btree"
	"golang.org/x/exp/slices"
)

// ErrWeightOverflow is returned when the sum of voter weights overflows.
var ErrWeightOverflow = errors.New("total voter weight overflows")

// VoterWeight is the weight of a voter.
type VoterWeight uint64

// CheckedAdd adds other to the weight, returning an error on overflow.
func (vw *VoterWeight) CheckedAdd(other VoterWeight) error {
	if uint64(*vw) > math.MaxUint64-uint64(other) {
		return ErrWeightOverflow
	}
	*vw += other
	return nil
}

// IDWeight is a voter identity with its weight.
type IDWeight[ID any] struct {
	ID     ID
	Weight VoterWeight
}

type idVoterInfo[ID any] struct {
	ID ID
	VoterInfo
}

// VoterInfo is information about a voter in a `VoterSet`.
type VoterInfo struct {
	position uint
	weight   VoterWeight
}

// Position is the position of the voter in the total order of the set.
func (vi VoterInfo) Position() uint {
	return vi.position
}

// Weight is the weight of the voter.
func (vi VoterInfo) Weight() VoterWeight {
	return vi.weight
}

// A (non-empty) set of voters and associated weights.
//
// A `VoterSet` identifies all voters that are permitted to vote in a round
// of the protocol and their associated weights. A `VoterSet` is furthermore
// equipped with a total order, given by the ordering of the voter's IDs.
type VoterSet[ID Identity[ID]] struct {
	voters      []idVoterInfo[ID]
	threshold   VoterWeight
	totalWeight VoterWeight
}

// NewVoterSet creates a voter set from a weight distribution.
//
// If the distribution contains multiple weights for the same voter ID, they are
// understood to be partial weights and are accumulated. As a result, the
// order of the weights is irrelevant.
//
// Returns nil if the weights do not form a valid voter set, which is
// the case if there are no non-zero weights or if the total voter weight
// overflows.
func NewVoterSet[ID Identity[ID]](weights []IDWeight[ID]) *VoterSet[ID] {
	var totalWeight VoterWeight
	voters := btree.NewBTreeG(func(a, b idVoterInfo[ID]) bool {
		return a.ID.Compare(b.ID) < 0
	})
	for _, iw := range weights {
		if iw.Weight == 0 {
			continue
		}
		err := totalWeight.CheckedAdd(iw.Weight)
		if err != nil {
			return nil
		}
		existing, has := voters.Get(idVoterInfo[ID]{ID: iw.ID})
		if has {
			existing.weight += iw.Weight
			voters.Set(existing)
			continue
		}
		voters.Set(idVoterInfo[ID]{
			ID: iw.ID,
			VoterInfo: VoterInfo{
				position: 0, // The total order is determined afterwards.
				weight:   iw.Weight,
			},
		})
	}

	if voters.Len() == 0 {
		return nil
	}

	orderedVoters := make([]idVoterInfo[ID], 0, voters.Len())
	voters.Scan(func(voter idVoterInfo[ID]) bool {
		voter.position = uint(len(orderedVoters))
		orderedVoters = append(orderedVoters, voter)
		return true
	})

	return &VoterSet[ID]{
		voters:      orderedVoters,
		totalWeight: totalWeight,
		threshold:   threshold(totalWeight),
	}
}

// Get the voter info for the voter with the given ID, if any.
func (vs VoterSet[ID]) Get(id ID) *VoterInfo {
	idx, ok := slices.BinarySearchFunc(vs.voters, id, func(voter idVoterInfo[ID], target ID) int {
		return voter.ID.Compare(target)
	})
	if ok {
		info := vs.voters[idx].VoterInfo
		return &info
	}
	return nil
}

// Len returns the size of the set.
func (vs VoterSet[ID]) Len() int {
	return len(vs.voters)
}

// Contains returns whether the set contains a voter with the given ID.
func (vs VoterSet[ID]) Contains(id ID) bool {
	return vs.Get(id) != nil
}

// Nth returns the nth voter ID in the set, as per the associated total order.
func (vs VoterSet[ID]) Nth(n uint) (id ID, info VoterInfo, ok bool) {
	if n >= uint(len(vs.voters)) {
		return id, info, false
	}
	return vs.voters[n].ID, vs.voters[n].VoterInfo, true
}

// IDs returns the voter IDs in ascending order.
func (vs VoterSet[ID]) IDs() []ID {
	ids := make([]ID, len(vs.voters))
	for i, voter := range vs.voters {
		ids[i] = voter.ID
	}
	return ids
}

// Threshold returns the threshold vote weight required for supermajority
// w.r.t. this set of voters.
func (vs VoterSet[ID]) Threshold() VoterWeight {
	return vs.threshold
}

// TotalWeight returns the total weight of all voters.
func (vs VoterSet[ID]) TotalWeight() VoterWeight {
	return vs.totalWeight
}

// Compute the threshold weight given the total voting weight.
func threshold(totalWeight VoterWeight) VoterWeight {
	faulty := (totalWeight - 1) / 3
	return totalWeight - faulty
}
