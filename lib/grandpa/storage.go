// Copyright 2021 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package grandpa

import (
	"fmt"

	"github.com/ChainSafe/gossamer/lib/common"
	"github.com/ChainSafe/gossamer/pkg/scale"

	"github.com/ChainSafe/grandpa-accountability/dot/state"
	"github.com/ChainSafe/grandpa-accountability/dot/types"
)

// StoredPendingChange is a scheduled authority set change awaiting its
// signalling and application.
type StoredPendingChange struct {
	ScheduledAt     uint32
	Delay           uint32
	NextAuthorities types.AuthorityList
	// Forced is the median last finalized block number if the change is forced.
	Forced *uint32
}

// EffectiveAt returns the block number at which the change is applied.
func (c StoredPendingChange) EffectiveAt() uint32 {
	return c.ScheduledAt + c.Delay
}

type legacyStoredPendingChange struct {
	ScheduledAt     uint32
	Delay           uint32
	NextAuthorities types.AuthorityList
}

// decodeStoredPendingChange decodes a pending change, accepting the
// encoding without the forced field.
func decodeStoredPendingChange(encoded []byte) (change StoredPendingChange, err error) {
	err = scale.Unmarshal(encoded, &change)
	if err == nil {
		return change, nil
	}

	var legacy legacyStoredPendingChange
	legacyErr := scale.Unmarshal(encoded, &legacy)
	if legacyErr != nil {
		return change, fmt.Errorf("decoding pending change: %w", err)
	}

	return StoredPendingChange{
		ScheduledAt:     legacy.ScheduledAt,
		Delay:           legacy.Delay,
		NextAuthorities: legacy.NextAuthorities,
	}, nil
}

// StalledState is recorded when finality stalls, for the next session
// rotation to force an authority set change.
type StalledState struct {
	FurtherWait uint32
	Median      uint32
}

// StoredChallengeSession is a challenge awaiting an answer.
type StoredChallengeSession struct {
	ID          common.Hash
	ScheduledAt uint32
	Delay       uint32
	ParentHash  common.Hash
	SetID       uint64

	PrevoteChallenge   *types.PrevoteChallenge
	PrecommitChallenge *types.PrecommitChallenge

	// Accused are the signers of the disputed finality proof.
	Accused []types.AuthorityID
}

// ExpiresAt returns the block number from which the session is expired.
func (s StoredChallengeSession) ExpiresAt() uint32 {
	return s.ScheduledAt + s.Delay
}

// Disputes returns the block and rejecting round the session disputes.
func (s StoredChallengeSession) Disputes() (block types.BlockID, round uint64) {
	switch {
	case s.PrecommitChallenge != nil:
		return s.PrecommitChallenge.FinalizedBlock, s.PrecommitChallenge.RejectingSet.Round
	case s.PrevoteChallenge != nil:
		return s.PrevoteChallenge.FinalizedBlock, s.PrevoteChallenge.RejectingSet.Round
	default:
		return block, 0
	}
}

type offenceKey struct {
	SetID     uint64
	Round     uint64
	Authority types.AuthorityID
}

var (
	authorities       = state.NewStorageValue[types.AuthorityList](ModuleName, "Authorities")
	pendingChange     = state.NewStorageValueWithDecoder[StoredPendingChange](ModuleName, "PendingChange", decodeStoredPendingChange)
	nextForced        = state.NewStorageValue[uint32](ModuleName, "NextForced")
	stalled           = state.NewStorageValue[StalledState](ModuleName, "Stalled")
	currentSetID      = state.NewStorageValue[uint64](ModuleName, "CurrentSetId")
	setAuthorities    = state.NewStorageMap[uint64, types.AuthorityList](ModuleName, "SetAuthorities")
	pendingChallenges = state.NewStorageValue[[]StoredChallengeSession](ModuleName, "PendingChallenges")
	challengeSessions = state.NewStorageValue[[]StoredChallengeSession](ModuleName, "ChallengeSessions")
	reportedOffences  = state.NewStorageMap[offenceKey, bool](ModuleName, "ReportedOffences")
)

// InitialiseGenesis stores the genesis authority set as set 0.
func InitialiseGenesis(s state.Storage, genesisAuthorities types.AuthorityList) error {
	if len(genesisAuthorities) == 0 {
		return fmt.Errorf("%w: empty genesis authority set", ErrUnknownSetID)
	}

	err := authorities.Put(s, genesisAuthorities)
	if err != nil {
		return err
	}

	err = currentSetID.Put(s, 0)
	if err != nil {
		return err
	}

	return setAuthorities.Insert(s, 0, genesisAuthorities)
}

// Authorities returns the current authority set.
func Authorities(s state.Storage) (types.AuthorityList, error) {
	return authorities.Get(s)
}

// CurrentSetID returns the id of the current authority set.
func CurrentSetID(s state.Storage) (uint64, error) {
	return currentSetID.Get(s)
}

// SetAuthorities returns the authorities of the set id given.
func SetAuthorities(s state.Storage, setID uint64) (types.AuthorityList, error) {
	list, err := setAuthorities.Get(s, setID)
	if err != nil {
		return nil, err
	}
	if list == nil {
		return nil, fmt.Errorf("%w: %d", ErrUnknownSetID, setID)
	}
	return *list, nil
}

// PendingChange returns the pending authority set change, or nil.
func PendingChange(s state.Storage) (*StoredPendingChange, error) {
	return pendingChange.TryGet(s)
}

// NextForced returns the block number before which no forced change can be
// scheduled, or nil.
func NextForced(s state.Storage) (*uint32, error) {
	return nextForced.TryGet(s)
}

// Stalled returns the recorded finality stall, or nil.
func Stalled(s state.Storage) (*StalledState, error) {
	return stalled.TryGet(s)
}

// ChallengeSessions returns the challenge sessions awaiting an answer, in
// the order they were opened.
func ChallengeSessions(s state.Storage) ([]StoredChallengeSession, error) {
	return challengeSessions.Get(s)
}
