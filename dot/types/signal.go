// Copyright 2021 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package types

import (
	"fmt"

	"github.com/ChainSafe/gossamer/pkg/scale"
)

// AuthoritiesChangeSignal signals a scheduled change of the authority set,
// to be applied once the block it is signalled in is finalized and the
// delay elapsed.
type AuthoritiesChangeSignal struct {
	Change ScheduledChange
}

// Index returns VDT index
func (AuthoritiesChangeSignal) Index() uint { return 0 }

func (s AuthoritiesChangeSignal) String() string {
	return fmt.Sprintf("AuthoritiesChange{Authorities=%d Delay=%d}",
		len(s.Change.NextAuthorities), s.Change.Delay)
}

// ForcedAuthoritiesChangeSignal signals a forced change of the authority set.
// Median is the median last finalized block number when it was signalled.
type ForcedAuthoritiesChangeSignal struct {
	Median uint32
	Change ScheduledChange
}

// Index returns VDT index
func (ForcedAuthoritiesChangeSignal) Index() uint { return 1 }

func (s ForcedAuthoritiesChangeSignal) String() string {
	return fmt.Sprintf("ForcedAuthoritiesChange{Median=%d Authorities=%d Delay=%d}",
		s.Median, len(s.Change.NextAuthorities), s.Change.Delay)
}

// PrevoteChallengeSignal signals a new prevote challenge session.
type PrevoteChallengeSignal struct {
	Challenge PrevoteChallenge
}

// Index returns VDT index
func (PrevoteChallengeSignal) Index() uint { return 2 }

// PrecommitChallengeSignal signals a new precommit challenge session.
type PrecommitChallengeSignal struct {
	Challenge PrecommitChallenge
}

// Index returns VDT index
func (PrecommitChallengeSignal) Index() uint { return 3 }

// NewSignal returns an unset GRANDPA consensus signal.
func NewSignal() scale.VaryingDataType {
	return scale.MustNewVaryingDataType(
		AuthoritiesChangeSignal{}, ForcedAuthoritiesChangeSignal{},
		PrevoteChallengeSignal{}, PrecommitChallengeSignal{})
}

// NewSignalDigest encodes the signal value into a GRANDPA consensus digest item.
func NewSignalDigest(value scale.VaryingDataTypeValue) (DigestItem, error) {
	signal := NewSignal()
	err := signal.Set(value)
	if err != nil {
		return DigestItem{}, fmt.Errorf("setting signal: %w", err)
	}

	data, err := scale.Marshal(signal)
	if err != nil {
		return DigestItem{}, fmt.Errorf("encoding signal: %w", err)
	}

	return NewConsensusDigest(GrandpaEngineID, data), nil
}

// SignalFromDigest returns the signal of the first GRANDPA consensus item
// of the digest. It returns nil if there is no such item or if the item
// cannot be decoded.
func SignalFromDigest(digest Digest) scale.VaryingDataTypeValue {
	data := digest.ConsensusLog(GrandpaEngineID)
	if data == nil {
		return nil
	}

	signal := NewSignal()
	err := scale.Unmarshal(data, &signal)
	if err != nil {
		return nil
	}

	value, err := signal.Value()
	if err != nil {
		return nil
	}
	return value
}

// PendingChangeFromDigest returns the scheduled change signalled in
// the digest, if any.
func PendingChangeFromDigest(digest Digest) *ScheduledChange {
	signal, ok := SignalFromDigest(digest).(AuthoritiesChangeSignal)
	if !ok {
		return nil
	}
	return &signal.Change
}

// ForcedChangeFromDigest returns the forced change signalled in
// the digest, if any.
func ForcedChangeFromDigest(digest Digest) *ForcedAuthoritiesChangeSignal {
	signal, ok := SignalFromDigest(digest).(ForcedAuthoritiesChangeSignal)
	if !ok {
		return nil
	}
	return &signal
}

// PrevoteChallengeFromDigest returns the prevote challenge signalled in
// the digest, if any.
func PrevoteChallengeFromDigest(digest Digest) *PrevoteChallenge {
	signal, ok := SignalFromDigest(digest).(PrevoteChallengeSignal)
	if !ok {
		return nil
	}
	return &signal.Challenge
}

// PrecommitChallengeFromDigest returns the precommit challenge signalled in
// the digest, if any.
func PrecommitChallengeFromDigest(digest Digest) *PrecommitChallenge {
	signal, ok := SignalFromDigest(digest).(PrecommitChallengeSignal)
	if !ok {
		return nil
	}
	return &signal.Challenge
}
