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

// NewAuthoritiesEvent is deposited when a new authority set is applied.
type NewAuthoritiesEvent struct {
	SetID       uint64
	Authorities types.AuthorityList
}

// Index returns VDT index
func (NewAuthoritiesEvent) Index() uint { return 0 }

// EquivocationReportedEvent is deposited when an equivocation proof is accepted.
type EquivocationReportedEvent struct {
	Stage    types.VoteStage
	SetID    uint64
	Round    uint64
	Offender types.AuthorityID
}

// Index returns VDT index
func (EquivocationReportedEvent) Index() uint { return 1 }

// NewChallengeEvent is deposited when a challenge session is opened.
type NewChallengeEvent struct {
	ChallengeID    common.Hash
	FinalizedBlock types.BlockID
	Round          uint64
	Accused        []types.AuthorityID
}

// Index returns VDT index
func (NewChallengeEvent) Index() uint { return 2 }

// ChallengeResolvedEvent is deposited when a challenge is resolved in favour
// of the challenger.
type ChallengeResolvedEvent struct {
	ChallengeID common.Hash
	Culprits    []types.AuthorityID
}

// Index returns VDT index
func (ChallengeResolvedEvent) Index() uint { return 3 }

// ChallengeRespondedEvent is deposited when a challenge is rebutted.
type ChallengeRespondedEvent struct {
	ChallengeID common.Hash
	Accused     []types.AuthorityID
}

// Index returns VDT index
func (ChallengeRespondedEvent) Index() uint { return 4 }

// ChallengeExpiredEvent is deposited when a challenge session expires unanswered.
type ChallengeExpiredEvent struct {
	ChallengeID common.Hash
	Culprits    []types.AuthorityID
}

// Index returns VDT index
func (ChallengeExpiredEvent) Index() uint { return 5 }

// NewEvent returns an unset module event.
func NewEvent() scale.VaryingDataType {
	return scale.MustNewVaryingDataType(
		NewAuthoritiesEvent{}, EquivocationReportedEvent{}, NewChallengeEvent{},
		ChallengeResolvedEvent{}, ChallengeRespondedEvent{}, ChallengeExpiredEvent{})
}

// DecodeEvent decodes the data of a module event record.
func DecodeEvent(data []byte) (scale.VaryingDataTypeValue, error) {
	event := NewEvent()
	err := scale.Unmarshal(data, &event)
	if err != nil {
		return nil, fmt.Errorf("decoding event: %w", err)
	}

	value, err := event.Value()
	if err != nil {
		return nil, fmt.Errorf("getting event value: %w", err)
	}
	return value, nil
}

// ModuleEvents returns the decoded events deposited by the module in the
// event records given.
func ModuleEvents(records []state.EventRecord) ([]scale.VaryingDataTypeValue, error) {
	var events []scale.VaryingDataTypeValue
	for _, record := range records {
		if record.Module != ModuleName {
			continue
		}
		event, err := DecodeEvent(record.Data)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, nil
}

func depositEvent(s state.Storage, value scale.VaryingDataTypeValue) error {
	event := NewEvent()
	err := event.Set(value)
	if err != nil {
		return fmt.Errorf("setting event: %w", err)
	}

	data, err := scale.Marshal(event)
	if err != nil {
		return fmt.Errorf("encoding event: %w", err)
	}

	return state.DepositEvent(s, ModuleName, data)
}

func depositSignal(s state.Storage, value scale.VaryingDataTypeValue) error {
	item, err := types.NewSignalDigest(value)
	if err != nil {
		return err
	}
	return state.DepositLog(s, item)
}
