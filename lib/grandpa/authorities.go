// Copyright 2021 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package grandpa

import (
	"fmt"

	"github.com/ChainSafe/grandpa-accountability/dot/state"
	"github.com/ChainSafe/grandpa-accountability/dot/types"
)

// ScheduleChange schedules a change of the authority set.
//
// The change is signalled in the current block and applied at the end of
// the block inBlocks after it, which may be the current block if inBlocks
// is 0. If forced is not nil, the current set is considered offline and
// forced is the median last finalized block number to restart voting from.
// A forced change cannot be scheduled before the block twice its delay
// after the previous forced change.
func (*Module) ScheduleChange(s state.Storage, next types.AuthorityList,
	inBlocks uint32, forced *uint32) error {
	pending, err := pendingChange.Exists(s)
	if err != nil {
		return err
	}
	if pending {
		return ErrChangeAlreadyPending
	}

	scheduledAt, err := state.BlockNumber(s)
	if err != nil {
		return fmt.Errorf("getting current block number: %w", err)
	}

	if forced != nil {
		allowedAt, err := nextForced.TryGet(s)
		if err != nil {
			return err
		}
		if allowedAt != nil && *allowedAt > scheduledAt {
			return fmt.Errorf("%w: next forced change allowed at block %d, current block is %d",
				ErrForcedTooSoon, *allowedAt, scheduledAt)
		}

		err = nextForced.Put(s, scheduledAt+2*inBlocks)
		if err != nil {
			return err
		}
	}

	err = pendingChange.Put(s, StoredPendingChange{
		ScheduledAt:     scheduledAt,
		Delay:           inBlocks,
		NextAuthorities: next,
		Forced:          forced,
	})
	if err != nil {
		return err
	}

	logger.Debugf("scheduled change to %d authorities at block %d with delay %d (forced: %t)",
		len(next), scheduledAt, inBlocks, forced != nil)
	return nil
}

// OnFinalize runs at the end of every block. It signals and applies the
// pending authority set change and processes challenge sessions.
func (m *Module) OnFinalize(s state.Storage, number uint32) error {
	err := m.finalizePendingChange(s, number)
	if err != nil {
		return fmt.Errorf("finalizing pending change: %w", err)
	}

	err = m.finalizeChallenges(s, number)
	if err != nil {
		return fmt.Errorf("finalizing challenges: %w", err)
	}

	return nil
}

func (*Module) finalizePendingChange(s state.Storage, number uint32) error {
	change, err := pendingChange.TryGet(s)
	if err != nil || change == nil {
		return err
	}

	if number == change.ScheduledAt {
		scheduled := types.ScheduledChange{
			NextAuthorities: change.NextAuthorities,
			Delay:           change.Delay,
		}

		if change.Forced != nil {
			err = depositSignal(s, types.ForcedAuthoritiesChangeSignal{
				Median: *change.Forced,
				Change: scheduled,
			})
		} else {
			err = depositSignal(s, types.AuthoritiesChangeSignal{Change: scheduled})
		}
		if err != nil {
			return fmt.Errorf("depositing change signal: %w", err)
		}
	}

	if number != change.EffectiveAt() {
		return nil
	}

	setID, err := currentSetID.Get(s)
	if err != nil {
		return err
	}
	setID++

	err = authorities.Put(s, change.NextAuthorities)
	if err != nil {
		return err
	}
	err = currentSetID.Put(s, setID)
	if err != nil {
		return err
	}
	err = setAuthorities.Insert(s, setID, change.NextAuthorities)
	if err != nil {
		return err
	}

	err = depositEvent(s, NewAuthoritiesEvent{
		SetID:       setID,
		Authorities: change.NextAuthorities,
	})
	if err != nil {
		return err
	}

	logger.Infof("applied authority set %d with %d authorities at block %d",
		setID, len(change.NextAuthorities), number)
	return pendingChange.Kill(s)
}

// SessionChange is the outcome of a session rotation: whether the
// validators changed and the session keys of the next validators.
type SessionChange struct {
	Changed bool
	Keys    []types.AuthorityID
}

// OnNewSession is called by the session rotation with the session keys
// of the next validators. If they differ from the current authorities,
// an instant change is scheduled, or a forced change if finality was
// reported stalled.
func (m *Module) OnNewSession(s state.Storage, changed bool, keys []types.AuthorityID) error {
	if !changed {
		return nil
	}

	next := make(types.AuthorityList, len(keys))
	for i, key := range keys {
		next[i] = types.Authority{ID: key, Weight: 1}
	}

	current, err := authorities.Get(s)
	if err != nil {
		return err
	}
	if next.Equal(current) {
		return nil
	}

	stall, err := stalled.Take(s)
	if err != nil {
		return err
	}

	if stall != nil {
		median := stall.Median
		err = m.ScheduleChange(s, next, stall.FurtherWait, &median)
	} else {
		err = m.ScheduleChange(s, next, 0, nil)
	}
	if err != nil {
		logger.Warnf("cannot schedule authority set change on new session: %s", err)
	}

	return nil
}

// OnDisabled is called when the validator at the index given is disabled.
// Disabled authorities keep voting until the next set change.
func (*Module) OnDisabled(index uint) {
	logger.Debugf("authority at index %d disabled", index)
}

// OnStalled records that finality stalled, for the next session rotation
// to force an authority set change after furtherWait blocks, restarting
// from the median last finalized block given.
func (*Module) OnStalled(s state.Storage, furtherWait, median uint32) error {
	logger.Warnf("finality stalled, median last finalized block is %d", median)
	return stalled.Put(s, StalledState{
		FurtherWait: furtherWait,
		Median:      median,
	})
}
