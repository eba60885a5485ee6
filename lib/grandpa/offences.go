// Copyright 2021 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package grandpa

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ChainSafe/grandpa-accountability/dot/state"
	"github.com/ChainSafe/grandpa-accountability/dot/types"
)

var (
	offencesReported = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "accountability_grandpa",
		Name:      "offenders_reported_total",
		Help:      "number of authorities reported for slashing, by offence kind",
	}, []string{"kind"})
	challengesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "accountability_grandpa",
		Name:      "challenges_total",
		Help:      "number of challenges processed, by outcome",
	}, []string{"outcome"})
)

// OffenceKind is the kind of misbehaviour an offence is reported for.
type OffenceKind byte

const (
	// PrevoteEquivocation is two different prevotes in the same round.
	PrevoteEquivocation OffenceKind = iota
	// PrecommitEquivocation is two different precommits in the same round.
	PrecommitEquivocation
	// ChallengeEquivocation is an equivocation found while resolving a challenge
	// in the round of the disputed finality proof.
	ChallengeEquivocation
	// UnansweredChallenge is the finalization of a block disputed by a
	// challenge which expired unanswered.
	UnansweredChallenge
)

func (k OffenceKind) String() string {
	switch k {
	case PrevoteEquivocation:
		return "prevote equivocation"
	case PrecommitEquivocation:
		return "precommit equivocation"
	case ChallengeEquivocation:
		return "challenge equivocation"
	case UnansweredChallenge:
		return "unanswered challenge"
	default:
		return fmt.Sprintf("unknown offence kind %d", byte(k))
	}
}

// Offence is misbehaviour of authorities in a round of an authority set.
type Offence struct {
	Kind      OffenceKind
	SetID     uint64
	Round     uint64
	Offenders []types.AuthorityID
}

// Slasher punishes reported offenders.
type Slasher interface {
	ReportOffence(offence Offence) error
}

// LoggingSlasher logs offences without punishing offenders.
type LoggingSlasher struct{}

// ReportOffence logs the offence.
func (LoggingSlasher) ReportOffence(offence Offence) error {
	logger.Warnf("%s in round %d of set %d by %d authorities: %v",
		offence.Kind, offence.Round, offence.SetID, len(offence.Offenders), offence.Offenders)
	return nil
}

// offenceReporter is the single path to the slasher. An authority is
// reported at most once per round of an authority set.
type offenceReporter struct {
	slasher Slasher
}

func newOffenceReporter(slasher Slasher) *offenceReporter {
	if slasher == nil {
		slasher = LoggingSlasher{}
	}
	return &offenceReporter{slasher: slasher}
}

// report reports the offenders not yet reported for the round and returns them.
func (r *offenceReporter) report(s state.Storage, kind OffenceKind, setID, round uint64,
	offenders []types.AuthorityID) (reported []types.AuthorityID, err error) {
	for _, offender := range offenders {
		key := offenceKey{SetID: setID, Round: round, Authority: offender}
		exists, err := reportedOffences.Exists(s, key)
		if err != nil {
			return nil, err
		}
		if exists {
			logger.Debugf("%s already reported in round %d of set %d", offender, round, setID)
			continue
		}

		err = reportedOffences.Insert(s, key, true)
		if err != nil {
			return nil, err
		}
		reported = append(reported, offender)
	}

	if len(reported) == 0 {
		return nil, nil
	}

	err = r.slasher.ReportOffence(Offence{
		Kind:      kind,
		SetID:     setID,
		Round:     round,
		Offenders: reported,
	})
	if err != nil {
		return nil, fmt.Errorf("reporting offence: %w", err)
	}

	offencesReported.WithLabelValues(kind.String()).Add(float64(len(reported)))
	return reported, nil
}
