// Copyright 2021 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package grandpa

import (
	"fmt"

	"github.com/ChainSafe/gossamer/pkg/scale"

	"github.com/ChainSafe/grandpa-accountability/dot/state"
	"github.com/ChainSafe/grandpa-accountability/dot/types"
)

// Origin is the origin of a dispatched call.
type Origin struct {
	signer *types.AccountID
}

// NoneOrigin returns the origin of unsigned calls.
func NoneOrigin() Origin {
	return Origin{}
}

// SignedOrigin returns the origin of calls signed by the account given.
func SignedOrigin(account types.AccountID) Origin {
	return Origin{signer: &account}
}

// Signer returns the signing account, or nil if the origin is not signed.
func (o Origin) Signer() *types.AccountID {
	return o.signer
}

func (o Origin) ensureSigned() (types.AccountID, error) {
	if o.signer == nil {
		return types.AccountID{}, fmt.Errorf("%w: call requires a signed origin", ErrBadOrigin)
	}
	return *o.signer, nil
}

// Call indexes of the module.
const (
	ReportPrevoteEquivocationCall types.CallIndex = iota
	ReportPrecommitEquivocationCall
	ReportRejectingPrevotesCall
	ReportRejectingPrecommitsCall
	ReportPrevotesAnswerCall
	NewSessionCall
	NoteStalledCall
)

type originRequirement byte

const (
	anyOrigin originRequirement = iota
	signedOrigin
	// inherent calls are unsigned and only included by the block producer
	inherentOrigin
)

type dispatchable struct {
	name   string
	origin originRequirement
	decode func(args []byte) (any, error)
	handle func(m *Module, s state.Storage, origin Origin, args any) error
}

func decodeArgs[T any](args []byte) (any, error) {
	var value T
	err := scale.Unmarshal(args, &value)
	if err != nil {
		return nil, err
	}
	return value, nil
}

var calls = map[types.CallIndex]dispatchable{
	ReportPrevoteEquivocationCall: {
		name:   "report_prevote_equivocation",
		origin: anyOrigin,
		decode: decodeArgs[types.PrevoteEquivocationProof],
		handle: func(m *Module, s state.Storage, _ Origin, args any) error {
			return m.ReportPrevoteEquivocation(s, args.(types.PrevoteEquivocationProof))
		},
	},
	ReportPrecommitEquivocationCall: {
		name:   "report_precommit_equivocation",
		origin: anyOrigin,
		decode: decodeArgs[types.PrecommitEquivocationProof],
		handle: func(m *Module, s state.Storage, _ Origin, args any) error {
			return m.ReportPrecommitEquivocation(s, args.(types.PrecommitEquivocationProof))
		},
	},
	ReportRejectingPrevotesCall: {
		name:   "report_rejecting_prevotes",
		origin: signedOrigin,
		decode: decodeArgs[types.PrevoteChallenge],
		handle: func(m *Module, s state.Storage, origin Origin, args any) error {
			return m.ReportRejectingPrevotes(s, origin, args.(types.PrevoteChallenge))
		},
	},
	ReportRejectingPrecommitsCall: {
		name:   "report_rejecting_precommits",
		origin: signedOrigin,
		decode: decodeArgs[types.PrecommitChallenge],
		handle: func(m *Module, s state.Storage, origin Origin, args any) error {
			return m.ReportRejectingPrecommits(s, origin, args.(types.PrecommitChallenge))
		},
	},
	ReportPrevotesAnswerCall: {
		name:   "report_prevotes_answer",
		origin: signedOrigin,
		decode: decodeArgs[types.PrevoteChallenge],
		handle: func(m *Module, s state.Storage, origin Origin, args any) error {
			return m.ReportPrevotesAnswer(s, origin, args.(types.PrevoteChallenge))
		},
	},
	NewSessionCall: {
		name:   "new_session",
		origin: inherentOrigin,
		decode: decodeArgs[SessionChange],
		handle: func(m *Module, s state.Storage, _ Origin, args any) error {
			change := args.(SessionChange)
			return m.OnNewSession(s, change.Changed, change.Keys)
		},
	},
	NoteStalledCall: {
		name:   "note_stalled",
		origin: inherentOrigin,
		decode: decodeArgs[StalledState],
		handle: func(m *Module, s state.Storage, _ Origin, args any) error {
			stall := args.(StalledState)
			return m.OnStalled(s, stall.FurtherWait, stall.Median)
		},
	},
}

// CallName returns the name of the call index given.
func CallName(index types.CallIndex) (name string, ok bool) {
	call, ok := calls[index]
	return call.name, ok
}

func lookupCall(call types.Call) (dispatchable, any, error) {
	dispatch, ok := calls[call.Index]
	if !ok {
		return dispatchable{}, nil, fmt.Errorf("%w: index %d", ErrUnknownCall, call.Index)
	}

	args, err := dispatch.decode(call.Args)
	if err != nil {
		return dispatchable{}, nil, fmt.Errorf("decoding %s arguments: %w", dispatch.name, err)
	}

	return dispatch, args, nil
}

// ValidateCall checks a submitted call is known, is not an inherent call
// and its arguments decode.
func ValidateCall(call types.Call) error {
	dispatch, _, err := lookupCall(call)
	if err != nil {
		return err
	}
	if dispatch.origin == inherentOrigin {
		return fmt.Errorf("%w: %s cannot be submitted", ErrInherentCall, dispatch.name)
	}
	return nil
}

// Dispatch decodes the call of the extrinsic and runs it against the
// storage given, with the origin of the extrinsic signer.
func (m *Module) Dispatch(s state.Storage, extrinsic types.Extrinsic) error {
	dispatch, args, err := lookupCall(extrinsic.Call)
	if err != nil {
		return err
	}

	origin := NoneOrigin()
	if extrinsic.Signer != nil {
		origin = SignedOrigin(*extrinsic.Signer)
	}

	switch {
	case dispatch.origin == signedOrigin && origin.signer == nil:
		return fmt.Errorf("%w: %s requires a signed origin", ErrBadOrigin, dispatch.name)
	case dispatch.origin == inherentOrigin && origin.signer != nil:
		return fmt.Errorf("%w: %s requires an unsigned origin", ErrBadOrigin, dispatch.name)
	}

	err = dispatch.handle(m, s, origin, args)
	if err != nil {
		return fmt.Errorf("dispatching %s: %w", dispatch.name, err)
	}
	return nil
}
