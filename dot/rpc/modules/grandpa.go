// Copyright 2021 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package modules

import (
	"net/http"

	"github.com/ChainSafe/grandpa-accountability/dot/state"
	"github.com/ChainSafe/grandpa-accountability/dot/types"
	"github.com/ChainSafe/grandpa-accountability/lib/grandpa"
)

// GrandpaModule exposes the GRANDPA module storage.
type GrandpaModule struct {
	storage state.Storage
}

// NewGrandpaModule creates a new Grandpa rpc module.
func NewGrandpaModule(storage state.Storage) *GrandpaModule {
	return &GrandpaModule{
		storage: storage,
	}
}

// AuthorityResponse is an authority and its voting weight
type AuthorityResponse struct {
	ID     string `json:"id"`
	Weight uint64 `json:"weight"`
}

// AuthoritiesResponse is the list of authorities of the current set
type AuthoritiesResponse []AuthorityResponse

func newAuthoritiesResponse(list types.AuthorityList) AuthoritiesResponse {
	res := make(AuthoritiesResponse, len(list))
	for i, authority := range list {
		res[i] = AuthorityResponse{
			ID:     authority.ID.String(),
			Weight: authority.Weight,
		}
	}
	return res
}

// PendingChangeResponse is the scheduled authority set change
type PendingChangeResponse struct {
	ScheduledAt     uint32              `json:"scheduledAt"`
	EffectiveAt     uint32              `json:"effectiveAt"`
	NextAuthorities AuthoritiesResponse `json:"nextAuthorities"`
	Forced          *uint32             `json:"forced"`
}

// ChallengeSessionResponse is a challenge session awaiting an answer
type ChallengeSessionResponse struct {
	ID             string         `json:"id"`
	Stage          string         `json:"stage"`
	FinalizedBlock HeaderResponse `json:"finalizedBlock"`
	Round          uint64         `json:"round"`
	SetID          uint64         `json:"setId"`
	ScheduledAt    uint32         `json:"scheduledAt"`
	ExpiresAt      uint32         `json:"expiresAt"`
	Accused        []string       `json:"accused"`
}

// Authorities returns the current authority set
func (gm *GrandpaModule) Authorities(_ *http.Request, _ *EmptyRequest, res *AuthoritiesResponse) error {
	list, err := grandpa.Authorities(gm.storage)
	if err != nil {
		return err
	}

	*res = newAuthoritiesResponse(list)
	return nil
}

// SetId returns the current authority set id
func (gm *GrandpaModule) SetId(_ *http.Request, _ *EmptyRequest, res *uint64) error { //nolint:revive
	setID, err := grandpa.CurrentSetID(gm.storage)
	if err != nil {
		return err
	}

	*res = setID
	return nil
}

// PendingChange returns the pending authority set change, or null
func (gm *GrandpaModule) PendingChange(_ *http.Request, _ *EmptyRequest, res **PendingChangeResponse) error {
	change, err := grandpa.PendingChange(gm.storage)
	if err != nil {
		return err
	}

	if change == nil {
		*res = nil
		return nil
	}

	*res = &PendingChangeResponse{
		ScheduledAt:     change.ScheduledAt,
		EffectiveAt:     change.EffectiveAt(),
		NextAuthorities: newAuthoritiesResponse(change.NextAuthorities),
		Forced:          change.Forced,
	}
	return nil
}

// ChallengeSessions returns the challenge sessions awaiting an answer
func (gm *GrandpaModule) ChallengeSessions(_ *http.Request, _ *EmptyRequest,
	res *[]ChallengeSessionResponse) error {
	sessions, err := grandpa.ChallengeSessions(gm.storage)
	if err != nil {
		return err
	}

	*res = make([]ChallengeSessionResponse, len(sessions))
	for i, session := range sessions {
		block, round := session.Disputes()
		stage := types.PrecommitStage
		if session.PrevoteChallenge != nil {
			stage = types.PrevoteStage
		}

		accused := make([]string, len(session.Accused))
		for j, id := range session.Accused {
			accused[j] = id.String()
		}

		(*res)[i] = ChallengeSessionResponse{
			ID:             session.ID.String(),
			Stage:          stage.String(),
			FinalizedBlock: newHeaderResponse(block),
			Round:          round,
			SetID:          session.SetID,
			ScheduledAt:    session.ScheduledAt,
			ExpiresAt:      session.ExpiresAt(),
			Accused:        accused,
		}
	}
	return nil
}
