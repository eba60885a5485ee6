// Copyright 2021 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package modules

import (
	"fmt"
	"net/http"

	"github.com/ChainSafe/gossamer/lib/common"
	"github.com/ChainSafe/gossamer/pkg/scale"

	"github.com/ChainSafe/grandpa-accountability/dot/types"
	"github.com/ChainSafe/grandpa-accountability/lib/grandpa"
)

// DevModule is an RPC module that provides developer endpoints
type DevModule struct {
	blockProducerAPI BlockProducerAPI
}

// NewDevModule creates a new Dev module.
func NewDevModule(bp BlockProducerAPI) *DevModule {
	return &DevModule{
		blockProducerAPI: bp,
	}
}

// ProducedBlockResponse is a produced block with its execution outcome
type ProducedBlockResponse struct {
	HeaderResponse
	Applied int `json:"applied"`
	Failed  int `json:"failed"`
	// Block is the hex encoded SCALE encoding of the block.
	Block string `json:"block"`
}

// ProduceBlock builds a block out of the transaction pool and executes it
func (m *DevModule) ProduceBlock(_ *http.Request, _ *EmptyRequest, res *ProducedBlockResponse) error {
	block, result, err := m.blockProducerAPI.BuildBlock()
	if err != nil {
		return err
	}

	encoded, err := scale.Marshal(*block)
	if err != nil {
		return fmt.Errorf("encoding block: %w", err)
	}

	*res = ProducedBlockResponse{
		HeaderResponse: newHeaderResponse(block.Header.BlockID()),
		Applied:        result.Applied,
		Failed:         result.Failed,
		Block:          common.BytesToHex(encoded),
	}
	return nil
}

// NewSessionRequest is a session rotation with the session keys of the
// next validators
type NewSessionRequest struct {
	Changed bool                `json:"changed"`
	Keys    []types.AuthorityID `json:"keys"`
}

// NewSession queues a session rotation for the next produced block
func (m *DevModule) NewSession(_ *http.Request, req *NewSessionRequest, res *string) error {
	change := grandpa.SessionChange{
		Changed: req.Changed,
		Keys:    req.Keys,
	}
	return m.queueInherent(grandpa.NewSessionCall, change, res)
}

// NoteStalledRequest reports finality stalled at the median last
// finalized block
type NoteStalledRequest struct {
	FurtherWait uint32 `json:"furtherWait"`
	Median      uint32 `json:"median"`
}

// NoteStalled queues a stalled finality note for the next produced block
func (m *DevModule) NoteStalled(_ *http.Request, req *NoteStalledRequest, res *string) error {
	stall := grandpa.StalledState{
		FurtherWait: req.FurtherWait,
		Median:      req.Median,
	}
	return m.queueInherent(grandpa.NoteStalledCall, stall, res)
}

func (m *DevModule) queueInherent(index types.CallIndex, args any, res *string) error {
	extrinsic, err := types.NewExtrinsic(nil, index, args)
	if err != nil {
		return fmt.Errorf("encoding call: %w", err)
	}

	m.blockProducerAPI.QueueInherent(extrinsic.Call)
	name, _ := grandpa.CallName(index)
	*res = name
	return nil
}
