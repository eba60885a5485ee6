// Copyright 2021 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package modules

import (
	"github.com/ChainSafe/gossamer/lib/common"

	"github.com/ChainSafe/grandpa-accountability/dot/core"
	"github.com/ChainSafe/grandpa-accountability/dot/types"
)

// ReportAPI is the interface to submit misbehaviour reports
type ReportAPI interface {
	SubmitReport(encoded []byte) (common.Hash, error)
}

// BlockProducerAPI is the interface to produce blocks on demand
type BlockProducerAPI interface {
	BuildBlock() (*types.Block, *core.BlockResult, error)
	QueueInherent(call types.Call)
}

// EmptyRequest represents an RPC request with no fields
type EmptyRequest struct{}

// HeaderResponse is a block hash and number
type HeaderResponse struct {
	Hash   string `json:"hash"`
	Number uint32 `json:"number"`
}

func newHeaderResponse(id types.BlockID) HeaderResponse {
	return HeaderResponse{
		Hash:   id.Hash.String(),
		Number: id.Number,
	}
}
