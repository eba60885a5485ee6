// Copyright 2021 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package core

import (
	"github.com/ChainSafe/grandpa-accountability/dot/state"
	"github.com/ChainSafe/grandpa-accountability/dot/types"
	"github.com/ChainSafe/grandpa-accountability/lib/transaction"
)

// BlockState interface for block state methods
type BlockState interface {
	BestBlockHeader() (*types.Header, error)
	CommitBlock(header types.Header, changes *state.Overlay) error
}

// Module is the runtime module extrinsics are dispatched to.
type Module interface {
	Dispatch(s state.Storage, extrinsic types.Extrinsic) error
	OnFinalize(s state.Storage, number uint32) error
}

// TransactionState is the interface for transaction state methods
type TransactionState interface {
	Drain() []*transaction.ValidTransaction
}
