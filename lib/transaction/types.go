// Copyright 2021 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package transaction

import (
	"github.com/ChainSafe/gossamer/lib/common"

	"github.com/ChainSafe/grandpa-accountability/dot/types"
)

// ValidTransaction is an extrinsic accepted into the pool.
type ValidTransaction struct {
	Extrinsic types.Extrinsic
	// At is the best block number when the extrinsic was submitted.
	At uint32

	hash common.Hash
	seq  uint64
}

// NewValidTransaction returns ValidTransaction
func NewValidTransaction(extrinsic types.Extrinsic, at uint32) *ValidTransaction {
	return &ValidTransaction{
		Extrinsic: extrinsic,
		At:        at,
	}
}

// Hash returns the hash the transaction is pooled under.
func (tx *ValidTransaction) Hash() common.Hash {
	return tx.hash
}
