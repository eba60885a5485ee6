// Copyright 2021 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package core

import (
	"errors"
)

var (
	// ErrNilBlockState is returned when the block state is nil
	ErrNilBlockState = errors.New("cannot have nil BlockState")
	// ErrNilStorage is returned when the runtime storage is nil
	ErrNilStorage = errors.New("cannot have nil Storage")
	// ErrNilModule is returned when the runtime module is nil
	ErrNilModule = errors.New("cannot have nil Module")
	// ErrNilTransactionState is returned when the transaction state is nil
	ErrNilTransactionState = errors.New("cannot have nil TransactionState")

	// ErrParentNotBest is returned when executing a block which does not
	// extend the best block
	ErrParentNotBest = errors.New("parent is not the best block")
	// ErrBlockNumber is returned when a block number is not its parent number plus one
	ErrBlockNumber = errors.New("block number does not follow parent")
	// ErrExtrinsicsRoot is returned when a block body does not match its header
	ErrExtrinsicsRoot = errors.New("extrinsics root mismatch")
	// ErrDigestMismatch is returned when an imported block digest differs
	// from the digest its execution produced
	ErrDigestMismatch = errors.New("digest mismatch")
)
