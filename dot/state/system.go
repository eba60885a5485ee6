// Copyright 2021 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package state

import (
	"github.com/ChainSafe/gossamer/lib/common"

	"github.com/ChainSafe/grandpa-accountability/dot/types"
)

const systemModule = "System"

// EventRecord is an event deposited by a module while executing a block.
type EventRecord struct {
	// ExtrinsicIndex is the index of the extrinsic which deposited
	// the event, nil if deposited while finalizing the block.
	ExtrinsicIndex *uint32
	Module         string
	Data           []byte
}

var (
	blockNumber    = NewStorageValue[uint32](systemModule, "Number")
	parentHash     = NewStorageValue[common.Hash](systemModule, "ParentHash")
	blockDigest    = NewStorageValue[types.Digest](systemModule, "Digest")
	blockEvents    = NewStorageValue[[]EventRecord](systemModule, "Events")
	extrinsicIndex = NewStorageValue[uint32](systemModule, "ExtrinsicIndex")
)

// InitializeBlock sets the number and parent hash of the block being
// executed and clears the digest and events of the previous block.
func InitializeBlock(s Storage, number uint32, parent common.Hash) error {
	err := blockNumber.Put(s, number)
	if err != nil {
		return err
	}

	err = parentHash.Put(s, parent)
	if err != nil {
		return err
	}

	for _, kill := range []func(Storage) error{blockDigest.Kill, blockEvents.Kill, extrinsicIndex.Kill} {
		err = kill(s)
		if err != nil {
			return err
		}
	}

	return nil
}

// BlockNumber returns the number of the block being executed.
func BlockNumber(s Storage) (uint32, error) {
	return blockNumber.Get(s)
}

// ParentHash returns the parent hash of the block being executed.
func ParentHash(s Storage) (common.Hash, error) {
	return parentHash.Get(s)
}

// SetExtrinsicIndex sets the index of the extrinsic being applied.
func SetExtrinsicIndex(s Storage, index uint32) error {
	return extrinsicIndex.Put(s, index)
}

// ClearExtrinsicIndex marks the end of extrinsics application.
func ClearExtrinsicIndex(s Storage) error {
	return extrinsicIndex.Kill(s)
}

// DepositLog appends an item to the digest of the block being executed.
func DepositLog(s Storage, item types.DigestItem) error {
	return blockDigest.Mutate(s, func(digest *types.Digest) error {
		*digest = append(*digest, item)
		return nil
	})
}

// BlockDigest returns the digest of the block being executed.
func BlockDigest(s Storage) (types.Digest, error) {
	return blockDigest.Get(s)
}

// DepositEvent records an event encoded by the module given.
func DepositEvent(s Storage, module string, data []byte) error {
	index, err := extrinsicIndex.TryGet(s)
	if err != nil {
		return err
	}

	return Append(s, blockEvents, EventRecord{
		ExtrinsicIndex: index,
		Module:         module,
		Data:           data,
	})
}

// Events returns the events of the block being executed.
func Events(s Storage) ([]EventRecord, error) {
	return blockEvents.Get(s)
}
