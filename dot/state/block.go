// Copyright 2021 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package state

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"github.com/ChainSafe/gossamer/lib/common"
	"github.com/ChainSafe/gossamer/pkg/scale"

	"github.com/ChainSafe/grandpa-accountability/dot/types"
	"github.com/ChainSafe/grandpa-accountability/internal/database"
)

const (
	headerPrefix        = "hdr"
	blockHashPrefix     = "hsh"
	blockMetadataPrefix = "meta"
)

var bestBlockHashKey = []byte("best_hash")

var (
	// ErrUnknownBlock is returned, wrapped, when a header is not stored.
	ErrUnknownBlock = errors.New("unknown block")
	// ErrNotRuntimeStorage is returned when committing a block with changes
	// which are not over the runtime storage.
	ErrNotRuntimeStorage = errors.New("changes are not over the runtime storage")
)

// BlockState stores imported block headers and tracks the best block.
type BlockState struct {
	sync.RWMutex
	db       database.Database
	headers  database.Table
	hashes   database.Table
	metadata database.Table
	bestHash common.Hash
}

// NewBlockState returns a block state backed by the database given,
// loading the best block hash if one is stored.
func NewBlockState(db database.Database) (*BlockState, error) {
	bs := &BlockState{
		db:       db,
		headers:  database.NewTable(db, headerPrefix),
		hashes:   database.NewTable(db, blockHashPrefix),
		metadata: database.NewTable(db, blockMetadataPrefix),
	}

	best, err := bs.metadata.Get(bestBlockHashKey)
	switch {
	case errors.Is(err, database.ErrNotFound):
	case err != nil:
		return nil, fmt.Errorf("getting best block hash: %w", err)
	default:
		copy(bs.bestHash[:], best)
	}

	return bs, nil
}

// SetHeader stores the header, indexes it by number and sets it as
// best block if it is not lower than the current best block.
func (bs *BlockState) SetHeader(header types.Header) error {
	return bs.CommitBlock(header, nil)
}

// CommitBlock stores the header as SetHeader does, together with the
// runtime storage changes given, in a single database batch. The changes
// are emptied once written. A nil changes only stores the header.
func (bs *BlockState) CommitBlock(header types.Header, changes *Overlay) (err error) {
	if changes != nil {
		table, ok := changes.parent.(database.Table)
		if !ok || table.Path() != storagePrefixTable {
			return ErrNotRuntimeStorage
		}
	}

	bs.Lock()
	defer bs.Unlock()

	batch := bs.db.NewBatch()
	defer func() {
		closeErr := batch.Close()
		if err == nil && closeErr != nil {
			err = fmt.Errorf("closing batch: %w", closeErr)
		}
	}()

	if changes != nil {
		err = changes.writeTo(database.NewTableBatch(batch, storagePrefixTable))
		if err != nil {
			return fmt.Errorf("writing storage changes: %w", err)
		}
	}

	best, err := bs.writeHeader(batch, header)
	if err != nil {
		return err
	}

	err = batch.Flush()
	if err != nil {
		return fmt.Errorf("flushing batch: %w", err)
	}

	if best {
		bs.bestHash = header.Hash()
	}
	if changes != nil {
		changes.Discard()
	}
	return nil
}

// writeHeader writes the header to the batch and returns true if it
// becomes the best block.
func (bs *BlockState) writeHeader(batch database.Batch, header types.Header) (best bool, err error) {
	encoded, err := scale.Marshal(header)
	if err != nil {
		return false, fmt.Errorf("encoding header: %w", err)
	}

	hash := header.Hash()
	err = database.NewTableBatch(batch, headerPrefix).Put(hash[:], encoded)
	if err != nil {
		return false, fmt.Errorf("storing header: %w", err)
	}

	err = database.NewTableBatch(batch, blockHashPrefix).Put(numberKey(header.Number), hash[:])
	if err != nil {
		return false, fmt.Errorf("storing hash by number: %w", err)
	}

	if bs.bestHash != (common.Hash{}) {
		current, err := bs.getHeader(bs.bestHash)
		if err != nil {
			return false, fmt.Errorf("getting best block header: %w", err)
		}
		if header.Number < current.Number {
			return false, nil
		}
	}

	err = database.NewTableBatch(batch, blockMetadataPrefix).Put(bestBlockHashKey, hash[:])
	if err != nil {
		return false, fmt.Errorf("storing best block hash: %w", err)
	}
	return true, nil
}

// GetHeader returns the header of the block hash given.
func (bs *BlockState) GetHeader(hash common.Hash) (*types.Header, error) {
	bs.RLock()
	defer bs.RUnlock()
	return bs.getHeader(hash)
}

func (bs *BlockState) getHeader(hash common.Hash) (*types.Header, error) {
	encoded, err := bs.headers.Get(hash[:])
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownBlock, hash)
		}
		return nil, fmt.Errorf("getting header %s: %w", hash, err)
	}

	header := new(types.Header)
	err = scale.Unmarshal(encoded, header)
	if err != nil {
		return nil, fmt.Errorf("decoding header %s: %w", hash, err)
	}
	return header, nil
}

// HasHeader returns true if the header of the block hash is stored.
func (bs *BlockState) HasHeader(hash common.Hash) (bool, error) {
	return bs.headers.Has(hash[:])
}

// GetHashByNumber returns the hash of the last header stored at the number.
func (bs *BlockState) GetHashByNumber(number uint32) (common.Hash, error) {
	hash, err := bs.hashes.Get(numberKey(number))
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return common.Hash{}, fmt.Errorf("%w: number %d", ErrUnknownBlock, number)
		}
		return common.Hash{}, fmt.Errorf("getting hash of block %d: %w", number, err)
	}
	return common.BytesToHash(hash), nil
}

// BestBlockHash returns the hash of the best block, the zero hash if
// no block was stored yet.
func (bs *BlockState) BestBlockHash() common.Hash {
	bs.RLock()
	defer bs.RUnlock()
	return bs.bestHash
}

// BestBlockHeader returns the header of the best block.
func (bs *BlockState) BestBlockHeader() (*types.Header, error) {
	bs.RLock()
	defer bs.RUnlock()
	return bs.getHeader(bs.bestHash)
}

func numberKey(number uint32) []byte {
	key := make([]byte, 4)
	binary.BigEndian.PutUint32(key, number)
	return key
}
