// Copyright 2021 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package types

import (
	"fmt"

	"github.com/ChainSafe/gossamer/lib/common"
	"github.com/ChainSafe/gossamer/pkg/scale"
)

// Header is a block header
type Header struct {
	ParentHash     common.Hash
	Number         uint32
	StateRoot      common.Hash
	ExtrinsicsRoot common.Hash
	Digest         Digest
}

// NewHeader creates a new block header and sets its hash field
func NewHeader(parentHash, stateRoot, extrinsicsRoot common.Hash,
	number uint32, digest Digest) *Header {
	return &Header{
		ParentHash:     parentHash,
		Number:         number,
		StateRoot:      stateRoot,
		ExtrinsicsRoot: extrinsicsRoot,
		Digest:         digest,
	}
}

// Hash returns the blake2b hash of the SCALE encoded header.
func (bh Header) Hash() common.Hash {
	encHeader, err := scale.Marshal(bh)
	if err != nil {
		panic(fmt.Sprintf("encoding header: %s", err))
	}

	hash, err := common.Blake2bHash(encHeader)
	if err != nil {
		panic(fmt.Sprintf("hashing header: %s", err))
	}

	return hash
}

// BlockID returns the hash and number of the header.
func (bh Header) BlockID() BlockID {
	return BlockID{Hash: bh.Hash(), Number: bh.Number}
}

func (bh Header) String() string {
	return fmt.Sprintf("Header{ParentHash=%s Number=%d StateRoot=%s ExtrinsicsRoot=%s Digest=%v}",
		bh.ParentHash, bh.Number, bh.StateRoot, bh.ExtrinsicsRoot, bh.Digest)
}
