// Copyright 2021 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package types

import (
	"fmt"
)

// ConsensusEngineID is a 4-character identifier of the consensus engine that produced the digest.
type ConsensusEngineID [4]byte

// NewConsensusEngineID casts a byte array to ConsensusEngineID
// if the input is longer than 4 bytes, it takes the first 4 bytes
func NewConsensusEngineID(in []byte) (res ConsensusEngineID) {
	copy(res[:], in)
	return res
}

// ToBytes turns ConsensusEngineID to a byte array
func (h ConsensusEngineID) ToBytes() []byte {
	return h[:]
}

func (h ConsensusEngineID) String() string {
	return string(h[:])
}

// GrandpaEngineID is the hard-coded GRANDPA ID
var GrandpaEngineID = ConsensusEngineID{'F', 'R', 'N', 'K'}

// DigestItemKind is the kind of a digest item. Its values match
// the variant indices of the substrate digest item.
type DigestItemKind byte

const (
	// ConsensusDigestKind is a message from the runtime to the consensus engine.
	ConsensusDigestKind DigestItemKind = 4
	// SealDigestKind is a seal put in by the block author.
	SealDigestKind DigestItemKind = 5
	// PreRuntimeDigestKind is a message from the consensus engine to the runtime.
	PreRuntimeDigestKind DigestItemKind = 6
)

func (k DigestItemKind) String() string {
	switch k {
	case ConsensusDigestKind:
		return "Consensus"
	case SealDigestKind:
		return "Seal"
	case PreRuntimeDigestKind:
		return "PreRuntime"
	default:
		return fmt.Sprintf("Unknown(%d)", byte(k))
	}
}

// DigestItem is an engine tagged digest entry. Its SCALE encoding is
// identical to the consensus, seal and pre-runtime digest items.
type DigestItem struct {
	Kind     DigestItemKind
	EngineID ConsensusEngineID
	Data     []byte
}

func (d DigestItem) String() string {
	return fmt.Sprintf("%s(%s, 0x%x)", d.Kind, d.EngineID, d.Data)
}

// NewConsensusDigest returns a consensus digest item for the engine given.
func NewConsensusDigest(engineID ConsensusEngineID, data []byte) DigestItem {
	return DigestItem{
		Kind:     ConsensusDigestKind,
		EngineID: engineID,
		Data:     data,
	}
}

// Digest represents the block digest. It consists of digest items.
type Digest []DigestItem

// ConsensusLog returns the data of the first consensus item for the engine,
// or nil if there is none.
func (d Digest) ConsensusLog(engineID ConsensusEngineID) []byte {
	for _, item := range d {
		if item.Kind == ConsensusDigestKind && item.EngineID == engineID {
			return item.Data
		}
	}
	return nil
}
