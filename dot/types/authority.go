// Copyright 2021 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package types

import (
	"bytes"
	"fmt"

	"github.com/ChainSafe/gossamer/lib/common"
	"github.com/ChainSafe/gossamer/lib/crypto/ed25519"
)

// AuthorityID is the ed25519 public key of a GRANDPA authority.
type AuthorityID [32]byte

// NewAuthorityID returns the authority ID for the public key given.
func NewAuthorityID(key *ed25519.PublicKey) (id AuthorityID) {
	copy(id[:], key.Encode())
	return id
}

// Compare orders authority IDs by their bytes.
func (id AuthorityID) Compare(other AuthorityID) int {
	return bytes.Compare(id[:], other[:])
}

// PublicKey decodes the ed25519 public key.
func (id AuthorityID) PublicKey() (*ed25519.PublicKey, error) {
	return ed25519.NewPublicKey(id[:])
}

func (id AuthorityID) String() string {
	return common.BytesToHex(id[:])
}

// MarshalText encodes the ID as a 0x prefixed hex string.
func (id AuthorityID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText decodes a 0x prefixed hex string.
func (id *AuthorityID) UnmarshalText(text []byte) error {
	decoded, err := common.HexToBytes(string(text))
	if err != nil {
		return fmt.Errorf("decoding authority id: %w", err)
	}
	if len(decoded) != len(id) {
		return fmt.Errorf("authority id has %d bytes instead of %d", len(decoded), len(id))
	}
	copy(id[:], decoded)
	return nil
}

// AuthoritySignature is an ed25519 signature made by an authority.
type AuthoritySignature [64]byte

func (s AuthoritySignature) String() string {
	return common.BytesToHex(s[:])
}

// Authority is an authority ID with its voting weight.
type Authority struct {
	ID     AuthorityID `json:"id"`
	Weight uint64      `json:"weight"`
}

// AuthorityList is an ordered list of authorities.
type AuthorityList []Authority

// Equal returns true if both lists contain the same authorities
// with the same weights in the same order.
func (al AuthorityList) Equal(other AuthorityList) bool {
	if len(al) != len(other) {
		return false
	}
	for i := range al {
		if al[i] != other[i] {
			return false
		}
	}
	return true
}

// IDs returns the authority IDs in list order.
func (al AuthorityList) IDs() []AuthorityID {
	ids := make([]AuthorityID, len(al))
	for i, authority := range al {
		ids[i] = authority.ID
	}
	return ids
}
