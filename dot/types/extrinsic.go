// Copyright 2021 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package types

import (
	"fmt"

	"github.com/ChainSafe/gossamer/lib/common"
	"github.com/ChainSafe/gossamer/pkg/scale"
)

// AccountID is the account of a signed call origin.
type AccountID [32]byte

func (a AccountID) String() string {
	return common.BytesToHex(a[:])
}

// CallIndex identifies a dispatchable call.
type CallIndex byte

// Call is a call index with its SCALE encoded arguments.
type Call struct {
	Index CallIndex
	Args  []byte
}

// Extrinsic is a call included in a block, optionally signed by an account.
type Extrinsic struct {
	Signer *AccountID
	Call   Call
}

// NewExtrinsic encodes the arguments of the call into an extrinsic.
func NewExtrinsic(signer *AccountID, index CallIndex, args interface{}) (Extrinsic, error) {
	encoded, err := scale.Marshal(args)
	if err != nil {
		return Extrinsic{}, fmt.Errorf("encoding call arguments: %w", err)
	}
	return Extrinsic{
		Signer: signer,
		Call:   Call{Index: index, Args: encoded},
	}, nil
}

// Encode returns the SCALE encoding of the extrinsic.
func (e Extrinsic) Encode() ([]byte, error) {
	return scale.Marshal(e)
}

// Hash returns the blake2b hash of the SCALE encoded extrinsic.
func (e Extrinsic) Hash() (common.Hash, error) {
	return scaleHash(e)
}

// DecodeExtrinsic decodes a SCALE encoded extrinsic.
func DecodeExtrinsic(encoded []byte) (Extrinsic, error) {
	var extrinsic Extrinsic
	err := scale.Unmarshal(encoded, &extrinsic)
	if err != nil {
		return Extrinsic{}, fmt.Errorf("decoding extrinsic: %w", err)
	}
	return extrinsic, nil
}

// Block is a header with its extrinsics.
type Block struct {
	Header Header
	Body   []Extrinsic
}

// ExtrinsicsRoot returns the blake2b hash of the SCALE encoded block body.
func ExtrinsicsRoot(body []Extrinsic) (common.Hash, error) {
	return scaleHash(body)
}
