// Copyright 2021 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtrinsic_Codec(t *testing.T) {
	t.Parallel()

	signer := AccountID{0x7}
	extrinsic, err := NewExtrinsic(&signer, 3, uint64(42))
	require.NoError(t, err)
	assert.Equal(t, []byte{42, 0, 0, 0, 0, 0, 0, 0}, extrinsic.Call.Args)

	encoded, err := extrinsic.Encode()
	require.NoError(t, err)

	decoded, err := DecodeExtrinsic(encoded)
	require.NoError(t, err)
	assert.Equal(t, extrinsic, decoded)

	hash, err := extrinsic.Hash()
	require.NoError(t, err)
	decodedHash, err := decoded.Hash()
	require.NoError(t, err)
	assert.Equal(t, hash, decodedHash)

	unsigned, err := NewExtrinsic(nil, 0, []byte{1})
	require.NoError(t, err)
	encoded, err = unsigned.Encode()
	require.NoError(t, err)
	assert.Equal(t, byte(0), encoded[0])

	_, err = DecodeExtrinsic([]byte{1})
	assert.Error(t, err)
}
