// Copyright 2023 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package commands

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/ChainSafe/gossamer/lib/common"
	"github.com/ChainSafe/gossamer/lib/crypto/ed25519"
	"github.com/ChainSafe/gossamer/pkg/scale"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ChainSafe/grandpa-accountability/dot/types"
	"github.com/ChainSafe/grandpa-accountability/lib/genesis"
	"github.com/ChainSafe/grandpa-accountability/lib/grandpa"
)

func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd, err := NewRootCommand()
	require.NoError(t, err)

	output := bytes.NewBuffer(nil)
	cmd.SetOut(output)
	cmd.SetErr(output)
	cmd.SetArgs(append(args, "--log", "error"))

	err = cmd.Execute()
	return output.String(), err
}

func readStatus(t *testing.T, basePath string) statusResponse {
	t.Helper()

	output, err := executeCommand(t, "status", "--base-path", basePath)
	require.NoError(t, err)

	var status statusResponse
	err = json.Unmarshal([]byte(output), &status)
	require.NoError(t, err, output)
	return status
}

// newEquivocationBlock returns the hex encoded block #1 carrying a
// precommit equivocation of alice.
func newEquivocationBlock(t *testing.T, parent common.Hash) string {
	t.Helper()

	alice, err := genesis.DevKeypair("alice")
	require.NoError(t, err)

	votes := make([]types.VoteSignature[types.Precommit], 2)
	for i, hash := range []common.Hash{{1}, {2}} {
		precommit := types.NewPrecommit(hash, 1)
		signature, err := grandpa.SignVote(alice, precommit, 1, 0)
		require.NoError(t, err)
		votes[i] = types.VoteSignature[types.Precommit]{Vote: precommit, Signature: signature}
	}

	proof := types.PrecommitEquivocationProof{
		Equivocation: types.Equivocation[types.Precommit]{
			RoundNumber: 1,
			Identity:    types.NewAuthorityID(alice.Public().(*ed25519.PublicKey)),
			First:       votes[0],
			Second:      votes[1],
		},
	}
	extrinsic, err := types.NewExtrinsic(nil, grandpa.ReportPrecommitEquivocationCall, proof)
	require.NoError(t, err)

	block := types.Block{
		Header: types.Header{ParentHash: parent, Number: 1},
		Body:   []types.Extrinsic{extrinsic},
	}
	encoded, err := scale.Marshal(block)
	require.NoError(t, err)
	return common.BytesToHex(encoded)
}

func TestCommands_initImportStatus(t *testing.T) {
	t.Parallel()

	basePath := t.TempDir()

	_, err := executeCommand(t, "status", "--base-path", basePath)
	assert.ErrorIs(t, err, errNotInitialised)

	output, err := executeCommand(t, "init", "--dev", "--base-path", basePath)
	require.NoError(t, err)
	assert.Contains(t, output, "initialised Development with genesis block")
	assert.FileExists(t, filepath.Join(basePath, "genesis.json"))

	_, err = executeCommand(t, "init", "--dev", "--base-path", basePath)
	assert.ErrorIs(t, err, errAlreadyInitialised)

	status := readStatus(t, basePath)
	assert.Equal(t, uint32(0), status.BestBlock.Number)
	assert.Equal(t, uint64(0), status.SetID)
	assert.Len(t, status.Authorities, len(genesis.DevAuthorityNames))
	assert.Nil(t, status.PendingChange)
	assert.Empty(t, status.ChallengeSessions)

	genesisHash, err := common.HexToHash(status.BestBlock.Hash)
	require.NoError(t, err)

	blocksFile := filepath.Join(t.TempDir(), "blocks.hex")
	content := "\n" + newEquivocationBlock(t, genesisHash) + "\n"
	err = os.WriteFile(blocksFile, []byte(content), 0o600)
	require.NoError(t, err)

	output, err = executeCommand(t, "import-blocks", blocksFile, "--base-path", basePath)
	require.NoError(t, err)
	assert.Contains(t, output, "imported block #1")
	assert.Contains(t, output, "1 applied, 0 failed")

	status = readStatus(t, basePath)
	assert.Equal(t, uint32(1), status.BestBlock.Number)

	_, err = executeCommand(t, "import-blocks", blocksFile, "--base-path", basePath)
	assert.ErrorContains(t, err, "line 2: executing block #1")

	output, err = executeCommand(t, "init", "--dev", "--force", "--base-path", basePath)
	require.NoError(t, err)
	assert.Contains(t, output, "initialised Development")

	status = readStatus(t, basePath)
	assert.Equal(t, uint32(0), status.BestBlock.Number)
}

func TestCommands_initGenesisFile(t *testing.T) {
	t.Parallel()

	basePath := t.TempDir()

	_, err := executeCommand(t, "init", "--base-path", basePath)
	assert.ErrorIs(t, err, errGenesisNotSet)

	gen := genesis.NewDevGenesis(types.AuthorityList{
		{ID: types.AuthorityID{1}, Weight: 1},
		{ID: types.AuthorityID{2}, Weight: 2},
	})
	genesisFile := filepath.Join(t.TempDir(), "genesis.json")
	err = gen.WriteJSON(genesisFile)
	require.NoError(t, err)

	_, err = executeCommand(t, "init", "--genesis", genesisFile, "--base-path", basePath)
	require.NoError(t, err)

	status := readStatus(t, basePath)
	require.Len(t, status.Authorities, 2)
	assert.Equal(t, uint64(2), status.Authorities[1].Weight)
}

func TestCommands_configFile(t *testing.T) {
	t.Parallel()

	basePath := t.TempDir()
	content := `name = "from-file"
[state]
backend = "badger"
`
	err := os.WriteFile(filepath.Join(basePath, "config.toml"), []byte(content), 0o600)
	require.NoError(t, err)

	_, err = executeCommand(t, "init", "--dev", "--base-path", basePath)
	require.NoError(t, err)

	status := readStatus(t, basePath)
	assert.Equal(t, "from-file", status.Name)
	assert.DirExists(t, filepath.Join(basePath, "db"))
}

func TestCommands_invalidFlag(t *testing.T) {
	t.Parallel()

	_, err := executeCommand(t, "status", "--base-path", t.TempDir(), "--state-backend", "rocksdb")
	assert.ErrorContains(t, err, "invalid configuration")
}

func TestDecodeBlock(t *testing.T) {
	t.Parallel()

	testCases := map[string]struct {
		text   string
		errMsg string
	}{
		"not_hex": {
			text:   "zz",
			errMsg: "decoding hex",
		},
		"not_a_block": {
			text:   "0x01",
			errMsg: "decoding block",
		},
	}

	for name, testCase := range testCases {
		testCase := testCase
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			_, err := decodeBlock(testCase.text)
			assert.ErrorContains(t, err, testCase.errMsg)
		})
	}
}
