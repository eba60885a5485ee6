// Copyright 2023 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package commands

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cfg "github.com/ChainSafe/grandpa-accountability/config"
)

func newTestConfig(t *testing.T) *cfg.Config {
	t.Helper()

	config := cfg.DefaultConfig()
	config.BasePath = t.TempDir()
	config.RPC.Host = "127.0.0.1"
	config.RPC.Port = 0
	config.MetricsAddress = "127.0.0.1:0"
	return config
}

func Test_newNode_notInitialised(t *testing.T) {
	t.Parallel()

	_, err := newNode(newTestConfig(t))
	assert.ErrorIs(t, err, errNotInitialised)
}

func Test_node_run(t *testing.T) {
	t.Parallel()

	config := newTestConfig(t)
	config.PublishMetrics = true
	config.Core.BlockInterval = 10 * time.Millisecond

	err := execInit(config, true, false, bytes.NewBuffer(nil))
	require.NoError(t, err)

	n, err := newNode(config)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	runErr := make(chan error)
	go func() {
		runErr <- n.run(ctx)
	}()

	assert.Eventually(t, func() bool {
		best, err := n.state.Block.BestBlockHeader()
		return err == nil && best.Number >= 2
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	assert.NoError(t, <-runErr)
	assert.NotNil(t, n.rpc.Addr())

	err = n.stop()
	assert.NoError(t, err)
}
