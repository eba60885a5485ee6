// Copyright 2023 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	cfg "github.com/ChainSafe/grandpa-accountability/config"
)

// execRun runs the node until an interrupt or termination signal.
func execRun(cmd *cobra.Command, config *cfg.Config) (err error) {
	n, err := newNode(config)
	if err != nil {
		logger.Errorf("failed to create node services: %s", err)
		return err
	}
	defer func() {
		stopErr := n.stop()
		if err == nil {
			err = stopErr
		}
	}()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	return n.run(ctx)
}
