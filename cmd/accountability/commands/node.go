// Copyright 2023 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	cfg "github.com/ChainSafe/grandpa-accountability/config"
	"github.com/ChainSafe/grandpa-accountability/dot/core"
	"github.com/ChainSafe/grandpa-accountability/dot/rpc"
	"github.com/ChainSafe/grandpa-accountability/dot/state"
	"github.com/ChainSafe/grandpa-accountability/internal/database"
	"github.com/ChainSafe/grandpa-accountability/internal/metrics"
	"github.com/ChainSafe/grandpa-accountability/lib/accountability"
	"github.com/ChainSafe/grandpa-accountability/lib/grandpa"
	"github.com/ChainSafe/grandpa-accountability/lib/transaction"
)

const shutdownTimeout = 5 * time.Second

var errNotInitialised = errors.New("node is not initialised, run the init command first")

// node holds the services of a running node.
type node struct {
	config    *cfg.Config
	state     *state.Service
	pool      *transaction.Pool
	reporter  *accountability.Reporter
	executive *core.Executive
	rpc       *rpc.HTTPServer
	metrics   *metrics.Server
}

// openState opens the state service of the configured base path.
func openState(config *cfg.Config) (*state.Service, error) {
	return state.NewService(state.Config{
		Backend:  database.Backend(config.State.Backend),
		Path:     config.DatabasePath(),
		InMemory: config.State.InMemory,
	})
}

// newNode creates the node services over an initialised state.
func newNode(config *cfg.Config) (n *node, err error) {
	stateSrvc, err := openState(config)
	if err != nil {
		return nil, fmt.Errorf("opening state: %w", err)
	}
	defer func() {
		if err != nil {
			closeErr := stateSrvc.Close()
			if closeErr != nil {
				logger.Errorf("failed to close state: %s", closeErr)
			}
		}
	}()

	if !stateSrvc.Initialised() {
		return nil, errNotInitialised
	}

	pool := transaction.NewPool()
	executive, err := core.NewExecutive(core.Config{
		BlockState:       stateSrvc.Block,
		Storage:          stateSrvc.Storage,
		Module:           grandpa.NewModule(grandpa.DefaultConfig(), grandpa.LoggingSlasher{}),
		TransactionState: pool,
	})
	if err != nil {
		return nil, fmt.Errorf("creating block executive: %w", err)
	}

	n = &node{
		config:    config,
		state:     stateSrvc,
		pool:      pool,
		reporter:  accountability.NewReporter(pool, stateSrvc.Block),
		executive: executive,
	}

	if config.RPC.Enabled {
		n.rpc = rpc.NewHTTPServer(&rpc.HTTPServerConfig{
			Storage:          stateSrvc.Storage,
			ReportAPI:        n.reporter,
			BlockProducerAPI: executive,
			Host:             config.RPC.Host,
			RPCPort:          config.RPC.Port,
			Modules:          config.RPC.Modules,
		})
	}

	if config.PublishMetrics {
		n.metrics = metrics.NewServer(config.MetricsAddress)
	}

	return n, nil
}

// start starts the metrics and rpc servers.
func (n *node) start() error {
	if n.metrics != nil {
		err := n.metrics.Start()
		if err != nil {
			return fmt.Errorf("starting metrics server: %w", err)
		}
	}

	if n.rpc != nil {
		err := n.rpc.Start()
		if err != nil {
			return fmt.Errorf("starting rpc server: %w", err)
		}
	}
	return nil
}

// run starts the node and builds blocks at the configured interval until
// the context is canceled.
func (n *node) run(ctx context.Context) error {
	err := n.start()
	if err != nil {
		return err
	}

	logger.Infof("node %s started", n.config.Name)

	var tick <-chan time.Time
	if n.config.Core.BlockInterval > 0 {
		ticker := time.NewTicker(n.config.Core.BlockInterval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-tick:
			n.buildBlock()
		}
	}
}

func (n *node) buildBlock() {
	block, result, err := n.executive.BuildBlock()
	if err != nil {
		logger.Errorf("failed to build block: %s", err)
		return
	}
	logger.Debugf("built block #%d with %d extrinsics", block.Header.Number, len(block.Body))
	if result.Failed > 0 {
		logger.Warnf("%d extrinsics failed in block #%d", result.Failed, block.Header.Number)
	}
}

// stop stops the servers and closes the state.
func (n *node) stop() (err error) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if n.rpc != nil {
		if stopErr := n.rpc.Stop(ctx); stopErr != nil {
			err = errors.Join(err, fmt.Errorf("stopping rpc server: %w", stopErr))
		}
	}

	if n.metrics != nil {
		if stopErr := n.metrics.Stop(ctx); stopErr != nil {
			err = errors.Join(err, fmt.Errorf("stopping metrics server: %w", stopErr))
		}
	}

	if closeErr := n.state.Close(); closeErr != nil {
		err = errors.Join(err, fmt.Errorf("closing state: %w", closeErr))
	}

	if err == nil {
		logger.Info("node stopped")
	}
	return err
}
