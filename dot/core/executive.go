// Copyright 2021 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package core

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/exp/slices"

	"github.com/ChainSafe/grandpa-accountability/dot/state"
	"github.com/ChainSafe/grandpa-accountability/dot/types"
	"github.com/ChainSafe/grandpa-accountability/internal/log"
)

var logger = log.NewFromGlobal(log.AddContext("pkg", "core"))

var (
	blocksExecuted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "accountability_core",
		Name:      "blocks_executed_total",
		Help:      "number of blocks executed",
	})
	extrinsicsApplied = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "accountability_core",
		Name:      "extrinsics_total",
		Help:      "number of extrinsics applied, by result",
	}, []string{"result"})
	bestBlockNumber = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "accountability_core",
		Name:      "best_block_number",
		Help:      "number of the best block",
	})
)

// Config holds the configuration for the block executive.
type Config struct {
	BlockState       BlockState
	Storage          state.Storage
	Module           Module
	TransactionState TransactionState
}

// Executive executes blocks against the runtime storage, one at a time.
type Executive struct {
	sync.Mutex

	blockState       BlockState
	storage          state.Storage
	module           Module
	transactionState TransactionState

	inherents []types.Extrinsic
}

// NewExecutive returns a new block executive.
func NewExecutive(cfg Config) (*Executive, error) {
	if cfg.BlockState == nil {
		return nil, ErrNilBlockState
	}

	if cfg.Storage == nil {
		return nil, ErrNilStorage
	}

	if cfg.Module == nil {
		return nil, ErrNilModule
	}

	if cfg.TransactionState == nil {
		return nil, ErrNilTransactionState
	}

	return &Executive{
		blockState:       cfg.BlockState,
		storage:          cfg.Storage,
		module:           cfg.Module,
		transactionState: cfg.TransactionState,
	}, nil
}

// BlockResult is the outcome of the execution of a block.
type BlockResult struct {
	// Header is the header of the executed block, completed with the
	// digest and extrinsics root of the execution.
	Header  types.Header
	Applied int
	Failed  int
	Events  []state.EventRecord
}

// ExecuteBlock executes the block on top of the best block and stores
// its header. Extrinsics whose call fails leave no change in storage. The
// storage changes of the block are committed with its header at once.
func (e *Executive) ExecuteBlock(block types.Block) (*BlockResult, error) {
	e.Lock()
	defer e.Unlock()
	return e.executeBlock(block)
}

func (e *Executive) executeBlock(block types.Block) (*BlockResult, error) {
	header := block.Header

	best, err := e.blockState.BestBlockHeader()
	if err != nil {
		return nil, fmt.Errorf("getting best block header: %w", err)
	}

	bestHash := best.Hash()
	if header.ParentHash != bestHash {
		return nil, fmt.Errorf("%w: parent %s, best block %s (%d)",
			ErrParentNotBest, header.ParentHash, bestHash, best.Number)
	}

	if header.Number != best.Number+1 {
		return nil, fmt.Errorf("%w: block %d on parent %d", ErrBlockNumber, header.Number, best.Number)
	}

	extrinsicsRoot, err := types.ExtrinsicsRoot(block.Body)
	if err != nil {
		return nil, fmt.Errorf("computing extrinsics root: %w", err)
	}
	if !header.ExtrinsicsRoot.IsEmpty() && header.ExtrinsicsRoot != extrinsicsRoot {
		return nil, fmt.Errorf("%w: header has %s, body has %s",
			ErrExtrinsicsRoot, header.ExtrinsicsRoot, extrinsicsRoot)
	}

	overlay := state.NewOverlay(e.storage)
	defer overlay.Discard()

	err = state.InitializeBlock(overlay, header.Number, header.ParentHash)
	if err != nil {
		return nil, fmt.Errorf("initialising block %d: %w", header.Number, err)
	}

	result := &BlockResult{}
	for i, extrinsic := range block.Body {
		err = e.applyExtrinsic(overlay, uint32(i), extrinsic)
		if err != nil {
			result.Failed++
			extrinsicsApplied.WithLabelValues("failed").Inc()
			logger.Debugf("extrinsic %d of block %d failed: %s", i, header.Number, err)
			continue
		}
		result.Applied++
		extrinsicsApplied.WithLabelValues("applied").Inc()
	}

	err = state.ClearExtrinsicIndex(overlay)
	if err != nil {
		return nil, err
	}

	err = e.module.OnFinalize(overlay, header.Number)
	if err != nil {
		return nil, fmt.Errorf("finalizing block %d: %w", header.Number, err)
	}

	digest, err := state.BlockDigest(overlay)
	if err != nil {
		return nil, err
	}
	if len(header.Digest) > 0 && !equalDigests(header.Digest, digest) {
		return nil, fmt.Errorf("%w: header has %v, execution produced %v",
			ErrDigestMismatch, header.Digest, digest)
	}

	result.Events, err = state.Events(overlay)
	if err != nil {
		return nil, err
	}

	header.Digest = digest
	header.ExtrinsicsRoot = extrinsicsRoot
	err = e.blockState.CommitBlock(header, overlay)
	if err != nil {
		return nil, fmt.Errorf("committing block %d: %w", header.Number, err)
	}
	result.Header = header

	blocksExecuted.Inc()
	bestBlockNumber.Set(float64(header.Number))
	logger.Infof("executed block %s (%d) with %d applied and %d failed extrinsics",
		header.Hash(), header.Number, result.Applied, result.Failed)

	return result, nil
}

// applyExtrinsic dispatches the extrinsic in its own overlay, merged into
// the block overlay only if the call succeeds.
func (e *Executive) applyExtrinsic(block *state.Overlay, index uint32, extrinsic types.Extrinsic) error {
	overlay := state.NewOverlay(block)
	defer overlay.Discard()

	err := state.SetExtrinsicIndex(overlay, index)
	if err != nil {
		return err
	}

	err = e.module.Dispatch(overlay, extrinsic)
	if err != nil {
		return err
	}

	return overlay.Commit()
}

// QueueInherent queues an unsigned call for the next block built, ahead
// of the pool transactions.
func (e *Executive) QueueInherent(call types.Call) {
	e.Lock()
	defer e.Unlock()
	e.inherents = append(e.inherents, types.Extrinsic{Call: call})
}

// BuildBlock drains the queued inherents and the transaction pool into a
// new block on top of the best block and executes it.
func (e *Executive) BuildBlock() (*types.Block, *BlockResult, error) {
	e.Lock()
	defer e.Unlock()

	best, err := e.blockState.BestBlockHeader()
	if err != nil {
		return nil, nil, fmt.Errorf("getting best block header: %w", err)
	}

	pending := e.transactionState.Drain()
	body := make([]types.Extrinsic, 0, len(e.inherents)+len(pending))
	body = append(body, e.inherents...)
	for _, tx := range pending {
		body = append(body, tx.Extrinsic)
	}

	block := types.Block{
		Header: types.Header{
			ParentHash: best.Hash(),
			Number:     best.Number + 1,
		},
		Body: body,
	}

	result, err := e.executeBlock(block)
	if err != nil {
		return nil, nil, err
	}
	e.inherents = nil

	block.Header = result.Header
	return &block, result, nil
}

func equalDigests(a, b types.Digest) bool {
	return slices.EqualFunc(a, b, func(x, y types.DigestItem) bool {
		return x.Kind == y.Kind && x.EngineID == y.EngineID && bytes.Equal(x.Data, y.Data)
	})
}
