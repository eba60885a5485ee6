// Copyright 2021 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package accountability

import (
	"errors"
	"fmt"

	"github.com/ChainSafe/gossamer/lib/common"

	"github.com/ChainSafe/grandpa-accountability/dot/types"
	"github.com/ChainSafe/grandpa-accountability/internal/log"
	"github.com/ChainSafe/grandpa-accountability/lib/grandpa"
	"github.com/ChainSafe/grandpa-accountability/lib/transaction"
)

// ErrDecodingReport is returned when a submitted report is not a valid extrinsic.
var ErrDecodingReport = errors.New("cannot decode report call")

var logger = log.NewFromGlobal(log.AddContext("pkg", "accountability"))

// TransactionPool is the pool report extrinsics are submitted to.
type TransactionPool interface {
	Insert(tx *transaction.ValidTransaction) (common.Hash, error)
}

// BlockState is the block state used to tag submitted reports with the
// best block number.
type BlockState interface {
	BestBlockHeader() (*types.Header, error)
}

// Logger is the logger to log submissions to.
type Logger interface {
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
}

// Reporter submits misbehaviour reports to the transaction pool.
type Reporter struct {
	pool   TransactionPool
	blocks BlockState
	logger Logger
}

// NewReporter returns a reporter submitting to the pool given.
func NewReporter(pool TransactionPool, blocks BlockState) *Reporter {
	return &Reporter{
		pool:   pool,
		blocks: blocks,
		logger: logger,
	}
}

// SubmitReport decodes the report extrinsic, checks its call is a known
// report and inserts it in the transaction pool at the best block number.
func (r *Reporter) SubmitReport(encoded []byte) (hash common.Hash, err error) {
	extrinsic, err := types.DecodeExtrinsic(encoded)
	if err != nil {
		return hash, fmt.Errorf("%w: %s", ErrDecodingReport, err)
	}

	err = grandpa.ValidateCall(extrinsic.Call)
	if err != nil {
		return hash, fmt.Errorf("%w: %s", ErrDecodingReport, err)
	}

	best, err := r.blocks.BestBlockHeader()
	if err != nil {
		return hash, fmt.Errorf("getting best block header: %w", err)
	}

	hash, err = r.pool.Insert(transaction.NewValidTransaction(extrinsic, best.Number))
	if err != nil {
		return hash, fmt.Errorf("inserting report in transaction pool: %w", err)
	}

	return hash, nil
}

// SubmitReportCall submits the report extrinsic, logging failures.
func (r *Reporter) SubmitReportCall(encoded []byte) {
	r.logger.Infof("submitting report call to transaction pool")

	hash, err := r.SubmitReport(encoded)
	switch {
	case errors.Is(err, ErrDecodingReport):
		r.logger.Warnf("error decoding report call: %s", err)
	case err != nil:
		r.logger.Warnf("error importing misbehaviour report: %s", err)
	default:
		r.logger.Infof("report %s submitted", hash)
	}
}
