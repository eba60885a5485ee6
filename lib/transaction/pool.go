// Copyright 2021 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package transaction

import (
	"errors"
	"fmt"
	"sync"

	"github.com/ChainSafe/gossamer/lib/common"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/exp/slices"
)

// ErrTransactionExists is returned when inserting a transaction already in the pool.
var ErrTransactionExists = errors.New("transaction already in pool")

var pooledTransactions = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "accountability_transaction",
	Name:      "pool_size",
	Help:      "number of report extrinsics waiting in the pool",
})

// Pool represents the transaction pool
type Pool struct {
	transactions map[common.Hash]*ValidTransaction
	nextSeq      uint64
	mu           sync.RWMutex
}

// NewPool returns a new empty Pool
func NewPool() *Pool {
	return &Pool{
		transactions: make(map[common.Hash]*ValidTransaction),
	}
}

// Transactions returns all the transactions in the pool, in insertion order.
func (p *Pool) Transactions() []*ValidTransaction {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.sorted()
}

// Insert inserts a transaction into the pool, keyed by the blake2b hash of
// its encoding.
func (p *Pool) Insert(tx *ValidTransaction) (common.Hash, error) {
	hash, err := tx.Extrinsic.Hash()
	if err != nil {
		return common.Hash{}, fmt.Errorf("hashing extrinsic: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.transactions[hash]; ok {
		return hash, fmt.Errorf("%w: %s", ErrTransactionExists, hash)
	}

	tx.hash = hash
	tx.seq = p.nextSeq
	p.nextSeq++
	p.transactions[hash] = tx
	pooledTransactions.Set(float64(len(p.transactions)))
	return hash, nil
}

// Remove removes a transaction from the pool
func (p *Pool) Remove(hash common.Hash) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.transactions, hash)
	pooledTransactions.Set(float64(len(p.transactions)))
}

// Drain removes and returns all the transactions in the pool, in insertion order.
func (p *Pool) Drain() []*ValidTransaction {
	p.mu.Lock()
	defer p.mu.Unlock()

	txs := p.sorted()
	p.transactions = make(map[common.Hash]*ValidTransaction)
	pooledTransactions.Set(0)
	return txs
}

// Len returns the number of transactions in the pool.
func (p *Pool) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.transactions)
}

func (p *Pool) sorted() []*ValidTransaction {
	txs := make([]*ValidTransaction, 0, len(p.transactions))
	for _, tx := range p.transactions {
		txs = append(txs, tx)
	}
	slices.SortFunc(txs, func(a, b *ValidTransaction) int {
		switch {
		case a.seq < b.seq:
			return -1
		case a.seq > b.seq:
			return 1
		default:
			return 0
		}
	})
	return txs
}
