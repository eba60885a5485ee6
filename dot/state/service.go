// Copyright 2021 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package state

import (
	"fmt"

	"github.com/ChainSafe/gossamer/lib/common"

	"github.com/ChainSafe/grandpa-accountability/dot/types"
	"github.com/ChainSafe/grandpa-accountability/internal/database"
	"github.com/ChainSafe/grandpa-accountability/internal/log"
)

const storagePrefixTable = "storage"

var logger = log.NewFromGlobal(log.AddContext("pkg", "state"))

// Config is the state service configuration.
type Config struct {
	Backend  database.Backend
	Path     string
	InMemory bool
}

// Service holds the node database, its runtime storage and block state.
type Service struct {
	db      database.Database
	Storage database.Table
	Block   *BlockState
}

// NewService opens the database and returns the state service over it.
func NewService(cfg Config) (*Service, error) {
	db, err := database.Open(cfg.Backend, cfg.Path, cfg.InMemory)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	block, err := NewBlockState(db)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating block state: %w", err)
	}

	logger.Debugf("opened %s database at %s", cfg.Backend, db.Path())

	return &Service{
		db:      db,
		Storage: database.NewTable(db, storagePrefixTable),
		Block:   block,
	}, nil
}

// Initialised returns true if a genesis block was stored.
func (s *Service) Initialised() bool {
	return s.Block.BestBlockHash() != common.Hash{}
}

// Initialise stores the genesis header and its initial storage.
func (s *Service) Initialise(genesis types.Header, initialise func(Storage) error) error {
	overlay := NewOverlay(s.Storage)
	err := initialise(overlay)
	if err != nil {
		return fmt.Errorf("initialising genesis storage: %w", err)
	}

	err = s.Block.CommitBlock(genesis, overlay)
	if err != nil {
		return fmt.Errorf("committing genesis block: %w", err)
	}

	logger.Infof("initialised state with genesis block %s", genesis.Hash())
	return nil
}

// Close flushes and closes the database.
func (s *Service) Close() error {
	err := s.db.Flush()
	if err != nil {
		return fmt.Errorf("flushing database: %w", err)
	}
	return s.db.Close()
}
