// Copyright 2022 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package database

import (
	"errors"
	"fmt"

	badger "github.com/dgraph-io/badger/v3"
)

var _ Database = (*badgerDB)(nil)

// badgerDB is a Database implementation using a badger/v3 database.
type badgerDB struct {
	path     string
	inMemory bool
	db       *badger.DB
}

// NewBadger opens a badger database at the given path, or an
// in memory one if inMemory is true.
func NewBadger(path string, inMemory bool) (*badgerDB, error) {
	badgerOptions := badger.DefaultOptions(path)
	if inMemory {
		badgerOptions = badger.DefaultOptions("")
	}
	badgerOptions = badgerOptions.WithLogger(nil)
	badgerOptions = badgerOptions.WithInMemory(inMemory)

	db, err := badger.Open(badgerOptions)
	if err != nil {
		return nil, fmt.Errorf("opening badger database: %w", err)
	}

	logger.Debugf("badger database opened at %s (in memory: %t)", path, inMemory)
	return &badgerDB{path: path, inMemory: inMemory, db: db}, nil
}

func (b *badgerDB) Path() string {
	return b.path
}

// Get retrieves a value from the database using the given key.
// It returns the wrapped error ErrNotFound if the key is not found.
func (b *badgerDB) Get(key []byte) (value []byte, err error) {
	err = b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}

		value, err = item.ValueCopy(nil)
		if err != nil {
			return fmt.Errorf("copying value: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("getting 0x%x from database: %w", key, transformBadgerError(err))
	}

	return value, nil
}

func (b *badgerDB) Has(key []byte) (exists bool, err error) {
	_, err = b.Get(key)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, ErrNotFound):
		return false, nil
	default:
		return false, err
	}
}

func (b *badgerDB) Put(key, value []byte) error {
	err := b.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, value)
	})
	if err != nil {
		return fmt.Errorf("writing 0x%x to database: %w", key, transformBadgerError(err))
	}
	return nil
}

// Del deletes the given key from the database.
// If the key is not found, no error is returned.
func (b *badgerDB) Del(key []byte) error {
	err := b.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key)
	})
	if err != nil {
		return fmt.Errorf("deleting 0x%x from database: %w", key, transformBadgerError(err))
	}
	return nil
}

func (b *badgerDB) Flush() error {
	if b.inMemory {
		return nil
	}
	err := b.db.Sync()
	if err != nil {
		return fmt.Errorf("syncing database: %w", transformBadgerError(err))
	}
	return nil
}

func (b *badgerDB) Close() error {
	return transformBadgerError(b.db.Close())
}

func (b *badgerDB) NewBatch() Batch {
	return &badgerBatch{
		db:         b.db,
		writeBatch: b.db.NewWriteBatch(),
	}
}

func (b *badgerDB) NewIterator() Iterator {
	return b.NewPrefixIterator(nil)
}

func (b *badgerDB) NewPrefixIterator(prefix []byte) Iterator {
	txn := b.db.NewTransaction(false)
	options := badger.DefaultIteratorOptions
	options.Prefix = prefix
	return &badgerIterator{
		txn:      txn,
		iterator: txn.NewIterator(options),
	}
}

func transformBadgerError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, badger.ErrKeyNotFound):
		return ErrNotFound
	case errors.Is(err, badger.ErrDBClosed):
		return ErrClosed
	default:
		return err
	}
}

type badgerBatch struct {
	db         *badger.DB
	writeBatch *badger.WriteBatch
	size       int
}

var _ Batch = (*badgerBatch)(nil)

func (bb *badgerBatch) Put(key, value []byte) error {
	// the write batch keeps references to the slices until flushed
	keyCopy := append([]byte(nil), key...)
	valueCopy := append([]byte(nil), value...)
	err := bb.writeBatch.Set(keyCopy, valueCopy)
	if err != nil {
		return fmt.Errorf("setting to batch writer: %w", err)
	}
	bb.size++
	return nil
}

func (bb *badgerBatch) Del(key []byte) error {
	err := bb.writeBatch.Delete(append([]byte(nil), key...))
	if err != nil {
		return fmt.Errorf("setting to batch delete: %w", err)
	}
	bb.size++
	return nil
}

func (bb *badgerBatch) Flush() error {
	err := bb.writeBatch.Flush()
	if err != nil {
		return fmt.Errorf("committing batch: %w", transformBadgerError(err))
	}
	// a flushed badger write batch cannot be reused
	bb.writeBatch = bb.db.NewWriteBatch()
	return nil
}

func (bb *badgerBatch) ValueSize() int {
	return bb.size
}

func (bb *badgerBatch) Reset() {
	bb.writeBatch.Cancel()
	bb.writeBatch = bb.db.NewWriteBatch()
	bb.size = 0
}

func (bb *badgerBatch) Close() error {
	bb.writeBatch.Cancel()
	bb.size = 0
	return nil
}

type badgerIterator struct {
	txn      *badger.Txn
	iterator *badger.Iterator
}

var _ Iterator = (*badgerIterator)(nil)

func (bi *badgerIterator) Valid() bool {
	return bi.iterator.Valid()
}

func (bi *badgerIterator) Next() bool {
	bi.iterator.Next()
	return bi.iterator.Valid()
}

func (bi *badgerIterator) Key() []byte {
	return bi.iterator.Item().KeyCopy(nil)
}

func (bi *badgerIterator) Value() []byte {
	value, err := bi.iterator.Item().ValueCopy(nil)
	if err != nil {
		logger.Errorf("copying iterator value: %s", err)
		return nil
	}
	return value
}

func (bi *badgerIterator) First() bool {
	bi.iterator.Rewind()
	return bi.iterator.Valid()
}

func (bi *badgerIterator) SeekGE(key []byte) bool {
	bi.iterator.Seek(key)
	return bi.iterator.Valid()
}

func (bi *badgerIterator) Release() {
	bi.iterator.Close()
	bi.txn.Discard()
}
