// Copyright 2021 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package state

import (
	"fmt"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/ChainSafe/grandpa-accountability/internal/database"
)

var _ Storage = (*Overlay)(nil)

// Overlay buffers writes over a parent storage until they are committed
// or discarded. It is not safe for concurrent use.
type Overlay struct {
	parent Storage
	// nil values are deletions
	changes map[string][]byte
}

// NewOverlay returns an overlay over the parent storage given.
func NewOverlay(parent Storage) *Overlay {
	return &Overlay{
		parent:  parent,
		changes: make(map[string][]byte),
	}
}

// Get returns the value of the key, looking up the parent storage
// if the key was not changed in the overlay.
func (o *Overlay) Get(key []byte) ([]byte, error) {
	value, changed := o.changes[string(key)]
	if !changed {
		return o.parent.Get(key)
	}

	if value == nil {
		return nil, fmt.Errorf("getting 0x%x from overlay: %w", key, database.ErrNotFound)
	}

	return slices.Clone(value), nil
}

// Has returns true if the key has a value.
func (o *Overlay) Has(key []byte) (bool, error) {
	value, changed := o.changes[string(key)]
	if !changed {
		return o.parent.Has(key)
	}
	return value != nil, nil
}

// Put sets the value of the key in the overlay.
func (o *Overlay) Put(key, value []byte) error {
	valueCopy := make([]byte, len(value))
	copy(valueCopy, value)
	o.changes[string(key)] = valueCopy
	return nil
}

// Del deletes the key in the overlay.
func (o *Overlay) Del(key []byte) error {
	o.changes[string(key)] = nil
	return nil
}

// Len returns the number of keys changed.
func (o *Overlay) Len() int {
	return len(o.changes)
}

// Discard drops all changes.
func (o *Overlay) Discard() {
	o.changes = make(map[string][]byte)
}

type batcher interface {
	NewBatch() database.Batch
}

// Commit writes all changes to the parent storage, in key order, and
// empties the overlay. Changes are written in a single batch if the
// parent storage supports batches.
func (o *Overlay) Commit() (err error) {
	switch parent := o.parent.(type) {
	case *Overlay:
		maps.Copy(parent.changes, o.changes)
	case batcher:
		batch := parent.NewBatch()
		defer func() {
			closeErr := batch.Close()
			if err == nil && closeErr != nil {
				err = fmt.Errorf("closing batch: %w", closeErr)
			}
		}()

		err = o.writeTo(batch)
		if err != nil {
			return err
		}

		err = batch.Flush()
		if err != nil {
			return fmt.Errorf("flushing batch: %w", err)
		}
	default:
		err = o.writeTo(o.parent)
		if err != nil {
			return err
		}
	}

	o.Discard()
	return nil
}

type writer interface {
	Put(key, value []byte) error
	Del(key []byte) error
}

// writeTo writes the changes to the writer given, in key order.
func (o *Overlay) writeTo(w writer) error {
	keys := maps.Keys(o.changes)
	slices.Sort(keys)

	for _, key := range keys {
		value := o.changes[key]
		var err error
		if value == nil {
			err = w.Del([]byte(key))
		} else {
			err = w.Put([]byte(key), value)
		}
		if err != nil {
			return fmt.Errorf("writing 0x%x: %w", key, err)
		}
	}
	return nil
}
