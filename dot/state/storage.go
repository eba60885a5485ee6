// Copyright 2021 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package state

import (
	"errors"
	"fmt"

	"github.com/ChainSafe/gossamer/lib/common"
	"github.com/ChainSafe/gossamer/pkg/scale"

	"github.com/ChainSafe/grandpa-accountability/internal/database"
)

// Storage is the key value store the runtime modules read and write.
// Get returns an error wrapping database.ErrNotFound for absent keys.
type Storage interface {
	database.Reader
	Put(key, value []byte) error
	Del(key []byte) error
}

// Decoder decodes a stored value.
type Decoder[T any] func(encoded []byte) (T, error)

func scaleDecoder[T any](encoded []byte) (value T, err error) {
	err = scale.Unmarshal(encoded, &value)
	return value, err
}

// StorageValue is a single typed value stored under
// twox128(module) ++ twox128(item).
type StorageValue[T any] struct {
	name   string
	key    []byte
	decode Decoder[T]
}

// NewStorageValue declares a storage value of the module given.
func NewStorageValue[T any](module, item string) StorageValue[T] {
	return NewStorageValueWithDecoder[T](module, item, scaleDecoder[T])
}

// NewStorageValueWithDecoder declares a storage value decoded with the
// decoder given instead of plain SCALE decoding.
func NewStorageValueWithDecoder[T any](module, item string, decode Decoder[T]) StorageValue[T] {
	return StorageValue[T]{
		name:   module + " " + item,
		key:    storagePrefix(module, item),
		decode: decode,
	}
}

// Key returns the storage key of the value.
func (v StorageValue[T]) Key() []byte {
	return v.key
}

// TryGet returns the stored value or nil if absent.
func (v StorageValue[T]) TryGet(s Storage) (*T, error) {
	encoded, err := s.Get(v.key)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("getting %s: %w", v.name, err)
	}

	value, err := v.decode(encoded)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", v.name, err)
	}
	return &value, nil
}

// Get returns the stored value, or the zero value if absent.
func (v StorageValue[T]) Get(s Storage) (value T, err error) {
	stored, err := v.TryGet(s)
	if err != nil || stored == nil {
		return value, err
	}
	return *stored, nil
}

// Exists returns true if a value is stored.
func (v StorageValue[T]) Exists(s Storage) (bool, error) {
	exists, err := s.Has(v.key)
	if err != nil {
		return false, fmt.Errorf("checking %s: %w", v.name, err)
	}
	return exists, nil
}

// Put stores the value.
func (v StorageValue[T]) Put(s Storage, value T) error {
	encoded, err := scale.Marshal(value)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", v.name, err)
	}
	err = s.Put(v.key, encoded)
	if err != nil {
		return fmt.Errorf("putting %s: %w", v.name, err)
	}
	return nil
}

// Kill removes the value.
func (v StorageValue[T]) Kill(s Storage) error {
	err := s.Del(v.key)
	if err != nil {
		return fmt.Errorf("killing %s: %w", v.name, err)
	}
	return nil
}

// Take returns the stored value, or nil if absent, and removes it.
func (v StorageValue[T]) Take(s Storage) (*T, error) {
	value, err := v.TryGet(s)
	if err != nil || value == nil {
		return nil, err
	}
	return value, v.Kill(s)
}

// Mutate reads the value, or the zero value if absent, calls f with it and
// stores the result if f succeeds.
func (v StorageValue[T]) Mutate(s Storage, f func(value *T) error) error {
	value, err := v.Get(s)
	if err != nil {
		return err
	}
	err = f(&value)
	if err != nil {
		return err
	}
	return v.Put(s, value)
}

// Append appends items to a stored list, creating it if absent.
func Append[E any](s Storage, v StorageValue[[]E], items ...E) error {
	return v.Mutate(s, func(list *[]E) error {
		*list = append(*list, items...)
		return nil
	})
}

// StorageMap is a typed map whose entries are stored under
// twox128(module) ++ twox128(item) ++ blake2_128(scale(key)) ++ scale(key).
type StorageMap[K, V any] struct {
	name   string
	prefix []byte
}

// NewStorageMap declares a storage map of the module given.
func NewStorageMap[K, V any](module, item string) StorageMap[K, V] {
	return StorageMap[K, V]{
		name:   module + " " + item,
		prefix: storagePrefix(module, item),
	}
}

// Key returns the storage key of the map entry.
func (m StorageMap[K, V]) Key(key K) ([]byte, error) {
	encodedKey, err := scale.Marshal(key)
	if err != nil {
		return nil, fmt.Errorf("encoding %s key: %w", m.name, err)
	}

	hashed, err := common.Blake2b128(encodedKey)
	if err != nil {
		return nil, fmt.Errorf("hashing %s key: %w", m.name, err)
	}

	storageKey := make([]byte, 0, len(m.prefix)+len(hashed)+len(encodedKey))
	storageKey = append(storageKey, m.prefix...)
	storageKey = append(storageKey, hashed...)
	storageKey = append(storageKey, encodedKey...)
	return storageKey, nil
}

// Get returns the value of the entry, or nil if absent.
func (m StorageMap[K, V]) Get(s Storage, key K) (*V, error) {
	storageKey, err := m.Key(key)
	if err != nil {
		return nil, err
	}

	encoded, err := s.Get(storageKey)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("getting %s entry: %w", m.name, err)
	}

	var value V
	err = scale.Unmarshal(encoded, &value)
	if err != nil {
		return nil, fmt.Errorf("decoding %s entry: %w", m.name, err)
	}
	return &value, nil
}

// Exists returns true if the entry exists.
func (m StorageMap[K, V]) Exists(s Storage, key K) (bool, error) {
	storageKey, err := m.Key(key)
	if err != nil {
		return false, err
	}
	return s.Has(storageKey)
}

// Insert stores the value of the entry.
func (m StorageMap[K, V]) Insert(s Storage, key K, value V) error {
	storageKey, err := m.Key(key)
	if err != nil {
		return err
	}

	encoded, err := scale.Marshal(value)
	if err != nil {
		return fmt.Errorf("encoding %s entry: %w", m.name, err)
	}

	err = s.Put(storageKey, encoded)
	if err != nil {
		return fmt.Errorf("inserting %s entry: %w", m.name, err)
	}
	return nil
}

// Remove removes the entry.
func (m StorageMap[K, V]) Remove(s Storage, key K) error {
	storageKey, err := m.Key(key)
	if err != nil {
		return err
	}

	err = s.Del(storageKey)
	if err != nil {
		return fmt.Errorf("removing %s entry: %w", m.name, err)
	}
	return nil
}

// Take returns the value of the entry, or nil if absent, and removes it.
func (m StorageMap[K, V]) Take(s Storage, key K) (*V, error) {
	value, err := m.Get(s, key)
	if err != nil || value == nil {
		return nil, err
	}
	return value, m.Remove(s, key)
}

// Mutate calls f with the value of the entry, nil if absent. The entry is
// set to the value returned, or removed if nil is returned.
func (m StorageMap[K, V]) Mutate(s Storage, key K, f func(value *V) (*V, error)) error {
	value, err := m.Get(s, key)
	if err != nil {
		return err
	}

	value, err = f(value)
	if err != nil {
		return err
	}

	if value == nil {
		return m.Remove(s, key)
	}
	return m.Insert(s, key, *value)
}

// Swap swaps the values of two entries.
func (m StorageMap[K, V]) Swap(s Storage, first, second K) error {
	firstValue, err := m.Get(s, first)
	if err != nil {
		return err
	}
	secondValue, err := m.Get(s, second)
	if err != nil {
		return err
	}

	for _, entry := range []struct {
		key   K
		value *V
	}{{first, secondValue}, {second, firstValue}} {
		if entry.value == nil {
			err = m.Remove(s, entry.key)
		} else {
			err = m.Insert(s, entry.key, *entry.value)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func storagePrefix(module, item string) []byte {
	moduleHash, err := common.Twox128Hash([]byte(module))
	if err != nil {
		panic(fmt.Sprintf("hashing module name %s: %s", module, err))
	}
	itemHash, err := common.Twox128Hash([]byte(item))
	if err != nil {
		panic(fmt.Sprintf("hashing item name %s: %s", item, err))
	}
	return append(moduleHash, itemHash...)
}
