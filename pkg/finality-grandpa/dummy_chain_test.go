// Copyright 2023 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package grandpa

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

const GenesisHash = "genesis"
const nullHash = "NULL"

var errNotDescendant = errors.New("block not descendent of base")

type testID string

func (id testID) Compare(other testID) int {
	return strings.Compare(string(id), string(other))
}

type blockRecord struct {
	hash   string
	number uint32
	parent string
}

// dummyChain is an in memory block tree used to exercise ancestry lookups.
type dummyChain struct {
	inner map[string]blockRecord
}

func newDummyChain() *dummyChain {
	dc := &dummyChain{
		inner: make(map[string]blockRecord),
	}
	dc.inner[GenesisHash] = blockRecord{
		number: 1,
		parent: nullHash,
		hash:   GenesisHash,
	}
	return dc
}

func (dc *dummyChain) Ancestry(base, block string) (ancestors []string, err error) {
	ancestors = make([]string, 0)
loop:
	for {
		br, ok := dc.inner[block]
		if !ok {
			return nil, errNotDescendant
		}
		block = br.parent

		switch block {
		case nullHash:
			return nil, errNotDescendant
		case base:
			break loop
		}
		ancestors = append(ancestors, block)
	}
	return ancestors, nil
}

func (dc *dummyChain) IsEqualOrDescendantOf(base, block string) bool {
	if base == block {
		return true
	}

	_, err := dc.Ancestry(base, block)
	return err == nil
}

func (dc *dummyChain) PushBlocks(parent string, blocks []string) {
	br, ok := dc.inner[parent]
	if !ok {
		panic("could not find parent hash")
	}
	baseNumber := br.number + 1

	for i, descendant := range blocks {
		dc.inner[descendant] = blockRecord{
			hash:   descendant,
			number: baseNumber + uint32(i),
			parent: parent,
		}
		parent = descendant
	}
}

func TestDummyChainAncestry(t *testing.T) {
	c := newDummyChain()
	c.PushBlocks(GenesisHash, []string{"A", "B", "C"})
	c.PushBlocks("A", []string{"B'", "C'"})

	ancestry, err := c.Ancestry(GenesisHash, "C")
	assert.NoError(t, err)
	assert.Equal(t, []string{"B", "A"}, ancestry)

	_, err = c.Ancestry("B", "C'")
	assert.ErrorIs(t, err, errNotDescendant)

	assert.True(t, c.IsEqualOrDescendantOf("A", "C'"))
	assert.True(t, c.IsEqualOrDescendantOf("C", "C"))
	assert.False(t, c.IsEqualOrDescendantOf("C", "B"))
}
