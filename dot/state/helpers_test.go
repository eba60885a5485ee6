// Copyright 2021 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ChainSafe/grandpa-accountability/internal/database"
)

func newTestDatabase(t *testing.T) database.Database {
	t.Helper()

	db, err := database.NewPebble("memory", true)
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, db.Close())
	})

	return db
}

func newTestStorage(t *testing.T) database.Table {
	t.Helper()
	return database.NewTable(newTestDatabase(t), "storage")
}
