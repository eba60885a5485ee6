// Copyright 2021 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package types

import (
	"fmt"

	"github.com/ChainSafe/gossamer/lib/common"
	"github.com/ChainSafe/gossamer/pkg/scale"
)

func scaleHash(value interface{}) (common.Hash, error) {
	encoded, err := scale.Marshal(value)
	if err != nil {
		return common.Hash{}, fmt.Errorf("encoding: %w", err)
	}
	return common.Blake2bHash(encoded)
}
