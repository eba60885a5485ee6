// Copyright 2021 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package genesis

import (
	"encoding/json"
	"fmt"

	"github.com/ChainSafe/grandpa-accountability/dot/types"
)

// Genesis stores the data parsed from the genesis configuration file
type Genesis struct {
	Name       string                 `json:"name" validate:"required"`
	ID         string                 `json:"id" validate:"required"`
	ChainType  string                 `json:"chainType"`
	Properties map[string]interface{} `json:"properties,omitempty"`
	Genesis    Fields                 `json:"genesis"`
}

// Fields stores the human readable runtime genesis data
type Fields struct {
	Runtime Runtime `json:"runtime"`
}

// Runtime holds the genesis configuration of each runtime module
type Runtime struct {
	Grandpa Grandpa `json:"grandpa"`
}

// Grandpa is the genesis authority set
type Grandpa struct {
	Authorities []AuthorityFields `json:"authorities" validate:"required,min=1,dive"`
}

// AuthorityFields is an authority entry encoded as an [id, weight] pair
type AuthorityFields struct {
	ID     types.AuthorityID
	Weight uint64 `validate:"gt=0"`
}

// UnmarshalJSON converts data to Go struct of type AuthorityFields.
func (a *AuthorityFields) UnmarshalJSON(buf []byte) error {
	tmp := []interface{}{&a.ID, &a.Weight}
	wantLen := len(tmp)
	if err := json.Unmarshal(buf, &tmp); err != nil {
		return fmt.Errorf("error in AuthorityFields unmarshal: %w", err)
	}
	if newLen := len(tmp); newLen != wantLen {
		return fmt.Errorf("wrong number of fields in AuthorityFields: %d != %d", newLen, wantLen)
	}
	return nil
}

// MarshalJSON converts Go struct of type AuthorityFields to []byte.
func (a AuthorityFields) MarshalJSON() ([]byte, error) {
	buf, err := json.Marshal([]interface{}{a.ID, a.Weight})
	if err != nil {
		return nil, fmt.Errorf("error in AuthorityFields marshal: %w", err)
	}
	return buf, nil
}

// Authorities returns the genesis authority list in file order.
func (g *Genesis) Authorities() types.AuthorityList {
	authorities := make(types.AuthorityList, len(g.Genesis.Runtime.Grandpa.Authorities))
	for i, fields := range g.Genesis.Runtime.Grandpa.Authorities {
		authorities[i] = types.Authority{
			ID:     fields.ID,
			Weight: fields.Weight,
		}
	}
	return authorities
}
