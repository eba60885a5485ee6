// Copyright 2021 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package modules

import (
	"fmt"
	"net/http"

	"github.com/ChainSafe/gossamer/lib/common"
)

// AuthorModule submits misbehaviour reports.
type AuthorModule struct {
	reportAPI ReportAPI
}

// NewAuthorModule creates a new Author module.
func NewAuthorModule(reportAPI ReportAPI) *AuthorModule {
	return &AuthorModule{
		reportAPI: reportAPI,
	}
}

// ReportRequest is a hex encoded report extrinsic
type ReportRequest struct {
	Extrinsic string `validate:"required,hexadecimal,startswith=0x"`
}

// ExtrinsicHashResponse is used as Extrinsic hash response
type ExtrinsicHashResponse string

// SubmitReport submits a SCALE encoded report extrinsic to the transaction pool
func (am *AuthorModule) SubmitReport(_ *http.Request, req *ReportRequest, res *ExtrinsicHashResponse) error {
	encoded, err := common.HexToBytes(req.Extrinsic)
	if err != nil {
		return fmt.Errorf("decoding extrinsic hex: %w", err)
	}

	hash, err := am.reportAPI.SubmitReport(encoded)
	if err != nil {
		return err
	}

	*res = ExtrinsicHashResponse(hash.String())
	return nil
}
