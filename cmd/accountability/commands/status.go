// Copyright 2023 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package commands

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	cfg "github.com/ChainSafe/grandpa-accountability/config"
	"github.com/ChainSafe/grandpa-accountability/dot/rpc/modules"
)

// statusResponse is the output of the status command.
type statusResponse struct {
	Name              string                             `json:"name"`
	BestBlock         modules.HeaderResponse             `json:"bestBlock"`
	SetID             uint64                             `json:"setId"`
	Authorities       modules.AuthoritiesResponse        `json:"authorities"`
	PendingChange     *modules.PendingChangeResponse     `json:"pendingChange"`
	ChallengeSessions []modules.ChallengeSessionResponse `json:"challengeSessions"`
}

func newStatusCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Print the best block and the GRANDPA state as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			return execStatus(a.config, cmd.OutOrStdout())
		},
	}
}

// execStatus executes the status command
func execStatus(config *cfg.Config, out io.Writer) (err error) {
	stateSrvc, err := openState(config)
	if err != nil {
		return fmt.Errorf("opening state: %w", err)
	}
	defer func() {
		closeErr := stateSrvc.Close()
		if err == nil && closeErr != nil {
			err = fmt.Errorf("closing state: %w", closeErr)
		}
	}()

	if !stateSrvc.Initialised() {
		return errNotInitialised
	}

	best, err := stateSrvc.Block.BestBlockHeader()
	if err != nil {
		return fmt.Errorf("getting best block header: %w", err)
	}

	status := statusResponse{
		Name: config.Name,
		BestBlock: modules.HeaderResponse{
			Hash:   best.Hash().String(),
			Number: best.Number,
		},
	}

	grandpaModule := modules.NewGrandpaModule(stateSrvc.Storage)
	req := &modules.EmptyRequest{}
	err = grandpaModule.SetId(nil, req, &status.SetID)
	if err != nil {
		return err
	}
	err = grandpaModule.Authorities(nil, req, &status.Authorities)
	if err != nil {
		return err
	}
	err = grandpaModule.PendingChange(nil, req, &status.PendingChange)
	if err != nil {
		return err
	}
	err = grandpaModule.ChallengeSessions(nil, req, &status.ChallengeSessions)
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(status)
}
