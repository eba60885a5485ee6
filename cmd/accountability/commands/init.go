// Copyright 2023 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	cfg "github.com/ChainSafe/grandpa-accountability/config"
	"github.com/ChainSafe/grandpa-accountability/lib/genesis"
)

var (
	errGenesisNotSet      = errors.New("genesis file not set, use --genesis or --dev")
	errAlreadyInitialised = errors.New("node is already initialised, use --force to reinitialise")
)

func newInitCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialise node databases and load genesis data to state",
		Long: `The init command initialises the node database and loads the genesis
authority set from the genesis file to state.
Example:
	accountability init --genesis genesis.json
	accountability init --dev`,
		RunE: func(cmd *cobra.Command, args []string) error {
			dev, err := cmd.Flags().GetBool("dev")
			if err != nil {
				return fmt.Errorf("failed to get --dev: %s", err)
			}
			force, err := cmd.Flags().GetBool("force")
			if err != nil {
				return fmt.Errorf("failed to get --force: %s", err)
			}
			return execInit(a.config, dev, force, cmd.OutOrStdout())
		},
	}

	cmd.Flags().Bool("dev", false,
		"initialise with the development authorities and write their genesis file to the base path")
	cmd.Flags().Bool("force", false, "force reinitialization of node")
	return cmd
}

// execInit executes the init command
func execInit(config *cfg.Config, dev, force bool, out io.Writer) (err error) {
	if config.Genesis == "" && !dev {
		return errGenesisNotSet
	}

	err = cfg.EnsureRoot(config.BasePath)
	if err != nil {
		return err
	}

	if force {
		err = os.RemoveAll(config.DatabasePath())
		if err != nil {
			return fmt.Errorf("removing database: %w", err)
		}
	}

	gen, err := loadGenesis(config, dev)
	if err != nil {
		return err
	}

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

	if stateSrvc.Initialised() {
		return errAlreadyInitialised
	}

	header, err := genesis.InitialiseState(stateSrvc, gen)
	if err != nil {
		return fmt.Errorf("initialising state: %w", err)
	}

	fmt.Fprintf(out, "initialised %s with genesis block %s and %d authorities\n",
		gen.Name, header.Hash(), len(gen.Genesis.Runtime.Grandpa.Authorities))
	return nil
}

func loadGenesis(config *cfg.Config, dev bool) (*genesis.Genesis, error) {
	if !dev {
		return genesis.NewGenesisFromJSON(config.Genesis)
	}

	authorities, err := genesis.DevAuthorities()
	if err != nil {
		return nil, err
	}
	gen := genesis.NewDevGenesis(authorities)

	err = gen.WriteJSON(filepath.Join(config.BasePath, "genesis.json"))
	if err != nil {
		return nil, err
	}
	return gen, nil
}
