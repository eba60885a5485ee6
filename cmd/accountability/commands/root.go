// Copyright 2023 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	cfg "github.com/ChainSafe/grandpa-accountability/config"
	"github.com/ChainSafe/grandpa-accountability/internal/log"
)

// EnvPrefix prefixes the environment variables overriding the configuration.
const EnvPrefix = "ACCOUNTABILITY"

var logger = log.NewFromGlobal(log.AddContext("pkg", "cmd"))

// app is the state shared by the commands of one root command.
type app struct {
	viper  *viper.Viper
	config *cfg.Config
}

// NewRootCommand creates the root command
func NewRootCommand() (*cobra.Command, error) {
	a := &app{viper: viper.New()}

	cmd := &cobra.Command{
		Use:   "accountability",
		Short: "GRANDPA accountability node",
		Long: `accountability runs the GRANDPA accountability runtime: it executes blocks
carrying equivocation reports and finality challenges, and serves its state over JSON-RPC.
Usage:
	accountability init --dev --base-path /tmp/accountability
	accountability --base-path /tmp/accountability --block-interval 6s
	accountability import-blocks blocks.hex --base-path /tmp/accountability
	accountability status --base-path /tmp/accountability`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.parseConfig(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return execRun(cmd, a.config)
		},
	}

	if err := addRootFlags(a.viper, cmd); err != nil {
		return nil, err
	}

	cmd.AddCommand(
		newInitCommand(a),
		newImportBlocksCommand(a),
		newStatusCommand(a),
	)

	return cmd, nil
}

// parseConfig loads the configuration from the config file, the
// environment and the command line flags.
func (a *app) parseConfig(cmd *cobra.Command) error {
	a.viper.SetEnvPrefix(EnvPrefix)
	a.viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	a.viper.AutomaticEnv()

	configFile, err := cmd.Flags().GetString("config")
	if err != nil {
		return fmt.Errorf("failed to get --config: %s", err)
	}

	if configFile == "" {
		basePath := cfg.ExpandDir(a.viper.GetString("base-path"))
		candidate := filepath.Join(basePath, "config.toml")
		_, err := os.Stat(candidate)
		switch {
		case err == nil:
			configFile = candidate
		case !errors.Is(err, os.ErrNotExist):
			return fmt.Errorf("checking config file: %w", err)
		}
	}

	if configFile != "" {
		a.viper.SetConfigFile(configFile)
	}

	a.config, err = cfg.Load(a.viper)
	if err != nil {
		return err
	}

	err = a.config.ApplyLogLevels()
	if err != nil {
		return err
	}

	logger.Debugf("loaded configuration for %s with base path %s", a.config.Name, a.config.BasePath)
	return nil
}

// addRootFlags adds the root flags to the command
func addRootFlags(v *viper.Viper, cmd *cobra.Command) error {
	defaults := cfg.DefaultConfig()

	cmd.PersistentFlags().String("config", "",
		"path to a TOML configuration file, defaults to config.toml in the base path")

	// Base Config
	if err := addStringFlagBindViper(v, cmd,
		"name",
		defaults.Name,
		"Name of the node",
		"name"); err != nil {
		return fmt.Errorf("failed to add --name flag: %s", err)
	}
	if err := addStringFlagBindViper(v, cmd,
		"base-path",
		defaults.BasePath,
		"base-path to use for the node",
		"base-path"); err != nil {
		return fmt.Errorf("failed to add --base-path flag: %s", err)
	}
	if err := addStringFlagBindViper(v, cmd,
		"genesis",
		defaults.Genesis,
		"path to the genesis file",
		"genesis"); err != nil {
		return fmt.Errorf("failed to add --genesis flag: %s", err)
	}
	if err := addStringFlagBindViper(v, cmd,
		"log",
		defaults.LogLevel,
		"Global log level. Supports levels critical (silent), error, warn, info, debug and trace",
		"log-level"); err != nil {
		return fmt.Errorf("failed to add --log flag: %s", err)
	}
	if err := addBoolFlagBindViper(v, cmd,
		"publish-metrics",
		defaults.PublishMetrics,
		"Publish metrics to prometheus",
		"publish-metrics"); err != nil {
		return fmt.Errorf("failed to add --publish-metrics flag: %s", err)
	}
	if err := addStringFlagBindViper(v, cmd,
		"metrics-address",
		defaults.MetricsAddress,
		"Listen address of the metric server",
		"metrics-address"); err != nil {
		return fmt.Errorf("failed to add --metrics-address flag: %s", err)
	}

	// Log Config
	packageLevels := []struct{ flag, key, usage string }{
		{"lcore", "log.core", "Core module log level"},
		{"lstate", "log.state", "State module log level"},
		{"lrpc", "log.rpc", "RPC module log level"},
		{"lgrandpa", "log.grandpa", "GRANDPA module log level"},
		{"laccountability", "log.accountability", "Report submission log level"},
	}
	for _, level := range packageLevels {
		if err := addStringFlagBindViper(v, cmd, level.flag, "", level.usage, level.key); err != nil {
			return fmt.Errorf("failed to add --%s flag: %s", level.flag, err)
		}
	}

	// State Config
	if err := addStringFlagBindViper(v, cmd,
		"state-backend",
		defaults.State.Backend,
		"Database backend, one of pebble or badger",
		"state.backend"); err != nil {
		return fmt.Errorf("failed to add --state-backend flag: %s", err)
	}

	// Core Config
	if err := addDurationFlagBindViper(v, cmd,
		"block-interval",
		defaults.Core.BlockInterval,
		"Interval at which blocks are built from the transaction pool, 0 to disable",
		"core.block-interval"); err != nil {
		return fmt.Errorf("failed to add --block-interval flag: %s", err)
	}

	return addRPCFlags(v, cmd, defaults.RPC)
}

// addRPCFlags adds rpc flags and binds to viper
func addRPCFlags(v *viper.Viper, cmd *cobra.Command, defaults cfg.RPCConfig) error {
	if err := addBoolFlagBindViper(v, cmd,
		"rpc",
		defaults.Enabled,
		"Enable the HTTP-RPC server",
		"rpc.enabled"); err != nil {
		return fmt.Errorf("failed to add --rpc flag: %s", err)
	}
	if err := addStringFlagBindViper(v, cmd,
		"rpc-host",
		defaults.Host,
		"HTTP-RPC server listening hostname",
		"rpc.host"); err != nil {
		return fmt.Errorf("failed to add --rpc-host flag: %s", err)
	}
	if err := addUint32FlagBindViper(v, cmd,
		"rpc-port",
		defaults.Port,
		"HTTP-RPC server listening port",
		"rpc.port"); err != nil {
		return fmt.Errorf("failed to add --rpc-port flag: %s", err)
	}
	if err := addStringSliceFlagBindViper(v, cmd,
		"rpc-modules",
		defaults.Modules,
		"API modules to enable via HTTP-RPC, comma separated list",
		"rpc.modules"); err != nil {
		return fmt.Errorf("failed to add --rpc-modules flag: %s", err)
	}
	return nil
}
