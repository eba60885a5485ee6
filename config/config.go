// Copyright 2023 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/ChainSafe/grandpa-accountability/internal/database"
	"github.com/ChainSafe/grandpa-accountability/internal/log"
)

const (
	// DefaultName is the default node name
	DefaultName = "accountability"
	// DefaultBasePath is the default base directory
	DefaultBasePath = "~/.accountability"
	// DefaultLogLevel is the default global log level
	DefaultLogLevel = "info"
	// DefaultMetricsAddress is the default prometheus listening address
	DefaultMetricsAddress = "localhost:9876"
	// DefaultRPCHost is the default RPC listening host
	DefaultRPCHost = "localhost"
	// DefaultRPCPort is the default RPC listening port
	DefaultRPCPort = uint32(8545)
	// DefaultBlockInterval is the default block production interval; zero disables it.
	DefaultBlockInterval = time.Duration(0)

	configFileName = "config.toml"
	databaseDir    = "db"
)

// DefaultRPCModules are the RPC modules enabled by default
var DefaultRPCModules = []string{"grandpa", "author", "dev"}

// ErrInvalidConfig is returned by ValidateBasic when the configuration is invalid.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the node configuration
type Config struct {
	BaseConfig `mapstructure:",squash"`
	Log        LogConfig   `mapstructure:"log"`
	State      StateConfig `mapstructure:"state"`
	RPC        RPCConfig   `mapstructure:"rpc"`
	Core       CoreConfig  `mapstructure:"core"`
}

// BaseConfig holds the top level settings
type BaseConfig struct {
	Name           string `mapstructure:"name" validate:"required"`
	BasePath       string `mapstructure:"base-path" validate:"required"`
	Genesis        string `mapstructure:"genesis"`
	LogLevel       string `mapstructure:"log-level"`
	PublishMetrics bool   `mapstructure:"publish-metrics"`
	MetricsAddress string `mapstructure:"metrics-address" validate:"required_if=PublishMetrics true"`
}

// LogConfig holds the per package log levels
type LogConfig struct {
	Core           string `mapstructure:"core"`
	State          string `mapstructure:"state"`
	RPC            string `mapstructure:"rpc"`
	Grandpa        string `mapstructure:"grandpa"`
	Accountability string `mapstructure:"accountability"`
}

// StateConfig is the database configuration
type StateConfig struct {
	Backend  string `mapstructure:"backend" validate:"oneof=pebble badger"`
	InMemory bool   `mapstructure:"in-memory"`
}

// RPCConfig is the JSON-RPC server configuration
type RPCConfig struct {
	Enabled bool     `mapstructure:"enabled"`
	Host    string   `mapstructure:"host"`
	Port    uint32   `mapstructure:"port" validate:"lte=65535"`
	Modules []string `mapstructure:"modules" validate:"dive,oneof=grandpa author dev"`
}

// CoreConfig is the block executive configuration
type CoreConfig struct {
	BlockInterval time.Duration `mapstructure:"block-interval"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		BaseConfig: BaseConfig{
			Name:           DefaultName,
			BasePath:       DefaultBasePath,
			LogLevel:       DefaultLogLevel,
			MetricsAddress: DefaultMetricsAddress,
		},
		State: StateConfig{
			Backend: string(database.Pebble),
		},
		RPC: RPCConfig{
			Enabled: true,
			Host:    DefaultRPCHost,
			Port:    DefaultRPCPort,
			Modules: append([]string(nil), DefaultRPCModules...),
		},
		Core: CoreConfig{
			BlockInterval: DefaultBlockInterval,
		},
	}
}

// Load returns the default configuration overridden by the config file set
// in the viper instance, if any, and by the values bound to it.
func Load(v *viper.Viper) (*Config, error) {
	if v.ConfigFileUsed() != "" {
		err := v.ReadInConfig()
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	cfg := DefaultConfig()
	if v.IsSet("rpc.modules") {
		cfg.RPC.Modules = nil
	}
	err := v.Unmarshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("decoding configuration: %w", err)
	}

	cfg.BasePath = ExpandDir(cfg.BasePath)

	err = cfg.ValidateBasic()
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// ValidateBasic checks the configuration values.
func (c *Config) ValidateBasic() error {
	err := validator.New().Struct(c)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, err)
	}

	if c.Core.BlockInterval < 0 {
		return fmt.Errorf("%w: negative block interval %s", ErrInvalidConfig, c.Core.BlockInterval)
	}

	for pkg, level := range c.packageLevels() {
		if level == "" {
			continue
		}
		_, err := log.ParseLevel(level)
		if err != nil {
			return fmt.Errorf("%w: log level for %s: %s", ErrInvalidConfig, pkg, err)
		}
	}
	return nil
}

func (c *Config) packageLevels() map[string]string {
	return map[string]string{
		"global":         c.LogLevel,
		"core":           c.Log.Core,
		"state":          c.Log.State,
		"rpc":            c.Log.RPC,
		"grandpa":        c.Log.Grandpa,
		"accountability": c.Log.Accountability,
	}
}

// ApplyLogLevels patches the global logger and the per package loggers.
// An empty package level inherits the global level.
func (c *Config) ApplyLogLevels() error {
	levels := c.packageLevels()
	global, err := log.ParseLevel(levels["global"])
	if err != nil {
		return fmt.Errorf("parsing global log level: %w", err)
	}
	log.Patch(log.SetLevel(global))
	delete(levels, "global")

	for pkg, value := range levels {
		if value == "" {
			continue
		}
		level, err := log.ParseLevel(value)
		if err != nil {
			return fmt.Errorf("parsing %s log level: %w", pkg, err)
		}
		log.PatchPackage(pkg, log.SetLevel(level))
	}
	return nil
}

// DatabasePath returns the database directory under the base path.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.BasePath, databaseDir)
}

// ConfigFilePath returns the default config file path under the base path.
func (c *Config) ConfigFilePath() string {
	return filepath.Join(c.BasePath, configFileName)
}

// EnsureRoot creates the base directory if it does not exist.
func EnsureRoot(basePath string) error {
	err := os.MkdirAll(basePath, 0o700)
	if err != nil {
		return fmt.Errorf("creating base path: %w", err)
	}
	return nil
}

// ExpandDir expands a leading ~ to the user home directory and cleans the path.
func ExpandDir(targetPath string) string {
	if strings.HasPrefix(targetPath, "~") {
		home, err := os.UserHomeDir()
		if err == nil {
			targetPath = filepath.Join(home, strings.TrimPrefix(targetPath, "~"))
		}
	}
	return filepath.Clean(targetPath)
}
