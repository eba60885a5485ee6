// Copyright 2023 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package commands

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ChainSafe/gossamer/lib/common"
	"github.com/ChainSafe/gossamer/pkg/scale"
	"github.com/spf13/cobra"

	cfg "github.com/ChainSafe/grandpa-accountability/config"
	"github.com/ChainSafe/grandpa-accountability/dot/types"
)

const maxBlockLineSize = 16 * 1024 * 1024

func newImportBlocksCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import-blocks <file>",
		Short: "Execute blocks read from a file on top of the best block",
		Long: `The import-blocks command reads one hex encoded SCALE block per line and
executes each of them on top of the best block, in order.
Example:
	accountability import-blocks blocks.hex --base-path /tmp/accountability`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return execImportBlocks(a.config, args[0], cmd.OutOrStdout())
		},
	}
}

// execImportBlocks executes the import-blocks command
func execImportBlocks(config *cfg.Config, blocksFile string, out io.Writer) (err error) {
	file, err := os.Open(filepath.Clean(blocksFile))
	if err != nil {
		return fmt.Errorf("opening blocks file: %w", err)
	}
	defer file.Close()

	config.RPC.Enabled = false
	config.PublishMetrics = false
	n, err := newNode(config)
	if err != nil {
		return err
	}
	defer func() {
		stopErr := n.stop()
		if err == nil {
			err = stopErr
		}
	}()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(nil, maxBlockLineSize)
	line := 0
	imported := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}

		block, err := decodeBlock(text)
		if err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}

		result, err := n.executive.ExecuteBlock(block)
		if err != nil {
			return fmt.Errorf("line %d: executing block #%d: %w", line, block.Header.Number, err)
		}

		imported++
		fmt.Fprintf(out, "imported block #%d (%s): %d applied, %d failed, %d events\n",
			result.Header.Number, result.Header.Hash(), result.Applied, result.Failed, len(result.Events))
	}

	err = scanner.Err()
	if err != nil {
		return fmt.Errorf("reading blocks file: %w", err)
	}

	logger.Infof("imported %d blocks from %s", imported, blocksFile)
	return nil
}

func decodeBlock(text string) (block types.Block, err error) {
	encoded, err := common.HexToBytes(text)
	if err != nil {
		return block, fmt.Errorf("decoding hex: %w", err)
	}

	err = scale.Unmarshal(encoded, &block)
	if err != nil {
		return block, fmt.Errorf("decoding block: %w", err)
	}
	return block, nil
}
