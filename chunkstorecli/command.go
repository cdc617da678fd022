// Copyright 2024 The Erigon Authors
// This file is part of Erigon.
//
// Erigon is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Erigon is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with Erigon. If not, see <http://www.gnu.org/licenses/>.

package chunkstorecli

import (
	"fmt"

	"github.com/spf13/cobra"

	chunkstore "github.com/erigontech/chunkstore"
	"github.com/erigontech/chunkstore/internal/telemetry"
)

// NewServeCommand returns a standalone "serve" command that builds a
// Store from the registered flags and reports it is ready. It is a thin
// scaffold real embedders replace with their own transport loop; the
// store's API itself has no network surface (spec.md §5 non-goals).
func NewServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "start a chunk store with the configured options",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ConfigFromFlags(cmd.Flags())
			if err != nil {
				return fmt.Errorf("chunkstorecli: %w", err)
			}
			level, err := LogLevel(cmd.Flags())
			if err != nil {
				return fmt.Errorf("chunkstorecli: %w", err)
			}

			log := telemetry.NewLogger(level)
			defer log.Sync()

			store := chunkstore.New("", cfg, log)
			log.Info("chunk store ready", "store_id", store.ID(), "enable_changelog", cfg.EnableChangelog)
			return nil
		},
	}
	AddTo(cmd)
	return cmd
}
