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

// Package chunkstorecli wires storeconfig.Config onto a cobra command's
// flag set (spec.md §6.5), the way the teacher's erigon command wires
// ethconfig onto its root command.
package chunkstorecli

import (
	"github.com/c2h5oh/datasize"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/erigontech/chunkstore/storeconfig"
)

// Flag names recognized on the command line.
const (
	FlagEnableChangelog = "enable-changelog"
	FlagChunkMaxRows    = "chunk-max-rows"
	FlagChunkMaxBytes   = "chunk-max-bytes"
	FlagGCProtectLatest = "gc-protect-latest"
	FlagLogLevel        = "log.level"
)

// RegisterFlags adds every recognized flag to fs, pre-populated with
// storeconfig.Default()'s values.
func RegisterFlags(fs *pflag.FlagSet) {
	def := storeconfig.Default()
	fs.Bool(FlagEnableChangelog, def.EnableChangelog, "maintain the store's changelog and notify subscribers")
	fs.Uint64(FlagChunkMaxRows, def.ChunkMaxRows, "compaction hint: target row count per merged chunk")
	fs.String(FlagChunkMaxBytes, def.ChunkMaxBytes.String(), "compaction hint: target byte size per merged chunk")
	fs.Int(FlagGCProtectLatest, def.GCProtectLatestDefault, "default protect-latest count stored in the config (Store.GC does not apply it)")
	fs.String(FlagLogLevel, "info", "log level: trace, debug, info, warn, error")
}

// ConfigFromFlags reads a storeconfig.Config out of a populated flag set.
func ConfigFromFlags(fs *pflag.FlagSet) (storeconfig.Config, error) {
	cfg := storeconfig.Default()

	var err error
	if cfg.EnableChangelog, err = fs.GetBool(FlagEnableChangelog); err != nil {
		return cfg, err
	}
	if cfg.ChunkMaxRows, err = fs.GetUint64(FlagChunkMaxRows); err != nil {
		return cfg, err
	}
	maxBytesStr, err := fs.GetString(FlagChunkMaxBytes)
	if err != nil {
		return cfg, err
	}
	var sz datasize.ByteSize
	if err := sz.UnmarshalText([]byte(maxBytesStr)); err != nil {
		return cfg, err
	}
	cfg.ChunkMaxBytes = sz
	if cfg.GCProtectLatestDefault, err = fs.GetInt(FlagGCProtectLatest); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LogLevel reads the log.level flag's raw string value.
func LogLevel(fs *pflag.FlagSet) (string, error) { return fs.GetString(FlagLogLevel) }

// AddTo attaches RegisterFlags' flags directly to cmd's flag set, the
// cobra-idiomatic shortcut for wiring a subcommand.
func AddTo(cmd *cobra.Command) {
	RegisterFlags(cmd.Flags())
}
