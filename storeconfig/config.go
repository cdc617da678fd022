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

// Package storeconfig carries ChunkStoreConfig (spec.md §3.4) and the
// recognized option surface of spec.md §6.4.
package storeconfig

import "github.com/c2h5oh/datasize"

// Config is the store's compile-time-free configuration, plain like the
// teacher's ethconfig.Sync / prune.Mode structs: a flat, documented struct
// with sane zero-value-adjacent defaults.
type Config struct {
	// EnableChangelog, if false, means insert_chunk and GC never build
	// StoreEvent objects and never notify subscribers (spec.md §6.4).
	EnableChangelog bool

	// ChunkMaxRows hints an optional compactor to merge small adjacent
	// chunks up to this many rows.
	ChunkMaxRows uint64

	// ChunkMaxBytes hints the compactor's byte budget per compacted chunk.
	ChunkMaxBytes datasize.ByteSize

	// GCProtectLatestDefault is the configured default for
	// gc.Options.ProtectLatest. Store.GC does not apply it: it runs with
	// the Options it is given, ProtectLatest included.
	GCProtectLatestDefault int
}

// Default returns the store's default configuration: changelog enabled,
// compaction hints generous, protect_latest defaulting to keep the most
// recent revision of each component live for an un-timed latest-at query.
func Default() Config {
	return Config{
		EnableChangelog:        true,
		ChunkMaxRows:           4096,
		ChunkMaxBytes:          16 * datasize.MB,
		GCProtectLatestDefault: 1,
	}
}
