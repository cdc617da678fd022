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

// Package query implements the store's read path: latest-at, range, and
// relevant-chunks queries (spec.md §4.2), all resolved against an
// index.Index.
package query

import (
	"github.com/erigontech/chunkstore/chunk"
	"github.com/erigontech/chunkstore/chunkid"
)

// Result is a single resolved row: the component value logged at Time by
// RowID, plus a reference to the chunk it was read from.
type Result struct {
	Chunk    *chunk.Chunk
	RowIndex int
	RowID    chunkid.RowId
	Time     chunk.TimeInt
	Value    any
}

// betterThan reports whether candidate (time t, row id rid) should win
// over the current best under the store's deterministic tie-break rule:
// greatest time wins, ties broken by greatest RowId (spec.md §3.1, P3).
func betterThan(t chunk.TimeInt, rid chunkid.RowId, bestTime chunk.TimeInt, bestRow chunkid.RowId) bool {
	if t != bestTime {
		return t > bestTime
	}
	return rid.Compare(bestRow) > 0
}
