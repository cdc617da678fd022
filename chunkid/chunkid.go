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

// Package chunkid provides the two 128-bit, time-ordered identifiers used
// throughout the store: ChunkId (identifies an immutable Chunk) and RowId
// (identifies a single logged row, across every chunk and every store).
//
// Both are backed by a UUIDv7-shaped layout (48-bit millisecond timestamp,
// 16-bit sub-millisecond counter, 64 random bits) so that two ids created on
// the same producer sort in creation order, and ids from different producers
// interleave in approximate wall-clock order without any coordination.
package chunkid

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"sync"
	"time"
)

// ID is the common 128-bit representation shared by ChunkId and RowId.
type ID [16]byte

// Nil is the zero value of ID, never produced by Generator.
var Nil ID

func (id ID) String() string {
	return fmt.Sprintf("%016x-%016x", binary.BigEndian.Uint64(id[:8]), binary.BigEndian.Uint64(id[8:]))
}

// Compare returns -1, 0 or 1, ordering by the embedded timestamp+counter
// first and by the random tail second. This total order is consistent with
// creation time: see Generator.
func (id ID) Compare(other ID) int {
	for i := range id {
		if id[i] != other[i] {
			if id[i] < other[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}

func (id ID) Less(other ID) bool { return id.Compare(other) < 0 }

func (id ID) IsZero() bool { return id == Nil }

// ChunkId identifies an immutable Chunk. Total order is consistent with the
// order in which chunks were constructed by their producer.
type ChunkId struct{ id ID }

func (c ChunkId) String() string       { return "chunk:" + c.id.String() }
func (c ChunkId) Compare(o ChunkId) int { return c.id.Compare(o.id) }
func (c ChunkId) Less(o ChunkId) bool   { return c.id.Less(o.id) }
func (c ChunkId) IsZero() bool          { return c.id.IsZero() }
func (c ChunkId) Bytes() [16]byte       { return c.id }

// RowId identifies a single logged row. Total order across a store is the
// canonical wall-clock order of client-side events (spec.md §3.1).
type RowId struct{ id ID }

func (r RowId) String() string       { return "row:" + r.id.String() }
func (r RowId) Compare(o RowId) int  { return r.id.Compare(o.id) }
func (r RowId) Less(o RowId) bool    { return r.id.Compare(o.id) < 0 }
func (r RowId) IsZero() bool         { return r.id.IsZero() }
func (r RowId) Bytes() [16]byte      { return r.id }

// Generator mints monotonically-ordered ChunkId/RowId values for a single
// producer. It is safe for concurrent use; a real client embeds one
// Generator per process, matching how clients mint RowIds per spec.md §3.1.
type Generator struct {
	mu      sync.Mutex
	lastMS  int64
	counter uint16
}

// NewGenerator returns a ready-to-use Generator.
func NewGenerator() *Generator { return &Generator{} }

func (g *Generator) next() ID {
	g.mu.Lock()
	defer g.mu.Unlock()

	ms := time.Now().UnixMilli()
	if ms <= g.lastMS {
		ms = g.lastMS
		g.counter++
		if g.counter == 0 {
			// Counter wrapped: move to the next millisecond so the
			// timestamp+counter head keeps increasing.
			ms++
			g.lastMS = ms
		}
	} else {
		g.lastMS = ms
		g.counter = 0
	}

	var out ID
	binary.BigEndian.PutUint64(out[:8], uint64(ms)<<16|uint64(g.counter))
	if _, err := rand.Read(out[8:]); err != nil {
		// crypto/rand failing is catastrophic for the process, not just this
		// id; fall back to a degraded-but-still-monotonic tail rather than
		// returning an error from an API the rest of the store treats as
		// infallible.
		binary.BigEndian.PutUint64(out[8:], uint64(time.Now().UnixNano()))
	}
	return out
}

// NewChunkId mints a new ChunkId.
func (g *Generator) NewChunkId() ChunkId { return ChunkId{id: g.next()} }

// NewRowId mints a new RowId.
func (g *Generator) NewRowId() RowId { return RowId{id: g.next()} }

// ChunkIdFromBytes reconstructs a ChunkId from its 16-byte wire form.
func ChunkIdFromBytes(b [16]byte) ChunkId { return ChunkId{id: ID(b)} }

// RowIdFromBytes reconstructs a RowId from its 16-byte wire form.
func RowIdFromBytes(b [16]byte) RowId { return RowId{id: ID(b)} }
