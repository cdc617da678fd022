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

// Package chunkstore is an in-memory, append-only columnar store for
// entity-keyed, time-varying logs (spec.md §1-§2). A Store owns the
// chunk-owning table and every acceleration index, and is the single
// entry point client code uses for ingestion (InsertChunk), queries
// (LatestAt/Range/RelevantChunks) and garbage collection (GC).
package chunkstore

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/erigontech/chunkstore/chunk"
	"github.com/erigontech/chunkstore/chunkid"
	"github.com/erigontech/chunkstore/entitypath"
	"github.com/erigontech/chunkstore/events"
	"github.com/erigontech/chunkstore/gc"
	"github.com/erigontech/chunkstore/index"
	"github.com/erigontech/chunkstore/internal/telemetry"
	"github.com/erigontech/chunkstore/query"
	"github.com/erigontech/chunkstore/storeconfig"
)

// Store is the store's top-level handle (spec.md §2, C3).
type Store struct {
	id  string
	cfg storeconfig.Config

	idx      *index.Index
	registry *events.Registry
	gen      *chunkid.Generator

	generation atomic.Uint64

	log     *telemetry.Logger
	metrics *telemetry.Metrics
}

// New constructs an empty Store identified by id. An empty id is replaced
// with a freshly minted UUID, matching how the teacher's node identity
// flags fall back to a generated value when unset.
func New(id string, cfg storeconfig.Config, log *telemetry.Logger) *Store {
	if log == nil {
		log = telemetry.Noop()
	}
	if id == "" {
		id = uuid.NewString()
	}
	return &Store{
		id:       id,
		cfg:      cfg,
		idx:      index.New(),
		registry: events.NewRegistry(log),
		gen:      chunkid.NewGenerator(),
		log:      log,
		metrics:  telemetry.NewMetrics("chunkstore"),
	}
}

// ID returns the store's identifier.
func (s *Store) ID() string { return s.id }

// Generation returns the number of mutations (insertions, entity-path
// drops that removed something, and GC passes that removed something)
// applied so far; it is exposed so clients can detect "nothing changed
// since I last looked" without diffing event ids.
func (s *Store) Generation() uint64 { return s.generation.Load() }

// Generator returns the store's RowId/ChunkId generator, so callers can
// mint ids consistent with this store's monotonicity guarantees.
func (s *Store) Generator() *chunkid.Generator { return s.gen }

// InsertChunk adds c to the store (spec.md §4.1/§6.1). It is rejected if
// c's id already exists. If c is static and replaces one or more prior
// static winners (spec.md §3.3/I4), exactly one Addition event for c is
// emitted followed by one Deletion event per replaced chunk, in that order
// (spec.md §4.1's ordering guarantee).
func (s *Store) InsertChunk(ctx context.Context, c *chunk.Chunk) error {
	if _, exists := s.idx.Get(c.ID()); exists {
		return fmt.Errorf("chunkstore: insert %s: %w", c.ID(), ErrDuplicateChunk)
	}

	shadowed := s.idx.Insert(c)
	gen := s.generation.Add(1)
	s.metrics.Observe(s.idx.Stats())
	s.log.Info("inserted chunk", "chunk_id", c.ID().String(), "entity", c.EntityPath().String(), "rows", c.NumRows())
	for _, old := range shadowed {
		s.log.Info("static write replaced chunk", "chunk_id", old.ID().String(), "entity", old.EntityPath().String())
	}

	if s.cfg.EnableChangelog {
		first := s.registry.NextEventIDs(1 + len(shadowed))
		batch := make([]events.StoreEvent, 0, 1+len(shadowed))
		batch = append(batch, events.StoreEvent{
			StoreID:    s.id,
			Generation: gen,
			EventID:    first,
			Diff:       events.Diff{Kind: events.Addition, Chunk: c},
		})
		for i, old := range shadowed {
			batch = append(batch, events.StoreEvent{
				StoreID:    s.id,
				Generation: gen,
				EventID:    first + uint64(i) + 1,
				Diff:       events.Diff{Kind: events.Deletion, Chunk: old},
			})
		}
		s.registry.Dispatch(ctx, batch)
	}
	return nil
}

// DropEntityPath removes every chunk belonging to entity (and, if
// recursive is set, every descendant entity too), returning the removed
// chunk ids.
func (s *Store) DropEntityPath(ctx context.Context, entity entitypath.Path, recursive bool) []chunkid.ChunkId {
	var ids []chunkid.ChunkId
	if recursive {
		ids = s.idx.ChunksMatching(func(p entitypath.Path) bool { return p.IsDescendantOf(entity) })
	} else {
		ids = s.idx.ChunksForEntity(entity)
	}
	if len(ids) == 0 {
		return nil
	}

	var batch []events.StoreEvent
	first := s.registry.NextEventIDs(len(ids))
	gen := s.generation.Add(1)

	for i, id := range ids {
		c, ok := s.idx.Remove(id)
		if !ok {
			continue
		}
		if s.cfg.EnableChangelog {
			batch = append(batch, events.StoreEvent{
				StoreID:    s.id,
				Generation: gen,
				EventID:    first + uint64(i),
				Diff:       events.Diff{Kind: events.Deletion, Chunk: c},
			})
		}
	}

	s.metrics.Observe(s.idx.Stats())
	s.log.Info("dropped entity path", "entity", entity.String(), "recursive", recursive, "chunks_removed", len(ids))
	if len(batch) > 0 {
		s.registry.Dispatch(ctx, batch)
	}
	return ids
}

// GC runs one garbage collection pass (spec.md §4.3) and notifies
// subscribers of every removed chunk.
func (s *Store) GC(ctx context.Context, opts gc.Options) gc.Result {
	res := gc.Run(s.idx, opts, s.log)
	if len(res.RemovedChunks) == 0 {
		return res
	}

	gen := s.generation.Add(1)
	first := s.registry.NextEventIDs(len(res.RemovedChunks))
	if s.cfg.EnableChangelog {
		batch := make([]events.StoreEvent, len(res.RemovedChunks))
		for i, c := range res.RemovedChunks {
			batch[i] = events.StoreEvent{
				StoreID:    s.id,
				Generation: gen,
				EventID:    first + uint64(i),
				Diff:       events.Diff{Kind: events.Deletion, Chunk: c},
			}
		}
		s.registry.Dispatch(ctx, batch)
	}

	s.metrics.Observe(res.StatsAfter)
	s.log.Info("gc pass complete", "removed_chunks", len(res.RemovedChunks), "timed_out", res.TimedOut)
	return res
}

// Stats returns the store's current chunk/row/byte accounting.
func (s *Store) Stats() chunk.Totals { return s.idx.Stats() }

// RegisterSubscriber adds sub to the store's changelog fan-out.
func (s *Store) RegisterSubscriber(sub events.Subscriber) events.Handle {
	return s.registry.Register(sub)
}

// UnregisterSubscriber removes a previously registered subscriber.
func (s *Store) UnregisterSubscriber(h events.Handle) { s.registry.Unregister(h) }

// LatestAt resolves (entity, component) on timeline at or before t.
func (s *Store) LatestAt(entity entitypath.Path, timeline entitypath.TimelineName, component entitypath.ComponentName, t chunk.TimeInt) (query.Result, bool) {
	return query.LatestAt(s.idx, entity, timeline, component, t)
}

// Range resolves every (entity, component) value on timeline within tr.
func (s *Store) Range(entity entitypath.Path, timeline entitypath.TimelineName, component entitypath.ComponentName, tr chunk.TimeRange, includeStatic bool) []query.Result {
	return query.Range(s.idx, entity, timeline, component, tr, includeStatic)
}

// RelevantChunks returns the chunk ids that can contribute to (entity,
// timeline, component) within tr.
func (s *Store) RelevantChunks(entity entitypath.Path, timeline entitypath.TimelineName, component entitypath.ComponentName, tr chunk.TimeRange) []chunkid.ChunkId {
	return query.RelevantChunks(s.idx, entity, timeline, component, tr)
}

// Chunk returns the chunk registered under id, if any.
func (s *Store) Chunk(id chunkid.ChunkId) (*chunk.Chunk, bool) { return s.idx.Get(id) }

// ColumnMetadata returns the archetype/field metadata recorded for
// component the first time it was observed in any inserted chunk. GC and
// DropEntityPath never prune this record (original_source/gc.rs treats
// per_column_metadata as additive-only).
func (s *Store) ColumnMetadata(component entitypath.ComponentName) (entitypath.ComponentDescriptor, bool) {
	return s.idx.ColumnMetadata(component)
}
