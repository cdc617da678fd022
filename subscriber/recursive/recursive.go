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

// Package recursive implements the recursive-chunks aggregate subscriber
// (spec.md §4.6): a changelog subscriber that tracks, for every entity
// and timeline, the time range covered by that entity and everything
// below it in the entity path tree. Queries against an interior entity
// (e.g. "/world") can then cheaply learn the range covered by its whole
// subtree without walking every descendant chunk.
//
// Only Addition events are applied. Deletion events are ignored, so a
// recorded range never shrinks when chunks are removed from the store.
package recursive

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/erigontech/chunkstore/chunk"
	"github.com/erigontech/chunkstore/entitypath"
	"github.com/erigontech/chunkstore/events"
)

const defaultCacheSize = 4096

// Aggregator is an events.Subscriber maintaining the recursive time-range
// aggregate. It is safe for concurrent use.
type Aggregator struct {
	mu sync.Mutex

	// direct holds each entity's own (non-recursive) coverage per timeline.
	direct map[string]map[entitypath.TimelineName]chunk.TimeRange
	// children maps an entity path's string form to the set of its
	// direct children ever observed carrying temporal data.
	children map[string]map[string]struct{}

	cache *lru.Cache[string, chunk.TimeRange]
}

// New returns an Aggregator whose memoized recursive-range cache holds up
// to cacheSize entries; pass 0 for a sensible default.
func New(cacheSize int) *Aggregator {
	if cacheSize <= 0 {
		cacheSize = defaultCacheSize
	}
	cache, _ := lru.New[string, chunk.TimeRange](cacheSize)
	return &Aggregator{
		direct:   make(map[string]map[entitypath.TimelineName]chunk.TimeRange),
		children: make(map[string]map[string]struct{}),
		cache:    cache,
	}
}

// OnEvents implements events.Subscriber.
func (a *Aggregator) OnEvents(batch []events.StoreEvent) {
	a.mu.Lock()
	defer a.mu.Unlock()

	for _, ev := range batch {
		if ev.Diff.Kind != events.Addition {
			continue
		}
		c := ev.Diff.Chunk
		if c.IsStatic() {
			continue
		}
		key := c.EntityPath().String()
		a.link(c.EntityPath())

		for timelineName, tc := range c.Timelines() {
			a.mergeDirect(key, timelineName, tc.TimeRange())
			a.invalidateAncestors(c.EntityPath(), timelineName)
		}
	}
}

func (a *Aggregator) mergeDirect(key string, timeline entitypath.TimelineName, tr chunk.TimeRange) {
	byTimeline, ok := a.direct[key]
	if !ok {
		byTimeline = make(map[entitypath.TimelineName]chunk.TimeRange)
		a.direct[key] = byTimeline
	}
	if existing, ok := byTimeline[timeline]; ok {
		byTimeline[timeline] = union(existing, tr)
	} else {
		byTimeline[timeline] = tr
	}
}

// link ensures every (parent, child) edge from the path's root down to
// child is registered, so recursive aggregation can walk down from any
// ancestor.
func (a *Aggregator) link(child entitypath.Path) {
	cur := child
	for {
		parent, ok := cur.Parent()
		if !ok {
			return
		}
		pKey, cKey := parent.String(), cur.String()
		kids, ok := a.children[pKey]
		if !ok {
			kids = make(map[string]struct{})
			a.children[pKey] = kids
		}
		kids[cKey] = struct{}{}
		cur = parent
	}
}

// invalidateAncestors drops the memoized recursive range for leaf and
// every one of its ancestors, since an addition under leaf can change
// any of their aggregates. Ancestors returns leaf itself as well
// (spec.md §4.6 walk order), so a single pass covers both.
func (a *Aggregator) invalidateAncestors(leaf entitypath.Path, timeline entitypath.TimelineName) {
	for _, ancestor := range leaf.Ancestors() {
		a.cache.Remove(cacheKey(ancestor.String(), timeline))
	}
}

func cacheKey(entityKey string, timeline entitypath.TimelineName) string {
	return entityKey + "\x00" + string(timeline)
}

// RecursiveRange returns the time range covered by entity and every
// descendant entity, for the given timeline.
func (a *Aggregator) RecursiveRange(entity entitypath.Path, timeline entitypath.TimelineName) (chunk.TimeRange, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.recurse(entity.String(), timeline)
}

func (a *Aggregator) recurse(key string, timeline entitypath.TimelineName) (chunk.TimeRange, bool) {
	ck := cacheKey(key, timeline)
	if tr, ok := a.cache.Get(ck); ok {
		return tr, true
	}

	result, found := a.direct[key][timeline]
	for childKey := range a.children[key] {
		childRange, ok := a.recurse(childKey, timeline)
		if !ok {
			continue
		}
		if found {
			result = union(result, childRange)
		} else {
			result = childRange
			found = true
		}
	}

	if found {
		a.cache.Add(ck, result)
	}
	return result, found
}

func union(a, b chunk.TimeRange) chunk.TimeRange {
	out := a
	if b.Min < out.Min {
		out.Min = b.Min
	}
	if b.Max > out.Max {
		out.Max = b.Max
	}
	return out
}
