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

// Package entitypath implements the hierarchical EntityPath identifier and
// the small interned string types (TimelineName, ComponentName) that key
// the store's indices.
package entitypath

import "strings"

// Path is an ordered sequence of path parts. The root entity is the empty
// sequence. Paths are compared by their canonical "/"-joined string form;
// Path itself holds a slice and so cannot be a Go map key, which is why
// indices key their maps by String().
type Path struct {
	parts []string
	// cached canonical string, computed once in New (Child goes through New).
	str string
}

// Root returns the root entity path.
func Root() Path { return Path{} }

// New builds a Path from its parts. Empty parts are not rejected, here or
// by chunk validation.
func New(parts ...string) Path {
	cp := make([]string, len(parts))
	copy(cp, parts)
	return Path{parts: cp, str: "/" + strings.Join(cp, "/")}
}

// Parse splits a "/"-separated string into a Path. A leading "/" is
// optional; "" and "/" both parse to the root.
func Parse(s string) Path {
	s = strings.Trim(s, "/")
	if s == "" {
		return Root()
	}
	return New(strings.Split(s, "/")...)
}

// String returns the canonical form, e.g. "/a/b/c"; the root is "/".
func (p Path) String() string {
	if len(p.parts) == 0 {
		return "/"
	}
	return p.str
}

// Len returns the number of path parts (0 for the root).
func (p Path) Len() int { return len(p.parts) }

// IsRoot reports whether p is the root entity.
func (p Path) IsRoot() bool { return len(p.parts) == 0 }

// Parts returns a defensive copy of the path's parts.
func (p Path) Parts() []string {
	cp := make([]string, len(p.parts))
	copy(cp, p.parts)
	return cp
}

// Child returns the path for the named direct child of p.
func (p Path) Child(name string) Path {
	return New(append(append([]string{}, p.parts...), name)...)
}

// Parent returns the parent of p and true, or the zero Path and false if p
// is already the root.
func (p Path) Parent() (Path, bool) {
	if len(p.parts) == 0 {
		return Path{}, false
	}
	return New(p.parts[:len(p.parts)-1]...), true
}

// IsDescendantOf reports whether p is equal to or nested under ancestor.
// The root is an ancestor of every path, including itself.
func (p Path) IsDescendantOf(ancestor Path) bool {
	if len(ancestor.parts) > len(p.parts) {
		return false
	}
	for i, part := range ancestor.parts {
		if p.parts[i] != part {
			return false
		}
	}
	return true
}

// Ancestors returns p and every ancestor of p, root first, self last. This
// is the enumeration order the recursive-chunks subscriber (spec.md §4.6)
// walks on every Addition/Deletion.
func (p Path) Ancestors() []Path {
	out := make([]Path, 0, len(p.parts)+1)
	for i := 0; i <= len(p.parts); i++ {
		out = append(out, New(p.parts[:i]...))
	}
	return out
}

// Equal reports structural equality.
func (p Path) Equal(o Path) bool { return p.String() == o.String() }

// TimelineName is a small interned string naming a logical clock.
type TimelineName string

// TimelineKind distinguishes monotone sequence timelines from nanosecond
// timestamp timelines (spec.md §3.1).
type TimelineKind uint8

const (
	TimelineKindSequence TimelineKind = iota
	TimelineKindTimestamp
)

func (k TimelineKind) String() string {
	if k == TimelineKindTimestamp {
		return "timestamp"
	}
	return "sequence"
}

// Timeline is a named logical clock with a declared kind.
type Timeline struct {
	Name TimelineName
	Kind TimelineKind
}

// ArchetypeName names the archetype a component descriptor belongs to, when
// known; it is informational metadata carried alongside ComponentName.
type ArchetypeName string

// ComponentName is a small interned string identifying a component type,
// independent of any archetype it may have been logged through.
type ComponentName string

// ComponentDescriptor additionally carries the archetype name and
// archetype-field name a component was logged under, when the producer
// supplied one (spec.md §3.1). Two descriptors with the same Component but
// different archetype metadata are considered the same component for
// indexing purposes — only Component participates in index keys.
type ComponentDescriptor struct {
	Component          ComponentName
	ArchetypeName      ArchetypeName
	ArchetypeFieldName string
}

func (d ComponentDescriptor) String() string {
	if d.ArchetypeName == "" {
		return string(d.Component)
	}
	return string(d.ArchetypeName) + "." + d.ArchetypeFieldName + ":" + string(d.Component)
}
