// Package graph implements PackageRef, PackageGraph, and GraphBuilder: the
// atomic node type, the graph it is assembled into, and the orchestration
// logic that walks a PackageIndexClient until a fixpoint is reached.
package graph

import (
	"fmt"
	"sort"
)

// Ref is the atomic node of the dependency graph: a package at a specific
// version, plus its resolved direct dependencies. A Ref is immutable once
// constructed; Seal builds one from a dependency slice, and Rebuild
// reconstructs refs from a snapshot's flattened Nodes.
type Ref struct {
	name         string
	version      string
	dependencies []*Ref
}

// Name returns the package name, case-preserved as received from the
// index.
func (r *Ref) Name() string { return r.name }

// Version returns the canonical dotted-numeric version string.
func (r *Ref) Version() string { return r.version }

// Dependencies returns the ordered, deduplicated list of refs this ref
// depends on directly. The slice is owned by the ref and must not be
// mutated by callers.
func (r *Ref) Dependencies() []*Ref { return r.dependencies }

// Key returns the canonical string identity "{name}::{version}" used for
// equality checks and diagnostic output.
func (r *Ref) Key() string { return Key(r.name, r.version) }

// Key constructs the canonical identity string for a (name, version)
// pair without requiring a constructed Ref.
func Key(name, version string) string {
	return fmt.Sprintf("%s::%s", name, version)
}

// Equal reports whether two refs have the same (name, version) identity.
func (r *Ref) Equal(o *Ref) bool {
	if r == nil || o == nil {
		return r == o
	}
	return r.name == o.name && r.version == o.version
}

// Seal constructs an immutable Ref from a name, version, and an
// unsorted, possibly-duplicated slice of dependency refs. Seal sorts the
// dependencies by (name, version) and removes duplicates before sealing,
// per the PackageRef invariant in spec.md §3.
func Seal(name, version string, deps []*Ref) *Ref {
	uniq := make(map[string]*Ref, len(deps))
	for _, d := range deps {
		uniq[d.Key()] = d
	}
	sorted := make([]*Ref, 0, len(uniq))
	for _, d := range uniq {
		sorted = append(sorted, d)
	}
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].name != sorted[j].name {
			return sorted[i].name < sorted[j].name
		}
		return sorted[i].version < sorted[j].version
	})

	return &Ref{
		name:         name,
		version:      version,
		dependencies: sorted,
	}
}
