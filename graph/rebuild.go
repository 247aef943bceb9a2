package graph

import "fmt"

// Node is a flattened, pointer-free representation of a single Ref,
// suitable for serialization. DepKeys holds the Key() of each direct
// dependency.
type Node struct {
	Name    string
	Version string
	DepKeys []string
}

// ExploredNames returns the set of names for which discovery has been
// initiated, as a plain slice, for serialization by SnapshotStore.
func (g *PackageGraph) ExploredNames() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]string, 0, len(g.explored))
	for n := range g.explored {
		out = append(out, n)
	}
	return out
}

// Nodes returns every ref in the graph as a flattened Node, for
// serialization by SnapshotStore.
func (g *PackageGraph) Nodes() []Node {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]Node, 0, len(g.pkgs))
	for _, r := range g.pkgs {
		n := Node{Name: r.name, Version: r.version}
		for _, d := range r.dependencies {
			n.DepKeys = append(n.DepKeys, d.Key())
		}
		out = append(out, n)
	}
	return out
}

// Rebuild reconstructs a PackageGraph from its flattened form, as
// restored by SnapshotStore on a cache hit. Dependency edges are
// resolved in a second pass so that dependency order within Nodes does
// not matter.
func Rebuild(requirements []string, nodes []Node, explored []string) (*PackageGraph, error) {
	g := newGraph(requirements)

	refs := make(map[string]*Ref, len(nodes))
	for _, n := range nodes {
		refs[Key(n.Name, n.Version)] = &Ref{name: n.Name, version: n.Version}
	}
	for _, n := range nodes {
		r := refs[Key(n.Name, n.Version)]
		for _, dk := range n.DepKeys {
			d, ok := refs[dk]
			if !ok {
				return nil, fmt.Errorf("snapshot corrupt: dangling dependency key %q", dk)
			}
			r.dependencies = append(r.dependencies, d)
		}
		r.dependencies = Seal(r.name, r.version, r.dependencies).dependencies
		g.pkgs[r.Key()] = r
		if g.versionsOf[r.name] == nil {
			g.versionsOf[r.name] = make(map[string]struct{})
		}
		g.versionsOf[r.name][r.version] = struct{}{}
	}
	for _, name := range explored {
		g.explored[name] = struct{}{}
	}

	return g, nil
}
