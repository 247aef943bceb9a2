// Package solver implements CombinationSolver: given a set of required
// packages and roots, it enumerates every internally-consistent
// (package → version) assignment by constrained DFS backtracking.
//
// The algorithm is a direct port of cartwheels/pkg_comb.py's
// _get_combinations, translated into idiomatic Go: a choice point
// (name, candidate versions) is popped from the front of a work list,
// each viable candidate version is tried in turn, and the candidate's
// own dependencies are expanded into new choice points prepended ahead
// of whatever choice points remain. Per spec.md §9 open question 4, the
// solver enumerates every completion rather than stopping at the first;
// the boolean "satisfiable" outcome and the side-effecting emission of
// completed sets are deliberately distinct, as in the original.
package solver

import (
	"sort"

	"github.com/aaswin/cartwheel/graph"
	"github.com/aaswin/cartwheel/version"
)

// CompatibilitySet is a name-unique, dependency-closed set of refs, as
// produced by Solver.Solve.
type CompatibilitySet map[string]*graph.Ref

// Refs returns the set's members sorted by (name, version), for stable
// output.
func (s CompatibilitySet) Refs() []*graph.Ref {
	out := make([]*graph.Ref, 0, len(s))
	for _, r := range s {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name() != out[j].Name() {
			return out[i].Name() < out[j].Name()
		}
		return out[i].Version() < out[j].Version()
	})
	return out
}

func (s CompatibilitySet) clone() CompatibilitySet {
	cp := make(CompatibilitySet, len(s))
	for k, v := range s {
		cp[k] = v
	}
	return cp
}

// choosable is a choice point: a package name plus the candidate version
// refs admissible for it at this point in the search.
type choosable struct {
	name       string
	candidates []*graph.Ref
}

// Solver enumerates compatibility sets for a graph of required refs.
type Solver struct {
	requiredNames map[string]struct{}
	roots         []string
	useLatest     bool
	root          []choosable
}

// New constructs a Solver.
//
// requiredRefs defines which names must appear in every emitted set; the
// allowed versions for each such name are the union of versions across
// requiredRefs sharing that name. roots is informational only. When
// useLatestWhenNotRequired is true, any package whose name does not
// appear in requiredRefs has only its single highest compatible version
// explored at each branch point.
func New(requiredRefs []*graph.Ref, roots []string, useLatestWhenNotRequired bool) *Solver {
	s := &Solver{
		requiredNames: make(map[string]struct{}),
		roots:         append([]string(nil), roots...),
		useLatest:     useLatestWhenNotRequired,
	}
	for _, r := range requiredRefs {
		s.requiredNames[r.Name()] = struct{}{}
	}
	s.root = groupByName(requiredRefs)
	return s
}

// Solve enumerates CompatibilitySets in DFS order, with ties within a
// dependency's candidate list broken by ascending version. When a choice
// point's name is already bound in the current branch to one of its
// candidates, that branch ends there without visiting the remaining
// choice points and emits no set; completions reachable only through
// such a branch are not returned.
func (s *Solver) Solve() []CompatibilitySet {
	var out []CompatibilitySet
	s.explore(s.root, CompatibilitySet{}, &out)
	return out
}

// explore is the DFS backtracking predicate described in spec.md §4.D.
// It returns whether the choice popped from the front of remaining was
// satisfiable by at least one version choice (not whether every
// completion beneath it succeeded) — that distinction is the documented,
// preserved quirk from spec.md §9 open question 4.
func (s *Solver) explore(remaining []choosable, chosen CompatibilitySet, out *[]CompatibilitySet) bool {
	if len(remaining) == 0 {
		*out = append(*out, chosen.clone())
		return true
	}

	c := remaining[0]
	rest := remaining[1:]

	candidates := ascendingByVersion(c.candidates)
	if s.useLatest {
		if _, required := s.requiredNames[c.name]; !required && len(candidates) > 0 {
			candidates = candidates[len(candidates)-1:]
		}
	}

	if chosenRef, already := chosen[c.name]; already {
		for _, v := range candidates {
			if v.Equal(chosenRef) {
				return true
			}
		}
		return false
	}

	hasCompatible := false
	for _, v := range candidates {
		inner := groupByName(v.Dependencies())
		next := make([]choosable, 0, len(inner)+len(rest))
		next = append(next, inner...)
		next = append(next, rest...)

		branchChosen := chosen.clone()
		branchChosen[c.name] = v

		if s.explore(next, branchChosen, out) {
			hasCompatible = true
		}
	}

	return hasCompatible
}

// groupByName groups refs by name into choosables, deduplicating
// candidates that share a key, with group order determined by first
// appearance after sorting refs by (name, version).
func groupByName(refs []*graph.Ref) []choosable {
	if len(refs) == 0 {
		return nil
	}

	sorted := append([]*graph.Ref(nil), refs...)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Name() != sorted[j].Name() {
			return sorted[i].Name() < sorted[j].Name()
		}
		return sorted[i].Version() < sorted[j].Version()
	})

	var out []choosable
	seen := make(map[string]int) // name -> index in out
	for _, r := range sorted {
		idx, ok := seen[r.Name()]
		if !ok {
			idx = len(out)
			seen[r.Name()] = idx
			out = append(out, choosable{name: r.Name()})
		}
		out[idx].candidates = append(out[idx].candidates, r)
	}
	return out
}

func ascendingByVersion(refs []*graph.Ref) []*graph.Ref {
	out := append([]*graph.Ref(nil), refs...)
	sort.Slice(out, func(i, j int) bool {
		c, err := version.Compare(out[i].Version(), out[j].Version())
		if err != nil {
			return out[i].Version() < out[j].Version()
		}
		return c < 0
	})
	return out
}
