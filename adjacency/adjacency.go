// Package adjacency projects a PackageGraph onto a dense {0,1} adjacency
// matrix, grounded on cartwheels/chart_pkgs.py's ChartPackages.
package adjacency

import (
	"sort"

	"github.com/aaswin/cartwheel/graph"
)

// View is the matrix projection of a graph's refs: a fixed vertex
// ordering plus the {0,1} adjacency matrix over it.
type View struct {
	vertices  []string
	vertexIdx map[string]int
	edgesI    [][2]int
	a         [][]float64
}

// FromGraph builds a View over g's refs. Vertices are keyed by ref.Key()
// (name+version), sorted lexicographically; that ordering is fixed for
// the lifetime of the View.
func FromGraph(g *graph.PackageGraph) *View {
	refs := g.Refs()
	vertices := make([]string, 0, len(refs))
	byKey := make(map[string]*graph.Ref, len(refs))
	for _, r := range refs {
		vertices = append(vertices, r.Key())
		byKey[r.Key()] = r
	}
	sort.Strings(vertices)

	idx := make(map[string]int, len(vertices))
	for i, v := range vertices {
		idx[v] = i
	}

	v := &View{vertices: vertices, vertexIdx: idx}
	v.catalogEdges(byKey)
	v.createMatrix()
	return v
}

func (v *View) catalogEdges(byKey map[string]*graph.Ref) {
	for _, vertex := range v.vertices {
		r := byKey[vertex]
		for _, d := range r.Dependencies() {
			fromIdx, fromOK := v.vertexIdx[vertex]
			toIdx, toOK := v.vertexIdx[d.Key()]
			if fromOK && toOK {
				v.edgesI = append(v.edgesI, [2]int{fromIdx, toIdx})
			}
		}
	}
}

func (v *View) createMatrix() {
	n := len(v.vertices)
	v.a = make([][]float64, n)
	for i := range v.a {
		v.a[i] = make([]float64, n)
	}
	for _, e := range v.edgesI {
		v.a[e[0]][e[1]] = 1
	}
}

// Vertices returns the vertex names in their fixed index order.
func (v *View) Vertices() []string { return v.vertices }

// Edges returns the edges as (from, to) index pairs.
func (v *View) Edges() [][2]int { return v.edgesI }

// NamedEdges returns the edges as (from, to) vertex-name pairs.
func (v *View) NamedEdges() [][2]string {
	out := make([][2]string, len(v.edgesI))
	for i, e := range v.edgesI {
		out[i] = [2]string{v.vertices[e[0]], v.vertices[e[1]]}
	}
	return out
}

// VertexIndex looks up a vertex's matrix index by name.
func (v *View) VertexIndex(name string) (int, bool) {
	idx, ok := v.vertexIdx[name]
	return idx, ok
}

// Matrix returns the adjacency matrix, A[from][to] == 1 iff from depends
// on to.
func (v *View) Matrix() [][]float64 { return v.a }

// Shrink drops every vertex with no incoming dependency edge (a
// column-all-zero vertex: nothing depends on it) unless its name has one
// of the given prefixes. The set of dropped indices is computed once,
// from the original matrix, and then both the row and the column for
// each dropped vertex are removed from that same matrix. The original
// computed the row deletion and the column deletion from two different
// matrices (the column deletion silently discarded the row deletion's
// result), which is the defect being avoided here.
func (v *View) Shrink(preservePrefixes []string) *View {
	n := len(v.vertices)
	keep := make([]bool, n)
	for i := range keep {
		keep[i] = true
	}

	colSum := make([]float64, n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			colSum[j] += v.a[i][j]
		}
	}

	for j := 0; j < n; j++ {
		if colSum[j] != 0 {
			continue
		}
		if hasPreservedPrefix(v.vertices[j], preservePrefixes) {
			continue
		}
		keep[j] = false
	}

	var newVertices []string
	remap := make(map[int]int)
	for i := 0; i < n; i++ {
		if keep[i] {
			remap[i] = len(newVertices)
			newVertices = append(newVertices, v.vertices[i])
		}
	}

	shrunk := &View{
		vertices:  newVertices,
		vertexIdx: make(map[string]int, len(newVertices)),
	}
	for i, name := range newVertices {
		shrunk.vertexIdx[name] = i
	}

	shrunk.a = make([][]float64, len(newVertices))
	for i := range shrunk.a {
		shrunk.a[i] = make([]float64, len(newVertices))
	}
	for i := 0; i < n; i++ {
		ni, ok := remap[i]
		if !ok {
			continue
		}
		for j := 0; j < n; j++ {
			nj, ok := remap[j]
			if !ok {
				continue
			}
			shrunk.a[ni][nj] = v.a[i][j]
		}
	}

	for _, e := range v.edgesI {
		ni, iok := remap[e[0]]
		nj, jok := remap[e[1]]
		if iok && jok {
			shrunk.edgesI = append(shrunk.edgesI, [2]int{ni, nj})
		}
	}

	return shrunk
}

func hasPreservedPrefix(name string, prefixes []string) bool {
	for _, p := range prefixes {
		if len(name) >= len(p) && name[:len(p)] == p {
			return true
		}
	}
	return false
}
