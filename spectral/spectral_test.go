package spectral

import (
	"testing"

	"github.com/aaswin/cartwheel/adjacency"
	"github.com/aaswin/cartwheel/graph"
)

func chain(t *testing.T, names ...string) *adjacency.View {
	t.Helper()
	refs := make([]*graph.Ref, len(names))
	for i := len(names) - 1; i >= 0; i-- {
		var deps []*graph.Ref
		if i+1 < len(names) {
			deps = []*graph.Ref{refs[i+1]}
		}
		refs[i] = graph.Seal(names[i], "1.0.0", deps)
	}

	var reqs []string
	var nodes []graph.Node
	for _, r := range refs {
		reqs = append(reqs, r.Name())
		var depKeys []string
		for _, d := range r.Dependencies() {
			depKeys = append(depKeys, d.Key())
		}
		nodes = append(nodes, graph.Node{Name: r.Name(), Version: r.Version(), DepKeys: depKeys})
	}
	g, err := graph.Rebuild(reqs, nodes, reqs)
	if err != nil {
		t.Fatalf("Rebuild: %v", err)
	}
	return adjacency.FromGraph(g)
}

func TestDegreeMatrixIsColumnSum(t *testing.T) {
	v := FromView(chain(t, "a", "b", "c"))
	d := v.D()

	r, c := d.Dims()
	if r != 3 || c != 3 {
		t.Fatalf("D dims = (%d,%d), want (3,3)", r, c)
	}
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if i != j && d.At(i, j) != 0 {
				t.Errorf("D[%d][%d] = %v, want 0 off-diagonal", i, j, d.At(i, j))
			}
		}
	}

	a := v.A()
	for j := 0; j < c; j++ {
		var colSum float64
		for i := 0; i < r; i++ {
			colSum += a.At(i, j)
		}
		if d.At(j, j) != colSum {
			t.Errorf("D[%d][%d] = %v, want column sum %v", j, j, d.At(j, j), colSum)
		}
	}
}

func TestLaplacianIsDMinusA(t *testing.T) {
	v := FromView(chain(t, "a", "b"))
	l := v.L()
	d := v.D()
	a := v.A()

	r, c := l.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			want := d.At(i, j) - a.At(i, j)
			if l.At(i, j) != want {
				t.Errorf("L[%d][%d] = %v, want %v", i, j, l.At(i, j), want)
			}
		}
	}
}

func TestEigenvaluesAscending(t *testing.T) {
	v := FromView(chain(t, "a", "b", "c", "d"))
	es := v.Es()
	for i := 1; i < len(es.Values); i++ {
		prev, cur := es.Values[i-1], es.Values[i]
		if real(cur) < real(prev) {
			t.Errorf("eigenvalues not ascending at %d: %v before %v", i, prev, cur)
		}
	}
}

func TestCsStartsAtAAndIsMonotonic(t *testing.T) {
	v := FromView(chain(t, "a", "b", "c"))
	cs := v.Cs()
	if len(cs) == 0 {
		t.Fatal("Cs returned no matrices")
	}

	r, c := cs[0].Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if cs[0].At(i, j) != v.A().At(i, j) {
				t.Errorf("Cs[0][%d][%d] = %v, want A[%d][%d] = %v", i, j, cs[0].At(i, j), i, j, v.A().At(i, j))
			}
		}
	}

	for k := 1; k < len(cs); k++ {
		for i := 0; i < r; i++ {
			for j := 0; j < c; j++ {
				if cs[k].At(i, j) < cs[k-1].At(i, j) {
					t.Errorf("Cs not monotonic at hop %d, [%d][%d]: %v < %v", k, i, j, cs[k].At(i, j), cs[k-1].At(i, j))
				}
			}
		}
	}
}

func TestCsTerminatesForAcyclicChain(t *testing.T) {
	// a -> b -> c: A^3 is zero (no 3-hop path exists in a 3-node chain
	// once the end is reached), so Cs must terminate.
	v := FromView(chain(t, "a", "b", "c"))
	cs := v.Cs()
	if len(cs) > 3 {
		t.Errorf("Cs produced %d matrices for a 3-node chain, expected termination well before that", len(cs))
	}
}
