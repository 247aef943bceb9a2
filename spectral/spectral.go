// Package spectral computes the degree matrix, Laplacian, eigendecomposition,
// and n-hop connectivity sequence of an adjacency.View, grounded on
// cartwheels/pkg_matrix.py's PkgMatrix.
package spectral

import (
	"gonum.org/v1/gonum/mat"

	"github.com/aaswin/cartwheel/adjacency"
)

// View holds the spectral quantities derived from a single adjacency
// matrix. All matrices are dense and square, sized to the adjacency
// view's vertex count.
type View struct {
	n int
	a *mat.Dense
}

// FromView wraps an adjacency.View for spectral analysis.
func FromView(v *adjacency.View) *View {
	n := len(v.Vertices())
	a := mat.NewDense(n, n, nil)
	for i, row := range v.Matrix() {
		for j, val := range row {
			a.Set(i, j, val)
		}
	}
	return &View{n: n, a: a}
}

// A returns the adjacency matrix.
func (v *View) A() *mat.Dense { return v.a }

// D returns the degree matrix: diag(column_sum(A)).
func (v *View) D() *mat.Dense {
	d := mat.NewDense(v.n, v.n, nil)
	for j := 0; j < v.n; j++ {
		var sum float64
		for i := 0; i < v.n; i++ {
			sum += v.a.At(i, j)
		}
		d.Set(j, j, sum)
	}
	return d
}

// L returns the Laplacian matrix: D - A.
func (v *View) L() *mat.Dense {
	l := mat.NewDense(v.n, v.n, nil)
	l.Sub(v.D(), v.a)
	return l
}

// Eigendecomposition is the ascending-eigenvalue-sorted result of
// eig(L): eigenvalues, the matching eigenvectors as columns, and the
// permutation that was applied to reach ascending order.
type Eigendecomposition struct {
	Values      []complex128
	Vectors     *mat.CDense
	Permutation []int
}

// Es computes the Laplacian's eigendecomposition, sorted ascending by
// eigenvalue (by real part, ties broken by imaginary part — the
// Laplacian of an undirected graph is symmetric and real-valued, but
// this view is built over a directed dependency graph, so eigenvalues
// may be complex).
func (v *View) Es() Eigendecomposition {
	var eig mat.Eigen
	ok := eig.Factorize(v.L(), mat.EigenRight)
	if !ok {
		return Eigendecomposition{}
	}

	values := eig.Values(nil)
	perm := make([]int, len(values))
	for i := range perm {
		perm[i] = i
	}
	sortPermutationByValue(perm, values)

	sortedValues := make([]complex128, len(values))
	for i, p := range perm {
		sortedValues[i] = values[p]
	}

	var rawVectors mat.CDense
	eig.VectorsTo(&rawVectors)
	r, c := rawVectors.Dims()
	sortedVectors := mat.NewCDense(r, c, nil)
	for newCol, oldCol := range perm {
		for row := 0; row < r; row++ {
			sortedVectors.Set(row, newCol, rawVectors.At(row, oldCol))
		}
	}

	return Eigendecomposition{Values: sortedValues, Vectors: sortedVectors, Permutation: perm}
}

func sortPermutationByValue(perm []int, values []complex128) {
	for i := 1; i < len(perm); i++ {
		j := i
		for j > 0 && less(values[perm[j]], values[perm[j-1]]) {
			perm[j], perm[j-1] = perm[j-1], perm[j]
			j--
		}
	}
}

func less(a, b complex128) bool {
	if real(a) != real(b) {
		return real(a) < real(b)
	}
	return imag(a) < imag(b)
}

// Cs returns the n-hop connectivity sequence: A, A+A², A+A²+A³, …,
// terminating once the next power contributes nothing (is the zero
// matrix). Each returned matrix is the accumulated reachability within
// that many hops.
func (v *View) Cs() []*mat.Dense {
	if v.n == 0 {
		return nil
	}

	running := mat.NewDense(v.n, v.n, nil)
	running.Copy(v.a)
	first := mat.NewDense(v.n, v.n, nil)
	first.Copy(running)
	out := []*mat.Dense{first}

	power := v.a
	for {
		next := mat.NewDense(v.n, v.n, nil)
		next.Mul(power, v.a)
		if isZero(next) {
			break
		}
		running.Add(running, next)
		snapshot := mat.NewDense(v.n, v.n, nil)
		snapshot.Copy(running)
		out = append(out, snapshot)
		power = next
	}

	return out
}

func isZero(m *mat.Dense) bool {
	r, c := m.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if m.At(i, j) != 0 {
				return false
			}
		}
	}
	return true
}
