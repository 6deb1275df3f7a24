package design

import (
	"fmt"
	"math/rand/v2"
)

// LHSOptions tune Latin hypercube generation.
type LHSOptions struct {
	// Jitter places each point uniformly at random inside its bin
	// instead of at the bin center.
	Jitter bool

	// Orthogonal requests block balancing: when n is a perfect k^d
	// power, every d-dimensional sub-hyperrectangle of the coarse k-grid
	// receives exactly one point. This restricts which combinations are
	// feasible, so it is never applied implicitly.
	Orthogonal bool
}

// LHS generates an n-point Latin hypercube over the dimensions: [0,1] is
// split into n equal bins per dimension and each dimension receives one
// random permutation of the bins, so every bin of every dimension holds
// exactly one point.
func LHS(dims []Dimension, n int, rng *rand.Rand, opts LHSOptions) (Matrix, error) {
	if err := validateDims(dims); err != nil {
		return Matrix{}, err
	}
	if n < 1 {
		return Matrix{}, fmt.Errorf("latin hypercube needs n >= 1, got %d", n)
	}

	d := len(dims)
	perms := make([][]int, d)
	if opts.Orthogonal {
		k, ok := perfectRoot(n, d)
		if !ok {
			return Matrix{}, fmt.Errorf(
				"orthogonal LHS needs n = k^d; %d is not a perfect %d-th power",
				n, d)
		}
		for i := range perms {
			perms[i] = orthogonalPerm(n, k, d, i, rng)
		}
	} else {
		for i := range perms {
			perms[i] = rng.Perm(n)
		}
	}

	m := Matrix{Defs: flatDefs(dims)}
	q := make([]float64, d)
	for j := range n {
		for i := range dims {
			off := 0.5
			if opts.Jitter {
				off = rng.Float64()
			}
			q[i] = (float64(perms[i][j]) + off) / float64(n)
		}
		m.Points = append(m.Points, fromQuantiles(dims, q))
	}

	return m, nil
}

// perfectRoot returns k such that k^d == n, if one exists.
func perfectRoot(n, d int) (int, bool) {
	for k := 2; ; k++ {
		p := 1
		for range d {
			p *= k
			if p > n {
				return 0, false
			}
		}
		if p == n {
			return k, true
		}
	}
}

// orthogonalPerm builds one dimension's bin permutation for an orthogonal
// hypercube with n = k^d points. Point j's coarse cell along dimension
// dim is digit dim of j in base k; fine offsets inside each coarse slab
// are a random permutation, which keeps the full permutation Latin while
// giving every coarse cell exactly one point.
func orthogonalPerm(n, k, d, dim int, rng *rand.Rand) []int {
	slab := n / k
	// Fine offsets per coarse bin.
	fine := make([][]int, k)
	for c := range fine {
		fine[c] = rng.Perm(slab)
	}
	used := make([]int, k)

	res := make([]int, n)
	for j := range n {
		c := digit(j, k, d, dim)
		res[j] = c*slab + fine[c][used[c]]
		used[c]++
	}
	return res
}

// digit extracts digit i (0 = most significant) of j written base k with
// d digits.
func digit(j, k, d, i int) int {
	for p := 0; p < d-1-i; p++ {
		j /= k
	}
	return j % k
}
