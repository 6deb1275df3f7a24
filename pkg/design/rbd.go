package design

import (
	"fmt"
	"math"
	"math/rand/v2"
)

// RBDScheme records what the sensitivity post-processor needs to recover
// first-order indices from a random balance design: the sinusoid grid and
// each parameter's independent permutation of it.
type RBDScheme struct {
	N     int       `json:"n"`
	S0    []float64 `json:"s0"`
	Perms [][]int   `json:"perms"`
}

// RBDOptions tune random-balance-design generation.
type RBDOptions struct {
	// Reuse lays the points on a half-period dyadic grid so that a
	// later refinement to roughly double n reuses the existing points.
	// Only honored when n is within 1 of a power of two.
	Reuse bool
}

// RBD generates an n-point random balance design: every parameter gets an
// independent random permutation of n design points mapped onto a
// sinusoid in [0,1]. The returned scheme carries the permutations for the
// discrete-Fourier sensitivity analysis of the responses.
func RBD(dims []Dimension, n int, rng *rand.Rand, opts RBDOptions) (Matrix, RBDScheme, error) {
	if err := validateDims(dims); err != nil {
		return Matrix{}, RBDScheme{}, err
	}
	if n < 2 {
		return Matrix{}, RBDScheme{}, fmt.Errorf(
			"random balance design needs n >= 2, got %d", n)
	}

	s0 := make([]float64, n)
	if opts.Reuse && nearPowerOfTwo(n) {
		// Half period over a dyadic grid: refining n-1 = 2^k to
		// 2^(k+1) keeps every existing grid point.
		for j := range n {
			s0[j] = -math.Pi/2 + math.Pi*float64(j)/float64(n-1)
		}
	} else {
		// Full period, uniformly spaced.
		for j := range n {
			s0[j] = -math.Pi + 2*math.Pi*(float64(j)+0.5)/float64(n)
		}
	}

	x := make([]float64, n)
	for j, s := range s0 {
		x[j] = 0.5 + math.Asin(math.Sin(s))/math.Pi
	}

	d := len(dims)
	scheme := RBDScheme{N: n, S0: s0, Perms: make([][]int, d)}
	for i := range scheme.Perms {
		scheme.Perms[i] = rng.Perm(n)
	}

	m := Matrix{Defs: flatDefs(dims)}
	q := make([]float64, d)
	for j := range n {
		for i := range dims {
			q[i] = x[scheme.Perms[i][j]]
		}
		m.Points = append(m.Points, fromQuantiles(dims, q))
	}
	return m, scheme, nil
}

func nearPowerOfTwo(n int) bool {
	for p := 2; p <= n+1; p *= 2 {
		if n >= p-1 && n <= p+1 {
			return true
		}
	}
	return false
}
