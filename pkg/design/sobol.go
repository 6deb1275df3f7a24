package design

import (
	"fmt"
)

// sobolBits is the precision of the generated sequence.
const sobolBits = 32

// sobolDim holds primitive-polynomial data for one dimension of the
// Joe-Kuo direction-number table.
type sobolDim struct {
	s uint
	a uint32
	m []uint32
}

// Direction-number table (Joe & Kuo, new-joe-kuo-6) for dimensions 2 and
// up; dimension 1 uses the trivial van der Corput directions.
// TODO: extend the table past 13 dimensions when a campaign needs it.
var sobolDims = []sobolDim{
	{s: 1, a: 0, m: []uint32{1}},
	{s: 2, a: 1, m: []uint32{1, 3}},
	{s: 3, a: 1, m: []uint32{1, 3, 1}},
	{s: 3, a: 2, m: []uint32{1, 1, 1}},
	{s: 4, a: 1, m: []uint32{1, 1, 3, 3}},
	{s: 4, a: 4, m: []uint32{1, 3, 5, 13}},
	{s: 5, a: 2, m: []uint32{1, 1, 5, 5, 17}},
	{s: 5, a: 4, m: []uint32{1, 1, 5, 5, 5}},
	{s: 5, a: 7, m: []uint32{1, 1, 7, 11, 19}},
	{s: 5, a: 11, m: []uint32{1, 1, 5, 1, 1}},
	{s: 5, a: 13, m: []uint32{1, 1, 1, 3, 11}},
	{s: 5, a: 14, m: []uint32{1, 3, 5, 5, 31}},
}

// MaxSobolDims is the largest dimensionality the embedded table covers.
var MaxSobolDims = len(sobolDims) + 1

// sobolDirections computes the 32 direction numbers of one dimension.
func sobolDirections(dim int) []uint32 {
	v := make([]uint32, sobolBits+1)
	if dim == 0 {
		for k := 1; k <= sobolBits; k++ {
			v[k] = 1 << (sobolBits - k)
		}
		return v
	}

	sd := sobolDims[dim-1]
	s := int(sd.s)
	for k := 1; k <= s && k <= sobolBits; k++ {
		v[k] = sd.m[k-1] << (sobolBits - k)
	}
	for k := s + 1; k <= sobolBits; k++ {
		v[k] = v[k-s] ^ (v[k-s] >> sd.s)
		for i := 1; i < s; i++ {
			if (sd.a>>(s-1-i))&1 == 1 {
				v[k] ^= v[k-i]
			}
		}
	}
	return v
}

// sobolPoints generates points skip+1 .. skip+n of the d-dimensional
// Sobol sequence (index 0, the all-zeros point, is never emitted). The
// sequence is deterministic, so requesting a larger n later reproduces
// every earlier point unchanged, in the same order.
func sobolPoints(d, n, skip int) ([][]float64, error) {
	if d > MaxSobolDims {
		return nil, fmt.Errorf(
			"sobol direction numbers cover %d dimensions, need %d",
			MaxSobolDims, d)
	}

	dirs := make([][]uint32, d)
	for i := range dirs {
		dirs[i] = sobolDirections(i)
	}

	x := make([]uint32, d)
	res := make([][]float64, 0, n)
	// Gray-code generation: point j+1 flips the direction indexed by the
	// lowest zero bit of j.
	for j := 0; j < skip+n; j++ {
		c := 1
		for bit := uint(0); j>>bit&1 == 1; bit++ {
			c++
		}
		row := make([]float64, d)
		for i := range x {
			x[i] ^= dirs[i][c]
			row[i] = float64(x[i]) / (1 << sobolBits)
		}
		if j >= skip {
			res = append(res, row)
		}
	}
	return res, nil
}

// SobolOptions tune Sobol sequence generation.
type SobolOptions struct {
	// Skip drops the first Skip points of the sequence, selecting a
	// sub-sequence; e.g. after an n = 2^k-1 design, Skip = 2^k-1 picks
	// up exactly where the previous refinement stopped.
	Skip int
}

// Sobol generates n points of the deterministic low-discrepancy Sobol
// sequence in [0,1]^d, mapped through each dimension's inverse CDF.
func Sobol(dims []Dimension, n int, opts SobolOptions) (Matrix, error) {
	if err := validateDims(dims); err != nil {
		return Matrix{}, err
	}
	if n < 1 {
		return Matrix{}, fmt.Errorf("sobol design needs n >= 1, got %d", n)
	}

	pts, err := sobolPoints(len(dims), n, opts.Skip)
	if err != nil {
		return Matrix{}, err
	}

	m := Matrix{Defs: flatDefs(dims)}
	for _, q := range pts {
		m.Points = append(m.Points, fromQuantiles(dims, q))
	}
	return m, nil
}
