package design

import (
	"fmt"
	"math/rand/v2"
)

// SaltelliScheme records the layout of a Sobol sensitivity sample:
// rows [0,N) are matrix A, rows [N,2N) matrix B, and rows
// [(2+i)N,(3+i)N) matrix AB_i (A with column i replaced from B).
type SaltelliScheme struct {
	N int `json:"n"`
	D int `json:"d"`
}

// Rows is the total number of design points: N*(D+2).
func (s SaltelliScheme) Rows() int { return s.N * (s.D + 2) }

// SobolSample generates the Saltelli A/B/AB_i sampling scheme used for
// variance-based sensitivity indices. The A and B quantile matrices come
// from one 2d-dimensional Sobol sequence when the direction-number table
// allows, falling back to pseudo-random sampling otherwise.
func SobolSample(dims []Dimension, n int, rng *rand.Rand) (Matrix, SaltelliScheme, error) {
	if err := validateDims(dims); err != nil {
		return Matrix{}, SaltelliScheme{}, err
	}
	if n < 2 {
		return Matrix{}, SaltelliScheme{}, fmt.Errorf(
			"sobol sensitivity sample needs n >= 2, got %d", n)
	}

	d := len(dims)
	a := make([][]float64, n)
	b := make([][]float64, n)

	if 2*d <= MaxSobolDims {
		pts, err := sobolPoints(2*d, n, 0)
		if err != nil {
			return Matrix{}, SaltelliScheme{}, err
		}
		for j := range n {
			a[j] = pts[j][:d]
			b[j] = pts[j][d:]
		}
	} else {
		for j := range n {
			a[j] = randRow(d, rng)
			b[j] = randRow(d, rng)
		}
	}

	m := Matrix{Defs: flatDefs(dims)}
	for j := range n {
		m.Points = append(m.Points, fromQuantiles(dims, a[j]))
	}
	for j := range n {
		m.Points = append(m.Points, fromQuantiles(dims, b[j]))
	}
	for i := range d {
		for j := range n {
			row := make([]float64, d)
			copy(row, a[j])
			row[i] = b[j][i]
			m.Points = append(m.Points, fromQuantiles(dims, row))
		}
	}

	return m, SaltelliScheme{N: n, D: d}, nil
}

func randRow(d int, rng *rand.Rand) []float64 {
	row := make([]float64, d)
	for i := range row {
		row[i] = rng.Float64()
	}
	return row
}
