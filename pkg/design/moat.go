package design

import (
	"fmt"
	"math/rand/v2"
)

// MOATScheme records a Morris one-at-a-time design: r trajectories of
// d+1 points each; within trajectory t, step k perturbs dimension
// Order[t][k] by Delta[t][k] (in quantile units).
type MOATScheme struct {
	R     int         `json:"r"`
	D     int         `json:"d"`
	Order [][]int     `json:"order"`
	Delta [][]float64 `json:"delta"`
}

// moatLevels is the p of the classic Morris grid; delta = p/(2(p-1)).
const moatLevels = 4

// MOAT generates r Morris trajectories over a p-level grid in [0,1]^d.
// Each trajectory starts at a random grid point and perturbs every
// dimension exactly once, in random order; the resulting r*(d+1) points
// feed the elementary-effect statistics of the sensitivity
// post-processor.
func MOAT(dims []Dimension, r int, rng *rand.Rand) (Matrix, MOATScheme, error) {
	if err := validateDims(dims); err != nil {
		return Matrix{}, MOATScheme{}, err
	}
	if r < 1 {
		return Matrix{}, MOATScheme{}, fmt.Errorf(
			"morris design needs r >= 1 trajectories, got %d", r)
	}

	d := len(dims)
	delta := float64(moatLevels) / (2 * float64(moatLevels-1))

	scheme := MOATScheme{R: r, D: d}
	m := Matrix{Defs: flatDefs(dims)}

	q := make([]float64, d)
	for range r {
		// Base point on the lower part of the grid so +delta stays
		// inside [0,1].
		for i := range q {
			lvl := rng.IntN(moatLevels / 2)
			q[i] = float64(lvl) / float64(moatLevels-1)
		}
		m.Points = append(m.Points, fromQuantiles(dims, q))

		order := rng.Perm(d)
		steps := make([]float64, d)
		for k, dim := range order {
			steps[k] = delta
			q[dim] += delta
			m.Points = append(m.Points, fromQuantiles(dims, q))
		}
		scheme.Order = append(scheme.Order, order)
		scheme.Delta = append(scheme.Delta, steps)
	}

	return m, scheme, nil
}
