package sensitivity

import (
	"fmt"
	"math"
	"sort"

	"github.com/vtrials/vtdb/pkg/design"
)

// RBDFast computes first-order sensitivity indices from a random balance
// design: for each parameter, the responses are reordered so that the
// parameter traverses its sinusoid monotonically, and the share of
// spectral power at harmonics 1..harmonics of the reordered signal
// estimates the parameter's first-order index.
func RBDFast(scheme design.RBDScheme, y []float64, harmonics int) ([]float64, error) {
	if err := checkResponses(scheme.N, len(y)); err != nil {
		return nil, err
	}
	if harmonics < 1 {
		return nil, fmt.Errorf("need at least one harmonic, got %d", harmonics)
	}

	n := scheme.N
	_, variance := meanVar(y)
	if variance == 0 {
		return nil, fmt.Errorf("responses have zero variance")
	}

	// Rank of each grid slot in ascending s0 order.
	rank := make([]int, n)
	for i, k := range argsort(scheme.S0) {
		rank[k] = i
	}

	res := make([]float64, len(scheme.Perms))
	reordered := make([]float64, n)
	for i, perm := range scheme.Perms {
		// Design row j used grid slot perm[j] for parameter i; walking
		// slots in s0 order makes parameter i periodic in the signal.
		for j := range n {
			reordered[rank[perm[j]]] = y[j]
		}

		var power float64
		for h := 1; h <= harmonics; h++ {
			re, im := dft(reordered, h)
			power += re*re + im*im
		}
		// One-sided spectrum: each harmonic carries twice its
		// coefficient power.
		res[i] = 2 * power / (float64(n) * float64(n) * variance)
	}
	return res, nil
}

// dft returns the h-th Fourier coefficient of y (unnormalized).
func dft(y []float64, h int) (float64, float64) {
	n := float64(len(y))
	var re, im float64
	for j, v := range y {
		phase := 2 * math.Pi * float64(h) * float64(j) / n
		re += v * math.Cos(phase)
		im -= v * math.Sin(phase)
	}
	return re, im
}

func argsort(x []float64) []int {
	idx := make([]int, len(x))
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool { return x[idx[a]] < x[idx[b]] })
	return idx
}
