// Package sensitivity turns the per-point scalar outputs of a completed
// sampling into sensitivity indices. It consumes the design scheme the
// sampling was generated with and performs no scheduling of its own.
package sensitivity

import (
	"fmt"
)

// Extractor turns one completed simulation into a scalar response.
type Extractor func(simulationID int64) (float64, error)

// Responses evaluates the extractor over a sampling's replicate groups in
// design order, one averaged response per design point.
func Responses(groups [][]int64, extract Extractor) ([]float64, error) {
	res := make([]float64, len(groups))
	for i, sims := range groups {
		if len(sims) == 0 {
			return nil, fmt.Errorf("design point %d has no simulations", i)
		}
		var sum float64
		for _, id := range sims {
			v, err := extract(id)
			if err != nil {
				return nil, fmt.Errorf("simulation %d: %w", id, err)
			}
			sum += v
		}
		res[i] = sum / float64(len(sims))
	}
	return res, nil
}

// meanVar returns the sample mean and (population) variance of y.
func meanVar(y []float64) (float64, float64) {
	n := float64(len(y))
	var mean float64
	for _, v := range y {
		mean += v
	}
	mean /= n

	var variance float64
	for _, v := range y {
		d := v - mean
		variance += d * d
	}
	return mean, variance / n
}

func checkResponses(want, got int) error {
	if want != got {
		return fmt.Errorf("design has %d points, got %d responses", want, got)
	}
	return nil
}
