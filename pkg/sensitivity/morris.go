package sensitivity

import (
	"math"

	"github.com/vtrials/vtdb/pkg/design"
)

// EffectStats are the Morris elementary-effect statistics of one
// parameter: the mean, mean-absolute and standard deviation of its
// one-at-a-time perturbation effects across trajectories.
type EffectStats struct {
	Mean    float64
	MeanAbs float64
	SD      float64
}

// Morris computes elementary-effect statistics for a MOAT design.
// y holds one response per design point, in design order.
func Morris(scheme design.MOATScheme, y []float64) ([]EffectStats, error) {
	if err := checkResponses(scheme.R*(scheme.D+1), len(y)); err != nil {
		return nil, err
	}

	effects := make([][]float64, scheme.D)
	for t := range scheme.R {
		base := t * (scheme.D + 1)
		for k, dim := range scheme.Order[t] {
			ee := (y[base+k+1] - y[base+k]) / scheme.Delta[t][k]
			effects[dim] = append(effects[dim], ee)
		}
	}

	res := make([]EffectStats, scheme.D)
	for i, es := range effects {
		var mean, meanAbs float64
		for _, e := range es {
			mean += e
			meanAbs += math.Abs(e)
		}
		n := float64(len(es))
		mean /= n
		meanAbs /= n

		var sd float64
		for _, e := range es {
			d := e - mean
			sd += d * d
		}
		if len(es) > 1 {
			sd = math.Sqrt(sd / (n - 1))
		}
		res[i] = EffectStats{Mean: mean, MeanAbs: meanAbs, SD: sd}
	}
	return res, nil
}
