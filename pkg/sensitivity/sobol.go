package sensitivity

import (
	"fmt"

	"github.com/vtrials/vtdb/pkg/design"
)

// Estimator selects the variance-based index estimator.
type Estimator string

const (
	// Classic pairs the Sobol' 1993 first-order estimator with the
	// complement total-order estimator.
	Classic Estimator = "classic"
	// Jansen uses the Jansen 1999 squared-difference estimators.
	Jansen Estimator = "jansen"
	// Homma pairs the classic first-order with the mean-centered
	// Homma-Saltelli 1996 total order.
	Homma Estimator = "homma"
	// Saltelli uses the Saltelli 2010 first-order estimator with the
	// Jansen total order.
	Saltelli Estimator = "saltelli"
	// Sobol2007 uses the Sobol' 2007 inner-product estimators.
	Sobol2007 Estimator = "sobol2007"
)

// Indices holds first- and total-order variance-based sensitivity
// indices, one entry per design dimension.
type Indices struct {
	First []float64
	Total []float64
}

// SobolIndices computes variance-based indices from the responses of a
// Saltelli A/B/AB sample, in design order. The AB_i block shares only
// column i with B, so Cov(yB, yAB_i) estimates the first-order variance
// share and Cov(yA, yAB_i) the complement of the total-order share.
func SobolIndices(scheme design.SaltelliScheme, y []float64, est Estimator) (Indices, error) {
	if err := checkResponses(scheme.Rows(), len(y)); err != nil {
		return Indices{}, err
	}

	n, d := scheme.N, scheme.D
	yA := y[:n]
	yB := y[n : 2*n]

	all := make([]float64, 0, 2*n)
	all = append(all, yA...)
	all = append(all, yB...)
	f0, variance := meanVar(all)
	if variance == 0 {
		return Indices{}, fmt.Errorf("responses have zero variance")
	}

	res := Indices{
		First: make([]float64, d),
		Total: make([]float64, d),
	}

	fn := float64(n)
	for i := range d {
		yAB := y[(2+i)*n : (3+i)*n]

		var (
			dotB     float64 // Σ yB·yAB
			dotA     float64 // Σ yA·yAB
			dotBdiff float64 // Σ yB·(yAB - yA)
			sqB      float64 // Σ (yB - yAB)²
			sqA      float64 // Σ (yA - yAB)²
			dotSelf  float64 // Σ yA·(yA - yAB)
			centered float64 // Σ (yA - f0)·(yAB - f0)
		)
		for j := range n {
			dotB += yB[j] * yAB[j]
			dotA += yA[j] * yAB[j]
			dotBdiff += yB[j] * (yAB[j] - yA[j])
			db := yB[j] - yAB[j]
			sqB += db * db
			da := yA[j] - yAB[j]
			sqA += da * da
			dotSelf += yA[j] * da
			centered += (yA[j] - f0) * (yAB[j] - f0)
		}

		switch est {
		case Classic, "":
			res.First[i] = (dotB/fn - f0*f0) / variance
			res.Total[i] = 1 - (dotA/fn-f0*f0)/variance
		case Homma:
			res.First[i] = (dotB/fn - f0*f0) / variance
			res.Total[i] = 1 - centered/(fn*variance)
		case Jansen:
			res.First[i] = 1 - sqB/(2*fn*variance)
			res.Total[i] = sqA / (2 * fn * variance)
		case Saltelli:
			res.First[i] = dotBdiff / (fn * variance)
			res.Total[i] = sqA / (2 * fn * variance)
		case Sobol2007:
			res.First[i] = dotBdiff / (fn * variance)
			res.Total[i] = dotSelf / (fn * variance)
		default:
			return Indices{}, fmt.Errorf("unknown estimator %q", est)
		}
	}

	return res, nil
}
