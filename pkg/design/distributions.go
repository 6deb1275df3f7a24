package design

import (
	"math"
)

// Distribution maps a quantile in [0,1] to a parameter value.
type Distribution interface {
	Quantile(p float64) float64
}

// Uniform is the continuous uniform distribution on [Min, Max].
type Uniform struct {
	Min, Max float64
}

func (u Uniform) Quantile(p float64) float64 {
	return u.Min + p*(u.Max-u.Min)
}

// LogUniform is uniform in log space on [Min, Max]; Min must be > 0.
type LogUniform struct {
	Min, Max float64
}

func (u LogUniform) Quantile(p float64) float64 {
	lo, hi := math.Log(u.Min), math.Log(u.Max)
	return math.Exp(lo + p*(hi-lo))
}

// Normal is the normal distribution, optionally truncated to [Lo, Hi].
// With Lo == Hi == 0 no truncation is applied.
type Normal struct {
	Mean, SD float64
	Lo, Hi   float64
}

func (n Normal) Quantile(p float64) float64 {
	if n.Lo != 0 || n.Hi != 0 {
		// Truncated: map p into the CDF mass between the bounds.
		pl := n.cdf(n.Lo)
		ph := n.cdf(n.Hi)
		p = pl + p*(ph-pl)
	}
	// Clamp away from the open endpoints where Erfinv diverges.
	const eps = 1e-12
	p = math.Min(math.Max(p, eps), 1-eps)
	return n.Mean + n.SD*math.Sqrt2*math.Erfinv(2*p-1)
}

func (n Normal) cdf(x float64) float64 {
	return 0.5 * (1 + math.Erf((x-n.Mean)/(n.SD*math.Sqrt2)))
}
