package design_test

import (
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vtrials/vtdb/pkg/design"
	"github.com/vtrials/vtdb/pkg/param"
)

func floatDef(path string) param.Def {
	return param.Def{
		Kind: param.Config,
		Path: path,
		Type: param.TypeFloat,
		Base: param.Float(0),
	}
}

// unitDim is a continuous dimension on [0,1]; its point values equal the
// quantiles the generator produced, which makes assertions direct.
func unitDim(path string) design.Dimension {
	return design.Dim(design.Distributed{
		D:    floatDef(path),
		Dist: design.Uniform{Min: 0, Max: 1},
	})
}

func unitDims(d int) []design.Dimension {
	res := make([]design.Dimension, d)
	for i := range res {
		res[i] = unitDim(fmt.Sprintf("p%d", i))
	}
	return res
}

func discreteDim(path string, vals ...float64) design.Dimension {
	values := make([]param.Value, len(vals))
	for i, v := range vals {
		values[i] = param.Float(v)
	}
	return design.Dim(design.Discrete{D: floatDef(path), Values: values})
}

func floats(row []param.Value) []float64 {
	res := make([]float64, len(row))
	for i, v := range row {
		res[i] = v.Float
	}
	return res
}

func TestGrid(t *testing.T) {
	dims := []design.Dimension{
		discreteDim("a", 1, 2, 3),
		discreteDim("b", 10, 20),
	}

	m, err := design.Grid(dims)
	require.NoError(t, err)
	require.Len(t, m.Points, 6)
	require.Len(t, m.Defs, 2)

	t.Run("last dimension ticks fastest", func(t *testing.T) {
		assert.Equal(t, []float64{1, 10}, floats(m.Points[0]))
		assert.Equal(t, []float64{1, 20}, floats(m.Points[1]))
		assert.Equal(t, []float64{2, 10}, floats(m.Points[2]))
		assert.Equal(t, []float64{3, 20}, floats(m.Points[5]))
	})

	t.Run("rejects continuous dimensions", func(t *testing.T) {
		_, err := design.Grid([]design.Dimension{unitDim("x")})
		assert.Error(t, err)
	})

	t.Run("rejects empty designs", func(t *testing.T) {
		_, err := design.Grid(nil)
		assert.Error(t, err)
	})
}

func TestGridCoVariation(t *testing.T) {
	// Two covarying lists advance together instead of being crossed.
	pair := design.CoVary(
		design.Discrete{D: floatDef("a"), Values: []param.Value{
			param.Float(1), param.Float(2), param.Float(3),
		}},
		design.Discrete{D: floatDef("b"), Values: []param.Value{
			param.Float(10), param.Float(20), param.Float(30),
		}},
	)
	dims := []design.Dimension{pair, discreteDim("c", 0, 1)}

	m, err := design.Grid(dims)
	require.NoError(t, err)
	require.Len(t, m.Points, 6)
	require.Len(t, m.Defs, 3)

	assert.Equal(t, []float64{1, 10, 0}, floats(m.Points[0]))
	assert.Equal(t, []float64{2, 20, 0}, floats(m.Points[2]))
	assert.Equal(t, []float64{3, 30, 1}, floats(m.Points[5]))
}

func TestDimensionValidate(t *testing.T) {
	t.Run("covarying lists must share length", func(t *testing.T) {
		d := design.CoVary(
			design.Discrete{D: floatDef("a"), Values: []param.Value{
				param.Float(1), param.Float(2),
			}},
			design.Discrete{D: floatDef("b"), Values: []param.Value{
				param.Float(1), param.Float(2), param.Float(3),
			}},
		)
		assert.Error(t, d.Validate())
	})

	t.Run("flip moves covarying elements oppositely", func(t *testing.T) {
		d := design.CoVary(
			design.Distributed{D: floatDef("a"), Dist: design.Uniform{Max: 1}},
			design.Distributed{
				D:    floatDef("b"),
				Dist: design.Uniform{Max: 1},
				Flip: true,
			},
		)
		row := d.PointFromQuantile(0.25)
		assert.InDelta(t, 0.25, row[0].Float, 1e-12)
		assert.InDelta(t, 0.75, row[1].Float, 1e-12)
	})
}

func TestLHS(t *testing.T) {
	const n = 16
	rng := rand.New(rand.NewPCG(42, 42))

	m, err := design.LHS(unitDims(3), n, rng, design.LHSOptions{})
	require.NoError(t, err)
	require.Len(t, m.Points, n)

	t.Run("one point per bin per dimension", func(t *testing.T) {
		for dim := range 3 {
			seen := make(map[int]bool)
			for _, row := range m.Points {
				bin := int(row[dim].Float * n)
				assert.False(t, seen[bin], "bin %d hit twice in dim %d", bin, dim)
				seen[bin] = true
			}
			assert.Len(t, seen, n)
		}
	})
}

func TestLHSJitter(t *testing.T) {
	const n = 8
	rng := rand.New(rand.NewPCG(1, 1))

	m, err := design.LHS(unitDims(2), n, rng, design.LHSOptions{Jitter: true})
	require.NoError(t, err)

	// Still Latin: jitter moves points within bins, never across.
	for dim := range 2 {
		seen := make(map[int]bool)
		for _, row := range m.Points {
			seen[int(row[dim].Float*n)] = true
		}
		assert.Len(t, seen, n)
	}
}

func TestLHSOrthogonal(t *testing.T) {
	// n = 4 = 2^2: the coarse 2x2 grid gets one point per cell.
	rng := rand.New(rand.NewPCG(7, 7))
	m, err := design.LHS(unitDims(2), 4, rng, design.LHSOptions{Orthogonal: true})
	require.NoError(t, err)

	cells := make(map[[2]int]int)
	for _, row := range m.Points {
		cell := [2]int{int(row[0].Float * 2), int(row[1].Float * 2)}
		cells[cell]++
	}
	assert.Len(t, cells, 4)
	for cell, count := range cells {
		assert.Equal(t, 1, count, "cell %v", cell)
	}

	t.Run("rejects n that is not a perfect power", func(t *testing.T) {
		_, err := design.LHS(unitDims(2), 6, rng, design.LHSOptions{Orthogonal: true})
		assert.Error(t, err)
	})
}

func TestSobol(t *testing.T) {
	dims := unitDims(2)

	t.Run("deterministic prefix under refinement", func(t *testing.T) {
		small, err := design.Sobol(dims, 7, design.SobolOptions{})
		require.NoError(t, err)
		large, err := design.Sobol(dims, 9, design.SobolOptions{})
		require.NoError(t, err)

		for i := range small.Points {
			assert.Equal(t, floats(small.Points[i]), floats(large.Points[i]))
		}
	})

	t.Run("skip selects a sub-sequence", func(t *testing.T) {
		full, err := design.Sobol(dims, 7, design.SobolOptions{})
		require.NoError(t, err)
		tail, err := design.Sobol(dims, 4, design.SobolOptions{Skip: 3})
		require.NoError(t, err)

		for i := range tail.Points {
			assert.Equal(t, floats(full.Points[i+3]), floats(tail.Points[i]))
		}
	})

	t.Run("points stay inside the unit cube", func(t *testing.T) {
		m, err := design.Sobol(dims, 100, design.SobolOptions{})
		require.NoError(t, err)
		for _, row := range m.Points {
			for _, v := range row {
				assert.Greater(t, v.Float, 0.0)
				assert.Less(t, v.Float, 1.0)
			}
		}
	})

	t.Run("dimension limit", func(t *testing.T) {
		_, err := design.Sobol(unitDims(design.MaxSobolDims+1), 4,
			design.SobolOptions{})
		assert.Error(t, err)
	})
}

func TestRBD(t *testing.T) {
	const n = 16
	rng := rand.New(rand.NewPCG(3, 3))

	m, scheme, err := design.RBD(unitDims(2), n, rng, design.RBDOptions{})
	require.NoError(t, err)
	require.Len(t, m.Points, n)

	assert.Equal(t, n, scheme.N)
	require.Len(t, scheme.S0, n)
	require.Len(t, scheme.Perms, 2)

	t.Run("perms are permutations", func(t *testing.T) {
		for _, perm := range scheme.Perms {
			seen := make(map[int]bool)
			for _, p := range perm {
				seen[p] = true
			}
			assert.Len(t, seen, n)
		}
	})

	t.Run("points stay inside the unit cube", func(t *testing.T) {
		for _, row := range m.Points {
			for _, v := range row {
				assert.GreaterOrEqual(t, v.Float, 0.0)
				assert.LessOrEqual(t, v.Float, 1.0)
			}
		}
	})

	t.Run("reuse keeps the dyadic grid on refinement", func(t *testing.T) {
		_, s1, err := design.RBD(unitDims(1), 9, rng, design.RBDOptions{Reuse: true})
		require.NoError(t, err)
		_, s2, err := design.RBD(unitDims(1), 17, rng, design.RBDOptions{Reuse: true})
		require.NoError(t, err)

		// Every grid value of the 9-point half period appears among the
		// 17-point ones.
		coarse := make(map[string]bool)
		for _, s := range s2.S0 {
			coarse[fmt.Sprintf("%.9f", s)] = true
		}
		for _, s := range s1.S0 {
			assert.True(t, coarse[fmt.Sprintf("%.9f", s)], "s0 %v lost", s)
		}
	})
}

func TestMOAT(t *testing.T) {
	const r, d = 4, 3
	rng := rand.New(rand.NewPCG(11, 11))

	m, scheme, err := design.MOAT(unitDims(d), r, rng)
	require.NoError(t, err)
	require.Len(t, m.Points, r*(d+1))

	assert.Equal(t, r, scheme.R)
	assert.Equal(t, d, scheme.D)
	require.Len(t, scheme.Order, r)
	require.Len(t, scheme.Delta, r)

	for tr := range r {
		base := tr * (d + 1)

		t.Run("each step perturbs one dimension", func(t *testing.T) {
			for k, dim := range scheme.Order[tr] {
				prev := floats(m.Points[base+k])
				next := floats(m.Points[base+k+1])
				for i := range d {
					if i == dim {
						assert.InDelta(t,
							scheme.Delta[tr][k], next[i]-prev[i], 1e-9)
						continue
					}
					assert.InDelta(t, prev[i], next[i], 1e-9)
				}
			}
		})

		t.Run("order is a permutation", func(t *testing.T) {
			seen := make(map[int]bool)
			for _, dim := range scheme.Order[tr] {
				seen[dim] = true
			}
			assert.Len(t, seen, d)
		})
	}

	t.Run("points stay inside the unit cube", func(t *testing.T) {
		for _, row := range m.Points {
			for _, v := range row {
				assert.GreaterOrEqual(t, v.Float, 0.0)
				assert.LessOrEqual(t, v.Float, 1.0)
			}
		}
	})
}

func TestSobolSample(t *testing.T) {
	const n, d = 8, 2
	rng := rand.New(rand.NewPCG(5, 5))

	m, scheme, err := design.SobolSample(unitDims(d), n, rng)
	require.NoError(t, err)

	assert.Equal(t, n, scheme.N)
	assert.Equal(t, d, scheme.D)
	assert.Equal(t, n*(d+2), scheme.Rows())
	require.Len(t, m.Points, scheme.Rows())

	t.Run("AB blocks mix one column of B into A", func(t *testing.T) {
		for i := range d {
			for j := range n {
				a := floats(m.Points[j])
				b := floats(m.Points[n+j])
				ab := floats(m.Points[(2+i)*n+j])
				for col := range d {
					if col == i {
						assert.Equal(t, b[col], ab[col])
						continue
					}
					assert.Equal(t, a[col], ab[col])
				}
			}
		}
	})
}

func TestDistributions(t *testing.T) {
	t.Run("uniform", func(t *testing.T) {
		u := design.Uniform{Min: 2, Max: 4}
		assert.InDelta(t, 2.0, u.Quantile(0), 1e-12)
		assert.InDelta(t, 3.0, u.Quantile(0.5), 1e-12)
		assert.InDelta(t, 4.0, u.Quantile(1), 1e-12)
	})

	t.Run("log uniform", func(t *testing.T) {
		u := design.LogUniform{Min: 0.01, Max: 100}
		assert.InDelta(t, 0.01, u.Quantile(0), 1e-9)
		assert.InDelta(t, 1.0, u.Quantile(0.5), 1e-9)
		assert.InDelta(t, 100.0, u.Quantile(1), 1e-6)
	})

	t.Run("normal", func(t *testing.T) {
		n := design.Normal{Mean: 10, SD: 2}
		assert.InDelta(t, 10.0, n.Quantile(0.5), 1e-9)
		// 97.5th percentile sits near mean + 1.96 sd.
		assert.InDelta(t, 13.92, n.Quantile(0.975), 0.01)
	})

	t.Run("truncated normal stays in bounds", func(t *testing.T) {
		n := design.Normal{Mean: 0, SD: 1, Lo: -1, Hi: 1}
		for _, p := range []float64{0, 0.01, 0.5, 0.99, 1} {
			q := n.Quantile(p)
			assert.GreaterOrEqual(t, q, -1.0)
			assert.LessOrEqual(t, q, 1.0)
		}
	})
}
