// Package design implements the design-of-experiments generators that
// produce candidate parameter vectors: full-factorial grids, Latin
// hypercubes, Sobol low-discrepancy sequences, random balance designs,
// Morris one-at-a-time trajectories and Saltelli sampling schemes.
//
// Generators emit rectangular matrices of typed values; they never decide
// whether a point is new. Content addressing happens later, when the
// variation store inserts each row.
package design

import (
	"fmt"

	"github.com/vtrials/vtdb/pkg/param"
)

// Elementary is one varied parameter: either a finite list of discrete
// values or a continuous distribution reached through its inverse CDF.
type Elementary interface {
	// Def returns the parameter this variation applies to.
	Def() param.Def

	// Cardinality is the number of discrete values, or 0 when the
	// variation is continuous.
	Cardinality() int

	// ValueAt returns the i-th discrete value. Panics on continuous
	// variations.
	ValueAt(i int) param.Value

	// FromQuantile maps a point p in [0,1] through the variation's
	// inverse CDF. Discrete variations map p onto a value index.
	FromQuantile(p float64) param.Value
}

// Discrete is an elementary variation over an explicit value list.
type Discrete struct {
	D      param.Def
	Values []param.Value
}

func (d Discrete) Def() param.Def            { return d.D }
func (d Discrete) Cardinality() int          { return len(d.Values) }
func (d Discrete) ValueAt(i int) param.Value { return d.Values[i] }

func (d Discrete) FromQuantile(p float64) param.Value {
	n := len(d.Values)
	i := int(p * float64(n))
	if i >= n {
		i = n - 1
	}
	if i < 0 {
		i = 0
	}
	return d.Values[i]
}

// Distributed is an elementary variation over a continuous distribution.
// Flip substitutes the CDF argument p with 1-p, which lets two linked
// variations move in opposite directions inside one CoVariation.
type Distributed struct {
	D    param.Def
	Dist Distribution
	Flip bool
}

func (d Distributed) Def() param.Def   { return d.D }
func (d Distributed) Cardinality() int { return 0 }

func (d Distributed) ValueAt(int) param.Value {
	panic("ValueAt on a continuous variation")
}

func (d Distributed) FromQuantile(p float64) param.Value {
	if d.Flip {
		p = 1 - p
	}
	return param.FromFloat(d.D.Type, d.Dist.Quantile(p))
}

// Dimension is one axis of a design. A dimension with several elements is
// a CoVariation: its elements advance together instead of being crossed,
// which encodes domain constraints between parameters (e.g. A must not
// exceed B, expressed with a flipped distribution).
type Dimension struct {
	Elements []Elementary
}

// Dim wraps a single elementary variation into a dimension.
func Dim(e Elementary) Dimension { return Dimension{Elements: []Elementary{e}} }

// CoVary binds two or more elementary variations into one dimension.
func CoVary(es ...Elementary) Dimension { return Dimension{Elements: es} }

// Validate checks internal consistency: at least one element, and all
// discrete elements sharing one length.
func (d Dimension) Validate() error {
	if len(d.Elements) == 0 {
		return fmt.Errorf("dimension has no elements")
	}
	card := 0
	for _, e := range d.Elements {
		if err := e.Def().Validate(); err != nil {
			return err
		}
		c := e.Cardinality()
		if c == 0 {
			continue
		}
		if card == 0 {
			card = c
			continue
		}
		if c != card {
			return fmt.Errorf(
				"covarying discrete lists have lengths %d and %d", card, c)
		}
	}
	return nil
}

// Cardinality is the shared discrete length of the dimension, or 0 when
// every element is continuous.
func (d Dimension) Cardinality() int {
	for _, e := range d.Elements {
		if c := e.Cardinality(); c > 0 {
			return c
		}
	}
	return 0
}

// PointAt returns the dimension's values at discrete index i of n.
// Continuous elements ride along at the bin-center quantile.
func (d Dimension) PointAt(i, n int) []param.Value {
	res := make([]param.Value, len(d.Elements))
	for k, e := range d.Elements {
		if e.Cardinality() > 0 {
			res[k] = e.ValueAt(i)
			continue
		}
		res[k] = e.FromQuantile((float64(i) + 0.5) / float64(n))
	}
	return res
}

// PointFromQuantile returns the dimension's values at quantile p,
// advancing every element together.
func (d Dimension) PointFromQuantile(p float64) []param.Value {
	res := make([]param.Value, len(d.Elements))
	for k, e := range d.Elements {
		res[k] = e.FromQuantile(p)
	}
	return res
}

// Matrix is a rectangular design: Points[i][j] is the value of parameter
// Defs[j] at design point i.
type Matrix struct {
	Defs   []param.Def
	Points [][]param.Value
}

// Vectors regroups one design point into per-kind parameter vectors ready
// for the variation store.
func (m Matrix) Vectors(point int) map[param.LocationKind][]param.VectorEntry {
	res := make(map[param.LocationKind][]param.VectorEntry)
	for j, def := range m.Defs {
		res[def.Kind] = append(res[def.Kind], param.VectorEntry{
			Def:   def,
			Value: m.Points[point][j],
		})
	}
	return res
}

// flatDefs collects the defs of all dimensions in order.
func flatDefs(dims []Dimension) []param.Def {
	var res []param.Def
	for _, d := range dims {
		for _, e := range d.Elements {
			res = append(res, e.Def())
		}
	}
	return res
}

func validateDims(dims []Dimension) error {
	if len(dims) == 0 {
		return fmt.Errorf("design has no dimensions")
	}
	for _, d := range dims {
		if err := d.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// fromQuantiles builds a matrix row from one quantile per dimension.
func fromQuantiles(dims []Dimension, q []float64) []param.Value {
	var row []param.Value
	for i, d := range dims {
		row = append(row, d.PointFromQuantile(q[i])...)
	}
	return row
}
