package design

import (
	"fmt"

	"github.com/vtrials/vtdb/pkg/param"
)

// Grid generates the full factorial cross product of the dimensions'
// discrete value lists. Points come out in lexicographic order with the
// last dimension varying fastest; size is the product of the dimension
// cardinalities. Continuous-only dimensions cannot be crossed and are
// rejected.
func Grid(dims []Dimension) (Matrix, error) {
	if err := validateDims(dims); err != nil {
		return Matrix{}, err
	}

	sizes := make([]int, len(dims))
	total := 1
	for i, d := range dims {
		c := d.Cardinality()
		if c == 0 {
			return Matrix{}, fmt.Errorf(
				"grid design requires discrete values for %s",
				d.Elements[0].Def().Path)
		}
		sizes[i] = c
		total *= c
	}

	m := Matrix{Defs: flatDefs(dims)}
	idx := make([]int, len(dims))
	for range total {
		var row []param.Value
		for i, d := range dims {
			row = append(row, d.PointAt(idx[i], sizes[i])...)
		}
		m.Points = append(m.Points, row)

		// Odometer: last dimension ticks fastest.
		for i := len(idx) - 1; i >= 0; i-- {
			idx[i]++
			if idx[i] < sizes[i] {
				break
			}
			idx[i] = 0
		}
	}

	return m, nil
}
