package param

import (
	"fmt"
	"strings"
)

// LocationSet maps each kind used by a run to its location id.
// Kinds the run does not use are absent.
type LocationSet map[LocationKind]int64

// Identity is the full variation-identity tuple of a run: one variation
// id per variable kind. Absent kinds are implicitly at the base row 0.
// Two runs are the same parameterization iff their identities are equal
// under the same LocationSet.
type Identity map[LocationKind]int64

// ID returns the variation id for a kind, defaulting to the base row.
func (id Identity) ID(k LocationKind) int64 {
	if v, ok := id[k]; ok {
		return v
	}
	return 0
}

// Equal reports whether two identities select the same variation rows.
func (id Identity) Equal(o Identity) bool {
	for _, k := range VariableKinds() {
		if id.ID(k) != o.ID(k) {
			return false
		}
	}
	return true
}

// String renders the identity tuple in canonical kind order, e.g.
// "config:3/rulesets:0/ic_cell:1/ic_ecm:0/intracellular:0".
func (id Identity) String() string {
	parts := make([]string, 0, len(VariableKinds()))
	for _, k := range VariableKinds() {
		parts = append(parts, fmt.Sprintf("%s:%d", k, id.ID(k)))
	}
	return strings.Join(parts, "/")
}

// Get returns the location id for a kind, or -1 when the kind is unused.
func (ls LocationSet) Get(k LocationKind) int64 {
	if v, ok := ls[k]; ok {
		return v
	}
	return -1
}

// Equal reports whether two location sets reference the same folders.
func (ls LocationSet) Equal(o LocationSet) bool {
	for _, k := range AllKinds() {
		if ls.Get(k) != o.Get(k) {
			return false
		}
	}
	return true
}
