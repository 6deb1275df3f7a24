package param

import "fmt"

// VectorEntry pairs one parameter definition with a concrete value.
// A slice of entries is one point of a design matrix, addressed to a
// single location kind.
type VectorEntry struct {
	Def   Def
	Value Value
}

// ValidateVector checks that every entry is self-consistent and that all
// entries target the same variable kind.
func ValidateVector(kind LocationKind, vector []VectorEntry) error {
	if len(vector) == 0 {
		return fmt.Errorf("empty parameter vector")
	}
	for _, e := range vector {
		if err := e.Def.Validate(); err != nil {
			return err
		}
		if e.Def.Kind != kind {
			return fmt.Errorf("vector entry %s targets kind %q, want %q",
				e.Def.Path, e.Def.Kind, kind)
		}
		if e.Value.Type != e.Def.Type {
			return fmt.Errorf("value for %s has type %q, declared %q",
				e.Def.Path, e.Value.Type, e.Def.Type)
		}
	}
	return nil
}
