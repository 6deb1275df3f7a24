package param

import (
	"fmt"
	"strings"
)

// Def declares one varied parameter: where it lives, how it is named
// inside the location's configuration tree, its declared type, and the
// base value that variation_id 0 represents.
//
// Path doubles as the parameter's column name in the variation table;
// its segments use the syntax of the configuration-tree collaborator
// (`tag` or `tag:attr:value`, joined by `/`).
type Def struct {
	Kind LocationKind
	Path string
	Type ValueType
	Base Value
}

// Validate checks that the definition can back a variation column.
func (d Def) Validate() error {
	if !d.Kind.Variable() {
		return fmt.Errorf("kind %q is not variable", d.Kind)
	}
	if d.Path == "" {
		return fmt.Errorf("empty parameter path")
	}
	if strings.ContainsAny(d.Path, `"`) {
		return fmt.Errorf("parameter path %q contains a quote", d.Path)
	}
	if !d.Type.Valid() {
		return fmt.Errorf("unknown value type %q for %s", d.Type, d.Path)
	}
	if d.Base.Type != d.Type {
		return fmt.Errorf("base value of %s has type %q, declared %q",
			d.Path, d.Base.Type, d.Type)
	}
	return nil
}
