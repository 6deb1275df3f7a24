package iostore

import (
	"fmt"

	"github.com/gnames/gn"
	"github.com/vtrials/vtdb/pkg/errcode"
	"github.com/vtrials/vtdb/pkg/param"
)

// KindNotVariableError happens when a store operation targets a kind
// that carries no variation table.
func KindNotVariableError(kind param.LocationKind) error {
	return &gn.Error{
		Code: errcode.StoreKindNotVariableError,
		Msg:  "Location kind <em>%s</em> has no variation table",
		Vars: []any{kind},
		Err:  fmt.Errorf("iostore: kind %q is not variable", kind),
	}
}

// ColumnAddError happens when a parameter column cannot be added or its
// migration log row cannot be written.
func ColumnAddError(kind param.LocationKind, path string, err error) error {
	return &gn.Error{
		Code: errcode.StoreColumnAddError,
		Msg:  "Cannot add parameter column <em>%s</em> to kind <em>%s</em>",
		Vars: []any{path, kind},
		Err:  fmt.Errorf("iostore: add column %q (%s): %w", path, kind, err),
	}
}

// IndexRebuildError happens when the all-columns unique index cannot be
// rebuilt after a column addition.
func IndexRebuildError(kind param.LocationKind, err error) error {
	return &gn.Error{
		Code: errcode.StoreIndexRebuildError,
		Msg:  "Cannot rebuild the unique index of kind <em>%s</em>",
		Vars: []any{kind},
		Err:  fmt.Errorf("iostore: rebuild index (%s): %w", kind, err),
	}
}

// InsertError happens when a parameter vector cannot be inserted.
func InsertError(kind param.LocationKind, err error) error {
	return &gn.Error{
		Code: errcode.StoreInsertError,
		Msg:  "Cannot store parameter vector for kind <em>%s</em>",
		Vars: []any{kind},
		Err:  fmt.Errorf("iostore: insert (%s): %w", kind, err),
	}
}

// LookupError happens when variation rows or columns cannot be read.
func LookupError(kind param.LocationKind, err error) error {
	return &gn.Error{
		Code: errcode.StoreLookupError,
		Msg:  "Cannot read variations of kind <em>%s</em>",
		Vars: []any{kind},
		Err:  fmt.Errorf("iostore: lookup (%s): %w", kind, err),
	}
}

// UnknownVariationError happens when a variation id resolves to no row.
func UnknownVariationError(kind param.LocationKind, id int64) error {
	return &gn.Error{
		Code: errcode.StoreLookupError,
		Msg:  "No variation <em>%d</em> for kind <em>%s</em>",
		Vars: []any{id, kind},
		Err:  fmt.Errorf("iostore: no variation %d (%s)", id, kind),
	}
}
