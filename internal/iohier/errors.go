package iohier

import (
	"fmt"

	"github.com/gnames/gn"
	"github.com/vtrials/vtdb/pkg/errcode"
)

// InsertError happens when a hierarchy row cannot be created.
func InsertError(what string, err error) error {
	return &gn.Error{
		Code: errcode.HierarchyInsertError,
		Msg:  "Cannot create %s",
		Vars: []any{what},
		Err:  fmt.Errorf("iohier: insert %s: %w", what, err),
	}
}

// LookupError happens when hierarchy rows cannot be read.
func LookupError(what string, err error) error {
	return &gn.Error{
		Code: errcode.HierarchyLookupError,
		Msg:  "Cannot read %s",
		Vars: []any{what},
		Err:  fmt.Errorf("iohier: lookup %s: %w", what, err),
	}
}

// NotFoundError happens when an id resolves to no hierarchy row.
func NotFoundError(what string, id int64) error {
	return &gn.Error{
		Code: errcode.HierarchyLookupError,
		Msg:  "No %s with id <em>%d</em>",
		Vars: []any{what, id},
		Err:  fmt.Errorf("iohier: no %s %d", what, id),
	}
}

// DeleteError happens when a simulation cannot be removed.
func DeleteError(id int64, err error) error {
	return &gn.Error{
		Code: errcode.HierarchyDeleteError,
		Msg:  "Cannot delete simulation <em>%d</em>",
		Vars: []any{id},
		Err:  fmt.Errorf("iohier: delete simulation %d: %w", id, err),
	}
}

// LedgerError happens when a replicate-group ledger cannot be exported.
func LedgerError(monadID int64, err error) error {
	return &gn.Error{
		Code: errcode.HierarchyLedgerError,
		Msg:  "Cannot export ledger of replicate group <em>%d</em>",
		Vars: []any{monadID},
		Err:  fmt.Errorf("iohier: export ledger %d: %w", monadID, err),
	}
}
