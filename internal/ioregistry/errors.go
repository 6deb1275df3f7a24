package ioregistry

import (
	"fmt"

	"github.com/gnames/gn"
	"github.com/vtrials/vtdb/pkg/errcode"
	"github.com/vtrials/vtdb/pkg/param"
)

// KindError happens when an unknown location kind reaches the registry.
func KindError(kind param.LocationKind) error {
	return &gn.Error{
		Code: errcode.RegistryKindError,
		Msg:  "Unknown location kind <em>%s</em>",
		Vars: []any{kind},
		Err:  fmt.Errorf("ioregistry: unknown kind %q", kind),
	}
}

// FolderMissingError happens when the folder to register does not exist
// under the kind's inputs directory.
func FolderMissingError(
	kind param.LocationKind, folder, dir string,
) error {
	return &gn.Error{
		Code: errcode.RegistryFolderMissingError,
		Msg:  "Input folder <em>%s</em> of kind <em>%s</em> not found at %s",
		Vars: []any{folder, kind, dir},
		Err:  fmt.Errorf("ioregistry: folder %q (%s) missing at %s",
			folder, kind, dir),
	}
}

// FolderInvalidError happens when a folder lacks a file its kind
// requires.
func FolderInvalidError(
	kind param.LocationKind, folder, missing string,
) error {
	return &gn.Error{
		Code: errcode.RegistryFolderInvalidError,
		Msg:  "Input folder <em>%s</em> of kind <em>%s</em> lacks required file <em>%s</em>",
		Vars: []any{folder, kind, missing},
		Err: fmt.Errorf("ioregistry: folder %q (%s) lacks %q",
			folder, kind, missing),
	}
}

// InsertError happens when the registry row cannot be inserted.
func InsertError(kind param.LocationKind, folder string, err error) error {
	return &gn.Error{
		Code: errcode.RegistryInsertError,
		Msg:  "Cannot register folder <em>%s</em> of kind <em>%s</em>",
		Vars: []any{folder, kind},
		Err:  fmt.Errorf("ioregistry: insert %q (%s): %w", folder, kind, err),
	}
}

// LookupError happens when registry rows cannot be read.
func LookupError(kind param.LocationKind, folder string, err error) error {
	return &gn.Error{
		Code: errcode.RegistryLookupError,
		Msg:  "Cannot look up locations of kind <em>%s</em>",
		Vars: []any{kind},
		Err:  fmt.Errorf("ioregistry: lookup %q (%s): %w", folder, kind, err),
	}
}

// NotRegisteredError happens on a lookup of a folder that was never
// registered.
func NotRegisteredError(kind param.LocationKind, folder string) error {
	return &gn.Error{
		Code: errcode.RegistryLookupError,
		Msg:  "Folder <em>%s</em> of kind <em>%s</em> is not registered",
		Vars: []any{folder, kind},
		Err:  fmt.Errorf("ioregistry: %q (%s) not registered", folder, kind),
	}
}

// UnknownIDError happens when a location id resolves to no row.
func UnknownIDError(kind param.LocationKind, id int64) error {
	return &gn.Error{
		Code: errcode.RegistryLookupError,
		Msg:  "No location of kind <em>%s</em> with id <em>%d</em>",
		Vars: []any{kind, id},
		Err:  fmt.Errorf("ioregistry: no %s location %d", kind, id),
	}
}
