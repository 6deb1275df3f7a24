package ioxml

import (
	"errors"
	"fmt"

	"github.com/gnames/gn"
	"github.com/vtrials/vtdb/pkg/errcode"
)

var errNoRoot = errors.New("document has no root element")

// ReadError happens when an XML document cannot be read or parsed.
func ReadError(path string, err error) error {
	return &gn.Error{
		Code: errcode.XMLReadError,
		Msg:  "Cannot read XML file <em>%s</em>",
		Vars: []any{path},
		Err:  fmt.Errorf("ioxml: read %s: %w", path, err),
	}
}

// PathError happens when a parameter path does not resolve to an
// element of the document.
func PathError(file, path, segment string) error {
	return &gn.Error{
		Code: errcode.XMLPathError,
		Msg:  "Path <em>%s</em> not found in <em>%s</em> (no match for <em>%s</em>)",
		Vars: []any{path, file, segment},
		Err: fmt.Errorf("ioxml: %s: no match for segment %q of %q",
			file, segment, path),
	}
}

// WriteError happens when a rewritten document cannot be saved.
func WriteError(path string, err error) error {
	return &gn.Error{
		Code: errcode.XMLWriteError,
		Msg:  "Cannot write XML file <em>%s</em>",
		Vars: []any{path},
		Err:  fmt.Errorf("ioxml: write %s: %w", path, err),
	}
}
