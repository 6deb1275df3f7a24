package iocompile

import (
	"fmt"

	"github.com/gnames/gn"
	"github.com/vtrials/vtdb/pkg/errcode"
)

// StaleCheckError happens when the build memo cannot be read.
func StaleCheckError(key string, err error) error {
	return &gn.Error{
		Code: errcode.CompileStaleCheckError,
		Msg:  "Cannot check build <em>%s</em>",
		Vars: []any{key},
		Err:  fmt.Errorf("iocompile: stale check %s: %w", key, err),
	}
}

// BuildError happens when a build cannot be staged or recorded.
func BuildError(key string, err error) error {
	return &gn.Error{
		Code: errcode.CompileBuildError,
		Msg:  "Cannot build simulator for <em>%s</em>",
		Vars: []any{key},
		Err:  fmt.Errorf("iocompile: build %s: %w", key, err),
	}
}

// MakeError happens when make itself fails; the log file holds the
// compiler output.
func MakeError(key, logPath string, err error) error {
	return &gn.Error{
		Code: errcode.CompileBuildError,
		Msg:  "Compilation failed for <em>%s</em>, see <em>%s</em>",
		Vars: []any{key, logPath},
		Err:  fmt.Errorf("iocompile: make %s: %w", key, err),
	}
}
