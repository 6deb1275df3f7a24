package iorun

import (
	"errors"
	"fmt"

	"github.com/gnames/gn"
	"github.com/vtrials/vtdb/pkg/errcode"
)

var (
	errUnknownLevel    = errors.New("unknown hierarchy level")
	errUnknownCategory = errors.New("unknown prune category")
	errNoCustomCode    = errors.New("simulation has no custom code location")
)

// ReconcileError happens when orphaned simulations cannot be repaired.
func ReconcileError(err error) error {
	return &gn.Error{
		Code: errcode.RunReconcileError,
		Msg:  "Cannot reconcile interrupted simulations",
		Err:  fmt.Errorf("iorun: reconcile: %w", err),
	}
}

// CollectError happens when a hierarchy level cannot be flattened into
// tasks.
func CollectError(level string, err error) error {
	return &gn.Error{
		Code: errcode.RunClaimError,
		Msg:  "Cannot collect simulations of %s",
		Vars: []any{level},
		Err:  fmt.Errorf("iorun: collect %s: %w", level, err),
	}
}

// TransitionError happens when a guarded status update fails.
func TransitionError(id int64, from, to string, err error) error {
	return &gn.Error{
		Code: errcode.RunTransitionError,
		Msg:  "Cannot move simulation <em>%d</em> from %s to %s",
		Vars: []any{id, from, to},
		Err:  fmt.Errorf("iorun: %d %s -> %s: %w", id, from, to, err),
	}
}

// ConfigError happens when a simulation's inputs cannot be staged.
func ConfigError(id int64, err error) error {
	return &gn.Error{
		Code: errcode.RunConfigError,
		Msg:  "Cannot materialize inputs of simulation <em>%d</em>",
		Vars: []any{id},
		Err:  fmt.Errorf("iorun: materialize %d: %w", id, err),
	}
}

// ModeError happens when the configured dispatch mode cannot run.
func ModeError(mode string) error {
	return &gn.Error{
		Code: errcode.RunClaimError,
		Msg:  "Dispatch mode <em>%s</em> is not available",
		Vars: []any{mode},
		Err:  fmt.Errorf("iorun: mode %q unavailable", mode),
	}
}

// PruneError happens when output artifacts cannot be removed.
func PruneError(category string, err error) error {
	return &gn.Error{
		Code: errcode.RunPruneError,
		Msg:  "Cannot prune <em>%s</em> artifacts",
		Vars: []any{category},
		Err:  fmt.Errorf("iorun: prune %s: %w", category, err),
	}
}
