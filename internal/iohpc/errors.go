package iohpc

import (
	"errors"
	"fmt"

	"github.com/gnames/gn"
	"github.com/vtrials/vtdb/pkg/errcode"
	"github.com/vtrials/vtdb/pkg/vtdb"
)

var errEmptyJobID = errors.New("sbatch returned no job id")

// SubmitError happens when a job cannot be submitted to the queue.
func SubmitError(jobName, output string, err error) error {
	return &gn.Error{
		Code: errcode.HPCSubmitError,
		Msg:  "Cannot submit batch job <em>%s</em>: %s",
		Vars: []any{jobName, output},
		Err:  fmt.Errorf("iohpc: submit %s: %w", jobName, err),
	}
}

// WaitError happens when waiting for a submitted job is interrupted.
func WaitError(h vtdb.JobHandle, err error) error {
	return &gn.Error{
		Code: errcode.HPCWaitError,
		Msg:  "Interrupted while waiting for job <em>%s</em>",
		Vars: []any{h},
		Err:  fmt.Errorf("iohpc: wait %s: %w", h, err),
	}
}
