// Package iohpc implements the batch queue over Slurm. Jobs are
// submitted with sbatch --wrap; waiting polls squeue until the job
// leaves the queue.
package iohpc

import (
	"bytes"
	"context"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"github.com/vtrials/vtdb/pkg/config"
	"github.com/vtrials/vtdb/pkg/vtdb"
)

const pollInterval = 15 * time.Second

type slurmQueue struct {
	cfg config.HPCConfig
}

// NewQueue creates a BatchQueue backed by Slurm.
func NewQueue(cfg config.HPCConfig) vtdb.BatchQueue {
	return &slurmQueue{cfg: cfg}
}

func (q *slurmQueue) Submit(
	ctx context.Context,
	command []string,
	jobName string,
) (vtdb.JobHandle, error) {
	args := []string{
		"--parsable",
		"--job-name", jobName,
		"--time", q.cfg.TimeLimit,
		"--mem", q.cfg.Memory,
	}
	if q.cfg.Partition != "" {
		args = append(args, "--partition", q.cfg.Partition)
	}
	if q.cfg.Account != "" {
		args = append(args, "--account", q.cfg.Account)
	}
	args = append(args, "--wrap", strings.Join(command, " "))

	var out, errOut bytes.Buffer
	cmd := exec.CommandContext(ctx, "sbatch", args...)
	cmd.Stdout = &out
	cmd.Stderr = &errOut
	if err := cmd.Run(); err != nil {
		return "", SubmitError(jobName, errOut.String(), err)
	}

	// --parsable prints "jobid" or "jobid;cluster".
	id := strings.TrimSpace(out.String())
	if i := strings.IndexByte(id, ';'); i >= 0 {
		id = id[:i]
	}
	if id == "" {
		return "", SubmitError(jobName, out.String(), errEmptyJobID)
	}

	slog.Info("Submitted batch job", "name", jobName, "job_id", id)
	return vtdb.JobHandle(id), nil
}

// Wait blocks until the job leaves the queue, polling squeue. A job
// absent from squeue has finished; its outcome is judged by the
// completion marker, not by Slurm's exit state.
func (q *slurmQueue) Wait(ctx context.Context, h vtdb.JobHandle) error {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		inQueue, err := q.inQueue(ctx, h)
		if err != nil {
			return err
		}
		if !inQueue {
			return nil
		}

		select {
		case <-ctx.Done():
			return WaitError(h, ctx.Err())
		case <-ticker.C:
		}
	}
}

// Active reports whether the job is still in the queue.
func (q *slurmQueue) Active(
	ctx context.Context,
	h vtdb.JobHandle,
) (bool, error) {
	return q.inQueue(ctx, h)
}

func (q *slurmQueue) inQueue(
	ctx context.Context,
	h vtdb.JobHandle,
) (bool, error) {
	var out bytes.Buffer
	cmd := exec.CommandContext(ctx,
		"squeue", "--noheader", "--jobs", string(h), "--format", "%i")
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		// squeue errors on unknown (finished and purged) job ids.
		return false, nil
	}
	return strings.TrimSpace(out.String()) != "", nil
}
