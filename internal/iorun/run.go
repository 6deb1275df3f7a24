package iorun

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/google/uuid"
	"github.com/vtrials/vtdb/pkg/config"
	"github.com/vtrials/vtdb/pkg/param"
	"github.com/vtrials/vtdb/pkg/vtdb"
	"golang.org/x/sync/errgroup"
)

// Run dispatches tasks in the configured mode. Worker errors are
// recorded per task; one bad simulation never blocks the rest.
func (s *scheduler) Run(
	ctx context.Context,
	tasks []vtdb.Task,
) (vtdb.Report, error) {
	if len(tasks) == 0 {
		return vtdb.Report{}, nil
	}
	if s.cfg.Run.Mode == "hpc" && s.queue == nil {
		return vtdb.Report{}, ModeError(s.cfg.Run.Mode)
	}

	var rep vtdb.Report
	var mu sync.Mutex

	bar := pb.StartNew(len(tasks))
	defer bar.Finish()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.JobsNumber)

	for _, task := range tasks {
		g.Go(func() error {
			outcome := s.runOne(gctx, task)
			mu.Lock()
			switch outcome.kind {
			case outcomeCompleted:
				rep.Scheduled++
				rep.Completed++
			case outcomeFailed:
				rep.Scheduled++
				rep.Failed++
				rep.Failures = append(rep.Failures, vtdb.Failure{
					SimulationID: task.SimulationID,
					LogPath:      outcome.logPath,
					Reason:       outcome.reason,
				})
			case outcomeReused:
				rep.Reused++
			case outcomeSubmitted:
				rep.Scheduled++
			}
			mu.Unlock()
			bar.Increment()
			return nil
		})
	}
	g.Wait()

	slog.Info("Run finished",
		"scheduled", rep.Scheduled, "completed", rep.Completed,
		"failed", rep.Failed, "reused", rep.Reused)
	return rep, nil
}

type outcomeKind int

const (
	outcomeSkipped outcomeKind = iota
	outcomeCompleted
	outcomeFailed
	outcomeReused
	outcomeSubmitted
)

type outcome struct {
	kind    outcomeKind
	logPath string
	reason  string
}

func failed(logPath, reason string) outcome {
	return outcome{kind: outcomeFailed, logPath: logPath, reason: reason}
}

// runOne drives one simulation through its full lifecycle: claim,
// materialize, build, execute, verify the marker, prune.
func (s *scheduler) runOne(ctx context.Context, task vtdb.Task) outcome {
	id := task.SimulationID
	outDir := config.SimulationDir(s.cfg.DataDir, id)

	// A marker on disk proves a completed run; never execute it again.
	if s.markerExists(id) {
		if _, err := s.transition(ctx, id,
			vtdb.NotStarted, vtdb.Completed, ""); err != nil {
			slog.Warn("Cannot record reused simulation", "id", id, "error", err)
		}
		return outcome{kind: outcomeReused}
	}

	token := uuid.NewString()
	claimed, err := s.transition(ctx, id, vtdb.NotStarted, vtdb.Queued, token)
	if err != nil {
		return failed("", err.Error())
	}
	if !claimed {
		// Queued leftovers from an interrupted run are claimable too.
		claimed, err = s.transition(ctx, id, vtdb.Queued, vtdb.Queued, token)
		if err != nil {
			return failed("", err.Error())
		}
		if !claimed {
			return outcome{kind: outcomeSkipped}
		}
	}

	exe, err := s.prepare(ctx, task, outDir)
	if err != nil {
		s.markFailed(ctx, id, token)
		return failed("", err.Error())
	}

	if s.cfg.Run.Mode == "hpc" {
		return s.runBatch(ctx, task, token, exe, outDir)
	}
	return s.runLocal(ctx, task, token, exe, outDir)
}

// prepare materializes the simulation's inputs into its output
// directory and returns the executable to run.
func (s *scheduler) prepare(
	ctx context.Context,
	task vtdb.Task,
	outDir string,
) (string, error) {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return "", ConfigError(task.SimulationID, err)
	}
	if err := s.materialize(ctx, task, outDir); err != nil {
		return "", err
	}

	codeID, ok := task.Locations[param.CustomCode]
	if !ok {
		return "", ConfigError(task.SimulationID, errNoCustomCode)
	}
	return s.compiler.Build(ctx, codeID, s.cfg.Build.MacroFlags)
}

func (s *scheduler) runLocal(
	ctx context.Context,
	task vtdb.Task,
	token, exe, outDir string,
) outcome {
	id := task.SimulationID

	running, err := s.transition(ctx, id, vtdb.Queued, vtdb.Running, token)
	if err != nil {
		return failed("", err.Error())
	}
	if !running {
		return outcome{kind: outcomeSkipped}
	}

	logPath := filepath.Join(outDir, "run.log")
	logFile, err := os.Create(logPath)
	if err != nil {
		s.markFailed(ctx, id, token)
		return failed("", err.Error())
	}
	defer logFile.Close()

	start := time.Now()
	cmd := exec.CommandContext(ctx, exe)
	cmd.Dir = outDir
	cmd.Stdout = logFile
	cmd.Stderr = logFile
	runErr := cmd.Run()

	// Completion needs both a zero exit and the marker on disk.
	if runErr != nil {
		s.markFailed(ctx, id, token)
		return failed(logPath, runErr.Error())
	}
	if !s.markerExists(id) {
		s.markFailed(ctx, id, token)
		return failed(logPath, "completion marker missing")
	}

	if _, err = s.transition(ctx, id, vtdb.Running, vtdb.Completed, token); err != nil {
		return failed(logPath, err.Error())
	}
	slog.Debug("Simulation completed",
		"id", id, "duration", time.Since(start).Round(time.Second))

	if err = s.prune(outDir); err != nil {
		slog.Warn("Prune failed", "id", id, "error", err)
	}
	return outcome{kind: outcomeCompleted}
}

func (s *scheduler) runBatch(
	ctx context.Context,
	task vtdb.Task,
	token, exe, outDir string,
) outcome {
	id := task.SimulationID

	command := []string{"cd", outDir, "&&", exe}
	handle, err := s.queue.Submit(ctx, command,
		fmt.Sprintf("vtdb_sim_%d", id))
	if err != nil {
		s.markFailed(ctx, id, token)
		return failed("", err.Error())
	}
	slog.Info("Submitted batch job", "id", id, "job", handle)

	// Reconcile reads the recorded handle to tell a still-running job
	// from a dead one before requeueing the row.
	jobPath := filepath.Join(outDir, jobFile)
	if err = os.WriteFile(jobPath, []byte(handle), 0644); err != nil {
		slog.Warn("Cannot record batch job handle",
			"id", id, "job", handle, "error", err)
	}

	if !s.cfg.Run.Wait {
		return outcome{kind: outcomeSubmitted}
	}

	if _, err = s.transition(ctx, id, vtdb.Queued, vtdb.Running, token); err != nil {
		return failed("", err.Error())
	}
	if err = s.queue.Wait(ctx, handle); err != nil {
		s.markFailed(ctx, id, token)
		return failed("", err.Error())
	}

	if !s.markerExists(id) {
		s.markFailed(ctx, id, token)
		return failed("", "completion marker missing")
	}
	if _, err = s.transition(ctx, id, vtdb.Running, vtdb.Completed, token); err != nil {
		return failed("", err.Error())
	}
	if err = s.prune(outDir); err != nil {
		slog.Warn("Prune failed", "id", id, "error", err)
	}
	return outcome{kind: outcomeCompleted}
}

func (s *scheduler) markFailed(ctx context.Context, id int64, token string) {
	for _, from := range []vtdb.Status{vtdb.Running, vtdb.Queued} {
		ok, err := s.transition(ctx, id, from, vtdb.Failed, token)
		if err != nil {
			slog.Error("Cannot mark simulation failed", "id", id, "error", err)
			return
		}
		if ok {
			return
		}
	}
}
