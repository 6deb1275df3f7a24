/*
Copyright © 2025 Dmitry Mozzherin <dmozzherin@gmail.com>

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/
package cmd

import (
	"context"
	"strconv"

	"github.com/gnames/gn"
	"github.com/spf13/cobra"
	"github.com/vtrials/vtdb/pkg/vtdb"
)

func getRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run <level> <id>",
		Short: "Execute the pending simulations of a hierarchy level",
		Long: `Flatten one piece of the run hierarchy and execute what is pending.

Level is one of simulation, monad, sampling, trial. Completed and
failed simulations are skipped; a simulation whose completion marker
already exists on disk is recorded as completed without running.
Dispatch mode (local subprocesses or batch jobs) comes from run.mode
in config.yaml.

Examples:
  vtdb run sampling 3
  vtdb run simulation 42
  vtdb run trial 1`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				gn.Warn("Target id must be a number, got %s", args[1])
				return err
			}
			return runRun(vtdb.Level(args[0]), id)
		},
	}
}

func runRun(level vtdb.Level, id int64) error {
	ctx := context.Background()

	svc, err := connect(ctx)
	if err != nil {
		gn.PrintErrorMessage(err)
		return err
	}
	defer svc.operator.Close()

	if err = svc.scheduler.Reconcile(ctx); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	tasks, err := svc.scheduler.CollectTasks(ctx,
		vtdb.Target{Level: level, ID: id})
	if err != nil {
		gn.PrintErrorMessage(err)
		return err
	}
	if len(tasks) == 0 {
		gn.Info("Nothing to run for %s %d", level, id)
		return nil
	}
	gn.Info("Running %d simulations in <em>%s</em> mode",
		len(tasks), cfg.Run.Mode)

	report, err := svc.scheduler.Run(ctx, tasks)
	if err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	gn.Info("Scheduled %d, completed %d, failed %d, reused %d",
		report.Scheduled, report.Completed, report.Failed, report.Reused)
	for _, f := range report.Failures {
		gn.Warn("Simulation %d failed: %s (log: %s)",
			f.SimulationID, f.Reason, f.LogPath)
	}
	return nil
}
