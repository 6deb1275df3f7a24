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

	"github.com/gnames/gn"
	"github.com/spf13/cobra"
	"github.com/vtrials/vtdb/internal/iorun"
	"github.com/vtrials/vtdb/pkg/config"
)

func getPruneCmd() *cobra.Command {
	var categories []string

	pruneCmd := &cobra.Command{
		Use:   "prune",
		Short: "Remove heavy artifacts from completed output directories",
		Long: `Remove artifact categories from every completed simulation.

Categories: images (svg/png/jpg), snapshots (output xml/mat), logs.
Without --categories the run.prune_categories setting applies. The
completion marker is never removed, so pruned simulations stay
completed.

Examples:
  vtdb prune --categories images,snapshots
  vtdb prune`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPrune(categories)
		},
	}

	pruneCmd.Flags().StringSliceVarP(&categories, "categories", "c",
		nil, "artifact categories to remove")

	return pruneCmd
}

func runPrune(categories []string) error {
	ctx := context.Background()

	if len(categories) == 0 {
		categories = cfg.Run.PruneCategories
	}
	if len(categories) == 0 {
		gn.Info("No prune categories configured, nothing to do")
		return nil
	}

	svc, err := connect(ctx)
	if err != nil {
		gn.PrintErrorMessage(err)
		return err
	}
	defer svc.operator.Close()

	pool := svc.operator.DB()
	rows, err := pool.QueryContext(ctx,
		`SELECT id FROM simulations WHERE status = 'completed'`)
	if err != nil {
		gn.PrintErrorMessage(err)
		return err
	}
	defer rows.Close()

	var pruned int
	for rows.Next() {
		var id int64
		if err = rows.Scan(&id); err != nil {
			gn.PrintErrorMessage(err)
			return err
		}
		outDir := config.SimulationDir(cfg.DataDir, id)
		if err = iorun.PruneDir(outDir, cfg.Run.Marker, categories); err != nil {
			gn.PrintErrorMessage(err)
			return err
		}
		pruned++
	}
	if err = rows.Err(); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	gn.Info("Pruned %d completed simulations", pruned)
	return nil
}
