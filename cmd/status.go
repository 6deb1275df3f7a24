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
	"github.com/vtrials/vtdb/pkg/vtdb"
)

func getStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Summarize the campaign",
		Long: `Print the campaign's registered inputs, samplings and the
simulation counts per lifecycle status.

Examples:
  vtdb status
  vtdb status --data ./campaign`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus()
		},
	}
}

func runStatus() error {
	ctx := context.Background()

	svc, err := connect(ctx)
	if err != nil {
		gn.PrintErrorMessage(err)
		return err
	}
	defer svc.operator.Close()

	pool := svc.operator.DB()

	counts := map[string]int64{}
	rows, err := pool.QueryContext(ctx,
		`SELECT status, count(*) FROM simulations GROUP BY status`)
	if err != nil {
		gn.PrintErrorMessage(err)
		return err
	}
	defer rows.Close()
	var total int64
	for rows.Next() {
		var status string
		var n int64
		if err = rows.Scan(&status, &n); err != nil {
			gn.PrintErrorMessage(err)
			return err
		}
		counts[status] = n
		total += n
	}
	if err = rows.Err(); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	var locations, monads, samplings, trials int64
	for _, c := range []struct {
		table string
		dst   *int64
	}{
		{"locations", &locations},
		{"monads", &monads},
		{"samplings", &samplings},
		{"trials", &trials},
	} {
		q := `SELECT count(*) FROM ` + c.table
		if err = pool.QueryRowContext(ctx, q).Scan(c.dst); err != nil {
			gn.PrintErrorMessage(err)
			return err
		}
	}

	gn.Info("Campaign at <em>%s</em>", cfg.DataDir)
	gn.Info("  locations:   %d", locations)
	gn.Info("  samplings:   %d (in %d trials)", samplings, trials)
	gn.Info("  monads:      %d", monads)
	gn.Info("  simulations: %d", total)
	for _, s := range []vtdb.Status{
		vtdb.NotStarted, vtdb.Queued, vtdb.Running,
		vtdb.Completed, vtdb.Failed,
	} {
		if n := counts[string(s)]; n > 0 {
			gn.Info("    %-12s %d", s, n)
		}
	}
	return nil
}
