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
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/gnames/gn"
	"github.com/spf13/cobra"
	"github.com/vtrials/vtdb/internal/iofs"
	"github.com/vtrials/vtdb/internal/ioschema"
	"github.com/vtrials/vtdb/pkg/config"
)

func getInitCmd() *cobra.Command {
	var force bool

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Create a campaign data directory and its database",
		Long: `Create the campaign layout inside the data directory.

This command:
  1. Creates the standard subdirectories (inputs, outputs, builds,
     ledgers, logs) and a default config.yaml
  2. Creates the fixed database tables using GORM AutoMigrate
  3. Seeds one variation table per variable location kind, each with
     its reserved base row

Use --force to drop an existing campaign database without confirmation.

Examples:
  vtdb init --data ./campaign
  vtdb init --data ./campaign --force`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(force)
		},
	}

	initCmd.Flags().BoolVarP(&force, "force", "f",
		false, "drop an existing campaign database without confirmation")

	return initCmd
}

func runInit(force bool) error {
	ctx := context.Background()

	if err := iofs.EnsureDirs(cfg.DataDir); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}
	if err := iofs.EnsureConfigFile(cfg.DataDir); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}
	gn.Info("Campaign directory ready at <em>%s</em>", cfg.DataDir)

	svc, err := connect(ctx)
	if err != nil {
		gn.PrintErrorMessage(err)
		return err
	}
	defer svc.operator.Close()

	hasTables, err := svc.operator.HasTables(ctx)
	if err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	if hasTables {
		if !force && !confirmDrop() {
			gn.Info("Aborted. No changes made.")
			return nil
		}
		gn.Info("Dropping existing campaign tables...")
		if err = svc.operator.DropAllTables(ctx); err != nil {
			gn.PrintErrorMessage(err)
			return err
		}
	}

	sm := ioschema.NewManager(svc.operator)
	if err = sm.Create(ctx); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	gn.Info("Campaign database created at <em>%s</em>",
		config.DBFilePath(cfg.DataDir))
	gn.Info("\nNext steps:")
	gn.Info("  - Put input folders under %s", config.InputsDir(cfg.DataDir))
	gn.Info("  - Run 'vtdb register <kind> <folder>' to register them")
	gn.Info("  - Run 'vtdb sweep <request.yaml>' to build a sampling")

	return nil
}

func confirmDrop() bool {
	gn.Warn("\nWarning: campaign database contains existing tables.")
	gn.Warn("Re-initializing will drop ALL existing tables and data.")
	fmt.Print("\nDo you want to continue? (yes/no): ")

	reader := bufio.NewReader(os.Stdin)
	response, err := reader.ReadString('\n')
	if err != nil {
		gn.Warn("Failed to read user input")
		return false
	}
	response = strings.TrimSpace(strings.ToLower(response))
	return response == "yes" || response == "y"
}
