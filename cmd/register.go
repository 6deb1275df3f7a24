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
	"strings"

	"github.com/gnames/gn"
	"github.com/spf13/cobra"
	"github.com/vtrials/vtdb/pkg/param"
)

func getRegisterCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "register <kind> <folder>",
		Short: "Register an input folder under a location kind",
		Long: `Register a named input folder, assigning it a stable location id.

The folder must already exist under inputs/<kind>/ in the data
directory and contain the files its kind requires. Registration is
idempotent: registering the same folder again returns its existing id.

Kinds: ` + kindList() + `

Examples:
  vtdb register config default
  vtdb register custom_code immune_v2`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRegister(param.LocationKind(args[0]), args[1])
		},
	}
}

func runRegister(kind param.LocationKind, folder string) error {
	ctx := context.Background()

	svc, err := connect(ctx)
	if err != nil {
		gn.PrintErrorMessage(err)
		return err
	}
	defer svc.operator.Close()

	id, err := svc.registry.Register(ctx, kind, folder)
	if err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	gn.Info("Registered <em>%s</em> of kind <em>%s</em> as location %d",
		folder, kind, id)
	return nil
}

func kindList() string {
	var ss []string
	for _, k := range param.AllKinds() {
		ss = append(ss, string(k))
	}
	return strings.Join(ss, ", ")
}
