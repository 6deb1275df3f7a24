// Package main provides the vtdb CLI application.
// vtdb manages virtual-trial campaigns of an external simulator.
package main

import (
	"github.com/vtrials/vtdb/cmd"
)

func main() {
	cmd.Execute()
}
