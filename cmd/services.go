package cmd

import (
	"context"

	"github.com/vtrials/vtdb/internal/iocompile"
	"github.com/vtrials/vtdb/internal/iodb"
	"github.com/vtrials/vtdb/internal/iohier"
	"github.com/vtrials/vtdb/internal/iohpc"
	"github.com/vtrials/vtdb/internal/ioregistry"
	"github.com/vtrials/vtdb/internal/iorun"
	"github.com/vtrials/vtdb/internal/iostore"
	"github.com/vtrials/vtdb/pkg/db"
	"github.com/vtrials/vtdb/pkg/vtdb"
)

// services bundles the connected collaborators a command works with.
type services struct {
	operator  db.Operator
	registry  vtdb.Registry
	store     vtdb.VariationStore
	hierarchy vtdb.Hierarchy
	compiler  vtdb.Compiler
	scheduler vtdb.Scheduler
}

// connect opens the campaign database and wires the service graph.
// The caller owns the returned operator and must Close it.
func connect(ctx context.Context) (*services, error) {
	op := iodb.NewOperator()
	if err := op.Connect(ctx, cfg.DataDir); err != nil {
		return nil, err
	}

	reg := ioregistry.NewRegistry(op, cfg.DataDir)
	store := iostore.NewStore(op)
	hier := iohier.NewHierarchy(op, cfg.DataDir)
	comp := iocompile.NewCompiler(op, reg, cfg.DataDir, cfg.Build)

	var queue vtdb.BatchQueue
	if cfg.Run.Mode == "hpc" {
		queue = iohpc.NewQueue(cfg.HPC)
	}
	sched := iorun.NewScheduler(op, cfg, store, reg, comp, queue)

	return &services{
		operator:  op,
		registry:  reg,
		store:     store,
		hierarchy: hier,
		compiler:  comp,
		scheduler: sched,
	}, nil
}
