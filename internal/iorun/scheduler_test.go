package iorun_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vtrials/vtdb/internal/iocompile"
	"github.com/vtrials/vtdb/internal/iohier"
	"github.com/vtrials/vtdb/internal/ioregistry"
	"github.com/vtrials/vtdb/internal/iorun"
	"github.com/vtrials/vtdb/internal/iostore"
	"github.com/vtrials/vtdb/internal/iotesting"
	"github.com/vtrials/vtdb/internal/ioxml"
	"github.com/vtrials/vtdb/pkg/config"
	"github.com/vtrials/vtdb/pkg/db"
	"github.com/vtrials/vtdb/pkg/param"
	"github.com/vtrials/vtdb/pkg/vtdb"
)

const runConfigXML = `<PhysiCell_settings>
  <overall>
    <max_time units="min">720</max_time>
  </overall>
</PhysiCell_settings>
`

// The stub simulator writes the completion marker and exits.
const goodSimulator = "#!/bin/sh\necho '<final/>' > final.xml\n"

// The broken simulator exits without a marker.
const badSimulator = "#!/bin/sh\nexit 1\n"

// The lying simulator writes the marker but exits with an error.
const lyingSimulator = "#!/bin/sh\necho '<final/>' > final.xml\nexit 1\n"

const stubMakefile = "project:\n\tcp main.cpp project\n\tchmod +x project\n"

type fixture struct {
	ctx       context.Context
	dataDir   string
	op        db.Operator
	cfg       *config.Config
	store     vtdb.VariationStore
	hier      vtdb.Hierarchy
	scheduler vtdb.Scheduler
	maxTime   param.Def
}

func setupRun(t *testing.T, simulator string) *fixture {
	t.Helper()
	ctx := context.Background()
	dataDir := iotesting.SetupDataDir(t)
	op := iotesting.SetupDB(t, dataDir)

	iotesting.WriteInputFolder(t, dataDir, param.Config, "base",
		map[string]string{"config.xml": runConfigXML})
	iotesting.WriteInputFolder(t, dataDir, param.CustomCode, "stub",
		map[string]string{"main.cpp": simulator, "Makefile": stubMakefile})

	reg := ioregistry.NewRegistry(op, dataDir)
	_, err := reg.Register(ctx, param.Config, "base")
	require.NoError(t, err)
	_, err = reg.Register(ctx, param.CustomCode, "stub")
	require.NoError(t, err)

	cfg := config.New()
	cfg.DataDir = dataDir
	cfg.JobsNumber = 2
	cfg.Build.MakeJobs = 1

	store := iostore.NewStore(op)
	hier := iohier.NewHierarchy(op, dataDir)
	comp := iocompile.NewCompiler(op, reg, dataDir, cfg.Build)
	sched := iorun.NewScheduler(op, cfg, store, reg, comp, nil)

	maxTime := param.Def{
		Kind: param.Config,
		Path: "overall/max_time",
		Type: param.TypeInt,
		Base: param.Int(720),
	}
	require.NoError(t,
		store.EnsureColumns(ctx, param.Config, []param.Def{maxTime}))

	return &fixture{
		ctx: ctx, dataDir: dataDir, op: op, cfg: cfg,
		store: store, hier: hier, scheduler: sched, maxTime: maxTime,
	}
}

// makeSampling creates a two-point sampling with two replicates each.
func makeSampling(t *testing.T, f *fixture) vtdb.Sampling {
	t.Helper()
	var ids []param.Identity
	for _, v := range []int64{360, 1440} {
		vid, _, err := f.store.InsertOrGet(f.ctx, param.Config,
			[]param.VectorEntry{{Def: f.maxTime, Value: param.Int(v)}})
		require.NoError(t, err)
		ids = append(ids, param.Identity{param.Config: vid})
	}

	locs := param.LocationSet{param.Config: 1, param.CustomCode: 2}
	s, err := f.hier.MakeSampling(
		f.ctx, locs, ids, "grid", "{}", 2, true)
	require.NoError(t, err)
	return s
}

func TestRunSampling(t *testing.T) {
	f := setupRun(t, goodSimulator)
	s := makeSampling(t, f)

	target := vtdb.Target{Level: vtdb.LevelSampling, ID: s.ID}
	tasks, err := f.scheduler.CollectTasks(f.ctx, target)
	require.NoError(t, err)
	require.Len(t, tasks, 4, "two points, two replicates each")

	rep, err := f.scheduler.Run(f.ctx, tasks)
	require.NoError(t, err)
	assert.Equal(t, 4, rep.Scheduled)
	assert.Equal(t, 4, rep.Completed)
	assert.Equal(t, 0, rep.Failed)

	// Every output directory holds the marker and the varied config.
	for _, task := range tasks {
		outDir := config.SimulationDir(f.dataDir, task.SimulationID)
		_, err = os.Stat(filepath.Join(outDir, "final.xml"))
		assert.NoError(t, err)

		tree, err := ioxml.Load(filepath.Join(outDir, "config", "config.xml"))
		require.NoError(t, err)
		v, err := tree.Value("overall/max_time")
		require.NoError(t, err)
		assert.Contains(t, []string{"360", "1440"}, v)

		sim, err := f.hier.GetSimulation(f.ctx, task.SimulationID)
		require.NoError(t, err)
		assert.Equal(t, vtdb.Completed, sim.Status)
	}

	// A second pass finds nothing runnable.
	tasks, err = f.scheduler.CollectTasks(f.ctx, target)
	require.NoError(t, err)
	assert.Empty(t, tasks, "completed simulations are never rescheduled")
}

func TestRunFailures(t *testing.T) {
	f := setupRun(t, badSimulator)
	s := makeSampling(t, f)

	target := vtdb.Target{Level: vtdb.LevelSampling, ID: s.ID}
	tasks, err := f.scheduler.CollectTasks(f.ctx, target)
	require.NoError(t, err)
	require.Len(t, tasks, 4)

	rep, err := f.scheduler.Run(f.ctx, tasks)
	require.NoError(t, err, "task failures never fail the run call")
	assert.Equal(t, 4, rep.Failed)
	assert.Len(t, rep.Failures, 4)

	// Failed simulations are not auto-retried.
	tasks, err = f.scheduler.CollectTasks(f.ctx, target)
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestRunEmptyTaskList(t *testing.T) {
	f := setupRun(t, goodSimulator)
	rep, err := f.scheduler.Run(f.ctx, nil)
	require.NoError(t, err)
	assert.Zero(t, rep.Scheduled)
}

func TestReconcile(t *testing.T) {
	f := setupRun(t, goodSimulator)
	locs := param.LocationSet{param.Config: 1, param.CustomCode: 2}

	simA, _, err := f.hier.MakeSimulation(f.ctx, locs,
		param.Identity{param.Config: 0})
	require.NoError(t, err)
	simB, _, err := f.hier.MakeMonad(f.ctx, locs,
		param.Identity{param.Config: 0}, 2, false)
	require.NoError(t, err)
	orphanB := simB.Members[len(simB.Members)-1]

	// Simulate a crashed process: one running row with its marker on
	// disk, one without.
	pool := f.op.DB()
	_, err = pool.Exec(
		`UPDATE simulations SET status = 'running', claim_token = 'dead'
  WHERE id IN (?, ?)`, simA.ID, orphanB)
	require.NoError(t, err)

	outDir := config.SimulationDir(f.dataDir, simA.ID)
	require.NoError(t, os.MkdirAll(outDir, 0755))
	require.NoError(t, os.WriteFile(
		filepath.Join(outDir, "final.xml"), []byte("<final/>"), 0644))

	require.NoError(t, f.scheduler.Reconcile(f.ctx))

	got, err := f.hier.GetSimulation(f.ctx, simA.ID)
	require.NoError(t, err)
	assert.Equal(t, vtdb.Completed, got.Status,
		"marker on disk proves completion")

	got, err = f.hier.GetSimulation(f.ctx, orphanB)
	require.NoError(t, err)
	assert.Equal(t, vtdb.NotStarted, got.Status,
		"no marker returns the row to the pool")
}

func TestCollectTasksDeduplicates(t *testing.T) {
	f := setupRun(t, goodSimulator)
	s := makeSampling(t, f)

	tr, err := f.hier.MakeTrial(f.ctx, []int64{s.ID, s.ID})
	require.NoError(t, err)

	// The same sampling referenced twice still yields each simulation
	// once.
	tasks, err := f.scheduler.CollectTasks(f.ctx,
		vtdb.Target{Level: vtdb.LevelTrial, ID: tr.ID})
	require.NoError(t, err)
	assert.Len(t, tasks, 4)
}

func TestRunNonZeroExitWithMarker(t *testing.T) {
	f := setupRun(t, lyingSimulator)
	s := makeSampling(t, f)

	target := vtdb.Target{Level: vtdb.LevelSampling, ID: s.ID}
	tasks, err := f.scheduler.CollectTasks(f.ctx, target)
	require.NoError(t, err)
	require.Len(t, tasks, 4)

	rep, err := f.scheduler.Run(f.ctx, tasks)
	require.NoError(t, err)
	assert.Equal(t, 4, rep.Failed,
		"a marker from a non-zero exit is not a completion")
	assert.Zero(t, rep.Completed)

	for _, task := range tasks {
		sim, err := f.hier.GetSimulation(f.ctx, task.SimulationID)
		require.NoError(t, err)
		assert.Equal(t, vtdb.Failed, sim.Status)
	}

	// Failed rows stay failed on the next collection.
	tasks, err = f.scheduler.CollectTasks(f.ctx, target)
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

// stubQueue stands in for a batch scheduler in tests.
type stubQueue struct {
	active bool
}

func (q *stubQueue) Submit(
	ctx context.Context, command []string, jobName string,
) (vtdb.JobHandle, error) {
	return "101", nil
}

func (q *stubQueue) Wait(context.Context, vtdb.JobHandle) error {
	return nil
}

func (q *stubQueue) Active(
	context.Context, vtdb.JobHandle,
) (bool, error) {
	return q.active, nil
}

func (f *fixture) hpcScheduler(q vtdb.BatchQueue) vtdb.Scheduler {
	f.cfg.Run.Mode = "hpc"
	reg := ioregistry.NewRegistry(f.op, f.dataDir)
	comp := iocompile.NewCompiler(f.op, reg, f.dataDir, f.cfg.Build)
	return iorun.NewScheduler(f.op, f.cfg, f.store, reg, comp, q)
}

func TestRunBatchRecordsJobHandle(t *testing.T) {
	f := setupRun(t, goodSimulator)
	s := makeSampling(t, f)
	sched := f.hpcScheduler(&stubQueue{active: true})

	tasks, err := sched.CollectTasks(f.ctx,
		vtdb.Target{Level: vtdb.LevelSampling, ID: s.ID})
	require.NoError(t, err)
	require.Len(t, tasks, 4)

	rep, err := sched.Run(f.ctx, tasks)
	require.NoError(t, err)
	assert.Equal(t, 4, rep.Scheduled)
	assert.Zero(t, rep.Completed, "no-wait submission reports nothing done")

	for _, task := range tasks {
		sim, err := f.hier.GetSimulation(f.ctx, task.SimulationID)
		require.NoError(t, err)
		assert.Equal(t, vtdb.Queued, sim.Status)

		bs, err := os.ReadFile(filepath.Join(
			config.SimulationDir(f.dataDir, task.SimulationID), "job_id"))
		require.NoError(t, err)
		assert.Equal(t, "101", string(bs))
	}
}

func TestReconcileLeavesLiveBatchJobs(t *testing.T) {
	f := setupRun(t, goodSimulator)
	queue := &stubQueue{active: true}
	sched := f.hpcScheduler(queue)

	locs := param.LocationSet{param.Config: 1, param.CustomCode: 2}
	sim, _, err := f.hier.MakeSimulation(f.ctx, locs,
		param.Identity{param.Config: 0})
	require.NoError(t, err)

	// A simulation submitted by a dead process: queued row, recorded
	// job handle, no marker yet.
	pool := f.op.DB()
	_, err = pool.Exec(
		`UPDATE simulations SET status = 'queued', claim_token = 'dead'
  WHERE id = ?`, sim.ID)
	require.NoError(t, err)

	outDir := config.SimulationDir(f.dataDir, sim.ID)
	require.NoError(t, os.MkdirAll(outDir, 0755))
	require.NoError(t, os.WriteFile(
		filepath.Join(outDir, "job_id"), []byte("101\n"), 0644))

	require.NoError(t, sched.Reconcile(f.ctx))
	got, err := f.hier.GetSimulation(f.ctx, sim.ID)
	require.NoError(t, err)
	assert.Equal(t, vtdb.Queued, got.Status,
		"a job still in the queue owns its output directory")

	// Once the job leaves the queue the row returns to the pool.
	queue.active = false
	require.NoError(t, sched.Reconcile(f.ctx))
	got, err = f.hier.GetSimulation(f.ctx, sim.ID)
	require.NoError(t, err)
	assert.Equal(t, vtdb.NotStarted, got.Status)
}
