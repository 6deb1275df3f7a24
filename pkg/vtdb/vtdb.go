// Package vtdb defines the domain interfaces of the virtual-trial
// database: location registry, content-addressed variation store,
// run hierarchy, execution scheduler and their collaborators.
// Implementations live in internal/io* packages.
package vtdb

import (
	"context"

	"github.com/vtrials/vtdb/pkg/param"
)

// Status is the lifecycle state of a simulation.
type Status string

const (
	NotStarted Status = "not_started"
	Queued     Status = "queued"
	Running    Status = "running"
	Completed  Status = "completed"
	Failed     Status = "failed"
)

// Runnable reports whether a simulation in this status can still be
// scheduled. Failed simulations are never auto-retried.
func (s Status) Runnable() bool {
	return s == NotStarted || s == Queued
}

// Simulation is one run of the simulator, 1:1 with one output directory.
type Simulation struct {
	ID        int64
	Locations param.LocationSet
	Identity  param.Identity
	Status    Status
}

// Monad is a replicate group of statistically identical simulations.
type Monad struct {
	ID        int64
	Locations param.LocationSet
	Identity  param.Identity
	Members   []int64
}

// Sampling is a parameter-grid: one monad per design point, in design
// order.
type Sampling struct {
	ID         int64
	Method     string
	DesignMeta string
	Monads     []int64
}

// Trial is a campaign of samplings.
type Trial struct {
	ID        int64
	Samplings []int64
}

// SchemaManager manages the fixed tables of the campaign database.
// It uses GORM AutoMigrate for both initial creation and migrations and
// is idempotent - safe to run multiple times.
type SchemaManager interface {
	// Create creates the fixed tables and seeds the base rows of every
	// variation table.
	Create(ctx context.Context) error

	// Migrate updates the fixed tables to the latest version.
	Migrate(ctx context.Context) error
}

// Registry maps named input folders to stable location ids, per kind.
type Registry interface {
	// Register looks up (kind, folderName), inserting on first
	// reference. It errors when the folder is missing on disk or lacks
	// the kind's required files. Idempotent and side-effect-free on
	// repeat calls.
	Register(ctx context.Context, kind param.LocationKind, folderName string) (int64, error)

	// Lookup returns the location id without registering, or an error
	// when the folder was never registered.
	Lookup(ctx context.Context, kind param.LocationKind, folderName string) (int64, error)

	// FolderName resolves a location id back to its folder name.
	FolderName(ctx context.Context, kind param.LocationKind, id int64) (string, error)
}

// VariationStore is the content-addressed parameter database: one table
// per variable location kind, one row per distinct parameter vector.
type VariationStore interface {
	// EnsureColumns adds a column for every definition whose path is
	// not yet a column of the kind's table, backfills all existing rows
	// (including the base row 0) with the declared base value, records
	// the addition in the migration log, and rebuilds the all-columns
	// unique index. Transactional: partial failure leaves the store in
	// its pre-call state.
	EnsureColumns(ctx context.Context, kind param.LocationKind, defs []param.Def) error

	// InsertOrGet inserts the vector, or returns the id of the existing
	// row holding exactly this vector. Safe under concurrent callers:
	// the insert uses the database's native conflict resolution, never
	// a lookup followed by an insert.
	InsertOrGet(ctx context.Context, kind param.LocationKind, vector []param.VectorEntry) (id int64, created bool, err error)

	// ValuesFor reads back typed values of one row, in the order of
	// defs. Used to materialize a run's configuration and to compile a
	// reference row into the defaults of a subsequent design.
	ValuesFor(ctx context.Context, kind param.LocationKind, variationID int64, defs []param.Def) ([]param.Value, error)

	// Columns lists the parameter paths currently backing the kind's
	// table, in column order.
	Columns(ctx context.Context, kind param.LocationKind) ([]string, error)
}

// Hierarchy builds and queries the four run levels with
// reuse-before-create semantics.
type Hierarchy interface {
	// MakeSimulation returns an existing simulation with these
	// locations and identity, or inserts a new one. The lookup and
	// insert happen in one transaction, so two concurrent identical
	// requests resolve to one row.
	MakeSimulation(ctx context.Context, locs param.LocationSet, id param.Identity) (Simulation, bool, error)

	// MakeMonad ensures a replicate group of at least n members exists
	// for the identity. With reuseExisting it creates only the
	// shortfall; existing members are never discarded.
	MakeMonad(ctx context.Context, locs param.LocationSet, id param.Identity, n int, reuseExisting bool) (Monad, int, error)

	// MakeSampling creates one monad per identity, preserving design
	// order, with n replicates each.
	MakeSampling(ctx context.Context, locs param.LocationSet, ids []param.Identity, method, designMeta string, n int, reuseExisting bool) (Sampling, error)

	// MakeTrial groups samplings into a campaign.
	MakeTrial(ctx context.Context, samplingIDs []int64) (Trial, error)

	// GetSimulation fetches one simulation row.
	GetSimulation(ctx context.Context, id int64) (Simulation, error)

	// GetSampling fetches a sampling with its monads in design order.
	GetSampling(ctx context.Context, id int64) (Sampling, error)

	// SamplingGroups returns the sampling's member simulation ids
	// grouped per design point, in design order. The groups feed the
	// sensitivity post-processor's response extraction.
	SamplingGroups(ctx context.Context, samplingID int64) ([][]int64, error)

	// DeleteSimulation removes the row, its group memberships, and the
	// output directory.
	DeleteSimulation(ctx context.Context, id int64) error

	// ExportLedger regenerates the flat per-monad membership file from
	// the store. The file is an export cache, never authoritative.
	ExportLedger(ctx context.Context, monadID int64) (string, error)
}

// Level addresses one tier of the run hierarchy.
type Level string

const (
	LevelSimulation Level = "simulation"
	LevelMonad      Level = "monad"
	LevelSampling   Level = "sampling"
	LevelTrial      Level = "trial"
)

// Target names the piece of hierarchy a scheduler call operates on.
type Target struct {
	Level Level
	ID    int64
}

// Task is one schedulable simulation.
type Task struct {
	SimulationID int64
	Locations    param.LocationSet
	Identity     param.Identity
}

// Failure describes one failed task in a run report.
type Failure struct {
	SimulationID int64
	LogPath      string
	Reason       string
}

// Report summarizes one scheduler invocation.
type Report struct {
	Scheduled int
	Completed int
	Failed    int
	Reused    int
	Failures  []Failure
}

// Scheduler collects pending work and dispatches it.
type Scheduler interface {
	// Reconcile repairs simulations left queued/running by a previous
	// process: rows whose completion marker exists become completed,
	// the rest return to not_started.
	Reconcile(ctx context.Context) error

	// CollectTasks flattens any hierarchy level into a deduplicated
	// list of runnable simulations.
	CollectTasks(ctx context.Context, target Target) ([]Task, error)

	// Run dispatches tasks in the configured mode ("local" or "hpc")
	// and reports the outcome. A single task's failure never blocks
	// independent tasks.
	Run(ctx context.Context, tasks []Task) (Report, error)
}

// Compiler produces the simulator executable for a custom-code location
// and a macro-flag set, memoized per combination.
type Compiler interface {
	// Stale reports whether a (custom code, macro set) combination
	// needs a build: no record, flags differ, or executable absent.
	Stale(ctx context.Context, codeLocationID int64, macros []string) (bool, error)

	// Build compiles (or reuses) the executable and returns its path.
	// At most one build runs at a time per combination; unrelated
	// combinations build in parallel.
	Build(ctx context.Context, codeLocationID int64, macros []string) (string, error)
}

// JobHandle identifies one submitted batch job.
type JobHandle string

// BatchQueue abstracts the HPC scheduler used by hpc dispatch mode.
type BatchQueue interface {
	// Submit wraps a command line in one batch job.
	Submit(ctx context.Context, command []string, jobName string) (JobHandle, error)

	// Wait blocks until the job leaves the queue.
	Wait(ctx context.Context, h JobHandle) error

	// Active reports whether the job is still in the queue. Reconcile
	// uses it to leave submitted simulations alone while their job is
	// in flight.
	Active(ctx context.Context, h JobHandle) (bool, error)
}
