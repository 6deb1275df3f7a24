// Package iorun implements the execution scheduler: it flattens any
// level of the run hierarchy into pending simulations, claims them with
// guarded status transitions, and dispatches them to the local machine
// or to a batch queue. Claims survive crashes; Reconcile repairs rows a
// dead process left behind.
package iorun

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/vtrials/vtdb/pkg/config"
	"github.com/vtrials/vtdb/pkg/db"
	"github.com/vtrials/vtdb/pkg/param"
	"github.com/vtrials/vtdb/pkg/vtdb"
)

type scheduler struct {
	operator db.Operator
	cfg      *config.Config
	store    vtdb.VariationStore
	registry vtdb.Registry
	compiler vtdb.Compiler
	queue    vtdb.BatchQueue
}

// NewScheduler creates a Scheduler. The batch queue may be nil when the
// configured dispatch mode is local.
func NewScheduler(
	op db.Operator,
	cfg *config.Config,
	store vtdb.VariationStore,
	reg vtdb.Registry,
	comp vtdb.Compiler,
	queue vtdb.BatchQueue,
) vtdb.Scheduler {
	return &scheduler{
		operator: op,
		cfg:      cfg,
		store:    store,
		registry: reg,
		compiler: comp,
		queue:    queue,
	}
}

// Reconcile repairs simulations a previous process left queued or
// running. Rows whose completion marker exists become completed; the
// rest return to not_started so the next run can claim them again.
func (s *scheduler) Reconcile(ctx context.Context) error {
	pool := s.operator.DB()

	rows, err := pool.QueryContext(ctx,
		`SELECT id FROM simulations WHERE status IN ('queued', 'running')`)
	if err != nil {
		return ReconcileError(err)
	}
	defer rows.Close()

	var orphans []int64
	for rows.Next() {
		var id int64
		if err = rows.Scan(&id); err != nil {
			return ReconcileError(err)
		}
		orphans = append(orphans, id)
	}
	if err = rows.Err(); err != nil {
		return ReconcileError(err)
	}

	for _, id := range orphans {
		status := vtdb.NotStarted
		if s.markerExists(id) {
			status = vtdb.Completed
		} else if s.jobActive(ctx, id) {
			// A submitted batch job still owns the output directory.
			slog.Debug("Skipping simulation with live batch job", "id", id)
			continue
		}
		q := `UPDATE simulations
  SET status = ?, claim_token = '', updated_at = CURRENT_TIMESTAMP
  WHERE id = ? AND status IN ('queued', 'running')`
		if _, err = pool.ExecContext(ctx, q, string(status), id); err != nil {
			return ReconcileError(err)
		}
		slog.Warn("Reconciled orphaned simulation", "id", id, "status", status)
	}
	return nil
}

// CollectTasks flattens one hierarchy target into a deduplicated list
// of runnable simulations, in id order.
func (s *scheduler) CollectTasks(
	ctx context.Context,
	target vtdb.Target,
) ([]vtdb.Task, error) {
	var join, where string
	switch target.Level {
	case vtdb.LevelSimulation:
		where = `s.id = ?`
	case vtdb.LevelMonad:
		join = `JOIN monad_members mm ON mm.simulation_id = s.id`
		where = `mm.monad_id = ?`
	case vtdb.LevelSampling:
		join = `JOIN monad_members mm ON mm.simulation_id = s.id
  JOIN sampling_points sp ON sp.monad_id = mm.monad_id`
		where = `sp.sampling_id = ?`
	case vtdb.LevelTrial:
		join = `JOIN monad_members mm ON mm.simulation_id = s.id
  JOIN sampling_points sp ON sp.monad_id = mm.monad_id
  JOIN trial_samplings ts ON ts.sampling_id = sp.sampling_id`
		where = `ts.trial_id = ?`
	default:
		return nil, CollectError(string(target.Level), errUnknownLevel)
	}

	cols, nLocs := identityColumns()
	q := `SELECT DISTINCT s.id, s.status, s.` +
		strings.Join(cols, ", s.") + `
  FROM simulations s ` + join + `
  WHERE ` + where + `
  ORDER BY s.id`

	pool := s.operator.DB()
	rows, err := pool.QueryContext(ctx, q, target.ID)
	if err != nil {
		return nil, CollectError(string(target.Level), err)
	}
	defer rows.Close()

	var tasks []vtdb.Task
	for rows.Next() {
		raws := make([]any, len(cols)+2)
		ptrs := make([]any, len(cols)+2)
		for i := range raws {
			ptrs[i] = &raws[i]
		}
		if err = rows.Scan(ptrs...); err != nil {
			return nil, CollectError(string(target.Level), err)
		}

		status := vtdb.Status(asString(raws[1]))
		if !status.Runnable() {
			continue
		}

		task := vtdb.Task{
			SimulationID: raws[0].(int64),
			Locations:    param.LocationSet{},
			Identity:     param.Identity{},
		}
		for i, k := range param.AllKinds() {
			if v := raws[2+i].(int64); v >= 0 {
				task.Locations[k] = v
			}
		}
		for i, k := range param.VariableKinds() {
			if v := raws[2+nLocs+i].(int64); v != 0 {
				task.Identity[k] = v
			}
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

func identityColumns() ([]string, int) {
	var cols []string
	for _, k := range param.AllKinds() {
		cols = append(cols, string(k)+"_location_id")
	}
	for _, k := range param.VariableKinds() {
		cols = append(cols, string(k)+"_variation_id")
	}
	return cols, len(param.AllKinds())
}

// jobFile records the batch job handle inside a simulation's output
// directory between submission and reconciliation.
const jobFile = "job_id"

// jobActive reports whether a recorded batch job for the simulation is
// still in the queue. False in local mode and for rows never submitted.
func (s *scheduler) jobActive(ctx context.Context, simulationID int64) bool {
	if s.queue == nil {
		return false
	}
	path := filepath.Join(
		config.SimulationDir(s.cfg.DataDir, simulationID), jobFile)
	bs, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	handle := vtdb.JobHandle(strings.TrimSpace(string(bs)))
	if handle == "" {
		return false
	}
	active, err := s.queue.Active(ctx, handle)
	if err != nil {
		return false
	}
	return active
}

func (s *scheduler) markerExists(simulationID int64) bool {
	marker := filepath.Join(
		config.SimulationDir(s.cfg.DataDir, simulationID),
		s.cfg.Run.Marker,
	)
	_, err := os.Stat(marker)
	return err == nil
}

// transition moves one simulation between statuses, guarded by the
// expected current status and, when token is not empty, by the claim
// token. Returns false when another worker won the row.
func (s *scheduler) transition(
	ctx context.Context,
	id int64,
	from, to vtdb.Status,
	token string,
) (bool, error) {
	pool := s.operator.DB()
	q := `UPDATE simulations
  SET status = ?, claim_token = ?, updated_at = CURRENT_TIMESTAMP
  WHERE id = ? AND status = ?`
	args := []any{string(to), token, id, string(from)}
	if token != "" {
		q += ` AND (claim_token = '' OR claim_token = ?)`
		args = append(args, token)
	}

	res, err := pool.ExecContext(ctx, q, args...)
	if err != nil {
		return false, TransitionError(id, string(from), string(to), err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, TransitionError(id, string(from), string(to), err)
	}
	return n == 1, nil
}

func asString(raw any) string {
	switch x := raw.(type) {
	case string:
		return x
	case []byte:
		return string(x)
	}
	return ""
}
