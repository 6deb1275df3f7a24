// Package iohier implements the run hierarchy: simulations, monads
// (replicate groups), samplings and trials, with reuse-before-create
// semantics at every level.
package iohier

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"os"
	"strings"

	"github.com/vtrials/vtdb/pkg/config"
	"github.com/vtrials/vtdb/pkg/db"
	"github.com/vtrials/vtdb/pkg/param"
	"github.com/vtrials/vtdb/pkg/vtdb"
)

type hierarchy struct {
	operator db.Operator
	dataDir  string
}

// NewHierarchy creates a Hierarchy over the campaign database.
func NewHierarchy(op db.Operator, dataDir string) vtdb.Hierarchy {
	return &hierarchy{operator: op, dataDir: dataDir}
}

// locColumn and varColumn map a kind to its column in the simulations
// and monads tables.
func locColumn(k param.LocationKind) string {
	return string(k) + "_location_id"
}

func varColumn(k param.LocationKind) string {
	return string(k) + "_variation_id"
}

// identityWhere builds the full-identity predicate shared by simulation
// and monad lookups. Every location and variation column participates,
// so rows match only on the complete tuple.
func identityWhere(locs param.LocationSet, id param.Identity) (string, []any) {
	var conds []string
	var args []any
	for _, k := range param.AllKinds() {
		conds = append(conds, locColumn(k)+" = ?")
		args = append(args, locs.Get(k))
	}
	for _, k := range param.VariableKinds() {
		conds = append(conds, varColumn(k)+" = ?")
		args = append(args, id.ID(k))
	}
	return strings.Join(conds, " AND "), args
}

func identityColumns() ([]string, int) {
	var cols []string
	for _, k := range param.AllKinds() {
		cols = append(cols, locColumn(k))
	}
	for _, k := range param.VariableKinds() {
		cols = append(cols, varColumn(k))
	}
	return cols, len(param.AllKinds())
}

func identityArgs(locs param.LocationSet, id param.Identity) []any {
	var args []any
	for _, k := range param.AllKinds() {
		args = append(args, locs.Get(k))
	}
	for _, k := range param.VariableKinds() {
		args = append(args, id.ID(k))
	}
	return args
}

func (h *hierarchy) MakeSimulation(
	ctx context.Context,
	locs param.LocationSet,
	id param.Identity,
) (vtdb.Simulation, bool, error) {
	var sim vtdb.Simulation
	var created bool

	err := h.immediate(ctx, func(conn *sql.Conn) error {
		where, args := identityWhere(locs, id)
		q := `SELECT id, status FROM simulations WHERE ` + where +
			` ORDER BY id LIMIT 1`
		var simID int64
		var status string
		err := conn.QueryRowContext(ctx, q, args...).Scan(&simID, &status)
		if err == nil {
			sim = vtdb.Simulation{
				ID:        simID,
				Locations: locs,
				Identity:  id,
				Status:    vtdb.Status(status),
			}
			return nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return LookupError("simulation", err)
		}

		simID, err = insertSimulation(ctx, conn, locs, id)
		if err != nil {
			return err
		}
		sim = vtdb.Simulation{
			ID:        simID,
			Locations: locs,
			Identity:  id,
			Status:    vtdb.NotStarted,
		}
		created = true
		return nil
	})
	if err != nil {
		return vtdb.Simulation{}, false, err
	}
	return sim, created, nil
}

func (h *hierarchy) MakeMonad(
	ctx context.Context,
	locs param.LocationSet,
	id param.Identity,
	n int,
	reuseExisting bool,
) (vtdb.Monad, int, error) {
	var monad vtdb.Monad
	var added int

	err := h.immediate(ctx, func(conn *sql.Conn) error {
		monadID, err := findOrInsertMonad(ctx, conn, locs, id)
		if err != nil {
			return err
		}

		members, err := monadMembers(ctx, conn, monadID)
		if err != nil {
			return err
		}

		// Existing members are never discarded; the group only grows.
		want := n
		if reuseExisting {
			want = n - len(members)
		}
		for i := 0; i < want; i++ {
			simID, err := insertSimulation(ctx, conn, locs, id)
			if err != nil {
				return err
			}
			q := `
INSERT INTO monad_members (monad_id, simulation_id, created_at)
  VALUES (?, ?, CURRENT_TIMESTAMP)`
			if _, err = conn.ExecContext(ctx, q, monadID, simID); err != nil {
				return InsertError("monad member", err)
			}
			members = append(members, simID)
			added++
		}

		monad = vtdb.Monad{
			ID:        monadID,
			Locations: locs,
			Identity:  id,
			Members:   members,
		}
		return nil
	})
	if err != nil {
		return vtdb.Monad{}, 0, err
	}

	if added > 0 {
		slog.Info("Replicate group grown",
			"monad", monad.ID, "added", added, "size", len(monad.Members))
	}
	return monad, added, nil
}

func (h *hierarchy) MakeSampling(
	ctx context.Context,
	locs param.LocationSet,
	ids []param.Identity,
	method, designMeta string,
	n int,
	reuseExisting bool,
) (vtdb.Sampling, error) {
	if len(ids) == 0 {
		return vtdb.Sampling{}, InsertError("sampling",
			errors.New("no design points"))
	}

	monads := make([]int64, len(ids))
	for i, identity := range ids {
		m, _, err := h.MakeMonad(ctx, locs, identity, n, reuseExisting)
		if err != nil {
			return vtdb.Sampling{}, err
		}
		monads[i] = m.ID
	}

	pool := h.operator.DB()
	q := `
INSERT INTO samplings (method, design_meta, created_at)
  VALUES (?, ?, CURRENT_TIMESTAMP)
  RETURNING id`
	var samplingID int64
	err := pool.QueryRowContext(ctx, q, method, designMeta).Scan(&samplingID)
	if err != nil {
		return vtdb.Sampling{}, InsertError("sampling", err)
	}

	for i, monadID := range monads {
		q = `
INSERT INTO sampling_points (sampling_id, position, monad_id)
  VALUES (?, ?, ?)`
		if _, err = pool.ExecContext(ctx, q, samplingID, i, monadID); err != nil {
			return vtdb.Sampling{}, InsertError("sampling point", err)
		}
	}

	slog.Info("Created sampling",
		"id", samplingID, "method", method,
		"points", len(ids), "replicates", n)
	return vtdb.Sampling{
		ID:         samplingID,
		Method:     method,
		DesignMeta: designMeta,
		Monads:     monads,
	}, nil
}

func (h *hierarchy) MakeTrial(
	ctx context.Context,
	samplingIDs []int64,
) (vtdb.Trial, error) {
	if len(samplingIDs) == 0 {
		return vtdb.Trial{}, InsertError("trial",
			errors.New("no samplings"))
	}

	pool := h.operator.DB()
	q := `INSERT INTO trials (created_at) VALUES (CURRENT_TIMESTAMP)
  RETURNING id`
	var trialID int64
	if err := pool.QueryRowContext(ctx, q).Scan(&trialID); err != nil {
		return vtdb.Trial{}, InsertError("trial", err)
	}

	for i, sID := range samplingIDs {
		q = `
INSERT INTO trial_samplings (trial_id, position, sampling_id)
  VALUES (?, ?, ?)`
		if _, err := pool.ExecContext(ctx, q, trialID, i, sID); err != nil {
			return vtdb.Trial{}, InsertError("trial sampling", err)
		}
	}

	slog.Info("Created trial", "id", trialID, "samplings", len(samplingIDs))
	return vtdb.Trial{ID: trialID, Samplings: samplingIDs}, nil
}

func (h *hierarchy) GetSimulation(
	ctx context.Context,
	id int64,
) (vtdb.Simulation, error) {
	pool := h.operator.DB()
	cols, nLocs := identityColumns()
	q := `SELECT status, ` + strings.Join(cols, ", ") +
		` FROM simulations WHERE id = ?`

	raws := make([]any, len(cols)+1)
	ptrs := make([]any, len(cols)+1)
	for i := range raws {
		ptrs[i] = &raws[i]
	}
	err := pool.QueryRowContext(ctx, q, id).Scan(ptrs...)
	if errors.Is(err, sql.ErrNoRows) {
		return vtdb.Simulation{}, NotFoundError("simulation", id)
	}
	if err != nil {
		return vtdb.Simulation{}, LookupError("simulation", err)
	}

	sim := vtdb.Simulation{
		ID:        id,
		Locations: param.LocationSet{},
		Identity:  param.Identity{},
		Status:    vtdb.Status(raws[0].(string)),
	}
	for i, k := range param.AllKinds() {
		if v := raws[1+i].(int64); v >= 0 {
			sim.Locations[k] = v
		}
	}
	for i, k := range param.VariableKinds() {
		if v := raws[1+nLocs+i].(int64); v != 0 {
			sim.Identity[k] = v
		}
	}
	return sim, nil
}

func (h *hierarchy) GetSampling(
	ctx context.Context,
	id int64,
) (vtdb.Sampling, error) {
	pool := h.operator.DB()
	res := vtdb.Sampling{ID: id}

	q := `SELECT method, design_meta FROM samplings WHERE id = ?`
	err := pool.QueryRowContext(ctx, q, id).Scan(&res.Method, &res.DesignMeta)
	if errors.Is(err, sql.ErrNoRows) {
		return vtdb.Sampling{}, NotFoundError("sampling", id)
	}
	if err != nil {
		return vtdb.Sampling{}, LookupError("sampling", err)
	}

	q = `SELECT monad_id FROM sampling_points
  WHERE sampling_id = ? ORDER BY position`
	rows, err := pool.QueryContext(ctx, q, id)
	if err != nil {
		return vtdb.Sampling{}, LookupError("sampling points", err)
	}
	defer rows.Close()
	for rows.Next() {
		var monadID int64
		if err = rows.Scan(&monadID); err != nil {
			return vtdb.Sampling{}, LookupError("sampling points", err)
		}
		res.Monads = append(res.Monads, monadID)
	}
	if err = rows.Err(); err != nil {
		return vtdb.Sampling{}, LookupError("sampling points", err)
	}
	return res, nil
}

func (h *hierarchy) SamplingGroups(
	ctx context.Context,
	samplingID int64,
) ([][]int64, error) {
	s, err := h.GetSampling(ctx, samplingID)
	if err != nil {
		return nil, err
	}

	pool := h.operator.DB()
	res := make([][]int64, len(s.Monads))
	for i, monadID := range s.Monads {
		q := `SELECT simulation_id FROM monad_members
  WHERE monad_id = ? ORDER BY simulation_id`
		rows, err := pool.QueryContext(ctx, q, monadID)
		if err != nil {
			return nil, LookupError("replicate group members", err)
		}
		for rows.Next() {
			var simID int64
			if err = rows.Scan(&simID); err != nil {
				rows.Close()
				return nil, LookupError("replicate group members", err)
			}
			res[i] = append(res[i], simID)
		}
		if err = rows.Err(); err != nil {
			rows.Close()
			return nil, LookupError("replicate group members", err)
		}
		rows.Close()
	}
	return res, nil
}

func (h *hierarchy) DeleteSimulation(ctx context.Context, id int64) error {
	pool := h.operator.DB()

	if _, err := pool.ExecContext(ctx,
		`DELETE FROM monad_members WHERE simulation_id = ?`, id); err != nil {
		return DeleteError(id, err)
	}
	res, err := pool.ExecContext(ctx,
		`DELETE FROM simulations WHERE id = ?`, id)
	if err != nil {
		return DeleteError(id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return NotFoundError("simulation", id)
	}

	dir := config.SimulationDir(h.dataDir, id)
	if err := os.RemoveAll(dir); err != nil {
		return DeleteError(id, err)
	}
	slog.Info("Deleted simulation", "id", id, "dir", dir)
	return nil
}

// immediate runs fn inside a BEGIN IMMEDIATE transaction on a dedicated
// connection. IMMEDIATE takes the write lock up front, so concurrent
// reuse-before-create lookups serialize instead of racing.
func (h *hierarchy) immediate(
	ctx context.Context,
	fn func(conn *sql.Conn) error,
) error {
	pool := h.operator.DB()
	conn, err := pool.Conn(ctx)
	if err != nil {
		return InsertError("hierarchy", err)
	}
	defer conn.Close()

	if _, err = conn.ExecContext(ctx, "BEGIN IMMEDIATE"); err != nil {
		return InsertError("hierarchy", err)
	}
	if err = fn(conn); err != nil {
		conn.ExecContext(ctx, "ROLLBACK")
		return err
	}
	if _, err = conn.ExecContext(ctx, "COMMIT"); err != nil {
		conn.ExecContext(ctx, "ROLLBACK")
		return InsertError("hierarchy", err)
	}
	return nil
}

func insertSimulation(
	ctx context.Context,
	conn *sql.Conn,
	locs param.LocationSet,
	id param.Identity,
) (int64, error) {
	cols, _ := identityColumns()
	marks := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")
	q := `INSERT INTO simulations (` + strings.Join(cols, ", ") +
		`, status, claim_token, created_at, updated_at)
  VALUES (` + marks + `, 'not_started', '', CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
  RETURNING id`
	var simID int64
	err := conn.QueryRowContext(ctx, q, identityArgs(locs, id)...).Scan(&simID)
	if err != nil {
		return 0, InsertError("simulation", err)
	}
	return simID, nil
}

func findOrInsertMonad(
	ctx context.Context,
	conn *sql.Conn,
	locs param.LocationSet,
	id param.Identity,
) (int64, error) {
	where, args := identityWhere(locs, id)
	q := `SELECT id FROM monads WHERE ` + where + ` ORDER BY id LIMIT 1`
	var monadID int64
	err := conn.QueryRowContext(ctx, q, args...).Scan(&monadID)
	if err == nil {
		return monadID, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, LookupError("monad", err)
	}

	cols, _ := identityColumns()
	marks := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")
	q = `INSERT INTO monads (` + strings.Join(cols, ", ") + `, created_at)
  VALUES (` + marks + `, CURRENT_TIMESTAMP)
  RETURNING id`
	err = conn.QueryRowContext(ctx, q, identityArgs(locs, id)...).Scan(&monadID)
	if err != nil {
		return 0, InsertError("monad", err)
	}
	return monadID, nil
}

func monadMembers(
	ctx context.Context,
	conn *sql.Conn,
	monadID int64,
) ([]int64, error) {
	q := `SELECT simulation_id FROM monad_members
  WHERE monad_id = ? ORDER BY simulation_id`
	rows, err := conn.QueryContext(ctx, q, monadID)
	if err != nil {
		return nil, LookupError("monad members", err)
	}
	defer rows.Close()

	var members []int64
	for rows.Next() {
		var id int64
		if err = rows.Scan(&id); err != nil {
			return nil, LookupError("monad members", err)
		}
		members = append(members, id)
	}
	return members, rows.Err()
}
