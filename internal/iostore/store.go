// Package iostore implements the content-addressed variation store: one
// SQLite table per variable location kind, one column per varied
// parameter, one row per distinct parameter vector. A row, once written,
// is immutable; the all-columns unique index makes equal vectors resolve
// to equal ids.
package iostore

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"

	"github.com/vtrials/vtdb/pkg/db"
	"github.com/vtrials/vtdb/pkg/param"
	"github.com/vtrials/vtdb/pkg/vtdb"
)

type store struct {
	operator db.Operator
}

// NewStore creates a VariationStore over the campaign database.
func NewStore(op db.Operator) vtdb.VariationStore {
	return &store{operator: op}
}

// columnInfo mirrors one PRAGMA table_info row of a variation table.
type columnInfo struct {
	Name string
	Type string
	Dflt sql.NullString
}

func (s *store) EnsureColumns(
	ctx context.Context,
	kind param.LocationKind,
	defs []param.Def,
) error {
	if !kind.Variable() {
		return KindNotVariableError(kind)
	}
	for _, d := range defs {
		if err := d.Validate(); err != nil {
			return ColumnAddError(kind, d.Path, err)
		}
		if d.Kind != kind {
			return ColumnAddError(kind, d.Path,
				errors.New("definition targets a different kind"))
		}
	}

	pool := s.operator.DB()
	conn, err := pool.Conn(ctx)
	if err != nil {
		return ColumnAddError(kind, "", err)
	}
	defer conn.Close()

	// IMMEDIATE takes the write lock up front, so a concurrent
	// EnsureColumns for the same kind serializes instead of deadlocking
	// on lock upgrade.
	if _, err = conn.ExecContext(ctx, "BEGIN IMMEDIATE"); err != nil {
		return ColumnAddError(kind, "", err)
	}
	if err = s.ensureColumnsTx(ctx, conn, kind, defs); err != nil {
		conn.ExecContext(ctx, "ROLLBACK")
		return err
	}
	if _, err = conn.ExecContext(ctx, "COMMIT"); err != nil {
		conn.ExecContext(ctx, "ROLLBACK")
		return ColumnAddError(kind, "", err)
	}
	return nil
}

func (s *store) ensureColumnsTx(
	ctx context.Context,
	conn *sql.Conn,
	kind param.LocationKind,
	defs []param.Def,
) error {
	table := kind.VariationTable()
	existing, err := tableColumns(ctx, conn, table)
	if err != nil {
		return ColumnAddError(kind, "", err)
	}
	have := make(map[string]bool, len(existing))
	for _, c := range existing {
		have[c.Name] = true
	}

	added := 0
	for _, d := range defs {
		if have[d.Path] {
			if err = s.checkDrift(ctx, conn, d); err != nil {
				return err
			}
			continue
		}

		// The column default both backfills every existing row,
		// base row 0 included, and fills future inserts that omit the
		// column. NOT NULL keeps the unique index honest: NULLs would
		// compare distinct and defeat dedup.
		q := `ALTER TABLE "` + table + `" ADD COLUMN "` + d.Path + `" ` +
			d.Type.ColumnType() + ` NOT NULL DEFAULT ` + sqlLiteral(d.Base)
		if _, err = conn.ExecContext(ctx, q); err != nil {
			return ColumnAddError(kind, d.Path, err)
		}

		q = `
INSERT INTO column_migrations (kind, path, value_type, base_value, drift, created_at)
  VALUES (?, ?, ?, ?, 0, CURRENT_TIMESTAMP)`
		_, err = conn.ExecContext(ctx, q,
			string(kind), d.Path, string(d.Type), d.Base.Text())
		if err != nil {
			return ColumnAddError(kind, d.Path, err)
		}
		have[d.Path] = true
		added++
		slog.Info("Added parameter column",
			"kind", kind, "path", d.Path, "type", d.Type,
			"base", d.Base.Text())
	}

	if added > 0 {
		if err = rebuildUniqueIndex(ctx, conn, table); err != nil {
			return IndexRebuildError(kind, err)
		}
	}
	return nil
}

// checkDrift compares the declared base value of an already-known
// parameter against the base recorded when its column was added. A
// changed base is logged as drift; history is never rewritten, so the
// stored rows keep the original base.
func (s *store) checkDrift(
	ctx context.Context,
	conn *sql.Conn,
	d param.Def,
) error {
	q := `
SELECT base_value, value_type FROM column_migrations
  WHERE kind = ? AND path = ? AND drift = 0
  ORDER BY id LIMIT 1`
	var base, vtype string
	err := conn.QueryRowContext(ctx, q, string(d.Kind), d.Path).
		Scan(&base, &vtype)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return ColumnAddError(d.Kind, d.Path, err)
	}
	if base == d.Base.Text() && vtype == string(d.Type) {
		return nil
	}

	slog.Warn("Base value drift detected, stored rows keep the original base",
		"kind", d.Kind, "path", d.Path,
		"recorded", base, "declared", d.Base.Text())
	q = `
INSERT INTO column_migrations (kind, path, value_type, base_value, drift, created_at)
  VALUES (?, ?, ?, ?, 1, CURRENT_TIMESTAMP)`
	_, err = conn.ExecContext(ctx, q,
		string(d.Kind), d.Path, string(d.Type), d.Base.Text())
	if err != nil {
		return ColumnAddError(d.Kind, d.Path, err)
	}
	return nil
}

func (s *store) InsertOrGet(
	ctx context.Context,
	kind param.LocationKind,
	vector []param.VectorEntry,
) (int64, bool, error) {
	if err := param.ValidateVector(kind, vector); err != nil {
		return 0, false, InsertError(kind, err)
	}

	pool := s.operator.DB()
	table := kind.VariationTable()

	cols := make([]string, len(vector))
	marks := make([]string, len(vector))
	args := make([]any, len(vector))
	for i, e := range vector {
		cols[i] = `"` + e.Def.Path + `"`
		marks[i] = "?"
		args[i] = e.Value.SQL()
	}

	// Insert-then-fallback is race-free: variation rows are never
	// deleted, so a conflict means the exact vector already has an id.
	q := `INSERT INTO "` + table + `" (` + strings.Join(cols, ", ") + `)
  VALUES (` + strings.Join(marks, ", ") + `)
  ON CONFLICT DO NOTHING
  RETURNING variation_id`
	var id int64
	err := pool.QueryRowContext(ctx, q, args...).Scan(&id)
	if err == nil {
		return id, true, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, false, InsertError(kind, err)
	}

	id, err = s.lookupVector(ctx, kind, vector)
	if err != nil {
		return 0, false, err
	}
	return id, false, nil
}

// lookupVector finds the row that holds exactly this vector. Columns
// absent from the vector are matched at their declared defaults, so a
// partial vector still addresses a unique row.
func (s *store) lookupVector(
	ctx context.Context,
	kind param.LocationKind,
	vector []param.VectorEntry,
) (int64, error) {
	pool := s.operator.DB()
	table := kind.VariationTable()

	conn, err := pool.Conn(ctx)
	if err != nil {
		return 0, LookupError(kind, err)
	}
	defer conn.Close()

	all, err := tableColumns(ctx, conn, table)
	if err != nil {
		return 0, LookupError(kind, err)
	}

	given := make(map[string]param.Value, len(vector))
	for _, e := range vector {
		given[e.Def.Path] = e.Value
	}

	var conds []string
	var args []any
	for _, c := range all {
		if c.Name == "variation_id" {
			continue
		}
		if v, ok := given[c.Name]; ok {
			conds = append(conds, `"`+c.Name+`" = ?`)
			args = append(args, v.SQL())
			continue
		}
		// PRAGMA table_info reports the default as a SQL literal.
		conds = append(conds, `"`+c.Name+`" = `+c.Dflt.String)
	}

	q := `SELECT variation_id FROM "` + table + `" WHERE ` +
		strings.Join(conds, " AND ")
	var id int64
	err = conn.QueryRowContext(ctx, q, args...).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, LookupError(kind,
			errors.New("vector neither inserted nor found"))
	}
	if err != nil {
		return 0, LookupError(kind, err)
	}
	return id, nil
}

func (s *store) ValuesFor(
	ctx context.Context,
	kind param.LocationKind,
	variationID int64,
	defs []param.Def,
) ([]param.Value, error) {
	if len(defs) == 0 {
		return nil, nil
	}
	pool := s.operator.DB()
	table := kind.VariationTable()

	cols := make([]string, len(defs))
	for i, d := range defs {
		cols[i] = `"` + d.Path + `"`
	}
	q := `SELECT ` + strings.Join(cols, ", ") + ` FROM "` + table + `"
  WHERE variation_id = ?`

	raws := make([]any, len(defs))
	ptrs := make([]any, len(defs))
	for i := range raws {
		ptrs[i] = &raws[i]
	}
	err := pool.QueryRowContext(ctx, q, variationID).Scan(ptrs...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, UnknownVariationError(kind, variationID)
	}
	if err != nil {
		return nil, LookupError(kind, err)
	}

	values := make([]param.Value, len(defs))
	for i, d := range defs {
		v, err := param.ScanSQL(d.Type, raws[i])
		if err != nil {
			return nil, LookupError(kind, err)
		}
		values[i] = v
	}
	return values, nil
}

func (s *store) Columns(
	ctx context.Context,
	kind param.LocationKind,
) ([]string, error) {
	if !kind.Variable() {
		return nil, KindNotVariableError(kind)
	}
	pool := s.operator.DB()
	conn, err := pool.Conn(ctx)
	if err != nil {
		return nil, LookupError(kind, err)
	}
	defer conn.Close()

	all, err := tableColumns(ctx, conn, kind.VariationTable())
	if err != nil {
		return nil, LookupError(kind, err)
	}
	var names []string
	for _, c := range all {
		if c.Name == "variation_id" {
			continue
		}
		names = append(names, c.Name)
	}
	return names, nil
}

func tableColumns(
	ctx context.Context,
	conn *sql.Conn,
	table string,
) ([]columnInfo, error) {
	rows, err := conn.QueryContext(ctx,
		`SELECT name, type, dflt_value FROM pragma_table_info(?)`, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cols []columnInfo
	for rows.Next() {
		var c columnInfo
		if err = rows.Scan(&c.Name, &c.Type, &c.Dflt); err != nil {
			return nil, err
		}
		cols = append(cols, c)
	}
	return cols, rows.Err()
}

// rebuildUniqueIndex drops and recreates the all-columns unique index of
// a variation table. Runs inside the EnsureColumns transaction.
func rebuildUniqueIndex(
	ctx context.Context,
	conn *sql.Conn,
	table string,
) error {
	cols, err := tableColumns(ctx, conn, table)
	if err != nil {
		return err
	}
	var names []string
	for _, c := range cols {
		if c.Name == "variation_id" {
			continue
		}
		names = append(names, `"`+c.Name+`"`)
	}
	if len(names) == 0 {
		return nil
	}

	ix := `ux_` + table
	if _, err = conn.ExecContext(ctx, `DROP INDEX IF EXISTS "`+ix+`"`); err != nil {
		return err
	}
	q := `CREATE UNIQUE INDEX "` + ix + `" ON "` + table + `" (` +
		strings.Join(names, ", ") + `)`
	_, err = conn.ExecContext(ctx, q)
	return err
}

// sqlLiteral renders a value as a SQL literal for DDL, where bind
// parameters are not allowed.
func sqlLiteral(v param.Value) string {
	if v.Type == param.TypeString {
		return "'" + strings.ReplaceAll(v.Str, "'", "''") + "'"
	}
	return v.Text()
}
