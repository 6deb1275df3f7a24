// Package iodb implements the db.Operator interface over the embedded
// SQLite campaign database. This is an impure I/O package.
package iodb

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/vtrials/vtdb/pkg/config"
	"github.com/vtrials/vtdb/pkg/db"

	_ "github.com/glebarez/go-sqlite" // database/sql driver
)

// sqliteOperator implements db.Operator over the pure-Go sqlite driver.
// The same driver backs the GORM dialector in ioschema, so the process
// links exactly one "sqlite" database/sql registration.
type sqliteOperator struct {
	db   *sql.DB
	path string
}

// NewOperator creates an unconnected operator.
func NewOperator() db.Operator {
	return &sqliteOperator{}
}

// Connect opens (or creates) the campaign database and applies the
// pragmas the dedup and claim guarantees depend on: WAL journaling for
// concurrent process invocations, foreign keys, and a busy timeout so
// concurrent writers queue instead of failing.
func (o *sqliteOperator) Connect(ctx context.Context, dataDir string) error {
	path := config.DBFilePath(dataDir)
	dsn := path +
		"?_pragma=journal_mode(WAL)" +
		"&_pragma=foreign_keys(1)" +
		"&_pragma=busy_timeout(10000)" +
		"&_pragma=synchronous(NORMAL)"

	dbh, err := sql.Open("sqlite", dsn)
	if err != nil {
		return OpenError(path, err)
	}
	if err = dbh.PingContext(ctx); err != nil {
		dbh.Close()
		return OpenError(path, err)
	}

	o.db = dbh
	o.path = path
	slog.Info("Opened campaign database", "path", path)
	return nil
}

func (o *sqliteOperator) Close() error {
	if o.db == nil {
		return nil
	}
	err := o.db.Close()
	o.db = nil
	return err
}

func (o *sqliteOperator) DB() *sql.DB {
	return o.db
}

func (o *sqliteOperator) TableExists(ctx context.Context, tableName string) (bool, error) {
	if o.db == nil {
		return false, NotConnectedError()
	}
	q := `SELECT count(*) FROM sqlite_master
WHERE type = 'table' AND name = ?`
	var n int
	if err := o.db.QueryRowContext(ctx, q, tableName).Scan(&n); err != nil {
		return false, TableCheckError(err)
	}
	return n > 0, nil
}

func (o *sqliteOperator) HasTables(ctx context.Context) (bool, error) {
	if o.db == nil {
		return false, NotConnectedError()
	}
	q := `SELECT count(*) FROM sqlite_master
WHERE type = 'table' AND name NOT LIKE 'sqlite_%'`
	var n int
	if err := o.db.QueryRowContext(ctx, q).Scan(&n); err != nil {
		return false, TableCheckError(err)
	}
	return n > 0, nil
}

func (o *sqliteOperator) DropAllTables(ctx context.Context) error {
	if o.db == nil {
		return NotConnectedError()
	}

	q := `SELECT name FROM sqlite_master
WHERE type = 'table' AND name NOT LIKE 'sqlite_%'`
	rows, err := o.db.QueryContext(ctx, q)
	if err != nil {
		return QueryTablesError(err)
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return QueryTablesError(err)
		}
		tables = append(tables, name)
	}
	if err := rows.Err(); err != nil {
		return QueryTablesError(err)
	}

	for _, name := range tables {
		if _, err := o.db.ExecContext(ctx, `DROP TABLE IF EXISTS "`+name+`"`); err != nil {
			return DropTableError(name, err)
		}
		slog.Debug("Dropped table", "table", name)
	}
	return nil
}
